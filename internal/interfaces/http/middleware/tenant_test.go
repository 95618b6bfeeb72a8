package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTenantMiddleware(t *testing.T) {
	tenantID := uuid.New()

	newEngine := func() *gin.Engine {
		engine := gin.New()
		engine.Use(Tenant())
		engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
		engine.GET("/contracts", func(c *gin.Context) {
			got, ok := GetTenantID(c)
			require.True(t, ok)
			c.String(http.StatusOK, got.String())
		})
		return engine
	}

	t.Run("valid tenant header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/contracts", nil)
		req.Header.Set(TenantHeaderKey, tenantID.String())

		newEngine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, tenantID.String(), w.Body.String())
	})

	t.Run("missing tenant header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/contracts", nil)

		newEngine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "MISSING_TENANT")
	})

	t.Run("malformed tenant header", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/contracts", nil)
		req.Header.Set(TenantHeaderKey, "not-a-uuid")

		newEngine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("skip path bypasses requirement", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest("GET", "/health", nil)

		newEngine().ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("optional tenant", func(t *testing.T) {
		engine := gin.New()
		engine.Use(TenantWithConfig(TenantConfig{Required: false}))
		engine.GET("/contracts", func(c *gin.Context) {
			_, ok := GetTenantID(c)
			assert.False(t, ok)
			c.Status(http.StatusOK)
		})

		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest("GET", "/contracts", nil))

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
