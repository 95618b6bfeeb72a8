package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/domain/shared"
)

// newMockContractRepository creates a GormContractRepository with a mocked SQL connection
func newMockContractRepository(t *testing.T) (*GormContractRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormContractRepository(gormDB), mock, mockDB
}

func TestGormContractRepository_FindByID(t *testing.T) {
	t.Run("finds existing contract with lines", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepository(t)
		defer mockDB.Close()

		contractID := uuid.New()
		tenantID := uuid.New()
		lineID := uuid.New()

		contractRows := sqlmock.NewRows([]string{"id", "tenant_id", "version", "reference", "party_name", "currency", "freq", "freq_interval", "status"}).
			AddRow(contractID, tenantID, 1, "CON-2025-00001", "Acme Corp", "EUR", "monthly", 1, "VALIDATED")

		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(contractID, 1).
			WillReturnRows(contractRows)

		lineRows := sqlmock.NewRows([]string{"id", "contract_id", "name", "description", "unit_price"}).
			AddRow(lineID, contractID, "Hosting", "Monthly hosting", "25.00")

		mock.ExpectQuery(`SELECT \* FROM "contract_lines" WHERE .*`).
			WithArgs(contractID).
			WillReturnRows(lineRows)

		c, err := repo.FindByID(context.Background(), contractID)

		require.NoError(t, err)
		assert.Equal(t, contractID, c.ID)
		assert.Equal(t, "CON-2025-00001", c.Reference)
		assert.Equal(t, contract.ContractStatusValidated, c.Status)
		require.Len(t, c.Lines, 1)
		assert.Equal(t, "Hosting", c.Lines[0].Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for unknown contract", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepository(t)
		defer mockDB.Close()

		contractID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE id = \$1 ORDER BY .* LIMIT .*`).
			WithArgs(contractID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		_, err := repo.FindByID(context.Background(), contractID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormContractRepository_CountForTenant(t *testing.T) {
	t.Run("counts with status filter", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT count\(\*\) FROM "contracts" WHERE tenant_id = \$1 AND status = \$2`).
			WithArgs(tenantID, "VALIDATED").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

		filter := shared.Filter{Filters: map[string]interface{}{"status": "VALIDATED"}}
		count, err := repo.CountForTenant(context.Background(), tenantID, filter)

		require.NoError(t, err)
		assert.Equal(t, int64(3), count)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormContractRepository_GenerateReference(t *testing.T) {
	t.Run("starts at 1 when no contracts exist for the year", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE tenant_id = \$1 AND reference LIKE \$2 ORDER BY .*`).
			WillReturnError(gorm.ErrRecordNotFound)

		reference, err := repo.GenerateReference(context.Background(), tenantID)

		require.NoError(t, err)
		assert.Regexp(t, `^CON-\d{4}-00001$`, reference)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("increments the highest existing reference", func(t *testing.T) {
		repo, mock, mockDB := newMockContractRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		contractID := uuid.New()

		rows := sqlmock.NewRows([]string{"id", "tenant_id", "reference"}).
			AddRow(contractID, tenantID, "CON-2026-00041")

		mock.ExpectQuery(`SELECT \* FROM "contracts" WHERE tenant_id = \$1 AND reference LIKE \$2 ORDER BY .*`).
			WillReturnRows(rows)

		reference, err := repo.GenerateReference(context.Background(), tenantID)

		require.NoError(t, err)
		assert.Regexp(t, `^CON-\d{4}-00042$`, reference)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
