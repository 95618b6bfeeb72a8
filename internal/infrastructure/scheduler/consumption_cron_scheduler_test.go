package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appcontract "github.com/erp/contracts/internal/application/contract"
	"github.com/erp/contracts/internal/infrastructure/config"
)

type stubTenantSource struct {
	ids []uuid.UUID
}

func (s *stubTenantSource) ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return s.ids, nil
}

type stubRunner struct {
	mu      sync.Mutex
	tenants []uuid.UUID
}

func (r *stubRunner) ConsumeUntil(ctx context.Context, tenantID uuid.UUID, targetDate *time.Time) (*appcontract.ConsumeResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tenants = append(r.tenants, tenantID)
	return &appcontract.ConsumeResult{ContractsProcessed: 1, ConsumptionsCreated: 2}, nil
}

func TestParseCronSchedule(t *testing.T) {
	tests := []struct {
		name       string
		expr       string
		wantHour   int
		wantMinute int
		wantErr    bool
	}{
		{"empty defaults to 2:00", "", 2, 0, false},
		{"standard daily schedule", "0 2 * * *", 2, 0, false},
		{"custom time", "30 4 * * *", 4, 30, false},
		{"wildcards keep defaults", "* * * * *", 2, 0, false},
		{"too few fields keep defaults", "5", 2, 0, false},
		{"hour out of range", "0 25 * * *", 2, 0, true},
		{"minute out of range", "75 2 * * *", 2, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseCronSchedule(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantHour, hour)
			assert.Equal(t, tt.wantMinute, minute)
		})
	}
}

func newTestScheduler(t *testing.T, runner ConsumptionRunner, tenants TenantSource) *ConsumptionCronScheduler {
	cfg := config.SchedulerConfig{
		Enabled:           true,
		DailyCronSchedule: "0 2 * * *",
		JobTimeout:        time.Minute,
	}
	s, err := NewConsumptionCronScheduler(cfg, runner, tenants, zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestConsumptionCronScheduler_ShouldRun(t *testing.T) {
	s := newTestScheduler(t, &stubRunner{}, &stubTenantSource{})

	assert.True(t, s.shouldRun(time.Date(2025, 3, 1, 2, 0, 30, 0, time.Local)))
	assert.False(t, s.shouldRun(time.Date(2025, 3, 1, 2, 1, 0, 0, time.Local)))
	assert.False(t, s.shouldRun(time.Date(2025, 3, 1, 3, 0, 0, 0, time.Local)))
}

func TestConsumptionCronScheduler_RunDailyConsumption(t *testing.T) {
	tenantA := uuid.New()
	tenantB := uuid.New()
	runner := &stubRunner{}
	s := newTestScheduler(t, runner, &stubTenantSource{ids: []uuid.UUID{tenantA, tenantB}})

	s.runDailyConsumption(context.Background())

	assert.ElementsMatch(t, []uuid.UUID{tenantA, tenantB}, runner.tenants)
}

func TestConsumptionCronScheduler_StartStop(t *testing.T) {
	s := newTestScheduler(t, &stubRunner{}, &stubTenantSource{})

	require.NoError(t, s.Start(context.Background()))
	assert.NotNil(t, s.GetNextRunAt())

	status := s.GetStatus()
	assert.Equal(t, true, status["is_running"])

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	assert.ErrorIs(t, s.TriggerManualRun(context.Background()), ErrSchedulerNotRunning)
}
