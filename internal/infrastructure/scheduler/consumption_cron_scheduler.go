package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appcontract "github.com/erp/contracts/internal/application/contract"
	"github.com/erp/contracts/internal/infrastructure/config"
)

// cronTickerInterval is the interval at which the cron scheduler checks for execution
const cronTickerInterval = 1 * time.Minute

// ErrSchedulerNotRunning is returned when a trigger is requested on a stopped scheduler
var ErrSchedulerNotRunning = errors.New("scheduler is not running")

// ErrInvalidCronField is returned when a cron field holds a non-numeric value
var ErrInvalidCronField = errors.New("invalid cron field")

// TenantSource enumerates the tenants consumption runs are scheduled for
type TenantSource interface {
	ActiveTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// ConsumptionRunner runs a consumption generation pass for one tenant
type ConsumptionRunner interface {
	ConsumeUntil(ctx context.Context, tenantID uuid.UUID, targetDate *time.Time) (*appcontract.ConsumeResult, error)
}

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract
// hour and minute. Returns defaults (2:00) when the expression is empty.
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour = 2
	minute = 0

	if cronExpr == "" {
		return hour, minute, nil
	}

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if parts[0] != "*" {
		if val, parseErr := parseIntOrDefault(parts[0], 0); parseErr == nil {
			minute = val
		}
	}
	if parts[1] != "*" {
		if val, parseErr := parseIntOrDefault(parts[1], 2); parseErr == nil {
			hour = val
		}
	}

	if minute < 0 || minute > 59 {
		return 2, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 2, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}

// parseIntOrDefault parses an int string or returns default
func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" || s == "*" {
		return defaultVal, nil
	}
	var val int
	for _, c := range s {
		if c < '0' || c > '9' {
			return defaultVal, ErrInvalidCronField
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// ConsumptionCronScheduler runs the daily consumption generation pass for
// every active tenant at the configured time of day.
type ConsumptionCronScheduler struct {
	config     config.SchedulerConfig
	runner     ConsumptionRunner
	tenants    TenantSource
	logger     *zap.Logger
	cronHour   int
	cronMinute int

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
	nextRunAt *time.Time
}

// NewConsumptionCronScheduler creates a new consumption cron scheduler
func NewConsumptionCronScheduler(
	cfg config.SchedulerConfig,
	runner ConsumptionRunner,
	tenants TenantSource,
	logger *zap.Logger,
) (*ConsumptionCronScheduler, error) {
	hour, minute, err := ParseCronSchedule(cfg.DailyCronSchedule)
	if err != nil {
		return nil, err
	}

	return &ConsumptionCronScheduler{
		config:     cfg,
		runner:     runner,
		tenants:    tenants,
		logger:     logger,
		cronHour:   hour,
		cronMinute: minute,
	}, nil
}

// Start starts the cron scheduler
func (s *ConsumptionCronScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.calculateNextRunTime()

	s.wg.Add(1)
	go s.cronLoop(ctx)

	s.logger.Info("Consumption cron scheduler started",
		zap.Int("cron_hour", s.cronHour),
		zap.Int("cron_minute", s.cronMinute),
		zap.Timep("next_run_at", s.nextRunAt),
	)

	return nil
}

// Stop stops the cron scheduler
func (s *ConsumptionCronScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Consumption cron scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Consumption cron scheduler stop timed out")
		return ctx.Err()
	}
}

// cronLoop runs the main cron loop
func (s *ConsumptionCronScheduler) cronLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(cronTickerInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if s.shouldRun(now) {
				s.runDailyConsumption(ctx)
				s.calculateNextRunTime()
			}
		}
	}
}

// shouldRun checks if the cron should run at the given time
func (s *ConsumptionCronScheduler) shouldRun(now time.Time) bool {
	return now.Hour() == s.cronHour && now.Minute() == s.cronMinute
}

// calculateNextRunTime calculates the next run time
func (s *ConsumptionCronScheduler) calculateNextRunTime() {
	now := time.Now()
	next := time.Date(now.Year(), now.Month(), now.Day(), s.cronHour, s.cronMinute, 0, 0, now.Location())
	if now.After(next) {
		next = next.AddDate(0, 0, 1)
	}

	s.mu.Lock()
	s.nextRunAt = &next
	s.mu.Unlock()
}

// runDailyConsumption runs the consumption pass for all active tenants
func (s *ConsumptionCronScheduler) runDailyConsumption(ctx context.Context) {
	s.logger.Info("Starting daily consumption run")

	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	tenantIDs, err := s.tenants.ActiveTenantIDs(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch tenants for consumption run", zap.Error(err))
		return
	}

	for _, tenantID := range tenantIDs {
		runCtx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
		result, err := s.runner.ConsumeUntil(runCtx, tenantID, nil)
		cancel()

		if err != nil {
			s.logger.Error("Consumption run failed for tenant",
				zap.String("tenant_id", tenantID.String()),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("Consumption run completed for tenant",
			zap.String("tenant_id", tenantID.String()),
			zap.Int("contracts", result.ContractsProcessed),
			zap.Int("consumptions", result.ConsumptionsCreated),
		)
	}

	s.logger.Info("Daily consumption run finished", zap.Int("tenant_count", len(tenantIDs)))
}

// TriggerManualRun triggers a manual run outside the schedule.
// Runs on a background context so it survives the triggering request.
func (s *ConsumptionCronScheduler) TriggerManualRun(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.mu.Unlock()

	go s.runDailyConsumption(context.Background())
	return nil
}

// GetStatus returns the current status of the cron scheduler
func (s *ConsumptionCronScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":     s.config.Enabled,
		"is_running":  s.isRunning,
		"cron_hour":   s.cronHour,
		"cron_minute": s.cronMinute,
		"last_run_at": s.lastRunAt,
		"next_run_at": s.nextRunAt,
	}
}

// GetNextRunAt returns when the next scheduled run will occur
func (s *ConsumptionCronScheduler) GetNextRunAt() *time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextRunAt
}
