package contract

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// consumptionRunTTL bounds how long a run key blocks duplicate runs
const consumptionRunTTL = 10 * time.Minute

// runBatchSize is the page size used when walking validated contracts
const runBatchSize = 100

// RunGuard prevents concurrent consumption runs for the same tenant and
// target date. Acquire returns false when another run holds the key.
type RunGuard interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

// ConsumptionService generates contract consumptions up to a target date
type ConsumptionService struct {
	contractRepo    contract.ContractRepository
	consumptionRepo contract.ConsumptionRepository
	guard           RunGuard
	clock           contract.Clock
	publisher       shared.EventPublisher
	logger          *zap.Logger
}

// NewConsumptionService creates a new ConsumptionService
func NewConsumptionService(
	contractRepo contract.ContractRepository,
	consumptionRepo contract.ConsumptionRepository,
	guard RunGuard,
	clock contract.Clock,
	publisher shared.EventPublisher,
	logger *zap.Logger,
) *ConsumptionService {
	return &ConsumptionService{
		contractRepo:    contractRepo,
		consumptionRepo: consumptionRepo,
		guard:           guard,
		clock:           clock,
		publisher:       publisher,
		logger:          logger,
	}
}

// ConsumeUntil generates the missing consumptions of every validated contract
// of the tenant, up to and including the target date. An empty date defaults
// to today. Re-running for the same date is a no-op: each line resumes from
// the day after its last recorded end period date.
func (s *ConsumptionService) ConsumeUntil(ctx context.Context, tenantID uuid.UUID, targetDate *time.Time) (*ConsumeResult, error) {
	date := s.clock.Today()
	if targetDate != nil {
		date = contract.DateOf(*targetDate)
	}

	runKey := fmt.Sprintf("consume:%s:%s", tenantID, date.Format(DateLayout))
	acquired, err := s.guard.Acquire(ctx, runKey, consumptionRunTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, shared.NewDomainError("RUN_IN_PROGRESS", "A consumption run for this date is already in progress")
	}
	defer func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), runKey); err != nil {
			s.logger.Warn("failed to release consumption run key",
				zap.String("key", runKey), zap.Error(err))
		}
	}()

	// Periods are generated for every boundary up to the day after the
	// target, so a period ending exactly on the target date is included.
	until := date.AddDate(0, 0, 1)

	result := &ConsumeResult{Date: date.Format(DateLayout)}

	filter := shared.DefaultFilter()
	filter.PageSize = runBatchSize
	filter.OrderBy = "created_at"
	filter.OrderDir = "asc"

	for page := 1; ; page++ {
		filter.Page = page
		contracts, err := s.contractRepo.FindByStatus(ctx, tenantID, contract.ContractStatusValidated, filter)
		if err != nil {
			return nil, err
		}
		if len(contracts) == 0 {
			break
		}

		for idx := range contracts {
			c := &contracts[idx]
			created, err := s.consumeContract(ctx, c, until)
			if err != nil {
				return nil, err
			}
			result.ContractsProcessed++
			result.ConsumptionsCreated += created
		}

		if len(contracts) < runBatchSize {
			break
		}
	}

	s.logger.Info("consumption run completed",
		zap.String("tenant_id", tenantID.String()),
		zap.String("date", result.Date),
		zap.Int("contracts", result.ContractsProcessed),
		zap.Int("consumptions", result.ConsumptionsCreated))

	return result, nil
}

// ConsumeContract generates the missing consumptions of a single contract
func (s *ConsumptionService) ConsumeContract(ctx context.Context, tenantID, contractID uuid.UUID, targetDate *time.Time) (*ConsumeResult, error) {
	date := s.clock.Today()
	if targetDate != nil {
		date = contract.DateOf(*targetDate)
	}

	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, err
	}
	if !c.IsValidated() {
		return nil, shared.NewDomainError("INVALID_STATE", "Only validated contracts produce consumptions")
	}

	created, err := s.consumeContract(ctx, c, date.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}

	return &ConsumeResult{
		Date:                date.Format(DateLayout),
		ContractsProcessed:  1,
		ConsumptionsCreated: created,
	}, nil
}

func (s *ConsumptionService) consumeContract(ctx context.Context, c *contract.Contract, until time.Time) (int, error) {
	lineIDs := make([]uuid.UUID, 0, len(c.Lines))
	for _, line := range c.Lines {
		lineIDs = append(lineIDs, line.ID)
	}
	if len(lineIDs) == 0 {
		return 0, nil
	}

	histories, err := s.consumptionRepo.LineHistories(ctx, lineIDs)
	if err != nil {
		return 0, err
	}

	consumptions := c.BuildConsumptions(until, histories)
	if len(consumptions) == 0 {
		return 0, nil
	}

	if err := s.consumptionRepo.CreateBatch(ctx, consumptions); err != nil {
		return 0, err
	}

	if s.publisher != nil {
		event := contract.NewConsumptionsGeneratedEvent(c, len(consumptions), until)
		if err := s.publisher.Publish(ctx, event); err != nil {
			s.logger.Warn("failed to publish consumptions generated event",
				zap.String("contract_id", c.ID.String()), zap.Error(err))
		}
	}

	return len(consumptions), nil
}

// ListByContract returns the consumptions recorded for a contract
func (s *ConsumptionService) ListByContract(ctx context.Context, tenantID, contractID uuid.UUID, filter shared.Filter) ([]ConsumptionResponse, int64, error) {
	c, err := s.contractRepo.FindByIDForTenant(ctx, tenantID, contractID)
	if err != nil {
		return nil, 0, err
	}

	consumptions, err := s.consumptionRepo.FindByContract(ctx, c.ID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.consumptionRepo.CountByContract(ctx, c.ID)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ConsumptionResponse, 0, len(consumptions))
	for idx := range consumptions {
		responses = append(responses, ToConsumptionResponse(&consumptions[idx]))
	}
	return responses, total, nil
}
