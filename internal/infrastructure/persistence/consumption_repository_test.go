package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/erp/contracts/internal/domain/contract"
	"github.com/erp/contracts/internal/domain/shared"
)

func setupConsumptionTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&contract.Contract{}, &contract.ContractLine{}, &contract.Consumption{})
	require.NoError(t, err)

	return db
}

func testConsumption(lineID, contractID uuid.UUID, start, end, invoiceDate time.Time) *contract.Consumption {
	return &contract.Consumption{
		BaseEntity:      shared.NewBaseEntity(),
		ContractLineID:  lineID,
		ContractID:      contractID,
		StartDate:       start,
		EndDate:         end,
		PeriodStartDate: start,
		PeriodEndDate:   end,
		InvoiceDate:     end,
	}
}

func TestGormConsumptionRepository_CreateBatchAndFind(t *testing.T) {
	db := setupConsumptionTestDB(t)
	repo := NewGormConsumptionRepository(db)
	ctx := context.Background()

	contractID := uuid.New()
	lineID := uuid.New()

	jan := contract.Date(2025, time.January, 1)
	feb := contract.Date(2025, time.February, 1)

	batch := []*contract.Consumption{
		testConsumption(lineID, contractID, jan, jan.AddDate(0, 1, -1), feb),
		testConsumption(lineID, contractID, feb, feb.AddDate(0, 1, -1), feb.AddDate(0, 1, 0)),
	}
	require.NoError(t, repo.CreateBatch(ctx, batch))

	t.Run("finds consumptions by contract", func(t *testing.T) {
		found, err := repo.FindByContract(ctx, contractID, shared.Filter{})
		require.NoError(t, err)
		assert.Len(t, found, 2)
		assert.True(t, found[0].StartDate.Before(found[1].StartDate), "ordered by start date")
	})

	t.Run("counts consumptions by contract", func(t *testing.T) {
		count, err := repo.CountByContract(ctx, contractID)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("finds consumption by ID", func(t *testing.T) {
		found, err := repo.FindByID(ctx, batch[0].ID)
		require.NoError(t, err)
		assert.Equal(t, batch[0].ContractLineID, found.ContractLineID)
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormConsumptionRepository_FindUninvoiced(t *testing.T) {
	db := setupConsumptionTestDB(t)
	repo := NewGormConsumptionRepository(db)
	ctx := context.Background()

	contractID := uuid.New()
	lineID := uuid.New()

	jan := contract.Date(2025, time.January, 1)
	invoiced := testConsumption(lineID, contractID, jan, jan.AddDate(0, 1, -1), jan.AddDate(0, 1, 0))
	invoiceLineID := uuid.New()
	require.NoError(t, invoiced.LinkInvoiceLine(invoiceLineID))

	open := testConsumption(lineID, contractID, jan.AddDate(0, 1, 0), jan.AddDate(0, 2, -1), jan.AddDate(0, 2, 0))

	require.NoError(t, repo.CreateBatch(ctx, []*contract.Consumption{invoiced, open}))

	found, err := repo.FindUninvoiced(ctx, contractID)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, open.ID, found[0].ID)
	assert.Nil(t, found[0].InvoiceLineID)
}

func TestGormConsumptionRepository_LineHistories(t *testing.T) {
	db := setupConsumptionTestDB(t)
	repo := NewGormConsumptionRepository(db)
	ctx := context.Background()

	contractID := uuid.New()
	lineA := uuid.New()
	lineB := uuid.New()

	jan := contract.Date(2025, time.January, 1)
	feb := contract.Date(2025, time.February, 1)
	mar := contract.Date(2025, time.March, 1)

	require.NoError(t, repo.CreateBatch(ctx, []*contract.Consumption{
		testConsumption(lineA, contractID, jan, jan.AddDate(0, 1, -1), feb),
		testConsumption(lineA, contractID, feb, feb.AddDate(0, 1, -1), mar),
		testConsumption(lineB, contractID, jan, jan.AddDate(0, 1, -1), feb),
	}))

	t.Run("returns max period end and invoice date per line", func(t *testing.T) {
		histories, err := repo.LineHistories(ctx, []uuid.UUID{lineA, lineB})
		require.NoError(t, err)
		require.Len(t, histories, 2)

		historyA := histories[lineA]
		require.NotNil(t, historyA.LastEndPeriodDate)
		assert.Equal(t, feb.AddDate(0, 1, -1), contract.DateOf(*historyA.LastEndPeriodDate))
		require.NotNil(t, historyA.LastInvoiceDate)
		assert.Equal(t, mar, contract.DateOf(*historyA.LastInvoiceDate))

		historyB := histories[lineB]
		require.NotNil(t, historyB.LastEndPeriodDate)
		assert.Equal(t, jan.AddDate(0, 1, -1), contract.DateOf(*historyB.LastEndPeriodDate))
	})

	t.Run("omits lines without consumptions", func(t *testing.T) {
		histories, err := repo.LineHistories(ctx, []uuid.UUID{uuid.New()})
		require.NoError(t, err)
		assert.Empty(t, histories)
	})

	t.Run("empty input yields empty map", func(t *testing.T) {
		histories, err := repo.LineHistories(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, histories)
	})
}

func TestGormConsumptionRepository_SaveAll(t *testing.T) {
	db := setupConsumptionTestDB(t)
	repo := NewGormConsumptionRepository(db)
	ctx := context.Background()

	contractID := uuid.New()
	lineID := uuid.New()
	jan := contract.Date(2025, time.January, 1)

	c := testConsumption(lineID, contractID, jan, jan.AddDate(0, 1, -1), jan.AddDate(0, 1, 0))
	require.NoError(t, repo.CreateBatch(ctx, []*contract.Consumption{c}))

	invoiceLineID := uuid.New()
	require.NoError(t, c.LinkInvoiceLine(invoiceLineID))
	require.NoError(t, repo.SaveAll(ctx, []*contract.Consumption{c}))

	found, err := repo.FindByID(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, found.InvoiceLineID)
	assert.Equal(t, invoiceLineID, *found.InvoiceLineID)
}
