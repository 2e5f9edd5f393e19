package persistence_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/factoryplan/aps-go/internal/adapters/persistence"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
	"github.com/factoryplan/aps-go/test/helpers"
)

func TestTaskRepository_RoundTrip(t *testing.T) {
	repo := persistence.NewGormTaskRepository(helpers.NewTestDB(t))
	ctx := context.Background()

	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	task := scheduling.NewTask("BATCH-1", scheduling.DefaultFlags(), now)
	require.NoError(t, repo.Create(ctx, task))

	require.NoError(t, task.Start(now))
	task.EnterStage(scheduling.StageCorrect)
	task.CompleteStage(scheduling.StageCorrect)
	task.SetTotals(12, 9)
	require.NoError(t, repo.Update(ctx, task))

	found, err := repo.FindByID(ctx, task.TaskID())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, scheduling.TaskStatusRunning, found.Status())
	assert.Equal(t, scheduling.StageCorrect, found.CurrentStage())
	assert.Equal(t, 65, found.Progress())
	assert.Equal(t, 12, found.TotalRows())
	assert.Equal(t, 9, found.TotalOrders())
	assert.Equal(t, scheduling.DefaultFlags(), found.Flags())
	assert.Nil(t, found.Summary())
}

func TestTaskRepository_RoundTripsSummary(t *testing.T) {
	repo := persistence.NewGormTaskRepository(helpers.NewTestDB(t))
	ctx := context.Background()

	now := time.Now().UTC()
	task := scheduling.NewTask("BATCH-1", scheduling.DefaultFlags(), now)
	require.NoError(t, task.Start(now))
	require.NoError(t, task.Complete(scheduling.ResultSummary{TotalWorkOrders: 5, PackingOrders: 3, FeedingOrders: 2}, now))
	require.NoError(t, repo.Create(ctx, task))

	found, err := repo.FindByID(ctx, task.TaskID())
	require.NoError(t, err)
	require.NotNil(t, found.Summary())
	assert.Equal(t, 5, found.Summary().TotalWorkOrders)
	assert.Equal(t, 3, found.Summary().PackingOrders)
	assert.Equal(t, 2, found.Summary().FeedingOrders)
	require.NotNil(t, found.EndTime())
}

func TestTaskRepository_FindByIDMissingReturnsNil(t *testing.T) {
	repo := persistence.NewGormTaskRepository(helpers.NewTestDB(t))

	found, err := repo.FindByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestTaskRepository_FindActiveByBatch(t *testing.T) {
	repo := persistence.NewGormTaskRepository(helpers.NewTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	terminal := scheduling.NewTask("BATCH-1", scheduling.DefaultFlags(), now)
	require.NoError(t, terminal.Cancel(now))
	require.NoError(t, repo.Create(ctx, terminal))

	active, err := repo.FindActiveByBatch(ctx, "BATCH-1")
	require.NoError(t, err)
	assert.Nil(t, active)

	pending := scheduling.NewTask("BATCH-1", scheduling.DefaultFlags(), now)
	require.NoError(t, repo.Create(ctx, pending))

	active, err = repo.FindActiveByBatch(ctx, "BATCH-1")
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, pending.TaskID(), active.TaskID())
}

func TestTaskRepository_FindCompletedMatchesFlagsFingerprint(t *testing.T) {
	repo := persistence.NewGormTaskRepository(helpers.NewTestDB(t))
	ctx := context.Background()
	now := time.Now().UTC()

	flags := scheduling.DefaultFlags()
	done := scheduling.NewTask("BATCH-1", flags, now)
	require.NoError(t, done.Start(now))
	require.NoError(t, done.Complete(scheduling.ResultSummary{}, now))
	require.NoError(t, repo.Create(ctx, done))

	found, err := repo.FindCompleted(ctx, "BATCH-1", flags.Fingerprint())
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, done.TaskID(), found.TaskID())

	other := scheduling.DefaultFlags()
	other.SplitEnabled = false
	found, err = repo.FindCompleted(ctx, "BATCH-1", other.Fingerprint())
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestTaskRepository_ListFiltersAndPages(t *testing.T) {
	repo := persistence.NewGormTaskRepository(helpers.NewTestDB(t))
	ctx := context.Background()
	base := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		task := scheduling.NewTask("BATCH-1", scheduling.DefaultFlags(), base.Add(time.Duration(i)*time.Minute))
		if i == 0 {
			require.NoError(t, task.Cancel(base))
		}
		require.NoError(t, repo.Create(ctx, task))
	}

	pending, err := repo.List(ctx, scheduling.TaskFilter{
		BatchID:  "BATCH-1",
		Statuses: []scheduling.TaskStatus{scheduling.TaskStatusPending},
	})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	limited, err := repo.List(ctx, scheduling.TaskFilter{BatchID: "BATCH-1", Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	// Newest first
	assert.Equal(t, base.Add(2*time.Minute), limited[0].CreatedAt().UTC())
}
