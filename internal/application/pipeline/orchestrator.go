package pipeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/factoryplan/aps-go/internal/application/common"
	"github.com/factoryplan/aps-go/internal/domain/machine"
	"github.com/factoryplan/aps-go/internal/domain/plan"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
	"github.com/factoryplan/aps-go/internal/domain/shared"
	"github.com/factoryplan/aps-go/internal/domain/workorder"
)

// DefaultTaskTimeout is the wall-clock limit of one scheduling task.
const DefaultTaskTimeout = 600 * time.Second

// Config carries the tunables of the scheduling pipeline.
type Config struct {
	HorizonDays   int
	MinGap        time.Duration
	TaskTimeout   time.Duration
	WriterRetries int
}

// Orchestrator runs the scheduling pipeline for one task at a time per
// batch: load -> merge -> split -> correct -> sync -> write. It owns task
// lifecycle, progress, cooperative cancellation, and partial-output cleanup.
type Orchestrator struct {
	planRepo  plan.Repository
	refRepo   machine.ReferenceRepository
	taskRepo  scheduling.TaskRepository
	logRepo   scheduling.StageLogRepository
	orderRepo workorder.Repository
	seq       workorder.SequenceAllocator
	clock     shared.Clock
	cfg       Config

	mu      sync.Mutex
	running map[string]context.CancelFunc
}

func NewOrchestrator(
	planRepo plan.Repository,
	refRepo machine.ReferenceRepository,
	taskRepo scheduling.TaskRepository,
	logRepo scheduling.StageLogRepository,
	orderRepo workorder.Repository,
	seq workorder.SequenceAllocator,
	clock shared.Clock,
	cfg Config,
) *Orchestrator {
	if clock == nil {
		clock = shared.NewRealClock()
	}
	if cfg.TaskTimeout <= 0 {
		cfg.TaskTimeout = DefaultTaskTimeout
	}
	return &Orchestrator{
		planRepo:  planRepo,
		refRepo:   refRepo,
		taskRepo:  taskRepo,
		logRepo:   logRepo,
		orderRepo: orderRepo,
		seq:       seq,
		clock:     clock,
		cfg:       cfg,
		running:   make(map[string]context.CancelFunc),
	}
}

// StartTask registers a PENDING task for the batch. Starting a (batchId,
// flags) pair that already completed returns the existing task unless
// forceRerun is set. A batch may hold at most one non-terminal task.
func (o *Orchestrator) StartTask(ctx context.Context, batchID string, flags scheduling.Flags, forceRerun bool) (*scheduling.Task, error) {
	if !forceRerun {
		done, err := o.taskRepo.FindCompleted(ctx, batchID, flags.Fingerprint())
		if err != nil {
			return nil, err
		}
		if done != nil {
			return done, nil
		}
	}

	active, err := o.taskRepo.FindActiveByBatch(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if active != nil {
		return nil, scheduling.NewTaskAlreadyRunningError(batchID, active.TaskID())
	}

	task := scheduling.NewTask(batchID, flags, o.clock.Now())
	if err := o.taskRepo.Create(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

// GetTask returns a task by id.
func (o *Orchestrator) GetTask(ctx context.Context, taskID string) (*scheduling.Task, error) {
	return o.taskRepo.FindByID(ctx, taskID)
}

// ListTasks returns tasks matching the filter.
func (o *Orchestrator) ListTasks(ctx context.Context, filter scheduling.TaskFilter) ([]*scheduling.Task, error) {
	return o.taskRepo.List(ctx, filter)
}

// CancelTask requests cooperative cancellation. A running task transitions
// to CANCELLED once the current stage observes the token; a PENDING task is
// cancelled immediately.
func (o *Orchestrator) CancelTask(ctx context.Context, taskID string) error {
	o.mu.Lock()
	cancel, isRunning := o.running[taskID]
	o.mu.Unlock()

	if isRunning {
		cancel()
		return nil
	}

	task, err := o.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil || task.IsTerminal() {
		return nil
	}
	if err := task.Cancel(o.clock.Now()); err != nil {
		return err
	}
	return o.taskRepo.Update(ctx, task)
}

// Run executes the pipeline for a PENDING task. Cancellation is observed
// between stages and at bounded intervals inside long loops; a timeout is an
// internal cancellation reported as TIMEOUT.
func (o *Orchestrator) Run(ctx context.Context, taskID string) error {
	task, err := o.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil || task.Status() != scheduling.TaskStatusPending {
		return nil
	}

	runCtx, cancel := context.WithTimeout(ctx, o.cfg.TaskTimeout)
	defer cancel()

	o.mu.Lock()
	o.running[taskID] = cancel
	o.mu.Unlock()
	defer func() {
		o.mu.Lock()
		delete(o.running, taskID)
		o.mu.Unlock()
	}()

	if err := task.Start(o.clock.Now()); err != nil {
		return err
	}
	if err := o.taskRepo.Update(ctx, task); err != nil {
		return err
	}

	summary, runErr := o.runStages(runCtx, task)
	if runErr != nil {
		return o.finishWithError(ctx, runCtx, task, runErr)
	}

	if err := task.Complete(summary, o.clock.Now()); err != nil {
		return err
	}
	return o.taskRepo.Update(ctx, task)
}

func (o *Orchestrator) runStages(ctx context.Context, task *scheduling.Task) (scheduling.ResultSummary, error) {
	var (
		flags   = task.Flags()
		rows    []plan.DecadeRow
		orders  []*scheduling.LogicalOrder
		snap    *machine.ReferenceSnapshot
		cal     *Calendar
		summary scheduling.ResultSummary
	)

	err := o.runStage(ctx, task, scheduling.StageLoad, func(ctx context.Context) error {
		loaded, err := o.planRepo.LoadBatch(ctx, task.BatchID())
		if err != nil {
			return err
		}
		rows = rows[:0]
		for _, row := range loaded {
			if err := row.Validate(); err != nil {
				common.LoggerFromContext(ctx).Log("WARN", "skipping invalid row: "+err.Error(),
					map[string]interface{}{"row": row.Row, "workOrderNr": row.WorkOrderNr})
				continue
			}
			rows = append(rows, row)
		}
		loader := NewSnapshotLoader(o.refRepo, o.clock, o.cfg.HorizonDays)
		snap, err = loader.Load(ctx)
		if err != nil {
			return err
		}
		cal = NewCalendar(snap, o.cfg.HorizonDays)
		return nil
	})
	if err != nil {
		return summary, err
	}

	err = o.runStage(ctx, task, scheduling.StageMerge, func(ctx context.Context) error {
		var err error
		orders, err = NewMerger().Merge(rows, flags)
		return err
	})
	if err != nil {
		return summary, err
	}

	err = o.runStage(ctx, task, scheduling.StageSplit, func(ctx context.Context) error {
		var err error
		orders, err = NewSplitter().Split(orders, flags)
		return err
	})
	if err != nil {
		return summary, err
	}

	err = o.runStage(ctx, task, scheduling.StageCorrect, func(ctx context.Context) error {
		return NewCorrector(snap, cal, o.cfg.MinGap).Correct(ctx, orders, flags)
	})
	if err != nil {
		return summary, err
	}

	err = o.runStage(ctx, task, scheduling.StageSync, func(ctx context.Context) error {
		return NewSynchronizer(snap, cal).Sync(ctx, orders, flags)
	})
	if err != nil {
		return summary, err
	}

	err = o.runStage(ctx, task, scheduling.StageWrite, func(ctx context.Context) error {
		writer := NewWriter(snap, o.orderRepo, o.seq, o.clock, o.cfg.WriterRetries)
		var err error
		summary, err = writer.Write(ctx, task.TaskID(), task.BatchID(), orders)
		return err
	})
	if err != nil {
		return summary, err
	}

	task.SetTotals(len(rows), len(orders))
	return summary, nil
}

// runStage checks the cancellation token at stage entry, runs the stage with
// a stage-scoped logger in the context, and records progress and timing.
func (o *Orchestrator) runStage(ctx context.Context, task *scheduling.Task, stage string, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	logger := newStageLogger(o.logRepo, o.clock, task.TaskID(), stage)
	stageCtx := common.WithLogger(ctx, logger)

	task.EnterStage(stage)
	if err := o.taskRepo.Update(ctx, task); err != nil {
		return err
	}

	started := o.clock.Now()
	err := fn(stageCtx)
	elapsed := o.clock.Now().Sub(started).Milliseconds()

	if err != nil {
		logger.LogStep("run", "ERROR", err.Error(),
			map[string]interface{}{"kind": string(scheduling.KindOf(err))}, elapsed)
		return err
	}

	logger.LogStep("run", "INFO", "stage completed", nil, elapsed)
	task.CompleteStage(stage)
	return o.taskRepo.Update(ctx, task)
}

// finishWithError rolls back partial output and records the terminal state.
// Work orders written under the task id are deleted; allocated daily
// sequence numbers are not reclaimed.
func (o *Orchestrator) finishWithError(ctx, runCtx context.Context, task *scheduling.Task, runErr error) error {
	if err := o.orderRepo.DeleteByTaskID(ctx, task.TaskID()); err != nil {
		newStageLogger(o.logRepo, o.clock, task.TaskID(), task.CurrentStage()).
			Log("ERROR", "partial output cleanup failed: "+err.Error(), nil)
	}

	now := o.clock.Now()
	switch {
	case errors.Is(runErr, context.DeadlineExceeded) && errors.Is(runCtx.Err(), context.DeadlineExceeded):
		if err := task.Fail(string(scheduling.KindTimeout), now); err != nil {
			return err
		}
	case errors.Is(runErr, context.Canceled):
		if err := task.Cancel(now); err != nil {
			return err
		}
	default:
		if err := task.Fail(string(scheduling.KindOf(runErr)), now); err != nil {
			return err
		}
	}
	if err := o.taskRepo.Update(ctx, task); err != nil {
		return err
	}
	return runErr
}
