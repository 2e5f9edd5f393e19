package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/factoryplan/aps-go/internal/adapters/mes"
	"github.com/factoryplan/aps-go/internal/adapters/persistence"
	"github.com/factoryplan/aps-go/internal/application/common"
	"github.com/factoryplan/aps-go/internal/application/pipeline"
	"github.com/factoryplan/aps-go/internal/domain/scheduling"
	"github.com/factoryplan/aps-go/internal/domain/shared"
	"github.com/factoryplan/aps-go/internal/infrastructure/config"
	"github.com/factoryplan/aps-go/internal/infrastructure/database"
	"github.com/factoryplan/aps-go/internal/infrastructure/logging"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "aps-daemon",
		Short: "Production scheduling engine for packing and feeding machines",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default: search ., ./configs, /etc/aps)")

	root.AddCommand(daemonCmd())
	root.AddCommand(scheduleCmd())
	root.AddCommand(tasksCmd())
	root.AddCommand(cancelCmd())
	root.AddCommand(dispatchCmd())
	root.AddCommand(migrateCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// app bundles the wired application services.
type app struct {
	db   *gorm.DB
	cfg  *config.Config
	log  *slog.Logger
	med  common.Mediator
	pool *pipeline.TaskWorkerPool
}

func buildApp() (*app, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, err
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	planRepo := persistence.NewGormPlanRepository(db)
	refRepo := persistence.NewGormReferenceRepository(db)
	taskRepo := persistence.NewGormTaskRepository(db)
	logRepo := persistence.NewGormStageLogRepository(db)
	orderRepo := persistence.NewGormWorkOrderRepository(db)
	seq := persistence.NewGormSequenceAllocator(db)

	orch := pipeline.NewOrchestrator(
		planRepo, refRepo, taskRepo, logRepo, orderRepo, seq,
		shared.NewRealClock(),
		pipeline.Config{
			HorizonDays:   cfg.Scheduling.HorizonDays,
			MinGap:        cfg.Scheduling.MinGap,
			TaskTimeout:   cfg.Scheduling.TaskTimeout,
			WriterRetries: cfg.Scheduling.WriterRetries,
		},
	)
	pool := pipeline.NewTaskWorkerPool(orch, taskRepo, cfg.Scheduling.MaxConcurrentTasks)

	med := common.NewMediator()
	if err := common.RegisterHandler[*pipeline.StartTaskCommand](med, pipeline.NewStartTaskHandler(orch, pool)); err != nil {
		return nil, fmt.Errorf("failed to register StartTask handler: %w", err)
	}
	if err := common.RegisterHandler[*pipeline.GetTaskQuery](med, pipeline.NewGetTaskHandler(orch)); err != nil {
		return nil, fmt.Errorf("failed to register GetTask handler: %w", err)
	}
	if err := common.RegisterHandler[*pipeline.CancelTaskCommand](med, pipeline.NewCancelTaskHandler(orch)); err != nil {
		return nil, fmt.Errorf("failed to register CancelTask handler: %w", err)
	}
	if err := common.RegisterHandler[*pipeline.ListTasksQuery](med, pipeline.NewListTasksHandler(orch)); err != nil {
		return nil, fmt.Errorf("failed to register ListTasks handler: %w", err)
	}

	return &app{db: db, cfg: cfg, log: logger, med: med, pool: pool}, nil
}

func (a *app) close() {
	if err := database.Close(a.db); err != nil {
		a.log.Warn("failed to close database", "error", err)
	}
}

func daemonCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "daemon",
		Short: "Run the scheduling worker pool until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a.log.Info("daemon started", "workers", a.cfg.Scheduling.MaxConcurrentTasks)
			a.pool.Run(ctx)
			a.log.Info("daemon stopped")
			return nil
		},
	}
}

func scheduleCmd() *cobra.Command {
	var (
		merge, split, correct, parallel bool
		force                           bool
		wait                            bool
	)
	cmd := &cobra.Command{
		Use:   "schedule <batch-id>",
		Short: "Start a scheduling task for an imported plan batch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go a.pool.Run(ctx)

			resp, err := a.med.Send(ctx, &pipeline.StartTaskCommand{
				BatchID: args[0],
				Flags: scheduling.Flags{
					MergeEnabled:      merge,
					SplitEnabled:      split,
					CorrectionEnabled: correct,
					ParallelEnabled:   parallel,
				},
				ForceRerun: force,
			})
			if err != nil {
				return err
			}
			started := resp.(*pipeline.StartTaskResponse)
			fmt.Printf("task %s: %s\n", started.TaskID, started.Status)

			if !wait || started.Status != scheduling.TaskStatusPending {
				return nil
			}
			return pollTask(ctx, a, started.TaskID)
		},
	}
	cmd.Flags().BoolVar(&merge, "merge", true, "merge compatible plan rows")
	cmd.Flags().BoolVar(&split, "split", true, "split multi-packer orders")
	cmd.Flags().BoolVar(&correct, "correct", true, "apply calendar time correction")
	cmd.Flags().BoolVar(&parallel, "parallel", true, "synchronize parallel order groups")
	cmd.Flags().BoolVar(&force, "force", false, "rerun even if an identical completed task exists")
	cmd.Flags().BoolVar(&wait, "wait", false, "block until the task reaches a terminal status")
	return cmd
}

func pollTask(ctx context.Context, a *app, taskID string) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			resp, err := a.med.Send(ctx, &pipeline.GetTaskQuery{TaskID: taskID})
			if err != nil {
				return err
			}
			task, _ := resp.(*scheduling.Task)
			if task == nil {
				return fmt.Errorf("task %s not found", taskID)
			}
			fmt.Printf("  %s %3d%% %s\n", task.Status(), task.Progress(), task.CurrentStage())
			if task.IsTerminal() {
				if msg := task.ErrorMessage(); msg != "" {
					return fmt.Errorf("task %s finished %s: %s", taskID, task.Status(), msg)
				}
				if s := task.Summary(); s != nil {
					fmt.Printf("done: %d work orders (%d packing, %d feeding)\n",
						s.TotalWorkOrders, s.PackingOrders, s.FeedingOrders)
				}
				return nil
			}
		}
	}
}

func tasksCmd() *cobra.Command {
	var (
		batchID  string
		statuses []string
		limit    int
	)
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "List scheduling tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			filter := scheduling.TaskFilter{BatchID: batchID, Limit: limit}
			for _, s := range statuses {
				filter.Statuses = append(filter.Statuses, scheduling.TaskStatus(strings.ToUpper(s)))
			}

			resp, err := a.med.Send(cmd.Context(), &pipeline.ListTasksQuery{Filter: filter})
			if err != nil {
				return err
			}
			tasks := resp.([]*scheduling.Task)
			if len(tasks) == 0 {
				fmt.Println("no tasks")
				return nil
			}
			for _, t := range tasks {
				fmt.Printf("%s  %-10s %3d%%  batch=%s  created=%s\n",
					t.TaskID(), t.Status(), t.Progress(), t.BatchID(),
					t.CreatedAt().Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&batchID, "batch", "", "filter by batch id")
	cmd.Flags().StringSliceVar(&statuses, "status", nil, "filter by status (repeatable)")
	cmd.Flags().IntVar(&limit, "limit", 50, "maximum tasks to list")
	return cmd
}

func cancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <task-id>",
		Short: "Request cancellation of a pending or running task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.med.Send(cmd.Context(), &pipeline.CancelTaskCommand{TaskID: args[0]}); err != nil {
				return err
			}
			fmt.Printf("cancellation requested for %s\n", args[0])
			return nil
		},
	}
}

func dispatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dispatch <task-id>",
		Short: "Push the planned work orders of a completed task to the MES",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			var transport mes.Transport = mes.NoopTransport{}
			if a.cfg.MES.Endpoint != "" {
				transport = mes.NewHTTPTransport(a.cfg.MES.Endpoint)
			}
			client := mes.NewDispatchClient(
				persistence.NewGormWorkOrderRepository(a.db), transport, a.cfg.MES.RateLimit)

			sent, err := client.DispatchTask(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("dispatched %d orders before failing: %w", sent, err)
			}
			if a.cfg.MES.Endpoint == "" {
				fmt.Printf("no MES endpoint configured: marked %d orders dispatched without sending\n", sent)
				return nil
			}
			fmt.Printf("dispatched %d orders to %s\n", sent, a.cfg.MES.Endpoint)
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.close()

			if err := database.AutoMigrate(a.db); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}
