package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultDispatchSchedule is how often due reminders are swept.
const DefaultDispatchSchedule = "@every 15s"

// Dispatcher runs ReminderService.DispatchDue on a cron schedule.
type Dispatcher struct {
	cron      *cron.Cron
	reminders *ReminderService
}

// NewDispatcher creates a Dispatcher for the given cron schedule. Overlapping
// runs are skipped rather than queued.
func NewDispatcher(reminders *ReminderService, schedule string) (*Dispatcher, error) {
	if schedule == "" {
		schedule = DefaultDispatchSchedule
	}

	logger := cronLogger{}
	c := cron.New(
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	)

	d := &Dispatcher{cron: c, reminders: reminders}
	if _, err := c.AddFunc(schedule, d.run); err != nil {
		return nil, fmt.Errorf("add dispatch schedule %q: %w", schedule, err)
	}
	return d, nil
}

// Start begins dispatching in the background.
func (d *Dispatcher) Start() {
	d.cron.Start()
	slog.Info("reminder dispatcher started")
}

// Stop halts the schedule and waits for a running sweep to finish or for ctx
// to expire.
func (d *Dispatcher) Stop(ctx context.Context) error {
	done := d.cron.Stop()
	select {
	case <-done.Done():
		slog.Info("reminder dispatcher stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := d.reminders.DispatchDue(ctx)
	if err != nil {
		slog.Error("dispatch reminders", "error", err)
	}
	if n > 0 {
		slog.Info("reminders delivered", "count", n)
	}
}

// cronLogger routes cron's internal logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
