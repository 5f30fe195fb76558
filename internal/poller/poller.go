// Package poller drives repeated status checks for a batch of asynchronous
// document-processing tasks until every task reaches a terminal state or the
// batch timeout expires.
package poller

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stylemuse/shopassist/internal/docservice"
	"github.com/stylemuse/shopassist/internal/models"
)

// TaskChecker queries the remote state of one task.
type TaskChecker interface {
	TaskStatus(ctx context.Context, taskID string) (docservice.TaskStatus, error)
}

// Task is the poller's view of one outstanding job.
type Task struct {
	TaskID      string
	Kind        string
	Status      string
	DownloadURL string
}

// Summary aggregates a finished batch. Pending counts tasks still processing
// when the timeout cut the batch off; their status is left untouched.
type Summary struct {
	Completed int
	Failed    int
	Pending   int
}

// Done reports whether every task resolved before the timeout.
func (s Summary) Done() bool { return s.Pending == 0 }

type Poller struct {
	checker  TaskChecker
	interval time.Duration
	timeout  time.Duration
}

func New(checker TaskChecker, interval, timeout time.Duration) *Poller {
	return &Poller{checker: checker, interval: interval, timeout: timeout}
}

// Run polls the batch until all tasks are terminal or the timeout elapses,
// then returns the aggregate summary. Ticks are strictly sequential; within a
// tick every still-processing task is queried concurrently and the tick waits
// for all queries to settle. Transitions are applied in place to tasks, and
// onUpdate (if non-nil) fires once per task as it reaches a terminal state;
// it may be invoked concurrently for different tasks within one tick.
// A query error leaves the task processing; it is retried on the next tick.
// Cancelling ctx stops the batch the same way the timeout does.
func (p *Poller) Run(ctx context.Context, tasks []Task, onUpdate func(Task)) Summary {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for anyProcessing(tasks) {
		select {
		case <-ctx.Done():
			s := summarize(tasks)
			slog.Info("task batch timed out",
				"completed", s.Completed, "failed", s.Failed, "pending", s.Pending)
			return s
		case <-ticker.C:
		}
		p.tick(ctx, tasks, onUpdate)
	}

	s := summarize(tasks)
	slog.Info("task batch resolved", "completed", s.Completed, "failed", s.Failed)
	return s
}

func (p *Poller) tick(ctx context.Context, tasks []Task, onUpdate func(Task)) {
	var g errgroup.Group
	for i := range tasks {
		if tasks[i].Status != models.TaskStatusProcessing {
			continue
		}
		t := &tasks[i]
		g.Go(func() error {
			st, err := p.checker.TaskStatus(ctx, t.TaskID)
			if err != nil {
				// Transient: leave the task processing and retry next tick.
				slog.Debug("task status check failed", "task_id", t.TaskID, "error", err)
				return nil
			}
			if !models.Terminal(st.Status) {
				return nil
			}
			t.Status = st.Status
			t.DownloadURL = st.DownloadURL
			if onUpdate != nil {
				onUpdate(*t)
			}
			return nil
		})
	}
	g.Wait()
}

func anyProcessing(tasks []Task) bool {
	for _, t := range tasks {
		if t.Status == models.TaskStatusProcessing {
			return true
		}
	}
	return false
}

func summarize(tasks []Task) Summary {
	var s Summary
	for _, t := range tasks {
		switch t.Status {
		case models.TaskStatusCompleted:
			s.Completed++
		case models.TaskStatusFailed:
			s.Failed++
		default:
			s.Pending++
		}
	}
	return s
}
