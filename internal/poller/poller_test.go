package poller

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stylemuse/shopassist/internal/docservice"
	"github.com/stylemuse/shopassist/internal/models"
)

// scriptedChecker returns per-task answers by call count: the nth query for a
// task id gets the nth script entry, and the last entry repeats.
type scriptedChecker struct {
	mu      sync.Mutex
	scripts map[string][]checkResult
	calls   map[string]int
}

type checkResult struct {
	status docservice.TaskStatus
	err    error
}

func newScriptedChecker() *scriptedChecker {
	return &scriptedChecker{
		scripts: make(map[string][]checkResult),
		calls:   make(map[string]int),
	}
}

func (c *scriptedChecker) script(taskID string, results ...checkResult) {
	c.scripts[taskID] = results
}

func (c *scriptedChecker) TaskStatus(_ context.Context, taskID string) (docservice.TaskStatus, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls[taskID]++
	script := c.scripts[taskID]
	if len(script) == 0 {
		return docservice.TaskStatus{}, errors.New("no script for " + taskID)
	}
	idx := c.calls[taskID] - 1
	if idx >= len(script) {
		idx = len(script) - 1
	}
	r := script[idx]
	return r.status, r.err
}

func (c *scriptedChecker) callCount(taskID string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[taskID]
}

func processing() docservice.TaskStatus {
	return docservice.TaskStatus{Status: models.TaskStatusProcessing}
}

func completed(url string) docservice.TaskStatus {
	return docservice.TaskStatus{Status: models.TaskStatusCompleted, DownloadURL: url}
}

func failed() docservice.TaskStatus {
	return docservice.TaskStatus{Status: models.TaskStatusFailed}
}

func TestRun_AllComplete(t *testing.T) {
	checker := newScriptedChecker()
	checker.script("a", checkResult{status: completed("https://cdn/a")})
	checker.script("b", checkResult{status: processing()}, checkResult{status: completed("https://cdn/b")})

	p := New(checker, 5*time.Millisecond, time.Second)
	tasks := []Task{
		{TaskID: "a", Kind: models.TaskKindCompressed, Status: models.TaskStatusProcessing},
		{TaskID: "b", Kind: models.TaskKindSocialImages, Status: models.TaskStatusProcessing},
	}

	s := p.Run(context.Background(), tasks, nil)
	if s.Completed != 2 || s.Failed != 0 || s.Pending != 0 {
		t.Errorf("summary = %+v, want 2 completed", s)
	}
	if tasks[0].DownloadURL != "https://cdn/a" {
		t.Errorf("task a download URL = %q", tasks[0].DownloadURL)
	}
}

func TestRun_MixedOutcomeWithTimeout(t *testing.T) {
	// A completes on tick 1, B fails on tick 2, C never resolves: the batch
	// must stop at the timeout reporting 1/1/1.
	checker := newScriptedChecker()
	checker.script("a", checkResult{status: completed("https://cdn/a")})
	checker.script("b", checkResult{status: processing()}, checkResult{status: failed()})
	checker.script("c", checkResult{status: processing()})

	p := New(checker, 5*time.Millisecond, 60*time.Millisecond)
	tasks := []Task{
		{TaskID: "a", Status: models.TaskStatusProcessing},
		{TaskID: "b", Status: models.TaskStatusProcessing},
		{TaskID: "c", Status: models.TaskStatusProcessing},
	}

	start := time.Now()
	s := p.Run(context.Background(), tasks, nil)
	elapsed := time.Since(start)

	if s.Completed != 1 || s.Failed != 1 || s.Pending != 1 {
		t.Errorf("summary = %+v, want 1/1/1", s)
	}
	// Liveness: timeout plus at most one tick interval of slack.
	if elapsed > 100*time.Millisecond {
		t.Errorf("batch took %v, should stop at the 60ms timeout", elapsed)
	}
	// The unresolved task is left as-is, not forced to failed.
	if tasks[2].Status != models.TaskStatusProcessing {
		t.Errorf("task c status = %q, want processing", tasks[2].Status)
	}
}

func TestRun_PermanentQueryErrors(t *testing.T) {
	checker := newScriptedChecker()
	boom := errors.New("connection refused")
	checker.script("a", checkResult{err: boom})
	checker.script("b", checkResult{err: boom})

	p := New(checker, 5*time.Millisecond, 50*time.Millisecond)
	tasks := []Task{
		{TaskID: "a", Status: models.TaskStatusProcessing},
		{TaskID: "b", Status: models.TaskStatusProcessing},
	}

	s := p.Run(context.Background(), tasks, nil)
	if s.Pending != 2 || s.Completed != 0 || s.Failed != 0 {
		t.Errorf("summary = %+v, want all pending", s)
	}
	for _, task := range tasks {
		if task.Status != models.TaskStatusProcessing {
			t.Errorf("task %s status = %q, want processing (no false completion)", task.TaskID, task.Status)
		}
	}
	// Errors are transient: the task must have been retried across ticks.
	if checker.callCount("a") < 2 {
		t.Errorf("task a queried %d times, want retries", checker.callCount("a"))
	}
}

func TestRun_TerminalStatusNeverRequeried(t *testing.T) {
	checker := newScriptedChecker()
	// If the poller re-queried a completed task, the second script entry
	// would flip it to failed.
	checker.script("a", checkResult{status: completed("https://cdn/a")}, checkResult{status: failed()})
	checker.script("b", checkResult{status: processing()}, checkResult{status: processing()}, checkResult{status: completed("https://cdn/b")})

	p := New(checker, 5*time.Millisecond, time.Second)
	tasks := []Task{
		{TaskID: "a", Status: models.TaskStatusProcessing},
		{TaskID: "b", Status: models.TaskStatusProcessing},
	}

	s := p.Run(context.Background(), tasks, nil)
	if s.Completed != 2 {
		t.Fatalf("summary = %+v, want 2 completed", s)
	}
	if tasks[0].Status != models.TaskStatusCompleted {
		t.Errorf("task a regressed to %q", tasks[0].Status)
	}
	if checker.callCount("a") != 1 {
		t.Errorf("task a queried %d times after completion, want 1", checker.callCount("a"))
	}
}

func TestRun_UpdateCallbackFiresOncePerTerminalTask(t *testing.T) {
	checker := newScriptedChecker()
	checker.script("a", checkResult{status: completed("https://cdn/a")})
	checker.script("b", checkResult{status: failed()})

	var mu sync.Mutex
	seen := map[string]int{}

	p := New(checker, 5*time.Millisecond, time.Second)
	tasks := []Task{
		{TaskID: "a", Status: models.TaskStatusProcessing},
		{TaskID: "b", Status: models.TaskStatusProcessing},
	}

	p.Run(context.Background(), tasks, func(task Task) {
		mu.Lock()
		seen[task.TaskID]++
		mu.Unlock()
	})

	if seen["a"] != 1 || seen["b"] != 1 {
		t.Errorf("update counts = %v, want exactly one per task", seen)
	}
}

func TestRun_ContextCancelSupersedesBatch(t *testing.T) {
	checker := newScriptedChecker()
	checker.script("a", checkResult{status: processing()})

	ctx, cancel := context.WithCancel(context.Background())
	p := New(checker, 5*time.Millisecond, time.Minute)
	tasks := []Task{{TaskID: "a", Status: models.TaskStatusProcessing}}

	done := make(chan Summary, 1)
	go func() { done <- p.Run(ctx, tasks, nil) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case s := <-done:
		if s.Pending != 1 {
			t.Errorf("summary = %+v, want 1 pending", s)
		}
	case <-time.After(time.Second):
		t.Fatal("poller did not stop after cancellation")
	}
}
