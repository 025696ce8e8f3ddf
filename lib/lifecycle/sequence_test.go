package lifecycle

import (
	"errors"
	"reflect"
	"testing"
)

// recorder builds stages that log their start and stop calls.
type recorder struct {
	calls []string
}

func (r *recorder) stage(name string, failStart error) Stage {
	return Stage{
		Name: name,
		Start: func() error {
			r.calls = append(r.calls, "start "+name)
			return failStart
		},
		Stop: func() {
			r.calls = append(r.calls, "stop "+name)
		},
	}
}

func TestStartStopOrder(t *testing.T) {
	r := &recorder{}
	seq := New("test")
	for _, name := range []string{"workers", "rpc", "framework", "console"} {
		if err := seq.Add(r.stage(name, nil)); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}

	if seq.LastCompleted() != "" {
		t.Errorf("Expected no completed stage before start, got %s", seq.LastCompleted())
	}
	if err := seq.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if seq.LastCompleted() != "console" {
		t.Errorf("Expected console to be last completed, got %s", seq.LastCompleted())
	}

	seq.Stop()
	seq.Stop() // idempotent

	want := []string{
		"start workers", "start rpc", "start framework", "start console",
		"stop console", "stop framework", "stop rpc", "stop workers",
	}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("Expected %v, got %v", want, r.calls)
	}
	if seq.LastCompleted() != "" {
		t.Errorf("Expected no completed stage after stop, got %s", seq.LastCompleted())
	}
}

func TestStartRollback(t *testing.T) {
	r := &recorder{}
	boom := errors.New("boom")
	seq := New("test")
	_ = seq.Add(r.stage("workers", nil))
	_ = seq.Add(r.stage("rpc", nil))
	_ = seq.Add(r.stage("framework", boom))
	_ = seq.Add(r.stage("console", nil))

	err := seq.Start()
	if !errors.Is(err, boom) {
		t.Fatalf("Expected start error to wrap boom, got %v", err)
	}

	// the failed stage itself is not stopped
	want := []string{"start workers", "start rpc", "start framework", "stop rpc", "stop workers"}
	if !reflect.DeepEqual(r.calls, want) {
		t.Errorf("Expected %v, got %v", want, r.calls)
	}
	if seq.LastCompleted() != "" {
		t.Errorf("Expected nothing completed after rollback, got %s", seq.LastCompleted())
	}

	// stop after a failed start does nothing
	seq.Stop()
	if len(r.calls) != len(want) {
		t.Errorf("Expected no further calls, got %v", r.calls)
	}
}

func TestNilCallbacks(t *testing.T) {
	seq := New("test")
	_ = seq.Add(Stage{Name: "noop"})
	if err := seq.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if seq.LastCompleted() != "noop" {
		t.Errorf("Expected noop to be completed, got %s", seq.LastCompleted())
	}
	seq.Stop()
}

func TestAddWhileRunning(t *testing.T) {
	seq := New("test")
	_ = seq.Add(Stage{Name: "a"})
	if err := seq.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer seq.Stop()

	if err := seq.Add(Stage{Name: "b"}); err == nil {
		t.Error("Expected error adding a stage to a running sequence")
	}
	if err := seq.Start(); err == nil {
		t.Error("Expected error starting twice")
	}
}
