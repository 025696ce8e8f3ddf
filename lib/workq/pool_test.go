package workq

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSubmitOrderPerKey(t *testing.T) {
	p := NewPool("test", 4)
	defer p.Stop()

	const keys = 8
	const perKey = 200

	var mu sync.Mutex
	seen := make(map[string][]int)

	var wg sync.WaitGroup
	wg.Add(keys * perKey)
	for k := 0; k < keys; k++ {
		key := fmt.Sprintf("obj-%d", k)
		go func() {
			for i := 0; i < perKey; i++ {
				i := i
				if err := p.Submit(key, func() {
					defer wg.Done()
					mu.Lock()
					seen[key] = append(seen[key], i)
					mu.Unlock()
				}); err != nil {
					t.Errorf("Submit failed: %v", err)
					wg.Done()
				}
			}
		}()
	}
	wg.Wait()

	for key, order := range seen {
		if len(order) != perKey {
			t.Errorf("%s: expected %d tasks, got %d", key, perKey, len(order))
		}
		for i, v := range order {
			if v != i {
				t.Errorf("%s: task %d ran at position %d", key, v, i)
				break
			}
		}
	}
}

func TestPartitionIsStable(t *testing.T) {
	p := NewPool("test", 16)
	defer p.Stop()

	if p.Partitions() != 16 {
		t.Fatalf("Expected 16 partitions, got %d", p.Partitions())
	}
	for i := 0; i < 100; i++ {
		key := fmt.Sprintf("obj-%d", i)
		part := p.Partition(key)
		if part < 0 || part >= 16 {
			t.Fatalf("Partition %d out of range", part)
		}
		if p.Partition(key) != part {
			t.Fatalf("Partition of %s changed", key)
		}
	}

	single := NewPool("zero", 0)
	defer single.Stop()
	if single.Partitions() != 1 {
		t.Errorf("Expected at least one partition, got %d", single.Partitions())
	}
}

func TestDo(t *testing.T) {
	p := NewPool("test", 2)
	defer p.Stop()

	boom := errors.New("boom")
	if err := p.Do("obj-1", func() error { return boom }); !errors.Is(err, boom) {
		t.Errorf("Expected boom, got %v", err)
	}
	if err := p.DoSerial(func() error { return nil }); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// a panicking task is reported and the worker survives
	if err := p.Do("obj-1", func() error { panic("oops") }); err == nil {
		t.Error("Expected error from panicking task")
	}
	if err := p.Do("obj-1", func() error { return nil }); err != nil {
		t.Errorf("Expected worker to survive the panic, got %v", err)
	}
}

func TestSerialRunsOneAtATime(t *testing.T) {
	p := NewPool("test", 2)
	defer p.Stop()

	var running, maxRunning atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = p.DoSerial(func() error {
				n := running.Add(1)
				for {
					m := maxRunning.Load()
					if n <= m || maxRunning.CompareAndSwap(m, n) {
						break
					}
				}
				time.Sleep(100 * time.Microsecond)
				running.Add(-1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxRunning.Load() != 1 {
		t.Errorf("Expected serial tasks not to overlap, saw %d at once", maxRunning.Load())
	}
}

func TestStopDrainsAndRejects(t *testing.T) {
	p := NewPool("test", 2)

	var ran atomic.Int32
	for i := 0; i < 100; i++ {
		if err := p.Submit(fmt.Sprintf("k%d", i), func() {
			time.Sleep(10 * time.Microsecond)
			ran.Add(1)
		}); err != nil {
			t.Fatalf("Submit failed: %v", err)
		}
	}

	p.Stop()
	p.Stop()

	if ran.Load() != 100 {
		t.Errorf("Expected all 100 queued tasks to run, got %d", ran.Load())
	}
	if err := p.Submit("k", func() {}); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Expected ErrPoolClosed, got %v", err)
	}
	if err := p.Do("k", func() error { return nil }); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Expected ErrPoolClosed, got %v", err)
	}
	if p.Pending() != 0 {
		t.Errorf("Expected nothing pending, got %d", p.Pending())
	}
}
