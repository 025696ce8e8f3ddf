package workq

import (
	"runtime"
	"sync"
	"testing"
	"time"
)

func TestQueueBasic(t *testing.T) {
	q := newQueue[int]()
	defer q.close()

	for i := 0; i < 10; i++ {
		if !q.push(i) {
			t.Fatalf("Failed to push item %d", i)
		}
	}

	for i := 0; i < 10; i++ {
		select {
		case val := <-q.recv():
			if val != i {
				t.Errorf("Expected %d, got %d", i, val)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for item %d", i)
		}
	}

	select {
	case val := <-q.recv():
		t.Errorf("Queue should be empty, but got %d", val)
	case <-time.After(10 * time.Millisecond):
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	q := newQueue[int]()
	defer q.close()

	const numProducers = 10
	const itemsPerProducer = 1000
	total := numProducers * itemsPerProducer

	done := make(chan struct{})
	received := make(map[int]bool, total)
	lastPerProducer := make([]int, numProducers)
	for i := range lastPerProducer {
		lastPerProducer[i] = -1
	}

	go func() {
		defer close(done)
		for len(received) < total {
			select {
			case val := <-q.recv():
				if received[val] {
					t.Errorf("Duplicate item received: %d", val)
				}
				received[val] = true

				// per producer order is preserved
				producer, seq := val/itemsPerProducer, val%itemsPerProducer
				if seq <= lastPerProducer[producer] {
					t.Errorf("Producer %d: item %d after %d", producer, seq, lastPerProducer[producer])
				}
				lastPerProducer[producer] = seq
			case <-time.After(2 * time.Second):
				t.Errorf("Timeout waiting for items, received %d of %d", len(received), total)
				return
			}
		}
	}()

	var wg sync.WaitGroup
	wg.Add(numProducers)
	for p := 0; p < numProducers; p++ {
		go func(producer int) {
			defer wg.Done()
			for i := 0; i < itemsPerProducer; i++ {
				if !q.push(producer*itemsPerProducer + i) {
					t.Errorf("Producer %d failed to push item %d", producer, i)
				}
				if i%100 == 0 {
					runtime.Gosched()
				}
			}
		}(p)
	}
	wg.Wait()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("Timeout waiting for consumer to finish")
	}
	if len(received) != total {
		t.Errorf("Expected %d items, got %d", total, len(received))
	}
}

func TestQueueClose(t *testing.T) {
	q := newQueue[int]()
	for i := 0; i < 5; i++ {
		q.push(i)
	}
	q.close()

	if q.push(100) {
		t.Error("Should not be able to push after queue is closed")
	}

	for i := 0; i < 5; i++ {
		select {
		case val := <-q.recv():
			if val != i {
				t.Errorf("Expected %d, got %d", i, val)
			}
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("Timeout waiting for item %d after close", i)
		}
	}

	select {
	case _, ok := <-q.recv():
		if ok {
			t.Error("Channel should be closed but is still open")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Timeout waiting for channel to close")
	}
	if q.len() != 0 {
		t.Errorf("Expected empty queue, got %d", q.len())
	}
}

func BenchmarkQueuePush(b *testing.B) {
	q := newQueue[int]()
	go func() {
		for range q.recv() {
		}
	}()
	defer q.close()

	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			q.push(i)
			i++
		}
	})
}
