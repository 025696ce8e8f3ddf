package workq

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// node is a single element of the queue's linked list.
type node[T any] struct {
	value T
	next  atomic.Pointer[node[T]]
}

// queue is an unbounded lock-free multi-producer single-consumer queue.
//
// Producers append to the tail with CAS. A single internal goroutine walks the list from
// the head and hands the values to Recv(). Values pushed by one producer are delivered in
// push order; values of different producers interleave in whatever order their CAS won.
type queue[T any] struct {
	head     atomic.Pointer[node[T]]
	tail     atomic.Pointer[node[T]]
	out      chan T
	consumer sync.WaitGroup
	closed   atomic.Bool
	pending  atomic.Int64

	// the consumer sleeps on cond when the list is empty
	mu   sync.Mutex
	cond *sync.Cond
}

func newQueue[T any]() *queue[T] {
	sentinel := &node[T]{}

	q := &queue[T]{
		out: make(chan T),
	}
	q.cond = sync.NewCond(&q.mu)
	q.head.Store(sentinel)
	q.tail.Store(sentinel)

	q.consumer.Add(1)
	go q.consume()

	return q
}

// push appends value. It returns false if the queue is closed.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (q *queue[T]) push(value T) bool {
	if q.closed.Load() {
		return false
	}

	n := &node[T]{value: value}
	q.pending.Add(1)
	var backoff uint8

	for {
		tail := q.tail.Load()
		next := tail.next.Load()

		if next == nil {
			if tail.next.CompareAndSwap(nil, n) {
				// another producer may already have swung the tail for us
				q.tail.CompareAndSwap(tail, n)

				// signal under the lock, the consumer checks the list while holding it
				q.mu.Lock()
				q.cond.Signal()
				q.mu.Unlock()
				return true
			}
		} else {
			// help a producer that appended but has not moved the tail yet
			q.tail.CompareAndSwap(tail, next)
		}

		// spin a little under contention, then yield
		if backoff < 10 {
			backoff++
			for i := 0; i < 1<<backoff; i++ {
				runtime.Gosched()
			}
		}
		runtime.Gosched()
	}
}

// consume moves values from the list to the out channel until the queue is closed and empty.
func (q *queue[T]) consume() {
	defer q.consumer.Done()
	defer close(q.out)

	var zero T
	for {
		drained := false

		for {
			head := q.head.Load()
			next := head.next.Load()
			if next == nil {
				break
			}
			drained = true

			value := next.value
			q.head.Store(next)
			q.pending.Add(-1)
			q.out <- value

			// the old head is garbage now, drop the reference the new head still holds
			next.value = zero
		}

		if !drained && q.closed.Load() {
			return
		}

		if !drained {
			q.mu.Lock()
			if q.head.Load().next.Load() == nil && !q.closed.Load() {
				q.cond.Wait()
			}
			q.mu.Unlock()
		}
	}
}

// recv returns the channel values are delivered on. It is closed once the queue is closed
// and every pushed value was delivered.
func (q *queue[T]) recv() <-chan T {
	return q.out
}

// close stops further pushes. Values already queued are still delivered.
func (q *queue[T]) close() {
	q.closed.Store(true)

	q.mu.Lock()
	q.cond.Signal()
	q.mu.Unlock()
}

// len returns an approximate number of values not yet handed to the consumer.
func (q *queue[T]) len() int {
	return int(q.pending.Load())
}
