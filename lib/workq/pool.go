package workq

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/util"
	"github.com/lni/dragonboat/v4/logger"
	"sync"
	"sync/atomic"
)

var log = logger.GetLogger("workq")

// ErrPoolClosed is returned for work submitted after Stop.
var ErrPoolClosed = errors.New("workq: pool closed")

// Pool is a set of single-goroutine queues, see the package documentation.
type Pool struct {
	name       string
	serial     *queue[func()]
	partitions []*queue[func()]

	workers sync.WaitGroup
	stopped chan struct{}
	closed  atomic.Bool
}

// NewPool creates a pool with the given number of partitions (at least one) and starts its
// workers.
func NewPool(name string, partitions int) *Pool {
	if partitions < 1 {
		partitions = 1
	}

	p := &Pool{
		name:       name,
		serial:     newQueue[func()](),
		partitions: make([]*queue[func()], partitions),
		stopped:    make(chan struct{}),
	}
	p.start(p.serial, "serial")
	for i := range p.partitions {
		p.partitions[i] = newQueue[func()]()
		p.start(p.partitions[i], fmt.Sprintf("partition %d", i))
	}

	log.Infof("%s: started pool with %d partitions", name, partitions)
	return p
}

func (p *Pool) start(q *queue[func()], label string) {
	p.workers.Add(1)
	go func() {
		defer p.workers.Done()
		for fn := range q.recv() {
			p.run(fn, label)
		}
	}()
}

// run executes fn and keeps the worker alive if fn panics.
func (p *Pool) run(fn func(), label string) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("%s: task on %s panicked: %v", p.name, label, r)
		}
	}()
	fn()
}

// Partitions returns the number of partitioned queues.
func (p *Pool) Partitions() int {
	return len(p.partitions)
}

// Partition returns the index of the queue key is processed on.
func (p *Pool) Partition(key string) int {
	return int(util.HashString(key, 0) % uint64(len(p.partitions)))
}

// Pending returns the approximate number of queued tasks that have not started yet.
func (p *Pool) Pending() int {
	n := p.serial.len()
	for _, q := range p.partitions {
		n += q.len()
	}
	return n
}

// Submit queues fn on the partition of key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *Pool) Submit(key string, fn func()) error {
	if !p.partitions[p.Partition(key)].push(fn) {
		return ErrPoolClosed
	}
	return nil
}

// SubmitSerial queues fn on the serial queue.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *Pool) SubmitSerial(fn func()) error {
	if !p.serial.push(fn) {
		return ErrPoolClosed
	}
	return nil
}

// Do runs fn on the partition of key and returns its error.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *Pool) Do(key string, fn func() error) error {
	return p.wait(func(task func()) error { return p.Submit(key, task) }, fn)
}

// DoSerial runs fn on the serial queue and returns its error.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (p *Pool) DoSerial(fn func() error) error {
	return p.wait(p.SubmitSerial, fn)
}

func (p *Pool) wait(submit func(func()) error, fn func() error) error {
	done := make(chan error, 1)
	err := submit(func() {
		var err error
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("workq: task panicked: %v", r)
			}
			done <- err
		}()
		err = fn()
	})
	if err != nil {
		return err
	}

	select {
	case err := <-done:
		return err
	case <-p.stopped:
		// the task may have run just before the workers exited
		select {
		case err := <-done:
			return err
		default:
			return ErrPoolClosed
		}
	}
}

// Stop rejects new work, waits until all queued work has run and stops the workers.
func (p *Pool) Stop() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.serial.close()
	for _, q := range p.partitions {
		q.close()
	}
	p.workers.Wait()
	close(p.stopped)
	log.Infof("%s: stopped pool", p.name)
}
