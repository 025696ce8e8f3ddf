// Package workq provides the worker pools that run lock requests on the server.
//
// A Pool has one serial queue and a fixed number of partitioned queues. Each queue is an
// unbounded lock-free multi-producer single-consumer queue drained by exactly one goroutine,
// so work submitted to the same queue runs one at a time:
//
//   - Submit(key, fn) runs fn on the partition key hashes to (FNV-1a). All work for one
//     key, e.g. one resource name, is therefore processed in submission order.
//   - SubmitSerial(fn) runs fn on the serial queue, for work that must not overlap with
//     other serial work (namespace setup, statistics).
//   - Do and DoSerial submit and wait for the result.
//
// Stop closes all queues, waits for queued work to finish and rejects new work with
// ErrPoolClosed.
package workq
