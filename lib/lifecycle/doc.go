// Package lifecycle runs an ordered list of startup stages and tears down exactly the
// stages that completed, in reverse order.
//
// A Sequence remembers the last stage that started successfully. If a stage fails, every
// stage before it is stopped again and Start returns the error, so a partially started
// server never leaks workers or listeners. Stop is idempotent.
//
// Example:
//
//	seq := lifecycle.New("server")
//	var pool *workq.Pool
//	seq.Add(lifecycle.Stage{
//	    Name:  "workers",
//	    Start: func() error { pool = workq.NewPool("rpc", 8); return nil },
//	    Stop:  func() { pool.Stop() },
//	})
//	seq.Add(lifecycle.Stage{Name: "rpc", Start: startRPC, Stop: stopRPC})
//	if err := seq.Start(); err != nil {
//	    return err
//	}
//	defer seq.Stop()
package lifecycle
