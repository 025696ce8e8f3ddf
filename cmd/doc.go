// Package cmd implements the command-line interface of dLVB. It provides commands for
// running the server and for talking to it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: starts and configures the dLVB server
//   - lock: lock value block operations (enqueue, glimpse, release, free, update, stats)
//   - obj: object attribute operations (put, delete, stat)
//   - util: shared flag and configuration helpers (internal use)
//
// Every flag can also be set with an environment variable DLVB_<FLAG>. See dlvb -help for
// a list of all commands.
package cmd
