// Package util provides small helpers shared by the server, the worker pools and the CLI:
// key hashing for partitioning and raft ids, and random reference handles.
package util
