// Package internal contains the raft log command and query types of the replicated object
// table. They are only meaningful to the dbackend state machine and its client side.
package internal
