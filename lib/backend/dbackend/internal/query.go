package internal

import "github.com/ValentinKolb/dLVB/lib/backend"

// QueryType defines the possible queries for the state machine.
type QueryType uint8

const (
	QueryTLookup QueryType = iota // Retrieve the attributes of an object.
	QueryTCount                   // Retrieve the number of objects.
)

func (q QueryType) String() string {
	switch q {
	case QueryTLookup:
		return "Lookup"
	case QueryTCount:
		return "Count"
	default:
		return "Unknown"
	}
}

// Query defines the structure for lookup requests (read-only) sent via SyncRead or StaleRead
type Query struct {
	Type     QueryType
	ObjectID string
}

// QueryResult is the result of a QueryTLookup operation.
type QueryResult struct {
	Ok    bool
	Attrs backend.Attributes
}
