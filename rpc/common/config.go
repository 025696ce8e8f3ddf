package common

import (
	"fmt"
	"github.com/lni/dragonboat/v4/config"
	"slices"
	"strings"
)

// --------------------------------------------------------------------------
// helper functions for to interface with Dragonboat (for the server util)
// --------------------------------------------------------------------------

// Dragonboat uses RTT (Round Trip Time) to determine the timing of elections and heartbeats.
// These default values are selected according to the RAFT Paper
const (
	electionRTTFactor  = 10
	heartbeatRTTFactor = 1
)

// ToDragonboatConfig converts the ServerConfig to Dragonboat Config
func (c *ServerConfig) ToDragonboatConfig(shardId uint64) config.Config {
	return config.Config{
		ReplicaID:          c.ReplicaID,
		ShardID:            shardId,
		ElectionRTT:        electionRTTFactor,  // = c.RTTMillisecond * 10
		HeartbeatRTT:       heartbeatRTTFactor, // = c.RTTMillisecond * 2
		CheckQuorum:        true,
		SnapshotEntries:    c.SnapshotEntries,
		CompactionOverhead: c.CompactionOverhead,
		MaxInMemLogSize:    0,
	}
}

// ToNodeHostConfig creates a NodeHostConfig for Dragonboat
func (c *ServerConfig) ToNodeHostConfig() config.NodeHostConfig {
	return config.NodeHostConfig{
		WALDir:         c.DataDir,
		NodeHostDir:    c.DataDir,
		RTTMillisecond: c.RTTMillisecond,
		RaftAddress:    c.ClusterMembers[c.ReplicaID],
	}
}

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// NamespaceBackend names the object backend a namespace reads its value blocks from.
type NamespaceBackend string

const (
	BackendLocal NamespaceBackend = "local" // in-memory object table on this node
	BackendRaft  NamespaceBackend = "raft"  // object table replicated with dragonboat
	BackendNone  NamespaceBackend = "none"  // no value block ops, locks only
)

// ParseNamespaceBackend parses local, raft or none.
func ParseNamespaceBackend(s string) (NamespaceBackend, error) {
	switch NamespaceBackend(strings.ToLower(strings.TrimSpace(s))) {
	case BackendLocal:
		return BackendLocal, nil
	case BackendRaft:
		return BackendRaft, nil
	case BackendNone:
		return BackendNone, nil
	default:
		return "", fmt.Errorf("invalid namespace backend: %s (expected one of: local, raft, none)", s)
	}
}

type ServerNamespace struct {
	// Name is the name of the namespace, clients address it by this name
	Name string
	// Backend is where object attributes are read from
	Backend NamespaceBackend
	// ShardID is the raft shard of the object table (only for raft namespaces)
	ShardID uint64
}

// ServerConfig holds all configuration parameters of a dLVB server.
type ServerConfig struct {
	// the namespaces this server serves
	Namespaces []ServerNamespace

	// value block cache
	MaxLVBSize          int
	UpdateFailurePolicy string

	// worker pool
	Workers int

	// Dragenboat parameters
	RTTMillisecond     uint64
	SnapshotEntries    uint64
	CompactionOverhead uint64
	DataDir            string
	ReplicaID          uint64
	ClusterMembers     map[uint64]string

	// raft backend parameters
	TimeoutSecond int64

	// HTTP api settings
	Endpoint string

	// Logging configuration
	LogLevel string
}

// HasRaftNamespace checks if the configuration contains any raft backed namespace
func (c *ServerConfig) HasRaftNamespace() bool {
	for _, ns := range c.Namespaces {
		if ns.Backend == BackendRaft {
			return true
		}
	}
	return false
}

// configWriter renders a configuration as titled sections of aligned fields
type configWriter struct {
	sb strings.Builder
}

func (w *configWriter) section(title string) {
	fmt.Fprintf(&w.sb, "\n%s\n", strings.ToUpper(title))
}

func (w *configWriter) field(name string, value any) {
	fmt.Fprintf(&w.sb, "  %-22s: %v\n", name, value)
}

// String renders the configuration for the startup log
func (c *ServerConfig) String() string {
	w := &configWriter{}

	w.section("RPC Server")
	w.field("Endpoint", c.Endpoint)
	w.field("Workers", c.Workers)

	w.section("Value Blocks")
	w.field("Max Size", fmt.Sprintf("%d bytes", c.MaxLVBSize))
	w.field("Update Failure", c.UpdateFailurePolicy)

	w.section("Logging")
	w.field("Log Level", c.LogLevel)

	w.section("Namespaces")
	for _, ns := range c.Namespaces {
		if ns.Backend == BackendRaft {
			w.field(ns.Name, fmt.Sprintf("%s (shard %d)", ns.Backend, ns.ShardID))
		} else {
			w.field(ns.Name, ns.Backend)
		}
	}

	if !c.HasRaftNamespace() {
		return w.sb.String()
	}

	w.section("Raft")
	w.field("Node ID", c.ReplicaID)
	w.field("Raft Address", c.ClusterMembers[c.ReplicaID])
	w.field("RTT", fmt.Sprintf("%d ms", c.RTTMillisecond))
	w.field("Election / Heartbeat", fmt.Sprintf("%d / %d RTT", electionRTTFactor, heartbeatRTTFactor))
	w.field("Snapshot Entries", c.SnapshotEntries)
	w.field("Compaction Overhead", c.CompactionOverhead)
	w.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	w.field("Data Directory", c.DataDir)

	ids := make([]uint64, 0, len(c.ClusterMembers))
	for id := range c.ClusterMembers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		w.field(fmt.Sprintf("Member %d", id), c.ClusterMembers[id])
	}
	return w.sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

// ClientConfig configures how a client reaches the server.
type ClientConfig struct {
	// Endpoints are tried round robin, a failed request moves on to the next one
	Endpoints []string
	// TimeoutSecond bounds a single request
	TimeoutSecond int
	// RetryCount is the number of attempts per endpoint
	RetryCount int
	// ConnectionsPerEndpoint is the number of idle connections kept per endpoint
	ConnectionsPerEndpoint int
}

// String renders the client configuration for debug logs
func (c *ClientConfig) String() string {
	w := &configWriter{}
	w.section("Client")
	w.field("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	w.field("Retry Count", c.RetryCount)
	w.field("Idle Connections", max(1, c.ConnectionsPerEndpoint))
	w.field("Endpoints", strings.Join(c.Endpoints, ", "))
	return w.sb.String()
}
