package serve

import (
	"fmt"
	cmdUtil "github.com/ValentinKolb/dLVB/cmd/util"
	"github.com/ValentinKolb/dLVB/lib/ldlm"
	"github.com/ValentinKolb/dLVB/lib/util"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"github.com/ValentinKolb/dLVB/rpc/server"
	"github.com/ValentinKolb/dLVB/rpc/transport"
	"github.com/ValentinKolb/dLVB/rpc/transport/http"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"runtime"
	"strings"
)

var (
	serveCmdConfig = &common.ServerConfig{}
	ServeCmd       = &cobra.Command{
		Use:     "serve",
		Short:   "Start the dLVB server",
		Long:    `Start the dLVB server with the specified configuration. The configuration can be set via command line flags or environment variables. The format of the environment variables is DLVB_<flag> (e.g. DLVB_MAX_LVB_SIZE=256)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	cobra.OnInitialize(cmdUtil.InitConfig)

	key := "namespaces"
	ServeCmd.PersistentFlags().String(key, "objects=local,locks=none", cmdUtil.WrapString("Comma-separated list of namespaces to serve. Format: NAME=BACKEND where BACKEND is one of: local, raft, none"))

	key = "workers"
	ServeCmd.PersistentFlags().Int(key, runtime.NumCPU(), cmdUtil.WrapString("Number of worker partitions executing requests. Requests for the same object always run on the same partition"))

	key = "max-lvb-size"
	ServeCmd.PersistentFlags().Int(key, ldlm.DefaultMaxLVBSize, cmdUtil.WrapString("Largest lock value block in bytes a namespace allocates"))

	key = "update-failure"
	ServeCmd.PersistentFlags().String(key, "retain", cmdUtil.WrapString("What happens to a cached value block when refreshing it fails (retain, discard)"))

	key = "rtt-millisecond"
	ServeCmd.PersistentFlags().Int(key, 100, cmdUtil.WrapString("(raft) RTTMillisecond defines the average Round Trip Time (RTT) in milliseconds between two NodeHost instances"))

	key = "snapshot-entries"
	ServeCmd.PersistentFlags().Int(key, 10, cmdUtil.WrapString("(raft) SnapshotEntries defines how often the object table should be snapshotted, in applied Raft log entries. 0 disables automatic snapshots"))

	key = "compaction-overhead"
	ServeCmd.PersistentFlags().Int(key, 5, cmdUtil.WrapString("(raft) CompactionOverhead defines the number of log entries kept after a snapshot"))

	key = "data-dir"
	ServeCmd.PersistentFlags().String(key, "data", cmdUtil.WrapString("(raft) DataDir is the directory used for the raft log and snapshots"))

	key = "replica-id"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(raft) ReplicaID is the unique identifier for this NodeHost instance (e.g. 'node-1')"))

	key = "cluster-members"
	ServeCmd.PersistentFlags().String(key, "", cmdUtil.WrapString("(raft) ClusterMembers is a comma-separated list of NodeHost addresses in the format 'node-1=localhost:63001,node-2=localhost:63002,...'"))

	key = "timeout"
	ServeCmd.PersistentFlags().Int64(key, 5, cmdUtil.WrapString("(raft) Timeout in seconds of replicated reads and writes"))

	key = "endpoint"
	ServeCmd.PersistentFlags().String(key, "0.0.0.0:8080", cmdUtil.WrapString("The address on which the API will listen"))

	key = "log-level"
	ServeCmd.PersistentFlags().String(key, "info", cmdUtil.WrapString("LogLevel is the level at which logs will be output (debug, info, warn, error)"))
}

// parseNamespaces parses NAME=BACKEND pairs. The shard of a raft namespace is derived
// from its name, so every replica agrees on it.
func parseNamespaces(s string) ([]common.ServerNamespace, error) {
	var namespaces []common.ServerNamespace
	for _, entry := range strings.Split(s, ",") {
		parts := strings.Split(entry, "=")
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, fmt.Errorf("invalid namespace format: %s (expected NAME=BACKEND)", entry)
		}
		name := strings.TrimSpace(parts[0])
		backend, err := common.ParseNamespaceBackend(parts[1])
		if err != nil {
			return nil, err
		}
		namespaces = append(namespaces, common.ServerNamespace{
			Name:    name,
			Backend: backend,
			ShardID: util.HashString(name, 0),
		})
	}
	return namespaces, nil
}

// processConfig reads the configuration from the command line flags and environment variables and converts them to the server configuration
func processConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	namespaces, err := parseNamespaces(viper.GetString("namespaces"))
	if err != nil {
		return err
	}
	serveCmdConfig.Namespaces = namespaces

	if _, err := ldlm.ParseUpdateFailurePolicy(viper.GetString("update-failure")); err != nil {
		return err
	}
	serveCmdConfig.UpdateFailurePolicy = viper.GetString("update-failure")
	serveCmdConfig.MaxLVBSize = viper.GetInt("max-lvb-size")
	serveCmdConfig.Workers = viper.GetInt("workers")

	serveCmdConfig.RTTMillisecond = viper.GetUint64("rtt-millisecond")
	serveCmdConfig.SnapshotEntries = viper.GetUint64("snapshot-entries")
	serveCmdConfig.CompactionOverhead = viper.GetUint64("compaction-overhead")
	serveCmdConfig.DataDir = viper.GetString("data-dir")
	serveCmdConfig.TimeoutSecond = viper.GetInt64("timeout")
	serveCmdConfig.Endpoint = viper.GetString("endpoint")
	serveCmdConfig.LogLevel = viper.GetString("log-level")
	if _, err := common.ParseLogLevel(serveCmdConfig.LogLevel); err != nil {
		return err
	}

	if id := viper.GetString("replica-id"); id != "" {
		serveCmdConfig.ReplicaID = util.HashString(id, 0)
	} else if serveCmdConfig.HasRaftNamespace() {
		return fmt.Errorf("ReplicaId is required for raft namespaces")
	}

	if clusterMembers := viper.GetString("cluster-members"); clusterMembers != "" {
		serveCmdConfig.ClusterMembers = make(map[uint64]string)
		for _, member := range strings.Split(clusterMembers, ",") {
			parts := strings.Split(member, "=")
			if len(parts) != 2 {
				return fmt.Errorf("invalid cluster member format: %s (expected ID=address)", member)
			}
			serveCmdConfig.ClusterMembers[util.HashString(parts[0], 0)] = parts[1]
		}
	} else if serveCmdConfig.HasRaftNamespace() {
		return fmt.Errorf("ClusterMembers is required for raft namespaces")
	}

	if _, ok := serveCmdConfig.ClusterMembers[serveCmdConfig.ReplicaID]; !ok && serveCmdConfig.HasRaftNamespace() {
		return fmt.Errorf("no address found for replica ID %d in cluster members", serveCmdConfig.ReplicaID)
	}

	return nil
}

// run starts the dLVB server and blocks until it is interrupted
func run(_ *cobra.Command, _ []string) error {
	s, err := cmdUtil.GetSerializer()
	if err != nil {
		return err
	}

	var t transport.IRPCServerTransport
	switch viper.GetString("transport") {
	case "http":
		t = http.NewHttpServerTransport()
	default:
		return fmt.Errorf("invalid transport %s", viper.GetString("transport"))
	}

	if err := common.InitLoggers(*serveCmdConfig); err != nil {
		return err
	}

	return server.NewRPCServer(*serveCmdConfig, t, s).Serve()
}
