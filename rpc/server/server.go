package server

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dLVB/lib/backend"
	"github.com/ValentinKolb/dLVB/lib/backend/dbackend"
	"github.com/ValentinKolb/dLVB/lib/backend/lbackend"
	"github.com/ValentinKolb/dLVB/lib/ldlm"
	"github.com/ValentinKolb/dLVB/lib/lifecycle"
	"github.com/ValentinKolb/dLVB/lib/objlvb"
	"github.com/ValentinKolb/dLVB/lib/workq"
	"github.com/ValentinKolb/dLVB/rpc/common"
	"github.com/ValentinKolb/dLVB/rpc/serializer"
	"github.com/ValentinKolb/dLVB/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"
)

var Logger = logger.GetLogger("rpc")

// shutdownTimeout bounds how long in-flight requests may take when the server stops
const shutdownTimeout = 5 * time.Second

// NewRPCServer creates a new RPC server
// It takes a config, transport and serializer as parameters
//
// Usage:
//
//	s := server.NewRPCServer(
//		config,
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
func NewRPCServer(
	config common.ServerConfig,
	transport transport.IRPCServerTransport,
	serializer serializer.IRPCSerializer,
) *RPCServer {
	// https://github.com/golang/go/issues/17393
	if runtime.GOOS == "darwin" {
		signal.Ignore(syscall.Signal(0xd))
	}

	s := &RPCServer{
		config:     config,
		transport:  transport,
		serializer: serializer,
		namespaces: xsync.NewMapOf[string, *serverNamespace](),
		lvb:        NewLVBServerAdapter(),
		objects:    NewObjectServerAdapter(),
		stages:     lifecycle.New("server"),
	}

	// stages are torn down in reverse order
	_ = s.stages.Add(lifecycle.Stage{Name: "workers", Start: s.startWorkers, Stop: s.stopWorkers})
	_ = s.stages.Add(lifecycle.Stage{Name: "rpc", Start: s.startRPC})
	_ = s.stages.Add(lifecycle.Stage{Name: "framework", Start: s.startFramework, Stop: s.stopFramework})
	_ = s.stages.Add(lifecycle.Stage{Name: "console", Start: s.startConsole, Stop: s.stopConsole})

	Logger.Infof("Created RPC Server (serializer %s)", serializer.Name())
	Logger.Infof(config.String())
	return s
}

// RPCServer serves the configured namespaces over a transport.
type RPCServer struct {
	config     common.ServerConfig
	transport  transport.IRPCServerTransport
	serializer serializer.IRPCSerializer
	namespaces *xsync.MapOf[string, *serverNamespace]
	lvb        IRPCServerAdapter
	objects    IRPCServerAdapter

	stages   *lifecycle.Sequence
	pool     *workq.Pool
	nodeHost *dragonboat.NodeHost
}

// --------------------------------------------------------------------------
// Lifecycle
// --------------------------------------------------------------------------

// Start brings up all stages. If one fails, the completed stages are stopped again.
func (s *RPCServer) Start() error {
	return s.stages.Start()
}

// Stop tears down the stages that started, in reverse order.
func (s *RPCServer) Stop() {
	s.stages.Stop()
}

// Serve starts the server and blocks until the transport fails or the process receives
// SIGINT or SIGTERM. The server is stopped before Serve returns.
func (s *RPCServer) Serve() error {
	if err := s.Start(); err != nil {
		return err
	}
	defer s.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	select {
	case <-ctx.Done():
		Logger.Infof("Received signal, shutting down")
		return nil
	case <-s.transport.Done():
		return s.transport.Err()
	}
}

func (s *RPCServer) startWorkers() error {
	s.pool = workq.NewPool("rpc", s.config.Workers)
	return nil
}

func (s *RPCServer) stopWorkers() {
	s.pool.Stop()
}

func (s *RPCServer) startRPC() error {
	s.registerTransportHandler()
	return nil
}

// startFramework creates the object backends and the namespaces
func (s *RPCServer) startFramework() error {
	policy := ldlm.UpdateFailureRetain
	var err error
	if s.config.UpdateFailurePolicy != "" {
		if policy, err = ldlm.ParseUpdateFailurePolicy(s.config.UpdateFailurePolicy); err != nil {
			return err
		}
	}
	lvbConfig := &ldlm.Config{
		MaxLVBSize:          s.config.MaxLVBSize,
		UpdateFailurePolicy: policy,
	}

	// Only create the NodeHost if we have raft namespaces
	if s.config.HasRaftNamespace() {
		s.nodeHost, err = dragonboat.NewNodeHost(s.config.ToNodeHostConfig())
		if err != nil {
			return fmt.Errorf("failed to create node host: %w", err)
		}
	}
	timeout := time.Duration(s.config.TimeoutSecond) * time.Second

	for _, nsc := range s.config.Namespaces {
		var objects backend.IObjectStore
		var ops ldlm.LVBOps

		switch nsc.Backend {
		case common.BackendLocal:
			objects = lbackend.NewLocalStore()
			ops = objlvb.NewOps()
		case common.BackendRaft:
			if err := s.nodeHost.StartConcurrentReplica(s.config.ClusterMembers, false,
				dbackend.CreateStateMachineFactory(), s.config.ToDragonboatConfig(nsc.ShardID)); err != nil {
				s.stopFramework()
				return fmt.Errorf("failed to start shard %d for namespace %s: %w", nsc.ShardID, nsc.Name, err)
			}
			objects = dbackend.NewDistributedStore(s.nodeHost, nsc.ShardID, timeout)
			ops = objlvb.NewOps()
		case common.BackendNone:
			// lock-only namespace, no value blocks
		default:
			s.stopFramework()
			return fmt.Errorf("invalid backend %q for namespace %s", nsc.Backend, nsc.Name)
		}

		ns := ldlm.NewNamespace(nsc.Name, ops, objects, lvbConfig)
		if _, loaded := s.namespaces.LoadOrStore(nsc.Name, newServerNamespace(ns, objects)); loaded {
			ns.Close()
			s.stopFramework()
			return fmt.Errorf("duplicate namespace %s", nsc.Name)
		}
		Logger.Infof("created %s namespace %s", nsc.Backend, nsc.Name)
	}

	Logger.Infof("dLVB setup completed successfully")
	return nil
}

func (s *RPCServer) stopFramework() {
	s.namespaces.Range(func(name string, target *serverNamespace) bool {
		s.namespaces.Delete(name)
		target.close()
		return true
	})
	if s.nodeHost != nil {
		s.nodeHost.Close()
		s.nodeHost = nil
	}
}

func (s *RPCServer) startConsole() error {
	return s.transport.Listen(s.config)
}

func (s *RPCServer) stopConsole() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.transport.Shutdown(ctx); err != nil {
		Logger.Warningf("transport shutdown: %v", err)
	}
}

// --------------------------------------------------------------------------
// Request handling
// --------------------------------------------------------------------------

func (s *RPCServer) registerTransportHandler() {
	s.transport.RegisterHandler(func(namespace string, req []byte) []byte {
		var msg common.Message
		var respMsg *common.Message

		if err := s.serializer.Deserialize(req, &msg); err != nil {
			respMsg = common.NewErrorResponse(fmt.Sprintf("failed to deserialize request: %s", err))
		} else {
			respMsg = s.handle(namespace, &msg)
		}

		val, err := s.serializer.Serialize(*respMsg)
		if err != nil {
			Logger.Errorf("failed to serialize response: %v", err)
			val, _ = s.serializer.Serialize(*common.NewErrorResponse(fmt.Sprintf("failed to serialize response: %s", err)))
		}
		return val
	})
}

// handle routes a request to the adapter for its type and runs it on the worker pool,
// on the partition of the object it addresses.
func (s *RPCServer) handle(namespace string, req *common.Message) *common.Message {
	start := time.Now()

	target, ok := s.namespaces.Load(namespace)
	if !ok {
		return common.NewErrorResponse(fmt.Sprintf("namespace %s not found", namespace))
	}

	var adapter IRPCServerAdapter
	switch req.MsgType {
	case common.MsgTLVBEnqueue, common.MsgTLVBGlimpse, common.MsgTLVBRelease, common.MsgTLVBFree,
		common.MsgTLVBUpdate, common.MsgTLVBMerge, common.MsgTLVBStats:
		adapter = s.lvb
	case common.MsgTObjPut, common.MsgTObjDelete, common.MsgTObjStat:
		adapter = s.objects
	default:
		return common.NewErrorResponse(fmt.Sprintf("unsupported message type: %s", req.MsgType))
	}

	var resp *common.Message
	run := func() error {
		resp = adapter.Handle(req, target)
		return nil
	}

	var err error
	if key := target.partitionKey(req); key != "" {
		err = s.pool.Do(key, run)
	} else {
		err = s.pool.DoSerial(run)
	}
	if err != nil {
		resp = common.NewErrorResponse(fmt.Sprintf("failed to run request: %s", err))
	}

	code := ldlm.RetCode(resp.Code)
	metrics.GetOrCreateCounter(fmt.Sprintf(`dlvb_requests_total{namespace=%q,type=%q,code=%q}`, namespace, req.MsgType, code)).Inc()
	metrics.GetOrCreateHistogram(fmt.Sprintf(`dlvb_request_duration_seconds{namespace=%q,type=%q}`, namespace, req.MsgType)).UpdateDuration(start)
	return resp
}
