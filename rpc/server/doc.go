// Package server implements the dLVB RPC server. It owns one ldlm.Namespace per configured
// namespace, backs each with an object store and routes decoded requests to the adapter
// for their message type.
//
// Key Components:
//
//   - IRPCServerAdapter: contract for request handlers. NewLVBServerAdapter serves the
//     lock value block messages, NewObjectServerAdapter the object attribute messages.
//
//   - RPCServer: starts in stages (workers, rpc, framework, console) and tears them down
//     in reverse. The framework stage creates a dragonboat NodeHost when a namespace uses
//     the raft backend and builds every namespace with its backend. "local" uses an
//     in-memory object store, "raft" a replicated store on the namespace's own shard and
//     "none" creates a lock-only namespace without value blocks.
//
//   - Handles: Enqueue returns a random handle that keeps the resource referenced until
//     it is released. Requests naming an unknown handle fail with RetCInvalidRequest.
//
// Requests are executed on a partitioned worker pool. Requests for the same object id land
// on the same partition and therefore run in arrival order.
//
// Usage Example:
//
//	s := server.NewRPCServer(
//		common.ServerConfig{
//			Namespaces: []common.ServerNamespace{{Name: "objects", Backend: common.BackendLocal}},
//			Workers:    8,
//			Endpoint:   ":8080",
//		},
//		http.NewHttpServerTransport(),
//		serializer.NewBinarySerializer(),
//	)
//	if err := s.Serve(); err != nil {
//		panic(err)
//	}
package server
