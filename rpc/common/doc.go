// Package common provides the data structures shared by the dLVB client and server:
// the wire message, the configuration structs and the logger setup.
//
// Key Components:
//
//   - Message: Core data structure for all RPC communication. Lock operations address a
//     resource by object id and class on enqueue and glimpse, and by the reference handle
//     the server returned on enqueue for everything else. Errors travel as message text
//     plus the ldlm return code, so clients can rebuild a typed *ldlm.Error.
//
//   - MessageType: Enumeration of all supported operations, split into value block
//     operations, object backend operations and control messages.
//
//   - ServerConfig: Namespaces, value block limits, worker pool size, RAFT parameters and
//     network configuration. Provides the conversion to Dragonboat configurations.
//
//   - ClientConfig: Connection parameters, timeouts and retry behavior of clients.
//
//   - Logger: Implementation of Dragonboat's logger.ILogger, so dragonboat and dLVB
//     packages log in the same format.
package common
