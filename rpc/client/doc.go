// Package client implements RPC clients for the dLVB lock value block service.
// It provides typed access to a single namespace of a remote server and converts the
// return codes carried by responses back into *ldlm.Error values.
//
// Key Components:
//
//   - NewRPCLockClient: creates an ILockClient. Enqueue takes a reference on a resource
//     and returns a handle together with the resource's value block. The handle is used
//     for Update, Merge, Free and Release. Glimpse reads the current value block without
//     holding a reference.
//
//   - NewRPCObjectClient: creates an IObjectClient, a backend.IObjectStore that reads and
//     writes the object attributes the value blocks are built from.
//
// Usage Example:
//
//	cfg := common.ClientConfig{
//		Endpoints:     []string{"localhost:8080"},
//		TimeoutSecond: 5,
//		RetryCount:    3,
//	}
//	s := serializer.NewBinarySerializer()
//
//	objects, _ := client.NewRPCObjectClient("objects", cfg, http.NewHttpClientTransport(), s)
//	_ = objects.PutAttributes("obj-42", backend.Attributes{Size: 4096, Mtime: 1000})
//
//	locks, _ := client.NewRPCLockClient("objects", cfg, http.NewHttpClientTransport(), s)
//	handle, lvb, err := locks.Enqueue("obj-42", 0)
//	if err == nil {
//		v, _ := objlvb.Decode(lvb)
//		fmt.Println(v.Size)
//		_ = locks.Release(handle)
//	}
//
// Errors:
//
//	Failures reported by the server keep their return code, so callers can branch with
//	ldlm.IsCode(err, ldlm.RetCObjectNotFound). Update and Merge also return the value
//	block the resource holds after a failed refresh, which is nil when the namespace
//	discards value blocks on failure.
//
// Thread Safety:
//
//	All clients are safe for concurrent use.
package client
