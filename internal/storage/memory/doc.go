// Package memory provides the in-memory TTL store for minikv.
//
// Design:
//
//   - Single map guarded by one sync.Mutex (one store per process)
//   - Keys are domain.Key values, so each connection has a private namespace
//   - Lazy expiry: an expired entry is removed by the next Read, Exists or
//     Update touching it; there is no background sweep
//   - Update is the atomic read-modify-write entry point; Increment is built
//     on it so the read, the computation and the write share one lock
//     acquisition
package memory
