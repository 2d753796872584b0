// Package domain defines the core domain types for minikv.
//
// It holds pure types without I/O dependencies:
//
//   - errors.go: classified, coded errors and their reply text
//   - key.go: the two-level storage key (client id, key name)
//
// The error kind decides how a connection reacts: protocol errors close
// the connection, domain errors are answered and the connection continues,
// I/O errors end the connection, capacity errors reject one accept.
package domain
