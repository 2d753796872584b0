// Package redisserver serves a small subset of the Redis protocol over TCP.
//
// Each accepted connection gets a client id from clientid.Allocator and a
// Session running in its own goroutine. Sessions share one memory.Store but
// write into their own key namespace, and remove their keys on disconnect.
//
// Supported commands: PING, ECHO, SET (with PX), GET, INCR, MULTI, EXEC.
//
// Domain errors (wrong type, wrong arity, unknown command, bad EXEC) are
// answered with an error reply and the connection stays open. Malformed
// RESP closes the connection after an error reply.
package redisserver
