// Package connection provides the RESP client used by minikv-cli.
//
// A Client holds one TCP connection. Keys written through it live only as
// long as that connection, so the REPL keeps a single Client for its whole
// session while one-shot commands dial, send and close.
package connection
