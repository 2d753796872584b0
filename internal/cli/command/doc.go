// Package command defines the minikv-cli commands on urfave/cli/v2.
//
//	minikv-cli [-s addr] [-o text|json|yaml] exec CMD [ARGS...]
//	minikv-cli ping
//	minikv-cli repl
//
// Running minikv-cli with bare arguments sends them as one command; with no
// arguments it starts the REPL.
package command
