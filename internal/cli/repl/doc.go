// Package repl provides the interactive mode of minikv-cli.
//
// Lines are split into words (double and single quotes group words) and
// handed to an Executor. The REPL keeps its history in a file between
// runs. "help [prefix]" lists the known commands; "exit" and "quit" leave.
package repl
