// Package output renders server replies for minikv-cli.
//
// The text format mirrors redis-cli: quoted bulk strings, "(integer) n",
// "(nil)", "(error) ..." and numbered array items. The json and yaml
// formats print the reply as plain data for scripting.
package output
