package domain

import (
	"strconv"

	"github.com/yndnr/minikv/pkg/resp"
)

// Key is a storage key: a client-visible name inside one connection's
// private namespace. Two connections using the same name never collide.
type Key struct {
	ClientID int
	Name     string
}

// NewKey builds the storage key for a client-supplied key argument.
// String variants are used verbatim and integers in decimal form.
func NewKey(clientID int, arg resp.Value) (Key, error) {
	if s, ok := arg.AsString(); ok {
		return Key{ClientID: clientID, Name: s}, nil
	}
	if n, ok := arg.AsInt(); ok {
		return Key{ClientID: clientID, Name: strconv.FormatInt(n, 10)}, nil
	}
	return Key{}, ErrInvalidKey.WithDetails("got %s", arg.Kind())
}

// String renders the key for logs.
func (k Key) String() string {
	return strconv.Itoa(k.ClientID) + "/" + k.Name
}
