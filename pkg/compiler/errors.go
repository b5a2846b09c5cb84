package compiler

import (
	"fmt"

	"arkc/pkg/node"
)

// Error reports a fatal compile-time failure, carrying the source location
// of the form being compiled when it was raised.
type Error struct {
	Loc node.Location
	Msg string
}

func (e *Error) Error() string { return e.Loc.String() + ": " + e.Msg }

func errAt(n *node.Node, format string, args ...any) *Error {
	return &Error{Loc: n.Loc, Msg: fmt.Sprintf(format, args...)}
}
