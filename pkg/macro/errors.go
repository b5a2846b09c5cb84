package macro

import (
	"fmt"

	"arkc/pkg/node"
)

// Error is raised by the macro processor for a malformed macro form, an
// arity violation, a type mismatch in the mini-language, an unresolvable
// spread argument, or a request for the truth value of a spread. It always
// names the source location of the node that caused it.
type Error struct {
	Loc node.Location
	Msg string
}

func (e *Error) Error() string {
	return e.Loc.String() + ": " + e.Msg
}

func errAt(n *node.Node, format string, args ...any) *Error {
	return &Error{Loc: n.Loc, Msg: fmt.Sprintf(format, args...)}
}
