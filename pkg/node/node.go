// Package node implements the single tagged-tree type shared by the macro
// processor and the compiler: Node. Every stage of the pipeline (parser,
// optimizer, macro processor, compiler) reads and rewrites the same type.
package node

import (
	"fmt"
	"strings"
)

// Kind tags the payload a Node carries. Closure is produced by the virtual
// machine at run time, never by this front end; it is kept here only so
// switches over Kind stay exhaustive against the shared vocabulary in the
// bytecode contract.
type Kind int

const (
	Symbol Kind = iota
	Capture
	GetField
	Keyword
	String
	Number
	List
	Macro
	Spread
	Unused
	Closure
)

func (k Kind) String() string {
	switch k {
	case Symbol:
		return "Symbol"
	case Capture:
		return "Capture"
	case GetField:
		return "GetField"
	case Keyword:
		return "Keyword"
	case String:
		return "String"
	case Number:
		return "Number"
	case List:
		return "List"
	case Macro:
		return "Macro"
	case Spread:
		return "Spread"
	case Unused:
		return "Unused"
	case Closure:
		return "Closure"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// KeywordKind enumerates the core-form keyword payload of a Keyword node.
type KeywordKind int

const (
	If KeywordKind = iota
	Let
	Mut
	Set
	Fun
	While
	Begin
	Import
	Quote
	Del
)

func (kw KeywordKind) String() string {
	switch kw {
	case If:
		return "if"
	case Let:
		return "let"
	case Mut:
		return "mut"
	case Set:
		return "set"
	case Fun:
		return "fun"
	case While:
		return "while"
	case Begin:
		return "begin"
	case Import:
		return "import"
	case Quote:
		return "quote"
	case Del:
		return "del"
	default:
		return fmt.Sprintf("Keyword(%d)", int(kw))
	}
}

// Keywords maps source spelling to Keyword payload; used by the parser.
var Keywords = map[string]KeywordKind{
	"if":     If,
	"let":    Let,
	"mut":    Mut,
	"set":    Set,
	"fun":    Fun,
	"while":  While,
	"begin":  Begin,
	"import": Import,
	"quote":  Quote,
	"del":    Del,
}

// Location is the file/line/column a Node was parsed at. It is carried only
// for diagnostics: it is copied on Clone and inherited by macro rewrites so
// an error raised against a rewritten subtree still points at the source
// form it replaced.
type Location struct {
	File string
	Line int
	Col  int
}

func (l Location) String() string {
	if l.File == "" {
		return fmt.Sprintf("%d:%d", l.Line, l.Col)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Col)
}

// Node is the single tree type. Mutation is in-place: callers must not alias
// a child across independent rewrites (see package macro, which always
// clones before splicing a node into more than one place).
type Node struct {
	Kind Kind

	// Str holds the payload for Symbol, Capture, GetField, String, Spread.
	Str string
	// Num holds the payload for Number.
	Num float64
	// Keyword holds the payload for Keyword.
	Keyword KeywordKind
	// Children holds the payload for List and Macro.
	Children []*Node

	Loc Location
}

// NewSymbol constructs a Symbol node.
func NewSymbol(name string, loc Location) *Node { return &Node{Kind: Symbol, Str: name, Loc: loc} }

// NewCapture constructs a Capture node (a &name reference in a parameter
// list or expression).
func NewCapture(name string, loc Location) *Node { return &Node{Kind: Capture, Str: name, Loc: loc} }

// NewGetField constructs a GetField node (a .field access).
func NewGetField(name string, loc Location) *Node {
	return &Node{Kind: GetField, Str: name, Loc: loc}
}

// NewKeywordNode constructs a Keyword node.
func NewKeywordNode(kw KeywordKind, loc Location) *Node {
	return &Node{Kind: Keyword, Keyword: kw, Loc: loc}
}

// NewString constructs a String literal node.
func NewString(value string, loc Location) *Node { return &Node{Kind: String, Str: value, Loc: loc} }

// NewNumber constructs a Number literal node.
func NewNumber(value float64, loc Location) *Node { return &Node{Kind: Number, Num: value, Loc: loc} }

// NewList constructs a List node from the given children.
func NewList(loc Location, children ...*Node) *Node {
	return &Node{Kind: List, Children: children, Loc: loc}
}

// NewMacro constructs a Macro node from the given children.
func NewMacro(loc Location, children ...*Node) *Node {
	return &Node{Kind: Macro, Children: children, Loc: loc}
}

// NewSpread constructs a Spread node (a @name marker).
func NewSpread(name string, loc Location) *Node { return &Node{Kind: Spread, Str: name, Loc: loc} }

// NewUnused constructs an Unused placeholder node (e.g. the `_` pattern).
func NewUnused(loc Location) *Node { return &Node{Kind: Unused, Loc: loc} }

// Append adds a child to a List or Macro node.
func (n *Node) Append(child *Node) {
	n.Children = append(n.Children, child)
}

// EraseAt removes the child at index i in place.
func (n *Node) EraseAt(i int) {
	n.Children = append(n.Children[:i], n.Children[i+1:]...)
}

// Equal reports structural equality: same kind, and either identical scalar
// payload or pairwise-equal child sequences.
func (n *Node) Equal(other *Node) bool {
	if n == other {
		return true
	}
	if n == nil || other == nil {
		return false
	}
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case Symbol, Capture, GetField, String, Spread:
		return n.Str == other.Str
	case Number:
		return n.Num == other.Num
	case Keyword:
		return n.Keyword == other.Keyword
	case List, Macro:
		if len(n.Children) != len(other.Children) {
			return false
		}
		for i, c := range n.Children {
			if !c.Equal(other.Children[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Less defines the partial order used by the macro evaluator's comparison
// operators. It is only meaningful between two Number nodes (numeric order)
// or two String nodes (lexicographic order); any other pairing is an error
// surfaced at the site of the comparison.
func (n *Node) Less(other *Node) (bool, error) {
	if n.Kind != other.Kind {
		return false, fmt.Errorf("%s: cannot order %s against %s", n.Loc, n.Kind, other.Kind)
	}
	switch n.Kind {
	case Number:
		return n.Num < other.Num, nil
	case String:
		return n.Str < other.Str, nil
	default:
		return false, fmt.Errorf("%s: ordering is only defined for Number and String, got %s", n.Loc, n.Kind)
	}
}

// IsDataList reports whether n is a List whose first element is the ListNode
// sentinel — the only reliable marker that n was written as an explicit list
// literal rather than a call form.
func (n *Node) IsDataList() bool {
	return n.Kind == List && len(n.Children) > 0 && n.Children[0] == ListNode
}

// Clone deep-copies n, preserving its source location. The four sentinel
// nodes are shared singletons: cloning one returns the same pointer, since
// unify and other passes rely on pointer identity to recognize them.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	if n == NilNode || n == ListNode || n == TrueNode || n == FalseNode {
		return n
	}
	clone := &Node{
		Kind:    n.Kind,
		Str:     n.Str,
		Num:     n.Num,
		Keyword: n.Keyword,
		Loc:     n.Loc,
	}
	if n.Children != nil {
		clone.Children = make([]*Node, len(n.Children))
		for i, c := range n.Children {
			clone.Children[i] = c.Clone()
		}
	}
	return clone
}

// String pretty-prints a Node for debug output.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case Symbol:
		return n.Str
	case Capture:
		return "&" + n.Str
	case GetField:
		return "." + n.Str
	case Keyword:
		return n.Keyword.String()
	case String:
		return fmt.Sprintf("%q", n.Str)
	case Number:
		return fmt.Sprintf("%g", n.Num)
	case Spread:
		return "@" + n.Str
	case Unused:
		return "_"
	case Closure:
		return "<closure>"
	case List, Macro:
		parts := make([]string, len(n.Children))
		for i, c := range n.Children {
			parts[i] = c.String()
		}
		open, close := "(", ")"
		if n.Kind == Macro {
			open, close = "!{", "}"
		}
		return open + strings.Join(parts, " ") + close
	default:
		return "<invalid>"
	}
}
