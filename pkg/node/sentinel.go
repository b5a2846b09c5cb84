package node

// The four sentinel nodes are process-wide, immutable, and initialized once
// by Go's deterministic package-init order (equivalent, for any observer, to
// "constructed once at process start" — nothing can run before init
// completes, so there is no first-use race to guard against).
//
// They are named symbols carrying the literal strings below. ListNode in
// particular is the only reliable marker distinguishing a data list (built
// from an explicit list literal) from a call form: see Node.IsDataList.
var (
	NilNode   = &Node{Kind: Symbol, Str: "nil"}
	ListNode  = &Node{Kind: Symbol, Str: "list"}
	TrueNode  = &Node{Kind: Symbol, Str: "true"}
	FalseNode = &Node{Kind: Symbol, Str: "false"}
)

// Truthy evaluates the mini-language's truthiness rule:
//
//	"true" symbol        -> true
//	"false"/"nil" symbol -> false
//	non-zero Number      -> true
//	non-empty String     -> true
//	Spread                -> error (truth value of a spread is undefined)
//	anything else        -> false
func Truthy(n *Node) (bool, error) {
	switch n.Kind {
	case Symbol:
		switch n.Str {
		case "true":
			return true, nil
		case "false", "nil":
			return false, nil
		default:
			return false, nil
		}
	case Number:
		return n.Num != 0, nil
	case String:
		return len(n.Str) > 0, nil
	case Spread:
		return false, &TruthError{Loc: n.Loc}
	default:
		return false, nil
	}
}

// TruthError is raised when truthiness is asked of a node with no truth
// value, namely a bare Spread marker.
type TruthError struct {
	Loc Location
}

func (e *TruthError) Error() string {
	return e.Loc.String() + ": can not determine the truth value of a spreaded symbol"
}

// BoolNode converts a Go bool to the TrueNode/FalseNode sentinel.
func BoolNode(b bool) *Node {
	if b {
		return TrueNode
	}
	return FalseNode
}
