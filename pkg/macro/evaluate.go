package macro

import "arkc/pkg/node"

// evaluate runs the compile-time mini-language, used by the conditional
// executor to reduce an `if` condition (or a comparison operand) to a
// Number, String, TrueNode/FalseNode, or List. isNotBody gates the
// comparison/logical operators: they are only recognized while evaluating a
// condition, never while execute() is rewriting an ordinary macro body, so
// a form like `(= a b)` left untouched in a body still compiles as an
// ordinary call.
func (p *MacroProcessor) evaluate(n *node.Node, isNotBody bool) (*node.Node, error) {
	switch n.Kind {
	case node.Symbol:
		if m, ok := p.findNearestMacro(n.Str); ok && len(m.Children) == 2 {
			return m.Children[1].Clone(), nil
		}
		return n, nil

	case node.List:
		if len(n.Children) == 0 || n.Children[0].Kind != node.Symbol {
			return n, nil
		}
		head := n.Children[0].Str
		args := n.Children[1:]

		if isNotBody {
			if fn, ok := comparisonOps[head]; ok {
				return p.evalComparison(n, fn, args)
			}
			switch head {
			case "not":
				return p.evalNot(n, args)
			case "and":
				return p.evalAnd(n, args)
			case "or":
				return p.evalOr(n, args)
			}
		}

		switch head {
		case "len":
			return p.evalLen(n, args)
		case "@":
			return p.evalIndex(n, args)
		case "head":
			return p.evalHead(n, args)
		case "tail":
			return p.evalTail(n, args)
		}
		return n, nil

	default:
		return n, nil
	}
}

type compareFunc func(a, b *node.Node) (bool, error)

var comparisonOps = map[string]compareFunc{
	"=":  func(a, b *node.Node) (bool, error) { return a.Equal(b), nil },
	"!=": func(a, b *node.Node) (bool, error) { return !a.Equal(b), nil },
	"<":  func(a, b *node.Node) (bool, error) { return a.Less(b) },
	">": func(a, b *node.Node) (bool, error) {
		lt, err := a.Less(b)
		if err != nil {
			return false, err
		}
		return !lt && !a.Equal(b), nil
	},
	"<=": func(a, b *node.Node) (bool, error) {
		lt, err := a.Less(b)
		if err != nil {
			return false, err
		}
		return lt || a.Equal(b), nil
	},
	">=": func(a, b *node.Node) (bool, error) {
		lt, err := a.Less(b)
		if err != nil {
			return false, err
		}
		return !lt, nil
	},
}

func (p *MacroProcessor) evalComparison(n *node.Node, fn compareFunc, args []*node.Node) (*node.Node, error) {
	if len(args) != 2 {
		return nil, errAt(n, "comparison operator expects 2 operands, got %d", len(args))
	}
	a, err := p.evaluate(args[0], true)
	if err != nil {
		return nil, err
	}
	b, err := p.evaluate(args[1], true)
	if err != nil {
		return nil, err
	}
	result, err := fn(a, b)
	if err != nil {
		return nil, errAt(n, "%s", err)
	}
	return node.BoolNode(result), nil
}

func (p *MacroProcessor) evalNot(n *node.Node, args []*node.Node) (*node.Node, error) {
	if len(args) != 1 {
		return nil, errAt(n, "'not' expects 1 operand, got %d", len(args))
	}
	v, err := p.evaluate(args[0], true)
	if err != nil {
		return nil, err
	}
	truth, err := node.Truthy(v)
	if err != nil {
		return nil, err
	}
	return node.BoolNode(!truth), nil
}

func (p *MacroProcessor) evalAnd(n *node.Node, args []*node.Node) (*node.Node, error) {
	if len(args) < 2 {
		return nil, errAt(n, "'and' expects at least 2 operands, got %d", len(args))
	}
	for _, arg := range args {
		v, err := p.evaluate(arg, true)
		if err != nil {
			return nil, err
		}
		truth, err := node.Truthy(v)
		if err != nil {
			return nil, err
		}
		if !truth {
			return node.FalseNode, nil
		}
	}
	return node.TrueNode, nil
}

func (p *MacroProcessor) evalOr(n *node.Node, args []*node.Node) (*node.Node, error) {
	if len(args) < 2 {
		return nil, errAt(n, "'or' expects at least 2 operands, got %d", len(args))
	}
	for _, arg := range args {
		v, err := p.evaluate(arg, true)
		if err != nil {
			return nil, err
		}
		truth, err := node.Truthy(v)
		if err != nil {
			return nil, err
		}
		if truth {
			return node.TrueNode, nil
		}
	}
	return node.FalseNode, nil
}

// listOperand evaluates arg and requires it to reduce to a List, returning
// the slice of elements with any leading ListNode sentinel stripped.
func (p *MacroProcessor) listOperand(n, arg *node.Node) ([]*node.Node, error) {
	v, err := p.evaluate(arg, true)
	if err != nil {
		return nil, err
	}
	if v.Kind != node.List {
		return nil, errAt(n, "expected a list argument, got %s", v.Kind)
	}
	if v.IsDataList() {
		return v.Children[1:], nil
	}
	return v.Children, nil
}

func (p *MacroProcessor) evalLen(n *node.Node, args []*node.Node) (*node.Node, error) {
	if len(args) != 1 {
		return nil, errAt(n, "'len' expects 1 operand, got %d", len(args))
	}
	elems, err := p.listOperand(n, args[0])
	if err != nil {
		return nil, err
	}
	return node.NewNumber(float64(len(elems)), n.Loc), nil
}

func (p *MacroProcessor) evalIndex(n *node.Node, args []*node.Node) (*node.Node, error) {
	if len(args) != 2 {
		return nil, errAt(n, "'@' expects 2 operands, got %d", len(args))
	}
	elems, err := p.listOperand(n, args[0])
	if err != nil {
		return nil, err
	}
	idxNode, err := p.evaluate(args[1], true)
	if err != nil {
		return nil, err
	}
	if idxNode.Kind != node.Number {
		return nil, errAt(n, "'@' index must be a number, got %s", idxNode.Kind)
	}
	idx := int(idxNode.Num)
	if idx < 0 {
		idx += len(elems)
	}
	if idx < 0 || idx >= len(elems) {
		return nil, errAt(n, "index out of range")
	}
	return elems[idx], nil
}

func (p *MacroProcessor) evalHead(n *node.Node, args []*node.Node) (*node.Node, error) {
	if len(args) != 1 {
		return nil, errAt(n, "'head' expects 1 operand, got %d", len(args))
	}
	elems, err := p.listOperand(n, args[0])
	if err != nil {
		return nil, err
	}
	if len(elems) == 0 {
		return node.NilNode, nil
	}
	return elems[0], nil
}

func (p *MacroProcessor) evalTail(n *node.Node, args []*node.Node) (*node.Node, error) {
	if len(args) != 1 {
		return nil, errAt(n, "'tail' expects 1 operand, got %d", len(args))
	}
	elems, err := p.listOperand(n, args[0])
	if err != nil {
		return nil, err
	}
	rest := []*node.Node{node.ListNode}
	if len(elems) > 0 {
		rest = append(rest, elems[1:]...)
	}
	return node.NewList(n.Loc, rest...), nil
}
