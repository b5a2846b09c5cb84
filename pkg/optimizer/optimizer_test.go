package optimizer

import (
	"testing"

	"arkc/pkg/node"
)

var zero = node.Location{}

func sym(name string) *node.Node { return node.NewSymbol(name, zero) }
func num(v float64) *node.Node   { return node.NewNumber(v, zero) }
func kw(k node.KeywordKind) *node.Node {
	return node.NewKeywordNode(k, zero)
}
func lst(children ...*node.Node) *node.Node { return node.NewList(zero, children...) }

func TestFoldsConstantArithmetic(t *testing.T) {
	tree := lst(sym("+"), num(2), num(3))
	got, err := Optimize(tree)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if got.Kind != node.Number || got.Num != 5 {
		t.Fatalf("expected folded 5, got %v", got)
	}
}

func TestFoldsConstantComparison(t *testing.T) {
	tree := lst(sym("<"), num(2), num(3))
	got, err := Optimize(tree)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if got != node.TrueNode {
		t.Fatalf("expected TrueNode, got %v", got)
	}
}

func TestCollapsesIfOnLiteralTrueCondition(t *testing.T) {
	tree := lst(kw(node.If), lst(sym("<"), num(2), num(3)), num(10), num(20))
	got, err := Optimize(tree)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if got.Kind != node.Number || got.Num != 10 {
		t.Fatalf("expected then-branch 10, got %v", got)
	}
}

func TestLeavesNonLiteralConditionAlone(t *testing.T) {
	tree := lst(kw(node.If), lst(sym("<"), sym("x"), num(3)), num(10), num(20))
	got, err := Optimize(tree)
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if got.Children[0].Kind != node.Keyword || got.Children[0].Keyword != node.If {
		t.Fatalf("expected the if form to survive unfolded, got %v", got)
	}
}
