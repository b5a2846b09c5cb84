package macro

import "arkc/pkg/node"

// executor is one stage of the fixed-order expansion pipeline. Expressed as
// small tagged variants rather than a polymorphic class hierarchy, per the
// design note: each executor either claims a node (handled=true) and
// returns its replacement, or declines and lets the pipeline try the next
// one.
type executor interface {
	tryExecute(p *MacroProcessor, n *node.Node) (result *node.Node, handled bool, err error)
}

// pipeline is tried in this fixed order for every node execute() is asked
// to expand. The first executor that claims a node terminates the pipeline
// for that node.
var pipeline = []executor{
	symbolExecutor{},
	conditionalExecutor{},
	listExecutor{},
}

// execute runs the pipeline once against n, then (for robustness against
// chained aliases, e.g. !{a b} !{b 1}) repeats it against the result until
// nothing further claims the node or an iteration cap is hit. A single pass
// would still resolve any single alias or single call correctly; repeating
// it just lets a chain of plain symbol aliases resolve fully instead of
// stopping after one hop.
func (p *MacroProcessor) execute(n *node.Node) (*node.Node, bool, error) {
	current := n
	claimedOnce := false
	for i := 0; i < maxExecuteIterations; i++ {
		result, handled, err := p.executeOnce(current)
		if err != nil {
			return nil, false, err
		}
		if !handled {
			return current, claimedOnce, nil
		}
		claimedOnce = true
		current = result
	}
	return current, claimedOnce, nil
}

const maxExecuteIterations = 1000

func (p *MacroProcessor) executeOnce(n *node.Node) (*node.Node, bool, error) {
	for _, ex := range pipeline {
		result, handled, err := ex.tryExecute(p, n)
		if err != nil {
			return nil, false, err
		}
		if handled {
			return result, true, nil
		}
	}
	return n, false, nil
}

// symbolExecutor substitutes a symbol whose name matches an alias-form
// macro (!{name value}) in scope.
type symbolExecutor struct{}

func (symbolExecutor) tryExecute(p *MacroProcessor, n *node.Node) (*node.Node, bool, error) {
	if n.Kind != node.Symbol {
		return nil, false, nil
	}
	m, ok := p.findNearestMacro(n.Str)
	if !ok || len(m.Children) != 2 {
		return nil, false, nil
	}
	return m.Children[1].Clone(), true, nil
}

// conditionalExecutor rewrites a Macro node shaped !{if cond then [else]}
// by evaluating cond and selecting a branch. It is used both directly by
// macro registration (the table row that evaluates such a form immediately
// instead of storing it) and through the generic pipeline.
type conditionalExecutor struct{}

func (conditionalExecutor) tryExecute(p *MacroProcessor, n *node.Node) (*node.Node, bool, error) {
	if n.Kind != node.Macro || len(n.Children) < 3 || len(n.Children) > 4 {
		return nil, false, nil
	}
	if n.Children[0].Kind != node.Keyword || n.Children[0].Keyword != node.If {
		return nil, false, nil
	}
	branch, err := p.selectConditionalBranch(n)
	if err != nil {
		return nil, false, err
	}
	return branch, true, nil
}

// selectConditionalBranch evaluates n's condition and returns the chosen
// branch (nil if the condition is false and there is no else branch).
func (p *MacroProcessor) selectConditionalBranch(n *node.Node) (*node.Node, error) {
	cond, err := p.evaluate(n.Children[1], true)
	if err != nil {
		return nil, err
	}
	truth, err := node.Truthy(cond)
	if err != nil {
		return nil, err
	}
	if truth {
		return n.Children[2], nil
	}
	if len(n.Children) == 4 {
		return n.Children[3], nil
	}
	return nil, nil
}

// listExecutor expands a call form whose head names a function-form macro
// (!{name (params) body}), zipping the call's arguments against the
// macro's parameter list (honoring a trailing spread parameter) and
// unifying the result into the macro's body.
type listExecutor struct{}

func (listExecutor) tryExecute(p *MacroProcessor, n *node.Node) (*node.Node, bool, error) {
	if n.Kind != node.List || len(n.Children) == 0 || n.Children[0].Kind != node.Symbol {
		return nil, false, nil
	}
	m, ok := p.findNearestMacro(n.Children[0].Str)
	if !ok || len(m.Children) != 3 {
		return nil, false, nil
	}
	params := m.Children[1].Children
	body := m.Children[2]
	callArgs := n.Children[1:]

	bindings := make(map[string]*node.Node, len(params))
	for i, param := range params {
		if param.Kind == node.Spread {
			rest := []*node.Node{node.ListNode}
			if i < len(callArgs) {
				rest = append(rest, callArgs[i:]...)
			}
			bindings[param.Str] = node.NewList(param.Loc, rest...)
			break
		}
		if i < len(callArgs) {
			bindings[param.Str] = callArgs[i]
		}
	}

	result, err := unify(bindings, body)
	if err != nil {
		return nil, false, err
	}
	return result, true, nil
}
