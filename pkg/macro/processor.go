// Package macro implements the compile-time tree-rewriting engine: nested
// macro scopes, conditional expansion, and the small pure-functional
// mini-language used to evaluate `if` conditions at macro-expansion time.
package macro

import "arkc/pkg/node"

// Options is the diagnostics-only bit-field accepted by New. No bit
// currently changes expansion semantics; it exists so a caller's debug
// tooling can be extended without changing the constructor signature.
type Options uint32

// MacroProcessor consumes a root tree in place (Feed) and exposes the
// expanded result (AST). An instance is single-use: once Feed returns an
// error, the instance must be discarded, matching the fatal, no-local-
// recovery error policy shared by every stage of the pipeline.
type MacroProcessor struct {
	debugLevel int
	options    Options
	scopes     []*scopeFrame
	root       *node.Node
}

// New constructs a MacroProcessor. debugLevel and options are stored on the
// instance only; expansion never reads them and no trace output is
// produced.
func New(debugLevel int, options Options) *MacroProcessor {
	return &MacroProcessor{debugLevel: debugLevel, options: options}
}

// Feed consumes the root tree in-place, expanding every macro invocation
// and conditional, and leaving no Macro or Spread node behind.
func (p *MacroProcessor) Feed(tree *node.Node) error {
	p.root = tree
	if err := p.process(tree, 0); err != nil {
		return err
	}
	return nil
}

// AST returns the expanded root tree. Only meaningful after Feed succeeds.
func (p *MacroProcessor) AST() *node.Node {
	return p.root
}

// process recurses into a List's children in index order. A Macro child is
// registered and erased in place (the scan index does not advance, since
// erasing shifts the next child into the same slot). Any other child is run
// through the executor pipeline first, when at least one scope holds a
// binding, then recursed into at depth+1. On return, every frame opened at
// this depth is popped, so a macro's visibility never outlives the list it
// was defined in.
func (p *MacroProcessor) process(n *node.Node, depth int) error {
	if n.Kind != node.List {
		return nil
	}
	i := 0
	for i < len(n.Children) {
		child := n.Children[i]
		if child.Kind == node.Macro {
			if err := p.registerMacro(child, depth); err != nil {
				return err
			}
			n.EraseAt(i)
			continue
		}
		if p.scopeNonEmpty() {
			replaced, handled, err := p.execute(child)
			if err != nil {
				return err
			}
			if handled {
				n.Children[i] = replaced
				child = replaced
			}
		}
		if err := p.process(child, depth+1); err != nil {
			return err
		}
		i++
	}
	p.popFramesAt(depth)
	return nil
}

// registerMacro applies the registration table from spec §4.2 to a Macro
// node m found as a direct child during process, at the tree depth it was
// found at.
func (p *MacroProcessor) registerMacro(m *node.Node, depth int) error {
	children := m.Children
	switch len(children) {
	case 0, 1:
		return errAt(m, "invalid macro, missing value")

	case 2:
		if children[0].Kind != node.Symbol {
			return errAt(m, "unrecognized macro form")
		}
		if children[0].Str == "undef" {
			if children[1].Kind != node.Symbol {
				return errAt(m, "unrecognized macro form")
			}
			p.deleteNearestMacro(children[1].Str)
			return nil
		}
		frame := p.openFrameForRegistration(depth)
		frame.bindings[children[0].Str] = m
		return nil

	case 3:
		if children[0].Kind == node.Keyword && children[0].Keyword == node.If {
			return p.registerConditional(m, depth)
		}
		if children[0].Kind != node.Symbol {
			return errAt(m, "unrecognized macro form")
		}
		if children[1].Kind != node.List {
			return errAt(m, "unrecognized macro form")
		}
		if err := validateMacroArgs(children[1]); err != nil {
			return err
		}
		frame := p.openFrameForRegistration(depth)
		frame.bindings[children[0].Str] = m
		return nil

	case 4:
		if children[0].Kind == node.Keyword && children[0].Keyword == node.If {
			return p.registerConditional(m, depth)
		}
		return errAt(m, "unrecognized macro form")

	default:
		return errAt(m, "unrecognized macro form")
	}
}

// registerConditional evaluates a !{if cond then [else]} macro form
// immediately: it is never stored. If the chosen branch is itself a Macro
// node, it is registered as if it had appeared in m's place; otherwise the
// branch (if any) is discarded, since a top-level macro form never leaves a
// value behind in the tree.
func (p *MacroProcessor) registerConditional(m *node.Node, depth int) error {
	branch, err := p.selectConditionalBranch(m)
	if err != nil {
		return err
	}
	if branch == nil {
		return nil
	}
	if branch.Kind == node.Macro {
		return p.registerMacro(branch, depth)
	}
	return nil
}

// validateMacroArgs enforces the parameter-list rules: every element must
// be Symbol or Spread, at most one Spread, and nothing may follow a Spread.
func validateMacroArgs(args *node.Node) error {
	seenSpread := false
	for _, a := range args.Children {
		if seenSpread {
			return errAt(a, "no parameter may follow a spread parameter")
		}
		switch a.Kind {
		case node.Symbol:
		case node.Spread:
			seenSpread = true
		default:
			return errAt(a, "macro parameter must be a symbol or a spread, got %s", a.Kind)
		}
	}
	return nil
}
