package macro

import "arkc/pkg/node"

// scopeFrame is one frame of the macro scope stack: a mapping from macro
// name to its defining Macro node, plus the tree depth at which the frame
// was opened (the source's reserved "#depth" entry, kept here as a plain
// field rather than a map entry — cheaper, and no map iteration order to
// worry about when popping).
type scopeFrame struct {
	bindings  map[string]*node.Node
	openDepth int
}

func newScopeFrame(depth int) *scopeFrame {
	return &scopeFrame{bindings: make(map[string]*node.Node), openDepth: depth}
}

// openFrameForRegistration returns the frame a new macro should be bound
// into at the given depth, opening a new one per the lazy-scoping rule: a
// frame is pushed when the stack is empty (the root case) or when the
// current top frame already holds at least one binding; otherwise the
// existing (empty) top frame is reused and its depth adjusted to the
// registration site.
func (p *MacroProcessor) openFrameForRegistration(depth int) *scopeFrame {
	if len(p.scopes) == 0 {
		f := newScopeFrame(depth)
		p.scopes = append(p.scopes, f)
		return f
	}
	top := p.scopes[len(p.scopes)-1]
	if len(top.bindings) != 0 {
		f := newScopeFrame(depth)
		p.scopes = append(p.scopes, f)
		return f
	}
	top.openDepth = depth
	return top
}

// popFramesAt pops every frame opened at exactly this depth. Called when
// process returns from recursing into the list that was being scanned at
// that depth, so a macro's visibility never outlives the form it was
// defined in.
func (p *MacroProcessor) popFramesAt(depth int) {
	for len(p.scopes) > 0 && p.scopes[len(p.scopes)-1].openDepth == depth {
		p.scopes = p.scopes[:len(p.scopes)-1]
	}
}

// scopeNonEmpty reports whether any frame currently holds at least one
// binding — the gate process() uses to decide whether a child is worth
// running through the executor pipeline at all.
func (p *MacroProcessor) scopeNonEmpty() bool {
	for _, f := range p.scopes {
		if len(f.bindings) > 0 {
			return true
		}
	}
	return false
}

// findNearestMacro scans frames top to bottom (innermost scope first) so
// shadowing works implicitly.
func (p *MacroProcessor) findNearestMacro(name string) (*node.Node, bool) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if m, ok := p.scopes[i].bindings[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// deleteNearestMacro removes the first (innermost) occurrence of name,
// implementing !{undef name}. A name that is not bound anywhere is a no-op.
func (p *MacroProcessor) deleteNearestMacro(name string) bool {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if _, ok := p.scopes[i].bindings[name]; ok {
			delete(p.scopes[i].bindings, name)
			return true
		}
	}
	return false
}
