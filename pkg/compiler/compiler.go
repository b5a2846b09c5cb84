// Package compiler lowers an expanded Node tree into bytecode: interned
// constant/symbol/plugin tables, a set of code pages, and a final
// undefined-symbol completeness check. It assumes its input has already
// been through package macro — no Macro or Spread node may reach it.
package compiler

import "arkc/pkg/node"

// Compile runs a full tree through a fresh Compiler and returns its
// serialized bytecode. It is the package's single entry point for callers
// that don't need access to the intermediate tables.
func Compile(tree *node.Node, debugLevel int) ([]byte, []string, error) {
	c := New(debugLevel)
	if err := c.Feed(tree); err != nil {
		return nil, nil, err
	}
	bc, err := c.Bytecode()
	if err != nil {
		return nil, nil, err
	}
	return bc, c.Warnings(), nil
}

// Feed compiles tree onto the entry page and runs the undefined-symbol
// completeness check. tree is expected to be a List headed by the Begin
// keyword, as produced by the parser and macro processor.
func (c *Compiler) Feed(tree *node.Node) error {
	if tree.Kind != node.List {
		return errAt(tree, "root must be a list, got %s", tree.Kind)
	}
	for _, child := range tree.Children {
		if child.Kind == node.Keyword {
			continue
		}
		if err := c.compileNode(child, c.entryPage); err != nil {
			return err
		}
	}
	return c.finish()
}

// finish resolves every deferred undefined-symbol reference. With no plugin
// ever imported, any reference to a name outside the defined-symbols set is
// a fatal error (completeness is fully decidable). Once at least one
// plugin has been imported, a plugin may export arbitrary names the
// compiler cannot see, so the check is downgraded to a recorded warning
// instead of silently dropped.
func (c *Compiler) finish() error {
	for _, ref := range c.undefinedRefs {
		if c.definedSymbols[ref.name] {
			continue
		}
		if len(c.plugins) == 0 {
			return &Error{Msg: ref.loc + ": undefined symbol " + ref.name}
		}
		c.warnings = append(c.warnings, ref.name+" ("+ref.loc+")")
	}
	return nil
}

// compileNode dispatches on n's Kind and emits onto page.
func (c *Compiler) compileNode(n *node.Node, page int) error {
	switch n.Kind {
	case node.Number:
		idx := c.addValue(Value{Kind: VNumber, Num: n.Num})
		c.emit(page, Instruction{Op: OpLoadConst, Arg: uint16(idx)})
		return nil

	case node.String:
		idx := c.addValue(Value{Kind: VString, Str: n.Str})
		c.emit(page, Instruction{Op: OpLoadConst, Arg: uint16(idx)})
		return nil

	case node.Symbol:
		return c.compileSymbol(n, page)

	case node.Capture:
		idx := c.addSymbol(n.Str)
		c.emit(page, Instruction{Op: OpLoadCapture, Arg: uint16(idx)})
		return nil

	case node.GetField:
		idx := c.addSymbol(n.Str)
		c.emit(page, Instruction{Op: OpGetField, Arg: uint16(idx)})
		return nil

	case node.List:
		return c.compileList(n, page)

	default:
		return errAt(n, "cannot compile a %s node here", n.Kind)
	}
}

// compileSymbol resolves a bare symbol reference in the order: operator or
// builtin table, then the nil/true/false literals, then a plain variable
// load (deferred against the defined-symbols set for the completeness
// check run at the end of Feed).
func (c *Compiler) compileSymbol(n *node.Node, page int) error {
	if id, ok := builtinID(n.Str); ok {
		c.emit(page, Instruction{Op: OpBuiltin, Arg: uint16(id)})
		return nil
	}
	switch n.Str {
	case "nil":
		c.emitLoadLiteral(page, "nil")
		return nil
	case "true":
		c.emitLoadLiteral(page, "true")
		return nil
	case "false":
		c.emitLoadLiteral(page, "false")
		return nil
	}
	idx := c.addSymbol(n.Str)
	c.emit(page, Instruction{Op: OpLoadSymbol, Arg: uint16(idx)})
	if !c.definedSymbols[n.Str] {
		c.undefinedRefs = append(c.undefinedRefs, undefinedRef{name: n.Str, loc: n.Loc.String()})
	}
	return nil
}

// emitLoadLiteral interns name ("nil", "true" or "false") into the Values
// table on first reference and emits LOAD_CONST against it. addValue
// dedups by equality, so a second reference to the same literal reuses the
// index from the first instead of growing the table.
func (c *Compiler) emitLoadLiteral(page int, name string) {
	idx := c.addValue(Value{Kind: VString, Str: name})
	c.emit(page, Instruction{Op: OpLoadConst, Arg: uint16(idx)})
}

// compileList dispatches a List form: a Keyword head selects a core form;
// a Symbol head naming an operator/specific form dispatches to
// compileSpecific or the and/or short-circuit builder; anything else is a
// generic call.
func (c *Compiler) compileList(n *node.Node, page int) error {
	if len(n.Children) == 0 {
		return errAt(n, "empty list form")
	}
	head := n.Children[0]

	if head.Kind == node.Keyword {
		switch head.Keyword {
		case node.If:
			return c.compileIf(n, page)
		case node.Let:
			return c.compileLetMutSet(n, page, OpLet, true)
		case node.Mut:
			return c.compileLetMutSet(n, page, OpMut, true)
		case node.Set:
			return c.compileLetMutSet(n, page, OpStore, false)
		case node.Fun:
			return c.compileFunction(n, page)
		case node.While:
			return c.compileWhile(n, page)
		case node.Begin:
			for _, child := range n.Children[1:] {
				if err := c.compileNode(child, page); err != nil {
					return err
				}
			}
			return nil
		case node.Import:
			return c.compilePluginImport(n, page)
		case node.Quote:
			return c.compileQuote(n, page)
		case node.Del:
			return c.compileDel(n, page)
		default:
			return errAt(n, "unhandled keyword form %s", head.Keyword)
		}
	}

	if head.Kind == node.Symbol {
		if head.Str == "and" || head.Str == "or" {
			return c.compileAndOr(head.Str, n.Children[1:], page)
		}
		if id, ok := builtinID(head.Str); ok && specificForms[head.Str] {
			return c.compileSpecific(n.Children[1:], id, page)
		}
	}

	return c.handleCalls(n, page)
}
