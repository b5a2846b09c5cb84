package compiler

import "arkc/pkg/node"

// compileIf compiles (if cond then [else]) as: cond; POP_JUMP_IF_FALSE A;
// then; JUMP B; A: else-or-nil; B: ...
func (c *Compiler) compileIf(n *node.Node, page int) error {
	if len(n.Children) != 3 && len(n.Children) != 4 {
		return errAt(n, "if takes a condition, a then-branch and an optional else-branch")
	}
	var elseBranch *node.Node
	if len(n.Children) == 4 {
		elseBranch = n.Children[3]
	}
	return c.compileIfParts(n.Children[1], n.Children[2], elseBranch, page)
}

func (c *Compiler) compileIfParts(cond, thenBranch, elseBranch *node.Node, page int) error {
	if err := c.compileNode(cond, page); err != nil {
		return err
	}
	pj := c.emit(page, Instruction{Op: OpPopJumpIfFalse})
	if err := c.compileNode(thenBranch, page); err != nil {
		return err
	}
	j := c.emit(page, Instruction{Op: OpJump})
	c.patch(page, pj, c.byteOffset(page))
	if elseBranch != nil {
		if err := c.compileNode(elseBranch, page); err != nil {
			return err
		}
	} else {
		c.emitLoadLiteral(page, "nil")
	}
	c.patch(page, j, c.byteOffset(page))
	return nil
}

// compileAndOr compiles (and a b c...) / (or a b c...) by folding the
// operand list, right to left, into nested if-forms and reusing
// compileIfParts: (and a b) is (if a b false), (or a b) is (if a true b).
// This is the short-circuit jump sequence the form requires, built from the
// same two opcodes compileIf already uses, without needing a dedicated
// stack-duplication instruction.
func (c *Compiler) compileAndOr(op string, operands []*node.Node, page int) error {
	if len(operands) == 0 {
		return errAt(node.NewSymbol(op, node.Location{}), "%s requires at least one operand", op)
	}
	cur := operands[len(operands)-1]
	for i := len(operands) - 2; i >= 0; i-- {
		if op == "and" {
			cur = ifNode(operands[i], cur, node.FalseNode)
		} else {
			cur = ifNode(operands[i], node.TrueNode, cur)
		}
	}
	return c.compileNode(cur, page)
}

func ifNode(cond, then, els *node.Node) *node.Node {
	return node.NewList(cond.Loc, node.NewKeywordNode(node.If, cond.Loc), cond, then, els)
}

// compileLetMutSet compiles (let name value), (mut name value) and
// (set name value) identically at the instruction level: compile value,
// then emit op with the target's interned symbol index. definesSymbol
// controls whether name joins the defined-symbols set used by the final
// undefined-reference check (Let and Mut introduce a binding; Set assigns
// to one that must already exist).
func (c *Compiler) compileLetMutSet(n *node.Node, page int, op byte, definesSymbol bool) error {
	if len(n.Children) != 3 || n.Children[1].Kind != node.Symbol {
		return errAt(n, "expected (%s name value)", n.Children[0].Keyword)
	}
	name := n.Children[1].Str
	if err := c.compileNode(n.Children[2], page); err != nil {
		return err
	}
	idx := c.addSymbol(name)
	c.emit(page, Instruction{Op: op, Arg: uint16(idx)})
	if definesSymbol {
		c.definedSymbols[name] = true
	}
	return nil
}

// compileFunction compiles (fun (params) body) into a fresh code page: each
// parameter becomes a STORE_CAPTURE (if written as &name) or MUT (plain
// name) at page entry, followed by the compiled body and a RET. The
// current page receives LOAD_CONST <PageRef(P)> so the function value is a
// page reference sitting on the stack, ready for CALL.
func (c *Compiler) compileFunction(n *node.Node, page int) error {
	if len(n.Children) != 3 || n.Children[1].Kind != node.List {
		return errAt(n, "expected (fun (params) body)")
	}
	fnPage := c.newPage()
	for _, param := range n.Children[1].Children {
		switch param.Kind {
		case node.Capture:
			idx := c.addSymbol(param.Str)
			c.emit(fnPage, Instruction{Op: OpStoreCapture, Arg: uint16(idx)})
			c.definedSymbols[param.Str] = true
		case node.Symbol:
			idx := c.addSymbol(param.Str)
			c.emit(fnPage, Instruction{Op: OpMut, Arg: uint16(idx)})
			c.definedSymbols[param.Str] = true
		default:
			return errAt(param, "function parameter must be a symbol or capture, got %s", param.Kind)
		}
	}
	if err := c.compileNode(n.Children[2], fnPage); err != nil {
		return err
	}
	c.emit(fnPage, Instruction{Op: OpRet})

	idx := c.addValue(Value{Kind: VPageRef, Page: fnPage})
	c.emit(page, Instruction{Op: OpLoadConst, Arg: uint16(idx)})
	return nil
}

// compileWhile compiles (while cond body) as a backward-jumping loop: the
// body's result is explicitly discarded (OpPop) since a loop iteration
// produces no value used by anything.
func (c *Compiler) compileWhile(n *node.Node, page int) error {
	if len(n.Children) != 3 {
		return errAt(n, "expected (while cond body)")
	}
	start := c.byteOffset(page)
	if err := c.compileNode(n.Children[1], page); err != nil {
		return err
	}
	pj := c.emit(page, Instruction{Op: OpPopJumpIfFalse})
	if err := c.compileNode(n.Children[2], page); err != nil {
		return err
	}
	c.emit(page, Instruction{Op: OpPop})
	c.emit(page, Instruction{Op: OpJump, Arg: start})
	c.patch(page, pj, c.byteOffset(page))
	return nil
}

// compilePluginImport compiles (import name): the plugin name is interned
// in the plugin table and a single PLUGIN instruction references it.
func (c *Compiler) compilePluginImport(n *node.Node, page int) error {
	if len(n.Children) != 2 || n.Children[1].Kind != node.Symbol {
		return errAt(n, "expected (import name)")
	}
	idx := c.addPlugin(n.Children[1].Str)
	c.emit(page, Instruction{Op: OpPlugin, Arg: uint16(idx)})
	return nil
}

// compileDel compiles (del name): a single DEL instruction against the
// interned symbol index.
func (c *Compiler) compileDel(n *node.Node, page int) error {
	if len(n.Children) != 2 || n.Children[1].Kind != node.Symbol {
		return errAt(n, "expected (del name)")
	}
	idx := c.addSymbol(n.Children[1].Str)
	c.emit(page, Instruction{Op: OpDel, Arg: uint16(idx)})
	return nil
}

// compileQuote compiles (quote form): form is reified as a constant-
// building instruction sequence on a temp page, finalized into a real page,
// then wrapped as a zero-argument thunk with LOAD_CONST <PageRef> followed
// by CAPTURE. Quoting is conservatively literal: a quoted symbol reduces to
// a string carrying its name, never a variable reference (quoting never
// captures the enclosing scope).
func (c *Compiler) compileQuote(n *node.Node, page int) error {
	if len(n.Children) != 2 {
		return errAt(n, "expected (quote form)")
	}
	t := c.newTempPage()
	if err := c.compileQuotedValue(n.Children[1], t); err != nil {
		return err
	}
	p := c.finalizePage(t)
	idx := c.addValue(Value{Kind: VPageRef, Page: p})
	c.emit(page, Instruction{Op: OpLoadConst, Arg: uint16(idx)})
	c.emit(page, Instruction{Op: OpCapture})
	return nil
}

func (c *Compiler) compileQuotedValue(n *node.Node, page int) error {
	switch n.Kind {
	case node.Number:
		idx := c.addValue(Value{Kind: VNumber, Num: n.Num})
		c.emit(page, Instruction{Op: OpLoadConst, Arg: uint16(idx)})
		return nil
	case node.String, node.Symbol, node.Capture, node.GetField, node.Spread:
		idx := c.addValue(Value{Kind: VString, Str: n.Str})
		c.emit(page, Instruction{Op: OpLoadConst, Arg: uint16(idx)})
		return nil
	case node.Keyword:
		idx := c.addValue(Value{Kind: VString, Str: n.Keyword.String()})
		c.emit(page, Instruction{Op: OpLoadConst, Arg: uint16(idx)})
		return nil
	case node.List, node.Macro:
		for _, child := range n.Children {
			if err := c.compileQuotedValue(child, page); err != nil {
				return err
			}
		}
		listID, _ := builtinID("list")
		c.emit(page, Instruction{Op: OpSpecific, Arg: uint16(listID), Arg2: byte(len(n.Children))})
		return nil
	default:
		return errAt(n, "cannot quote a %s node", n.Kind)
	}
}

// handleCalls compiles a generic call: the callee expression, then each
// argument in order, then CALL <argc>. Argument count excludes the GetField
// nodes that directly follow children[0]: the parser reads `obj.method` as
// the two siblings `obj` and `.method`, so that run of GetFields is the
// callee's method-access chain rather than call arguments.
func (c *Compiler) handleCalls(n *node.Node, page int) error {
	if err := c.compileNode(n.Children[0], page); err != nil {
		return err
	}
	args := n.Children[1:]
	argc := len(args)
	for _, a := range args {
		if a.Kind != node.GetField {
			break
		}
		argc--
	}
	for _, a := range args {
		if err := c.compileNode(a, page); err != nil {
			return err
		}
	}
	c.emit(page, Instruction{Op: OpCall, Arg: uint16(argc)})
	return nil
}

// compileSpecific compiles an operator or specific-form call: every
// operand in order, then a single SPECIFIC instruction naming the form
// (Arg) and its operand count (Arg2).
func (c *Compiler) compileSpecific(operands []*node.Node, formID byte, page int) error {
	for _, a := range operands {
		if err := c.compileNode(a, page); err != nil {
			return err
		}
	}
	c.emit(page, Instruction{Op: OpSpecific, Arg: uint16(formID), Arg2: byte(len(operands))})
	return nil
}
