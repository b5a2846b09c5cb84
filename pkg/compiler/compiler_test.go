package compiler

import (
	"bytes"
	"encoding/binary"
	"strconv"
	"testing"

	"arkc/pkg/node"
)

var zero = node.Location{}

func sym(name string) *node.Node   { return node.NewSymbol(name, zero) }
func num(v float64) *node.Node     { return node.NewNumber(v, zero) }
func str(v string) *node.Node      { return node.NewString(v, zero) }
func kw(k node.KeywordKind) *node.Node { return node.NewKeywordNode(k, zero) }
func lst(children ...*node.Node) *node.Node {
	return node.NewList(zero, children...)
}
func program(forms ...*node.Node) *node.Node {
	children := append([]*node.Node{kw(node.Begin)}, forms...)
	return lst(children...)
}

// S1: (let x 42) => symbols ["x"]; values [Number 42]; one page ending
// LET 0 after LOAD_CONST 0.
func TestLetProducesSymbolAndValue(t *testing.T) {
	tree := program(lst(kw(node.Let), sym("x"), num(42)))
	c := New(0)
	if err := c.Feed(tree); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(c.symbols) != 1 || c.symbols[0] != "x" {
		t.Fatalf("symbols: got %v", c.symbols)
	}
	if len(c.values) != 1 || c.values[0].Kind != VNumber || c.values[0].Num != 42 {
		t.Fatalf("values: got %v", c.values)
	}
	page := c.pages[c.entryPage]
	if len(page) != 2 {
		t.Fatalf("expected 2 instructions, got %d: %v", len(page), page)
	}
	if page[0].Op != OpLoadConst || page[0].Arg != 0 || page[1].Op != OpLet || page[1].Arg != 0 {
		t.Fatalf("expected LOAD_CONST 0 then LET 0, got %v", page)
	}
}

// S3: (let y (* 3 3)) => two LOAD_CONST of the value index for 3 and one
// SPECIFIC multiply.
func TestMultiplyCompilesToSpecific(t *testing.T) {
	tree := program(lst(kw(node.Let), sym("y"), lst(sym("*"), num(3), num(3))))
	c := New(0)
	if err := c.Feed(tree); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	page := c.pages[c.entryPage]
	if len(page) != 4 {
		t.Fatalf("expected 4 instructions, got %d: %v", len(page), page)
	}
	if page[0].Op != OpLoadConst || page[1].Op != OpLoadConst {
		t.Fatalf("expected two LOAD_CONST, got %v", page[:2])
	}
	if page[0].Arg != page[1].Arg {
		t.Fatalf("expected the two literal 3s to share one interned value index (property #4), got %v and %v", page[0].Arg, page[1].Arg)
	}
	mulID, _ := builtinID("*")
	if page[2].Op != OpSpecific || page[2].Arg != uint16(mulID) || page[2].Arg2 != 2 {
		t.Fatalf("expected SPECIFIC(*,2), got %v", page[2])
	}
	if page[3].Op != OpLet {
		t.Fatalf("expected trailing LET, got %v", page[3])
	}
}

// S5: (fun (x &y) (+ x y)) => a new page is allocated; its first two
// instructions bind x and capture y; the parent page emits
// LOAD_CONST <PageRef>.
func TestFunctionAllocatesPageAndBindsParams(t *testing.T) {
	fn := lst(kw(node.Fun), lst(sym("x"), node.NewCapture("y", zero)), lst(sym("+"), sym("x"), sym("y")))
	tree := program(fn)
	c := New(0)
	if err := c.Feed(tree); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	if len(c.pages) < 2 {
		t.Fatalf("expected a function page to be allocated, got %d pages", len(c.pages))
	}
	fnPage := c.pages[1]
	if len(fnPage) < 2 || fnPage[0].Op != OpMut || fnPage[1].Op != OpStoreCapture {
		t.Fatalf("expected MUT then STORE_CAPTURE at function entry, got %v", fnPage[:2])
	}
	entry := c.pages[c.entryPage]
	if len(entry) != 1 || entry[0].Op != OpLoadConst {
		t.Fatalf("expected parent page to hold a single LOAD_CONST, got %v", entry)
	}
	if c.values[entry[0].Arg].Kind != VPageRef || c.values[entry[0].Arg].Page != 1 {
		t.Fatalf("expected LOAD_CONST to reference the function's page, got %v", c.values[entry[0].Arg])
	}
}

// Property #5: a reference to an undefined symbol is fatal when no plugin
// has been imported.
func TestUndefinedSymbolIsFatal(t *testing.T) {
	tree := program(lst(kw(node.Let), sym("x"), sym("neverDefined")))
	c := New(0)
	if err := c.Feed(tree); err == nil {
		t.Fatalf("expected an undefined-symbol error")
	}
}

// With a plugin imported, the same reference degrades to a warning rather
// than an error, since a plugin's exports are opaque to the compiler.
func TestUndefinedSymbolWithPluginIsWarningOnly(t *testing.T) {
	tree := program(
		lst(kw(node.Import), sym("somePlugin")),
		lst(kw(node.Let), sym("x"), sym("pluginExportedName")),
	)
	c := New(0)
	if err := c.Feed(tree); err != nil {
		t.Fatalf("expected no error once a plugin is imported, got %v", err)
	}
	if len(c.Warnings()) != 1 {
		t.Fatalf("expected one warning, got %v", c.Warnings())
	}
}

// Property #7: every POP_JUMP_IF_FALSE and JUMP address points to a valid
// instruction start within the same page.
func TestIfJumpTargetsAreValid(t *testing.T) {
	tree := program(lst(kw(node.Let), sym("v"), lst(kw(node.If), lst(sym("="), num(1), num(2)), num(10), num(20))))
	c := New(0)
	if err := c.Feed(tree); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	page := c.pages[c.entryPage]
	for i, ins := range page {
		if ins.Op != OpJump && ins.Op != OpPopJumpIfFalse {
			continue
		}
		if ins.Arg%4 != 0 {
			t.Fatalf("instruction %d: jump target %d is not 4-byte aligned", i, ins.Arg)
		}
		if int(ins.Arg)/4 > len(page) {
			t.Fatalf("instruction %d: jump target %d lands outside the page (len %d)", i, ins.Arg, len(page))
		}
	}
}

// Property #6: a Number or String literal's value-table entry round-trips
// through the serialized format.
func TestLiteralRoundTripsThroughBytecode(t *testing.T) {
	tree := program(
		lst(kw(node.Let), sym("x"), num(3.5)),
		lst(kw(node.Let), sym("y"), str("hi")),
	)
	c := New(0)
	if err := c.Feed(tree); err != nil {
		t.Fatalf("Feed: %v", err)
	}
	bc, err := c.Bytecode()
	if err != nil {
		t.Fatalf("Bytecode: %v", err)
	}
	if len(bc) == 0 || bc[len(bc)-1] != 0x00 {
		t.Fatalf("expected a single terminator byte at the end")
	}
	if string(bc[0:4]) != "ark\x00" {
		t.Fatalf("expected magic 'ark\\0', got %v", bc[0:4])
	}

	// Header: 4-byte magic, 3 x 2-byte version, 8-byte timestamp.
	off := 4 + 6 + 8
	readCString := func() string {
		end := bytes.IndexByte(bc[off:], 0x00)
		if end < 0 {
			t.Fatalf("unterminated string at offset %d", off)
		}
		s := string(bc[off : off+end])
		off += end + 1
		return s
	}
	if bc[off] != 0x01 {
		t.Fatalf("expected SYM section tag at offset %d, got %#x", off, bc[off])
	}
	symCount := int(binary.BigEndian.Uint16(bc[off+1:]))
	off += 3
	for i := 0; i < symCount; i++ {
		readCString()
	}
	if bc[off] != 0x02 {
		t.Fatalf("expected VAL section tag at offset %d, got %#x", off, bc[off])
	}
	if valCount := binary.BigEndian.Uint16(bc[off+1:]); valCount != 2 {
		t.Fatalf("expected 2 values, got %d", valCount)
	}
	off += 3
	if bc[off] != 0x01 {
		t.Fatalf("expected number value tag, got %#x", bc[off])
	}
	off++
	if v, err := strconv.ParseFloat(readCString(), 64); err != nil || v != 3.5 {
		t.Fatalf("expected number 3.5 to round-trip, got %v err=%v", v, err)
	}
	if bc[off] != 0x02 {
		t.Fatalf("expected string value tag, got %#x", bc[off])
	}
	off++
	if s := readCString(); s != "hi" {
		t.Fatalf("expected string \"hi\" to round-trip, got %q", s)
	}
}
