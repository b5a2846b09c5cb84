package compiler

// Opcode numbering is an implementer's choice: spec leaves the VM's opcode
// table "fixed by the companion VM... not enumerated here beyond the
// semantic names used" (§4.3). This file fixes one concrete, internally
// consistent numbering so the compiler can actually emit bytes; a real VM
// would supply its own and this table would be swapped for its constants.
const (
	OpLoadConst byte = iota + 1
	OpLoadSymbol
	OpStoreCapture // bind a captured function parameter
	OpLoadCapture  // read a &name capture reference used as a value
	OpCapture      // wrap a LOAD_CONST'd page as a zero-argument thunk (quote)
	OpGetField
	OpDel
	OpLet
	OpMut
	OpStore // target of Set
	OpCall
	OpRet
	OpJump
	OpPopJumpIfFalse
	OpBuiltin
	OpPlugin
	OpSpecific // argc carried in Arg2, form id carried in Arg
	OpPop      // discards the top-of-stack result (e.g. a while-loop body)
)

// builtinID assigns one flat id space to the operator table, the builtin
// function table, and the "specific" forms. compileSymbol uses it to pick
// an id for a bare BUILTIN reference; compileSpecific uses it to pick a
// SPECIFIC opcode's form id. Keeping them in one table mirrors the
// teacher's map-of-mnemonic-to-id idiom in pkg/asm (zeroOperandOps,
// twoRegisterOps, ...), generalized from assembly mnemonics to compiler
// builtin names.
var builtinIDs = map[string]byte{
	// operator table
	"+": 0, "-": 1, "*": 2, "/": 3,
	"=": 4, "!=": 5, "<": 6, ">": 7, "<=": 8, ">=": 9,
	// builtin function table
	"print": 10, "not": 11,
	// specific forms (variable operand count, argc packed into the
	// instruction's secondary argument byte)
	"list": 12, "append": 13, "concat": 14,
}

// specificForms is the subset of builtinIDs that compiles through
// compileSpecific rather than being treated as a generic call. "and" and
// "or" are deliberately absent: they compile to short-circuit jump
// sequences analogous to if, not a SPECIFIC opcode.
var specificForms = map[string]bool{
	"+": true, "-": true, "*": true, "/": true,
	"=": true, "!=": true, "<": true, ">": true, "<=": true, ">=": true,
	"list": true, "append": true, "concat": true,
}

func builtinID(name string) (byte, bool) {
	id, ok := builtinIDs[name]
	return id, ok
}
