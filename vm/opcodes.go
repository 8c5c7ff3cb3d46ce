package vm

import "fmt"

// Code is the leading discriminant of every instruction record.
type Code byte

const (
	ModuleEnd      Code = 0x00 // | end of program
	Var            Code = 0x01 // id hasInit [expr]
	Func           Code = 0x02 // id count ids FuncBlockBegin stmts FuncBlockEnd
	ClassDef       Code = 0x03 // id hasSuper [id] fields methods ctors [fieldInit]
	IntObjCreate   Code = 0x05 // literal kind payload
	InvokeFunc     Code = 0x06 // callee count args
	Return         Code = 0x07 // hasValue [expr]
	FuncBlockBegin Code = 0x08
	FuncBlockEnd   Code = 0x09
	VarRef         Code = 0x0A // id
	Conditional    Code = 0x0C // count clauses ConditionalEnd
	ConditionalEnd Code = 0x0D
	FuncRef        Code = 0x0E // id
	UnaryOperator  Code = 0x0F // op expr
	BinaryOperator Code = 0x10 // op lhs rhs
	NewObj         Code = 0x11 // class count args
	MemberGet      Code = 0x12 // expr id
	MemberSet      Code = 0x13 // expr id expr
	MemberInvoke   Code = 0x14 // expr id count args
	VarSet         Code = 0x15 // id expr
	IndexGet       Code = 0x16 // coll idx
	IndexSet       Code = 0x17 // coll idx value
	DictLiteral    Code = 0x18 // count (key value)*
	RegexLiteral   Code = 0x19 // pattern flags
	SecureDecl     Code = 0x1A // target hasCatch [id] hasType [id] expr BlockBegin stmts BlockEnd
	TypeCheck      Code = 0x1B // expr type
	BlockBegin     Code = 0x1C
	BlockEnd       Code = 0x1D
)

func (c Code) String() string {
	switch c {
	case ModuleEnd:
		return "MODULE_END"
	case Var:
		return "VAR"
	case Func:
		return "FUNC"
	case ClassDef:
		return "CLASS_DEF"
	case IntObjCreate:
		return "INTOBJ_CREATE"
	case InvokeFunc:
		return "IVK_FUNC"
	case Return:
		return "RETURN"
	case FuncBlockBegin:
		return "FUNCBLOCK_BEGIN"
	case FuncBlockEnd:
		return "FUNCBLOCK_END"
	case VarRef:
		return "VAR_REF"
	case Conditional:
		return "CONDITIONAL"
	case ConditionalEnd:
		return "CONDITIONAL_END"
	case FuncRef:
		return "FUNC_REF"
	case UnaryOperator:
		return "UNARY_OPERATOR"
	case BinaryOperator:
		return "BINARY_OPERATOR"
	case NewObj:
		return "NEW_OBJ"
	case MemberGet:
		return "MEMBER_GET"
	case MemberSet:
		return "MEMBER_SET"
	case MemberInvoke:
		return "MEMBER_IVK"
	case VarSet:
		return "VAR_SET"
	case IndexGet:
		return "INDEX_GET"
	case IndexSet:
		return "INDEX_SET"
	case DictLiteral:
		return "DICT_LITERAL"
	case RegexLiteral:
		return "REGEX_LITERAL"
	case SecureDecl:
		return "SECURE_DECL"
	case TypeCheck:
		return "TYPECHECK"
	case BlockBegin:
		return "BLOCK_BEGIN"
	case BlockEnd:
		return "BLOCK_END"
	}
	return fmt.Sprintf("CODE(0x%02x)", byte(c))
}

// IsExpr reports whether c starts an expression record.
func (c Code) IsExpr() bool {
	switch c {
	case IntObjCreate, InvokeFunc, VarRef, FuncRef, UnaryOperator, BinaryOperator,
		NewObj, MemberGet, MemberSet, MemberInvoke, VarSet, IndexGet, IndexSet,
		DictLiteral, RegexLiteral, TypeCheck:
		return true
	}
	return false
}

// CondKind tags a clause of a conditional chain.
type CondKind byte

const (
	CondIf     CondKind = 0x0
	CondElse   CondKind = 0x1
	CondLoopIf CondKind = 0x2
)

func (k CondKind) String() string {
	switch k {
	case CondIf:
		return "IF"
	case CondElse:
		return "ELSE"
	case CondLoopIf:
		return "LOOPIF"
	}
	return fmt.Sprintf("COND(%d)", byte(k))
}

// LiteralKind tags the payload of an IntObjCreate record.
type LiteralKind byte

const (
	LitString LiteralKind = 0x1
	LitArray  LiteralKind = 0x2
	LitBool   LiteralKind = 0x4
	LitNumber LiteralKind = 0x5
)

type UnaryOp byte

const (
	UnaryPlus  UnaryOp = 0x0
	UnaryMinus UnaryOp = 0x1
	UnaryNot   UnaryOp = 0x2
)

func (op UnaryOp) String() string {
	switch op {
	case UnaryPlus:
		return "+"
	case UnaryMinus:
		return "-"
	case UnaryNot:
		return "!"
	}
	return fmt.Sprintf("unary(%d)", byte(op))
}

type BinaryOp byte

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod
	BinaryEqual
	BinaryNotEqual
	BinaryLess
	BinaryLessEqual
	BinaryGreater
	BinaryGreaterEqual
	BinaryAnd
	BinaryOr
)

func (op BinaryOp) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryMod:
		return "%"
	case BinaryEqual:
		return "=="
	case BinaryNotEqual:
		return "!="
	case BinaryLess:
		return "<"
	case BinaryLessEqual:
		return "<="
	case BinaryGreater:
		return ">"
	case BinaryGreaterEqual:
		return ">="
	case BinaryAnd:
		return "&&"
	case BinaryOr:
		return "||"
	}
	return fmt.Sprintf("binary(%d)", byte(op))
}
