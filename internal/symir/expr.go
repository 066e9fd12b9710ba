// Package symir is a small symbolic expression IR shared by bitvec and
// bytevec. It exists so bitvec/bytevec can build up symbolic terms without
// depending on a concrete SMT backend; the solver package is the only place
// that ever lowers an Expr into a real Z3 AST.
package symir

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
)

// Op identifies the symbolic operator at a node.
type Op string

const (
	OpVar     Op = "var"
	OpConst   Op = "const"
	OpAdd     Op = "add"
	OpSub     Op = "sub"
	OpMul     Op = "mul"
	OpUdiv    Op = "udiv"
	OpSdiv    Op = "sdiv"
	OpUmod    Op = "umod"
	OpSmod    Op = "smod"
	OpAnd     Op = "and"
	OpOr      Op = "or"
	OpXor     Op = "xor"
	OpNot     Op = "not"
	OpShl     Op = "shl"
	OpShr     Op = "shr"
	OpSar     Op = "sar"
	OpConcat  Op = "concat"
	OpExtract Op = "extract"
	OpZeroExt Op = "zero_extend"
	OpSignExt Op = "sign_extend"
	OpIte     Op = "ite"
	OpEq      Op = "eq"
	OpUlt     Op = "ult"
	OpSlt     Op = "slt"
	OpLAnd    Op = "land"
	OpLOr     Op = "lor"
	OpLNot    Op = "lnot"
	OpBoolVar Op = "boolvar"
	OpSha3    Op = "sha3"
)

// commutative ops are canonicalized by sorting their operand strings, so
// structurally-equal-up-to-reordering terms register to the same keccak id.
var commutative = map[Op]bool{
	OpAdd: true, OpMul: true, OpAnd: true, OpOr: true, OpXor: true,
	OpEq: true, OpLAnd: true, OpLOr: true,
}

// Expr is a node in the symbolic expression tree. Expr values are immutable
// once constructed; canonicalization happens at construction time in the
// New* constructors below so String() is always the canonical form.
type Expr struct {
	Op    Op
	Width uint
	Args  []*Expr

	Name  string   // OpVar / OpBoolVar
	Const *big.Int // OpConst

	Hi, Lo uint // OpExtract
}

func maskTo(v *big.Int, width uint) *big.Int {
	m := new(big.Int).Lsh(big.NewInt(1), width)
	r := new(big.Int).Mod(v, m)
	if r.Sign() < 0 {
		r.Add(r, m)
	}
	return r
}

// NewConst builds a constant leaf of the given width.
func NewConst(v *big.Int, width uint) *Expr {
	return &Expr{Op: OpConst, Width: width, Const: maskTo(v, width)}
}

// NewVar builds a free bitvector variable.
func NewVar(name string, width uint) *Expr {
	return &Expr{Op: OpVar, Width: width, Name: name}
}

// NewBoolVar builds a free boolean variable (width is nominally 1).
func NewBoolVar(name string) *Expr {
	return &Expr{Op: OpBoolVar, Width: 1, Name: name}
}

func sortedArgs(op Op, args []*Expr) []*Expr {
	if !commutative[op] {
		return args
	}
	out := make([]*Expr, len(args))
	copy(out, args)
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// NewBin builds a canonicalized binary operator node.
func NewBin(op Op, width uint, a, b *Expr) *Expr {
	return &Expr{Op: op, Width: width, Args: sortedArgs(op, []*Expr{a, b})}
}

// NewUn builds a unary operator node.
func NewUn(op Op, width uint, a *Expr) *Expr {
	return &Expr{Op: op, Width: width, Args: []*Expr{a}}
}

// NewExtract builds an extract(hi,lo) node.
func NewExtract(hi, lo uint, a *Expr) *Expr {
	return &Expr{Op: OpExtract, Width: hi - lo + 1, Args: []*Expr{a}, Hi: hi, Lo: lo}
}

// NewCast builds a zero/sign-extend node to newWidth.
func NewCast(op Op, newWidth uint, a *Expr) *Expr {
	return &Expr{Op: op, Width: newWidth, Args: []*Expr{a}}
}

// NewIte builds an if-then-else node; cond is a boolean-typed Expr.
func NewIte(cond, a, b *Expr) *Expr {
	return &Expr{Op: OpIte, Width: a.Width, Args: []*Expr{cond, a, b}}
}

// NewCmp builds a comparison node (eq/ult/slt), which is boolean-typed.
func NewCmp(op Op, a, b *Expr) *Expr {
	return &Expr{Op: op, Width: 1, Args: sortedArgs(op, []*Expr{a, b})}
}

// NewBoolOp builds a boolean connective (land/lor/lnot).
func NewBoolOp(op Op, args ...*Expr) *Expr {
	return &Expr{Op: op, Width: 1, Args: sortedArgs(op, args)}
}

// NewSha3 builds an uninterpreted sha3_<len>(data) node over a concatenation
// of byte-producing sub-expressions; data is pre-rendered as its canonical
// string by the caller (bytevec), since memory slices aren't Expr trees.
func NewSha3(lenBytes int, dataCanon string) *Expr {
	return &Expr{Op: OpSha3, Width: 256, Name: fmt.Sprintf("sha3_%d(%s)", lenBytes, dataCanon)}
}

// String renders the canonical textual form of the expression. Structural
// equality of two expressions is defined as String() equality.
func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Op {
	case OpConst:
		return fmt.Sprintf("0x%x:%d", e.Const, e.Width)
	case OpVar, OpBoolVar:
		return e.Name
	case OpSha3:
		return e.Name
	case OpExtract:
		return fmt.Sprintf("extract(%d,%d,%s)", e.Hi, e.Lo, e.Args[0].String())
	case OpZeroExt, OpSignExt:
		return fmt.Sprintf("%s(%d,%s)", e.Op, e.Width, e.Args[0].String())
	case OpNot, OpLNot:
		return fmt.Sprintf("%s(%s)", e.Op, e.Args[0].String())
	case OpIte:
		return fmt.Sprintf("ite(%s,%s,%s)", e.Args[0].String(), e.Args[1].String(), e.Args[2].String())
	default:
		parts := make([]string, len(e.Args))
		for i, a := range e.Args {
			parts[i] = a.String()
		}
		return fmt.Sprintf("%s(%s)", e.Op, strings.Join(parts, ","))
	}
}

// Vars returns the set of free variable names referenced transitively.
func (e *Expr) Vars() map[string]uint {
	out := map[string]uint{}
	var walk func(*Expr)
	walk = func(n *Expr) {
		if n == nil {
			return
		}
		if n.Op == OpVar || n.Op == OpBoolVar {
			out[n.Name] = n.Width
		}
		for _, a := range n.Args {
			walk(a)
		}
	}
	walk(e)
	return out
}
