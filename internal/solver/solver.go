// SPDX-License-Identifier: AGPL-3.0

// Package solver wraps an SMT solver (Z3, via github.com/aclements/go-z3)
// behind a small façade: timeout-bounded satisfiability queries, model
// extraction, and an optional cache keyed by the canonical path condition.
package solver

import (
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/aclements/go-z3/z3"

	"github.com/web-ghost-dotcom/cbse/internal/symir"
)

// Kind classifies a Check result.
type Kind int

const (
	Sat Kind = iota
	Unsat
	Unknown
)

// Model maps free-variable names to their concrete assignment. Unused
// variables (those the solver didn't need to bind) are simply absent,
// so unused variables are omitted from reports.
type Model map[string]*big.Int

// Result is the outcome of a Check call.
type Result struct {
	Kind  Kind
	Model Model
}

// Config configures solver timeouts and caching, mirroring
// ExecutionConfig's solver_timeout_ms / solver_timeout_branching_ms /
// cache_solver / solver_threads fields.
type Config struct {
	Timeout       time.Duration
	BranchTimeout time.Duration
	CacheEnabled  bool
	Threads       int
}

// Solver owns one Z3 context per worker thread (never per state). Each
// query pushes a scope, asserts the whole path condition, checks, and pops
// the scope again; no condition stays asserted between queries.
type Solver struct {
	cfg    Config
	ctx    *z3.Context
	solver *z3.Solver
	cache  map[string]Result
	varsBV map[string]z3.BV
	varsBl map[string]z3.Bool
}

// New constructs a Solver with its own Z3 context.
func New(cfg Config) *Solver {
	zcfg := z3.NewContextConfig()
	if cfg.Threads > 0 {
		zcfg.SetUint("threads", uint(cfg.Threads))
	}
	ctx := z3.NewContext(zcfg)
	return &Solver{
		cfg:    cfg,
		ctx:    ctx,
		solver: z3.NewSolver(ctx),
		cache:  map[string]Result{},
		varsBV: map[string]z3.BV{},
		varsBl: map[string]z3.Bool{},
	}
}

// canonicalKey renders the path condition deterministically: order is
// part of the query identity, so unlike expression canonicalization this
// is NOT sorted.
func canonicalKey(conds []*symir.Expr) string {
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = c.String()
	}
	return strings.Join(parts, "&&")
}

// Check asserts the conjunction of conds (in order) and returns Sat/Unsat/
// Unknown with a model on Sat. Timeout uses cfg.Timeout; on timeout the
// result is Unknown, not an error — the caller treats Unknown as
// "proceed as sat, but note incompleteness".
func (s *Solver) Check(conds []*symir.Expr) (Result, error) {
	return s.checkWithTimeout(conds, s.cfg.Timeout)
}

// CheckBranching is the 2-sided JUMPI feasibility check; it uses the
// (typically shorter) branching timeout.
func (s *Solver) CheckBranching(conds []*symir.Expr) (Result, error) {
	return s.checkWithTimeout(conds, s.cfg.BranchTimeout)
}

func (s *Solver) checkWithTimeout(conds []*symir.Expr, timeout time.Duration) (Result, error) {
	key := canonicalKey(conds)
	if s.cfg.CacheEnabled {
		if r, ok := s.cache[key]; ok {
			return r, nil
		}
	}

	s.solver.Push()
	defer s.solver.Pop()

	for _, c := range conds {
		ast, err := s.lowerBool(c)
		if err != nil {
			return Result{}, err
		}
		s.solver.Assert(ast)
	}

	// Z3 has no per-query timeout on this binding's Solver; interrupt the
	// context from a timer instead. An interrupted Check reports an error,
	// which maps to Unknown.
	timer := time.AfterFunc(timeout, s.ctx.Interrupt)
	sat, err := s.solver.Check()
	timer.Stop()

	var result Result
	switch {
	case err != nil:
		result = Result{Kind: Unknown}
	case sat:
		result = Result{Kind: Sat, Model: s.extractModel(conds)}
	default:
		result = Result{Kind: Unsat}
	}

	if s.cfg.CacheEnabled {
		s.cache[key] = result
	}
	return result, nil
}

func (s *Solver) extractModel(conds []*symir.Expr) Model {
	m := s.solver.Model()
	out := Model{}
	seen := map[string]uint{}
	for _, c := range conds {
		for name, width := range c.Vars() {
			seen[name] = width
		}
	}
	for name := range seen {
		bv, ok := s.varsBV[name]
		if !ok {
			continue
		}
		val, ok := m.Eval(bv, true).(z3.BV)
		if !ok {
			continue
		}
		if n, isLit := val.AsBigUnsigned(); isLit {
			out[name] = n
		}
	}
	return out
}

// lowerBV lowers a bitvector-typed Expr into a Z3 BV AST, memoizing free
// variables so repeated references share one declaration.
func (s *Solver) lowerBV(e *symir.Expr) (z3.BV, error) {
	switch e.Op {
	case symir.OpConst:
		return s.ctx.FromBigInt(e.Const, s.ctx.BVSort(int(e.Width))).(z3.BV), nil
	case symir.OpVar:
		if bv, ok := s.varsBV[e.Name]; ok {
			return bv, nil
		}
		bv := s.ctx.BVConst(e.Name, int(e.Width))
		s.varsBV[e.Name] = bv
		return bv, nil
	case symir.OpSha3:
		// Uninterpreted: treated as a fresh opaque variable keyed by its
		// canonical name, so repeated sha3_<len>(data) terms resolve to the
		// same AST, so equal slices hash to equal results.
		if bv, ok := s.varsBV[e.Name]; ok {
			return bv, nil
		}
		bv := s.ctx.BVConst(e.Name, 256)
		s.varsBV[e.Name] = bv
		return bv, nil
	}

	args := make([]z3.BV, 0, len(e.Args))
	for _, a := range e.Args {
		if a.Width == 1 && (a.Op == symir.OpEq || a.Op == symir.OpUlt || a.Op == symir.OpSlt || a.Op == symir.OpBoolVar || a.Op == symir.OpLAnd || a.Op == symir.OpLOr || a.Op == symir.OpLNot) {
			continue // handled as bool operands below (ite condition)
		}
		v, err := s.lowerBV(a)
		if err != nil {
			return z3.BV{}, err
		}
		args = append(args, v)
	}

	switch e.Op {
	case symir.OpAdd:
		return args[0].Add(args[1]), nil
	case symir.OpSub:
		return args[0].Sub(args[1]), nil
	case symir.OpMul:
		return args[0].Mul(args[1]), nil
	case symir.OpUdiv:
		return args[0].UDiv(args[1]), nil
	case symir.OpSdiv:
		return args[0].SDiv(args[1]), nil
	case symir.OpUmod:
		return args[0].URem(args[1]), nil
	case symir.OpSmod:
		return args[0].SRem(args[1]), nil
	case symir.OpAnd:
		return args[0].And(args[1]), nil
	case symir.OpOr:
		return args[0].Or(args[1]), nil
	case symir.OpXor:
		return args[0].Xor(args[1]), nil
	case symir.OpNot:
		return args[0].Not(), nil
	case symir.OpShl:
		return args[0].Lsh(args[1]), nil
	case symir.OpShr:
		return args[0].URsh(args[1]), nil
	case symir.OpSar:
		return args[0].SRsh(args[1]), nil
	case symir.OpConcat:
		return args[0].Concat(args[1]), nil
	case symir.OpExtract:
		v, err := s.lowerBV(e.Args[0])
		if err != nil {
			return z3.BV{}, err
		}
		return v.Extract(int(e.Hi), int(e.Lo)), nil
	case symir.OpZeroExt:
		v, err := s.lowerBV(e.Args[0])
		if err != nil {
			return z3.BV{}, err
		}
		return v.ZeroExtend(int(e.Width - e.Args[0].Width)), nil
	case symir.OpSignExt:
		v, err := s.lowerBV(e.Args[0])
		if err != nil {
			return z3.BV{}, err
		}
		return v.SignExtend(int(e.Width - e.Args[0].Width)), nil
	case symir.OpIte:
		cond, err := s.lowerBool(e.Args[0])
		if err != nil {
			return z3.BV{}, err
		}
		a, err := s.lowerBV(e.Args[1])
		if err != nil {
			return z3.BV{}, err
		}
		b, err := s.lowerBV(e.Args[2])
		if err != nil {
			return z3.BV{}, err
		}
		return cond.IfThenElse(a, b).(z3.BV), nil
	default:
		return z3.BV{}, fmt.Errorf("solver: unsupported bitvector op %q", e.Op)
	}
}

// lowerBool lowers a boolean-typed Expr (path-condition predicates, JUMPI
// conditions, cheatcode assume()) into a Z3 Bool AST.
func (s *Solver) lowerBool(e *symir.Expr) (z3.Bool, error) {
	switch e.Op {
	case symir.OpBoolVar:
		if b, ok := s.varsBl[e.Name]; ok {
			return b, nil
		}
		b := s.ctx.BoolConst(e.Name)
		s.varsBl[e.Name] = b
		return b, nil
	case symir.OpEq:
		a, err := s.lowerBV(e.Args[0])
		if err != nil {
			return z3.Bool{}, err
		}
		b, err := s.lowerBV(e.Args[1])
		if err != nil {
			return z3.Bool{}, err
		}
		return a.Eq(b), nil
	case symir.OpUlt:
		a, err := s.lowerBV(e.Args[0])
		if err != nil {
			return z3.Bool{}, err
		}
		b, err := s.lowerBV(e.Args[1])
		if err != nil {
			return z3.Bool{}, err
		}
		return a.ULT(b), nil
	case symir.OpSlt:
		a, err := s.lowerBV(e.Args[0])
		if err != nil {
			return z3.Bool{}, err
		}
		b, err := s.lowerBV(e.Args[1])
		if err != nil {
			return z3.Bool{}, err
		}
		return a.SLT(b), nil
	case symir.OpLAnd:
		a, err := s.lowerBool(e.Args[0])
		if err != nil {
			return z3.Bool{}, err
		}
		b, err := s.lowerBool(e.Args[1])
		if err != nil {
			return z3.Bool{}, err
		}
		return a.And(b), nil
	case symir.OpLOr:
		a, err := s.lowerBool(e.Args[0])
		if err != nil {
			return z3.Bool{}, err
		}
		b, err := s.lowerBool(e.Args[1])
		if err != nil {
			return z3.Bool{}, err
		}
		return a.Or(b), nil
	case symir.OpLNot:
		a, err := s.lowerBool(e.Args[0])
		if err != nil {
			return z3.Bool{}, err
		}
		return a.Not(), nil
	case symir.OpIte:
		// A boolean-width ite behaves like a boolean mux over a condition.
		cond, err := s.lowerBool(e.Args[0])
		if err != nil {
			return z3.Bool{}, err
		}
		a, err := s.lowerBool(e.Args[1])
		if err != nil {
			return z3.Bool{}, err
		}
		b, err := s.lowerBool(e.Args[2])
		if err != nil {
			return z3.Bool{}, err
		}
		return cond.IfThenElse(a, b).(z3.Bool), nil
	default:
		// Any BV-typed node used in a boolean position (a 1-bit EVM
		// "boolean") is treated as != 0.
		bv, err := s.lowerBV(e)
		if err != nil {
			return z3.Bool{}, err
		}
		zero := s.ctx.FromBigInt(big.NewInt(0), bv.Sort()).(z3.BV)
		return bv.Eq(zero).Not(), nil
	}
}

// DeclaredVars returns the names of every symbolic input variable declared
// so far, sorted for deterministic iteration.
func (s *Solver) DeclaredVars() []string {
	out := make([]string, 0, len(s.varsBV)+len(s.varsBl))
	for n := range s.varsBV {
		out = append(out, n)
	}
	for n := range s.varsBl {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

// Close releases the underlying Z3 context.
func (s *Solver) Close() {
	// go-z3 contexts are finalized by the garbage collector; nothing to
	// do explicitly here, kept for interface symmetry with callers that
	// defer Close().
}
