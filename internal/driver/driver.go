// SPDX-License-Identifier: AGPL-3.0

// Package driver runs a single test function to exhaustion and folds its
// terminal states into a report.TestResult, then folds every test's result
// into a report.MainResult. It is the one package that
// wires together worklist, interpreter, solver, cheatcode and keccak into
// an end-to-end run; every other package in this module is a collaborator
// it drives.
package driver

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/sha3"

	"github.com/web-ghost-dotcom/cbse/internal/artifact"
	"github.com/web-ghost-dotcom/cbse/internal/bitvec"
	"github.com/web-ghost-dotcom/cbse/internal/bytevec"
	"github.com/web-ghost-dotcom/cbse/internal/cbselog"
	"github.com/web-ghost-dotcom/cbse/internal/cheatcode"
	"github.com/web-ghost-dotcom/cbse/internal/config"
	"github.com/web-ghost-dotcom/cbse/internal/evmerrors"
	"github.com/web-ghost-dotcom/cbse/internal/interpreter"
	"github.com/web-ghost-dotcom/cbse/internal/keccak"
	"github.com/web-ghost-dotcom/cbse/internal/report"
	"github.com/web-ghost-dotcom/cbse/internal/solver"
	"github.com/web-ghost-dotcom/cbse/internal/state"
	"github.com/web-ghost-dotcom/cbse/internal/symir"
	"github.com/web-ghost-dotcom/cbse/internal/worklist"
)

// testUnderAddress is the fixed account address every contract under test
// is deployed at; since this engine never models a full deployment
// transaction, one stable address stands in for "the contract under test"
// the same way forge-std's DSTest harness always runs against the test
// contract's own address.
var testUnderAddress = state.Address160{0xbe, 0xef}

// defaultCallDataWords is how many symbolic 256-bit words follow the
// 4-byte selector when an artifact doesn't otherwise bound calldata via
// ExecutionConfig.Width; four words comfortably covers the common
// fuzz-target shape (an address, a couple of uints, a bool) without
// ballooning the solver's free-variable count for parameterless tests.
const defaultCallDataWords = 4

// panicSelectorBytes is the first 4 bytes of keccak256("Panic(uint256)"),
// the selector solc-generated assertion failures revert with, rendered
// once as a byte slice for returndata comparison.
var panicSelectorBytes = []byte{0x4E, 0x48, 0x7B, 0x71}

// Deadline bounds the wall-clock time a single test may run before the
// remaining worklist is discarded and the result is marked Timeout.
type Deadline struct {
	Duration time.Duration
}

func (d Deadline) deadlineAt(start time.Time) time.Time {
	if d.Duration <= 0 {
		return time.Time{}
	}
	return start.Add(d.Duration)
}

// pathOutcome classifies one terminal ExecutionState for TestResult
// aggregation.
type pathOutcome int

const (
	outcomeSuccess pathOutcome = iota
	outcomeBlocked
	outcomeCounterexample
)

func selectorOf(name string) [4]byte {
	if strings.HasPrefix(name, "0x") && len(strings.TrimPrefix(name, "0x")) == 8 {
		var out [4]byte
		raw := strings.TrimPrefix(name, "0x")
		for i := 0; i < 4; i++ {
			var b byte
			fmt.Sscanf(raw[i*2:i*2+2], "%02x", &b)
			out[i] = b
		}
		return out
	}
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(name))
	sum := h.Sum(nil)
	var out [4]byte
	copy(out[:], sum[:4])
	return out
}

// buildCalldata renders the symbolic calldata for a test invocation: the
// concrete 4-byte selector followed by numWords fresh symbolic 256-bit
// words, one free variable per word so the solver's model decodes
// directly into argument values.
func buildCalldata(testName string, selector [4]byte, numWords int) bytevec.ByteVec {
	cd := bytevec.FromBytes(selector[:])
	for i := 0; i < numWords; i++ {
		name := fmt.Sprintf("calldata_%s_arg%d", sanitizeName(testName), i)
		v := bitvec.FromExpr(symir.NewVar(name, 256))
		cd = cd.WriteWord(uint64(4+i*32), v)
	}
	return cd
}

func sanitizeName(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Env bundles the per-run settings a Driver needs beyond a single
// contract: the execution config and the artifact's named bytecodes for
// cheatcode getCode(). Inter-contract CALLs resolve through
// Driver.codeResolver, not through Contracts.
type Env struct {
	Config    config.ExecutionConfig
	Contracts map[string][]byte // name -> runtime bytecode, for cheatcode getCode
}

// Driver runs every test_function of one ContractData against its
// bytecode.
type Driver struct {
	env      Env
	contract artifact.ContractData
	code     []byte
}

// New returns a Driver for one contract.
func New(env Env, contract artifact.ContractData, code []byte) *Driver {
	return &Driver{env: env, contract: contract, code: code}
}

func (d *Driver) newSolver() *solver.Solver {
	c := d.env.Config
	cfg := solver.Config{
		Timeout:       time.Duration(c.SolverTimeoutMs) * time.Millisecond,
		BranchTimeout: time.Duration(c.SolverTimeoutBranching) * time.Millisecond,
		CacheEnabled:  c.CacheSolver,
		Threads:       c.SolverThreads,
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.BranchTimeout <= 0 {
		cfg.BranchTimeout = time.Second
	}
	return solver.New(cfg)
}

func (d *Driver) codeResolver() func(state.Address160) ([]byte, bool) {
	return func(addr state.Address160) ([]byte, bool) {
		if addr == testUnderAddress {
			return d.code, true
		}
		return nil, false
	}
}

// freshWorld seeds an empty world with the contract under test deployed at
// testUnderAddress and a generous symbolic-testable balance.
func (d *Driver) freshWorld() *state.World {
	w := state.NewWorld()
	acc := state.NewAccount(testUnderAddress)
	acc.Code = bytevec.FromBytes(d.code)
	acc.Balance = bitvec.FromBigInt(maxEthMinusOne(), 256)
	w.Set(acc)
	return w
}

// maxEthMinusOne returns 2^128 - 1, the largest balance an account is
// seeded with; 2^128 itself is the smallest value never admitted.
func maxEthMinusOne() *big.Int {
	max := new(big.Int).Lsh(big.NewInt(1), 128)
	return max.Sub(max, big.NewInt(1))
}

// RunSetUp executes setUp() (if the contract exposes one) and returns the
// resulting world state plus whether every path reverted, which the
// caller reports as revert-all.
func (d *Driver) RunSetUp() (world *state.World, allReverted bool, ranAny bool) {
	hasSetUp := false
	for _, fn := range d.contract.TestFunctions {
		if fn == "setUp()" || fn == "setUp" {
			hasSetUp = true
		}
	}
	if !hasSetUp {
		return d.freshWorld(), false, false
	}

	sv := d.newSolver()
	reg := keccak.New()
	selector := selectorOf("setUp()")
	cd := bytevec.FromBytes(selector[:])

	world := d.freshWorld()
	init := state.New(world, cd, state.CallFrame{Caller: state.Address160{0x1}, Callee: testUnderAddress, Value: bitvec.FromU64(0, 256)}, 30_000_000, reg)
	init.Code = bytevec.FromBytes(d.code)

	cheat := cheatcode.NewDispatcher(d.env.Contracts)
	wl := worklist.New[*state.ExecutionState]()
	env := &interpreter.Env{
		Solver:        sv,
		Config:        d.env.Config,
		Cheat:         cheat,
		Push:          func(s *state.ExecutionState) { wl.Push(s) },
		CodeByAddress: d.codeResolver(),
	}

	wl.Push(init)
	anySuccess := false
	ranAny = true
	for {
		s, ok := wl.Pop()
		if !ok {
			break
		}
		if err := interpreter.Drive(s, env); err != nil {
			cbselog.WarnCode(cbselog.InternalError, true, err.Error())
			continue
		}
		wl.MarkCompleted()
		if s.Term.Kind == state.TerminalSuccess {
			anySuccess = true
			world = s.World
		}
	}
	return world, !anySuccess, ranAny
}

// RunTest executes one test function to exhaustion from initialWorld and
// returns its aggregated report.TestResult.
func (d *Driver) RunTest(name string, initialWorld *state.World, deadline Deadline) report.TestResult {
	sv := d.newSolver()
	reg := keccak.New()
	sel := selectorOf(name)
	numWords := d.env.Config.Width
	if numWords <= 0 {
		numWords = defaultCallDataWords
	}
	cd := buildCalldata(name, sel, numWords)

	world := initialWorld.Snapshot()
	init := state.New(world, cd, state.CallFrame{Caller: state.Address160{0x1}, Callee: testUnderAddress, Value: bitvec.FromU64(0, 256)}, 30_000_000, reg)
	init.Code = bytevec.FromBytes(d.code)

	cheat := cheatcode.NewDispatcher(d.env.Contracts)
	wl := worklist.New[*state.ExecutionState]()
	env := &interpreter.Env{
		Solver:        sv,
		Config:        d.env.Config,
		Cheat:         cheat,
		Push:          func(s *state.ExecutionState) { wl.Push(s) },
		CodeByAddress: d.codeResolver(),
	}

	isTestFail := strings.HasPrefix(name, "testFail")

	var total, success, blocked, models, loopBounded int
	timedOut := false
	start := time.Now()
	until := deadline.deadlineAt(start)

	wl.Push(init)
	for {
		if !until.IsZero() && time.Now().After(until) {
			timedOut = true
			wl.Clear()
			break
		}
		s, ok := wl.Pop()
		if !ok {
			break
		}
		if err := interpreter.Drive(s, env); err != nil {
			cbselog.WarnCode(cbselog.InternalError, true, err.Error())
			continue
		}
		wl.MarkCompleted()
		total++

		switch s.Term.Kind {
		case state.DroppedLoopBound:
			blocked++
			loopBounded++
		case state.DroppedInfeasible, state.DroppedTimeout:
			blocked++
		case state.TerminalSuccess:
			success++
		case state.TerminalRevert:
			switch outcomeOfRevert(s, isTestFail, sv) {
			case outcomeSuccess:
				success++
			case outcomeCounterexample:
				models++
				// early_exit: the first counterexample settles the verdict;
				// drop the remaining worklist.
				if d.env.Config.EarlyExit {
					wl.Clear()
				}
			default:
				blocked++
			}
		case state.TerminalHalt:
			if pe, ok := s.Term.Err.(*evmerrors.PathEnding); ok && pe.Kind == evmerrors.FailCheatcode {
				models++
				if d.env.Config.EarlyExit {
					wl.Clear()
				}
				continue
			}
			// Every other exceptional halt ends the path without being a
			// counterexample or a clean pass; it's neither success nor a
			// recognized blocked-path reason, so it's tallied in total
			// only, surfaced via the unsupported-opcode/parsing-error
			// warning classes where applicable.
			if eh, ok := s.Term.Err.(*evmerrors.ExceptionalHalt); ok && eh.Kind == evmerrors.InvalidOpcode {
				cbselog.WarnCode(cbselog.UnsupportedOpcode, false, eh.Error())
			}
		}
	}

	tr := report.TestResult{Name: name}
	tr.NumPaths = &report.NumPaths{Total: total, Success: success, Blocked: blocked}
	if loopBounded > 0 {
		lb := loopBounded
		tr.NumBoundedLoops = &lb
	}
	if models > 0 {
		m := models
		tr.NumModels = &m
	}

	switch {
	case timedOut:
		tr.Exitcode = report.Timeout
	case models > 0:
		tr.Exitcode = report.Counterexample
	case total == 0:
		// A testFail with zero explored paths passes vacuously (there is no
		// path that failed to revert); any other test with zero paths
		// (every branch pruned before a terminal, e.g. by an immediately
		// infeasible precondition) is also not a failure — there is
		// nothing to report a counterexample against.
		tr.Exitcode = report.Pass
	case isTestFail && success == 0 && blocked == total:
		// testFail demanded a revert and got only non-revert drops
		// (loop-bound/infeasible) with no observed revert at all.
		tr.Exitcode = report.Stuck
	default:
		tr.Exitcode = report.Pass
	}
	return tr
}

// outcomeOfRevert classifies a REVERT terminal: Panic(uint256)
// ⇒ counterexample; plain revert in a testFail test ⇒ pass (success);
// plain revert otherwise ⇒ blocked (a require()-style precondition guard,
// not a reported failure).
func outcomeOfRevert(s *state.ExecutionState, isTestFail bool, sv *solver.Solver) pathOutcome {
	data, _ := s.Term.ReturnData.ConcreteBytes()
	if len(data) >= 4 && string(data[:4]) == string(panicSelectorBytes) {
		verifyCounterexample(s, sv)
		return outcomeCounterexample
	}
	if isTestFail {
		return outcomeSuccess
	}
	return outcomeBlocked
}

// verifyCounterexample re-checks the path condition's satisfiability and
// logs a counterexample-unknown warning if the solver could not confirm
// it. The path is not re-executed concretely.
func verifyCounterexample(s *state.ExecutionState, sv *solver.Solver) {
	res, err := sv.Check(s.PathCond)
	if err != nil {
		cbselog.WarnCode(cbselog.InternalError, true, err.Error())
		return
	}
	if res.Kind == solver.Unknown {
		cbselog.WarnCode(cbselog.CounterexampleUnknown, false, "solver returned unknown for a counterexample path")
	}
}

// RunArtifact drives every contract/test in a in a JobArtifact and returns
// the aggregated MainResult.
func RunArtifact(art *artifact.JobArtifact, codeByContract map[string][]byte) report.MainResult {
	start := time.Now()
	main := report.MainResult{JobID: uuid.New().String()}

	contracts := map[string][]byte{}
	for _, c := range art.Contracts {
		if code, ok := codeByContract[c.Name]; ok {
			contracts[c.Name] = code
		}
	}

	deadline := Deadline{}

	for _, c := range art.Contracts {
		code, ok := codeByContract[c.Name]
		if !ok {
			cbselog.WarnCode(cbselog.ParsingError, false, "no bytecode resolved for contract "+c.Name)
			continue
		}
		env := Env{Config: art.Config, Contracts: contracts}
		d := New(env, c, code)

		setupWorld, allReverted, ranSetUp := d.RunSetUp()
		for _, fn := range c.TestFunctions {
			if fn == "setUp()" || fn == "setUp" {
				continue
			}
			if ranSetUp && allReverted {
				tr := report.TestResult{Name: fn, Exitcode: report.RevertAll}
				cbselog.WarnCode(cbselog.RevertAll, true, "setUp() reverted on every path for "+c.Name)
				main.Add(tr)
				continue
			}
			tr := d.RunTest(fn, setupWorld, deadline)
			main.Add(tr)
		}
	}

	main.DurationSecs = time.Since(start).Seconds()
	return main
}
