// SPDX-License-Identifier: AGPL-3.0

// Package config defines ExecutionConfig, the populated configuration
// record supplied by the CLI/config-file layer and carried verbatim in
// the JSON job artifact.
package config

// UnknownCallMode controls how an external CALL to a target the engine
// can't resolve symbolically is handled.
type UnknownCallMode string

const (
	UnknownCallsNone    UnknownCallMode = "none"
	UnknownCallsUnknown UnknownCallMode = "unknown"
	UnknownCallsAll     UnknownCallMode = "all"
)

// ExecutionConfig is the full set of engine knobs carried in the JSON
// artifact.
type ExecutionConfig struct {
	Verbosity int `json:"verbosity"`

	SolverTimeoutMs        int64  `json:"solver_timeout_ms"`
	SolverTimeoutBranching int64  `json:"solver_timeout_branching_ms"`
	LoopBound              int    `json:"loop_bound"`
	Depth                  int    `json:"depth"`
	Width                  int    `json:"width"`
	StorageLayout          string `json:"storage_layout,omitempty"`

	Debug              bool   `json:"debug"`
	DebugConfig        bool   `json:"debug_config"`
	PrintSteps         bool   `json:"print_steps"`
	PrintMem           bool   `json:"print_mem"`
	PrintStates        bool   `json:"print_states"`
	PrintSuccessStates bool   `json:"print_success_states"`
	PrintFailedStates  bool   `json:"print_failed_states"`
	PrintBlockedStates bool   `json:"print_blocked_states"`
	PrintSetupStates   bool   `json:"print_setup_states"`
	PrintFullModel     bool   `json:"print_full_model"`
	Statistics         bool   `json:"statistics"`
	DumpSMTQueries     bool   `json:"dump_smt_queries"`
	DumpSMTDirectory   string `json:"dump_smt_directory,omitempty"`

	Solver          string `json:"solver"`
	SMTExpByConst   int    `json:"smt_exp_by_const"`
	SolverMaxMemory int    `json:"solver_max_memory"`
	SolverCommand   string `json:"solver_command,omitempty"`
	SolverThreads   int    `json:"solver_threads,omitempty"`
	CacheSolver     bool   `json:"cache_solver"`

	SymbolicJump              bool            `json:"symbolic_jump"`
	EarlyExit                 bool            `json:"early_exit"`
	UninterpretedUnknownCalls UnknownCallMode `json:"uninterpreted_unknown_calls"`
	ReturnSizeOfUnknownCalls  int             `json:"return_size_of_unknown_calls"`
}

// Default returns the engine's default configuration.
func Default() ExecutionConfig {
	return ExecutionConfig{
		Verbosity:                 0,
		SolverTimeoutMs:           30_000,
		SolverTimeoutBranching:    1_000,
		LoopBound:                 2,
		Solver:                    "z3",
		SMTExpByConst:             2,
		CacheSolver:               false,
		UninterpretedUnknownCalls: UnknownCallsAll,
		ReturnSizeOfUnknownCalls:  32,
	}
}
