// Copyright 2017 by the Authors
// This file is part of the go-core library.
//
// The go-core library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The go-core library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the go-core library. If not, see <http://www.gnu.org/licenses/>.

// Package cbselog is the ambient logging layer: a small leveled logger
// using go-stack/stack for call-frame context and mattn/go-colorable +
// fatih/color for terminal output, plus the engine's warning taxonomy
// (stable error codes that link to documentation, and per-run
// deduplication by textual identity).
package cbselog

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/go-stack/stack"
	"github.com/mattn/go-colorable"
)

// ErrorCode is a stable warning identifier, documented at WarningsBaseURL.
type ErrorCode string

const WarningsBaseURL = "https://github.com/a16z/halmos/wiki/warnings"

const (
	ParsingError          ErrorCode = "parsing-error"
	InternalError         ErrorCode = "internal-error"
	LibraryPlaceholder    ErrorCode = "library-placeholder"
	CounterexampleInvalid ErrorCode = "counterexample-invalid"
	CounterexampleUnknown ErrorCode = "counterexample-unknown"
	UnsupportedOpcode     ErrorCode = "unsupported-opcode"
	RevertAll             ErrorCode = "revert-all"
	LoopBound             ErrorCode = "loop-bound"
)

// URL returns the documentation link for an error code.
func (c ErrorCode) URL() string { return fmt.Sprintf("%s#%s", WarningsBaseURL, string(c)) }

var (
	mu      sync.Mutex
	seen    = map[string]bool{}
	stdout  = colorable.NewColorableStdout()
	stderr  = colorable.NewColorableStderr()
	Verbose = 0
)

func isLogged(msg string) bool {
	mu.Lock()
	defer mu.Unlock()
	return seen[msg]
}

func markLogged(msg string) {
	mu.Lock()
	seen[msg] = true
	mu.Unlock()
}

// ClearLogged resets the per-run dedup set (used between tests).
func ClearLogged() {
	mu.Lock()
	seen = map[string]bool{}
	mu.Unlock()
}

func callerFrame() string {
	cs := stack.Trace().TrimRuntime()
	if len(cs) > 2 {
		return fmt.Sprintf("%+v", cs[2])
	}
	return ""
}

// Debug logs a dimmed diagnostic line, only shown when Verbose > 0.
func Debug(allowDuplicate bool, format string, args ...interface{}) {
	if Verbose <= 0 {
		return
	}
	emit(stderr, color.New(color.Faint), allowDuplicate, format, args...)
}

// Info logs a plain informational line.
func Info(allowDuplicate bool, format string, args ...interface{}) {
	emit(stdout, color.New(color.Reset), allowDuplicate, format, args...)
}

// Warn logs a yellow warning line.
func Warn(allowDuplicate bool, format string, args ...interface{}) {
	emit(stderr, color.New(color.FgYellow), allowDuplicate, format, args...)
}

// Error logs a red error line.
func Error(allowDuplicate bool, format string, args ...interface{}) {
	emit(stderr, color.New(color.FgRed), allowDuplicate, format, args...)
}

// WarnCode logs a warning tagged with a stable error code and its
// documentation link, deduplicated by the full rendered message unless
// allowDuplicate is set.
func WarnCode(code ErrorCode, allowDuplicate bool, msg string) {
	full := fmt.Sprintf("%s\n(see %s)", msg, code.URL())
	Warn(allowDuplicate, "%s", full)
}

func emit(w io.Writer, c *color.Color, allowDuplicate bool, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !allowDuplicate && isLogged(msg) {
		return
	}
	fmt.Fprintln(w, c.Sprint(msg))
	if !allowDuplicate {
		markLogged(msg)
	}
}

// DebugFrame logs a debug message tagged with the immediate caller's frame,
// for --print-steps-style diagnostics.
func DebugFrame(format string, args ...interface{}) {
	if Verbose <= 0 {
		return
	}
	Debug(true, "%s [%s]", fmt.Sprintf(format, args...), callerFrame())
}
