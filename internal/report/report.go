// SPDX-License-Identifier: AGPL-3.0

// Package report defines TestResult and MainResult, the per-test and
// per-run verdict shapes emitted as the JSON result document, matching
// halmos's dataclasses of the same name.
package report

// Exitcode enumerates the driver's process exit codes.
type Exitcode int

const (
	Pass Exitcode = iota
	Counterexample
	Timeout
	Stuck
	RevertAll
	Exception
)

// NumPaths is (total, success, blocked).
type NumPaths struct {
	Total   int `json:"total"`
	Success int `json:"success"`
	Blocked int `json:"blocked"`
}

// TestResult is the per-test-function outcome.
type TestResult struct {
	Name            string    `json:"name"`
	Exitcode        Exitcode  `json:"exitcode"`
	NumModels       *int      `json:"num_models,omitempty"`
	NumPaths        *NumPaths `json:"num_paths,omitempty"`
	NumBoundedLoops *int      `json:"num_bounded_loops,omitempty"`
}

// Passed reports whether the test's exitcode is Pass.
func (t *TestResult) Passed() bool { return t.Exitcode == Pass }

// MainResult aggregates across every test in the artifact.
type MainResult struct {
	JobID        string       `json:"job_id"`
	Exitcode     Exitcode     `json:"exitcode"`
	TotalPassed  int          `json:"total_passed"`
	TotalFailed  int          `json:"total_failed"`
	TotalFound   int          `json:"total_found"`
	DurationSecs float64      `json:"duration_secs"`
	Tests        []TestResult `json:"tests"`
}

// Add folds a single TestResult into the aggregate, matching the
// precedence: any Exception outranks Timeout/Stuck/RevertAll which
// outranks Counterexample which outranks Pass.
func (m *MainResult) Add(t TestResult) {
	m.Tests = append(m.Tests, t)
	if t.Passed() {
		m.TotalPassed++
	} else {
		m.TotalFailed++
		if t.NumModels != nil {
			m.TotalFound += *t.NumModels
		}
	}
	if exitcodeSeverity(t.Exitcode) > exitcodeSeverity(m.Exitcode) {
		m.Exitcode = t.Exitcode
	}
}

func exitcodeSeverity(e Exitcode) int {
	switch e {
	case Pass:
		return 0
	case Counterexample:
		return 1
	case Timeout:
		return 2
	case Stuck:
		return 3
	case RevertAll:
		return 4
	case Exception:
		return 5
	default:
		return 0
	}
}
