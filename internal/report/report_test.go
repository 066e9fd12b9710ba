package report

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAddTracksPassFail(t *testing.T) {
	var m MainResult
	m.Add(TestResult{Name: "testA", Exitcode: Pass})
	m.Add(TestResult{Name: "testB", Exitcode: Counterexample})

	require.Equal(t, 1, m.TotalPassed)
	require.Equal(t, 1, m.TotalFailed)
	require.Len(t, m.Tests, 2)
}

func TestAddSeverityOrdering(t *testing.T) {
	var m MainResult
	m.Add(TestResult{Name: "a", Exitcode: Pass})
	require.Equal(t, Pass, m.Exitcode)

	m.Add(TestResult{Name: "b", Exitcode: Stuck})
	require.Equal(t, Stuck, m.Exitcode)

	m.Add(TestResult{Name: "c", Exitcode: Counterexample})
	require.Equal(t, Stuck, m.Exitcode, "a lower-severity result must not downgrade the aggregate")

	m.Add(TestResult{Name: "d", Exitcode: Exception})
	require.Equal(t, Exception, m.Exitcode)
}

func TestAddAccumulatesModelCount(t *testing.T) {
	var m MainResult
	n := 3
	m.Add(TestResult{Name: "a", Exitcode: Counterexample, NumModels: &n})
	require.Equal(t, 3, m.TotalFound)
}

func TestTestResultPassed(t *testing.T) {
	r := TestResult{Exitcode: Pass}
	require.True(t, r.Passed())
	r.Exitcode = Timeout
	require.False(t, r.Passed())
}
