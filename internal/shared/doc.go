// Package shared holds helpers used by more than one package of the
// bhavcopy report generator.
//
// The testutil subpackage provides:
//
//   - a buffered slog handler for asserting on component logs
//   - bhavcopy and client registry fixtures written to t.TempDir()
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    input := testutil.WriteBhavcopy(t, testutil.SampleRowsA)
//	    // ...
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared
