// Package shared provides common utilities and test helpers used across the
// codebase. It holds functionality that doesn't belong to any specific domain
// or architectural layer.
//
// # Test Utilities
//
// The testutil subpackage provides:
//
//   - A buffered slog handler for asserting on log output
//   - CSV fixtures for raw and cleaned school datasets
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    logger, logs := testutil.NewTestLogger(t)
//	    dataDir := testutil.WriteCleanDataset(t, t.TempDir())
//	    // ...
//	    testutil.AssertNoErrors(t, logs)
//	}
package shared
