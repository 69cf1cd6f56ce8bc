// Package testcenter provides public constants for tools that run the
// testcenter CLI, such as CI wrappers checking its exit status.
package testcenter

// Exit codes returned by the testcenter CLI.
const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess = 0

	// ExitFailure indicates a runtime failure: unreadable input, a missing
	// run, or failing tests under --fail-on-failures.
	ExitFailure = 1

	// ExitConfigError indicates an invalid config file or command line.
	ExitConfigError = 2

	// ExitEnvError indicates an environment error such as a locked or
	// unwritable history store.
	ExitEnvError = 3
)
