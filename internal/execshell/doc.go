// Package execshell provides structured helpers for invoking external tools.
//
// It wraps os/exec with logging via ShellExecutor, exposes OSCommandRunner for
// default process execution, and defines RetryingGitExecutor, which re-runs
// failed git invocations with exponential backoff.
package execshell
