package execshell

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

const (
	defaultRetryAttemptCountConstant       = 3
	defaultRetryBaseDelayConstant          = time.Second
	gitExecutorNotConfiguredMessageConst   = "git executor not configured"
	retryExhaustedMessageTemplateConstant  = "command failed after %d attempts: %s"
	retryScheduledMessageConstant          = "Retrying command after backoff"
	logFieldAttemptConstant                = "attempt"
	logFieldAttemptLimitConstant           = "attempt_limit"
	logFieldBackoffDelayConstant           = "backoff_delay"
	nonPositiveAttemptCountMessageConstant = "retry attempt count must be positive"
)

var (
	// ErrGitExecutorNotConfigured indicates the retry wrapper was constructed without a delegate.
	ErrGitExecutorNotConfigured = errors.New(gitExecutorNotConfiguredMessageConst)
	// ErrNonPositiveAttemptCount indicates an invalid retry bound.
	ErrNonPositiveAttemptCount = errors.New(nonPositiveAttemptCountMessageConstant)
)

// GitExecutor captures the subset of ShellExecutor used by retrying callers.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error)
}

// SleepFunc pauses the calling goroutine for the supplied duration.
type SleepFunc func(pauseDuration time.Duration)

// RetryExhaustedError reports a command that kept failing through every allowed attempt.
type RetryExhaustedError struct {
	CommandLabel string
	AttemptCount int
	Cause        error
}

// Error names the failed command and the number of attempts.
func (exhausted RetryExhaustedError) Error() string {
	return fmt.Sprintf(retryExhaustedMessageTemplateConstant, exhausted.AttemptCount, exhausted.CommandLabel)
}

// Unwrap exposes the final attempt's failure.
func (exhausted RetryExhaustedError) Unwrap() error {
	return exhausted.Cause
}

// RetryingGitExecutor re-runs failed git commands with exponential backoff.
//
// Only command failures (non-zero exit codes) are retried; execution errors such
// as a missing git binary or a cancelled context surface immediately.
type RetryingGitExecutor struct {
	delegate     GitExecutor
	logger       *zap.Logger
	attemptCount int
	baseDelay    time.Duration
	sleep        SleepFunc
}

// NewRetryingGitExecutor wraps the supplied executor with the default retry policy.
func NewRetryingGitExecutor(delegate GitExecutor, logger *zap.Logger) (*RetryingGitExecutor, error) {
	return NewRetryingGitExecutorWithPolicy(delegate, logger, defaultRetryAttemptCountConstant, defaultRetryBaseDelayConstant, time.Sleep)
}

// NewRetryingGitExecutorWithPolicy wraps the supplied executor with an explicit retry policy.
func NewRetryingGitExecutorWithPolicy(delegate GitExecutor, logger *zap.Logger, attemptCount int, baseDelay time.Duration, sleep SleepFunc) (*RetryingGitExecutor, error) {
	if delegate == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if attemptCount <= 0 {
		return nil, ErrNonPositiveAttemptCount
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if sleep == nil {
		sleep = time.Sleep
	}

	return &RetryingGitExecutor{
		delegate:     delegate,
		logger:       logger,
		attemptCount: attemptCount,
		baseDelay:    baseDelay,
		sleep:        sleep,
	}, nil
}

// ExecuteGit runs the command, retrying non-zero exits up to the configured bound.
//
// Backoff delays double per attempt: baseDelay, 2*baseDelay, 4*baseDelay, and so
// on, applied between attempts but not after the final one.
func (executor *RetryingGitExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	commandLabel := ShellCommand{Name: CommandGit, Details: details}.Label()

	var lastFailure error
	for attemptIndex := 0; attemptIndex < executor.attemptCount; attemptIndex++ {
		executionResult, executionError := executor.delegate.ExecuteGit(executionContext, details)
		if executionError == nil {
			return executionResult, nil
		}

		var commandFailure CommandFailedError
		if !errors.As(executionError, &commandFailure) {
			return ExecutionResult{}, executionError
		}

		lastFailure = executionError

		if attemptIndex == executor.attemptCount-1 {
			break
		}

		backoffDelay := executor.baseDelay << uint(attemptIndex)
		executor.logger.Warn(
			retryScheduledMessageConstant,
			zap.String(logFieldCommandConstant, commandLabel),
			zap.Int(logFieldAttemptConstant, attemptIndex+1),
			zap.Int(logFieldAttemptLimitConstant, executor.attemptCount),
			zap.Duration(logFieldBackoffDelayConstant, backoffDelay),
		)
		executor.sleep(backoffDelay)
	}

	return ExecutionResult{}, RetryExhaustedError{
		CommandLabel: commandLabel,
		AttemptCount: executor.attemptCount,
		Cause:        lastFailure,
	}
}
