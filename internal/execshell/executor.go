package execshell

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

const (
	loggerNotConfiguredMessageConstant        = "logger not configured"
	commandRunnerNotConfiguredMessageConstant = "command runner not configured"
	commandStartedMessageConstant             = "Running command"
	commandCompletedMessageConstant           = "Completed command"
	commandFailedMessageConstant              = "Command failed"
	commandExecutionFailedMessageConstant     = "Command could not be executed"
	logFieldCommandConstant                   = "command"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "standard_error"
)

var (
	// ErrLoggerNotConfigured indicates the executor was constructed without a logger.
	ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)
	// ErrCommandRunnerNotConfigured indicates the executor was constructed without a runner.
	ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)
)

// CommandRunner represents the ability to run shell commands.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ShellExecutor coordinates command execution with structured lifecycle logging.
type ShellExecutor struct {
	logger        *zap.Logger
	commandRunner CommandRunner
}

// NewShellExecutor constructs a ShellExecutor with the provided collaborators.
func NewShellExecutor(logger *zap.Logger, commandRunner CommandRunner) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if commandRunner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	return &ShellExecutor{logger: logger, commandRunner: commandRunner}, nil
}

// ExecuteGit runs git with the provided invocation details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	gitCommand := ShellCommand{Name: CommandGit, Details: details}
	return executor.Execute(executionContext, gitCommand)
}

// Execute runs the supplied command, logging its lifecycle and translating
// non-zero exits into CommandFailedError values.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	executor.logger.Info(commandStartedMessageConstant, zap.String(logFieldCommandConstant, command.Label()))

	executionResult, runError := executor.commandRunner.Run(executionContext, command)
	if runError != nil {
		executionFailure := CommandExecutionError{Command: command, Cause: runError}
		executor.logger.Error(
			commandExecutionFailedMessageConstant,
			zap.String(logFieldCommandConstant, command.Label()),
			zap.Error(runError),
		)
		return ExecutionResult{}, executionFailure
	}

	if executionResult.ExitCode != 0 {
		commandFailure := CommandFailedError{Command: command, Result: executionResult}
		executor.logger.Warn(
			commandFailedMessageConstant,
			zap.String(logFieldCommandConstant, command.Label()),
			zap.Int(logFieldExitCodeConstant, executionResult.ExitCode),
			zap.String(logFieldStandardErrorConstant, executionResult.StandardError),
		)
		return ExecutionResult{}, commandFailure
	}

	executor.logger.Info(commandCompletedMessageConstant, zap.String(logFieldCommandConstant, command.Label()))
	return executionResult, nil
}
