package execshell

import (
	"fmt"
	"strings"
)

const (
	gitCommandNameStringConstant             = "git"
	commandFailedMessageTemplateConstant     = "%s failed with exit code %d%s"
	commandExecutionMessageTemplateConstant  = "%s failed: %s"
	commandLabelSeparatorConstant            = " "
	commandLabelWorkingDirectoryTemplate     = "%s (in %s)"
	standardErrorSuffixTemplateConstant      = ": %s"
	unknownExecutionFailureMessageConstant   = "unknown error"
	emptyCommandLabelFallbackMessageConstant = "command"
)

// CommandName identifies a supported executable.
type CommandName string

// Supported command enumerations.
const (
	CommandGit CommandName = CommandName(gitCommandNameStringConstant)
)

// CommandDetails describes a tool invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines a CommandName with specific invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// Label renders the command as a single human-readable string.
func (command ShellCommand) Label() string {
	labelParts := []string{string(command.Name)}
	if len(command.Details.Arguments) > 0 {
		labelParts = append(labelParts, command.Details.Arguments...)
	}
	label := strings.Join(labelParts, commandLabelSeparatorConstant)
	if len(strings.TrimSpace(label)) == 0 {
		label = emptyCommandLabelFallbackMessageConstant
	}

	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return label
	}
	return fmt.Sprintf(commandLabelWorkingDirectoryTemplate, label, trimmedWorkingDirectory)
}

// ExecutionResult captures the observable results of executing a command.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandFailedError reports a command completing with a non-zero exit code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the command failure including trimmed standard error output.
func (failure CommandFailedError) Error() string {
	standardErrorSuffix := ""
	trimmedStandardError := strings.TrimSpace(failure.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailedMessageTemplateConstant, failure.Command.Label(), failure.Result.ExitCode, standardErrorSuffix)
}

// CommandExecutionError reports a command that could not be executed at all.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (failure CommandExecutionError) Error() string {
	causeMessage := unknownExecutionFailureMessageConstant
	if failure.Cause != nil {
		causeMessage = failure.Cause.Error()
	}
	return fmt.Sprintf(commandExecutionMessageTemplateConstant, failure.Command.Label(), causeMessage)
}

// Unwrap exposes the underlying cause.
func (failure CommandExecutionError) Unwrap() error {
	return failure.Cause
}
