package migration

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/tfsmigrate/internal/azuredevops"
	"github.com/temirov/tfsmigrate/internal/checkpoint"
	"github.com/temirov/tfsmigrate/internal/execshell"
	"github.com/temirov/tfsmigrate/internal/githubapi"
)

const (
	commandUseConstant                          = "migrate"
	commandShortDescriptionConstant             = "Migrate a TFS repository to GitHub"
	commandLongDescriptionConstant              = "migrate clones the configured repository from an Azure DevOps project and pushes it into the matching GitHub repository, resuming past interrupted runs through a checkpoint ledger."
	onlyCloneFlagNameConstant                   = "only_clone_repos"
	onlyCloneFlagUsageConstant                  = "Clone repositories without pushing them to GitHub"
	configurationInvalidErrorTemplateConstant   = "invalid migration configuration: %w"
	branchSelectionInvalidErrorTemplateConstant = "invalid branch selection: %w"
	shellExecutorCreationErrorTemplateConstant  = "unable to construct shell executor: %w"
	azureClientCreationErrorTemplateConstant    = "unable to construct Azure DevOps client: %w"
	githubClientCreationErrorTemplateConstant   = "unable to construct GitHub client: %w"
	ledgerCreationErrorTemplateConstant         = "unable to open checkpoint ledger: %w"
	ledgerLoadErrorTemplateConstant             = "unable to load checkpoint ledger: %w"
	projectDirectoryCreationErrorTemplateConst  = "unable to create project directory: %w"
	migrationExecutionErrorTemplateConstant     = "migration failed: %w"
	httpClientTimeoutConstant                   = 30 * time.Second
	projectDirectoryPermissionsConstant         = 0o755
	migrationSummaryMessageConstant             = "Migration run finished"
	logFieldMigrationStateConstant              = "state"
	logFieldMigrationRepositoryConstant         = "repository"
	logFieldMigrationRepositoryPathConstant     = "repository_path"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ServiceProvider constructs a migration executor from dependencies.
type ServiceProvider func(dependencies ServiceDependencies) (MigrationExecutor, error)

// MigrationExecutor performs a repository migration.
type MigrationExecutor interface {
	Execute(executionContext context.Context, options MigrationOptions) (MigrationResult, error)
}

// CommandBuilder assembles the migrate Cobra command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider func() CommandConfiguration
	ServiceProvider       ServiceProvider
	GitExecutor           CommandExecutor
	RepositoryLister      RepositoryLister
	ExistenceChecker      RepositoryExistenceChecker
	Checkpoints           CheckpointStore
	WorkingDirectory      string
}

// Build constructs the migrate command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:           commandUseConstant,
		Short:         commandShortDescriptionConstant,
		Long:          commandLongDescriptionConstant,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args:          cobra.NoArgs,
		RunE:          builder.runMigrate,
	}

	command.Flags().Bool(onlyCloneFlagNameConstant, false, onlyCloneFlagUsageConstant)

	return command, nil
}

func (builder *CommandBuilder) runMigrate(command *cobra.Command, arguments []string) error {
	configuration := builder.resolveConfiguration()
	if command.Flags().Changed(onlyCloneFlagNameConstant) {
		flagValue, _ := command.Flags().GetBool(onlyCloneFlagNameConstant)
		configuration.OnlyCloneRepositories = flagValue
	}

	if validationError := configuration.Validate(); validationError != nil {
		return fmt.Errorf(configurationInvalidErrorTemplateConstant, validationError)
	}

	branchSelector, selectorError := ParseBranchSelector(configuration.SpecificBranches)
	if selectorError != nil {
		return fmt.Errorf(branchSelectionInvalidErrorTemplateConstant, selectorError)
	}

	logger := builder.resolveLogger()

	gitExecutor, executorError := builder.resolveGitExecutor(logger)
	if executorError != nil {
		return executorError
	}

	repositoryLister, listerError := builder.resolveRepositoryLister(configuration)
	if listerError != nil {
		return listerError
	}

	existenceChecker, checkerError := builder.resolveExistenceChecker(configuration)
	if checkerError != nil {
		return checkerError
	}

	workspacePaths := NewWorkspacePaths(builder.WorkingDirectory)

	checkpoints, checkpointsError := builder.resolveCheckpoints(workspacePaths)
	if checkpointsError != nil {
		return checkpointsError
	}

	projectDirectory := workspacePaths.ProjectDirectory(configuration.AzureOrganization, configuration.AzureProject)
	if directoryError := os.MkdirAll(projectDirectory, projectDirectoryPermissionsConstant); directoryError != nil {
		return fmt.Errorf(projectDirectoryCreationErrorTemplateConst, directoryError)
	}

	service, serviceError := builder.resolveService(ServiceDependencies{
		Logger:           logger,
		RepositoryLister: repositoryLister,
		ExistenceChecker: existenceChecker,
		GitExecutor:      gitExecutor,
		Checkpoints:      checkpoints,
	})
	if serviceError != nil {
		return serviceError
	}

	sourceCloneURL, cloneURLError := builder.resolveSourceCloneURL(configuration, repositoryLister)
	if cloneURLError != nil {
		return cloneURLError
	}

	migrationOptions := MigrationOptions{
		Collection:                 configuration.AzureOrganization,
		Project:                    configuration.AzureProject,
		SourceRepositoryName:       configuration.SourceRepository,
		SourceCloneURL:             sourceCloneURL,
		TargetOrganization:         configuration.GitHubOrganization,
		TargetRepositoryName:       configuration.TargetRepository,
		TargetPushURL:              githubapi.RepositoryPushURL(configuration.GitHubOrganization, configuration.TargetRepository),
		ProjectDirectory:           projectDirectory,
		BranchSelector:             branchSelector,
		CloneOnly:                  configuration.OnlyCloneRepositories,
		CheckpointFailedMigrations: configuration.CheckpointFailedMigrations,
	}

	result, migrationError := service.Execute(command.Context(), migrationOptions)
	if migrationError != nil {
		return fmt.Errorf(migrationExecutionErrorTemplateConstant, migrationError)
	}

	logger.Info(
		migrationSummaryMessageConstant,
		zap.String(logFieldMigrationStateConstant, string(result.State)),
		zap.String(logFieldMigrationRepositoryConstant, configuration.SourceRepository),
		zap.String(logFieldMigrationRepositoryPathConstant, result.RepositoryPath),
	)

	return nil
}

func (builder *CommandBuilder) resolveService(dependencies ServiceDependencies) (MigrationExecutor, error) {
	if builder.ServiceProvider != nil {
		return builder.ServiceProvider(dependencies)
	}
	return NewService(dependencies)
}

func (builder *CommandBuilder) resolveConfiguration() CommandConfiguration {
	if builder.ConfigurationProvider == nil {
		return DefaultCommandConfiguration()
	}

	provided := builder.ConfigurationProvider()
	return provided.Sanitize()
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	var logger *zap.Logger
	if builder.LoggerProvider != nil {
		logger = builder.LoggerProvider()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger) (CommandExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	commandRunner := execshell.NewOSCommandRunner()
	shellExecutor, creationError := execshell.NewShellExecutor(logger, commandRunner)
	if creationError != nil {
		return nil, fmt.Errorf(shellExecutorCreationErrorTemplateConstant, creationError)
	}

	retryingExecutor, retryError := execshell.NewRetryingGitExecutor(shellExecutor, logger)
	if retryError != nil {
		return nil, fmt.Errorf(shellExecutorCreationErrorTemplateConstant, retryError)
	}

	return retryingExecutor, nil
}

func (builder *CommandBuilder) resolveRepositoryLister(configuration CommandConfiguration) (RepositoryLister, error) {
	if builder.RepositoryLister != nil {
		return builder.RepositoryLister, nil
	}

	client, clientError := azuredevops.NewClient(
		configuration.CollectionBaseURL,
		configuration.AzureOrganization,
		configuration.AzurePersonalAccessToken,
		&http.Client{Timeout: httpClientTimeoutConstant},
	)
	if clientError != nil {
		return nil, fmt.Errorf(azureClientCreationErrorTemplateConstant, clientError)
	}

	return client, nil
}

func (builder *CommandBuilder) resolveExistenceChecker(configuration CommandConfiguration) (RepositoryExistenceChecker, error) {
	if builder.ExistenceChecker != nil {
		return builder.ExistenceChecker, nil
	}

	client, clientError := githubapi.NewClient(
		configuration.GitHubToken,
		&http.Client{Timeout: httpClientTimeoutConstant},
	)
	if clientError != nil {
		return nil, fmt.Errorf(githubClientCreationErrorTemplateConstant, clientError)
	}

	return client, nil
}

func (builder *CommandBuilder) resolveCheckpoints(workspacePaths WorkspacePaths) (CheckpointStore, error) {
	if builder.Checkpoints != nil {
		return builder.Checkpoints, nil
	}

	ledger, ledgerError := checkpoint.NewLedger(workspacePaths.CheckpointFilePath())
	if ledgerError != nil {
		return nil, fmt.Errorf(ledgerCreationErrorTemplateConstant, ledgerError)
	}
	if loadError := ledger.Load(); loadError != nil {
		return nil, fmt.Errorf(ledgerLoadErrorTemplateConstant, loadError)
	}

	return ledger, nil
}

func (builder *CommandBuilder) resolveSourceCloneURL(configuration CommandConfiguration, repositoryLister RepositoryLister) (string, error) {
	if azureClient, isAzureClient := repositoryLister.(*azuredevops.Client); isAzureClient {
		return azureClient.RepositoryCloneURL(configuration.AzureProject, configuration.SourceRepository), nil
	}

	fallbackClient, clientError := azuredevops.NewClient(
		configuration.CollectionBaseURL,
		configuration.AzureOrganization,
		configuration.AzurePersonalAccessToken,
		&http.Client{Timeout: httpClientTimeoutConstant},
	)
	if clientError != nil {
		return "", fmt.Errorf(azureClientCreationErrorTemplateConstant, clientError)
	}

	return fallbackClient.RepositoryCloneURL(configuration.AzureProject, configuration.SourceRepository), nil
}
