package migration_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/tfsmigrate/internal/azuredevops"
	"github.com/temirov/tfsmigrate/internal/migration"
)

const (
	onlyCloneFlagArgumentConstant = "--only_clone_repos"
	summaryMessageTextConstant    = "Migration run finished"
	stateLogFieldNameConstant     = "state"
	capturedOptionsMissingMessage = "service provider never invoked"
)

type capturingMigrationExecutor struct {
	capturedOptions *migration.MigrationOptions
	result          migration.MigrationResult
	executionError  error
}

func (executor *capturingMigrationExecutor) Execute(_ context.Context, options migration.MigrationOptions) (migration.MigrationResult, error) {
	captured := options
	executor.capturedOptions = &captured
	if executor.executionError != nil {
		return migration.MigrationResult{}, executor.executionError
	}
	return executor.result, nil
}

func buildCommandBuilder(logger *zap.Logger, executor *capturingMigrationExecutor, configuration migration.CommandConfiguration, workingDirectory string) *migration.CommandBuilder {
	return &migration.CommandBuilder{
		LoggerProvider:        func() *zap.Logger { return logger },
		ConfigurationProvider: func() migration.CommandConfiguration { return configuration },
		ServiceProvider: func(migration.ServiceDependencies) (migration.MigrationExecutor, error) {
			return executor, nil
		},
		GitExecutor:      &recordingGitExecutor{},
		RepositoryLister: &stubRepositoryLister{repositories: listedRepositories()},
		ExistenceChecker: &stubExistenceChecker{exists: true},
		Checkpoints:      &recordingCheckpointStore{},
		WorkingDirectory: workingDirectory,
	}
}

func TestMigrateCommandRunScenarios(testInstance *testing.T) {
	testCases := []struct {
		name                       string
		arguments                  []string
		mutateConfiguration        func(configuration *migration.CommandConfiguration)
		expectError                bool
		expectedCloneOnly          bool
		expectedAllBranches        bool
		expectedBranchNames        []string
		expectedCheckpointFailures bool
	}{
		{
			name:                       "runs_with_complete_configuration",
			expectedAllBranches:        true,
			expectedCheckpointFailures: true,
		},
		{
			name:                       "only_clone_flag_overrides_configuration",
			arguments:                  []string{onlyCloneFlagArgumentConstant},
			expectedCloneOnly:          true,
			expectedAllBranches:        true,
			expectedCheckpointFailures: true,
		},
		{
			name: "specific_branches_forwarded_in_order",
			mutateConfiguration: func(configuration *migration.CommandConfiguration) {
				configuration.SpecificBranches = []string{"main", "feature-x"}
			},
			expectedBranchNames:        []string{"main", "feature-x"},
			expectedCheckpointFailures: true,
		},
		{
			name: "checkpoint_policy_forwarded",
			mutateConfiguration: func(configuration *migration.CommandConfiguration) {
				configuration.CheckpointFailedMigrations = false
			},
			expectedAllBranches:        true,
			expectedCheckpointFailures: false,
		},
		{
			name: "missing_required_configuration_rejected",
			mutateConfiguration: func(configuration *migration.CommandConfiguration) {
				configuration.GitHubToken = ""
			},
			expectError: true,
		},
		{
			name: "invalid_branch_selection_rejected",
			mutateConfiguration: func(configuration *migration.CommandConfiguration) {
				configuration.SpecificBranches = "main"
			},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		testInstance.Run(testCase.name, func(subtestInstance *testing.T) {
			observedCore, observedLogs := observer.New(zapcore.InfoLevel)
			logger := zap.New(observedCore)

			configuration := buildCompleteConfiguration()
			if testCase.mutateConfiguration != nil {
				testCase.mutateConfiguration(&configuration)
			}

			executor := &capturingMigrationExecutor{result: migration.MigrationResult{State: migration.StateCompleted}}
			workingDirectory := subtestInstance.TempDir()
			builder := buildCommandBuilder(logger, executor, configuration, workingDirectory)

			command, buildError := builder.Build()
			require.NoError(subtestInstance, buildError)

			command.SetContext(context.Background())
			command.SetArgs(testCase.arguments)
			executionError := command.Execute()

			if testCase.expectError {
				require.Error(subtestInstance, executionError)
				require.Nil(subtestInstance, executor.capturedOptions)
				return
			}

			require.NoError(subtestInstance, executionError)
			require.NotNil(subtestInstance, executor.capturedOptions, capturedOptionsMissingMessage)

			capturedOptions := *executor.capturedOptions
			require.Equal(subtestInstance, configuration.AzureOrganization, capturedOptions.Collection)
			require.Equal(subtestInstance, configuration.AzureProject, capturedOptions.Project)
			require.Equal(subtestInstance, configuration.SourceRepository, capturedOptions.SourceRepositoryName)
			require.Equal(subtestInstance, "https://github.com/fabrikam/billing-service.git", capturedOptions.TargetPushURL)
			require.Equal(subtestInstance, testCase.expectedCloneOnly, capturedOptions.CloneOnly)
			require.Equal(subtestInstance, testCase.expectedAllBranches, capturedOptions.BranchSelector.IncludesAllBranches())
			require.Equal(subtestInstance, testCase.expectedBranchNames, capturedOptions.BranchSelector.BranchNames())
			require.Equal(subtestInstance, testCase.expectedCheckpointFailures, capturedOptions.CheckpointFailedMigrations)

			summaryEntries := observedLogs.FilterMessage(summaryMessageTextConstant).All()
			require.Len(subtestInstance, summaryEntries, 1)
			require.Equal(subtestInstance, string(migration.StateCompleted), summaryEntries[0].ContextMap()[stateLogFieldNameConstant])
		})
	}
}

func TestMigrateCommandDerivesCloneURLFromLister(testInstance *testing.T) {
	configuration := buildCompleteConfiguration()
	executor := &capturingMigrationExecutor{result: migration.MigrationResult{State: migration.StateCompleted}}
	workingDirectory := testInstance.TempDir()

	builder := buildCommandBuilder(zap.NewNop(), executor, configuration, workingDirectory)
	azureClient, clientError := azuredevops.NewClient(
		configuration.CollectionBaseURL,
		configuration.AzureOrganization,
		configuration.AzurePersonalAccessToken,
		&http.Client{},
	)
	require.NoError(testInstance, clientError)
	builder.RepositoryLister = azureClient

	command, buildError := builder.Build()
	require.NoError(testInstance, buildError)

	command.SetContext(context.Background())
	command.SetArgs(nil)
	require.NoError(testInstance, command.Execute())

	require.NotNil(testInstance, executor.capturedOptions)
	require.Equal(
		testInstance,
		"https://tfs.example.com/tfs/DefaultCollection/Fabrikam/_git/billing-service",
		executor.capturedOptions.SourceCloneURL,
	)
}
