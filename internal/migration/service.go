package migration

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/tfsmigrate/internal/azuredevops"
	"github.com/temirov/tfsmigrate/internal/execshell"
)

const (
	gitCloneSubcommandConstant             = "clone"
	gitFetchSubcommandConstant             = "fetch"
	gitPushSubcommandConstant              = "push"
	gitMirrorFlagConstant                  = "--mirror"
	gitOriginRemoteNameConstant            = "origin"
	branchRefspecTemplateConstant          = "refs/remotes/origin/%s:refs/heads/%s"
	collectionFieldNameConstant            = "collection"
	projectFieldNameConstant               = "project"
	sourceRepositoryFieldNameConstant      = "source_repository"
	sourceCloneURLFieldNameConstant        = "source_clone_url"
	targetOrganizationFieldNameConstant    = "target_organization"
	targetRepositoryFieldNameConstant      = "target_repository"
	targetPushURLFieldNameConstant         = "target_push_url"
	projectDirectoryFieldNameConstant      = "project_directory"
	requiredValueMessageConstant           = "value required"
	invalidInputErrorTemplateConstant      = "%s: %s"
	repositoryListerMissingMessageConstant = "repository lister not configured"
	existenceCheckerMissingMessageConstant = "repository existence checker not configured"
	gitExecutorMissingMessageConstant      = "git executor not configured"
	checkpointStoreMissingMessageConstant  = "checkpoint store not configured"
	listRepositoriesErrorTemplateConstant  = "unable to list source repositories: %w"
	existenceCheckErrorTemplateConstant    = "unable to check target repository existence: %w"
	cloneErrorTemplateConstant             = "unable to clone %s: %w"
	pushErrorTemplateConstant              = "unable to push %s: %w"
	fetchBranchErrorTemplateConstant       = "unable to fetch branch %s: %w"
	pushBranchErrorTemplateConstant        = "unable to push branch %s: %w"
	inspectCloneErrorTemplateConstant      = "unable to inspect clone directory %s: %w"
	repositoryNotFoundMessageTemplate      = "repository %s not found in project %s"
	skippingMigratedMessageConstant        = "Skipping repository, already migrated"
	destinationMissingMessageConstant      = "Target repository does not exist on GitHub, migration cannot proceed"
	cloningAllBranchesMessageConstant      = "Cloning all branches and tags"
	cloningDefaultBranchMessageConstant    = "Cloning default branch"
	reusingExistingCloneMessageConstant    = "Reusing existing local clone"
	pushingAllBranchesMessageConstant      = "Pushing all branches and tags"
	pushingSpecificBranchMessageConstant   = "Pushing specific branch"
	migrationAttemptFailedMessageConstant  = "Migration attempt failed"
	checkpointRecordedMessageConstant      = "Checkpoint updated"
	checkpointWithheldMessageConstant      = "Checkpoint withheld for failed migration"
	logFieldRepositoryConstant             = "repository"
	logFieldRepositoryPathConstant         = "repository_path"
	logFieldBranchNameConstant             = "branch"
	logFieldCollectionConstant             = "collection"
	logFieldProjectConstant                = "project"
	logFieldTargetRepositoryConstant       = "target_repository"
)

// MigrationState names the terminal state of a migration attempt.
type MigrationState string

// Terminal migration states.
const (
	StateCompleted          MigrationState = "completed"
	StateSkipped            MigrationState = "skipped"
	StateDestinationMissing MigrationState = "destination_missing"
	StateFailed             MigrationState = "failed"
)

// RepositoryLister enumerates the Git repositories of a source project.
type RepositoryLister interface {
	ListRepositories(executionContext context.Context, project string) ([]azuredevops.Repository, error)
}

// RepositoryExistenceChecker answers whether the destination repository exists.
type RepositoryExistenceChecker interface {
	RepositoryExists(executionContext context.Context, organization string, repositoryName string) (bool, error)
}

// CommandExecutor runs git commands on behalf of the migration.
type CommandExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// CheckpointStore records completed migrations and answers skip queries.
type CheckpointStore interface {
	Contains(collection string, project string, repositoryName string) bool
	Record(collection string, project string, repositoryName string) error
}

// InvalidInputError describes migration option validation failures.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// RepositoryNotFoundError indicates the configured source repository is absent
// from the project listing.
type RepositoryNotFoundError struct {
	RepositoryName string
	Project        string
}

// Error names the missing repository.
func (notFoundError RepositoryNotFoundError) Error() string {
	return fmt.Sprintf(repositoryNotFoundMessageTemplate, notFoundError.RepositoryName, notFoundError.Project)
}

// ServiceDependencies describes required collaborators for migration.
type ServiceDependencies struct {
	Logger           *zap.Logger
	RepositoryLister RepositoryLister
	ExistenceChecker RepositoryExistenceChecker
	GitExecutor      CommandExecutor
	Checkpoints      CheckpointStore
}

// MigrationOptions configures a single repository migration.
type MigrationOptions struct {
	Collection                 string
	Project                    string
	SourceRepositoryName       string
	SourceCloneURL             string
	TargetOrganization         string
	TargetRepositoryName       string
	TargetPushURL              string
	ProjectDirectory           string
	BranchSelector             BranchSelector
	CloneOnly                  bool
	CheckpointFailedMigrations bool
}

// MigrationResult captures the observable outcome of a migration attempt.
type MigrationResult struct {
	State          MigrationState
	RepositoryPath string
}

// Service orchestrates the clone-and-push migration workflow.
type Service struct {
	logger           *zap.Logger
	repositoryLister RepositoryLister
	existenceChecker RepositoryExistenceChecker
	gitExecutor      CommandExecutor
	checkpoints      CheckpointStore
}

var (
	errRepositoryListerMissing = errors.New(repositoryListerMissingMessageConstant)
	errExistenceCheckerMissing = errors.New(existenceCheckerMissingMessageConstant)
	errGitExecutorMissing      = errors.New(gitExecutorMissingMessageConstant)
	errCheckpointStoreMissing  = errors.New(checkpointStoreMissingMessageConstant)
)

// NewService constructs a Service with the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.RepositoryLister == nil {
		return nil, errRepositoryListerMissing
	}
	if dependencies.ExistenceChecker == nil {
		return nil, errExistenceCheckerMissing
	}
	if dependencies.GitExecutor == nil {
		return nil, errGitExecutorMissing
	}
	if dependencies.Checkpoints == nil {
		return nil, errCheckpointStoreMissing
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	service := &Service{
		logger:           logger,
		repositoryLister: dependencies.RepositoryLister,
		existenceChecker: dependencies.ExistenceChecker,
		gitExecutor:      dependencies.GitExecutor,
		checkpoints:      dependencies.Checkpoints,
	}

	return service, nil
}

// Execute performs the migration workflow for a single repository.
//
// Listing and existence-check failures abort the run. Clone and push failures
// are logged and swallowed; whether they still reach the checkpoint ledger is
// governed by MigrationOptions.CheckpointFailedMigrations.
func (service *Service) Execute(executionContext context.Context, options MigrationOptions) (MigrationResult, error) {
	if validationError := service.validateOptions(options); validationError != nil {
		return MigrationResult{}, validationError
	}

	repositories, listError := service.repositoryLister.ListRepositories(executionContext, options.Project)
	if listError != nil {
		return MigrationResult{}, fmt.Errorf(listRepositoriesErrorTemplateConstant, listError)
	}

	repositoryListed := false
	for _, repository := range repositories {
		if repository.Name == options.SourceRepositoryName {
			repositoryListed = true
			break
		}
	}
	if !repositoryListed {
		return MigrationResult{}, RepositoryNotFoundError{
			RepositoryName: options.SourceRepositoryName,
			Project:        options.Project,
		}
	}

	if service.checkpoints.Contains(options.Collection, options.Project, options.SourceRepositoryName) {
		service.logger.Info(
			skippingMigratedMessageConstant,
			zap.String(logFieldRepositoryConstant, options.SourceRepositoryName),
			zap.String(logFieldCollectionConstant, options.Collection),
			zap.String(logFieldProjectConstant, options.Project),
		)
		return MigrationResult{State: StateSkipped}, nil
	}

	destinationExists, existenceError := service.existenceChecker.RepositoryExists(executionContext, options.TargetOrganization, options.TargetRepositoryName)
	if existenceError != nil {
		return MigrationResult{}, fmt.Errorf(existenceCheckErrorTemplateConstant, existenceError)
	}
	if !destinationExists {
		service.logger.Error(
			destinationMissingMessageConstant,
			zap.String(logFieldTargetRepositoryConstant, options.TargetRepositoryName),
		)
		return MigrationResult{State: StateDestinationMissing}, nil
	}

	repositoryPath := filepath.Join(options.ProjectDirectory, options.SourceRepositoryName)
	migrationError := service.cloneAndPush(executionContext, options, repositoryPath)
	if migrationError != nil {
		service.logger.Error(
			migrationAttemptFailedMessageConstant,
			zap.String(logFieldRepositoryConstant, options.SourceRepositoryName),
			zap.Error(migrationError),
		)
		if !options.CheckpointFailedMigrations {
			service.logger.Warn(
				checkpointWithheldMessageConstant,
				zap.String(logFieldRepositoryConstant, options.SourceRepositoryName),
			)
			return MigrationResult{State: StateFailed, RepositoryPath: repositoryPath}, nil
		}
	}

	if recordError := service.checkpoints.Record(options.Collection, options.Project, options.SourceRepositoryName); recordError != nil {
		return MigrationResult{}, recordError
	}
	service.logger.Info(
		checkpointRecordedMessageConstant,
		zap.String(logFieldRepositoryConstant, options.SourceRepositoryName),
		zap.String(logFieldCollectionConstant, options.Collection),
		zap.String(logFieldProjectConstant, options.Project),
	)

	terminalState := StateCompleted
	if migrationError != nil {
		terminalState = StateFailed
	}

	return MigrationResult{State: terminalState, RepositoryPath: repositoryPath}, nil
}

func (service *Service) validateOptions(options MigrationOptions) error {
	requiredOptionValues := []struct {
		fieldName  string
		fieldValue string
	}{
		{collectionFieldNameConstant, options.Collection},
		{projectFieldNameConstant, options.Project},
		{sourceRepositoryFieldNameConstant, options.SourceRepositoryName},
		{sourceCloneURLFieldNameConstant, options.SourceCloneURL},
		{targetOrganizationFieldNameConstant, options.TargetOrganization},
		{targetRepositoryFieldNameConstant, options.TargetRepositoryName},
		{targetPushURLFieldNameConstant, options.TargetPushURL},
		{projectDirectoryFieldNameConstant, options.ProjectDirectory},
	}

	for _, requiredOptionValue := range requiredOptionValues {
		if len(strings.TrimSpace(requiredOptionValue.fieldValue)) == 0 {
			return InvalidInputError{FieldName: requiredOptionValue.fieldName, Message: requiredValueMessageConstant}
		}
	}

	return nil
}

func (service *Service) cloneAndPush(executionContext context.Context, options MigrationOptions, repositoryPath string) error {
	cloneError := service.cloneRepository(executionContext, options, repositoryPath)
	if cloneError != nil {
		return cloneError
	}

	if options.CloneOnly {
		return nil
	}

	return service.pushRepository(executionContext, options, repositoryPath)
}

func (service *Service) cloneRepository(executionContext context.Context, options MigrationOptions, repositoryPath string) error {
	_, statError := os.Stat(repositoryPath)
	if statError == nil {
		service.logger.Info(
			reusingExistingCloneMessageConstant,
			zap.String(logFieldRepositoryPathConstant, repositoryPath),
		)
		return nil
	}
	if !os.IsNotExist(statError) {
		return fmt.Errorf(inspectCloneErrorTemplateConstant, repositoryPath, statError)
	}

	cloneArguments := []string{gitCloneSubcommandConstant}
	if options.BranchSelector.IncludesAllBranches() {
		service.logger.Info(
			cloningAllBranchesMessageConstant,
			zap.String(logFieldRepositoryConstant, options.SourceRepositoryName),
		)
		cloneArguments = append(cloneArguments, gitMirrorFlagConstant)
	} else {
		service.logger.Info(
			cloningDefaultBranchMessageConstant,
			zap.String(logFieldRepositoryConstant, options.SourceRepositoryName),
		)
	}
	cloneArguments = append(cloneArguments, options.SourceCloneURL, repositoryPath)

	if _, cloneError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:        cloneArguments,
		WorkingDirectory: options.ProjectDirectory,
	}); cloneError != nil {
		return fmt.Errorf(cloneErrorTemplateConstant, options.SourceRepositoryName, cloneError)
	}

	return nil
}

func (service *Service) pushRepository(executionContext context.Context, options MigrationOptions, repositoryPath string) error {
	if options.BranchSelector.IncludesAllBranches() {
		service.logger.Info(
			pushingAllBranchesMessageConstant,
			zap.String(logFieldRepositoryConstant, options.SourceRepositoryName),
		)
		if _, pushError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        []string{gitPushSubcommandConstant, gitMirrorFlagConstant, options.TargetPushURL},
			WorkingDirectory: repositoryPath,
		}); pushError != nil {
			return fmt.Errorf(pushErrorTemplateConstant, options.SourceRepositoryName, pushError)
		}
		return nil
	}

	for _, branchName := range options.BranchSelector.BranchNames() {
		service.logger.Info(
			pushingSpecificBranchMessageConstant,
			zap.String(logFieldBranchNameConstant, branchName),
			zap.String(logFieldRepositoryConstant, options.SourceRepositoryName),
		)

		if _, fetchError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        []string{gitFetchSubcommandConstant, gitOriginRemoteNameConstant, branchName},
			WorkingDirectory: repositoryPath,
		}); fetchError != nil {
			return fmt.Errorf(fetchBranchErrorTemplateConstant, branchName, fetchError)
		}

		branchRefspec := fmt.Sprintf(branchRefspecTemplateConstant, branchName, branchName)
		if _, pushError := service.gitExecutor.ExecuteGit(executionContext, execshell.CommandDetails{
			Arguments:        []string{gitPushSubcommandConstant, options.TargetPushURL, branchRefspec},
			WorkingDirectory: repositoryPath,
		}); pushError != nil {
			return fmt.Errorf(pushBranchErrorTemplateConstant, branchName, pushError)
		}
	}

	return nil
}
