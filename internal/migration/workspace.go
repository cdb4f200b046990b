package migration

import (
	"path/filepath"

	"github.com/temirov/tfsmigrate/internal/checkpoint"
)

const (
	migrationRootDirectoryNameConstant  = "tfs_repo_migration"
	repositoryRootDirectoryNameConstant = "tfs_git_repo"
	logDirectoryNameConstant            = "tfs_git_migration_log"
)

// WorkspacePaths derives the on-disk layout used by a migration run: the clone
// tree, the per-run log directory, and the checkpoint ledger location, all
// rooted at the invoking working directory.
type WorkspacePaths struct {
	baseDirectory string
}

// NewWorkspacePaths constructs workspace paths rooted at the supplied directory.
func NewWorkspacePaths(baseDirectory string) WorkspacePaths {
	return WorkspacePaths{baseDirectory: filepath.Clean(baseDirectory)}
}

// BaseDirectory returns the workspace root.
func (paths WorkspacePaths) BaseDirectory() string {
	return paths.baseDirectory
}

// MigrationRootDirectory returns the directory holding all migration artifacts.
func (paths WorkspacePaths) MigrationRootDirectory() string {
	return filepath.Join(paths.baseDirectory, migrationRootDirectoryNameConstant)
}

// RepositoryRootDirectory returns the directory holding cloned repositories.
func (paths WorkspacePaths) RepositoryRootDirectory() string {
	return filepath.Join(paths.MigrationRootDirectory(), repositoryRootDirectoryNameConstant)
}

// LogDirectory returns the directory holding per-run log files.
func (paths WorkspacePaths) LogDirectory() string {
	return filepath.Join(paths.MigrationRootDirectory(), logDirectoryNameConstant)
}

// ProjectDirectory returns the clone directory for an organization project.
func (paths WorkspacePaths) ProjectDirectory(organization string, project string) string {
	return filepath.Join(paths.RepositoryRootDirectory(), organization, project)
}

// CheckpointFilePath returns the checkpoint ledger location.
func (paths WorkspacePaths) CheckpointFilePath() string {
	return filepath.Join(paths.baseDirectory, checkpoint.DefaultFileName)
}
