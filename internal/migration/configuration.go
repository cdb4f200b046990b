package migration

import (
	"fmt"
	"strings"
)

const (
	azureOrganizationConfigurationKeyConstant       = "azure_devops_organization"
	azureProjectConfigurationKeyConstant            = "azure_devops_project"
	azurePersonalAccessTokenConfigurationKey        = "azure_devops_pat_token"
	sourceRepositoryConfigurationKeyConstant        = "tfs_source_repo"
	targetRepositoryConfigurationKeyConstant        = "github_target_repo"
	collectionBaseURLConfigurationKeyConstant       = "tfs_url"
	gitHubTokenConfigurationKeyConstant             = "github_token"
	gitHubOrganizationConfigurationKeyConstant      = "github_organization"
	specificBranchesConfigurationKeyConstant        = "specific_branches"
	onlyCloneConfigurationKeyConstant               = "only_clone_repos"
	checkpointFailedConfigurationKeyConstant        = "checkpoint_failed_migrations"
	configurationKeyPathTemplateConstant            = "%s.%s"
	missingConfigurationValueMessageConstant        = "required configuration value missing"
	configurationValidationErrorTemplateConstant    = "%s: %s"
	defaultCheckpointFailedMigrationsValueConstant  = true
	defaultOnlyCloneRepositoriesValueConstant       = false
	defaultSpecificBranchesConfigurationValueString = allBranchesSentinelConstant
)

// CommandConfiguration captures persisted configuration for the migrate command.
type CommandConfiguration struct {
	AzureOrganization          string `mapstructure:"azure_devops_organization"`
	AzureProject               string `mapstructure:"azure_devops_project"`
	AzurePersonalAccessToken   string `mapstructure:"azure_devops_pat_token"`
	SourceRepository           string `mapstructure:"tfs_source_repo"`
	TargetRepository           string `mapstructure:"github_target_repo"`
	CollectionBaseURL          string `mapstructure:"tfs_url"`
	GitHubToken                string `mapstructure:"github_token"`
	GitHubOrganization         string `mapstructure:"github_organization"`
	SpecificBranches           any    `mapstructure:"specific_branches"`
	OnlyCloneRepositories      bool   `mapstructure:"only_clone_repos"`
	CheckpointFailedMigrations bool   `mapstructure:"checkpoint_failed_migrations"`
}

// ConfigurationValidationError names a configuration key with an unusable value.
type ConfigurationValidationError struct {
	ConfigurationKey string
	Message          string
}

// Error describes the validation failure.
func (validationError ConfigurationValidationError) Error() string {
	return fmt.Sprintf(configurationValidationErrorTemplateConstant, validationError.ConfigurationKey, validationError.Message)
}

// DefaultCommandConfiguration returns baseline configuration values for migration.
func DefaultCommandConfiguration() CommandConfiguration {
	return CommandConfiguration{
		SpecificBranches:           defaultSpecificBranchesConfigurationValueString,
		OnlyCloneRepositories:      defaultOnlyCloneRepositoriesValueConstant,
		CheckpointFailedMigrations: defaultCheckpointFailedMigrationsValueConstant,
	}
}

// DefaultConfigurationValues exposes migration defaults for the configuration loader.
func DefaultConfigurationValues(configurationKeyPrefix string) map[string]any {
	return map[string]any{
		prefixedConfigurationKey(configurationKeyPrefix, specificBranchesConfigurationKeyConstant): defaultSpecificBranchesConfigurationValueString,
		prefixedConfigurationKey(configurationKeyPrefix, onlyCloneConfigurationKeyConstant):        defaultOnlyCloneRepositoriesValueConstant,
		prefixedConfigurationKey(configurationKeyPrefix, checkpointFailedConfigurationKeyConstant): defaultCheckpointFailedMigrationsValueConstant,
	}
}

func prefixedConfigurationKey(configurationKeyPrefix string, configurationKey string) string {
	if len(configurationKeyPrefix) == 0 {
		return configurationKey
	}
	return fmt.Sprintf(configurationKeyPathTemplateConstant, configurationKeyPrefix, configurationKey)
}

// Sanitize trims configured string values.
func (configuration CommandConfiguration) Sanitize() CommandConfiguration {
	sanitized := configuration
	sanitized.AzureOrganization = strings.TrimSpace(configuration.AzureOrganization)
	sanitized.AzureProject = strings.TrimSpace(configuration.AzureProject)
	sanitized.AzurePersonalAccessToken = strings.TrimSpace(configuration.AzurePersonalAccessToken)
	sanitized.SourceRepository = strings.TrimSpace(configuration.SourceRepository)
	sanitized.TargetRepository = strings.TrimSpace(configuration.TargetRepository)
	sanitized.CollectionBaseURL = strings.TrimSpace(configuration.CollectionBaseURL)
	sanitized.GitHubToken = strings.TrimSpace(configuration.GitHubToken)
	sanitized.GitHubOrganization = strings.TrimSpace(configuration.GitHubOrganization)
	return sanitized
}

// Validate confirms every required configuration key carries a value.
func (configuration CommandConfiguration) Validate() error {
	requiredConfigurationValues := []struct {
		configurationKey   string
		configurationValue string
	}{
		{azureOrganizationConfigurationKeyConstant, configuration.AzureOrganization},
		{azureProjectConfigurationKeyConstant, configuration.AzureProject},
		{azurePersonalAccessTokenConfigurationKey, configuration.AzurePersonalAccessToken},
		{sourceRepositoryConfigurationKeyConstant, configuration.SourceRepository},
		{targetRepositoryConfigurationKeyConstant, configuration.TargetRepository},
		{collectionBaseURLConfigurationKeyConstant, configuration.CollectionBaseURL},
		{gitHubTokenConfigurationKeyConstant, configuration.GitHubToken},
		{gitHubOrganizationConfigurationKeyConstant, configuration.GitHubOrganization},
	}

	for _, requiredConfigurationValue := range requiredConfigurationValues {
		if len(requiredConfigurationValue.configurationValue) == 0 {
			return ConfigurationValidationError{
				ConfigurationKey: requiredConfigurationValue.configurationKey,
				Message:          missingConfigurationValueMessageConstant,
			}
		}
	}

	return nil
}
