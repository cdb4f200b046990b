package docs_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const (
	readmeFileNameConstant           = "README.md"
	yamlFenceStartConstant           = "```yaml"
	yamlFenceEndConstant             = "```"
	configHeaderMarkerConstant       = "# config.yaml"
	parentDirectoryReferenceConstant = ".."
	missingHeaderMessageConstant     = "README example missing config header marker"
	missingStartFenceMessageConstant = "README example missing yaml fence start"
	missingEndFenceMessageConstant   = "README example missing yaml fence end"
)

type readmeApplicationConfiguration struct {
	Common struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"common"`
	Tools struct {
		Migrate map[string]any `yaml:"migrate"`
	} `yaml:"tools"`
}

func readmeConfigurationSnippet(testInstance *testing.T) string {
	testInstance.Helper()

	workingDirectory, workingDirectoryError := os.Getwd()
	require.NoError(testInstance, workingDirectoryError)

	readmePath := filepath.Join(workingDirectory, parentDirectoryReferenceConstant, readmeFileNameConstant)
	contentBytes, readError := os.ReadFile(readmePath)
	require.NoError(testInstance, readError)

	contentText := string(contentBytes)
	headerIndex := strings.Index(contentText, configHeaderMarkerConstant)
	require.NotEqual(testInstance, -1, headerIndex, missingHeaderMessageConstant)

	fenceStartIndex := strings.LastIndex(contentText[:headerIndex], yamlFenceStartConstant)
	require.NotEqual(testInstance, -1, fenceStartIndex, missingStartFenceMessageConstant)

	remainingText := contentText[headerIndex:]
	fenceEndRelativeIndex := strings.Index(remainingText, yamlFenceEndConstant)
	require.NotEqual(testInstance, -1, fenceEndRelativeIndex, missingEndFenceMessageConstant)
	fenceEndIndex := headerIndex + fenceEndRelativeIndex

	return strings.TrimSpace(contentText[fenceStartIndex+len(yamlFenceStartConstant) : fenceEndIndex])
}

func TestReadmeConfigurationParses(testInstance *testing.T) {
	snippetContent := readmeConfigurationSnippet(testInstance)

	var configuration readmeApplicationConfiguration
	require.NoError(testInstance, yaml.Unmarshal([]byte(snippetContent), &configuration))

	require.Equal(testInstance, "info", configuration.Common.LogLevel)
	require.Equal(testInstance, "structured", configuration.Common.LogFormat)

	expectedMigrateKeys := []string{
		"tfs_url",
		"azure_devops_organization",
		"azure_devops_project",
		"azure_devops_pat_token",
		"tfs_source_repo",
		"github_organization",
		"github_target_repo",
		"github_token",
		"specific_branches",
		"only_clone_repos",
		"checkpoint_failed_migrations",
	}
	for _, expectedKey := range expectedMigrateKeys {
		require.Contains(testInstance, configuration.Tools.Migrate, expectedKey)
	}

	require.Equal(testInstance, "all", configuration.Tools.Migrate["specific_branches"])
	require.Equal(testInstance, false, configuration.Tools.Migrate["only_clone_repos"])
	require.Equal(testInstance, true, configuration.Tools.Migrate["checkpoint_failed_migrations"])
}
