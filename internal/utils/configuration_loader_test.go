package utils_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/tfsmigrate/internal/utils"
)

const (
	testConfigurationNameConstant     = "config"
	testConfigurationTypeConstant     = "yaml"
	testEnvironmentPrefixConstant     = "TFSMIGRATETEST"
	testConfigurationFileNameConstant = "config.yaml"
	testConfigurationContentConstant  = "common:\n  log_level: warn\n"
	testMalformedContentConstant      = "common:\n\tlog_level: [unclosed\n"
	testLogLevelDefaultKeyConstant    = "common.log_level"
	testLogFormatDefaultKeyConstant   = "common.log_format"
	testLogLevelEnvironmentNameConst  = "TFSMIGRATETEST_COMMON_LOG_LEVEL"
)

type loaderTestConfiguration struct {
	Common struct {
		LogLevel  string `mapstructure:"log_level"`
		LogFormat string `mapstructure:"log_format"`
	} `mapstructure:"common"`
}

func writeLoaderConfigurationFile(testInstance *testing.T, directory string, content string) string {
	testInstance.Helper()

	configurationPath := filepath.Join(directory, testConfigurationFileNameConstant)
	require.NoError(testInstance, os.WriteFile(configurationPath, []byte(content), 0o644))
	return configurationPath
}

func newLoaderForDirectory(directory string) *utils.ConfigurationLoader {
	return utils.NewConfigurationLoader(
		testConfigurationNameConstant,
		testConfigurationTypeConstant,
		testEnvironmentPrefixConstant,
		[]string{directory},
	)
}

func TestConfigurationLoaderReadsSearchPathFile(testInstance *testing.T) {
	directory := testInstance.TempDir()
	configurationPath := writeLoaderConfigurationFile(testInstance, directory, testConfigurationContentConstant)

	var loadedConfiguration loaderTestConfiguration
	metadata, loadError := newLoaderForDirectory(directory).LoadConfiguration("", nil, &loadedConfiguration)

	require.NoError(testInstance, loadError)
	require.Equal(testInstance, configurationPath, metadata.ConfigFileUsed)
	require.Equal(testInstance, "warn", loadedConfiguration.Common.LogLevel)
}

func TestConfigurationLoaderPrefersExplicitFile(testInstance *testing.T) {
	searchDirectory := testInstance.TempDir()
	writeLoaderConfigurationFile(testInstance, searchDirectory, testConfigurationContentConstant)

	explicitDirectory := testInstance.TempDir()
	explicitPath := writeLoaderConfigurationFile(testInstance, explicitDirectory, "common:\n  log_level: error\n")

	var loadedConfiguration loaderTestConfiguration
	metadata, loadError := newLoaderForDirectory(searchDirectory).LoadConfiguration(explicitPath, nil, &loadedConfiguration)

	require.NoError(testInstance, loadError)
	require.Equal(testInstance, explicitPath, metadata.ConfigFileUsed)
	require.Equal(testInstance, "error", loadedConfiguration.Common.LogLevel)
}

func TestConfigurationLoaderAppliesDefaultsWhenFileMissing(testInstance *testing.T) {
	directory := testInstance.TempDir()

	defaultValues := map[string]any{
		testLogLevelDefaultKeyConstant:  "info",
		testLogFormatDefaultKeyConstant: "structured",
	}

	var loadedConfiguration loaderTestConfiguration
	metadata, loadError := newLoaderForDirectory(directory).LoadConfiguration("", defaultValues, &loadedConfiguration)

	require.NoError(testInstance, loadError)
	require.Empty(testInstance, metadata.ConfigFileUsed)
	require.Equal(testInstance, "info", loadedConfiguration.Common.LogLevel)
	require.Equal(testInstance, "structured", loadedConfiguration.Common.LogFormat)
}

func TestConfigurationLoaderHonorsEnvironmentOverride(testInstance *testing.T) {
	directory := testInstance.TempDir()
	writeLoaderConfigurationFile(testInstance, directory, testConfigurationContentConstant)

	testInstance.Setenv(testLogLevelEnvironmentNameConst, "debug")

	defaultValues := map[string]any{testLogLevelDefaultKeyConstant: "info"}

	var loadedConfiguration loaderTestConfiguration
	_, loadError := newLoaderForDirectory(directory).LoadConfiguration("", defaultValues, &loadedConfiguration)

	require.NoError(testInstance, loadError)
	require.Equal(testInstance, "debug", loadedConfiguration.Common.LogLevel)
}

func TestConfigurationLoaderRejectsMalformedFile(testInstance *testing.T) {
	directory := testInstance.TempDir()
	writeLoaderConfigurationFile(testInstance, directory, testMalformedContentConstant)

	var loadedConfiguration loaderTestConfiguration
	_, loadError := newLoaderForDirectory(directory).LoadConfiguration("", nil, &loadedConfiguration)

	require.Error(testInstance, loadError)
}
