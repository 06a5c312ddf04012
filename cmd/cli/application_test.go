package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmarenov/ghglance/internal/utils"
)

const (
	testConfigFileNameConstant        = "config.yaml"
	testConfigFilePermissionsConstant = 0o644
	testConfigContentTemplateConstant = "common:\n  log_level: %s\ntools:\n  glance:\n    recursive: true\n    no_color: true\n    roots:\n      - /tmp/projects\n"
)

func writeConfigurationFile(testInstance *testing.T, logLevel string) string {
	testInstance.Helper()

	configurationDirectory := testInstance.TempDir()
	configurationFilePath := filepath.Join(configurationDirectory, testConfigFileNameConstant)
	configurationContent := fmt.Sprintf(testConfigContentTemplateConstant, logLevel)
	writeError := os.WriteFile(configurationFilePath, []byte(configurationContent), testConfigFilePermissionsConstant)
	require.NoError(testInstance, writeError)
	return configurationFilePath
}

func TestInitializeConfigurationAppliesFileValues(testInstance *testing.T) {
	application := NewApplication()
	application.configurationFilePath = writeConfigurationFile(testInstance, string(utils.LogLevelWarn))

	initializationError := application.initializeConfiguration(application.rootCommand)

	require.NoError(testInstance, initializationError)
	require.Equal(testInstance, string(utils.LogLevelWarn), application.configuration.Common.LogLevel)
	require.True(testInstance, application.configuration.Tools.Glance.Recursive)
	require.True(testInstance, application.configuration.Tools.Glance.NoColor)
	require.Equal(testInstance, []string{"/tmp/projects"}, application.configuration.Tools.Glance.Roots)
}

func TestInitializeConfigurationFlagOverridesFile(testInstance *testing.T) {
	application := NewApplication()
	application.configurationFilePath = writeConfigurationFile(testInstance, string(utils.LogLevelWarn))

	flagError := application.rootCommand.PersistentFlags().Set(logLevelFlagNameConstant, string(utils.LogLevelDebug))
	require.NoError(testInstance, flagError)
	recursiveFlagError := application.rootCommand.Flags().Set(recursiveFlagNameConstant, "false")
	require.NoError(testInstance, recursiveFlagError)

	initializationError := application.initializeConfiguration(application.rootCommand)

	require.NoError(testInstance, initializationError)
	require.Equal(testInstance, string(utils.LogLevelDebug), application.configuration.Common.LogLevel)
	require.False(testInstance, application.configuration.Tools.Glance.Recursive)
}

func TestInitializeConfigurationDefaults(testInstance *testing.T) {
	application := NewApplication()

	initializationError := application.initializeConfiguration(application.rootCommand)

	require.NoError(testInstance, initializationError)
	require.Equal(testInstance, string(utils.LogLevelInfo), application.configuration.Common.LogLevel)
	require.Equal(testInstance, string(utils.LogFormatStructured), application.configuration.Common.LogFormat)
	require.False(testInstance, application.configuration.Tools.Glance.Recursive)
}

func TestResolveRootsPrecedence(testInstance *testing.T) {
	testCases := []struct {
		name            string
		arguments       []string
		flagRoots       []string
		configuredRoots []string
		expectedRoots   []string
	}{
		{
			name:            "positional_arguments_win",
			arguments:       []string{"/dev"},
			flagRoots:       []string{"/flagged"},
			configuredRoots: []string{"/configured"},
			expectedRoots:   []string{"/dev"},
		},
		{
			name:            "flag_beats_configuration",
			flagRoots:       []string{"/flagged"},
			configuredRoots: []string{"/configured"},
			expectedRoots:   []string{"/flagged"},
		},
		{
			name:            "configuration_beats_default",
			configuredRoots: []string{"/configured"},
			expectedRoots:   []string{"/configured"},
		},
		{
			name:          "current_directory_fallback",
			expectedRoots: []string{"."},
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			application := NewApplication()
			application.rootsFlagValue = testCase.flagRoots
			application.configuration.Tools.Glance.Roots = testCase.configuredRoots

			require.Equal(testInstance, testCase.expectedRoots, application.resolveRoots(testCase.arguments))
		})
	}
}

func TestRunGlanceRejectsMissingRoot(testInstance *testing.T) {
	application := NewApplication()
	missingRoot := filepath.Join(testInstance.TempDir(), "does-not-exist")

	runError := application.runGlance(application.rootCommand, []string{missingRoot})

	require.Error(testInstance, runError)
	require.Contains(testInstance, runError.Error(), missingRoot)
}
