package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/dmarenov/ghglance/internal/discovery"
	"github.com/dmarenov/ghglance/internal/execshell"
	"github.com/dmarenov/ghglance/internal/githubauth"
	"github.com/dmarenov/ghglance/internal/gitrepo"
	"github.com/dmarenov/ghglance/internal/glance"
	"github.com/dmarenov/ghglance/internal/metadata"
	"github.com/dmarenov/ghglance/internal/shared"
	"github.com/dmarenov/ghglance/internal/utils"
)

const (
	applicationUseConstant                  = "ghglance [root ...]"
	applicationShortDescriptionConstant     = "Summarize GitHub activity for local git checkouts"
	applicationLongDescriptionConstant      = "ghglance scans directories for git checkouts, resolves their GitHub remotes, and renders open issues, pull requests, stars, releases, and commit recency in one table."
	configFileFlagNameConstant              = "config"
	configFileFlagUsageConstant             = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                = "log-level"
	logLevelFlagUsageConstant               = "Override the configured log level."
	logFormatFlagNameConstant               = "log-format"
	logFormatFlagUsageConstant              = "Override the configured log format (structured or console)."
	rootFlagNameConstant                    = "root"
	rootFlagUsageConstant                   = "Root directory to scan (repeatable)."
	recursiveFlagNameConstant               = "recursive"
	recursiveFlagUsageConstant              = "Scan repositories recursively."
	noColorFlagNameConstant                 = "no-color"
	noColorFlagUsageConstant                = "Disable colored output."
	commonConfigurationKeyConstant          = "common"
	commonLogLevelConfigKeyConstant         = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant        = commonConfigurationKeyConstant + ".log_format"
	toolsConfigurationKeyConstant           = "tools"
	glanceConfigurationKeyConstant          = toolsConfigurationKeyConstant + ".glance"
	glanceRootsConfigKeyConstant            = glanceConfigurationKeyConstant + ".roots"
	glanceRecursiveConfigKeyConstant        = glanceConfigurationKeyConstant + ".recursive"
	glanceNoColorConfigKeyConstant          = glanceConfigurationKeyConstant + ".no_color"
	environmentPrefixConstant               = "GHGLANCE"
	configurationNameConstant               = "config"
	configurationTypeConstant               = "yaml"
	defaultConfigurationSearchPathConstant  = "."
	defaultRootConstant                     = "."
	configurationInitializedMessageConstant = "configuration initialized"
	configurationLogLevelFieldConstant      = "log_level"
	configurationLogFormatFieldConstant     = "log_format"
	configurationFileFieldConstant          = "config_file"
	configurationLoadErrorTemplateConstant  = "unable to load configuration: %w"
	loggerCreationErrorTemplateConstant     = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant         = "unable to flush logger: %w"
	rootNotFoundErrorTemplateConstant       = "root directory not found: %s"
	missingCredentialWarningConstant        = "Warning: GITHUB_TOKEN/GH_TOKEN not set; GitHub API rate limits apply.\n"
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// ApplicationToolsConfiguration holds per-tool configuration sections.
type ApplicationToolsConfiguration struct {
	Glance GlanceConfiguration `mapstructure:"glance"`
}

// GlanceConfiguration stores the persisted defaults of the summary command.
type GlanceConfiguration struct {
	Roots     []string `mapstructure:"roots"`
	Recursive bool     `mapstructure:"recursive"`
	NoColor   bool     `mapstructure:"no_color"`
}

// Application wires the Cobra root command, configuration loader, and structured logger.
type Application struct {
	rootCommand           *cobra.Command
	configurationLoader   *utils.ConfigurationLoader
	loggerFactory         *utils.LoggerFactory
	logger                *zap.Logger
	configuration         ApplicationConfiguration
	configurationMetadata utils.LoadedConfiguration
	configurationFilePath string
	logLevelFlagValue     string
	logFormatFlagValue    string
	rootsFlagValue        []string
	recursiveFlagValue    bool
	noColorFlagValue      bool
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() *Application {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		[]string{defaultConfigurationSearchPathConstant},
	)

	application := &Application{
		configurationLoader: configurationLoader,
		loggerFactory:       utils.NewLoggerFactory(),
		logger:              zap.NewNop(),
	}

	cobraCommand := &cobra.Command{
		Use:           applicationUseConstant,
		Short:         applicationShortDescriptionConstant,
		Long:          applicationLongDescriptionConstant,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			return application.initializeConfiguration(command)
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			return application.runGlance(command, arguments)
		},
	}

	cobraCommand.PersistentFlags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logLevelFlagValue, logLevelFlagNameConstant, "", logLevelFlagUsageConstant)
	cobraCommand.PersistentFlags().StringVar(&application.logFormatFlagValue, logFormatFlagNameConstant, "", logFormatFlagUsageConstant)
	cobraCommand.Flags().StringSliceVar(&application.rootsFlagValue, rootFlagNameConstant, nil, rootFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.recursiveFlagValue, recursiveFlagNameConstant, false, recursiveFlagUsageConstant)
	cobraCommand.Flags().BoolVar(&application.noColorFlagValue, noColorFlagNameConstant, false, noColorFlagUsageConstant)

	application.rootCommand = cobraCommand

	return application
}

// Execute runs the configured Cobra command and ensures logger flushing.
func (application *Application) Execute() error {
	executionError := application.rootCommand.Execute()
	if syncError := application.flushLogger(); syncError != nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and executes the root command.
func Execute() error {
	return NewApplication().Execute()
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	_ = godotenv.Load()

	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelInfo),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		glanceRootsConfigKeyConstant:     []string{},
		glanceRecursiveConfigKeyConstant: false,
		glanceNoColorConfigKeyConstant:   false,
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if application.flagChanged(command, logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}
	if application.flagChanged(command, logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}
	if application.flagChanged(command, recursiveFlagNameConstant) {
		application.configuration.Tools.Glance.Recursive = application.recursiveFlagValue
	}
	if application.flagChanged(command, noColorFlagNameConstant) {
		application.configuration.Tools.Glance.NoColor = application.noColorFlagValue
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(
		utils.LogLevel(application.configuration.Common.LogLevel),
		utils.LogFormat(application.configuration.Common.LogFormat),
	)
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Debug(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	return nil
}

func (application *Application) runGlance(command *cobra.Command, arguments []string) error {
	roots := application.resolveRoots(arguments)
	for _, root := range roots {
		rootInfo, statError := os.Stat(root)
		if statError != nil || !rootInfo.IsDir() {
			return fmt.Errorf(rootNotFoundErrorTemplateConstant, root)
		}
	}

	availability := metadata.DetectBackendAvailability(nil, nil)
	if !availability.HelperAvailable && !availability.TokenPresent {
		fmt.Fprint(os.Stderr, missingCredentialWarningConstant)
	}

	service, assemblyError := application.assembleService(availability)
	if assemblyError != nil {
		return assemblyError
	}

	return service.Run(command.Context(), roots)
}

// resolveRoots prefers positional arguments, then the --root flag, then the
// configured roots, and finally the current directory.
func (application *Application) resolveRoots(arguments []string) []string {
	if len(arguments) > 0 {
		return arguments
	}
	if len(application.rootsFlagValue) > 0 {
		return application.rootsFlagValue
	}
	if len(application.configuration.Tools.Glance.Roots) > 0 {
		return application.configuration.Tools.Glance.Roots
	}
	return []string{defaultRootConstant}
}

func (application *Application) assembleService(availability metadata.BackendAvailability) (*glance.Service, error) {
	shellExecutor, executorError := execshell.NewShellExecutor(application.logger, execshell.NewOSCommandRunner())
	if executorError != nil {
		return nil, executorError
	}

	repositoryManager, managerError := gitrepo.NewRepositoryManager(shellExecutor)
	if managerError != nil {
		return nil, managerError
	}

	formatter := metadata.NewRelativeTimeFormatter(nil)

	var helperClient metadata.RepositoryInfoFetcher
	if availability.HelperAvailable {
		client, clientError := metadata.NewCLIClient(shellExecutor, formatter)
		if clientError != nil {
			return nil, clientError
		}
		helperClient = client
	}

	var graphqlClient metadata.RepositoryInfoFetcher
	var restClient metadata.RepositoryInfoFetcher
	if token, tokenPresent := githubauth.ResolveToken(nil); tokenPresent {
		structuredClient, structuredClientError := metadata.NewGraphQLClient(token, formatter)
		if structuredClientError != nil {
			return nil, structuredClientError
		}
		graphqlClient = structuredClient

		client, clientError := metadata.NewRESTClient(token, formatter)
		if clientError != nil {
			return nil, clientError
		}
		restClient = client
	}

	aggregator := metadata.NewAggregator(metadata.AggregatorDependencies{
		HelperClient:  helperClient,
		GraphQLClient: graphqlClient,
		RESTClient:    restClient,
		Availability:  availability,
		Logger:        application.logger,
	})

	colorEnabled := glance.ShouldColorize(os.Stdout, application.configuration.Tools.Glance.NoColor)
	renderer := glance.NewTableRenderer(os.Stdout, colorEnabled)
	spinner := glance.NewSpinner(os.Stderr, glance.ShouldColorize(os.Stderr, false))

	return glance.NewService(glance.ServiceDependencies{
		Discoverer:   discovery.NewFilesystemRepositoryDiscoverer(application.configuration.Tools.Glance.Recursive),
		RemoteReader: repositoryManager,
		Aggregator:   aggregator,
		Renderer:     renderer,
		Progress:     spinner,
		Output:       shared.NewWriterReporter(os.Stdout),
		Errors:       shared.NewWriterReporter(os.Stderr),
		Logger:       application.logger,
	})
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

func (application *Application) flagChanged(command *cobra.Command, flagName string) bool {
	if command == nil {
		return false
	}

	flagSetsToInspect := []*pflag.FlagSet{
		command.Flags(),
		command.PersistentFlags(),
		command.InheritedFlags(),
	}

	for _, flagSet := range flagSetsToInspect {
		if flagSet == nil {
			continue
		}
		if flagSet.Changed(flagName) {
			return true
		}
	}

	return false
}
