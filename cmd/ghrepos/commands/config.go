package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Settings is the merged CLI configuration from flags, environment
// (GHREPOS_*) and the config file.
type Settings struct {
	APIURL        string        `json:"api_url"        mapstructure:"api_url"        yaml:"api_url"`
	Token         string        `json:"token,omitempty" mapstructure:"token"         yaml:"token,omitempty"`
	Output        string        `json:"output"         mapstructure:"output"         yaml:"output"`
	HTTPTimeout   time.Duration `json:"http_timeout"   mapstructure:"http_timeout"   yaml:"http_timeout"`
	MutationDelay time.Duration `json:"mutation_delay" mapstructure:"mutation_delay" yaml:"mutation_delay"`
	Retry         RetrySettings `json:"retry"          mapstructure:"retry"          yaml:"retry"`
	Log           LogSettings   `json:"log"            mapstructure:"log"            yaml:"log"`
	Debug         bool          `json:"debug"          mapstructure:"debug"          yaml:"debug"`
	Stats         bool          `json:"stats"          mapstructure:"stats"          yaml:"stats"`
}

// RetrySettings configures the retry policy.
type RetrySettings struct {
	Max        int           `json:"max"         mapstructure:"max"         yaml:"max"`
	Disable    bool          `json:"disable"     mapstructure:"disable"     yaml:"disable"`
	WaitMin    time.Duration `json:"wait_min"    mapstructure:"wait_min"    yaml:"wait_min"`
	WaitMax    time.Duration `json:"wait_max"    mapstructure:"wait_max"    yaml:"wait_max"`
	MaxElapsed time.Duration `json:"max_elapsed" mapstructure:"max_elapsed" yaml:"max_elapsed"`
}

// LogSettings configures diagnostics on stderr.
type LogSettings struct {
	Level  string `json:"level"  mapstructure:"level"  yaml:"level"`
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// flag name -> config key
var flagKeys = map[string]string{
	"api-url":    "api_url",
	"token":      "token",
	"output":     "output",
	"log-level":  "log.level",
	"log-format": "log.format",
	"debug":      "debug",
	"stats":      "stats",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_url", constants.DefaultAPIURL)
	v.SetDefault("token", "")
	v.SetDefault("output", "")
	v.SetDefault("http_timeout", constants.DefaultHTTPTimeout)
	v.SetDefault("mutation_delay", constants.DefaultMutationDelay)
	v.SetDefault("retry.max", constants.DefaultRetryMax)
	v.SetDefault("retry.disable", false)
	v.SetDefault("retry.wait_min", constants.DefaultRetryWaitMin)
	v.SetDefault("retry.wait_max", constants.DefaultRetryWaitMax)
	v.SetDefault("retry.max_elapsed", constants.DefaultRetryMaxElapsed)
	v.SetDefault("log.level", constants.DefaultLogLevel)
	v.SetDefault("log.format", constants.LogFormatConsole)
	v.SetDefault("debug", false)
	v.SetDefault("stats", false)
}

// loadSettings reads the config file (if any), binds flags and environment
// and decodes the result. An explicitly named config file must exist; the
// default one is optional.
func loadSettings(v *viper.Viper, flags *pflag.FlagSet, cfgFile string) (*Settings, error) {
	setDefaults(v)

	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}

		err := v.BindPFlag(key, flag)
		if err != nil {
			return nil, fmt.Errorf("binding flag %s: %w", name, err)
		}
	}

	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	err := readConfigFile(v, cfgFile)
	if err != nil {
		return nil, err
	}

	var settings Settings

	err = v.Unmarshal(&settings)
	if err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	return &settings, nil
}

func readConfigFile(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)

		err := v.ReadInConfig()
		if err != nil {
			return fmt.Errorf("failed to read config file %s: %w", cfgFile, err)
		}

		return nil
	}

	dir, err := configDir()
	if err != nil {
		// No home directory: run on flags and environment alone.
		return nil //nolint:nilerr
	}

	v.AddConfigPath(dir)
	v.SetConfigName(constants.ConfigFileName)
	v.SetConfigType("yml")

	err = v.ReadInConfig()

	var notFound viper.ConfigFileNotFoundError
	if err != nil && !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	return nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}

	return filepath.Join(home, constants.ConfigDirName), nil
}

// clientConfig maps settings to a client configuration.
func (s *Settings) clientConfig(token string, logger ghapi.Logger) *ghapi.Config {
	return &ghapi.Config{
		Token:           token,
		BaseURL:         s.APIURL,
		UserAgent:       "ghrepos/" + constants.Version,
		HTTPTimeout:     s.HTTPTimeout,
		RetryMax:        s.Retry.Max,
		DisableRetry:    s.Retry.Disable,
		RetryWaitMin:    s.Retry.WaitMin,
		RetryWaitMax:    s.Retry.WaitMax,
		RetryMaxElapsed: s.Retry.MaxElapsed,
		MutationDelay:   s.MutationDelay,
		Debug:           s.Debug,
		Logger:          logger,
	}
}

// NewConfigCommand creates the config command group.
func NewConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
		Long:  "Show the effective configuration or write a starter config file",
	}

	cmd.AddCommand(newConfigShowCommand(app))
	cmd.AddCommand(newConfigInitCommand(app))

	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		Long:  "Display the merged configuration from flags, environment and config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shown := *app.settings
			if shown.Token != "" {
				shown.Token = Masked
			}

			format, err := resolveFormat(shown.Output, constants.FormatTable,
				constants.FormatTable, constants.FormatText, constants.FormatJSON, constants.FormatYAML)
			if err != nil {
				return err
			}

			switch format {
			case constants.FormatJSON:
				return writeJSON(app.out, shown)
			case constants.FormatYAML:
				return writeYAML(app.out, shown)
			default:
				source := app.viper.ConfigFileUsed()
				if source == "" {
					source = NotAvailable
				}

				return renderTable(app.out, []string{"Property", "Value"}, [][]string{
					{"Config file", source},
					{"API URL", shown.APIURL},
					{"Token", valueOr(shown.Token, NotAvailable)},
					{"HTTP timeout", shown.HTTPTimeout.String()},
					{"Retries", fmt.Sprintf("%d (disabled: %t)", shown.Retry.Max, shown.Retry.Disable)},
					{"Retry wait", fmt.Sprintf("%s - %s", shown.Retry.WaitMin, shown.Retry.WaitMax)},
					{"Retry budget", shown.Retry.MaxElapsed.String()},
					{"Mutation delay", shown.MutationDelay.String()},
					{"Log", fmt.Sprintf("%s (%s)", shown.Log.Level, shown.Log.Format)},
				})
			}
		},
	}
}

func newConfigInitCommand(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter config file",
		Long:  "Write the default configuration to ~/.ghrepos/config.yml (or --config)",
		Args:  cobra.NoArgs,
		// The target file need not exist yet, so configuration is not loaded.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			path := app.cfgFile
			if path == "" {
				dir, err := configDir()
				if err != nil {
					return err
				}

				path = filepath.Join(dir, constants.ConfigFileName+".yml")
			}

			err := writeDefaultConfig(path, force)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(app.out, "Wrote %s\n", path)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

// defaultConfigYAML is what `config init` writes. Durations are strings so
// the file stays hand-editable.
type defaultConfigYAML struct {
	APIURL        string `yaml:"api_url"`
	Output        string `yaml:"output"`
	HTTPTimeout   string `yaml:"http_timeout"`
	MutationDelay string `yaml:"mutation_delay"`
	Retry         struct {
		Max        int    `yaml:"max"`
		WaitMin    string `yaml:"wait_min"`
		WaitMax    string `yaml:"wait_max"`
		MaxElapsed string `yaml:"max_elapsed"`
	} `yaml:"retry"`
	Log LogSettings `yaml:"log"`
}

func writeDefaultConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%w: %s (use --force to overwrite)", ErrConfigExists, path)
	}

	doc := defaultConfigYAML{
		APIURL:        constants.DefaultAPIURL,
		Output:        constants.FormatText,
		HTTPTimeout:   constants.DefaultHTTPTimeout.String(),
		MutationDelay: constants.DefaultMutationDelay.String(),
		Log:           LogSettings{Level: constants.DefaultLogLevel, Format: constants.LogFormatConsole},
	}
	doc.Retry.Max = constants.DefaultRetryMax
	doc.Retry.WaitMin = constants.DefaultRetryWaitMin.String()
	doc.Retry.WaitMax = constants.DefaultRetryWaitMax.String()
	doc.Retry.MaxElapsed = constants.DefaultRetryMaxElapsed.String()

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	err = os.MkdirAll(filepath.Dir(path), constants.ConfigDirPerm)
	if err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	err = os.WriteFile(path, data, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
