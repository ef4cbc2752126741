// Package commands implements the ghrepos command line.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fivetwenty-io/ghapi/internal/auth"
	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/fivetwenty-io/ghapi/internal/logging"
	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"github.com/fivetwenty-io/ghapi/pkg/ghclient"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BuildInfo describes the binary.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// App carries per-invocation state shared by the commands.
type App struct {
	build    BuildInfo
	out      io.Writer
	errOut   io.Writer
	viper    *viper.Viper
	resolver *auth.Resolver
	cfgFile  string

	settings *Settings
	logger   ghapi.Logger
	metrics  *ghapi.MetricsCollector
}

// NewApp creates an App writing results to out and diagnostics to errOut.
func NewApp(build BuildInfo, out, errOut io.Writer) *App {
	return &App{
		build:    build,
		out:      out,
		errOut:   errOut,
		viper:    viper.New(),
		resolver: auth.NewResolver(),
		metrics:  ghapi.NewMetricsCollector(),
	}
}

// Execute runs the command line with args and returns the exit code. On
// failure the error and, for API errors, the response body are written to
// errOut.
func Execute(ctx context.Context, build BuildInfo, args []string, out, errOut io.Writer) int {
	app := NewApp(build, out, errOut)

	root := NewRootCommand(app)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)

	if app.settings != nil && app.settings.Stats {
		statsErr := writeStats(errOut, app.metrics)
		if statsErr != nil && err == nil {
			err = statsErr
		}
	}

	if err != nil {
		reportError(errOut, err)

		return 1
	}

	return 0
}

// reportError writes the terse error, then the indented response body when
// the failure carries one.
func reportError(w io.Writer, err error) {
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)

	apiErr, ok := ghapi.AsError(err)
	if !ok {
		return
	}

	if detail := apiErr.Detail(); detail != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", detail)
	}
}

// NewRootCommand creates the ghrepos command tree.
func NewRootCommand(app *App) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "ghrepos [flags] <owner>",
		Short: "List a GitHub user's repositories",
		Long: `List the repositories of a GitHub user or organization.

Repositories are fetched page by page and printed as they arrive. Requests are
paced to stay within the API's rate limits and retried on transient failures.`,
		Example: `  ghrepos octocat
  ghrepos --json octocat
  ghrepos rate-limit`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := app.settings.Output
			if jsonOutput {
				format = constants.FormatJSON
			}

			return runRepos(cmd.Context(), app, args[0], format)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVarP(&app.cfgFile, "config", "c", "", "config file (default is $HOME/.ghrepos/config.yml)")
	flags.String("api-url", "", "API root URL (default https://api.github.com)")
	flags.StringP("token", "t", "", "access token (default: GH_TOKEN, GITHUB_TOKEN or the gh CLI login)")
	flags.StringP("output", "o", "", "output format (text, table, json, yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("log-format", "", "log format (console, json)")
	flags.Bool("debug", false, "log HTTP requests and responses")
	flags.Bool("stats", false, "print per-endpoint request statistics to stderr")

	cmd.Flags().BoolVarP(&jsonOutput, "json", "J", false, "print one JSON object per line")

	cmd.AddCommand(NewRateLimitCommand(app))
	cmd.AddCommand(NewVersionCommand(app))
	cmd.AddCommand(NewConfigCommand(app))

	return cmd
}

// setup loads settings and builds the logger.
func (a *App) setup(cmd *cobra.Command) error {
	settings, err := loadSettings(a.viper, cmd.Flags(), a.cfgFile)
	if err != nil {
		return err
	}

	level := settings.Log.Level
	if settings.Debug {
		level = "debug"
	}

	logger, err := logging.New(logging.Options{
		Level:  level,
		Format: settings.Log.Format,
		Color:  a.errOut == os.Stderr && logging.StderrIsTerminal(),
		Out:    a.errOut,
	})
	if err != nil {
		return err
	}

	a.settings = settings
	a.logger = logger

	if a.viper.ConfigFileUsed() != "" {
		logger.Debug("Using config file", map[string]interface{}{"path": a.viper.ConfigFileUsed()})
	}

	return nil
}

// newClient discovers a token and builds an API client.
func (a *App) newClient(ctx context.Context) (ghapi.Client, error) {
	token, err := a.resolver.Resolve(ctx, a.settings.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch GitHub token: %w", err)
	}

	a.logger.Debug("Using access token", map[string]interface{}{"source": string(token.Source)})

	config := a.settings.clientConfig(token.Value, a.logger)
	if a.settings.Stats {
		config.ResponseInterceptors = append(config.ResponseInterceptors, ghapi.MetricsResponseInterceptor(a.metrics))
	}

	client, err := ghclient.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return client, nil
}
