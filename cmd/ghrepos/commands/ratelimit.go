package commands

import (
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"github.com/spf13/cobra"
)

// RateLimitResource is one bucket of GET /rate_limit.
type RateLimitResource struct {
	Limit     int   `json:"limit"     yaml:"limit"`
	Used      int   `json:"used"      yaml:"used"`
	Remaining int   `json:"remaining" yaml:"remaining"`
	Reset     int64 `json:"reset"     yaml:"reset"`
}

// RateLimitStatus is the GET /rate_limit response.
type RateLimitStatus struct {
	Resources map[string]RateLimitResource `json:"resources" yaml:"resources"`
	Rate      RateLimitResource            `json:"rate"      yaml:"rate"`
}

// NewRateLimitCommand creates the rate-limit command.
func NewRateLimitCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "rate-limit",
		Aliases: []string{"ratelimit", "rl"},
		Short:   "Show API rate limit status",
		Long:    "Display the request quota, usage and reset time of every rate limit bucket",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := resolveFormat(app.settings.Output, constants.FormatTable,
				constants.FormatTable, constants.FormatText, constants.FormatJSON, constants.FormatYAML)
			if err != nil {
				return err
			}

			client, err := app.newClient(cmd.Context())
			if err != nil {
				return err
			}

			status, err := ghapi.GetJSON[RateLimitStatus](cmd.Context(), client, "/rate_limit")
			if err != nil {
				return fmt.Errorf("failed to get rate limit status: %w", err)
			}

			switch format {
			case constants.FormatJSON:
				return writeJSON(app.out, status)
			case constants.FormatYAML:
				return writeYAML(app.out, status)
			default:
				return renderTable(app.out, []string{"Resource", "Limit", "Used", "Remaining", "Resets"}, rateLimitRows(status))
			}
		},
	}
}

func rateLimitRows(status RateLimitStatus) [][]string {
	names := make([]string, 0, len(status.Resources))
	for name := range status.Resources {
		names = append(names, name)
	}

	sort.Strings(names)

	rows := make([][]string, 0, len(names))

	for _, name := range names {
		resource := status.Resources[name]
		rows = append(rows, []string{
			name,
			strconv.Itoa(resource.Limit),
			strconv.Itoa(resource.Used),
			strconv.Itoa(resource.Remaining),
			formatReset(resource.Reset),
		})
	}

	return rows
}

func formatReset(epoch int64) string {
	if epoch <= 0 {
		return NotAvailable
	}

	return time.Unix(epoch, 0).UTC().Format(time.RFC3339)
}
