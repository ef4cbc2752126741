package commands

import (
	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command
func NewVersionCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Display version information",
		Long:  "Display detailed version information about the ghrepos CLI",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			type VersionInfo struct {
				Version    string `json:"version"     yaml:"version"`
				Commit     string `json:"commit"      yaml:"commit"`
				Built      string `json:"built"       yaml:"built"`
				Library    string `json:"library"     yaml:"library"`
				APIVersion string `json:"api_version" yaml:"api_version"`
			}

			versionInfo := VersionInfo{
				Version:    app.build.Version,
				Commit:     app.build.Commit,
				Built:      app.build.Date,
				Library:    constants.Version,
				APIVersion: constants.APIVersion,
			}

			format, err := resolveFormat(app.settings.Output, constants.FormatTable,
				constants.FormatTable, constants.FormatText, constants.FormatJSON, constants.FormatYAML)
			if err != nil {
				return err
			}

			switch format {
			case constants.FormatJSON:
				return writeJSON(app.out, versionInfo)
			case constants.FormatYAML:
				return writeYAML(app.out, versionInfo)
			default:
				return renderTable(app.out, []string{"Property", "Value"}, [][]string{
					{"Version", versionInfo.Version},
					{"Commit", versionInfo.Commit},
					{"Built", versionInfo.Built},
					{"Library", versionInfo.Library},
					{"API version", versionInfo.APIVersion},
				})
			}
		},
	}
}
