package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"gopkg.in/yaml.v3"
)

// Repository is the subset of a repository the CLI prints.
type Repository struct {
	FullName        string   `json:"full_name"        yaml:"full_name"`
	Description     *string  `json:"description"      yaml:"description"`
	Topics          []string `json:"topics"           yaml:"topics"`
	HTMLURL         string   `json:"html_url"         yaml:"html_url"`
	StargazersCount uint64   `json:"stargazers_count" yaml:"stargazers_count"`
	ForksCount      uint64   `json:"forks_count"      yaml:"forks_count"`
	Homepage        *string  `json:"homepage"         yaml:"homepage"`
	Language        *string  `json:"language"         yaml:"language"`
}

// reposPath is the listing endpoint for owner.
func reposPath(owner string) string {
	params := ghapi.NewQueryParams().WithPerPage(constants.DefaultPerPage)

	return ghapi.PathWithQuery("/users/"+url.PathEscape(owner)+"/repos", params)
}

// runRepos streams owner's repositories to app.out as pages arrive.
func runRepos(ctx context.Context, app *App, owner, format string) error {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return constants.ErrOwnerRequired
	}

	format, err := resolveFormat(format, constants.FormatText,
		constants.FormatText, constants.FormatTable, constants.FormatJSON, constants.FormatYAML)
	if err != nil {
		return err
	}

	client, err := app.newClient(ctx)
	if err != nil {
		return err
	}

	printer := newRepoPrinter(app.out, format)

	for repo, err := range ghapi.Paginate[Repository](client, reposPath(owner)).Items(ctx) {
		if err != nil {
			return fmt.Errorf("failed to list repositories for %s: %w", owner, err)
		}

		err = printer.print(repo)
		if err != nil {
			return err
		}
	}

	return printer.close()
}

type repoPrinter struct {
	w       io.Writer
	format  string
	printed int
	json    *json.Encoder
	yaml    *yaml.Encoder
}

func newRepoPrinter(w io.Writer, format string) *repoPrinter {
	printer := &repoPrinter{w: w, format: format}

	switch format {
	case constants.FormatJSON:
		printer.json = json.NewEncoder(w)
	case constants.FormatYAML:
		printer.yaml = yaml.NewEncoder(w)
	}

	return printer
}

func (p *repoPrinter) print(repo Repository) error {
	defer func() { p.printed++ }()

	switch {
	case p.json != nil:
		err := p.json.Encode(repo)
		if err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}

		return nil
	case p.yaml != nil:
		err := p.yaml.Encode(repo)
		if err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}

		return nil
	default:
		return p.printText(repo)
	}
}

func (p *repoPrinter) printText(repo Repository) error {
	var b strings.Builder

	if p.printed > 0 {
		b.WriteString("\n")
	}

	topics := Empty
	if len(repo.Topics) > 0 {
		topics = strings.Join(repo.Topics, ", ")
	}

	fmt.Fprintf(&b, "Repository: %s\n", repo.FullName)
	fmt.Fprintf(&b, "URL: %s\n", repo.HTMLURL)
	fmt.Fprintf(&b, "Description: %s\n", deref(repo.Description))
	fmt.Fprintf(&b, "Language: %s\n", deref(repo.Language))
	fmt.Fprintf(&b, "Homepage: %s\n", deref(repo.Homepage))
	fmt.Fprintf(&b, "Topics: %s\n", topics)
	fmt.Fprintf(&b, "Stars: %d\n", repo.StargazersCount)
	fmt.Fprintf(&b, "Forks: %d\n", repo.ForksCount)

	_, err := io.WriteString(p.w, b.String())
	if err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (p *repoPrinter) close() error {
	if p.yaml == nil {
		return nil
	}

	err := p.yaml.Close()
	if err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

// deref renders a nullable string, using "-" for null or empty.
func deref(s *string) string {
	if s == nil {
		return Empty
	}

	return valueOr(*s, Empty)
}
