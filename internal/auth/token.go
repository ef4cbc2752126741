// Package auth discovers the access token used by the CLI.
package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	"golang.org/x/term"
)

// Source names where a token was found.
type Source string

// Token sources, in discovery order.
const (
	SourceExplicit Source = "config"
	SourceGHToken  Source = constants.EnvGHToken
	SourceGitHub   Source = constants.EnvGitHubToken
	SourceGHCLI    Source = "gh auth token"
	SourcePrompt   Source = "prompt"
)

// Token is a discovered access token.
type Token struct {
	Value  string
	Source Source
}

// String never reveals the token value.
func (t Token) String() string {
	return fmt.Sprintf("token from %s", t.Source)
}

// Resolver looks for a token in the configured places. The function fields
// default to the real environment, gh binary and terminal; tests replace them.
type Resolver struct {
	Getenv     func(key string) string
	RunCommand func(ctx context.Context, name string, args ...string) ([]byte, error)
	IsTerminal func() bool
	ReadSecret func() ([]byte, error)
	// Prompt receives the interactive prompt text.
	Prompt io.Writer
}

// NewResolver creates a Resolver wired to the process environment.
func NewResolver() *Resolver {
	return &Resolver{
		Getenv:     os.Getenv,
		RunCommand: runCommand,
		IsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) // #nosec G115 -- file descriptors fit in int
		},
		ReadSecret: func() ([]byte, error) {
			return term.ReadPassword(int(os.Stdin.Fd())) // #nosec G115 -- file descriptors fit in int
		},
		Prompt: os.Stderr,
	}
}

// Resolve returns the first token found, checking in order: explicit (from a
// flag or config file), GH_TOKEN, GITHUB_TOKEN, `gh auth token` and finally
// an interactive prompt when stdin is a terminal.
func (r *Resolver) Resolve(ctx context.Context, explicit string) (*Token, error) {
	if value := strings.TrimSpace(explicit); value != "" {
		return &Token{Value: value, Source: SourceExplicit}, nil
	}

	for _, key := range []string{constants.EnvGHToken, constants.EnvGitHubToken} {
		if value := strings.TrimSpace(r.getenv(key)); value != "" {
			return &Token{Value: value, Source: Source(key)}, nil
		}
	}

	token, err := r.fromGHCLI(ctx)
	if err == nil {
		return token, nil
	}

	if errors.Is(err, constants.ErrEmptyGHToken) {
		return nil, err
	}

	if r.IsTerminal != nil && r.ReadSecret != nil && r.IsTerminal() {
		return r.prompt()
	}

	return nil, constants.ErrNoToken
}

func (r *Resolver) getenv(key string) string {
	if r.Getenv == nil {
		return ""
	}

	return r.Getenv(key)
}

// fromGHCLI asks the GitHub CLI for its cached login. A missing binary or a
// logged-out CLI is not an error worth reporting; an empty token from a
// successful run is.
func (r *Resolver) fromGHCLI(ctx context.Context) (*Token, error) {
	if r.RunCommand == nil {
		return nil, exec.ErrNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ShortHTTPTimeout)
	defer cancel()

	out, err := r.RunCommand(ctx, constants.GHCommand, "auth", "token")
	if err != nil {
		return nil, fmt.Errorf("running %s auth token: %w", constants.GHCommand, err)
	}

	value := strings.TrimSpace(string(out))
	if value == "" {
		return nil, constants.ErrEmptyGHToken
	}

	return &Token{Value: value, Source: SourceGHCLI}, nil
}

func (r *Resolver) prompt() (*Token, error) {
	if r.Prompt != nil {
		_, _ = fmt.Fprint(r.Prompt, "GitHub token: ")
	}

	secret, err := r.ReadSecret()

	if r.Prompt != nil {
		_, _ = fmt.Fprintln(r.Prompt)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to read token: %w", err)
	}

	value := strings.TrimSpace(string(secret))
	if value == "" {
		return nil, constants.ErrNoToken
	}

	return &Token{Value: value, Source: SourcePrompt}, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout

	err := cmd.Run()
	if err != nil {
		return nil, err
	}

	return stdout.Bytes(), nil
}
