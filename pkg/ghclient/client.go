// Package ghclient provides the main entry point for creating GitHub API clients
package ghclient

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	ghhttp "github.com/fivetwenty-io/ghapi/internal/http"
	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"github.com/go-playground/validator/v10"
)

// New creates a new GitHub API client from config. Zero-valued fields take
// the package defaults; config itself is not modified.
func New(config *ghapi.Config) (ghapi.Client, error) {
	if config == nil {
		return nil, ghapi.ErrConfigRequired
	}

	cfg := *config
	applyDefaults(&cfg)

	err := validate(&cfg)
	if err != nil {
		return nil, err
	}

	return ghhttp.NewClient(cfg.BaseURL, cfg.Token, options(&cfg)...), nil
}

// NewWithToken creates a client for the public API with default settings.
func NewWithToken(token string) (ghapi.Client, error) {
	return New(&ghapi.Config{Token: token})
}

// NewWithEndpoint creates a client for a GitHub Enterprise Server API root,
// e.g. https://github.example.com/api/v3.
func NewWithEndpoint(endpoint, token string) (ghapi.Client, error) {
	return New(&ghapi.Config{BaseURL: endpoint, Token: token})
}

func applyDefaults(cfg *ghapi.Config) {
	cfg.Token = strings.TrimSpace(cfg.Token)

	if cfg.BaseURL == "" {
		cfg.BaseURL = constants.DefaultAPIURL
	}

	cfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")

	if cfg.UserAgent == "" {
		cfg.UserAgent = constants.DefaultUserAgent
	}

	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = constants.DefaultHTTPTimeout
	}

	if cfg.RetryMax == 0 {
		cfg.RetryMax = constants.DefaultRetryMax
	}

	if cfg.RetryWaitMin == 0 {
		cfg.RetryWaitMin = constants.DefaultRetryWaitMin
	}

	if cfg.RetryWaitMax == 0 {
		cfg.RetryWaitMax = max(constants.DefaultRetryWaitMax, cfg.RetryWaitMin)
	}

	if cfg.RetryMaxElapsed == 0 {
		cfg.RetryMaxElapsed = constants.DefaultRetryMaxElapsed
	}

	if cfg.MutationDelay == 0 {
		cfg.MutationDelay = constants.DefaultMutationDelay
	}
}

func validate(cfg *ghapi.Config) error {
	err := validator.New().Struct(cfg)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fmt.Errorf("validating config: %w", err)
	}

	messages := make([]string, 0, len(validationErrors))

	for _, fe := range validationErrors {
		if fe.Field() == "Token" {
			return ghapi.ErrTokenRequired
		}

		messages = append(messages, fieldMessage(fe))
	}

	return fmt.Errorf("%w: %s", ghapi.ErrInvalidConfig, strings.Join(messages, "; "))
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "url":
		return fe.Field() + " must be a valid URL"
	case "gte":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "gtefield":
		return fmt.Sprintf("%s must not be less than %s", fe.Field(), fe.Param())
	default:
		return fe.Field() + " failed validation"
	}
}

func options(cfg *ghapi.Config) []ghhttp.Option {
	retryMax := cfg.RetryMax
	if cfg.DisableRetry {
		retryMax = 0
	}

	opts := []ghhttp.Option{
		ghhttp.WithUserAgent(cfg.UserAgent),
		ghhttp.WithHTTPTimeout(cfg.HTTPTimeout),
		ghhttp.WithRetryConfig(retryMax, cfg.RetryWaitMin, cfg.RetryWaitMax),
		ghhttp.WithRetryMaxElapsed(cfg.RetryMaxElapsed),
		ghhttp.WithMutationDelay(cfg.MutationDelay),
		ghhttp.WithDebug(cfg.Debug),
		ghhttp.WithLogger(cfg.Logger),
		ghhttp.WithClock(cfg.Clock),
	}

	if cfg.Transport != nil {
		opts = append(opts, ghhttp.WithTransport(cfg.Transport))
	}

	for _, interceptor := range cfg.RequestInterceptors {
		opts = append(opts, ghhttp.WithRequestInterceptor(interceptor))
	}

	for _, interceptor := range cfg.ResponseInterceptors {
		opts = append(opts, ghhttp.WithResponseInterceptor(interceptor))
	}

	return opts
}
