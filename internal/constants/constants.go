package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// API endpoint and protocol headers.
const (
	// DefaultAPIURL is the base URL of the hosted REST API.
	DefaultAPIURL = "https://api.github.com"

	// MediaType is sent in the Accept header of every request.
	MediaType = "application/vnd.github+json"

	// APIVersion pins the REST API version sent with every request.
	APIVersion = "2022-11-28"

	// DefaultUserAgent is used when no User-Agent is configured.
	DefaultUserAgent = "ghapi/" + Version

	// Version is the library version reported in the default User-Agent.
	Version = "0.3.0"
)

// Header names.
const (
	HeaderAccept        = "Accept"
	HeaderAPIVersion    = "X-GitHub-Api-Version"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
	HeaderLink          = "Link"
	HeaderRetryAfter    = "Retry-After"

	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitUsed      = "X-RateLimit-Used"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRateLimitResource  = "X-RateLimit-Resource"

	// ContentTypeJSON is the Content-Type of request bodies.
	ContentTypeJSON = "application/json"
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for a single HTTP exchange.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as `gh auth token`.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry and pacing limits.
const (
	// DefaultRetryMax is the default number of retries after the first attempt.
	DefaultRetryMax = 4

	// DefaultRetryWaitMin is the first backoff delay.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax caps the backoff delay.
	DefaultRetryWaitMax = 30 * time.Second

	// DefaultRetryMaxElapsed bounds the total time spent retrying one request.
	DefaultRetryMaxElapsed = 5 * time.Minute

	// DefaultMutationDelay is the minimum spacing between mutating requests.
	DefaultMutationDelay = 1 * time.Second

	// RateLimitSlack is added to server-provided waits to absorb clock skew.
	RateLimitSlack = 1 * time.Second
)

// DefaultPerPage is the page size requested by list commands.
const DefaultPerPage = 100

// Error display.
const (
	// MaxErrorMessageLength truncates the server message in terse error text.
	MaxErrorMessageLength = 200

	// ErrorBodyIndent prefixes each body line in the extended error display.
	ErrorBodyIndent = "    "
)

// Output formats.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Logging.
const (
	LogFormatConsole = "console"
	LogFormatJSON    = "json"
	DefaultLogLevel  = "warn"
)

// Credential discovery.
const (
	// EnvGHToken is checked first for an access token.
	EnvGHToken = "GH_TOKEN"

	// EnvGitHubToken is checked second for an access token.
	EnvGitHubToken = "GITHUB_TOKEN"

	// GHCommand is the GitHub CLI binary consulted for a cached login.
	GHCommand = "gh"
)

// CLI configuration.
const (
	// ConfigDirName is the per-user configuration directory under $HOME.
	ConfigDirName = ".ghrepos"

	// ConfigFileName is the configuration file name without extension.
	ConfigFileName = "config"

	// EnvPrefix prefixes environment variables read by the CLI.
	EnvPrefix = "GHREPOS"
)
