package constants

import "errors"

// Credential errors.
var (
	ErrNoToken      = errors.New("no access token found; set GH_TOKEN or GITHUB_TOKEN, run 'gh auth login', or pass --token")
	ErrEmptyGHToken = errors.New("gh auth token returned an empty token")
)

// Configuration errors.
var (
	ErrInvalidOutputFormat = errors.New("invalid output format")
	ErrInvalidLogFormat    = errors.New("invalid log format")
	ErrOwnerRequired       = errors.New("owner is required")
)
