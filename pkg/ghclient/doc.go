// Package ghclient provides the primary entry point for constructing a
// GitHub REST API client that implements the ghapi.Client interface.
//
// It applies defaults, validates the configuration and wires the request
// engine (request building, rate limiting, retries and interceptors) behind
// the interfaces defined in the ghapi package.
//
// Quick start
//
//	import (
//	  "context"
//	  "log"
//	  "os"
//
//	  "github.com/fivetwenty-io/ghapi/pkg/ghapi"
//	  "github.com/fivetwenty-io/ghapi/pkg/ghclient"
//	)
//
//	type repo struct {
//	  FullName string `json:"full_name"`
//	}
//
//	func example() {
//	  ctx := context.Background()
//
//	  cli, err := ghclient.NewWithToken(os.Getenv("GITHUB_TOKEN"))
//	  if err != nil { log.Fatal(err) }
//
//	  repos, err := ghapi.Paginate[repo](cli, "/users/octocat/repos?per_page=100").All(ctx)
//	  if err != nil { log.Fatalf("%+v", err) }
//	  _ = repos
//	}
//
// # Configuration
//
// Every ghapi.Config field except Token is optional. Zero values select the
// defaults: https://api.github.com, 4 retries with backoff between 1s and 30s
// bounded by 5 minutes in total, 1s between mutating requests and a 30s
// timeout per HTTP exchange. Set DisableRetry to send each request once.
//
// # Helpers
//
// NewWithToken and NewWithEndpoint wrap New for the common cases.
package ghclient
