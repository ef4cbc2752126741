// Package ghapi defines the public types of a request-execution engine for the
// GitHub REST API: requests and responses, the error taxonomy, pagination,
// interceptors and the client configuration.
//
// A client is built with pkg/ghclient and used through the Client interface.
// The engine adds the protocol headers, paces mutating requests, honors the
// server's rate-limit window and retries transient failures, so callers only
// deal with a method, a path and a JSON body.
//
// # Basic usage
//
//	client, err := ghclient.New(&ghapi.Config{Token: os.Getenv("GH_TOKEN")})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	type user struct {
//		Login string `json:"login"`
//	}
//
//	me, err := ghapi.GetJSON[user](ctx, client, "/user")
//
// # Pagination
//
// List endpoints are walked lazily. A page is fetched only when the consumer
// asks for more items than have been yielded:
//
//	repos := ghapi.Paginate[Repository](client, "/users/octocat/repos?per_page=100")
//	for repo, err := range repos.Items(ctx) {
//		if err != nil {
//			return err
//		}
//		fmt.Println(repo.FullName)
//	}
//
// Page bodies may be a JSON array or an object holding exactly one array, as
// returned by the search endpoints; see DecodePage.
//
// # Errors
//
// Every failure from Client.Do is an *Error with one of five kinds:
// KindTransport, KindServer, KindClient, KindRateLimited or KindDecode.
// Transport, server and rate-limited failures are retried before they are
// returned. The default text of an *Error is one line; format it with %+v to
// include the server's response body:
//
//	if err != nil {
//		fmt.Fprintf(os.Stderr, "%+v\n", err)
//	}
//
// Helpers such as IsNotFound and IsRateLimited test the kind through wrapped
// errors.
package ghapi
