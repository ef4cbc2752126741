package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/fivetwenty-io/ghapi/pkg/ghapi"
	"golang.org/x/oauth2"
)

// requestBuilder turns logical requests into outbound requests carrying the
// protocol headers and credential.
type requestBuilder struct {
	baseURL   string
	token     *oauth2.Token
	userAgent string
}

func newRequestBuilder(baseURL, token, userAgent string) *requestBuilder {
	builder := &requestBuilder{
		baseURL:   baseURL,
		userAgent: userAgent,
	}

	if token != "" {
		builder.token = &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
	}

	return builder
}

func (b *requestBuilder) build(req *ghapi.Request) (*ghapi.OutboundRequest, error) {
	method := req.Method
	if method == "" {
		method = ghapi.MethodGet
	}

	if !method.Valid() {
		return nil, fmt.Errorf("%w: %q", ghapi.ErrInvalidMethod, string(method))
	}

	target, err := b.resolve(req.Path, req.Query)
	if err != nil {
		return nil, err
	}

	header := make(http.Header)
	for key, value := range req.Headers {
		header.Set(key, value)
	}

	var body []byte

	if req.Body != nil {
		body, err = encodeBody(req.Body)
		if err != nil {
			return nil, err
		}

		header.Set(constants.HeaderContentType, constants.ContentTypeJSON)
	}

	out := &ghapi.OutboundRequest{
		Method: method,
		URL:    target,
		Header: header,
		Body:   body,
	}

	b.applyProtocolHeaders(out)

	return out, nil
}

// resolve joins path onto the base URL. Absolute URLs, such as next-page
// links, are returned untouched unless query parameters are added.
func (b *requestBuilder) resolve(path string, query url.Values) (string, error) {
	target := path
	if !isAbsoluteURL(path) {
		target = strings.TrimRight(b.baseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}

	if len(query) == 0 {
		return target, nil
	}

	parsed, err := url.Parse(target)
	if err != nil {
		return "", fmt.Errorf("parsing request URL: %w", err)
	}

	values := parsed.Query()
	for key, vals := range query {
		values[key] = vals
	}

	parsed.RawQuery = values.Encode()

	return parsed.String(), nil
}

// applyProtocolHeaders sets the headers every request must carry. It runs
// after request interceptors so they cannot be overridden.
func (b *requestBuilder) applyProtocolHeaders(out *ghapi.OutboundRequest) {
	if out.Header == nil {
		out.Header = make(http.Header)
	}

	out.Header.Set(constants.HeaderAccept, constants.MediaType)
	out.Header.Set(constants.HeaderAPIVersion, constants.APIVersion)
	out.Header.Set(constants.HeaderUserAgent, b.userAgent)

	if b.token != nil {
		b.token.SetAuthHeader(&http.Request{Header: out.Header})
	} else {
		out.Header.Del(constants.HeaderAuthorization)
	}
}

func encodeBody(body any) ([]byte, error) {
	switch typed := body.(type) {
	case []byte:
		return typed, nil
	case json.RawMessage:
		return typed, nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ghapi.ErrEncodeBody, err)
	}

	return data, nil
}

func isAbsoluteURL(path string) bool {
	return strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://")
}
