package ghapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strings"

	"github.com/fivetwenty-io/ghapi/internal/constants"
	"github.com/peterhellberg/link"
)

// Paginator walks a list endpoint page by page, following the rel="next"
// link of each response. It fetches nothing until asked and never more than
// one page per call. The first error ends the sequence.
type Paginator[T any] struct {
	client Client
	next   string
	done   bool
	// pending is returned by the next NextPage call before the sequence ends.
	pending error
	pages   int
}

// NewPaginator creates a paginator starting at path.
func NewPaginator[T any](client Client, path string) *Paginator[T] {
	return &Paginator[T]{
		client: client,
		next:   path,
	}
}

// Paginate is shorthand for NewPaginator.
func Paginate[T any](client Client, path string) *Paginator[T] {
	return NewPaginator[T](client, path)
}

// Done reports whether NextPage has nothing left to return.
func (p *Paginator[T]) Done() bool {
	return p.done && p.pending == nil
}

// Pages returns how many pages have been fetched so far.
func (p *Paginator[T]) Pages() int {
	return p.pages
}

// NextPage fetches and decodes the next page. It returns ErrNoMorePages once
// the sequence is exhausted or has failed.
func (p *Paginator[T]) NextPage(ctx context.Context) (*Page[T], error) {
	if p.pending != nil {
		err := p.pending
		p.pending = nil

		return nil, err
	}

	if p.done {
		return nil, ErrNoMorePages
	}

	resp, err := p.client.Do(ctx, &Request{Method: MethodGet, Path: p.next})
	if err != nil {
		p.done = true

		return nil, err
	}

	p.pages++

	page, err := DecodePage[T](resp.Body)
	if err != nil {
		p.done = true

		return nil, NewDecodeError(MethodGet, resp, err)
	}

	next := NextLink(resp.Header)
	page.NextURL = next

	switch {
	case next == "":
		p.done = true
	case !sameOrigin(p.client.BaseURL(), next):
		p.done = true
		p.pending = NewDecodeError(MethodGet, resp, fmt.Errorf("%w: %s", ErrForeignNextLink, next))
	default:
		p.next = next
	}

	return page, nil
}

// Items returns the items of every page as a lazy sequence. A failure is
// yielded once as the error of the final pair.
func (p *Paginator[T]) Items(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for !p.Done() {
			page, err := p.NextPage(ctx)
			if errors.Is(err, ErrNoMorePages) {
				return
			}

			if err != nil {
				var zero T

				yield(zero, err)

				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// All collects the items of every remaining page. On failure the items
// gathered so far are returned along with the error.
func (p *Paginator[T]) All(ctx context.Context) ([]T, error) {
	var all []T

	for item, err := range p.Items(ctx) {
		if err != nil {
			return all, err
		}

		all = append(all, item)
	}

	return all, nil
}

// DecodePage decodes a list response body. The body is either a JSON array
// of items or an object with exactly one array-valued field holding the
// items, as search endpoints return; total_count and incomplete_results are
// read when present and other fields are ignored.
func DecodePage[T any](body []byte) (*Page[T], error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrUnexpectedPageShape)
	}

	page := &Page[T]{}

	switch trimmed[0] {
	case '[':
		err := json.Unmarshal(trimmed, &page.Items)
		if err != nil {
			return nil, fmt.Errorf("decoding page items: %w", err)
		}

		return page, nil
	case '{':
		return decodeObjectPage(trimmed, page)
	default:
		return nil, fmt.Errorf("%w: expected a JSON array or object", ErrUnexpectedPageShape)
	}
}

func decodeObjectPage[T any](body []byte, page *Page[T]) (*Page[T], error) {
	var fields map[string]json.RawMessage

	err := json.Unmarshal(body, &fields)
	if err != nil {
		return nil, fmt.Errorf("decoding page: %w", err)
	}

	var (
		list  json.RawMessage
		lists []string
	)

	for key, raw := range fields {
		value := bytes.TrimSpace(raw)
		if len(value) > 0 && value[0] == '[' {
			list = value
			lists = append(lists, key)

			continue
		}

		switch key {
		case "total_count":
			var total int64
			if json.Unmarshal(value, &total) == nil {
				page.TotalCount = &total
			}
		case "incomplete_results":
			var incomplete bool
			if json.Unmarshal(value, &incomplete) == nil {
				page.IncompleteResults = &incomplete
			}
		}
	}

	if len(lists) != 1 {
		return nil, fmt.Errorf("%w: expected exactly one list field, found %d", ErrUnexpectedPageShape, len(lists))
	}

	err = json.Unmarshal(list, &page.Items)
	if err != nil {
		return nil, fmt.Errorf("decoding page field %q: %w", lists[0], err)
	}

	return page, nil
}

// NextLink returns the rel="next" target of the Link header, or "".
func NextLink(header http.Header) string {
	if header.Get(constants.HeaderLink) == "" {
		return ""
	}

	next, ok := link.ParseHeader(header)["next"]
	if !ok || next == nil {
		return ""
	}

	return next.URI
}

// sameOrigin reports whether target may be requested with the credentials
// for base. Relative targets resolve against base and always qualify.
func sameOrigin(base, target string) bool {
	targetURL, err := url.Parse(target)
	if err != nil {
		return false
	}

	if !targetURL.IsAbs() {
		return true
	}

	baseURL, err := url.Parse(base)
	if err != nil {
		return false
	}

	return strings.EqualFold(baseURL.Scheme, targetURL.Scheme) && strings.EqualFold(baseURL.Host, targetURL.Host)
}
