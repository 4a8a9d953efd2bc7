package pagination

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Gateway is the request surface the walker needs from the API client.
type Gateway interface {
	RequestList(ctx context.Context, method, endpoint string, query url.Values, body any) ([]map[string]any, error)
}

// Walker lazily produces pages from a paginated endpoint, advancing the
// page number automatically.
type Walker struct {
	gateway Gateway
	logger  zerolog.Logger
}

// NewWalker creates a walker over the given gateway.
func NewWalker(gateway Gateway) *Walker {
	return &Walker{
		gateway: gateway,
		logger:  log.With().Str("component", "pagination").Logger(),
	}
}

// Walk starts a lazy page sequence at params.PageNumber. Each call to
// Next fetches one page. The sequence ends on an empty page, a page
// shorter than the requested size, reaching maxPages (0 means no cap),
// or a gateway error. A finished sequence cannot be resumed; start a
// new Walk to fetch again.
func (w *Walker) Walk(ctx context.Context, endpoint string, params PageParams, method string, body any, maxPages int) *Pages {
	params = params.WithDefaults()
	if method == "" {
		method = "GET"
	}

	return &Pages{
		walker:   w,
		ctx:      ctx,
		endpoint: endpoint,
		params:   params,
		method:   method,
		body:     body,
		maxPages: maxPages,
		page:     params.PageNumber,
		mayHaveMore: true,
	}
}

// Collect drains a walk into one ordered list. Items arrive in upstream
// order and stay that way. If itemLimit > 0, collection stops once the
// accumulated count reaches it and the result is truncated to exactly
// itemLimit items; the walk always fetches whole pages, so one full
// page past the threshold may be requested and discarded. A failure on
// any page aborts the whole collection.
func (w *Walker) Collect(ctx context.Context, endpoint string, params PageParams, method string, body any, maxPages, itemLimit int) ([]map[string]any, error) {
	var all []map[string]any

	pages := w.Walk(ctx, endpoint, params, method, body, maxPages)
	for pages.Next() {
		all = append(all, pages.Items()...)

		if itemLimit > 0 && len(all) >= itemLimit {
			all = all[:itemLimit]
			break
		}
	}
	if err := pages.Err(); err != nil {
		return nil, err
	}

	w.logger.Debug().
		Str("endpoint", endpoint).
		Int("items", len(all)).
		Msg("Collection complete")

	return all, nil
}

// Pages is a finite, non-restartable lazy sequence of pages. Use it
// like a scanner:
//
//	pages := walker.Walk(ctx, "studies", params, "GET", nil, 0)
//	for pages.Next() {
//		handle(pages.Items())
//	}
//	if err := pages.Err(); err != nil { ... }
type Pages struct {
	walker   *Walker
	ctx      context.Context
	endpoint string
	params   PageParams
	method   string
	body     any
	maxPages int

	page        int
	fetched     int
	mayHaveMore bool
	items       []map[string]any
	err         error
	done        bool
}

// Next fetches the next page. It returns false when the sequence is
// exhausted or a fetch failed; check Err afterwards.
func (p *Pages) Next() bool {
	if p.done || p.err != nil {
		return false
	}
	if !p.mayHaveMore {
		p.done = true
		return false
	}
	if p.maxPages > 0 && p.fetched >= p.maxPages {
		p.done = true
		return false
	}

	params := p.params
	params.PageNumber = p.page

	items, err := p.walker.gateway.RequestList(p.ctx, p.method, p.endpoint, params.Query(), p.body)
	if err != nil {
		// Propagate immediately; no partial page is yielded.
		p.err = err
		p.items = nil
		p.done = true
		return false
	}

	if len(items) == 0 {
		// Primary termination signal: the upstream gives no total
		// count, so an empty page is the definitive end.
		p.done = true
		return false
	}

	p.walker.logger.Debug().
		Str("endpoint", p.endpoint).
		Int("page", p.page).
		Int("items", len(items)).
		Msg("Fetched page")

	p.items = items
	p.mayHaveMore = len(items) == p.params.PageSize
	p.page++
	p.fetched++
	return true
}

// Items returns the most recently fetched page. Valid only after a
// true return from Next.
func (p *Pages) Items() []map[string]any {
	return p.items
}

// Err returns the error that terminated the sequence, if any.
func (p *Pages) Err() error {
	return p.err
}
