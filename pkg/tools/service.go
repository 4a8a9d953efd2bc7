// Package tools implements the tool-facing cBioPortal operations.
//
// Each operation validates its arguments, issues one or more gateway
// requests (single page, collected walk, or fan-out), and returns a
// typed envelope. Transport failures come back as typed errors from
// pkg/client; translating them into {"error": ...} wire responses is
// the adapter layer's job, not this package's.
package tools

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/pickleton89/cbioportal-mcp/pkg/client"
	"github.com/pickleton89/cbioportal-mcp/pkg/fanout"
	"github.com/pickleton89/cbioportal-mcp/pkg/pagination"
)

// Service exposes the tool operations. It borrows the long-lived API
// client; concurrent calls are expected and safe.
type Service struct {
	client    *client.Client
	walker    *pagination.Walker
	fanout    *fanout.FanOut
	batchSize int
	logger    zerolog.Logger
}

// NewService creates the tool service around a started API client.
func NewService(c *client.Client) *Service {
	return &Service{
		client:    c,
		walker:    pagination.NewWalker(c),
		fanout:    fanout.New(fanout.DefaultConfig()),
		batchSize: fanout.DefaultBatchSize,
		logger:    log.With().Str("component", "tools").Logger(),
	}
}

// PageArgs are the pagination arguments shared by list operations.
type PageArgs struct {
	PageNumber int
	PageSize   int
	SortBy     string
	Direction  string

	// Limit caps the total items returned. nil means no limit, zero
	// means fetch everything, positive values truncate.
	Limit *int
}

// withDefaults fills zero values with the standard defaults.
func (a PageArgs) withDefaults() PageArgs {
	if a.PageSize == 0 {
		a.PageSize = pagination.DefaultPageSize
	}
	if a.Direction == "" {
		a.Direction = string(pagination.Ascending)
	}
	return a
}

// fetchAll reports whether the caller asked for everything (limit 0).
func (a PageArgs) fetchAll() bool {
	return a.Limit != nil && *a.Limit == 0
}

// pageParams converts the args to gateway page parameters, swapping in
// the fetch-all sentinel page size when limit is 0.
func (a PageArgs) pageParams(extra map[string]string) pagination.PageParams {
	a = a.withDefaults()
	p := pagination.PageParams{
		PageNumber: a.PageNumber,
		PageSize:   a.PageSize,
		SortBy:     a.SortBy,
		Direction:  pagination.Direction(a.Direction),
		Extra:      extra,
	}
	if a.fetchAll() {
		p.PageSize = pagination.FetchAllPageSize
	}
	return p
}

// applyLimit truncates items to the positive limit, if set.
func applyLimit(items []map[string]any, limit *int) []map[string]any {
	if limit != nil && *limit > 0 && len(items) > *limit {
		return items[:*limit]
	}
	return items
}

// pagedList implements the standard single-page/fetch-all retrieval
// shared by the plain list operations.
func (s *Service) pagedList(ctx context.Context, endpoint string, args PageArgs, extra map[string]string) ([]map[string]any, PageInfo, error) {
	args = args.withDefaults()
	params := args.pageParams(extra)

	if args.fetchAll() {
		items, err := s.walker.Collect(ctx, endpoint, params, "GET", nil, 0, 0)
		if err != nil {
			return nil, PageInfo{}, err
		}
		return items, PageInfo{
			Page:       args.PageNumber,
			PageSize:   args.PageSize,
			TotalFound: len(items),
			HasMore:    false,
		}, nil
	}

	items, err := s.client.RequestList(ctx, "GET", endpoint, params.Query(), nil)
	if err != nil {
		return nil, PageInfo{}, err
	}

	limited := applyLimit(items, args.Limit)
	return limited, PageInfo{
		Page:       args.PageNumber,
		PageSize:   args.PageSize,
		TotalFound: len(limited),
		HasMore:    pagination.HasMore(len(items), params.PageSize),
	}, nil
}

// query builds endpoint-specific query values without paging.
func query(kv map[string]string) url.Values {
	q := url.Values{}
	for k, v := range kv {
		q.Set(k, v)
	}
	return q
}
