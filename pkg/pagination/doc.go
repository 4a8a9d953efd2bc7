// Package pagination walks paginated cBioPortal endpoints.
//
// The upstream API pages by pageNumber/pageSize query parameters and
// returns no total count, so continuation is inferred: a page with as
// many items as were requested suggests more may exist, anything
// shorter is the end.
//
// Example usage:
//
//	walker := pagination.NewWalker(apiClient)
//	items, err := walker.Collect(ctx, "studies", pagination.PageParams{}, "GET", nil, 0, 0)
//
// Walk yields pages one at a time for callers that want to stream;
// Collect drains a walk into a single ordered list, optionally
// truncated to an item limit.
package pagination
