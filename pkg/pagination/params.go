package pagination

import (
	"net/url"
	"strconv"
)

// Pagination constants shared by all paginated operations.
const (
	// DefaultPageNumber is the first page (the API is 0-based).
	DefaultPageNumber = 0

	// DefaultPageSize is used when the caller does not specify one.
	DefaultPageSize = 50

	// MaxPageSize is the largest page the upstream accepts for normal
	// paging.
	MaxPageSize = 10000

	// FetchAllPageSize is the designated sentinel meaning "return
	// everything". The upstream treats it as an ordinary (very large)
	// page size.
	FetchAllPageSize = 10000000
)

// Direction is the sort direction accepted by the upstream API.
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// PageParams describes one logical page request. PageNumber and
// PageSize are always sent to the gateway as explicit query parameters.
type PageParams struct {
	PageNumber int
	PageSize   int
	SortBy     string
	Direction  Direction
	Extra      map[string]string
}

// WithDefaults fills zero values with the standard defaults.
func (p PageParams) WithDefaults() PageParams {
	if p.PageSize == 0 {
		p.PageSize = DefaultPageSize
	}
	if p.Direction == "" {
		p.Direction = Ascending
	}
	return p
}

// Query renders the params as API query parameters. pageNumber,
// pageSize and direction are always present; sortBy only when set.
func (p PageParams) Query() url.Values {
	p = p.WithDefaults()

	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(p.PageNumber))
	q.Set("pageSize", strconv.Itoa(p.PageSize))
	q.Set("direction", string(p.Direction))
	if p.SortBy != "" {
		q.Set("sortBy", p.SortBy)
	}
	for k, v := range p.Extra {
		q.Set(k, v)
	}
	return q
}

// HasMore infers whether more data remains after a page, given how many
// items came back and the page size that was requested. The upstream
// provides no total count, so a full page is taken to mean more may
// exist. The inference is knowingly wrong when the true result count is
// an exact multiple of the page size; callers accept that.
//
// When the requested size was the fetch-all sentinel, a short return is
// definitive: there is nothing more.
func HasMore(returned, requestedPageSize int) bool {
	if requestedPageSize == FetchAllPageSize && returned < FetchAllPageSize {
		return false
	}
	return returned == requestedPageSize
}
