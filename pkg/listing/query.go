package listing

import (
	"context"
	"net/url"
	"strconv"
)

// Filter values understood by the network endpoints.
const (
	FilterAll      = "all"
	FilterPlatform = "platform"
	FilterManual   = "manual"
)

// SortAlphabetical is the default sort key.
const SortAlphabetical = "alphabetical"

// Query is the controller's intent.
type Query struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	Sort       string `json:"sort"`
	FilterType string `json:"filter_type"`
	SearchText string `json:"search"`
}

// Request converts the query into the data source request: the "all" filter
// and an empty search are omitted.
func (q Query) Request() Request {
	req := Request{
		Page:     q.Page,
		PageSize: q.PageSize,
		Sort:     q.Sort,
		Search:   q.SearchText,
	}
	if q.FilterType != FilterAll {
		req.FilterType = q.FilterType
	}
	return req
}

// Request is what a DataSource receives. Empty FilterType and Search mean
// "not sent".
type Request struct {
	Page       int
	PageSize   int
	Sort       string
	FilterType string
	Search     string
}

// Values encodes the request as query parameters, skipping empty entries.
func (r Request) Values() url.Values {
	out := url.Values{}
	if r.Page > 0 {
		out.Set("page", strconv.Itoa(r.Page))
	}
	if r.PageSize > 0 {
		out.Set("page_size", strconv.Itoa(r.PageSize))
	}
	if r.Sort != "" {
		out.Set("sort", r.Sort)
	}
	if r.FilterType != "" {
		out.Set("filter_type", r.FilterType)
	}
	if r.Search != "" {
		out.Set("search", r.Search)
	}
	return out
}

// Pagination is the server's paging metadata.
type Pagination struct {
	CurrentPage int  `json:"current_page"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
	TotalItems  int  `json:"total_items"`
}

// Response is one page from a DataSource.
type Response[T any] struct {
	Items      []T            `json:"items"`
	Stats      map[string]int `json:"stats"`
	Pagination Pagination     `json:"pagination"`
}

// DataSource fetches one page.
type DataSource[T any] interface {
	Fetch(ctx context.Context, req Request) (Response[T], error)
}

// DataSourceFunc adapts a function into a DataSource.
type DataSourceFunc[T any] func(ctx context.Context, req Request) (Response[T], error)

// Fetch calls fn.
func (fn DataSourceFunc[T]) Fetch(ctx context.Context, req Request) (Response[T], error) {
	return fn(ctx, req)
}

// Result is the committed page.
type Result[T any] struct {
	Items       []T            `json:"items"`
	TotalItems  int            `json:"total_items"`
	TotalPages  int            `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
	Stats       map[string]int `json:"stats"`
}

func (r *Result[T]) clone() *Result[T] {
	if r == nil {
		return nil
	}
	out := *r
	out.Items = append([]T(nil), r.Items...)
	if r.Stats != nil {
		out.Stats = make(map[string]int, len(r.Stats))
		for key, value := range r.Stats {
			out.Stats[key] = value
		}
	}
	return &out
}

// State is a copy of the controller state.
type State[T any] struct {
	// Query reflects user input immediately, including undebounced search text.
	Query Query
	// Committed is the query of the most recent fetch.
	Committed     Query
	Result        *Result[T]
	Loading       bool
	SearchLoading bool
	// Err is the error of the latest fetch, nil after a success.
	Err error
}

// Busy reports whether either loading flag is set.
func (s State[T]) Busy() bool {
	return s.Loading || s.SearchLoading
}
