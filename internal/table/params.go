package table

import (
	"net/url"
	"strconv"
	"strings"
)

// Query parameter names shared by the address bar and the list endpoint
const (
	ParamSearch     = "search"
	ParamPrevCursor = "prev_cursor"
	ParamNextCursor = "next_cursor"
	ParamEntityID   = "entity_id"
	ParamLimit      = "limit"
	ParamOrderBy    = "order_by"
	ParamQuery      = "query"
)

// Params is the full query state of a table. Query is derived from Filter.
type Params struct {
	Search     string       `json:"search,omitempty"`
	PrevCursor string       `json:"prev_cursor,omitempty"`
	NextCursor string       `json:"next_cursor,omitempty"`
	EntityID   string       `json:"entity_id,omitempty"`
	Limit      int          `json:"limit,omitempty"`
	OrderBy    string       `json:"order_by,omitempty"`
	Filter     *FilterState `json:"filter,omitempty"`
	Query      string       `json:"query,omitempty"`
}

// Clone returns a deep copy
func (p Params) Clone() Params {
	p.Filter = p.Filter.Clone()
	return p
}

func (p Params) base() url.Values {
	values := url.Values{}
	set := func(key, value string) {
		if value != "" {
			values.Set(key, value)
		}
	}
	set(ParamSearch, p.Search)
	set(ParamPrevCursor, p.PrevCursor)
	set(ParamNextCursor, p.NextCursor)
	set(ParamEntityID, p.EntityID)
	set(ParamOrderBy, p.OrderBy)
	if p.Limit > 0 {
		values.Set(ParamLimit, strconv.Itoa(p.Limit))
	}
	return values
}

// URLValues is the address-bar form: discrete filter parameters, no query
func (p Params) URLValues() url.Values {
	values := p.base()
	for k, v := range ToURLParams(p.Filter) {
		values[k] = v
	}
	return values
}

// APIValues is the list-endpoint form: the compiled query, no filter parameters
func (p Params) APIValues() url.Values {
	values := p.base()
	if p.Query != "" {
		values.Set(ParamQuery, p.Query)
	}
	return values
}

// ParseParams reads address-bar parameters. Query is left empty; the
// manager compiles it against its clock.
func ParseParams(values url.Values) Params {
	p := Params{
		Search:     values.Get(ParamSearch),
		PrevCursor: values.Get(ParamPrevCursor),
		NextCursor: values.Get(ParamNextCursor),
		EntityID:   values.Get(ParamEntityID),
		OrderBy:    values.Get(ParamOrderBy),
		Filter:     ParseFilterStateFromParams(values),
	}
	if limit, err := strconv.Atoi(values.Get(ParamLimit)); err == nil && limit > 0 {
		p.Limit = limit
	}
	return p
}

// NextSortOrder cycles a column through unsorted, ascending ("col") and
// descending ("-col"). Clicking a different column starts it ascending.
func NextSortOrder(current, column string) string {
	switch current {
	case column:
		return "-" + column
	case "-" + column:
		return ""
	default:
		return column
	}
}

// SortDirection splits an order_by value into column and direction
func SortDirection(orderBy string) (column string, descending bool) {
	if strings.HasPrefix(orderBy, "-") {
		return orderBy[1:], true
	}
	return orderBy, false
}
