// Package table holds the query state of list views: search, sort, cursor
// pagination and a structured filter compiled into the backend query JSON.
package table

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the wire format of filter dates
const DateLayout = "2006-01-02"

// DefaultDateField is filtered when a range has no explicit field
const DefaultDateField = "date"

// Status is a single-select document status filter
type Status string

const (
	StatusPaid    Status = "paid"
	StatusUnpaid  Status = "unpaid"
	StatusOverdue Status = "overdue"
	StatusVoided  Status = "voided"
)

// URL parameter names of the structured filter
const (
	ParamDateField  = "filter_date_field"
	ParamDateFrom   = "filter_date_from"
	ParamDateTo     = "filter_date_to"
	ParamStatus     = "filter_status"
	ParamMethod     = "filter_method"
	ParamHTTPStatus = "filter_http_status"
)

var filterParams = []string{ParamDateField, ParamDateFrom, ParamDateTo, ParamStatus, ParamMethod, ParamHTTPStatus}

// FilterState is the structured filter of a table. Methods and HTTPStatuses
// are used by operational tables such as request logs.
type FilterState struct {
	DateField    string     `json:"date_field,omitempty"`
	DateFrom     *time.Time `json:"date_from,omitempty"`
	DateTo       *time.Time `json:"date_to,omitempty"`
	Statuses     []Status   `json:"statuses,omitempty"`
	Methods      []string   `json:"methods,omitempty"`
	HTTPStatuses []int      `json:"http_statuses,omitempty"`
}

// IsEmpty reports whether the filter constrains nothing
func (s *FilterState) IsEmpty() bool {
	return s == nil ||
		(s.DateFrom == nil && s.DateTo == nil && len(s.Statuses) == 0 &&
			len(s.Methods) == 0 && len(s.HTTPStatuses) == 0)
}

func (s *FilterState) dateField() string {
	if s.DateField == "" {
		return DefaultDateField
	}
	return s.DateField
}

// Clone returns a deep copy
func (s *FilterState) Clone() *FilterState {
	if s == nil {
		return nil
	}
	out := &FilterState{
		DateField:    s.DateField,
		Statuses:     append([]Status(nil), s.Statuses...),
		Methods:      append([]string(nil), s.Methods...),
		HTTPStatuses: append([]int(nil), s.HTTPStatuses...),
	}
	if s.DateFrom != nil {
		t := *s.DateFrom
		out.DateFrom = &t
	}
	if s.DateTo != nil {
		t := *s.DateTo
		out.DateTo = &t
	}
	return out
}

// FormatDate renders t as YYYY-MM-DD in local time
func FormatDate(t time.Time) string {
	return t.In(time.Local).Format(DateLayout)
}

// ParseDate parses YYYY-MM-DD as local midnight, so the date never shifts
// by a day the way a UTC parse would
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, strings.TrimSpace(s), time.Local)
}

type condition map[string]any

// BuildQueryFromFilterState compiles state into the backend query JSON.
// Only the first status is honored because the backend has no OR support.
// An empty filter yields "".
func BuildQueryFromFilterState(state *FilterState, today time.Time) string {
	if state.IsEmpty() {
		return ""
	}
	query := map[string]condition{}
	merge := func(field string, c condition) {
		existing, ok := query[field]
		if !ok {
			query[field] = c
			return
		}
		for op, v := range c {
			existing[op] = v
		}
	}

	switch {
	case state.DateFrom != nil && state.DateTo != nil:
		merge(state.dateField(), condition{"between": []string{FormatDate(*state.DateFrom), FormatDate(*state.DateTo)}})
	case state.DateFrom != nil:
		merge(state.dateField(), condition{"gte": FormatDate(*state.DateFrom)})
	case state.DateTo != nil:
		merge(state.dateField(), condition{"lte": FormatDate(*state.DateTo)})
	}

	if len(state.Statuses) > 0 {
		switch state.Statuses[0] {
		case StatusPaid:
			merge("paid_in_full", condition{"equals": true})
		case StatusUnpaid:
			merge("paid_in_full", condition{"equals": false})
			merge("voided_at", condition{"equals": nil})
		case StatusOverdue:
			merge("paid_in_full", condition{"equals": false})
			merge("voided_at", condition{"equals": nil})
			merge("date_due", condition{"lt": FormatDate(today)})
		case StatusVoided:
			merge("voided_at", condition{"not": nil})
		}
	}

	if len(state.Methods) > 0 {
		merge("method", condition{"in": state.Methods})
	}
	if len(state.HTTPStatuses) > 0 {
		merge("http_status", condition{"in": state.HTTPStatuses})
	}

	if len(query) == 0 {
		return ""
	}
	out, err := json.Marshal(query)
	if err != nil {
		// only strings, bools, ints and nil reach the encoder
		panic(err)
	}
	return string(out)
}

// ToURLParams serializes state into discrete address-bar parameters
func ToURLParams(state *FilterState) url.Values {
	values := url.Values{}
	if state.IsEmpty() {
		return values
	}
	if state.DateFrom != nil || state.DateTo != nil {
		values.Set(ParamDateField, state.dateField())
	}
	if state.DateFrom != nil {
		values.Set(ParamDateFrom, FormatDate(*state.DateFrom))
	}
	if state.DateTo != nil {
		values.Set(ParamDateTo, FormatDate(*state.DateTo))
	}
	if len(state.Statuses) > 0 {
		statuses := make([]string, len(state.Statuses))
		for i, s := range state.Statuses {
			statuses[i] = string(s)
		}
		values.Set(ParamStatus, strings.Join(statuses, ","))
	}
	if len(state.Methods) > 0 {
		values.Set(ParamMethod, strings.Join(state.Methods, ","))
	}
	if len(state.HTTPStatuses) > 0 {
		codes := make([]string, len(state.HTTPStatuses))
		for i, c := range state.HTTPStatuses {
			codes[i] = strconv.Itoa(c)
		}
		values.Set(ParamHTTPStatus, strings.Join(codes, ","))
	}
	return values
}

// ParseFilterStateFromParams reads the filter back from address-bar
// parameters. Unparseable dates and status codes are dropped. Returns nil
// when no filter parameter is present.
func ParseFilterStateFromParams(values url.Values) *FilterState {
	state := &FilterState{DateField: strings.TrimSpace(values.Get(ParamDateField))}

	if v := values.Get(ParamDateFrom); v != "" {
		if t, err := ParseDate(v); err == nil {
			state.DateFrom = &t
		}
	}
	if v := values.Get(ParamDateTo); v != "" {
		if t, err := ParseDate(v); err == nil {
			state.DateTo = &t
		}
	}
	for _, s := range splitList(values.Get(ParamStatus)) {
		state.Statuses = append(state.Statuses, Status(s))
	}
	for _, m := range splitList(values.Get(ParamMethod)) {
		state.Methods = append(state.Methods, strings.ToUpper(m))
	}
	for _, c := range splitList(values.Get(ParamHTTPStatus)) {
		if code, err := strconv.Atoi(c); err == nil {
			state.HTTPStatuses = append(state.HTTPStatuses, code)
		}
	}

	if state.IsEmpty() {
		return nil
	}
	return state
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
