package cmd

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"

	"github.com/rezonia/invoice-submit/internal/table"
)

var (
	queryDateField  string
	queryFrom       string
	queryTo         string
	queryStatuses   []string
	queryMethods    []string
	queryHTTPStatus []int
	querySearch     string
	queryOrderBy    string
	queryLimit      int
	queryToday      string
	queryFromURL    string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Compile a table filter into the backend query",
	Long: `Compile a structured table filter into the backend query JSON and the
address-bar parameters.

Only the first --status is honored: the backend has no OR filters.

Examples:
  invoice-submit query --status overdue
  invoice-submit query --from 2024-01-01 --to 2024-01-31 --date-field date_due
  invoice-submit query --method POST --http-status 422
  invoice-submit query --url "filter_status=paid&order_by=-date"`,
	Args: cobra.NoArgs,
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVar(&queryDateField, "date-field", "", "Date field of the range (default: date)")
	queryCmd.Flags().StringVar(&queryFrom, "from", "", "Range start, YYYY-MM-DD")
	queryCmd.Flags().StringVar(&queryTo, "to", "", "Range end, YYYY-MM-DD")
	queryCmd.Flags().StringSliceVar(&queryStatuses, "status", nil, "Status: paid, unpaid, overdue, voided")
	queryCmd.Flags().StringSliceVar(&queryMethods, "method", nil, "HTTP methods of operational tables")
	queryCmd.Flags().IntSliceVar(&queryHTTPStatus, "http-status", nil, "HTTP status codes of operational tables")
	queryCmd.Flags().StringVar(&querySearch, "search", "", "Free-text search")
	queryCmd.Flags().StringVar(&queryOrderBy, "order-by", "", "Sort field, prefix with - for descending")
	queryCmd.Flags().IntVar(&queryLimit, "limit", 0, "Page size")
	queryCmd.Flags().StringVar(&queryToday, "today", "", "Current date for the overdue filter, YYYY-MM-DD")
	queryCmd.Flags().StringVar(&queryFromURL, "url", "", "Parse address-bar parameters instead of flags")
}

// QueryOutput is printed by the query command
type QueryOutput struct {
	Query     string `json:"query"`
	URLParams string `json:"url_params"`
	APIParams string `json:"api_params"`
}

func runQuery(cmd *cobra.Command, _ []string) error {
	now := time.Now
	if queryToday != "" {
		today, err := table.ParseDate(queryToday)
		if err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
		now = func() time.Time { return today }
	}

	params, err := queryParams()
	if err != nil {
		return err
	}

	m, err := table.NewManager(&params, table.WithClock(now))
	if err != nil {
		return err
	}
	state := m.Params()

	output := QueryOutput{
		Query:     state.Query,
		URLParams: state.URLValues().Encode(),
		APIParams: state.APIValues().Encode(),
	}

	out := cmd.OutOrStdout()
	if outputFormat == "json" {
		return writeJSON(out, output)
	}
	fmt.Fprintf(out, "query:      %s\n", output.Query)
	fmt.Fprintf(out, "url params: %s\n", output.URLParams)
	fmt.Fprintf(out, "api params: %s\n", output.APIParams)
	return nil
}

func queryParams() (table.Params, error) {
	if queryFromURL != "" {
		values, err := url.ParseQuery(queryFromURL)
		if err != nil {
			return table.Params{}, err
		}
		return table.ParseParams(values), nil
	}

	filter := &table.FilterState{
		DateField:    queryDateField,
		Methods:      queryMethods,
		HTTPStatuses: queryHTTPStatus,
	}
	for _, s := range queryStatuses {
		filter.Statuses = append(filter.Statuses, table.Status(s))
	}
	if queryFrom != "" {
		from, err := table.ParseDate(queryFrom)
		if err != nil {
			return table.Params{}, fmt.Errorf("invalid --from: %w", err)
		}
		filter.DateFrom = &from
	}
	if queryTo != "" {
		to, err := table.ParseDate(queryTo)
		if err != nil {
			return table.Params{}, fmt.Errorf("invalid --to: %w", err)
		}
		filter.DateTo = &to
	}

	return table.Params{
		Search:  querySearch,
		OrderBy: queryOrderBy,
		Limit:   queryLimit,
		Filter:  filter,
	}, nil
}
