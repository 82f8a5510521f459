package domain

// PagedReportsParameter selects one page of the detailed report.
type PagedReportsParameter struct {
	WorkspaceID int64
	UserAgent   string  // required by the reports API; the client fills in its own when empty
	Since       string  // YYYY-MM-DD
	Until       string  // YYYY-MM-DD
	ProjectIDs  []int64 // sent as a comma-joined list
	Description string  // free-text filter on entry descriptions
	Page        int     // 1-based; 0 leaves the API default
}

// PagedResult is one page of the detailed report.
type PagedResult struct {
	TotalCount    int
	PerPage       int
	TotalGrand    *int64
	TotalBillable *int64
	Entries       []TimeEntry
}

// Pages returns the number of pages the report spans.
func (r PagedResult) Pages() int {
	if r.PerPage <= 0 {
		return 0
	}
	return (r.TotalCount + r.PerPage - 1) / r.PerPage
}
