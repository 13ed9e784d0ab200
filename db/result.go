package db

// Row is a single result row keyed by column name. Column order is carried
// separately in Result.Columns because Go maps are unordered.
type Row map[string]interface{}

// Pagination describes one page of a windowed SELECT.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalCount int64 `json:"total_count"`
	TotalPages int64 `json:"total_pages"`
}

// Result is the uniform envelope returned by every query operation.
// On failure Results and Columns are empty and Error carries the engine
// message verbatim. RowCount is affected rows for mutations and returned
// rows for reads.
type Result struct {
	Success    bool        `json:"success"`
	Error      string      `json:"error,omitempty"`
	Results    []Row       `json:"results"`
	Columns    []string    `json:"columns"`
	RowCount   int64       `json:"rowcount"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

func failureResult(message string) *Result {
	return &Result{
		Success: false,
		Error:   message,
		Results: []Row{},
		Columns: []string{},
	}
}
