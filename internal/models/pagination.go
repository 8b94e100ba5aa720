package models

// ListOptions carries pagination and sorting for list endpoints.
// SortBy is matched against a per-resource whitelist by the repositories.
type ListOptions struct {
	Limit     int
	Offset    int
	SortBy    string
	SortOrder string
}

// ListMeta is returned alongside paginated results.
type ListMeta struct {
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// Desc reports whether results should be sorted in descending order.
func (o ListOptions) Desc() bool {
	return o.SortOrder != "asc"
}

// Meta builds the ListMeta for a result of total rows.
func (o ListOptions) Meta(total int64) ListMeta {
	return ListMeta{Total: total, Limit: o.Limit, Offset: o.Offset}
}
