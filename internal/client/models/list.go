package models

// ListQuery describes one paginated persona listing request.
type ListQuery struct {
	SearchTerm string
	Page       int
	PageSize   int
}

// ListResult is the server's answer to a ListQuery. It is replaced
// wholesale on every successful query; Page and the totals are
// authoritative from the server and never recomputed locally.
type ListResult struct {
	Items      []Persona `json:"items"`
	Total      int       `json:"total"`
	Page       int       `json:"page"`
	PerPage    int       `json:"per_page"`
	TotalPages int       `json:"total_pages"`
}
