package entities

// Pagination is the paging metadata the LIMS API returns in the X-Pagination header
type Pagination struct {
	CurrentPageSize   int  `json:"currentPageSize"`
	CurrentStartIndex int  `json:"currentStartIndex"`
	CurrentEndIndex   int  `json:"currentEndIndex"`
	PageNumber        int  `json:"pageNumber"`
	PageSize          int  `json:"pageSize"`
	TotalCount        int  `json:"totalCount"`
	TotalPages        int  `json:"totalPages"`
	HasPrevious       bool `json:"hasPrevious"`
	HasNext           bool `json:"hasNext"`
}

// Page is one page of a list result
type Page[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
