package handlers

import (
	"net/http"
	"strconv"

	"github.com/zatekoja/limsgateway/internal/query/filter"
	"github.com/zatekoja/limsgateway/internal/query/keys"
	"github.com/zatekoja/limsgateway/internal/query/listview"
	apperrors "github.com/zatekoja/limsgateway/pkg/errors"
)

// AccessionListOptions drives the accession worklist
var AccessionListOptions = listview.Options{
	StatusField:  "status",
	SearchFields: []string{"accessionNumber", "patientFirstName", "patientLastName"},
	DefaultSort:  filter.Sort{{Field: "createdAt", Descending: true}},
}

// PatientListOptions drives the patient list
var PatientListOptions = listview.Options{
	SearchFields: []string{"firstName", "lastName", "internalId"},
	DefaultSort:  filter.Sort{{Field: "lastName"}, {Field: "firstName"}},
}

// parseListQuery folds the page, pageSize, q, status and sort query
// parameters into list params. Filters are applied before the page number
// because each filter change returns the view to page 1.
func parseListQuery(r *http.Request, opts listview.Options, defaultPageSize int) (keys.ListParams, error) {
	q := r.URL.Query()
	if opts.PageSize == 0 {
		opts.PageSize = defaultPageSize
	}
	state := listview.New(opts)

	if raw := q.Get("pageSize"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return keys.ListParams{}, apperrors.NewValidationError("pageSize must be a number")
		}
		if err := state.SetPageSize(n); err != nil {
			return keys.ListParams{}, apperrors.NewValidationError(err.Error())
		}
	}
	if sort := filter.ParseSort(q["sort"]...); len(sort) > 0 {
		state.SetSort(sort)
	}
	state.SetSearch(q.Get("q"))
	state.SetStatuses(q["status"]...)

	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return keys.ListParams{}, apperrors.NewValidationError("page must be a number")
		}
		if err := state.SetPage(n); err != nil {
			return keys.ListParams{}, apperrors.NewValidationError(err.Error())
		}
	}
	return state.Params(), nil
}
