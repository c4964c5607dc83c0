// Package loaders batches the per-row lookups list views need.
package loaders

import (
	"context"
	"fmt"
	"time"

	"github.com/graph-gophers/dataloader/v7"

	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/domain/providers"
	"github.com/zatekoja/limsgateway/internal/query/filter"
	"github.com/zatekoja/limsgateway/internal/query/keys"
	apperrors "github.com/zatekoja/limsgateway/pkg/errors"
)

// MaxPatientBatch caps the ids folded into a single ListPatients call
const MaxPatientBatch = 50

// PatientLoader resolves patients by id with one request per batch
type PatientLoader = dataloader.Loader[string, *entities.Patient]

// NewPatientLoader creates a loader that turns a batch of ids into one
// `id == a || id == b` list query.
func NewPatientLoader(client providers.PatientClient) *PatientLoader {
	return dataloader.NewBatchedLoader(
		batchPatients(client),
		dataloader.WithBatchCapacity[string, *entities.Patient](MaxPatientBatch),
		dataloader.WithWait[string, *entities.Patient](2*time.Millisecond),
	)
}

func batchPatients(client providers.PatientClient) dataloader.BatchFunc[string, *entities.Patient] {
	return func(ctx context.Context, ids []string) []*dataloader.Result[*entities.Patient] {
		results := make([]*dataloader.Result[*entities.Patient], len(ids))

		page, err := client.ListPatients(ctx, keys.ListParams{
			PageNumber: 1,
			PageSize:   len(ids),
			Filters:    filter.Render(filter.AnyOf("id", ids...)),
		})

		byID := make(map[string]*entities.Patient)
		if err == nil {
			for i := range page.Items {
				p := page.Items[i]
				byID[p.ID] = &p
			}
		}

		for i, id := range ids {
			if err != nil {
				results[i] = &dataloader.Result[*entities.Patient]{Error: err}
			} else if p, ok := byID[id]; ok {
				results[i] = &dataloader.Result[*entities.Patient]{Data: p}
			} else {
				results[i] = &dataloader.Result[*entities.Patient]{Error: apperrors.NewNotFoundError(fmt.Sprintf("patient %s not found", id))}
			}
		}
		return results
	}
}
