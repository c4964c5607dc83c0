package services_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zatekoja/limsgateway/internal/application/services"
	apperrors "github.com/zatekoja/limsgateway/pkg/errors"
)

func TestNotificationService_SuppressesInlineValidation(t *testing.T) {
	n := services.NewNotificationService(10, zerolog.Nop())

	n.NotifyFailure(context.Background(), "submit-accession", apperrors.FromStatus(http.StatusUnprocessableEntity, "missing patient", ""))
	assert.Empty(t, n.Recent(0))

	n.NotifyFailure(context.Background(), "submit-accession", apperrors.FromStatus(http.StatusInternalServerError, "boom", ""))
	n.NotifyFailure(context.Background(), "delete-accession", errors.New("connection reset"))

	recent := n.Recent(0)
	require.Len(t, recent, 2)
	assert.Equal(t, "delete-accession", recent[0].Operation)
	assert.Equal(t, 0, recent[0].StatusCode)
	assert.Equal(t, http.StatusInternalServerError, recent[1].StatusCode)
	assert.Equal(t, services.GenericFailureMessage, recent[1].Message)
}

func TestNotificationService_Bounded(t *testing.T) {
	n := services.NewNotificationService(3, zerolog.Nop())
	for _, op := range []string{"a", "b", "c", "d", "e"} {
		n.NotifyFailure(context.Background(), op, errors.New("x"))
	}

	recent := n.Recent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, "e", recent[0].Operation)
	assert.Equal(t, "c", recent[2].Operation)
	assert.Len(t, n.Recent(2), 2)
}

func TestNotificationService_IgnoresNil(t *testing.T) {
	n := services.NewNotificationService(0, zerolog.Nop())
	n.NotifyFailure(context.Background(), "noop", nil)
	assert.Empty(t, n.Recent(5))
}
