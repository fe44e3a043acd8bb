package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type countingBumper struct {
	calls int
}

func (b *countingBumper) Bump(context.Context) error {
	b.calls++
	return nil
}

func newTestRouter(repo *memoryRepo, bumper CacheBumper) chi.Router {
	logger := slog.New(slog.NewTextHandler(bytes.NewBuffer(nil), nil))
	handler := NewHandler(logger, NewService(repo, nil), bumper)
	r := chi.NewRouter()
	r.Route("/stock", handler.MountRoutes)
	return r
}

func TestHandleBulkClampsNegativeTargets(t *testing.T) {
	repo := newMemoryRepo()
	productID := uuid.New()
	repo.products[productID] = 5
	bumper := &countingBumper{}
	router := newTestRouter(repo, bumper)

	body := fmt.Sprintf(`{"updates":[{"product_id":%q,"current_quantity":5,"new_quantity":-3}],"notes":"stocktake"}`, productID)
	req := httptest.NewRequest(http.MethodPost, "/stock/bulk", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	// Negative targets are clamped to zero, never rejected.
	require.Equal(t, 0, repo.products[productID])
	require.Len(t, repo.movements, 1)
	require.Equal(t, -5, repo.movements[0].QuantityChange)
	require.Equal(t, 1, bumper.calls)
}

func TestHandleAdjustInvalidQuantity(t *testing.T) {
	repo := newMemoryRepo()
	productID := uuid.New()
	repo.products[productID] = 10
	bumper := &countingBumper{}
	router := newTestRouter(repo, bumper)

	body := fmt.Sprintf(`{"product_id":%q,"quantity_change":-15,"current_quantity":10,"movement_type":"adjustment"}`, productID)
	req := httptest.NewRequest(http.MethodPost, "/stock/adjustments", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	require.Equal(t, 10, repo.products[productID])
	require.Zero(t, bumper.calls)
}

func TestHandleBulkReportsPartialFailure(t *testing.T) {
	repo := newMemoryRepo()
	p1 := uuid.New()
	p2 := uuid.New()
	repo.products[p1] = 3
	// p2 is never seeded, so its conditional write fails with not found.
	router := newTestRouter(repo, &countingBumper{})

	body := fmt.Sprintf(`{"updates":[{"product_id":%q,"current_quantity":3,"new_quantity":7},{"product_id":%q,"current_quantity":1,"new_quantity":4}]}`, p1, p2)
	req := httptest.NewRequest(http.MethodPost, "/stock/bulk", bytes.NewBufferString(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp bulkFailureResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Committed)
	require.Equal(t, 1, resp.FailedIndex)
	require.Equal(t, 7, repo.products[p1])
}
