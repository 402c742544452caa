package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/turnips/internal/modules/records"
	testingpkg "github.com/aristath/turnips/internal/testing"
)

func setup(t *testing.T, withBatch bool) (chi.Router, *records.Repository) {
	t.Helper()
	db := testingpkg.NewTestDB(t, "records")
	repo := records.NewRepository(db.Conn(), zerolog.Nop())

	if withBatch {
		now := time.Date(2026, 4, 12, 8, 0, 0, 0, time.UTC)
		recs := testingpkg.NewRecordFixtures()
		require.NoError(t, repo.SaveBatch(context.Background(), records.Batch{
			ID:            "b1",
			Source:        "fixtures",
			Layout:        "community",
			StartedAt:     now,
			FinishedAt:    now,
			RowsTotal:     len(recs),
			RecordsParsed: len(recs),
			Weeks:         2,
		}, recs, nil))
	}

	r := chi.NewRouter()
	NewHandlers(repo, 4, zerolog.Nop()).RegisterRoutes(r)
	return r, repo
}

func get(t *testing.T, r http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return w, body
}

func TestHandleGetRecords(t *testing.T) {
	r, _ := setup(t, true)

	w, body := get(t, r, "/records/")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b1", body["batch_id"])
	assert.Equal(t, float64(4), body["count"])

	w, body = get(t, r, "/records/?week=1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(2), body["count"])
	first := body["records"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "Carol", first["owner"])

	w, _ = get(t, r, "/records/?week=-2")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetRecords_NoBatches(t *testing.T) {
	r, _ := setup(t, false)

	w, body := get(t, r, "/records/")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, true, body["error"])
}

func TestHandleGetRecordAndCurve(t *testing.T) {
	r, repo := setup(t, true)

	stored, err := repo.GetRecords(context.Background(), "b1", nil)
	require.NoError(t, err)
	id := strconv.FormatInt(stored[0].ID, 10)

	w, body := get(t, r, "/records/"+id)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Bob", body["owner"])

	w, body = get(t, r, "/records/"+id+"/curve")
	require.Equal(t, http.StatusOK, w.Code)
	curve := body["curve"].(map[string]interface{})
	assert.Equal(t, float64(12), curve["present_prices"])
	assert.Equal(t, float64(0), curve["peak_slot"])
	assert.Equal(t, "Decreasing", body["pattern"])

	w, _ = get(t, r, "/records/999999")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w, _ = get(t, r, "/records/abc/curve")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGetDataset(t *testing.T) {
	r, _ := setup(t, true)

	t.Run("perfect by default", func(t *testing.T) {
		w, body := get(t, r, "/dataset")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), body["count"])
		assert.Equal(t, []interface{}{float64(1), float64(3)}, body["labels"])
		assert.Equal(t, map[string]interface{}{"Decreasing": float64(1), "High Spike": float64(1)}, body["class_counts"])
		assert.Equal(t, float64(1), body["max_cv_folds"])
	})

	t.Run("valid records", func(t *testing.T) {
		w, body := get(t, r, "/dataset?perfect=false")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(3), body["count"])
	})

	t.Run("lower threshold", func(t *testing.T) {
		w, body := get(t, r, "/dataset?perfect=false&min_prices=2")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(4), body["count"])
	})

	t.Run("explicit batch", func(t *testing.T) {
		w, body := get(t, r, "/dataset?batch=missing")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(0), body["count"])
	})

	t.Run("bad flag", func(t *testing.T) {
		w, _ := get(t, r, "/dataset?perfect=maybe")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
