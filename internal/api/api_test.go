package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nachov/ipcmeli/internal/api/handlers"
	"github.com/nachov/ipcmeli/internal/inflation"
	"github.com/nachov/ipcmeli/internal/series"
	"github.com/nachov/ipcmeli/pkg/config"
	"github.com/nachov/ipcmeli/pkg/logger"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	dir := t.TempDir()
	log := logger.New(&config.Config{Env: "development", LogLevel: "error", LogFormat: "json"})

	store, err := series.NewStore(dir)
	require.NoError(t, err)

	s := series.New("2024-08", "2024-08-04", []series.Row{
		{ItemID: "MLA1", CategoryID: "C1", Title: "Leche", Price: series.Known(100)},
		{ItemID: "MLA2", CategoryID: "C2", Title: "Pan", Price: series.Known(200)},
	})
	_, err = s.AppendObservation("2024-08-05", map[string]series.Price{
		"MLA1": series.Known(103),
		"MLA2": series.Unavailable(),
	})
	require.NoError(t, err)
	require.NoError(t, store.Create(s))

	ledger, err := inflation.LoadLedger(filepath.Join(dir, "ledger.json"))
	require.NoError(t, err)
	require.NoError(t, ledger.Put("2024-07", 4.2))

	index := handlers.NewIndexHandler(store, ledger, inflation.NewCalculator(ledger, 2023, log), log)
	return NewRouter(index, handlers.NewJobsHandler(nil), log)
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestRouter(t), "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status"`)
}

func TestGetSeries(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/series/2024-08")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Month string   `json:"month"`
		Dates []string `json:"dates"`
		Items []struct {
			ItemID string     `json:"item_id"`
			Prices []*float64 `json:"prices"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, "2024-08", resp.Month)
	assert.Equal(t, []string{"2024-08-04", "2024-08-05"}, resp.Dates)
	require.Len(t, resp.Items, 2)

	// MLA2 was unavailable on the second day: null in JSON.
	for _, item := range resp.Items {
		if item.ItemID == "MLA2" {
			require.Len(t, item.Prices, 2)
			assert.NotNil(t, item.Prices[0])
			assert.Nil(t, item.Prices[1])
		}
	}
}

func TestGetSeriesBadMonth(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/series/borked")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSeriesMissingMonth(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/series/2019-01")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetMonths(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/series")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2024-08")
}

func TestGetLatest(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/index/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	var result inflation.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))

	assert.Equal(t, "2024-08-05", result.Date)
	assert.Equal(t, 3.0, result.DayOverDay)
	assert.Equal(t, 1, result.BasketSize)
}

func TestGetLedger(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/ledger")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2024-07")
}

func TestGetJobsWithoutScheduler(t *testing.T) {
	rec := get(t, newTestRouter(t), "/api/jobs")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "{}\n", rec.Body.String())
}
