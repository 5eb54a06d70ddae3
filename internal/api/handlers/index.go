// Package handlers holds the HTTP handlers of the status API.
package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/gorilla/mux"

	"github.com/nachov/ipcmeli/internal/inflation"
	"github.com/nachov/ipcmeli/internal/series"
	"github.com/nachov/ipcmeli/pkg/logger"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// IndexHandler serves the persisted series and the derived index figures.
type IndexHandler struct {
	store  *series.Store
	ledger *inflation.Ledger
	calc   *inflation.Calculator
	logger *logger.Logger
}

// NewIndexHandler creates the handler over the store and ledger.
func NewIndexHandler(store *series.Store, ledger *inflation.Ledger, calc *inflation.Calculator, log *logger.Logger) *IndexHandler {
	return &IndexHandler{
		store:  store,
		ledger: ledger,
		calc:   calc,
		logger: log.WithField("module", "api"),
	}
}

// seriesItem is the JSON shape of one basket row. Unavailable prices
// render as null.
type seriesItem struct {
	ItemID     string     `json:"item_id"`
	CategoryID string     `json:"category_id"`
	Title      string     `json:"title"`
	Prices     []*float64 `json:"prices"`
}

type seriesResponse struct {
	Month string       `json:"month"`
	Dates []string     `json:"dates"`
	Items []seriesItem `json:"items"`
}

// GetSeries returns one month's full price series.
// GET /api/series/{month}
func (h *IndexHandler) GetSeries(w http.ResponseWriter, r *http.Request) {
	month := mux.Vars(r)["month"]
	if !monthPattern.MatchString(month) {
		respondError(w, http.StatusBadRequest, "month must be YYYY-MM")
		return
	}

	s, err := h.store.Load(month)
	if err != nil {
		h.logger.WithError(err).WithField("month", month).Warn("Series not available")
		respondError(w, http.StatusNotFound, "series not found")
		return
	}

	dates := s.Dates()
	resp := seriesResponse{Month: s.Month(), Dates: dates, Items: make([]seriesItem, 0, s.Len())}
	for _, rec := range s.Records() {
		item := seriesItem{
			ItemID:     rec.ItemID,
			CategoryID: rec.CategoryID,
			Title:      rec.Title,
			Prices:     make([]*float64, len(dates)),
		}
		for i, date := range dates {
			if p, ok := rec.Price(date); ok {
				if v, known := p.Value(); known {
					amount := v
					item.Prices[i] = &amount
				}
			}
		}
		resp.Items = append(resp.Items, item)
	}

	respondJSON(w, http.StatusOK, resp)
}

// GetMonths lists the persisted months.
// GET /api/series
func (h *IndexHandler) GetMonths(w http.ResponseWriter, r *http.Request) {
	months, err := h.store.Months()
	if err != nil {
		h.logger.WithError(err).Error("Failed to list months")
		respondError(w, http.StatusInternalServerError, "failed to list months")
		return
	}
	respondJSON(w, http.StatusOK, map[string][]string{"months": months})
}

// GetLatest returns the index figures for the most recent observation.
// GET /api/index/latest
func (h *IndexHandler) GetLatest(w http.ResponseWriter, r *http.Request) {
	months, err := h.store.Months()
	if err != nil || len(months) == 0 {
		respondError(w, http.StatusNotFound, "no series persisted yet")
		return
	}

	latest := months[len(months)-1]
	s, err := h.store.Load(latest)
	if err != nil {
		h.logger.WithError(err).WithField("month", latest).Error("Failed to load latest series")
		respondError(w, http.StatusInternalServerError, "failed to load series")
		return
	}

	result, err := h.calc.Snapshot(s)
	if err != nil {
		respondError(w, http.StatusConflict, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetLedger returns the finalized monthly rates.
// GET /api/ledger
func (h *IndexHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"months": h.ledger.Entries(),
	})
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
