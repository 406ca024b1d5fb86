package controllers

import (
	"net/http"
	"strconv"
	"time"

	"lunchmate_server/services"

	"github.com/gorilla/mux"
)

// SuggestionController serves ranked candidate groups per date
type SuggestionController struct {
	Cache *services.GroupCacheService
}

// GetSuggestionsHandler returns the ranked suggestions for a date. With
// page/pageSize query params it serves one display window from the cached
// list instead of the full set.
func (c *SuggestionController) GetSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	if _, err := time.Parse("2006-01-02", date); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed date, want YYYY-MM-DD"})
		return
	}

	query := r.URL.Query()
	if query.Get("page") != "" || query.Get("pageSize") != "" {
		page, _ := strconv.Atoi(query.Get("page"))
		pageSize, _ := strconv.Atoi(query.Get("pageSize"))
		groups, err := c.Cache.Window(r.Context(), date, page, pageSize)
		if err != nil {
			respondServiceError(w, err)
			return
		}
		respondJSON(w, http.StatusOK, groups)
		return
	}

	groups, err := c.Cache.GetOrCreate(r.Context(), date)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, groups)
}

// InvalidateSuggestionsHandler drops the cached suggestions for a date.
func (c *SuggestionController) InvalidateSuggestionsHandler(w http.ResponseWriter, r *http.Request) {
	date := mux.Vars(r)["date"]
	c.Cache.Invalidate(date)
	respondJSON(w, http.StatusOK, map[string]string{"message": "cache invalidated"})
}
