package routes

import (
	"lunchmate_server/controllers"
	"lunchmate_server/services"

	"github.com/gorilla/mux"
)

// RegisterSuggestionRoutes registers suggestion routes under `/api/suggestions`
func RegisterSuggestionRoutes(router *mux.Router, cacheService *services.GroupCacheService) {
	controller := &controllers.SuggestionController{Cache: cacheService}

	suggestionRouter := router.PathPrefix("/api/suggestions").Subrouter()
	suggestionRouter.HandleFunc("/{date}", controller.GetSuggestionsHandler).Methods("GET")           // Ranked groups for a date
	suggestionRouter.HandleFunc("/{date}", controller.InvalidateSuggestionsHandler).Methods("DELETE") // Drop cached entry
}
