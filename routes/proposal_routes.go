package routes

import (
	"lunchmate_server/controllers"
	"lunchmate_server/services"

	"github.com/gorilla/mux"
)

// RegisterProposalRoutes registers all proposal-related routes under `/api/proposals`
func RegisterProposalRoutes(router *mux.Router, proposalService *services.ProposalService) {
	controller := &controllers.ProposalController{Proposals: proposalService}

	proposalRouter := router.PathPrefix("/api/proposals").Subrouter()
	proposalRouter.HandleFunc("", controller.CreateProposalHandler).Methods("POST")          // Create a proposal
	proposalRouter.HandleFunc("/mine", controller.GetMyProposalsHandler).Methods("GET")      // Sent/received lists
	proposalRouter.HandleFunc("/{id}/accept", controller.AcceptProposalHandler).Methods("POST")
	proposalRouter.HandleFunc("/{id}/reject", controller.RejectProposalHandler).Methods("POST")
	proposalRouter.HandleFunc("/{id}/cancel", controller.CancelProposalHandler).Methods("POST")
}
