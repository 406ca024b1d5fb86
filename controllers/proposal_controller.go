package controllers

import (
	"encoding/json"
	"net/http"

	"lunchmate_server/models"
	"lunchmate_server/services"

	"github.com/gorilla/mux"
)

// ProposalController handles HTTP requests for the proposal lifecycle
type ProposalController struct {
	Proposals *services.ProposalService
}

// CreateProposalHandler creates a pending proposal for a group and date.
func (c *ProposalController) CreateProposalHandler(w http.ResponseWriter, r *http.Request) {
	var request struct {
		ProposerID   string   `json:"proposer_id"`
		RecipientIDs []string `json:"recipient_ids"`
		ProposedDate string   `json:"proposed_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	proposal, err := c.Proposals.Propose(r.Context(), request.ProposerID, request.RecipientIDs, request.ProposedDate)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, proposal)
}

// AcceptProposalHandler records one recipient's acceptance.
func (c *ProposalController) AcceptProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := mux.Vars(r)["id"]
	var request struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	proposal, err := c.Proposals.Accept(r.Context(), proposalID, request.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, proposal)
}

// RejectProposalHandler cancels the proposal on any single rejection.
func (c *ProposalController) RejectProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := mux.Vars(r)["id"]
	var request struct {
		UserID string `json:"user_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	proposal, err := c.Proposals.Reject(r.Context(), proposalID, request.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, proposal)
}

// CancelProposalHandler withdraws a pending proposal, proposer only.
func (c *ProposalController) CancelProposalHandler(w http.ResponseWriter, r *http.Request) {
	proposalID := mux.Vars(r)["id"]
	var request struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	proposal, err := c.Proposals.Cancel(r.Context(), proposalID, request.EmployeeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, proposal)
}

// MyProposalsResponse is the sent/received split returned by /mine.
type MyProposalsResponse struct {
	SentProposals     []models.Proposal `json:"sent_proposals"`
	ReceivedProposals []models.Proposal `json:"received_proposals"`
}

// GetMyProposalsHandler returns the caller's sent and received proposals.
func (c *ProposalController) GetMyProposalsHandler(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	sent, received, err := c.Proposals.Mine(r.Context(), employeeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if sent == nil {
		sent = []models.Proposal{}
	}
	if received == nil {
		received = []models.Proposal{}
	}
	respondJSON(w, http.StatusOK, MyProposalsResponse{SentProposals: sent, ReceivedProposals: received})
}
