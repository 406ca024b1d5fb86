package controllers

import (
	"encoding/json"
	"net/http"

	"lunchmate_server/models"
	"lunchmate_server/services"

	"github.com/gorilla/mux"
)

// GroupController handles HTTP requests for confirmed lunch groups
type GroupController struct {
	Groups *services.ConfirmedGroupService
}

// GetGroupsHandler lists the caller's confirmed groups.
func (c *GroupController) GetGroupsHandler(w http.ResponseWriter, r *http.Request) {
	employeeID := r.URL.Query().Get("employee_id")
	groups, err := c.Groups.GroupsFor(r.Context(), employeeID)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	if groups == nil {
		groups = []models.ConfirmedGroup{}
	}
	respondJSON(w, http.StatusOK, groups)
}

// LeaveGroupHandler removes the caller from a confirmed group.
func (c *GroupController) LeaveGroupHandler(w http.ResponseWriter, r *http.Request) {
	groupID := mux.Vars(r)["id"]
	var request struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := c.Groups.Leave(r.Context(), groupID, request.EmployeeID); err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "left group"})
}
