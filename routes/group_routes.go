package routes

import (
	"lunchmate_server/controllers"
	"lunchmate_server/services"

	"github.com/gorilla/mux"
)

// RegisterGroupRoutes registers confirmed-group routes under `/api/groups`
func RegisterGroupRoutes(router *mux.Router, groupService *services.ConfirmedGroupService) {
	controller := &controllers.GroupController{Groups: groupService}

	groupRouter := router.PathPrefix("/api/groups").Subrouter()
	groupRouter.HandleFunc("", controller.GetGroupsHandler).Methods("GET")              // My confirmed groups
	groupRouter.HandleFunc("/{id}/leave", controller.LeaveGroupHandler).Methods("POST") // Leave a group
}
