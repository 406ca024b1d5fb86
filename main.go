package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"lunchmate_server/config"
	"lunchmate_server/pkg/logging"
	"lunchmate_server/routes"
	"lunchmate_server/services"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/cors"
)

func main() {
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Initialize DynamoDB client and repositories
	slog.Info("initializing DynamoDB client", "region", cfg.AWSRegion)
	dynamoService := &services.DynamoService{Client: services.InitializeDynamoDBClient()}
	proposalRepo := &services.DynamoProposalRepository{Dynamo: dynamoService}
	groupRepo := &services.DynamoGroupRepository{Dynamo: dynamoService}

	// External collaborators
	directory := &services.DynamoUserDirectory{Dynamo: dynamoService}
	schedule := services.NewHTTPScheduleSink(cfg.ScheduleAPIURL)

	// Core services share one typed event bus; proposal transitions feed the
	// cache invalidation and group materialization paths through it.
	bus := services.NewEventBus()
	proposalService := services.NewProposalService(proposalRepo, bus, cfg.ProposalTTL)
	candidateService := &services.CandidateService{Directory: directory, Schedule: schedule}
	cacheService := services.NewGroupCacheService(candidateService, bus, cfg.CacheTTL, cfg.SuggestionCount)
	groupService := services.NewConfirmedGroupService(groupRepo, schedule, bus)

	// Background expiry sweep for stale pending proposals
	sweeper := cron.New()
	if _, err := sweeper.AddFunc(cfg.ExpirySweepSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if _, err := proposalService.ExpireStale(ctx); err != nil {
			slog.Error("proposal expiry sweep failed", "error", err)
		}
	}); err != nil {
		slog.Error("invalid expiry sweep spec", "spec", cfg.ExpirySweepSpec, "error", err)
		os.Exit(1)
	}
	sweeper.Start()
	defer sweeper.Stop()

	// Initialize the router
	r := mux.NewRouter()

	r.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, "Welcome to Lunchmate")
	}).Methods("GET")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	}).Methods("GET")

	r.Handle("/metrics", promhttp.HandlerFor(services.MetricsRegistry, promhttp.HandlerOpts{})).Methods("GET")

	// Register routes
	routes.RegisterSuggestionRoutes(r, cacheService)
	routes.RegisterProposalRoutes(r, proposalService)
	routes.RegisterGroupRoutes(r, groupService)

	// Add CORS middleware
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(r)

	slog.Info("starting server", "port", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, corsHandler); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
