package api

import (
	"github.com/americare/flourish/internal/config"
	"github.com/americare/flourish/internal/db"
	"github.com/americare/flourish/internal/repository/sqlite"
	"github.com/americare/flourish/internal/survey"
	"github.com/americare/flourish/pkg/models"
	"github.com/gorilla/mux"
)

func SetupRoutes(cfg *config.Config, version, buildTime string, conn *db.DB) *mux.Router {
	r := mux.NewRouter()

	// Middleware chain
	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware)
	r.Use(CORSMiddleware)
	r.Use(RecoveryMiddleware)

	// Repository and core service. The backup operation locates the
	// database file through the connection it was opened with.
	repo := sqlite.New(conn, nil)
	svc := survey.New(repo, conn.Path(), cfg.BackupDir, nil)

	// Create handlers
	systemHandler := &SystemHandler{}
	authHandler := NewAuthHandler(repo, cfg.JWTSecret, cfg.TokenDuration)
	surveyHandler := NewSurveyHandler(svc)
	adminHandler := NewAdminHandler(svc, repo)

	// Open endpoints
	r.HandleFunc("/version", systemHandler.VersionHandler(version, buildTime)).Methods("GET")
	r.HandleFunc("/health", systemHandler.HealthHandler).Methods("GET")
	r.HandleFunc("/v1/auth/signup", authHandler.Signup).Methods("POST")
	r.HandleFunc("/v1/auth/signin", authHandler.Signin).Methods("POST")

	// API v1 Protected routes
	apiV1 := r.PathPrefix("/v1").Subrouter()
	apiV1.Use(JWTAuthMiddlewareWithSecret(cfg.JWTSecret))

	// Auth endpoints
	authV1 := apiV1.PathPrefix("/auth").Subrouter()
	authV1.HandleFunc("/signout", authHandler.Signout).Methods("POST")

	// Employee endpoints
	apiV1.HandleFunc("/survey", surveyHandler.GetSurvey).Methods("GET")
	apiV1.HandleFunc("/responses", surveyHandler.PutResponses).Methods("PUT")
	apiV1.HandleFunc("/responses", surveyHandler.GetResponses).Methods("GET")
	apiV1.HandleFunc("/responses/complete", surveyHandler.Complete).Methods("POST")
	apiV1.HandleFunc("/responses/status", surveyHandler.Status).Methods("GET")

	// The aggregated review is shared with managers; everything else
	// under /admin stays admin-only.
	reviewV1 := apiV1.PathPrefix("/admin/review").Subrouter()
	reviewV1.Use(RequireRole(models.RoleAdmin, models.RoleManager))
	reviewV1.HandleFunc("", adminHandler.Review).Methods("GET")

	// Admin endpoints
	adminV1 := apiV1.PathPrefix("/admin").Subrouter()
	adminV1.Use(RequireRole(models.RoleAdmin))

	adminV1.HandleFunc("/entities", adminHandler.ListEntities).Methods("GET")
	adminV1.HandleFunc("/entities/rotate", adminHandler.RotateEntities).Methods("POST")
	adminV1.HandleFunc("/entities/{id:[0-9]+}/activate", adminHandler.ActivateEntity).Methods("PUT")
	adminV1.HandleFunc("/sections", adminHandler.CreateSection).Methods("POST")
	adminV1.HandleFunc("/sections/{id:[0-9]+}", adminHandler.RenameSection).Methods("PUT")
	adminV1.HandleFunc("/sections/{id:[0-9]+}", adminHandler.DeleteSection).Methods("DELETE")
	adminV1.HandleFunc("/questions", adminHandler.CreateQuestion).Methods("POST")
	adminV1.HandleFunc("/questions/{id:[0-9]+}", adminHandler.UpdateQuestion).Methods("PUT")
	adminV1.HandleFunc("/questions/{id:[0-9]+}", adminHandler.DeleteQuestion).Methods("DELETE")
	adminV1.HandleFunc("/import", adminHandler.Import).Methods("POST")
	adminV1.HandleFunc("/responses/clear", adminHandler.ClearResponses).Methods("POST")
	adminV1.HandleFunc("/users", adminHandler.ListUsers).Methods("GET")
	adminV1.HandleFunc("/users", adminHandler.CreateUser).Methods("POST")
	adminV1.HandleFunc("/users/{id:[0-9]+}/role", adminHandler.UpdateUserRole).Methods("PUT")

	return r
}
