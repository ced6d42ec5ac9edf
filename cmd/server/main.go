package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/runsascoded/shapes/internal/auth"
	"github.com/runsascoded/shapes/internal/collab"
	"github.com/runsascoded/shapes/internal/config"
	"github.com/runsascoded/shapes/internal/run"
	"github.com/runsascoded/shapes/internal/store"
)

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		slog.Error("connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	queries := store.New(pool)

	authService := auth.NewService(queries, cfg.JWTSecret)
	authHandler := auth.NewHandler(authService)

	hub := collab.NewHub()
	go hub.Run()

	runService := run.NewService(queries, hub)
	runHandler := run.NewHandler(runService)

	r := mux.NewRouter()

	r.Use(recoveryMiddleware)
	r.Use(loggerMiddleware)
	r.Use(corsMiddleware(strings.Split(cfg.AllowedOrigins, ",")))

	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	api := r.PathPrefix("/runs").Subrouter()
	api.Use(authService.AuthMiddleware)
	api.HandleFunc("", runHandler.List).Methods("GET")
	api.HandleFunc("", runHandler.Create).Methods("POST")
	api.HandleFunc("/{id}", runHandler.Get).Methods("GET")
	api.HandleFunc("/{id}/train", runHandler.Train).Methods("POST")
	api.HandleFunc("/{id}/steps/{k}", runHandler.GetStep).Methods("GET")

	r.HandleFunc("/ws/runs/{id}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, authService, strings.Split(cfg.AllowedOrigins, ","))
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		srv.Shutdown(shutdownCtx)
	}()

	slog.Info("server starting", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

// handleWebSocket upgrades GET /ws/runs/{id} and attaches the connection to
// the run's room. Anonymous viewers (no token) get a read-only anon- ID,
// matching the playground path the teacher's document-collab hub allows —
// training runs have no membership list to check, so any viewer with the
// run ID may watch it train.
func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, authSvc *auth.Service, allowedOrigins []string) {
	runID := mux.Vars(r)["id"]

	var userID, displayName string
	if token := r.URL.Query().Get("token"); token != "" {
		var err error
		userID, err = authSvc.ValidateToken(token)
		if err != nil {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		user, err := authSvc.GetUser(r.Context(), userID)
		if err != nil {
			http.Error(w, "user not found", http.StatusInternalServerError)
			return
		}
		displayName = user.DisplayName
	} else {
		userID = "anon-" + uuid.New().String()[:8]
		displayName = "Anonymous"
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: allowedOrigins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	clientID := uuid.New().String()
	client := collab.NewClient(hub, conn, userID, displayName, runID, clientID)

	hub.Register(client)

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
