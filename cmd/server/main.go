package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/gorilla/mux"

	"github.com/inamate/textbox/internal/auth"
	"github.com/inamate/textbox/internal/collab"
	"github.com/inamate/textbox/internal/config"
	"github.com/inamate/textbox/internal/journal"
	mw "github.com/inamate/textbox/internal/middleware"
	"github.com/inamate/textbox/internal/shape"
)

func main() {
	if len(os.Args) == 3 && os.Args[1] == "hash-password" {
		hash, err := auth.HashPassword(os.Args[2])
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(hash)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var opJournal journal.Journal = journal.NewMemory()
	if cfg.DatabaseURL != "" {
		pool, err := journal.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			slog.Error("connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		pg, err := journal.NewPostgres(ctx, pool)
		if err != nil {
			slog.Error("prepare journal", "error", err)
			os.Exit(1)
		}
		opJournal = pg
	} else {
		slog.Warn("DATABASE_URL not set, journal kept in memory")
	}

	authService := auth.NewService(cfg.JWTSecret, cfg.EditorPasswordHash)
	authHandler := auth.NewHandler(authService)

	hub := collab.NewHub(collab.Options{
		Journal:      opJournal,
		Measurer:     shape.NewBasicMeasurer(),
		ControlWidth: cfg.ChangeWidthControlWidth,
		UndoLimit:    cfg.UndoLimit,
	})

	r := mux.NewRouter()

	// Global middleware
	r.Use(mw.Recovery)
	r.Use(mw.Logger)
	r.Use(mw.CORS(cfg.Origins()))

	r.HandleFunc("/auth/session", authHandler.StartSession).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(authService.AuthMiddleware)

	api.HandleFunc("/canvases/{canvasId}", func(w http.ResponseWriter, r *http.Request) {
		getCanvas(w, r, hub)
	}).Methods("GET")
	api.HandleFunc("/canvases/{canvasId}/history", func(w http.ResponseWriter, r *http.Request) {
		getHistory(w, r, opJournal)
	}).Methods("GET")

	// WebSocket endpoint; the token arrives as a query parameter
	ws := r.PathPrefix("/ws").Subrouter()
	ws.Use(authService.AuthMiddleware)
	ws.HandleFunc("/canvas/{canvasId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, hub, originPatterns(cfg.Origins()))
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down server")

		// Stop rooms first so in-flight gestures are cancelled
		hub.Stop()

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

func getCanvas(w http.ResponseWriter, r *http.Request, hub *collab.Hub) {
	doc, err := hub.Document(mux.Vars(r)["canvasId"])
	if err != nil {
		writeRoomError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func getHistory(w http.ResponseWriter, r *http.Request, j journal.Journal) {
	canvasID := mux.Vars(r)["canvasId"]
	if err := collab.ValidateCanvasID(canvasID); err != nil {
		writeRoomError(w, err)
		return
	}

	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, 500)
	}

	entries, err := j.List(r.Context(), canvasID, limit)
	if err != nil {
		slog.Error("list history", "error", err, "canvas", canvasID)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, hub *collab.Hub, origins []string) {
	user := auth.UserFromContext(r.Context())
	canvasID := mux.Vars(r)["canvasId"]

	// Check the id before upgrading so bad ids get a plain HTTP error.
	if err := collab.ValidateCanvasID(canvasID); err != nil {
		writeRoomError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: origins,
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(conn, user.ID, user.DisplayName, canvasID)
	if err := hub.Register(client); err != nil {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}

	ctx := r.Context()
	go client.WritePump(ctx)
	client.ReadPump(ctx)
}

func writeRoomError(w http.ResponseWriter, err error) {
	if errors.Is(err, collab.ErrHubStopped) {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "server shutting down"})
		return
	}
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
}

// originPatterns turns allowed origins into the host patterns the websocket
// library matches against.
func originPatterns(origins []string) []string {
	patterns := make([]string, 0, len(origins))
	for _, o := range origins {
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
