package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/pipeline"
	"github.com/sells-group/outreach-cli/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", handleHealth)
		r.Post("/api/generate", handleGenerate(env))
		r.Get("/api/runs", handleListRuns(env))

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleGenerate(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req model.GenerateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, model.ErrorResponse{Error: "invalid request body"})
			return
		}

		resp, err := env.Pipeline.Run(r.Context(), req)
		if err != nil {
			writeJSON(w, statusForError(err), errorResponseFor(err))
			return
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func handleListRuns(env *pipelineEnv) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := store.RunFilter{
			Status: model.RunStatus(r.URL.Query().Get("status")),
		}

		runs, err := env.Store.ListRuns(r.Context(), filter)
		if err != nil {
			zap.L().Error("list runs failed", zap.Error(err))
			writeJSON(w, http.StatusInternalServerError, model.ErrorResponse{Error: "failed to list runs"})
			return
		}
		if runs == nil {
			runs = []model.Run{}
		}

		writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
	}
}

// statusForError maps pipeline failures onto HTTP statuses: rejected input is
// a 400, an empty ranking a 404, anything else a 500.
func statusForError(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, pipeline.ErrNoLeadsMatched):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func errorResponseFor(err error) model.ErrorResponse {
	switch {
	case errors.Is(err, pipeline.ErrInvalidInput):
		return model.ErrorResponse{Error: "icpDescription must be at least 10 characters"}
	case errors.Is(err, pipeline.ErrNoLeadsMatched):
		return model.ErrorResponse{Error: "no leads matched the given ICP", Detail: "try broadening the role, industry, or size filters"}
	case strings.Contains(strings.ToLower(err.Error()), "apollo"):
		return model.ErrorResponse{Error: "lead generation failed", Detail: "the lead provider rejected the request; check the Apollo API key and plan limits"}
	default:
		return model.ErrorResponse{Error: "lead generation failed"}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
