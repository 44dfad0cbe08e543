package api

import (
	"commerceq/internal/agent"
	"commerceq/internal/domain"
	"commerceq/internal/usecase"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type TaskEnqueuer interface {
	Enqueue(ctx context.Context, name string, args map[string]any) (string, error)
}

type TaskStates interface {
	Get(ctx context.Context, id string) (*domain.Task, error)
}

type FunctionLister interface {
	Functions(ctx context.Context) ([]map[string]any, error)
}

type enqueueReq struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

type Server struct {
	router *chi.Mux
}

func NewServer(enq TaskEnqueuer, states TaskStates, functions FunctionLister) *Server {
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	r.Post("/v1/tasks", func(w http.ResponseWriter, r *http.Request) {
		var req enqueueReq
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		id, err := enq.Enqueue(r.Context(), req.Name, req.Args)
		if err != nil {
			if errors.Is(err, usecase.ErrUnknownTask) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			// broker unreachable is surfaced, never silently dropped
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
		_ = json.NewEncoder(w).Encode(map[string]any{"id": id})
	})

	r.Get("/v1/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
		t, err := states.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if t == nil {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		_ = json.NewEncoder(w).Encode(t)
	})

	r.Get("/v1/agent/functions", func(w http.ResponseWriter, r *http.Request) {
		fns, err := functions.Functions(r.Context())
		if err != nil {
			if errors.Is(err, agent.ErrDisabled) {
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
				return
			}
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"functions": fns})
	})

	return &Server{router: r}
}

// Run method of the Server struct runs the HTTP server on the specified port. It initializes
// a new HTTP server instance with the specified port and the server's router.
func (s *Server) Run(port int) {
	addr := fmt.Sprintf(":%d", port)

	h := chainMiddleware(
		s.router,
		recoverHandler,
		loggerHandler(func(w http.ResponseWriter, r *http.Request) bool { return r.URL.Path == "/healthz" }),
		realIPHandler,
		requestIDHandler,
		corsHandler,
	)

	httpServer := http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info().Msg("Server is shutting down...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(ctx); err != nil {
			log.Fatal().Err(err).Msg("Server forced to shutdown")
		}

		close(done)
	}()

	log.Info().Msgf("server serving on port %d", port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Failed to listen and serve")
	}

	<-done
	log.Info().Msg("Server stopped")
}
