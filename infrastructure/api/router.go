// Package api exposes the small HTTP surface around the chat socket:
// a liveness probe and the persisted identity listing.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/samber/lo"

	"chat-hub/contract"
	"chat-hub/domain"
)

type userRecord struct {
	Username  string `json:"username"`
	Avatar    string `json:"avatar"`
	CreatedAt string `json:"created_at"`
}

type usersResponse struct {
	Users []userRecord `json:"users"`
}

// NewRouter wires the HTTP routes. The WebSocket handler is passed in
// as a plain http.Handler so the router stays transport-agnostic.
func NewRouter(log *slog.Logger, identities contract.IdentityStore, socket http.Handler) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("Chat Server Running"))
	})

	r.Get("/api/users", func(w http.ResponseWriter, req *http.Request) {
		all, err := identities.All(req.Context())
		if err != nil {
			log.Error("Identity listing failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		response := usersResponse{
			Users: lo.Map(all, func(identity domain.Identity, _ int) userRecord {
				return userRecord{
					Username:  identity.Username,
					Avatar:    identity.Avatar,
					CreatedAt: identity.CreatedAt.UTC().Format(time.RFC3339),
				}
			}),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(response); err != nil {
			log.Debug("Users response write failed", "error", err)
		}
	})

	r.Handle("/ws", socket)

	return r
}
