// Package shell is the HTTP surface of the synchronization layer. It
// serves the canonical state to fragments, accepts intents over REST,
// exposes the persona configuration documents, and mounts the metrics
// and inspector endpoints.
package shell

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fragsync-dev/fragsync/internal/config"
	"github.com/fragsync-dev/fragsync/internal/errors"
	"github.com/fragsync-dev/fragsync/internal/inspect"
	"github.com/fragsync-dev/fragsync/pkg/catalog"
	"github.com/fragsync-dev/fragsync/pkg/fragment"
	"github.com/fragsync-dev/fragsync/pkg/state"
	"github.com/fragsync-dev/fragsync/pkg/store"
)

// Server serves the dashboard API. Intents received over HTTP go
// through a fragment handle, so REST clients and bus fragments share
// one mutation path.
type Server struct {
	store   *store.Store
	api     *fragment.Fragment
	configs *config.Service
	hub     *inspect.Hub
	logger  *slog.Logger

	http *http.Server
}

// New assembles the server. hub may be nil to disable the inspector.
func New(addr string, st *store.Store, api *fragment.Fragment, configs *config.Service, hub *inspect.Hub, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		store:   st,
		api:     api,
		configs: configs,
		hub:     hub,
		logger:  logger.With("component", "shell"),
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	if s.hub != nil {
		r.Get("/inspect", s.hub.HandleWebSocket)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", s.handleCartGet)
			r.Post("/", s.handleCartAdd)
			r.Delete("/", s.handleCartClear)
			r.Put("/{id}", s.handleCartUpdate)
			r.Delete("/{id}", s.handleCartRemove)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/", s.handleUserGet)
			r.Post("/", s.handleUserLogin)
			r.Put("/", s.handleUserUpdate)
			r.Delete("/", s.handleUserLogout)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", s.handleOrdersGet)
			r.Post("/", s.handleOrderPlace)
			r.Put("/{id}", s.handleOrderStatus)
		})

		r.Route("/navigation", func(r chi.Router) {
			r.Get("/", s.handleNavGet)
			r.Put("/", s.handleNavChange)
		})

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/", s.handleCatalog)
			r.Get("/search", s.handleCatalogSearch)
			r.Get("/{category}", s.handleCatalogCategory)
		})

		r.Get("/config", s.handleConfig)
		r.Get("/personas", s.handlePersonas)
	})

	return r
}

// Handler exposes the router for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// ListenAndServe runs the server until the context is canceled, then
// shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.http.Addr)
		errCh <- s.http.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// =============================================================================
// State
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

// =============================================================================
// Cart
// =============================================================================

func (s *Server) handleCartGet(w http.ResponseWriter, r *http.Request) {
	snap := s.store.Snapshot()
	writeJSON(w, http.StatusOK, map[string]any{
		"cart":      snap.Cart,
		"cartCount": snap.CartCount,
		"cartTotal": snap.CartTotal,
	})
}

func (s *Server) handleCartAdd(w http.ResponseWriter, r *http.Request) {
	var line state.CartLine
	if !decodeBody(w, r, &line) {
		return
	}
	// A bare product reference is enough; the catalog fills the rest.
	if line.Name == "" {
		if p, ok := catalog.ByID(line.ID); ok {
			qty := line.Quantity
			if qty <= 0 {
				qty = 1
			}
			line = p.CartLine(qty)
		}
	}
	if line.ID == "" || line.Quantity <= 0 || line.Price < 0 {
		writeError(w, http.StatusBadRequest, errors.New("E451"))
		return
	}
	s.api.AddToCart(line)
	s.handleCartGet(w, r)
}

func (s *Server) handleCartUpdate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Quantity int `json:"quantity"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	s.api.UpdateQuantity(chi.URLParam(r, "id"), body.Quantity)
	s.handleCartGet(w, r)
}

func (s *Server) handleCartRemove(w http.ResponseWriter, r *http.Request) {
	s.api.RemoveFromCart(chi.URLParam(r, "id"))
	s.handleCartGet(w, r)
}

func (s *Server) handleCartClear(w http.ResponseWriter, r *http.Request) {
	s.api.ClearCart()
	s.handleCartGet(w, r)
}

// =============================================================================
// User
// =============================================================================

func (s *Server) handleUserGet(w http.ResponseWriter, r *http.Request) {
	user := s.store.User()
	if user == nil {
		writeJSON(w, http.StatusOK, map[string]any{"user": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"user": user})
}

func (s *Server) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	var user state.UserProfile
	if !decodeBody(w, r, &user) {
		return
	}
	s.api.Login(user)
	s.handleUserGet(w, r)
}

func (s *Server) handleUserUpdate(w http.ResponseWriter, r *http.Request) {
	var user state.UserProfile
	if !decodeBody(w, r, &user) {
		return
	}
	s.api.UpdateUser(user)
	s.handleUserGet(w, r)
}

func (s *Server) handleUserLogout(w http.ResponseWriter, r *http.Request) {
	s.api.Logout()
	s.handleUserGet(w, r)
}

// =============================================================================
// Orders
// =============================================================================

func (s *Server) handleOrdersGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"orders": s.store.Snapshot().Orders})
}

func (s *Server) handleOrderPlace(w http.ResponseWriter, r *http.Request) {
	var order state.Order
	if !decodeBody(w, r, &order) {
		return
	}
	id := s.api.PlaceOrder(order)
	placed, ok := s.store.Order(id)
	if !ok {
		writeError(w, http.StatusUnprocessableEntity,
			errors.Newf(errors.CategoryValidation, "order %s rejected", id))
		return
	}
	writeJSON(w, http.StatusCreated, placed)
}

func (s *Server) handleOrderStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status state.OrderStatus `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	id := chi.URLParam(r, "id")
	if !body.Status.Valid() {
		writeError(w, http.StatusBadRequest, errors.New("E452"))
		return
	}

	s.api.UpdateOrderStatus(id, body.Status)
	order, ok := s.store.Order(id)
	if !ok {
		writeError(w, http.StatusNotFound,
			errors.Newf(errors.CategoryValidation, "unknown order %s", id))
		return
	}
	writeJSON(w, http.StatusOK, order)
}

// =============================================================================
// Navigation
// =============================================================================

func (s *Server) handleNavGet(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Navigation())
}

func (s *Server) handleNavChange(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Path        string             `json:"path"`
		Module      string             `json:"module"`
		Breadcrumbs []state.Breadcrumb `json:"breadcrumbs"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	if body.Path != "" || body.Module != "" {
		s.api.Navigate(body.Path, body.Module)
	}
	if body.Breadcrumbs != nil {
		s.api.SetBreadcrumbs(body.Breadcrumbs)
	}
	s.handleNavGet(w, r)
}

// =============================================================================
// Catalog and Configuration
// =============================================================================

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"products":   catalog.All(),
		"categories": catalog.Categories(),
	})
}

func (s *Server) handleCatalogCategory(w http.ResponseWriter, r *http.Request) {
	category := chi.URLParam(r, "category")
	products := catalog.ByCategory(category)
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (s *Server) handleCatalogSearch(w http.ResponseWriter, r *http.Request) {
	products := catalog.Search(r.URL.Query().Get("q"))
	if products == nil {
		products = []catalog.Product{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"products": products})
}

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	resp := s.configs.LoadConfiguration(r.URL.Query().Get("user"))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePersonas(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"personas": s.configs.Personas()})
}

// =============================================================================
// Helpers
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err *errors.Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(err.FormatJSON()))
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest,
			errors.Newf(errors.CategoryValidation, "invalid request body: %v", err))
		return false
	}
	return true
}
