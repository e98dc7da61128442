package stubapi

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"github.com/fhuaranca/dniadmin/internal/logging"
)

const (
	// configKeyAPISPeruToken is where the external-lookup token lives in
	// the configuraciones table.
	configKeyAPISPeruToken = "apisperu_token"

	backupRateLimit  = 5
	backupRateWindow = time.Hour
)

// Server exposes the admin API over a sqlite store.
type Server struct {
	store       *Store
	adminUser   string
	adminHash   []byte
	log         logging.Logger
	backupLimit *rateLimiter
}

// NewServer hashes the admin password and wires the route handlers.
func NewServer(store *Store, adminUser, adminPassword string, log logging.Logger) (*Server, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	return &Server{
		store:       store,
		adminUser:   adminUser,
		adminHash:   hash,
		log:         log,
		backupLimit: newRateLimiter(backupRateLimit, backupRateWindow),
	}, nil
}

// Router builds the full route table.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status": "healthy"}`)
	}).Methods("GET")

	r.HandleFunc("/api/login", s.handleLogin).Methods("POST")

	r.HandleFunc("/api/persona/{dni}", s.requireToken(s.handleLookup)).Methods("GET")
	r.HandleFunc("/api/buscar/{dni}", s.requireAdmin(s.handleLookup)).Methods("GET")

	r.HandleFunc("/api/backup", s.requireAdmin(s.handleBackup)).Methods("GET")

	r.HandleFunc("/api/tokens", s.requireAdmin(s.handleListTokens)).Methods("GET")
	r.HandleFunc("/api/tokens", s.requireAdmin(s.handleCreateToken)).Methods("POST")
	r.HandleFunc("/api/tokens/{id}", s.requireAdmin(s.handleDeleteToken)).Methods("DELETE")
	r.HandleFunc("/api/tokens/{id}/toggle", s.requireAdmin(s.handleToggleToken)).Methods("PATCH")

	r.HandleFunc("/api/config", s.requireAdmin(s.handleGetConfig)).Methods("GET")
	r.HandleFunc("/api/config", s.requireAdmin(s.handleUpdateConfig)).Methods("PUT")

	r.HandleFunc("/api/personas", s.requireAdmin(s.handleListPersonas)).Methods("GET")
	r.HandleFunc("/api/personas", s.requireAdmin(s.handleCreatePersona)).Methods("POST")
	r.HandleFunc("/api/personas/{id}", s.requireAdmin(s.handleGetPersona)).Methods("GET")
	r.HandleFunc("/api/personas/{id}", s.requireAdmin(s.handleUpdatePersona)).Methods("PUT")
	r.HandleFunc("/api/personas/{id}", s.requireAdmin(s.handleDeletePersona)).Methods("DELETE")

	return r
}

// checkAdmin verifies Basic-auth credentials. Username comparison is
// constant-time; bcrypt takes care of the password.
func (s *Server) checkAdmin(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.adminUser)) == 1
	passOK := bcrypt.CompareHashAndPassword(s.adminHash, []byte(password)) == nil
	return userOK && passOK
}

// requireAdmin guards a handler behind HTTP Basic auth.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username, password, ok := r.BasicAuth()
		if !ok || !s.checkAdmin(username, password) {
			// No WWW-Authenticate header: the real service suppresses
			// the browser's native credentials popup.
			writeResponse(w, http.StatusUnauthorized, false, "Credenciales de administrador incorrectas", nil)
			return
		}
		next(w, r)
	}
}

// requireToken guards a handler behind a Bearer API token and records the
// token's use.
func (s *Server) requireToken(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if auth == "" {
			writeResponse(w, http.StatusUnauthorized, false, "Token de autorización requerido", nil)
			return
		}
		const prefix = "Bearer "
		if len(auth) <= len(prefix) || auth[:len(prefix)] != prefix {
			writeResponse(w, http.StatusUnauthorized, false, "Formato de token inválido. Use: Bearer <token>", nil)
			return
		}
		if _, err := s.store.TouchToken(r.Context(), auth[len(prefix):]); err != nil {
			writeResponse(w, http.StatusUnauthorized, false, "Token inválido o inactivo", nil)
			return
		}
		next(w, r)
	}
}
