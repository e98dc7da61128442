package stubapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/mux"

	"github.com/fhuaranca/dniadmin/internal/shared"
)

// allowedPerPage is the page-size whitelist; anything else falls back to 10.
var allowedPerPage = map[int]bool{10: true, 20: true, 50: true, 100: true}

// validDNI checks the service's document-number rules: exactly 8 digits,
// and not one digit repeated eight times.
func validDNI(dni string) bool {
	if len(dni) != 8 {
		return false
	}
	repeated := true
	for i := 0; i < len(dni); i++ {
		if dni[i] < '0' || dni[i] > '9' {
			return false
		}
		if dni[i] != dni[0] {
			repeated = false
		}
	}
	return !repeated
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, http.StatusBadRequest, false, "Datos de entrada inválidos", nil)
		return
	}
	if !s.checkAdmin(req.Username, req.Password) {
		writeResponse(w, http.StatusUnauthorized, false, "Credenciales incorrectas", nil)
		return
	}
	writeResponse(w, http.StatusOK, true, "Login exitoso", nil)
}

// handleLookup answers DNI lookups from the local store. The real service
// falls through to apisperu.com on a miss; the stub reports not-found (or
// the unconfigured-token message when that is the state an operator would
// see).
func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	dni := strings.TrimSpace(mux.Vars(r)["dni"])
	if !validDNI(dni) {
		writeResponse(w, http.StatusBadRequest, false, "El DNI debe ser un número de 8 dígitos", nil)
		return
	}

	p, err := s.store.GetPersonaByNroDoc(r.Context(), dni)
	if errors.Is(err, shared.ErrorNotFound) {
		token, cfgErr := s.store.GetConfigValue(r.Context(), configKeyAPISPeruToken)
		if cfgErr == nil && token == "" {
			writeResponse(w, http.StatusNotFound, false,
				"Token de apisperu.com no configurado. Configure el token en Configuración.", nil)
			return
		}
		writeResponse(w, http.StatusNotFound, false, "Persona no encontrada", nil)
		return
	}
	if err != nil {
		s.log.Error(r.Context(), "lookup failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}

	p.DesdeCache = true
	writeResponse(w, http.StatusOK, true, "Datos obtenidos de la base de datos local", p)
}

func (s *Server) handleListPersonas(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if !allowedPerPage[perPage] {
		perPage = 10
	}
	// Short terms never filter; the search input debounces them away but
	// the server enforces the rule regardless of the caller.
	if utf8.RuneCountInString(q) < 3 {
		q = ""
	}

	total, err := s.store.CountPersonas(r.Context(), q)
	if err != nil {
		s.log.Error(r.Context(), "count personas failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}

	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	items, err := s.store.SearchPersonas(r.Context(), q, (page-1)*perPage, perPage)
	if err != nil {
		s.log.Error(r.Context(), "list personas failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}

	writeResponse(w, http.StatusOK, true, "Personas listadas exitosamente", map[string]any{
		"items":       items,
		"total":       total,
		"page":        page,
		"per_page":    perPage,
		"total_pages": totalPages,
	})
}

type personaRequest struct {
	NroDoc          string `json:"nrodoc"`
	Nombres         string `json:"nombres"`
	ApellidoPaterno string `json:"apellido_paterno"`
	ApellidoMaterno string `json:"apellido_materno"`
}

func (s *Server) handleCreatePersona(w http.ResponseWriter, r *http.Request) {
	var req personaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, http.StatusBadRequest, false, "Datos de entrada inválidos", nil)
		return
	}
	if !validDNI(strings.TrimSpace(req.NroDoc)) {
		writeResponse(w, http.StatusBadRequest, false, "El DNI debe ser un número de 8 dígitos", nil)
		return
	}

	p := &Persona{
		NroDoc:          strings.TrimSpace(req.NroDoc),
		Nombres:         req.Nombres,
		ApellidoPaterno: req.ApellidoPaterno,
		ApellidoMaterno: req.ApellidoMaterno,
	}
	err := s.store.CreatePersona(r.Context(), p)
	if errors.Is(err, shared.ErrorAlreadyExists) {
		writeResponse(w, http.StatusBadRequest, false, "Ya existe una persona con ese DNI", nil)
		return
	}
	if err != nil {
		s.log.Error(r.Context(), "create persona failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}
	writeResponse(w, http.StatusCreated, true, "Persona creada exitosamente", p)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}

func (s *Server) handleGetPersona(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeResponse(w, http.StatusBadRequest, false, "Datos de entrada inválidos", nil)
		return
	}
	p, err := s.store.GetPersona(r.Context(), id)
	if errors.Is(err, shared.ErrorNotFound) {
		writeResponse(w, http.StatusNotFound, false, "Persona no encontrada", nil)
		return
	}
	if err != nil {
		s.log.Error(r.Context(), "get persona failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}
	writeResponse(w, http.StatusOK, true, "Persona encontrada", p)
}

func (s *Server) handleUpdatePersona(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeResponse(w, http.StatusBadRequest, false, "Datos de entrada inválidos", nil)
		return
	}
	var req personaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeResponse(w, http.StatusBadRequest, false, "Datos de entrada inválidos", nil)
		return
	}
	if !validDNI(strings.TrimSpace(req.NroDoc)) {
		writeResponse(w, http.StatusBadRequest, false, "El DNI debe ser un número de 8 dígitos", nil)
		return
	}

	p, err := s.store.UpdatePersona(r.Context(), id, &Persona{
		NroDoc:          strings.TrimSpace(req.NroDoc),
		Nombres:         req.Nombres,
		ApellidoPaterno: req.ApellidoPaterno,
		ApellidoMaterno: req.ApellidoMaterno,
	})
	if errors.Is(err, shared.ErrorNotFound) {
		writeResponse(w, http.StatusNotFound, false, "Persona no encontrada", nil)
		return
	}
	if err != nil {
		s.log.Error(r.Context(), "update persona failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}
	writeResponse(w, http.StatusOK, true, "Persona actualizada exitosamente", p)
}

func (s *Server) handleDeletePersona(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeResponse(w, http.StatusBadRequest, false, "Datos de entrada inválidos", nil)
		return
	}
	err = s.store.DeletePersona(r.Context(), id)
	if errors.Is(err, shared.ErrorNotFound) {
		writeResponse(w, http.StatusNotFound, false, "Persona no encontrada", nil)
		return
	}
	if err != nil {
		s.log.Error(r.Context(), "delete persona failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}
	writeResponse(w, http.StatusOK, true, "Persona eliminada correctamente", nil)
}

type tokenCreateRequest struct {
	Nombre      string `json:"nombre"`
	Descripcion string `json:"descripcion"`
}

func (s *Server) handleCreateToken(w http.ResponseWriter, r *http.Request) {
	var req tokenCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Nombre) == "" {
		writeResponse(w, http.StatusBadRequest, false, "Datos de entrada inválidos", nil)
		return
	}
	t, err := s.store.CreateToken(r.Context(), req.Nombre, req.Descripcion)
	if err != nil {
		s.log.Error(r.Context(), "create token failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}
	writeResponse(w, http.StatusCreated, true, "Token creado exitosamente", t)
}

func (s *Server) handleListTokens(w http.ResponseWriter, r *http.Request) {
	tokens, err := s.store.ListTokens(r.Context())
	if err != nil {
		s.log.Error(r.Context(), "list tokens failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}
	writeResponse(w, http.StatusOK, true, "Tokens listados exitosamente", map[string]any{
		"tokens": tokens,
		"total":  len(tokens),
	})
}

func (s *Server) handleDeleteToken(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeResponse(w, http.StatusBadRequest, false, "Datos de entrada inválidos", nil)
		return
	}
	err = s.store.DeleteToken(r.Context(), id)
	if errors.Is(err, shared.ErrorNotFound) {
		writeResponse(w, http.StatusNotFound, false, "Token no encontrado", nil)
		return
	}
	if err != nil {
		s.log.Error(r.Context(), "delete token failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}
	writeResponse(w, http.StatusOK, true, "Token eliminado correctamente", nil)
}

func (s *Server) handleToggleToken(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeResponse(w, http.StatusBadRequest, false, "Datos de entrada inválidos", nil)
		return
	}
	t, err := s.store.ToggleToken(r.Context(), id)
	if errors.Is(err, shared.ErrorNotFound) {
		writeResponse(w, http.StatusNotFound, false, "Token no encontrado", nil)
		return
	}
	if err != nil {
		s.log.Error(r.Context(), "toggle token failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}
	writeResponse(w, http.StatusOK, true, "Estado del token actualizado", t)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	token, err := s.store.GetConfigValue(r.Context(), configKeyAPISPeruToken)
	if err != nil {
		s.log.Error(r.Context(), "get config failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}
	configured := token != ""
	msg := "Token no configurado"
	if configured {
		msg = "Token configurado"
	}
	writeResponse(w, http.StatusOK, true, msg, map[string]any{
		"apisperu_token_configured": configured,
	})
}

type configUpdateRequest struct {
	APISPeruToken string `json:"apisperu_token"`
}

func (s *Server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req configUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.APISPeruToken) == "" {
		writeResponse(w, http.StatusBadRequest, false, "Datos de entrada inválidos", nil)
		return
	}
	err := s.store.SetConfigValue(r.Context(), configKeyAPISPeruToken, req.APISPeruToken,
		"Token de acceso a apisperu.com")
	if err != nil {
		s.log.Error(r.Context(), "update config failed", "err", err)
		writeResponse(w, http.StatusInternalServerError, false, "Error interno del servidor", nil)
		return
	}
	writeResponse(w, http.StatusOK, true, "Token de apisperu.com actualizado correctamente", nil)
}

// handleBackup serves the database file itself. Limited per instance, not
// per client; the stub has exactly one operator.
func (s *Server) handleBackup(w http.ResponseWriter, r *http.Request) {
	if !s.backupLimit.Allow() {
		writeResponse(w, http.StatusTooManyRequests, false, "Ha excedido el límite de peticiones permitido", nil)
		return
	}

	data, err := os.ReadFile(s.store.Path())
	if err != nil {
		writeResponse(w, http.StatusNotFound, false, "Archivo de base de datos no encontrado", nil)
		return
	}

	filename := fmt.Sprintf("backup_personas_%s.db", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(data)
}
