package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"cv-fields/internal/engine"
	"cv-fields/internal/field"
)

type setValueRequest struct {
	UserID   string `json:"user_id"`
	FieldID  string `json:"field_id"`
	Language string `json:"language"`
	Version  int    `json:"version"`
	Value    string `json:"value"`
}

// SetValueHandler writes one field slot and schedules translation fan-out
// @Summary Set a field value
// @Description Write a value at (field, language, version). Edits in the working language are propagated to the other languages after a quiescence window.
// @Tags fields
// @Accept json
// @Produce json
// @Param request body setValueRequest true "Value to write"
// @Success 200 {object} field.Field
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /fields/value [post]
func (a *API) SetValueHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	u, ok := a.loadUser(w, r, req.UserID)
	if !ok {
		return
	}
	f, ok := u.FieldByID(req.FieldID)
	if !ok {
		http.Error(w, "field not found", http.StatusNotFound)
		return
	}

	now := time.Now().UTC()
	f, err := a.reconciler.SetValue(f, req.Language, req.Version, req.Value, now)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !a.saveUser(w, r, u.WithField(f, now)) {
		return
	}

	// Edits in the working language are the propagation source. The
	// debouncer coalesces keystrokes; only the latest value is queued.
	if req.Language == u.BaseLanguage {
		a.debouncer.Schedule(req.UserID, req.FieldID, req.Version, func() {
			a.QueuePropagation(PropagationJob{
				UserID:     req.UserID,
				FieldID:    req.FieldID,
				Version:    req.Version,
				SourceLang: req.Language,
				SourceText: req.Value,
				Timestamp:  time.Now(),
			})
		})
	}

	writeJSON(w, f)
}

type clearVersionRequest struct {
	UserID  string `json:"user_id"`
	FieldID string `json:"field_id"`
	Version int    `json:"version"`
}

// ClearVersionHandler erases a version slot across all languages
// @Summary Clear a version
// @Description Erase the content at a version in every language, canonical and translated
// @Tags fields
// @Accept json
// @Produce json
// @Param request body clearVersionRequest true "Slot to clear"
// @Success 200 {object} field.Field
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /fields/clear [post]
func (a *API) ClearVersionHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req clearVersionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	u, ok := a.loadUser(w, r, req.UserID)
	if !ok {
		return
	}
	f, ok := u.FieldByID(req.FieldID)
	if !ok {
		http.Error(w, "field not found", http.StatusNotFound)
		return
	}

	// A pending propagation for this slot would resurrect the cleared
	// content; drop it first.
	a.debouncer.Cancel(req.UserID, req.FieldID, req.Version)

	now := time.Now().UTC()
	f = a.reconciler.ClearVersion(f, req.Version, now)

	if !a.saveUser(w, r, u.WithField(f, now)) {
		return
	}
	writeJSON(w, f)
}

type resetRequest struct {
	UserID   string `json:"user_id"`
	FieldID  string `json:"field_id"`
	Language string `json:"language"`
	Version  int    `json:"version"`
}

// ResetHandler reverts a slot to its machine translation
// @Summary Reset to auto-translation
// @Description Restore a manually-edited slot to the last machine translation, retranslating when none is remembered
// @Tags fields
// @Accept json
// @Produce json
// @Param request body resetRequest true "Slot to reset"
// @Success 200 {object} field.Field
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /fields/reset [post]
func (a *API) ResetHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req resetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	u, ok := a.loadUser(w, r, req.UserID)
	if !ok {
		return
	}
	f, ok := u.FieldByID(req.FieldID)
	if !ok {
		http.Error(w, "field not found", http.StatusNotFound)
		return
	}

	now := time.Now().UTC()
	f, err := a.reconciler.ResetToAutoTranslation(r.Context(), f, u.BaseLanguage, req.Language, req.Version, now)
	if errors.Is(err, engine.ErrNoSource) {
		http.Error(w, "nothing to translate for this slot", http.StatusConflict)
		return
	}
	if err != nil {
		log.Printf("[API] reset %s/%s v%d: %v", req.FieldID, req.Language, req.Version, err)
		http.Error(w, "translation failed", http.StatusBadGateway)
		return
	}

	if !a.saveUser(w, r, u.WithField(f, now)) {
		return
	}
	writeJSON(w, f)
}

type changeLanguageRequest struct {
	UserID   string `json:"user_id"`
	Language string `json:"language"`
}

// ChangeLanguageHandler switches the working language
// @Summary Change working language
// @Description Make a language the propagation source for subsequent edits. Existing content is not retranslated.
// @Tags users
// @Accept json
// @Produce json
// @Param request body changeLanguageRequest true "New working language"
// @Success 200 {object} field.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /language [post]
func (a *API) ChangeLanguageHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req changeLanguageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	u, ok := a.loadUser(w, r, req.UserID)
	if !ok {
		return
	}

	// Pending propagations were scheduled against the old working
	// language; applying them now would use a stale source.
	a.debouncer.CancelUser(req.UserID)

	now := time.Now().UTC()
	u, err := a.reconciler.ChangeWorkingLanguage(u, req.Language, now)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if !a.saveUser(w, r, u) {
		return
	}
	writeJSON(w, u)
}

type createFieldRequest struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
	Tag    string `json:"tag"`
	Type   string `json:"type"`
}

// CreateFieldHandler adds an empty field to the collection
// @Summary Create a field
// @Description Add a new empty field authored in the user's working language
// @Tags fields
// @Accept json
// @Produce json
// @Param request body createFieldRequest true "Field definition"
// @Success 200 {object} field.Field
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /fields/create [post]
func (a *API) CreateFieldHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req createFieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "missing field name", http.StatusBadRequest)
		return
	}

	u, ok := a.loadUser(w, r, req.UserID)
	if !ok {
		return
	}

	typ := field.Type(req.Type)
	if typ == "" {
		typ = field.TypeText
	}

	now := time.Now().UTC()
	f := field.New(req.Name, req.Tag, typ, u.BaseLanguage, now)

	if !a.saveUser(w, r, u.WithField(f, now)) {
		return
	}
	writeJSON(w, f)
}
