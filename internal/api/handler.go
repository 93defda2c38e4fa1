package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"cv-fields/internal/config"
	"cv-fields/internal/cv"
	"cv-fields/internal/engine"
	"cv-fields/internal/field"
	"cv-fields/internal/llm"
	"cv-fields/internal/match"
	"cv-fields/internal/storage"
	"cv-fields/internal/translate"
)

type API struct {
	db         *storage.DB
	reconciler *engine.Reconciler
	debouncer  *engine.Debouncer
	matcher    *match.Matcher
	aiMatcher  *match.AIMatcher
	cvParser   *cv.Parser
	extractor  *cv.Extractor

	propagationQueue chan PropagationJob
}

func NewAPI(db *storage.DB, cfg *config.Config) (*API, error) {
	translator, err := translate.NewTranslator(cfg.TranslatorProvider, cfg.TranslatorAPIKey, cfg.TranslatorBaseURL)
	if err != nil {
		return nil, err
	}

	var llmSvc *llm.Service
	var aiMatcher *match.AIMatcher
	if cfg.LLMProvider != "" && cfg.LLMProvider != "none" {
		llmSvc = llm.NewService(cfg.LLMProvider, cfg.LLMAPIKey, cfg.LLMModel)
		aiMatcher = match.NewAIMatcher(llmSvc, match.DefaultConfidenceThreshold)
	}

	a := &API{
		db:               db,
		reconciler:       engine.NewReconciler(translator, field.SupportedLanguages),
		debouncer:        engine.NewDebouncer(cfg.PropagationDelay),
		matcher:          match.NewMatcher(),
		aiMatcher:        aiMatcher,
		cvParser:         cv.NewParser(cfg.UploadsDir),
		extractor:        cv.NewExtractor(llmSvc, llmSvc != nil),
		propagationQueue: make(chan PropagationJob, 100),
	}

	a.StartBackgroundWorkers()

	return a, nil
}

// GetUserHandler returns the user's full field collection
// @Summary Get user snapshot
// @Description Load a user with their complete field collection
// @Tags users
// @Produce json
// @Param id query string true "User ID"
// @Success 200 {object} field.User
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /users [get]
func (a *API) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	userID := r.URL.Query().Get("id")
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return
	}

	u, err := a.db.GetUserContext(r.Context(), userID)
	if errors.Is(err, storage.ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[API] load user %s: %v", userID, err)
		http.Error(w, "load error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, u)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] encode response: %v", err)
	}
}

// loadUser fetches the user and translates a miss into a 404. The bool
// reports whether the caller may proceed.
func (a *API) loadUser(w http.ResponseWriter, r *http.Request, userID string) (field.User, bool) {
	if userID == "" {
		http.Error(w, "missing user id", http.StatusBadRequest)
		return field.User{}, false
	}
	u, err := a.db.GetUserContext(r.Context(), userID)
	if errors.Is(err, storage.ErrUserNotFound) {
		http.Error(w, "user not found", http.StatusNotFound)
		return field.User{}, false
	}
	if err != nil {
		log.Printf("[API] load user %s: %v", userID, err)
		http.Error(w, "load error", http.StatusInternalServerError)
		return field.User{}, false
	}
	return u, true
}

// saveUser persists the collection. A rejected save is surfaced to the
// caller for retry; the in-memory edit is theirs to resubmit, never dropped
// silently.
func (a *API) saveUser(w http.ResponseWriter, r *http.Request, u field.User) bool {
	if err := a.db.SaveUserContext(r.Context(), u); err != nil {
		log.Printf("[API] save user %s: %v", u.ID, err)
		http.Error(w, "save failed, please retry", http.StatusInternalServerError)
		return false
	}
	return true
}
