package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"cv-fields/internal/match"
)

// CVUploadHandler parses a CV and proposes field assignments
// @Summary Upload a CV and propose matches
// @Description Upload a CV file (PDF/DOCX/TXT), extract its content and propose assignments to the user's fields. Nothing is committed: the proposals go back to the client for confirmation.
// @Tags cv
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "CV file (PDF, DOCX or TXT)"
// @Param user_id formData string true "User ID"
// @Param ai formData bool false "Use LLM-assisted matching for scalar keys"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /cv/upload [post]
func (a *API) CVUploadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	startTime := time.Now()

	// Parse multipart form (max 10MB)
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "file too large or invalid (max 10MB)", http.StatusBadRequest)
		return
	}

	u, ok := a.loadUser(w, r, r.FormValue("user_id"))
	if !ok {
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "no file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	ext := filepath.Ext(header.Filename)
	if ext != ".pdf" && ext != ".docx" && ext != ".doc" && ext != ".txt" {
		http.Error(w, "invalid file type (supported: PDF, DOCX, TXT)", http.StatusBadRequest)
		return
	}

	parsed, err := a.cvParser.ParseFile(header.Filename, file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to parse CV: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("CV parsed: %s (%d bytes text)", parsed.Filename, len(parsed.FullText))

	extraction, err := a.extractor.Extract(parsed.FullText)
	if err != nil {
		http.Error(w, "extraction failed", http.StatusInternalServerError)
		return
	}

	var (
		proposals []match.Match
		method    = "heuristic"
	)
	if r.FormValue("ai") == "true" && a.aiMatcher != nil {
		method = "llm"
		proposals, err = a.aiMatcher.ProposeMatches(extraction, u.Data, u.BaseLanguage)
		if err != nil {
			// The heuristics still work when the model does not.
			log.Printf("LLM matching failed, falling back to heuristics: %v", err)
			method = "heuristic"
			proposals = a.matcher.ProposeMatches(extraction, u.Data, u.BaseLanguage)
		}
	} else {
		proposals = a.matcher.ProposeMatches(extraction, u.Data, u.BaseLanguage)
	}

	log.Printf("Proposed %d matches for user %s (%s)", len(proposals), u.ID, method)

	writeJSON(w, map[string]interface{}{
		"filename":           parsed.Filename,
		"file_type":          parsed.FileType,
		"file_size":          parsed.FileSize,
		"text_length":        len(parsed.FullText),
		"matching_method":    method,
		"proposals":          proposals,
		"processing_time_ms": time.Since(startTime).Milliseconds(),
	})
}

type commitMatchesRequest struct {
	UserID  string        `json:"user_id"`
	Matches []match.Match `json:"matches"`
}

// CommitMatchesHandler applies confirmed match proposals
// @Summary Commit confirmed matches
// @Description Write the user-confirmed proposals into their field slots. Working-language writes are queued for translation fan-out.
// @Tags cv
// @Accept json
// @Produce json
// @Param request body commitMatchesRequest true "Confirmed matches"
// @Success 200 {object} field.User
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /matches/commit [post]
func (a *API) CommitMatchesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req commitMatchesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	u, ok := a.loadUser(w, r, req.UserID)
	if !ok {
		return
	}

	now := time.Now().UTC()
	applied := 0
	for _, m := range req.Matches {
		f, ok := u.FieldByID(m.FieldID)
		if !ok {
			log.Printf("[API] commit: unknown field %s, skipping", m.FieldID)
			continue
		}
		f, err := a.reconciler.SetValue(f, m.TargetLanguage, m.TargetVersion, m.ExtractedValue, now)
		if err != nil {
			log.Printf("[API] commit %s: %v, skipping", m.FieldID, err)
			continue
		}
		u = u.WithField(f, now)
		applied++
	}

	if !a.saveUser(w, r, u) {
		return
	}

	// Committed working-language values fan out like direct edits.
	for _, m := range req.Matches {
		if m.TargetLanguage != u.BaseLanguage || m.ExtractedValue == "" {
			continue
		}
		a.QueuePropagation(PropagationJob{
			UserID:     u.ID,
			FieldID:    m.FieldID,
			Version:    m.TargetVersion,
			SourceLang: m.TargetLanguage,
			SourceText: m.ExtractedValue,
			Timestamp:  time.Now(),
		})
	}

	log.Printf("Committed %d/%d matches for user %s", applied, len(req.Matches), u.ID)
	writeJSON(w, u)
}
