package api

import (
	"context"
	"log"
	"time"

	"cv-fields/internal/field"
)

// PropagationJob fans one source-language value out to the other supported
// languages in the background, after the debounce window elapsed.
type PropagationJob struct {
	UserID     string
	FieldID    string
	Version    int
	SourceLang string
	SourceText string
	Timestamp  time.Time
}

// StartBackgroundWorkers initializes background job workers
func (a *API) StartBackgroundWorkers() {
	go a.propagationWorker()
	log.Println("[BackgroundJobs] Workers started (translation propagation)")
}

// propagationWorker processes propagation jobs from the queue
func (a *API) propagationWorker() {
	log.Println("[PropagationWorker] Started")

	for job := range a.propagationQueue {
		a.runPropagation(job)
	}
}

func (a *API) runPropagation(job PropagationJob) {
	ctx := context.Background()

	u, err := a.db.GetUserContext(ctx, job.UserID)
	if err != nil {
		log.Printf("[PropagationWorker] load user %s: %v", job.UserID, err)
		return
	}

	// The working language may have moved on since the job was queued;
	// propagating from the old one would overwrite fresh content.
	if u.BaseLanguage != job.SourceLang {
		log.Printf("[PropagationWorker] dropping stale job for field %s (working language changed)", job.FieldID)
		return
	}

	f, ok := u.FieldByID(job.FieldID)
	if !ok {
		log.Printf("[PropagationWorker] field %s no longer exists, dropping job", job.FieldID)
		return
	}

	// Same guard for the slot itself: a later edit supersedes this job.
	if f.ValueAt(job.SourceLang, job.Version) != job.SourceText {
		log.Printf("[PropagationWorker] dropping stale job for field %s v%d (value changed)", job.FieldID, job.Version)
		return
	}

	now := time.Now().UTC()
	f = a.reconciler.Propagate(ctx, f, job.SourceLang, job.Version, job.SourceText, now)

	if err := a.db.SaveUserContext(ctx, u.WithField(f, now)); err != nil {
		// Translations stay in the marker map; the next edit or an explicit
		// reset retries them.
		log.Printf("[PropagationWorker] save user %s: %v", job.UserID, err)
		return
	}

	log.Printf("[PropagationWorker] field %s v%d propagated from %s (%d languages, took %v)",
		job.FieldID, job.Version, job.SourceLang, len(field.SupportedLanguages)-1, time.Since(job.Timestamp))
}

// QueuePropagation adds a propagation job to the background queue without
// blocking the request path.
func (a *API) QueuePropagation(job PropagationJob) {
	if a.propagationQueue == nil {
		log.Printf("[BackgroundJobs] Propagation queue not initialized, skipping field %s", job.FieldID)
		return
	}

	select {
	case a.propagationQueue <- job:
		log.Printf("[BackgroundJobs] Queued propagation for field %s v%d", job.FieldID, job.Version)
	default:
		log.Printf("[BackgroundJobs] Queue full! Dropping propagation for field %s v%d", job.FieldID, job.Version)
	}
}
