package api

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

func NewRouter(a *API) http.Handler {
	mux := http.NewServeMux()

	// Swagger documentation - must be registered first
	mux.Handle("/swagger/", httpSwagger.Handler(
		httpSwagger.URL("http://localhost:8080/swagger/doc.json"),
	))

	// Health check (for Railway, k8s, etc.)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	})

	// User & field endpoints
	mux.HandleFunc("/api/users", a.GetUserHandler)
	mux.HandleFunc("/api/language", a.ChangeLanguageHandler)
	mux.HandleFunc("/api/fields/create", a.CreateFieldHandler)
	mux.HandleFunc("/api/fields/value", a.SetValueHandler)
	mux.HandleFunc("/api/fields/clear", a.ClearVersionHandler)
	mux.HandleFunc("/api/fields/reset", a.ResetHandler)

	// CV extraction & matching endpoints
	mux.HandleFunc("/api/cv/upload", a.CVUploadHandler)
	mux.HandleFunc("/api/matches/commit", a.CommitMatchesHandler)

	return mux
}
