package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/ahcc-digital/oncoscreen/internal/auth"
	"github.com/ahcc-digital/oncoscreen/internal/config"
	"github.com/ahcc-digital/oncoscreen/internal/export"
	"github.com/ahcc-digital/oncoscreen/internal/store"
)

// JWTAuthMiddleware guards the admin dashboard routes.
func (h *APIHandler) JWTAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			http.Error(w, "Authorization header is required", http.StatusUnauthorized)
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		subject, err := auth.ValidateJWT(tokenString)
		if err != nil || subject != "admin" {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}

type AdminLoginRequest struct {
	Password string `json:"password"`
}

func (h *APIHandler) AdminLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req AdminLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	hash := config.AppConfig.AdminPassHash
	if hash == "" || !auth.CheckPasswordHash(req.Password, hash) {
		http.Error(w, "Invalid credentials", http.StatusUnauthorized)
		return
	}

	token, err := auth.GenerateJWT("admin")
	if err != nil {
		log.Printf("Error generating admin JWT: %v", err)
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *APIHandler) ListSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	subs, err := h.dbStore.ListSubmissions()
	if err != nil {
		log.Printf("Error listing submissions: %v", err)
		http.Error(w, "Failed to list submissions", http.StatusInternalServerError)
		return
	}
	if subs == nil {
		subs = []store.Submission{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *APIHandler) ExportSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	subs, err := h.dbStore.ListSubmissions()
	if err != nil {
		log.Printf("Error listing submissions for export: %v", err)
		http.Error(w, "Failed to export submissions", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="submissions.csv"`)
	if err := export.SubmissionsCSV(w, subs); err != nil {
		log.Printf("Error writing submissions CSV: %v", err)
	}
}

func (h *APIHandler) ClearSubmissionsHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.dbStore.ClearSubmissions(); err != nil {
		log.Printf("Error clearing submissions: %v", err)
		http.Error(w, "Failed to clear submissions", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
