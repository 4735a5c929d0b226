package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(apiHandler *APIHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling

	// All API routes will be under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(`{"status":"ok"}`))
		})

		r.Get("/categories", apiHandler.CategoriesHandler)
		r.Get("/settings/form-mode", apiHandler.FormModeHandler)

		// Quiz flow
		r.Post("/sessions", apiHandler.StartSessionHandler)
		r.Get("/sessions/{sessionID}", apiHandler.GetSessionHandler)
		r.Post("/sessions/{sessionID}/answers", apiHandler.SubmitAnswerHandler)
		r.Post("/sessions/{sessionID}/profile", apiHandler.SubmitLeadHandler)
		r.Get("/sessions/{sessionID}/result", apiHandler.GetResultHandler)
		r.Get("/history", apiHandler.HistoryHandler)

		// Conversational flow
		r.Post("/chats", apiHandler.StartChatHandler)
		r.Post("/chats/{chatID}/messages", apiHandler.PostTurnHandler)
		r.Get("/chats/{chatID}/messages", apiHandler.ChatMessagesHandler)
		r.Put("/chats/{chatID}/contact", apiHandler.UpdateContactHandler)

		// Shareable reports
		r.Get("/reports/{reportID}", apiHandler.GetReportHandler)
		r.Get("/reports/{reportID}/qr.png", apiHandler.ReportQRHandler)
		r.Get("/reports/{reportID}/pdf", apiHandler.ReportPDFHandler)

		// Admin dashboard
		r.Post("/admin/login", apiHandler.AdminLoginHandler)
		r.Group(func(r chi.Router) {
			r.Use(apiHandler.JWTAuthMiddleware)

			r.Get("/admin/submissions", apiHandler.ListSubmissionsHandler)
			r.Get("/admin/submissions.csv", apiHandler.ExportSubmissionsHandler)
			r.Delete("/admin/submissions", apiHandler.ClearSubmissionsHandler)
		})
	})

	return r
}
