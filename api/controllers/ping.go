package controllers

import (
	"net/http"

	"github.com/mfigueroa/showroom-backend/api/middleware"
	"github.com/mfigueroa/showroom-backend/api/responses"
)

func PublicPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, map[string]string{"scope": "public", "status": "ok"})
	}
}

func AdminPing() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := map[string]string{"scope": "admin", "status": "ok"}
		if email := middleware.AdminEmailFromContext(r.Context()); email != "" {
			payload["admin_email"] = email
		}
		responses.WriteSuccess(w, payload)
	}
}
