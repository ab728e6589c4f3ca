package login

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrJamesThe3rd/dashboard/internal/action"
	"github.com/MrJamesThe3rd/dashboard/internal/identity"
)

type Handler struct {
	actions *action.Actions
	auth    *identity.Auth
}

func NewHandler(actions *action.Actions, auth *identity.Auth) *Handler {
	return &Handler{actions: actions, auth: auth}
}

func (h *Handler) Routes(r chi.Router) {
	r.With(h.auth.RedirectIfAuthenticated).Get("/login", h.form)
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
}

type formResponse struct {
	Provider    string `json:"provider"`
	CallbackURL string `json:"callbackUrl"`
	Message     string `json:"message,omitempty"`
}

func (h *Handler) form(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, formResponse{
		Provider:    identity.CredentialsProviderID,
		CallbackURL: callbackURL(r.URL.Query().Get("callbackUrl")),
	})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	target := callbackURL(r.PostForm.Get("redirectTo"))

	res, err := h.actions.Authenticate(r.Context(), "", r.PostForm)
	if err != nil {
		slog.Error("failed to authenticate", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)

		return
	}

	if res.Session == nil {
		writeJSON(w, http.StatusUnauthorized, formResponse{
			Provider:    identity.CredentialsProviderID,
			CallbackURL: target,
			Message:     res.Message,
		})

		return
	}

	h.auth.SetCookie(w, res.Session)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.auth.ClearCookie(w)
	http.Redirect(w, r, identity.LoginPath, http.StatusSeeOther)
}

// callbackURL keeps post-login navigation on this site.
func callbackURL(raw string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.HasPrefix(raw, "/\\") {
		return identity.DashboardPath
	}

	return raw
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
