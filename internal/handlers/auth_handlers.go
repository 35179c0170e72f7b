package handlers

import (
	"errors"
	"net/http"

	"studybud/internal/auth"
	"studybud/internal/forms"
	"studybud/internal/models"
	"studybud/internal/view"
	"studybud/pkg/logger"
)

const (
	loginFailedNotice    = "Username or password does not exist"
	registerFailedNotice = "An error occurred during registration. Try again!"
)

type AuthHandlers struct {
	pages
	authService *auth.Service
}

func NewAuthHandlers(authService *auth.Service, sessions *auth.Sessions, renderer view.Renderer) *AuthHandlers {
	return &AuthHandlers{
		pages:       pages{renderer: renderer, sessions: sessions},
		authService: authService,
	}
}

func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); ok {
		redirect(w, r, "/")
		return
	}

	if r.Method != http.MethodPost {
		h.render(w, r, view.LoginRegister, view.LoginRegisterData{Page: "login"})
		return
	}

	req := models.LoginRequest{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}

	response, err := h.authService.Login(r.Context(), &req)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		logger.Debug("Login failed for %q", req.Username)
		h.render(w, r, view.LoginRegister, view.LoginRegisterData{Page: "login", Username: req.Username}, loginFailedNotice)
		return
	}
	if err != nil {
		internalError(w, "Login", err)
		return
	}

	if err := h.sessions.Establish(w, r, response.Token); err != nil {
		internalError(w, "Login session", err)
		return
	}
	logger.Info("User %s logged in", response.User.Username)
	redirect(w, r, "/")
}

func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Destroy(w, r); err != nil {
		logger.Error("Logout error: %v", err)
	}
	redirect(w, r, "/")
}

func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.render(w, r, view.LoginRegister, view.LoginRegisterData{Page: "register", Form: &forms.RegisterForm{Errors: forms.Errors{}}})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	form := forms.BindRegisterForm(r.PostForm)
	response, err := h.authService.Register(r.Context(), form)
	if errors.Is(err, forms.ErrInvalid) {
		h.render(w, r, view.LoginRegister, view.LoginRegisterData{Page: "register", Form: form}, registerFailedNotice)
		return
	}
	if err != nil {
		internalError(w, "Register", err)
		return
	}

	if err := h.sessions.Establish(w, r, response.Token); err != nil {
		internalError(w, "Register session", err)
		return
	}
	logger.Info("User %s registered", response.User.Username)
	redirect(w, r, "/")
}
