package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"studybud/internal/auth"
	"studybud/internal/middleware"
)

const loginPath = "/login"

// NewRouter wires every page. limiter may be nil to disable rate limiting
// on login and registration.
func NewRouter(authHandlers *AuthHandlers, roomHandlers *RoomHandlers, messageHandlers *MessageHandlers, sessions *auth.Sessions, limiter *middleware.LimiterStore) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.RequestLogger, sessions.LoadUser)

	limit := middleware.RateLimit(limiter, http.MethodPost)
	requireLogin := auth.RequireLogin(loginPath)
	getPost := []string{http.MethodGet, http.MethodPost}

	// Auth routes
	r.Handle("/login", limit(http.HandlerFunc(authHandlers.Login))).Methods(getPost...).Name("login")
	r.HandleFunc("/logout", authHandlers.Logout).Methods(getPost...).Name("logout")
	r.Handle("/register", limit(http.HandlerFunc(authHandlers.Register))).Methods(getPost...).Name("register")

	// Room routes
	r.HandleFunc("/", roomHandlers.Home).Methods(http.MethodGet).Name("home")
	r.Handle("/room/create", requireLogin(http.HandlerFunc(roomHandlers.CreateRoom))).Methods(getPost...).Name("create-room")
	r.Handle("/room/{id:[0-9]+}", requireLogin(http.HandlerFunc(roomHandlers.Room))).Methods(getPost...).Name("room")
	r.Handle("/room/update/{id:[0-9]+}", requireLogin(http.HandlerFunc(roomHandlers.UpdateRoom))).Methods(getPost...).Name("update-room")
	r.Handle("/room/delete/{id:[0-9]+}", requireLogin(http.HandlerFunc(roomHandlers.DeleteRoom))).Methods(getPost...).Name("delete-room")

	// Message routes
	r.Handle("/message/delete/{id:[0-9]+}", requireLogin(http.HandlerFunc(messageHandlers.DeleteMessage))).Methods(getPost...).Name("delete-message")

	return r
}
