package handlers

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"studybud/internal/auth"
	"studybud/internal/view"
	"studybud/pkg/logger"
)

// pages renders templates with the current user and pending notices.
type pages struct {
	renderer view.Renderer
	sessions *auth.Sessions
}

// render writes the page. notices are shown on this page only, after any
// queued flashes.
func (p *pages) render(w http.ResponseWriter, r *http.Request, name string, data any, notices ...string) {
	page := view.Page{Data: data}
	if user, ok := auth.UserFromContext(r.Context()); ok {
		page.User = user
	}
	page.Flashes = append(p.sessions.Flashes(w, r), notices...)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := p.renderer.Render(w, name, page); err != nil {
		logger.Error("Render %s error: %v", name, err)
		http.Error(w, "An unexpected error occurred", http.StatusInternalServerError)
	}
}

func (p *pages) flash(w http.ResponseWriter, r *http.Request, message string) {
	if err := p.sessions.AddFlash(w, r, message); err != nil {
		logger.Error("Flash error: %v", err)
	}
}

func redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// pathID parses the {id} route variable. Routes constrain it to digits, so
// only overflow fails here.
func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

func roomPath(id int64) string {
	return "/room/" + strconv.FormatInt(id, 10)
}

func currentUserID(r *http.Request) int64 {
	if user, ok := auth.UserFromContext(r.Context()); ok {
		return user.ID
	}
	return 0
}
