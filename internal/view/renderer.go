package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"studybud/internal/forms"
	"studybud/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names.
const (
	LoginRegister = "login_register.html"
	Home          = "home.html"
	Room          = "room.html"
	RoomForm      = "room_form.html"
	Delete        = "delete.html"
)

// Renderer writes a named page.
type Renderer interface {
	Render(w io.Writer, name string, data any) error
}

// Page is passed to every template.
type Page struct {
	User    *models.User
	Flashes []string
	Data    any
}

type LoginRegisterData struct {
	Page     string // "login" or "register"
	Username string
	Form     *forms.RegisterForm
}

type RoomFormData struct {
	Form   *forms.RoomForm
	Topics []*models.Topic
	Room   *models.Room // nil when creating
}

type DeleteData struct {
	Object    string
	CancelURL string
}

// PageRenderer renders pages from the embedded templates. Each page is
// parsed together with the shared layout.
type PageRenderer struct {
	templates map[string]*template.Template
}

func NewPageRenderer() (*PageRenderer, error) {
	pages := []string{LoginRegister, Home, Room, RoomForm, Delete}
	templates := make(map[string]*template.Template, len(pages))

	for _, page := range pages {
		t, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = t
	}
	return &PageRenderer{templates: templates}, nil
}

// Render executes the page into a buffer first so a failing template never
// leaves a half-written response.
func (pr *PageRenderer) Render(w io.Writer, name string, data any) error {
	t, ok := pr.templates[name]
	if !ok {
		return fmt.Errorf("template is missing: %s", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		return fmt.Errorf("failed to render %s: %w", name, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

var funcs = template.FuncMap{
	"since": since,
}

// since formats the time elapsed since t in the largest whole unit.
func since(t time.Time) string {
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return plural(int(d/time.Minute), "minute") + " ago"
	case d < 24*time.Hour:
		return plural(int(d/time.Hour), "hour") + " ago"
	default:
		return plural(int(d/(24*time.Hour)), "day") + " ago"
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
