package mail

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"

	"devtrack.app/api/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// ErrPermanent marks failures that retrying cannot fix, such as a
// notification missing template data.
var ErrPermanent = errors.New("permanent mail failure")

var subjects = map[model.NotificationType]string{
	model.NotificationOTP:                 "Your password reset code",
	model.NotificationWelcome:             "Welcome to %s",
	model.NotificationTaskAssigned:        "Task assigned: %s",
	model.NotificationBugAssigned:         "Bug assigned: %s",
	model.NotificationSuggestionResponded: "Update on your suggestion: %s",
	model.NotificationPermissionGranted:   "New permission: %s",
}

// requiredKeys must be present in Notification.Data for each type.
var requiredKeys = map[model.NotificationType][]string{
	model.NotificationOTP:                 {"code", "ttl_minutes"},
	model.NotificationWelcome:             {"role", "login_url"},
	model.NotificationTaskAssigned:        {"title", "project", "priority", "url"},
	model.NotificationBugAssigned:         {"title", "project", "severity", "url"},
	model.NotificationSuggestionResponded: {"title", "status"},
	model.NotificationPermissionGranted:   {"permission", "description"},
}

type Rendered struct {
	Subject string
	HTML    string
}

type Renderer struct {
	appName   string
	templates map[model.NotificationType]*template.Template
}

func NewRenderer(appName string) (*Renderer, error) {
	r := &Renderer{
		appName:   appName,
		templates: make(map[model.NotificationType]*template.Template, len(subjects)),
	}
	for typ := range subjects {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(typ)+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", typ, err)
		}
		r.templates[typ] = tmpl
	}
	return r, nil
}

type templateData struct {
	AppName string
	Name    string
	Data    map[string]string
}

func (r *Renderer) Render(n model.Notification) (Rendered, error) {
	tmpl, ok := r.templates[n.Type]
	if !ok {
		return Rendered{}, fmt.Errorf("%w: no template for %q", ErrPermanent, n.Type)
	}
	for _, key := range requiredKeys[n.Type] {
		if n.Data[key] == "" {
			return Rendered{}, fmt.Errorf("%w: %s notification missing %q", ErrPermanent, n.Type, key)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", templateData{AppName: r.appName, Name: n.Name, Data: n.Data}); err != nil {
		return Rendered{}, fmt.Errorf("%w: rendering %s: %v", ErrPermanent, n.Type, err)
	}

	return Rendered{Subject: r.subject(n), HTML: buf.String()}, nil
}

func (r *Renderer) subject(n model.Notification) string {
	format := subjects[n.Type]
	switch n.Type {
	case model.NotificationOTP:
		return format
	case model.NotificationWelcome:
		return fmt.Sprintf(format, r.appName)
	case model.NotificationPermissionGranted:
		return fmt.Sprintf(format, n.Data["permission"])
	default:
		return fmt.Sprintf(format, n.Data["title"])
	}
}
