package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/google/uuid"
	"github.com/terraincognita07/goaltrack/internal/i18n"
)

//go:embed templates/*.html
var templateFiles embed.FS

type Translator interface {
	Translate(language string, key string) string
	Translatef(language string, key string, args ...any) string
}

// Renderer turns notification content into localized HTML messages.
type Renderer struct {
	translator Translator
	template   *template.Template
}

type DigestContent struct {
	Username     string
	Language     string
	Date         string
	Titles       []string
	DashboardURL string
	DeleteURL    string
}

type WelcomeContent struct {
	Username string
	Language string
	LoginURL string
}

type messageView struct {
	Greeting     string
	Intro        string
	Items        []string
	Lines        []string
	ActionURL    string
	ActionLabel  string
	DeletePrompt string
	DeleteURL    string
	DeleteLabel  string
}

func NewRenderer(translator Translator) (*Renderer, error) {
	if translator == nil {
		return nil, fmt.Errorf("translator is required")
	}
	parsed, err := template.ParseFS(templateFiles, "templates/message.html")
	if err != nil {
		return nil, fmt.Errorf("parse email template: %w", err)
	}
	return &Renderer{translator: translator, template: parsed}, nil
}

// NewDefaultRenderer uses the embedded locale catalogs.
func NewDefaultRenderer(defaultLanguage string) (*Renderer, error) {
	manager, err := i18n.NewDefaultManager(defaultLanguage)
	if err != nil {
		return nil, err
	}
	return NewRenderer(manager)
}

func (renderer *Renderer) Reminder(to string, content DigestContent) (Message, error) {
	language := content.Language
	view := messageView{
		Greeting:     renderer.translator.Translatef(language, "email.reminder.greeting", content.Username),
		Intro:        renderer.translator.Translatef(language, "email.reminder.intro", len(content.Titles), content.Date),
		Items:        content.Titles,
		Lines:        []string{renderer.translator.Translate(language, "email.reminder.encouragement")},
		ActionURL:    content.DashboardURL,
		ActionLabel:  renderer.translator.Translate(language, "email.action.dashboard"),
		DeletePrompt: renderer.translator.Translate(language, "email.delete.prompt"),
		DeleteURL:    content.DeleteURL,
		DeleteLabel:  renderer.translator.Translate(language, "email.delete.action"),
	}
	return renderer.render(to, renderer.translator.Translate(language, "email.reminder.subject"), view)
}

func (renderer *Renderer) Reward(to string, content DigestContent) (Message, error) {
	language := content.Language
	view := messageView{
		Greeting:     renderer.translator.Translatef(language, "email.reward.greeting", content.Username),
		Intro:        renderer.translator.Translatef(language, "email.reward.intro", content.Date),
		Items:        content.Titles,
		Lines:        []string{renderer.translator.Translate(language, "email.reward.encouragement")},
		ActionURL:    content.DashboardURL,
		ActionLabel:  renderer.translator.Translate(language, "email.action.dashboard"),
		DeletePrompt: renderer.translator.Translate(language, "email.delete.prompt"),
		DeleteURL:    content.DeleteURL,
		DeleteLabel:  renderer.translator.Translate(language, "email.delete.action"),
	}
	return renderer.render(to, renderer.translator.Translate(language, "email.reward.subject"), view)
}

// Welcome never includes the password.
func (renderer *Renderer) Welcome(to string, content WelcomeContent) (Message, error) {
	language := content.Language
	view := messageView{
		Greeting: renderer.translator.Translatef(language, "email.welcome.greeting", content.Username),
		Intro:    renderer.translator.Translate(language, "email.welcome.intro"),
		Lines: []string{
			renderer.translator.Translatef(language, "email.welcome.username", content.Username),
		},
		ActionURL:   content.LoginURL,
		ActionLabel: renderer.translator.Translate(language, "email.action.login"),
	}
	return renderer.render(to, renderer.translator.Translate(language, "email.welcome.subject"), view)
}

func (renderer *Renderer) render(to string, subject string, view messageView) (Message, error) {
	var body bytes.Buffer
	if err := renderer.template.ExecuteTemplate(&body, "message.html", view); err != nil {
		return Message{}, fmt.Errorf("render email: %w", err)
	}
	return Message{
		ID:      uuid.NewString(),
		To:      to,
		Subject: subject,
		HTML:    body.String(),
	}, nil
}
