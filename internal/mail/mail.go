// mail формирует и отправляет служебные письма (подтверждение e-mail).
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
)

//go:generate mockgen -destination=../mocks/mock_mail.go -package=mocks github.com/pribylovaa/smilecook/internal/mail Sender

// Message — письмо одному получателю.
type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

// Sender — контракт отправки писем.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

var activationHTML = template.Must(template.New("activation").Parse(
	`<p>Hi, {{.Username}}! Thanks for using SmileCook!</p>` +
		`<p>Please confirm your registration by clicking on the link below:</p>` +
		`<p><a href="{{.Link}}">{{.Link}}</a></p>`,
))

// ActivationMessage собирает письмо со ссылкой подтверждения регистрации.
func ActivationMessage(username, email, link string) (Message, error) {
	var html bytes.Buffer
	if err := activationHTML.Execute(&html, struct{ Username, Link string }{username, link}); err != nil {
		return Message{}, fmt.Errorf("mail.ActivationMessage: %w", err)
	}

	return Message{
		ToName:  username,
		ToEmail: email,
		Subject: "Please confirm your registration.",
		Text:    fmt.Sprintf("Hi, %s! Thanks for using SmileCook! Please confirm your registration by clicking on the link: %s", username, link),
		HTML:    html.String(),
	}, nil
}
