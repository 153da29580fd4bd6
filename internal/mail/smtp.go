package mail

import (
	"context"
	"fmt"
	"strings"

	gomail "github.com/wneessen/go-mail"
)

type SMTPOptions struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type SMTPSender struct {
	client *gomail.Client
	from   string
}

func NewSMTPSender(options SMTPOptions) (*SMTPSender, error) {
	if strings.TrimSpace(options.Host) == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if strings.TrimSpace(options.From) == "" {
		return nil, fmt.Errorf("mail from address is required")
	}

	clientOptions := []gomail.Option{
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
	}
	if options.Port > 0 {
		clientOptions = append(clientOptions, gomail.WithPort(options.Port))
	}
	if options.Username != "" {
		clientOptions = append(clientOptions,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(options.Username),
			gomail.WithPassword(options.Password),
		)
	}

	client, err := gomail.NewClient(options.Host, clientOptions...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	return &SMTPSender{client: client, from: options.From}, nil
}

func (sender *SMTPSender) Send(ctx context.Context, message Message) error {
	if strings.TrimSpace(message.To) == "" {
		return ErrNoRecipient
	}

	msg := gomail.NewMsg()
	if err := msg.From(sender.from); err != nil {
		return fmt.Errorf("set from address: %w", err)
	}
	if err := msg.To(message.To); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	if message.ID != "" {
		msg.SetMessageIDWithValue(message.ID)
	}
	msg.Subject(message.Subject)
	msg.SetBodyString(gomail.TypeTextHTML, message.HTML)

	if err := sender.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}
