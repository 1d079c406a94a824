package email

import (
	"context"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/30Sativa/AWS-Blood-Donation-Support-sub002/internal/config"
)

type smtpService struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPService(cfg config.SMTPConfig) Service {
	return &smtpService{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpService) SendDonorContacted(ctx context.Context, to string, donorName string, bloodGroup string) error {
	subject := "Blood donation request - we need your help"
	body := fmt.Sprintf(
		"Hello %s,\n\nA nearby blood request matches your blood group (%s). "+
			"Please open the app to accept or decline.\n\nThank you for being a donor.",
		donorName, bloodGroup,
	)
	return s.SendCustom(ctx, to, subject, body)
}

func (s *smtpService) SendRequestFulfilled(ctx context.Context, to string) error {
	return s.SendCustom(ctx, to,
		"Your blood request has been fulfilled",
		"Good news - a donor has completed the donation for your request.")
}

func (s *smtpService) SendCustom(ctx context.Context, to string, subject string, content string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", content)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
