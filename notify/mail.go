package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// MailerConfig holds SMTP settings for the mail notifier.
type MailerConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Mailer sends approval notices over SMTP.
type Mailer struct {
	cfg MailerConfig
}

var _ Notifier = (*Mailer)(nil)

func NewMailer(cfg MailerConfig) *Mailer {
	return &Mailer{cfg: cfg}
}

// VacationApproved emails the employee a vacation notice.
func (m *Mailer) VacationApproved(ctx context.Context, n Notice) error {
	if n.EmployeeEmail == "" {
		return nil
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("invalid from address: %w", err)
	}
	if err := msg.To(n.EmployeeEmail); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}

	msg.Subject(fmt.Sprintf("Vacation approved: %s - %s",
		n.StartDate.Format("2006-01-02"), n.EndDate.Format("2006-01-02")))
	msg.SetBodyString(mail.TypeTextPlain, fmt.Sprintf(
		"Hello %s,\n\nYour vacation request for %s day(s) from %s to %s (period %d) has been approved.\n",
		n.EmployeeName, n.Days, n.StartDate.Format("2006-01-02"),
		n.EndDate.Format("2006-01-02"), n.Period))

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}

	return client.DialAndSendWithContext(ctx, msg)
}
