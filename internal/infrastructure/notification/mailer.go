package notification

import (
	"github.com/jhoicas/pedidos-api/internal/application/account"
	"github.com/jhoicas/pedidos-api/internal/application/order"
	"github.com/jhoicas/pedidos-api/pkg/config"
	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"
)

var _ account.Notifier = (*Mailer)(nil)
var _ order.Notifier = (*Mailer)(nil)

// Mailer despachador de notificaciones por SMTP (gomail).
// Con SMTP_HOST vacío opera en modo dev: registra la notificación en el log
// en lugar de enviarla. Los callers tratan el envío como best-effort.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewMailer construye el despachador. cfg.Host vacío activa el modo dev.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	m := &Mailer{from: cfg.From}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password)
	}
	return m
}

// Send entrega una notificación. En modo dev solo la registra en el log.
func (m *Mailer) Send(recipient, subject, body string) error {
	if m.dialer == nil {
		log.Info().
			Str("recipient", recipient).
			Str("subject", subject).
			Msg("notificación (modo dev, sin SMTP)")
		return nil
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", recipient)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.dialer.DialAndSend(msg)
}
