package mailer

import (
	"encoding/json"
	"net/smtp"
	"os"
	"time"

	"github.com/orbitx/notification-service/internal/dto"
	"github.com/orbitx/notification-service/internal/rabbitmq"
	"go.uber.org/zap"
)

type Mailer struct {
	logger   *zap.Logger
	rabbitmq *rabbitmq.MQConn

	from string
	pass string
	host string
	port string
}

func New(logger *zap.Logger, mq *rabbitmq.MQConn) *Mailer {
	return &Mailer{
		logger:   logger,
		rabbitmq: mq,
		from:     os.Getenv("SMTP_FROM"),
		pass:     os.Getenv("SMTP_PASS"),
		host:     os.Getenv("SMTP_HOST"),
		port:     os.Getenv("SMTP_PORT"),
	}
}

func (m *Mailer) StartProcessing() {
	go m.ProcessSystemMail()
}

// ProcessSystemMail drains the system-mail queue populated by broadcast
// notifications flagged with send_mail.
func (m *Mailer) ProcessSystemMail() {
	queue := rabbitmq.SYSTEM_MAIL_QUEUE
	msgs, err := m.rabbitmq.Consume(queue)
	if err != nil {
		m.logger.Sugar().Fatalf("Failed to start consuming(%s): %s", queue, err.Error())
	}

	for msg := range msgs {
		var message dto.MQSystemMail
		if err := json.Unmarshal(msg.Body, &message); err != nil {
			m.logger.Sugar().Errorf("Failed to unmarshal json in queue(%s): %s", queue, err.Error())
			msg.Nack(false, false)
			continue
		}

		if err := m.SendSystemMail(message); err != nil {
			m.logger.Sugar().Errorf("Failed to send mail to(%s): %s", message.Email, err.Error())
			msg.Nack(false, true)
			continue
		}

		msg.Ack(false)

		m.logger.Sugar().Infof("Successfully sent system mail from queue(%s) to(%s)", queue, message.Email)
		time.Sleep(time.Millisecond * 10)
	}
}

func (m *Mailer) SendSystemMail(input dto.MQSystemMail) error {
	msg := []byte("Subject: " + input.Title + "\r\n" +
		"MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n\n" +
		"\r\n" + input.Content)

	auth := smtp.PlainAuth("", m.from, m.pass, m.host)

	if err := smtp.SendMail(m.host+":"+m.port, auth, m.from, []string{input.Email}, msg); err != nil {
		return err
	}

	return nil
}
