package utils

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
)

// SMTPMailer sends plain-text email through an authenticated SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	FromName string
	FromAddr string
}

// Send delivers a single message. Port 465 uses implicit TLS; other
// ports go through smtp.SendMail, which upgrades with STARTTLS when
// the server offers it.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if m.Host == "" || m.Port == "" || m.Username == "" || m.Password == "" {
		return fmt.Errorf("smtp not configured")
	}

	from := m.FromAddr
	if from == "" {
		from = m.Username
	}

	msg := []byte("From: " + m.FromName + " <" + from + ">\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := m.Host + ":" + m.Port
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)

	if m.Port != "465" {
		return smtp.SendMail(addr, auth, from, []string{to}, msg)
	}

	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.Close()
}
