package utils

import (
	"fmt"
	"net/smtp"
	"os"
)

// SendResetCodeEmail delivers a password reset code over SMTP.
// When SMTP is not configured the code is logged so local development
// still works without a mail server.
func SendResetCodeEmail(to, name, code string) error {
	host := os.Getenv("SMTP_HOST")
	if host == "" {
		fmt.Printf("[mailer] SMTP not configured, reset code for %s: %s\n", to, code)
		return nil
	}
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	user := os.Getenv("SMTP_USER")
	pass := os.Getenv("SMTP_PASS")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}

	subject := "Your password reset code"
	body := fmt.Sprintf("Hi %s,\r\n\r\nYour password reset code is: %s\r\n\r\nThe code expires in 10 minutes. If you did not request it, you can ignore this email.\r\n", name, code)
	msg := []byte(fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s", from, to, subject, body))

	var auth smtp.Auth
	if user != "" {
		auth = smtp.PlainAuth("", user, pass, host)
	}
	return smtp.SendMail(host+":"+port, auth, from, []string{to}, msg)
}
