package services

import (
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"
)

// EmailConfig holds SMTP settings, injected from config at startup
type EmailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	AppURL   string
}

// EmailService handles sending emails via SMTP. Every send is best-effort:
// callers log failures and move on, a lost email never fails a payment.
type EmailService struct {
	config EmailConfig
}

// NewEmailService creates a new email service instance
func NewEmailService(config EmailConfig) *EmailService {
	if config.Host == "" {
		config.Host = "smtp.gmail.com"
	}
	if config.Port == 0 {
		config.Port = 587
	}
	if config.From == "" {
		config.From = "noreply@courseloft.app"
	}
	return &EmailService{config: config}
}

// IsConfigured checks if SMTP is properly configured
func (e *EmailService) IsConfigured() bool {
	return e.config.Username != "" && e.config.Password != ""
}

// SendOTPEmail sends a one-time verification code for signup or password reset
func (e *EmailService) SendOTPEmail(toEmail, userName, code, purpose string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. OTP for %s (%s): %s", toEmail, purpose, code)
		return fmt.Errorf("SMTP not configured")
	}

	subject := "Your verification code - Courseloft"
	intro := "Use this code to verify your email address:"
	if purpose == "password_reset" {
		subject = "Your password reset code - Courseloft"
		intro = "Use this code to reset your password:"
	}

	body := e.wrapBody(userName, fmt.Sprintf(`
        <p>%s</p>
        <p class="code">%s</p>
        <p>The code expires in 10 minutes. If you didn't request it, you can safely ignore this email.</p>`,
		intro, code))

	return e.sendEmail(toEmail, subject, body)
}

// SendAccountCredentials delivers the generated password to a user provisioned
// during guest checkout. This is the only channel the plaintext ever travels.
func (e *EmailService) SendAccountCredentials(toEmail, password string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Skipping credentials email for %s", toEmail)
		return fmt.Errorf("SMTP not configured")
	}

	body := e.wrapBody("", fmt.Sprintf(`
        <p>An account was created for you during checkout. Sign in with:</p>
        <p><strong>Email:</strong> %s<br><strong>Password:</strong> <span class="code">%s</span></p>
        <p>Please change this password after your first login.</p>
        <p style="text-align: center;"><a href="%s/login" class="button">Sign In</a></p>`,
		toEmail, password, e.config.AppURL))

	return e.sendEmail(toEmail, "Your Courseloft account", body)
}

// SendReceiptEmail sends the purchase receipt after a verified payment
func (e *EmailService) SendReceiptEmail(toEmail, userName, courseTitle, receiptURL string) error {
	if !e.IsConfigured() {
		log.Printf("SMTP not configured. Skipping receipt email for %s", toEmail)
		return fmt.Errorf("SMTP not configured")
	}

	body := e.wrapBody(userName, fmt.Sprintf(`
        <p>Thank you for purchasing <strong>%s</strong>. Your payment has been confirmed and the course is now available in your library.</p>
        <p style="text-align: center;"><a href="%s" class="button">View Receipt</a></p>`,
		courseTitle, receiptURL))

	return e.sendEmail(toEmail, fmt.Sprintf("Receipt for %s - Courseloft", courseTitle), body)
}

// SendExpiryReminder warns a user their course access lapses soon
func (e *EmailService) SendExpiryReminder(toEmail, userName, courseTitle string, remaining RemainingTime) error {
	if !e.IsConfigured() {
		return fmt.Errorf("SMTP not configured")
	}

	body := e.wrapBody(userName, fmt.Sprintf(`
        <p>Your access to <strong>%s</strong> expires in %s.</p>
        <p>Renew now to keep watching without interruption.</p>
        <p style="text-align: center;"><a href="%s/courses" class="button">Renew Access</a></p>`,
		courseTitle, remaining.Human, e.config.AppURL))

	return e.sendEmail(toEmail, fmt.Sprintf("Your access to %s is expiring - Courseloft", courseTitle), body)
}

// wrapBody wraps content in the shared email layout
func (e *EmailService) wrapBody(userName, content string) string {
	greeting := "Hello,"
	if userName != "" {
		greeting = fmt.Sprintf("Hello %s,", userName)
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; background-color: #f5f5f5; }
        .container { background-color: #ffffff; border-radius: 8px; padding: 40px; }
        .logo h1 { color: #1a3c6e; font-size: 28px; margin: 0 0 20px; border-bottom: 2px solid #1a3c6e; padding-bottom: 12px; }
        .button { display: inline-block; background-color: #1a3c6e; color: #ffffff !important; padding: 14px 28px; text-decoration: none; border-radius: 6px; font-weight: 600; margin: 20px 0; }
        .code { font-size: 24px; font-weight: 700; letter-spacing: 4px; color: #1a3c6e; }
        .footer { margin-top: 30px; padding-top: 20px; border-top: 1px solid #eee; font-size: 12px; color: #666; text-align: center; }
    </style>
</head>
<body>
    <div class="container">
        <div class="logo"><h1>Courseloft</h1></div>
        <p>%s</p>
        %s
        <div class="footer">
            <p><strong>Courseloft</strong> — learn at your own pace</p>
            <p><a href="%s">%s</a></p>
        </div>
    </div>
</body>
</html>`, greeting, content, e.config.AppURL, e.config.AppURL)
}

// sendEmail sends an email using SMTP with TLS
func (e *EmailService) sendEmail(to, subject, htmlBody string) error {
	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("Courseloft <%s>", e.config.From)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", e.config.Host, e.config.Port)
	auth := smtp.PlainAuth("", e.config.Username, e.config.Password, e.config.Host)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         e.config.Host,
	}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := conn.Mail(e.config.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()

	log.Printf("Email sent to %s: %s", to, subject)
	return nil
}
