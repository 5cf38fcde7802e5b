package mailer

import (
	"fmt"
	"os"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail, name string) error
	SendPaymentFailed(toEmail string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

func (s *emailService) SendWelcome(toEmail, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Welcome to Atlas")

	if name == "" {
		name = "there"
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome to Atlas, %s!</h2>
			<p>Your account is ready. Start a conversation whenever you like, by text or by voice.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open Atlas</a>
			<p>If you didn't create this account, please ignore this email.</p>
		</div>
	`, name, s.frontendURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send welcome to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Welcome sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendPaymentFailed(toEmail string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Payment Issue With Your Atlas Subscription")

	billingLink := fmt.Sprintf("%s/settings/billing", s.frontendURL)

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>We Couldn't Process Your Payment</h2>
			<p>Your latest subscription payment did not go through. Your plan stays active during the grace period, please update your payment details to keep it.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Update Payment Details</a>
			<p>Or copy this link:</p>
			<p>%s</p>
		</div>
	`, billingLink, billingLink)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send payment notice to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Payment notice sent to %s\n", toEmail)
	return nil
}
