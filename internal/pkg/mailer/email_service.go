package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendWelcome(toEmail, fullName string) error
	SendRecordUploaded(toEmail, recordName string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	clientURL   string // Used to construct dashboard links
}

func NewEmailService(host string, port int, username, password, senderEmail, clientURL string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		clientURL:   clientURL,
	}
}

func (s *emailService) SendWelcome(toEmail, fullName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Welcome to QR Health Portal")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Welcome, %s!</h2>
			<p>Thank you for joining QR Health Portal. Your secure health management journey begins now.</p>
			<p>With our platform, you can:</p>
			<ul>
				<li>Securely upload and manage health records</li>
				<li>Chat with our AI health assistant</li>
				<li>Track your health history over time</li>
			</ul>
			<a href="%s/dashboard" style="background-color: #22c55e; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Go to Dashboard</a>
		</div>
	`, fullName, s.clientURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send welcome to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Welcome sent to %s\n", toEmail)
	return nil
}

func (s *emailService) SendRecordUploaded(toEmail, recordName string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Health Record Uploaded Successfully")

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Record Uploaded!</h2>
			<p>Your health record <strong>"%s"</strong> has been securely uploaded to your account.</p>
			<p>You can now:</p>
			<ul>
				<li>View the record in your dashboard</li>
				<li>Ask our AI assistant questions about it</li>
			</ul>
			<a href="%s/dashboard/records" style="background-color: #22c55e; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View Records</a>
		</div>
	`, recordName, s.clientURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send record notification to %s: %v\n", toEmail, err)
		return err
	}

	fmt.Printf("[MAILER] Record notification sent to %s\n", toEmail)
	return nil
}
