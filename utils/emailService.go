package utils

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"lms/config"
)

// SendEmail sends a transactional email through SendGrid
func SendEmail(to, subject, htmlBody string) error {
	from := mail.NewEmail("Acadia Learning", config.AppConfig.EmailSender)
	recipient := mail.NewEmail("", to)
	message := mail.NewSingleEmail(from, subject, recipient, "", htmlBody)

	client := sendgrid.NewSendClient(config.AppConfig.SendGridKey)
	resp, err := client.Send(message)
	if err != nil {
		log.Printf("Error sending email to %s: %v", to, err)
		return err
	}
	if resp.StatusCode >= 400 {
		log.Printf("SendGrid rejected email to %s: %d %s", to, resp.StatusCode, resp.Body)
		return fmt.Errorf("sendgrid returned %d", resp.StatusCode)
	}
	return nil
}

// getEmailTemplate wraps body content in the platform email layout
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #1B3A4B; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #1B3A4B; line-height: 1.6; }
			.content h2 { color: #1B3A4B; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.btn { display: inline-block; padding: 12px 24px; background-color: #3E8E7E; color: #FFFFFF; text-decoration: none; border-radius: 4px; font-weight: bold; margin-top: 20px; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>ACADIA LEARNING</h1>
			</div>
			<div class="content">
				<h2>%s</h2>
				%s
			</div>
			<div class="footer">
				&copy; 2026 Acadia Learning. All rights reserved.
			</div>
		</div>
	</body>
	</html>`, title, bodyContent)
}

// SendCertificateIssuedEmail notifies a student that their course certificate
// is ready. Failures are logged only; issuance never depends on email.
func SendCertificateIssuedEmail(to, firstName, courseTitle, certificateURL string) {
	if to == "" {
		return
	}

	body := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Congratulations! You have met all the requirements for <strong>%s</strong>
		and your certificate has been issued.</p>
		<a class="btn" href="%s">View Certificate</a>`,
		firstName, courseTitle, certificateURL)

	if err := SendEmail(to, "Your certificate for "+courseTitle, getEmailTemplate("Certificate Issued", body)); err != nil {
		log.Printf("Failed to send certificate email to %s: %v", to, err)
	}
}
