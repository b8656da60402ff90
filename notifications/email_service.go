package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/brinebarrel/ramen_bookings/configs"
)

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
}

var EmailClient *BrevoService

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	TextContent string              `json:"textContent,omitempty"`
	HTMLContent string              `json:"htmlContent"`
}

func InitEmailService() {
	apiKey := config.Config("BREVO_API_KEY")
	senderEmail := config.Config("EMAIL_SENDER")
	senderName := config.Config("EMAIL_SENDER_NAME")

	if apiKey == "" || senderEmail == "" || senderName == "" {
		log.Println("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		EmailClient = nil
		return
	}

	EmailClient = &BrevoService{
		APIKey:      apiKey,
		SenderEmail: senderEmail,
		SenderName:  senderName,
	}
	log.Println("✅ Email service initialized successfully.")
}

// Send delivers one message to every recipient in a single Brevo call. This
// is the whole gateway contract the confirmation workflow relies on.
func (s *BrevoService) Send(recipients []string, subject, textBody, htmlBody string) error {
	url := "https://api.brevo.com/v3/smtp/email"

	if len(recipients) == 0 {
		return fmt.Errorf("no recipients")
	}

	to := make([]map[string]string, 0, len(recipients))
	for _, email := range recipients {
		if email == "" || !strings.Contains(email, "@") {
			return fmt.Errorf("invalid recipient email: %s", email)
		}
		to = append(to, map[string]string{
			"email": email,
			"name":  email[:strings.Index(email, "@")],
		})
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          to,
		Subject:     subject,
		TextContent: textBody,
		HTMLContent: htmlBody,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %v", err)
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	client := &http.Client{
		Timeout: 10 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %v", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		log.Printf("Brevo API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("failed to send email via Brevo: %s", string(bodyBytes))
	}

	log.Printf("✅ Email sent to %d recipient(s): %s", len(recipients), subject)
	return nil
}

// SendEmail is the fire-and-forget single-recipient helper used by the
// reminder job.
func SendEmail(toEmail, subject, htmlContent string) {
	if EmailClient == nil {
		log.Println("Email client not initialized, skipping email send.")
		return
	}

	if err := EmailClient.Send([]string{toEmail}, subject, "", htmlContent); err != nil {
		log.Printf("🔥 Failed to send email to %s: %v", toEmail, err)
	}
}

// LogOnlyNotifier stands in for Brevo when the provider is unconfigured, so
// local development still shows what would have gone out.
type LogOnlyNotifier struct{}

func (LogOnlyNotifier) Send(recipients []string, subject, textBody, htmlBody string) error {
	log.Printf("📭 (email disabled) would send %q to %v", subject, recipients)
	return nil
}
