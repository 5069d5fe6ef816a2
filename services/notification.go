package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/smtp"
	"net/url"
	"strings"
	"time"

	"civicpulse-be/config"
	"civicpulse-be/models"
)

// DeliveryResult records one delivery attempt. Failures are reported
// here and logged, never surfaced to the request that triggered them.
type DeliveryResult struct {
	Channel string `json:"type"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// EmailSender delivers the resolved-complaint email.
type EmailSender interface {
	SendResolvedEmail(ctx context.Context, user models.User, complaint models.Complaint) error
}

// SMSSender delivers the resolved-complaint SMS.
type SMSSender interface {
	SendResolvedSMS(ctx context.Context, user models.User, complaint models.Complaint) error
}

// Dispatcher fans a complaint status change out to the channels the
// user can receive. Channels are attempted independently.
type Dispatcher struct {
	Email EmailSender
	SMS   SMSSender
}

func NewDispatcher(email EmailSender, sms SMSSender) *Dispatcher {
	return &Dispatcher{Email: email, SMS: sms}
}

// NotifyStatusChange delivers notifications for a complaint status
// change. Only "resolved" currently sends anything: one email attempt
// if the user has an email, one SMS attempt if the user has a mobile
// number. "in-progress" is a hook point with no deliveries yet.
func (d *Dispatcher) NotifyStatusChange(ctx context.Context, user models.User, complaint models.Complaint, newStatus models.ComplaintStatus) []DeliveryResult {
	var results []DeliveryResult

	switch newStatus {
	case models.StatusResolved:
		if user.Email != "" && d.Email != nil {
			res := DeliveryResult{Channel: "email", Success: true}
			if err := d.Email.SendResolvedEmail(ctx, user, complaint); err != nil {
				res.Success = false
				res.Error = err.Error()
			}
			results = append(results, res)
		}
		if user.Mobile != "" && d.SMS != nil {
			res := DeliveryResult{Channel: "sms", Success: true}
			if err := d.SMS.SendResolvedSMS(ctx, user, complaint); err != nil {
				res.Success = false
				res.Error = err.Error()
			}
			results = append(results, res)
		}
	case models.StatusInProgress:
		log.Printf("Complaint %s is now in-progress. Notification can be added here.", complaint.ID.Hex())
	}

	return results
}

// SMTPEmailSender sends the resolution email over SMTP with STARTTLS
// (plain auth on the configured host).
type SMTPEmailSender struct {
	cfg config.SMTPConfig
}

func NewSMTPEmailSender(cfg config.SMTPConfig) *SMTPEmailSender {
	return &SMTPEmailSender{cfg: cfg}
}

func (s *SMTPEmailSender) SendResolvedEmail(ctx context.Context, user models.User, complaint models.Complaint) error {
	if s.cfg.User == "" || s.cfg.Password == "" {
		return errors.New("email not configured")
	}

	subject := fmt.Sprintf("Your Complaint Has Been Resolved - %s", complaint.Title)
	body := fmt.Sprintf(
		"Great news, %s!\r\n\r\n"+
			"Your reported issue has been resolved.\r\n\r\n"+
			"Title: %s\r\nCategory: %s\r\nDescription: %s\r\nPriority: %s\r\n"+
			"Reported On: %s\r\nResolved On: %s\r\n\r\n"+
			"Thank you for being an active citizen and helping make our community better!\r\n\r\n"+
			"This is an automated notification from CivicPulse.\r\n",
		user.Name,
		complaint.Title,
		complaint.Type,
		complaint.Description,
		strings.ToUpper(string(complaint.Priority)),
		complaint.CreatedAt.Format("January 2, 2006"),
		time.Now().Format("January 2, 2006"),
	)

	msg := strings.Join([]string{
		"From: " + s.cfg.From,
		"To: " + user.Email,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	addr := s.cfg.Host + ":" + s.cfg.Port
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{user.Email}, []byte(msg)); err != nil {
		return err
	}
	log.Printf("Email sent to %s for complaint %s", user.Email, complaint.ID.Hex())
	return nil
}

// TwilioSMSSender sends the resolution SMS through the Twilio REST API.
type TwilioSMSSender struct {
	cfg    config.TwilioConfig
	client *http.Client
}

func NewTwilioSMSSender(cfg config.TwilioConfig) *TwilioSMSSender {
	return &TwilioSMSSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (s *TwilioSMSSender) SendResolvedSMS(ctx context.Context, user models.User, complaint models.Complaint) error {
	if s.cfg.AccountSID == "" || s.cfg.AuthToken == "" {
		return errors.New("twilio not configured")
	}

	endpoint := fmt.Sprintf("https://api.twilio.com/2010-04-01/Accounts/%s/Messages.json", s.cfg.AccountSID)
	form := url.Values{}
	form.Set("From", s.cfg.PhoneNumber)
	form.Set("To", user.Mobile)
	form.Set("Body", fmt.Sprintf(
		"Hi %s! Your complaint %q has been resolved. Thank you for making our community better! - CivicPulse",
		user.Name, complaint.Title,
	))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.SetBasicAuth(s.cfg.AccountSID, s.cfg.AuthToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		var twilioErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(payload, &twilioErr)
		if twilioErr.Message != "" {
			return fmt.Errorf("twilio: %s", twilioErr.Message)
		}
		return fmt.Errorf("twilio: unexpected status %d", resp.StatusCode)
	}
	log.Printf("SMS sent to %s for complaint %s", user.Mobile, complaint.ID.Hex())
	return nil
}
