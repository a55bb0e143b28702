package services

import (
	"fmt"
	"log"
	"strings"
)

// NotificationService notifies customers about order lifecycle changes
type NotificationService interface {
	SendOrderStatusEmail(email, companyName, orderUUID, status string) error
}

// NotificationServiceImpl implements NotificationService
type NotificationServiceImpl struct {
	emailProvider EmailProvider
}

// EmailProvider interface for email sending
type EmailProvider interface {
	SendEmail(email, subject, message string) error
}

// NewNotificationService creates a new notification service
func NewNotificationService(emailProvider EmailProvider) NotificationService {
	return &NotificationServiceImpl{
		emailProvider: emailProvider,
	}
}

// SendOrderStatusEmail sends an order status update to the customer contact
func (s *NotificationServiceImpl) SendOrderStatusEmail(email, companyName, orderUUID, status string) error {
	if s.emailProvider == nil {
		return fmt.Errorf("email provider not configured")
	}

	// Basic email validation
	if len(email) == 0 || !strings.Contains(email, "@") {
		return fmt.Errorf("invalid email address: %s", email)
	}

	subject := fmt.Sprintf("Your leasing order is now %s", status)
	message := fmt.Sprintf("Hello %s,\n\nYour order %s has moved to status %q.\n\nThe Marlon team",
		companyName, orderUUID, status)

	return s.emailProvider.SendEmail(email, subject, message)
}

type MockEmailProvider struct{}

func NewMockEmailProvider() EmailProvider {
	return &MockEmailProvider{}
}

func (p *MockEmailProvider) SendEmail(email, subject, message string) error {
	log.Printf("Email sent to %s [%s]: %s", email, subject, message)
	return nil
}

type SMTPEmailProvider struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

func NewSMTPEmailProvider(host string, port int, username, password, fromEmail string) EmailProvider {
	return &SMTPEmailProvider{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromEmail: fromEmail,
	}
}

func (p *SMTPEmailProvider) SendEmail(email, subject, message string) error {
	// Implementation would use net/smtp package or a library like gomail

	log.Printf("Sending email via SMTP to %s [%s]: %s", email, subject, message)

	// Placeholder implementation
	// In real implementation, configure SMTP and send email

	return nil
}
