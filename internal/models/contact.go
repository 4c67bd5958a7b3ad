package models

import (
	"time"

	"github.com/google/uuid"
)

// Newsletter subscription types.
const (
	SubscriptionInvestors = "investors"
	SubscriptionResources = "resources"
)

// ContactMessage is a publicly submitted contact-form message.
type ContactMessage struct {
	MessageID             uuid.UUID `json:"id"` // UUIDv7
	FirstName             string    `json:"first_name"`
	LastName              string    `json:"last_name"`
	Email                 string    `json:"email"`
	Company               string    `json:"company,omitempty"`
	Subject               string    `json:"subject"`
	Message               string    `json:"message"`
	PrivacyPolicyAccepted bool      `json:"privacy_policy_accepted"`
	SubmittedAt           time.Time `json:"submitted_at"`
}

// NewsletterSubscription tracks a newsletter signup. Unsubscribing
// deactivates the row rather than deleting it.
type NewsletterSubscription struct {
	SubscriptionID   uuid.UUID      `json:"id"` // UUIDv7
	Email            string         `json:"email"`
	SubscriptionType string         `json:"subscription_type"`
	IsActive         bool           `json:"is_active"`
	SubscribedAt     time.Time      `json:"subscribed_at"`
	UnsubscribedAt   *time.Time     `json:"unsubscribed_at,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// DemoRequest is a publicly submitted product-demo request.
type DemoRequest struct {
	RequestID   uuid.UUID `json:"id"` // UUIDv7
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Company     string    `json:"company,omitempty"`
	PhoneNumber string    `json:"phone_number,omitempty"`
	Message     string    `json:"message,omitempty"`
	RequestedAt time.Time `json:"requested_at"`
	IsProcessed bool      `json:"is_processed"`
}

// ConsultationRequest is a publicly submitted consultation request.
type ConsultationRequest struct {
	RequestID     uuid.UUID  `json:"id"` // UUIDv7
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Company       string     `json:"company,omitempty"`
	PhoneNumber   string     `json:"phone_number,omitempty"`
	PreferredDate *time.Time `json:"preferred_date,omitempty"`
	PreferredTime string     `json:"preferred_time,omitempty"`
	Message       string     `json:"message,omitempty"`
	RequestedAt   time.Time  `json:"requested_at"`
	IsProcessed   bool       `json:"is_processed"`
}
