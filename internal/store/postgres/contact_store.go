package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// ContactStore implements store.ContactStore using PostgreSQL.
type ContactStore struct {
	pool *pgxpool.Pool
}

// NewContactStore creates a new PostgreSQL-backed contact store.
func NewContactStore(pool *pgxpool.Pool) *ContactStore {
	return &ContactStore{pool: pool}
}

// CreateMessage stores a contact-form message.
func (s *ContactStore) CreateMessage(ctx context.Context, msg *models.ContactMessage) error {
	msg.SubmittedAt = time.Now()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO contact_messages (
			message_id, first_name, last_name, email, company, subject,
			message, privacy_policy_accepted, submitted_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, msg.MessageID, msg.FirstName, msg.LastName, msg.Email, msg.Company,
		msg.Subject, msg.Message, msg.PrivacyPolicyAccepted, msg.SubmittedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	return nil
}

// CreateDemoRequest stores a demo request.
func (s *ContactStore) CreateDemoRequest(ctx context.Context, req *models.DemoRequest) error {
	req.RequestedAt = time.Now()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO demo_requests (
			request_id, first_name, last_name, email, company, phone_number,
			message, requested_at, is_processed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, req.RequestID, req.FirstName, req.LastName, req.Email, req.Company,
		req.PhoneNumber, req.Message, req.RequestedAt, req.IsProcessed)
	if err != nil {
		return fmt.Errorf("failed to create demo request: %w", err)
	}

	return nil
}

// CreateConsultationRequest stores a consultation request.
func (s *ContactStore) CreateConsultationRequest(ctx context.Context, req *models.ConsultationRequest) error {
	req.RequestedAt = time.Now()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO consultation_requests (
			request_id, first_name, last_name, email, company, phone_number,
			preferred_date, preferred_time, message, requested_at, is_processed
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, req.RequestID, req.FirstName, req.LastName, req.Email, req.Company,
		req.PhoneNumber, req.PreferredDate, req.PreferredTime, req.Message,
		req.RequestedAt, req.IsProcessed)
	if err != nil {
		return fmt.Errorf("failed to create consultation request: %w", err)
	}

	return nil
}

// Subscribe creates a newsletter subscription. The partial unique index on
// active emails rejects a duplicate active subscription.
func (s *ContactStore) Subscribe(ctx context.Context, sub *models.NewsletterSubscription) error {
	sub.IsActive = true
	sub.SubscribedAt = time.Now()
	sub.UnsubscribedAt = nil

	if sub.Metadata == nil {
		sub.Metadata = map[string]any{}
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO newsletter_subscriptions (
			subscription_id, email, subscription_type, is_active,
			subscribed_at, unsubscribed_at, metadata
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, sub.SubscriptionID, sub.Email, sub.SubscriptionType, sub.IsActive,
		sub.SubscribedAt, sub.UnsubscribedAt, sub.Metadata)

	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadySubscribed
		}
		return fmt.Errorf("failed to create subscription: %w", err)
	}

	return nil
}

// Unsubscribe deactivates the active subscription for the email.
func (s *ContactStore) Unsubscribe(ctx context.Context, email string) error {
	result, err := s.pool.Exec(ctx, `
		UPDATE newsletter_subscriptions
		SET is_active = FALSE, unsubscribed_at = $2
		WHERE email = $1 AND is_active
	`, email, time.Now())
	if err != nil {
		return fmt.Errorf("failed to unsubscribe: %w", err)
	}

	if result.RowsAffected() == 0 {
		return store.ErrSubscriptionNotFound
	}

	return nil
}
