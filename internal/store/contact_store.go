package store

import (
	"context"
	"errors"

	"github.com/victoai/platform/internal/models"
)

// Sentinel errors for contact store operations
var (
	ErrSubscriptionNotFound = errors.New("no active subscription found")
	ErrAlreadySubscribed    = errors.New("email already subscribed")
)

// ContactStore defines the interface for publicly submitted lead intake:
// contact messages, newsletter subscriptions and demo/consultation requests.
type ContactStore interface {
	CreateMessage(ctx context.Context, msg *models.ContactMessage) error
	CreateDemoRequest(ctx context.Context, req *models.DemoRequest) error
	CreateConsultationRequest(ctx context.Context, req *models.ConsultationRequest) error

	// Subscribe creates a newsletter subscription.
	// Returns ErrAlreadySubscribed if an active subscription exists for the
	// email.
	Subscribe(ctx context.Context, sub *models.NewsletterSubscription) error

	// Unsubscribe deactivates the active subscription for the email.
	// Returns ErrSubscriptionNotFound if no active subscription exists, so a
	// second unsubscribe for the same email is not idempotent at the API
	// level.
	Unsubscribe(ctx context.Context, email string) error
}
