package memory

import (
	"context"
	"sync"
	"time"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// ContactStore is an in-memory implementation of store.ContactStore for
// development and testing.
type ContactStore struct {
	mu            sync.RWMutex
	messages      []*models.ContactMessage
	demos         []*models.DemoRequest
	consultations []*models.ConsultationRequest
	subscriptions map[string]*models.NewsletterSubscription // keyed by email
}

// NewContactStore creates a new in-memory contact store.
func NewContactStore() *ContactStore {
	return &ContactStore{
		subscriptions: make(map[string]*models.NewsletterSubscription),
	}
}

// CreateMessage stores a contact-form message.
func (s *ContactStore) CreateMessage(_ context.Context, msg *models.ContactMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg.SubmittedAt = time.Now()
	c := *msg
	s.messages = append(s.messages, &c)

	return nil
}

// CreateDemoRequest stores a demo request.
func (s *ContactStore) CreateDemoRequest(_ context.Context, req *models.DemoRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.RequestedAt = time.Now()
	c := *req
	s.demos = append(s.demos, &c)

	return nil
}

// CreateConsultationRequest stores a consultation request.
func (s *ContactStore) CreateConsultationRequest(_ context.Context, req *models.ConsultationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.RequestedAt = time.Now()
	c := *req
	if req.PreferredDate != nil {
		t := *req.PreferredDate
		c.PreferredDate = &t
	}
	s.consultations = append(s.consultations, &c)

	return nil
}

// Subscribe creates a newsletter subscription. A previously deactivated
// subscription for the same email is reactivated.
func (s *ContactStore) Subscribe(_ context.Context, sub *models.NewsletterSubscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, exists := s.subscriptions[sub.Email]; exists && existing.IsActive {
		return store.ErrAlreadySubscribed
	}

	sub.IsActive = true
	sub.SubscribedAt = time.Now()
	sub.UnsubscribedAt = nil

	c := *sub
	s.subscriptions[sub.Email] = &c

	return nil
}

// Unsubscribe deactivates the active subscription for the email.
func (s *ContactStore) Unsubscribe(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.subscriptions[email]
	if !exists || !sub.IsActive {
		return store.ErrSubscriptionNotFound
	}

	now := time.Now()
	sub.IsActive = false
	sub.UnsubscribedAt = &now

	return nil
}
