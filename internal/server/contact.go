package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/victoai/platform/internal/models"
	"github.com/victoai/platform/internal/store"
)

// Public lead-intake endpoints. No authentication; rate limiting in the
// pipeline is the only throttle.

func validEmail(email string) bool {
	at := strings.Index(email, "@")
	return at > 0 && at < len(email)-1
}

type contactMessageRequest struct {
	FirstName             string `json:"first_name"`
	LastName              string `json:"last_name"`
	Email                 string `json:"email"`
	Company               string `json:"company"`
	Subject               string `json:"subject"`
	Message               string `json:"message"`
	PrivacyPolicyAccepted bool   `json:"privacy_policy_accepted"`
}

func (s *Server) handleContactMessage(w http.ResponseWriter, r *http.Request) {
	var req contactMessageRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.FirstName == "" {
		fe.add("first_name", msgRequired)
	}
	if req.LastName == "" {
		fe.add("last_name", msgRequired)
	}
	if req.Email == "" {
		fe.add("email", msgRequired)
	} else if !validEmail(req.Email) {
		fe.add("email", "Enter a valid email address.")
	}
	if req.Subject == "" {
		fe.add("subject", msgRequired)
	}
	if req.Message == "" {
		fe.add("message", msgRequired)
	}
	if !req.PrivacyPolicyAccepted {
		fe.add("privacy_policy_accepted", "You must accept the privacy policy.")
	}
	if !fe.empty() {
		fe.write(w)
		return
	}

	msg := &models.ContactMessage{
		MessageID:             uuid.Must(uuid.NewV7()),
		FirstName:             req.FirstName,
		LastName:              req.LastName,
		Email:                 req.Email,
		Company:               req.Company,
		Subject:               req.Subject,
		Message:               req.Message,
		PrivacyPolicyAccepted: true,
	}
	if err := s.stores.Contact.CreateMessage(r.Context(), msg); err != nil {
		panic(err)
	}

	s.log.Info().Str("email", msg.Email).Msg("contact message received")
	s.audit.Record(r.Context(), nil, models.AuditActionCreate, "ContactMessage",
		msg.MessageID.String(), clientIP(r), nil)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Your message has been sent successfully!"})
}

type subscribeRequest struct {
	Email            string `json:"email"`
	SubscriptionType string `json:"subscription_type"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := fieldErrors{}
	if req.Email == "" {
		fe.add("email", msgRequired)
	} else if !validEmail(req.Email) {
		fe.add("email", "Enter a valid email address.")
	}
	if req.SubscriptionType == "" {
		req.SubscriptionType = models.SubscriptionResources
	} else if req.SubscriptionType != models.SubscriptionInvestors && req.SubscriptionType != models.SubscriptionResources {
		fe.add("subscription_type", `"`+req.SubscriptionType+`" is not a valid choice.`)
	}
	if !fe.empty() {
		fe.write(w)
		return
	}

	sub := &models.NewsletterSubscription{
		SubscriptionID:   uuid.Must(uuid.NewV7()),
		Email:            req.Email,
		SubscriptionType: req.SubscriptionType,
	}
	if err := s.stores.Contact.Subscribe(r.Context(), sub); err != nil {
		if errors.Is(err, store.ErrAlreadySubscribed) {
			fe.add("email", "newsletter subscription with this email already exists.")
			fe.write(w)
			return
		}
		panic(err)
	}

	s.log.Info().Str("email", sub.Email).Str("subscription_type", sub.SubscriptionType).
		Msg("newsletter subscription created")
	writeJSON(w, http.StatusCreated, map[string]string{
		"message":           "Successfully subscribed to our newsletter!",
		"subscription_type": sub.SubscriptionType,
	})
}

// handleUnsubscribe deactivates the active subscription. A second
// unsubscribe misses: the row exists but is no longer active.
func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required for unsubscription.")
		return
	}

	if err := s.stores.Contact.Unsubscribe(r.Context(), req.Email); err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			writeError(w, http.StatusNotFound, "No active subscription found for this email.")
			return
		}
		panic(err)
	}

	s.log.Info().Str("email", req.Email).Msg("newsletter unsubscribed")
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully unsubscribed from our newsletter."})
}

type demoRequestPayload struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Email       string `json:"email"`
	Company     string `json:"company"`
	PhoneNumber string `json:"phone_number"`
	Message     string `json:"message"`
}

func (s *Server) handleDemoRequest(w http.ResponseWriter, r *http.Request) {
	var req demoRequestPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := intakeIdentityErrors(req.FirstName, req.LastName, req.Email)
	if !fe.empty() {
		fe.write(w)
		return
	}

	demo := &models.DemoRequest{
		RequestID:   uuid.Must(uuid.NewV7()),
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Company:     req.Company,
		PhoneNumber: req.PhoneNumber,
		Message:     req.Message,
	}
	if err := s.stores.Contact.CreateDemoRequest(r.Context(), demo); err != nil {
		panic(err)
	}

	s.log.Info().Str("email", demo.Email).Msg("demo request received")
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Your demo request has been sent successfully!"})
}

type consultationRequestPayload struct {
	FirstName     string     `json:"first_name"`
	LastName      string     `json:"last_name"`
	Email         string     `json:"email"`
	Company       string     `json:"company"`
	PhoneNumber   string     `json:"phone_number"`
	PreferredDate *time.Time `json:"preferred_date"`
	PreferredTime string     `json:"preferred_time"`
	Message       string     `json:"message"`
}

func (s *Server) handleConsultationRequest(w http.ResponseWriter, r *http.Request) {
	var req consultationRequestPayload
	if !decodeJSON(w, r, &req) {
		return
	}

	fe := intakeIdentityErrors(req.FirstName, req.LastName, req.Email)
	if !fe.empty() {
		fe.write(w)
		return
	}

	consultation := &models.ConsultationRequest{
		RequestID:     uuid.Must(uuid.NewV7()),
		FirstName:     req.FirstName,
		LastName:      req.LastName,
		Email:         req.Email,
		Company:       req.Company,
		PhoneNumber:   req.PhoneNumber,
		PreferredDate: req.PreferredDate,
		PreferredTime: req.PreferredTime,
		Message:       req.Message,
	}
	if err := s.stores.Contact.CreateConsultationRequest(r.Context(), consultation); err != nil {
		panic(err)
	}

	s.log.Info().Str("email", consultation.Email).Msg("consultation request received")
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Your consultation request has been sent successfully!"})
}

// intakeIdentityErrors validates the name/email trio shared by the demo and
// consultation forms.
func intakeIdentityErrors(firstName, lastName, email string) fieldErrors {
	fe := fieldErrors{}
	if firstName == "" {
		fe.add("first_name", msgRequired)
	}
	if lastName == "" {
		fe.add("last_name", msgRequired)
	}
	if email == "" {
		fe.add("email", msgRequired)
	} else if !validEmail(email) {
		fe.add("email", "Enter a valid email address.")
	}
	return fe
}
