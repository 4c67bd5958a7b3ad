package models

import (
	"time"

	"github.com/google/uuid"
)

// AI model types.
const (
	ModelTypeLLM    = "llm"    // Large language model
	ModelTypeVision = "vision" // Computer vision
	ModelTypeSpeech = "speech" // Speech recognition
	ModelTypeOther  = "other"
)

// AI model statuses.
const (
	ModelStatusActive     = "active"
	ModelStatusInactive   = "inactive"
	ModelStatusDeprecated = "deprecated"
)

// AIModel represents an AI model registered by an organization.
type AIModel struct {
	ModelID     uuid.UUID `json:"id"` // UUIDv7
	Name        string    `json:"name"`
	ModelType   string    `json:"model_type"`
	Version     string    `json:"version"`
	Description string    `json:"description,omitempty"`
	OrgID       uuid.UUID `json:"organization"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ValidModelType reports whether t is a declared model type.
func ValidModelType(t string) bool {
	switch t {
	case ModelTypeLLM, ModelTypeVision, ModelTypeSpeech, ModelTypeOther:
		return true
	}
	return false
}

// ValidModelStatus reports whether s is a declared model status.
func ValidModelStatus(s string) bool {
	switch s {
	case ModelStatusActive, ModelStatusInactive, ModelStatusDeprecated:
		return true
	}
	return false
}
