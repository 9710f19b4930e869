package events

import (
	"time"

	"github.com/google/uuid"
)

const (
	EventTypeUserRegistered = "auth.user_registered"
	EventTypeLoginSucceeded = "auth.login_succeeded"
	EventTypeLoginFailed    = "auth.login_failed"
)

// Login failure reasons. Both map to the same client-facing error.
const (
	LoginFailureUnknownEmail  = "unknown_email"
	LoginFailureWrongPassword = "wrong_password"
	LoginFailureMalformedHash = "malformed_hash"
)

type UserRegisteredEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func NewUserRegisteredEvent(userID, role string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeUserRegistered,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"role":    role,
			},
		},
		UserID: userID,
		Role:   role,
	}
}

type LoginSucceededEvent struct {
	BaseEvent
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

func NewLoginSucceededEvent(userID, role string) *LoginSucceededEvent {
	return &LoginSucceededEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLoginSucceeded,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"user_id": userID,
				"role":    role,
			},
		},
		UserID: userID,
		Role:   role,
	}
}

// LoginFailedEvent never carries the attempted email or password.
type LoginFailedEvent struct {
	BaseEvent
	Reason string `json:"reason"`
}

func NewLoginFailedEvent(reason string) *LoginFailedEvent {
	return &LoginFailedEvent{
		BaseEvent: BaseEvent{
			ID:        uuid.New().String(),
			Type:      EventTypeLoginFailed,
			Timestamp: time.Now(),
			Data: map[string]interface{}{
				"reason": reason,
			},
		},
		Reason: reason,
	}
}
