package core

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	UserRegistered      EventType = "user.registered"
	AssignmentCreated   EventType = "assignment.created"
	AssignmentSubmitted EventType = "assignment.submitted"
	AssignmentReviewed  EventType = "assignment.reviewed"
	QuizCreated         EventType = "quiz.created"
	QuizSubmitted       EventType = "quiz.submitted"
	QuizReviewed        EventType = "quiz.reviewed"
)

type (
	// Event is a domain event. Payload must be JSON serializable.
	Event struct {
		ID        string      `json:"id"`
		Type      EventType   `json:"type"`
		Timestamp int64       `json:"timestamp"`
		Version   string      `json:"version"`
		Payload   interface{} `json:"payload"`
	}

	// EventPublisher is any service that can publish domain events.
	EventPublisher interface {
		Publish(ctx context.Context, evt Event) error
	}
)

func NewEvent(typ EventType, payload interface{}) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      typ,
		Timestamp: time.Now().Unix(),
		Version:   "1.0",
		Payload:   payload,
	}
}
