// Package messaging publishes domain events for downstream consumers.
package messaging

import (
	"context"
	"time"
)

// Event types
const (
	EventUserRegistered = "user.registered"
	EventUserDeleted    = "user.deleted"
	EventVideoUploaded  = "video.uploaded"
	EventVideoDeleted   = "video.deleted"
)

// MessageEvent is the envelope written to the topic
type MessageEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

type UserRegisteredPayload struct {
	UserID      uint   `json:"userId"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

type UserDeletedPayload struct {
	UserID uint `json:"userId"`
}

type VideoUploadedPayload struct {
	VideoID         uint    `json:"videoId"`
	UserID          uint    `json:"userId"`
	Name            string  `json:"name"`
	UploadPath      string  `json:"uploadPath"`
	ThumbnailPath   string  `json:"thumbnailPath"`
	DurationSeconds float64 `json:"durationSeconds"`
	Size            int64   `json:"size"`
}

type VideoDeletedPayload struct {
	VideoID uint `json:"videoId"`
}

// Publisher sends events. key groups related events onto one partition.
type Publisher interface {
	Publish(ctx context.Context, eventType, key string, payload any) error
	Close() error
}

// NopPublisher drops every event. Used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, string, any) error { return nil }
func (NopPublisher) Close() error                                    { return nil }
