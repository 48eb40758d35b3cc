package amqp

import (
	"encoding/json"
	"errors"
	"time"
)

// BookSavedMessage announces that a user's book was saved. It carries no
// rows; consumers load the book from storage.
type BookSavedMessage struct {
	User      string    `json:"user"`
	Version   int64     `json:"version"`
	Timestamp time.Time `json:"timestamp"`
}

// NewBookSavedMessage creates a message for user at version.
func NewBookSavedMessage(user string, version int64) *BookSavedMessage {
	return &BookSavedMessage{
		User:      user,
		Version:   version,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *BookSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BookSavedMessageFromJSON decodes a message. A message without a user is
// rejected.
func BookSavedMessageFromJSON(data []byte) (*BookSavedMessage, error) {
	var msg BookSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.User == "" {
		return nil, errors.New("book saved message without user")
	}
	return &msg, nil
}
