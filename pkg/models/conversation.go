package models

import "time"

// Conversation is a single question/response exchange in the history log.
type Conversation struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Response  string    `json:"response"`
	Images    []string  `json:"images,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
