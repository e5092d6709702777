package request

import "fmt"

// Message is a JSON response holding a single message.
type Message struct {
	Message string `json:"message"`
}

// NewMessage creates a new Message. The message is formatted when args are given.
func NewMessage(message string, args ...any) *Message {
	if len(args) > 0 {
		message = fmt.Sprintf(message, args...)
	}
	return &Message{
		Message: message,
	}
}

// MessageError is a JSON response for a request that failed with an error.
type MessageError struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func NewMessageError(message string, err error) *MessageError {
	return &MessageError{
		Message: message,
		Error:   err.Error(),
	}
}
