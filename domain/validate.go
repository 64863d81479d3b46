package domain

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateInbound enforces the chat-message contract: text, senderId and
// receiverId must all be present. Type checking is the relay's job; unknown
// types are ignored before validation is reached.
func ValidateInbound(e InboundEvent) error {
	return validate.Struct(e)
}
