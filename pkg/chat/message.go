package chat

import (
	"time"

	"github.com/google/uuid"

	"inti-swap/pkg/types"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser Role = "user"
	RoleBot  Role = "bot"
)

// Message is one entry in the append-only conversation history. The latest
// message with AwaitingConfirmation set is the pending decision; messages
// whose quote carries a deposit address are active swaps.
type Message struct {
	ID        string
	Role      Role
	Text      string
	Timestamp time.Time

	SwapData             *types.SwapQuote
	AwaitingConfirmation bool
}

func newMessage(role Role, text string, at time.Time) *Message {
	return &Message{
		ID:        uuid.NewString(),
		Role:      role,
		Text:      text,
		Timestamp: at,
	}
}
