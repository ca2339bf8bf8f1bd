package chat

import "fmt"

// errorKind classifies turn failures so each class renders one way.
type errorKind int

const (
	// kindProvider covers failed calls to the swap provider, the token
	// catalog or the price source.
	kindProvider errorKind = iota
	// kindState covers commands that reference conversation state which
	// does not exist, like checking status before any swap started.
	kindState
	// kindInput covers user-supplied values that fail local validation,
	// like a malformed transaction hash.
	kindInput
)

// turnError carries a classified failure until it is rendered into a single
// bot message. It never escapes Respond.
type turnError struct {
	kind errorKind
	op   string
	err  error
}

func (e *turnError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.op, e.err)
	}
	return e.op
}

func (e *turnError) Unwrap() error { return e.err }

func providerErr(op string, err error) *turnError {
	return &turnError{kind: kindProvider, op: op, err: err}
}

func stateErr(op string) *turnError {
	return &turnError{kind: kindState, op: op}
}

func inputErr(op string, err error) *turnError {
	return &turnError{kind: kindInput, op: op, err: err}
}

// renderError turns a classified failure into the user-facing reply text.
func renderError(e *turnError) string {
	switch e.kind {
	case kindProvider:
		switch e.op {
		case "quote":
			return fmt.Sprintf("Sorry, I couldn't get a quote for that swap: %v\n\nPlease try again in a moment.", e.err)
		case "execute":
			return fmt.Sprintf("Sorry, I couldn't start the swap: %v\n\nYour quote is still valid. Say \"yes\" to try again or \"no\" to cancel.", e.err)
		case "status":
			return fmt.Sprintf("Sorry, I couldn't check the swap status: %v", e.err)
		case "submit":
			return fmt.Sprintf("Sorry, I couldn't submit your transaction: %v\n\nPlease verify the hash and try again.", e.err)
		case "price":
			return fmt.Sprintf("Sorry, I couldn't fetch prices right now: %v", e.err)
		case "tokens":
			return fmt.Sprintf("Sorry, I couldn't load the token list: %v", e.err)
		default:
			return fmt.Sprintf("Sorry, something went wrong: %v", e.err)
		}
	case kindState:
		switch e.op {
		case "status":
			return "No active swap found. Start a swap first, then ask me for its status."
		case "submit":
			return "No pending swap found. Please create and confirm a swap first."
		case "submit-unconfirmed":
			return "Your swap hasn't been confirmed yet. Say \"yes\" to confirm it and get a deposit address before submitting a transaction."
		default:
			return "I don't have an active swap to do that with."
		}
	case kindInput:
		return fmt.Sprintf("That doesn't look right: %v", e.err)
	}
	return "Sorry, something went wrong."
}
