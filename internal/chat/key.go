package chat

import "errors"

// ErrInvalidParticipants is returned when a conversation is addressed with
// the same user on both sides, or with a missing id.
var ErrInvalidParticipants = errors.New("chat: invalid participants")

const keySeparator = "__"

// Key derives the canonical conversation id for a pair of user ids.
// It is order-independent: Key(a, b) == Key(b, a). Both ids are used
// verbatim, so distinct pairs can never collide.
func Key(a, b string) (string, error) {
	if a == "" || b == "" || a == b {
		return "", ErrInvalidParticipants
	}
	if a < b {
		return a + keySeparator + b, nil
	}
	return b + keySeparator + a, nil
}
