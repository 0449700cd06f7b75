package channels

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	conversationPrefix = "chat."
	userPrefix         = "App.Models.User."
)

// Conversation returns the shared channel name for a pair of users. The two
// participants always resolve to the same name regardless of argument order.
func Conversation(userA, userB int) string {
	if userA > userB {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("%s%d.%d", conversationPrefix, userA, userB)
}

// User returns the personal notification channel name for a user.
func User(userID int) string {
	return fmt.Sprintf("%s%d", userPrefix, userID)
}

// Authorize reports whether userID may subscribe to the named channel.
// Conversation channels admit their two participants; user channels admit
// only their owner. Unknown patterns are always denied.
func Authorize(userID int, channel string) bool {
	if rest, ok := strings.CutPrefix(channel, conversationPrefix); ok {
		a, b, ok := parsePair(rest)
		if !ok {
			return false
		}
		return userID == a || userID == b
	}
	if rest, ok := strings.CutPrefix(channel, userPrefix); ok {
		owner, err := strconv.Atoi(rest)
		if err != nil {
			return false
		}
		return userID == owner
	}
	return false
}

func parsePair(rest string) (int, int, bool) {
	parts := strings.Split(rest, ".")
	if len(parts) != 2 {
		return 0, 0, false
	}
	a, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	b, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}
