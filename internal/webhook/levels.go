package webhook

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"crashvault/internal/domain/vault"
)

// Visual lookup tables shared by the chat-style providers.

var levelColors = map[vault.Level]string{
	vault.LevelDebug:    "6B7280",
	vault.LevelInfo:     "3B82F6",
	vault.LevelWarning:  "F59E0B",
	vault.LevelError:    "EF4444",
	vault.LevelCritical: "7C2D12",
}

var levelEmoji = map[vault.Level]string{
	vault.LevelDebug:    "🔍",
	vault.LevelInfo:     "ℹ️",
	vault.LevelWarning:  "⚠️",
	vault.LevelError:    "❌",
	vault.LevelCritical: "🔥",
}

func colorFor(level vault.Level) string {
	if c, ok := levelColors[level]; ok {
		return c
	}
	return "6B7280"
}

// colorIntFor converts the hex color to the decimal form Discord embeds use.
func colorIntFor(level vault.Level) int {
	n, err := strconv.ParseInt(colorFor(level), 16, 64)
	if err != nil {
		return 0
	}
	return int(n)
}

func emojiFor(level vault.Level) string {
	if e, ok := levelEmoji[level]; ok {
		return e
	}
	return "📌"
}

func levelUpper(level vault.Level) string {
	return strings.ToUpper(string(level))
}

// truncate caps provider payload fields, appending an ellipsis line when text
// was dropped. The cut lands on a rune boundary so a multibyte character is
// never split into invalid UTF-8.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	for limit > 0 && !utf8.RuneStart(s[limit]) {
		limit--
	}
	return s[:limit] + "\n..."
}
