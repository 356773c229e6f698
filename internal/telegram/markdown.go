package telegram

import "strings"

const markdownV2Specials = `_*[]()~` + "`" + `>#+-=|{}.!`

// escapeMarkdownV2 escapes every character Telegram's MarkdownV2
// dialect treats as markup.
func escapeMarkdownV2(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if strings.ContainsRune(markdownV2Specials, r) || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// spoiler wraps already-escaped text in a MarkdownV2 spoiler span.
func spoiler(text string) string {
	return "||" + text + "||"
}
