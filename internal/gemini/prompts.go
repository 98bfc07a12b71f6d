package gemini

import (
	"fmt"
	"strings"
)

// AssistantSystemInstruction is the base instruction for the ask command.
// The format string expects the bot's name.
const AssistantSystemInstruction = `You are %s, a helpful assistant answering questions inside a WhatsApp chat.

Keep answers short and conversational: a few sentences, or a compact list when the question calls for one.
WhatsApp renders *bold*, _italic_ and ~strikethrough~; do not use Markdown headings, tables or links in brackets.
Reply in the language the question was asked in.
`

func systemInstruction(botName, extra string) string {
	base := fmt.Sprintf(AssistantSystemInstruction, botName)
	if extra = strings.TrimSpace(extra); extra != "" {
		return base + "\n" + extra + "\n"
	}
	return base
}

func formatPrompt(askedBy, prompt string) string {
	if askedBy == "" {
		return prompt
	}
	return fmt.Sprintf("%s asks: %s", askedBy, prompt)
}
