package service

import (
	"strings"

	"github.com/maricastroc/minerva-ai/internal/config"
	"github.com/maricastroc/minerva-ai/internal/domain"
)

const systemPrompt = `You are a friendly, empathetic and helpful AI assistant.
Respond in a warm, conversational tone, adding encouragement and understanding when appropriate.
Keep answers clear, but not too short.`

// BuildPrompt assembles the system instructions, the most recent
// history turns and the new user message into one generation prompt.
func BuildPrompt(history []domain.Turn, message string) string {
	var b strings.Builder
	b.WriteString(systemPrompt)

	if len(history) > 0 {
		recent := history
		if len(recent) > config.PromptTurns {
			recent = recent[len(recent)-config.PromptTurns:]
		}
		b.WriteString("\n\nContext:\n")
		b.WriteString(joinTurns(recent))
	}

	b.WriteString("\n\nUser: ")
	b.WriteString(message)
	b.WriteString("\nAssistant:")
	return b.String()
}

// BuildRegenerationPrompt embeds the original reply and instructs the
// model to materially improve it rather than paraphrase.
func BuildRegenerationPrompt(history []domain.Turn, userMessage, originalReply string) string {
	var b strings.Builder
	b.WriteString(`You are a helpful AI assistant. The user asked you to regenerate your previous response to make it better, more helpful, or more detailed.

CONTEXT:
User's original question: "`)
	b.WriteString(userMessage)
	b.WriteString(`"
Your previous response: "`)
	b.WriteString(originalReply)
	b.WriteString(`"

CONVERSATION HISTORY (for context):
`)

	if len(history) > 0 {
		recent := history
		if len(recent) > config.RegenTurns {
			recent = recent[len(recent)-config.RegenTurns:]
		}
		b.WriteString(joinTurns(recent))
	} else {
		b.WriteString("No previous conversation history.")
	}

	b.WriteString(`

YOUR TASK:
Generate a NEW improved version of your response. Make it:
- More helpful and detailed than the original
- Better address the user's question or needs
- Maintain a natural, conversational tone
- If the original was too brief, provide more information
- If the original missed the point, correct it
- Do NOT simply rephrase the original response
- Do NOT start with "Sure!" or similar phrases
- Do NOT reference that this is a regeneration

IMPORTANT: Provide a completely new response that improves upon the original.

Your new improved response: `)
	return b.String()
}

func joinTurns(turns []domain.Turn) string {
	parts := make([]string, len(turns))
	for i, turn := range turns {
		parts[i] = string(turn.Role) + ": " + turn.Content
	}
	return strings.Join(parts, "\n")
}
