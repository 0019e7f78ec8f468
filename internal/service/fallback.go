package service

import (
	"hash/fnv"
	"strings"
)

// genericReplies is the pool used when no keyword matches. The phrase
// is picked by hashing the message, so the same input always gets the
// same reply.
var genericReplies = []string{
	"I understand. Could you tell me more about that?",
	"That's interesting! How can I help with this?",
	"I'd be happy to assist. What specifically do you need?",
}

// FallbackResponder produces a deterministic local reply when every
// generation backend is exhausted. The user always gets an answer.
type FallbackResponder struct{}

func NewFallbackResponder() *FallbackResponder {
	return &FallbackResponder{}
}

func (f *FallbackResponder) Reply(message string) string {
	lower := strings.ToLower(message)

	switch {
	case strings.Contains(lower, "hello") || strings.Contains(lower, "hi"):
		return "Hello! How can I help you today?"
	case strings.Contains(lower, "thank"):
		return "You're welcome! Is there anything else I can help with?"
	case strings.Contains(lower, "how are you"):
		return "I'm doing well, thank you! How can I assist you?"
	case strings.Contains(lower, "bye") || strings.Contains(lower, "goodbye"):
		return "Goodbye! Feel free to return if you have more questions."
	case strings.Contains(lower, "help"):
		return "I'd be happy to help. What do you need assistance with?"
	}

	h := fnv.New32a()
	h.Write([]byte(message))
	return genericReplies[h.Sum32()%uint32(len(genericReplies))]
}
