package domain

import "context"

// Generator is one selectable generative-text backend.
type Generator interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ConversationStore persists conversation metadata.
type ConversationStore interface {
	Create(ctx context.Context, conv *Conversation) error
	Get(ctx context.Context, id string) (*Conversation, error)
	ListByOwner(ctx context.Context, ownerID string) ([]Conversation, error)
	UpdateTitle(ctx context.Context, id, title string) error
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}

// MessageStore is the append-only message log.
type MessageStore interface {
	Append(ctx context.Context, msg *Message) error
	Get(ctx context.Context, id string) (*Message, error)
	ListByConversation(ctx context.Context, conversationID string) ([]Message, error)
	// MarkRegenerated flips the regenerated flag if and only if it is
	// still false, reporting whether this caller won the write.
	MarkRegenerated(ctx context.Context, id string) (bool, error)
}
