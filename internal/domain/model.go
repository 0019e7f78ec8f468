package domain

import "time"

type Role string

const (
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
)

type Conversation struct {
	ID        string
	OwnerID   string
	Title     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Message is an append-only row. Seq orders messages inside a
// conversation regardless of wall-clock resolution.
type Message struct {
	ID                string
	ConversationID    string
	Seq               int64
	Role              Role
	Content           string
	Regenerated       bool
	OriginalMessageID *string
	CreatedAt         time.Time
}

// Turn is one prior role/content pair as supplied by the client with a
// submit request. It feeds the cache key and the generation prompt.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
