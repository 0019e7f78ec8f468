package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/maricastroc/minerva-ai/internal/domain"
)

// RegenerateService replaces one assistant reply with an improved one.
// Each assistant message can be regenerated exactly once: the original
// row is flagged and a new row is appended, linked through
// OriginalMessageID, so the audit trail survives.
type RegenerateService struct {
	conversations domain.ConversationStore
	messages      domain.MessageStore
	dispatcher    *Dispatcher
	fallback      *FallbackResponder
	now           func() time.Time
}

func NewRegenerateService(
	conversations domain.ConversationStore,
	messages domain.MessageStore,
	dispatcher *Dispatcher,
	fallback *FallbackResponder,
) *RegenerateService {
	return &RegenerateService{
		conversations: conversations,
		messages:      messages,
		dispatcher:    dispatcher,
		fallback:      fallback,
		now:           time.Now,
	}
}

type RegenerateOutput struct {
	RegeneratedReply  string
	NewMessageID      string
	OriginalMessageID string
}

func (s *RegenerateService) Regenerate(ctx context.Context, ownerID, conversationID, messageID string) (*RegenerateOutput, error) {
	ctx = context.WithoutCancel(ctx)

	msg, err := s.messages.Get(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.ConversationID != conversationID {
		return nil, domain.ErrMessageNotFound
	}

	conv, err := s.conversations.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.OwnerID != ownerID {
		return nil, domain.ErrForbidden
	}

	if msg.Role != domain.RoleAssistant {
		return nil, domain.ErrInvalidRole
	}
	if msg.Regenerated {
		return nil, domain.ErrAlreadyRegenerated
	}

	history, userTurn, err := s.buildContext(ctx, conversationID, messageID)
	if err != nil {
		return nil, err
	}

	prompt := BuildRegenerationPrompt(history, userTurn.Content, msg.Content)
	text, err := s.dispatcher.Generate(ctx, prompt)
	if err != nil {
		slog.Error("regeneration exhausted, using local responder",
			"message_id", messageID, "error", err)
		text = s.fallback.Reply(userTurn.Content)
	}

	// A byte-identical reply is a failed regeneration, not a success.
	if text == msg.Content {
		return nil, domain.ErrRegenerationNoChange
	}

	// Re-check the flag at write time: of two concurrent regenerations
	// only the one that flips the flag may append a replacement.
	won, err := s.messages.MarkRegenerated(ctx, messageID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}
	if !won {
		return nil, domain.ErrAlreadyRegenerated
	}

	original := messageID
	newMsg := &domain.Message{
		ID:                uuid.NewString(),
		ConversationID:    conversationID,
		Role:              domain.RoleAssistant,
		Content:           text,
		OriginalMessageID: &original,
		CreatedAt:         s.now(),
	}
	if err := s.messages.Append(ctx, newMsg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if err := s.conversations.Touch(ctx, conversationID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return &RegenerateOutput{
		RegeneratedReply:  text,
		NewMessageID:      newMsg.ID,
		OriginalMessageID: messageID,
	}, nil
}

// buildContext locates the target message in conversation order. The
// turn immediately before it must be the USER turn that produced it;
// everything strictly before that user turn becomes prompt history.
func (s *RegenerateService) buildContext(ctx context.Context, conversationID, messageID string) ([]domain.Turn, *domain.Message, error) {
	all, err := s.messages.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	idx := -1
	for i := range all {
		if all[i].ID == messageID {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return nil, nil, domain.ErrCorruptState
	}

	userTurn := all[idx-1]
	if userTurn.Role != domain.RoleUser {
		return nil, nil, domain.ErrCorruptState
	}

	history := make([]domain.Turn, 0, idx-1)
	for _, m := range all[:idx-1] {
		history = append(history, domain.Turn{Role: m.Role, Content: m.Content})
	}
	return history, &userTurn, nil
}
