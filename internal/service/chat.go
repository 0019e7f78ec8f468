package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/maricastroc/minerva-ai/internal/config"
	"github.com/maricastroc/minerva-ai/internal/domain"
)

// ExchangeService turns one user message into a persisted exchange:
// one USER row and one ASSISTANT row, always.
type ExchangeService struct {
	conversations domain.ConversationStore
	messages      domain.MessageStore
	dispatcher    *Dispatcher
	fallback      *FallbackResponder
	titles        *TitleSynthesizer
	cache         *ResponseCache
	now           func() time.Time
}

func NewExchangeService(
	conversations domain.ConversationStore,
	messages domain.MessageStore,
	dispatcher *Dispatcher,
	fallback *FallbackResponder,
	titles *TitleSynthesizer,
	cache *ResponseCache,
) *ExchangeService {
	return &ExchangeService{
		conversations: conversations,
		messages:      messages,
		dispatcher:    dispatcher,
		fallback:      fallback,
		titles:        titles,
		cache:         cache,
		now:           time.Now,
	}
}

type ProcessInput struct {
	OwnerID        string
	Message        string
	ConversationID string
	History        []domain.Turn
}

type ProcessOutput struct {
	Reply              string
	ConversationID     string
	IsNewConversation  bool
	UserMessageID      string
	AssistantMessageID string
}

func (s *ExchangeService) Process(ctx context.Context, in ProcessInput) (*ProcessOutput, error) {
	// No cancellation mid-exchange: a client disconnect must not leave
	// a user turn without its assistant turn.
	ctx = context.WithoutCancel(ctx)

	if err := validateMessage(in.Message); err != nil {
		return nil, err
	}

	key := CacheKey(in.History, in.Message)
	reply, hit := s.cache.Get(key)

	conv, isNew, err := s.resolveConversation(ctx, in.OwnerID, in.ConversationID, in.Message)
	if err != nil {
		return nil, err
	}

	userMsg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           domain.RoleUser,
		Content:        in.Message,
		CreatedAt:      s.now(),
	}

	if hit {
		slog.Debug("cache hit", "conversation_id", conv.ID)
		if err := s.messages.Append(ctx, userMsg); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
		}
	} else {
		// The user-turn write and the generation call run concurrently;
		// the assistant turn is appended only after both are done, so
		// user-before-assistant order holds by construction.
		type genResult struct {
			text string
			err  error
		}
		genCh := make(chan genResult, 1)
		go func() {
			text, err := s.dispatcher.Generate(ctx, BuildPrompt(in.History, in.Message))
			genCh <- genResult{text: text, err: err}
		}()

		appendErr := s.messages.Append(ctx, userMsg)
		res := <-genCh
		if appendErr != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, appendErr)
		}

		if res.err != nil {
			slog.Error("generation exhausted, using local responder",
				"conversation_id", conv.ID, "error", res.err)
			reply = s.fallback.Reply(in.Message)
		} else {
			reply = res.text
			// Only real model output is cached; a fallback reply must
			// not calcify into a wrong cached answer.
			s.cache.Set(key, reply)
		}
	}

	assistantMsg := &domain.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Role:           domain.RoleAssistant,
		Content:        reply,
		CreatedAt:      s.now(),
	}
	if err := s.messages.Append(ctx, assistantMsg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	if err := s.conversations.Touch(ctx, conv.ID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return &ProcessOutput{
		Reply:              reply,
		ConversationID:     conv.ID,
		IsNewConversation:  isNew,
		UserMessageID:      userMsg.ID,
		AssistantMessageID: assistantMsg.ID,
	}, nil
}

func (s *ExchangeService) resolveConversation(ctx context.Context, ownerID, conversationID, message string) (*domain.Conversation, bool, error) {
	if conversationID != "" {
		conv, err := s.conversations.Get(ctx, conversationID)
		if err != nil {
			return nil, false, err
		}
		if conv.OwnerID != ownerID {
			return nil, false, domain.ErrForbidden
		}
		return conv, false, nil
	}

	conv := &domain.Conversation{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Title:     s.titles.Synthesize(ctx, message),
		CreatedAt: s.now(),
		UpdatedAt: s.now(),
	}
	if err := s.conversations.Create(ctx, conv); err != nil {
		return nil, false, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	slog.Info("new conversation started", "conversation_id", conv.ID, "owner_id", ownerID)
	return conv, true, nil
}

func validateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: message is required", domain.ErrInvalidInput)
	}
	if len(message) > config.MaxMessageLen {
		return fmt.Errorf("%w: message too long (max %d characters)", domain.ErrInvalidInput, config.MaxMessageLen)
	}
	return nil
}
