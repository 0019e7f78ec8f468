package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/maricastroc/minerva-ai/internal/domain"
	"github.com/maricastroc/minerva-ai/internal/handler"
	"github.com/maricastroc/minerva-ai/internal/middleware"
	"github.com/maricastroc/minerva-ai/internal/repository/memory"
	"github.com/maricastroc/minerva-ai/internal/service"
)

type fakeBackend struct {
	name string
	text string
	err  error
}

func (b *fakeBackend) Name() string { return b.name }

func (b *fakeBackend) Generate(ctx context.Context, prompt string) (string, error) {
	if b.err != nil {
		return "", b.err
	}
	return b.text, nil
}

type testServer struct {
	router        *gin.Engine
	conversations *memory.ConversationStore
	messages      *memory.MessageStore
}

func newTestServer(t *testing.T, backend domain.Generator) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	conversations := memory.NewConversationStore()
	messages := memory.NewMessageStore()
	dispatcher := service.NewDispatcher([]domain.Generator{backend})
	fallback := service.NewFallbackResponder()
	titles := service.NewTitleSynthesizer(backend)
	cache := service.NewResponseCache()

	h := handler.New(handler.Deps{
		Exchange:      service.NewExchangeService(conversations, messages, dispatcher, fallback, titles, cache),
		Regenerate:    service.NewRegenerateService(conversations, messages, dispatcher, fallback),
		Conversations: conversations,
		Messages:      messages,
		Verifier:      middleware.StaticVerifier{"token-1": "owner-1", "token-2": "owner-2"},
	})

	router := gin.New()
	h.Register(router)
	return &testServer{router: router, conversations: conversations, messages: messages}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestSubmitRequiresToken(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{name: "m", text: "hi"})

	rec := srv.do(t, http.MethodPost, "/api/chatbot", "", gin.H{"message": "hello"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/chatbot", "bogus", gin.H{"message": "hello"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for unknown token, got %d", rec.Code)
	}
}

func TestSubmitCreatesConversation(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{name: "m", text: "Sure, here you go."})

	rec := srv.do(t, http.MethodPost, "/api/chatbot", "token-1", gin.H{"message": "What is Go?"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Reply             string `json:"reply"`
		ChatID            string `json:"chatID"`
		IsNewConversation bool   `json:"isNewConversation"`
		MessageIDs        struct {
			UserMessageID      string `json:"userMessageId"`
			AssistantMessageID string `json:"assistantMessageId"`
		} `json:"messageIds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Reply != "Sure, here you go." {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
	if !resp.IsNewConversation {
		t.Fatal("expected isNewConversation=true on first message")
	}
	if resp.ChatID == "" || resp.MessageIDs.UserMessageID == "" || resp.MessageIDs.AssistantMessageID == "" {
		t.Fatalf("response missing identifiers: %+v", resp)
	}

	msgs, err := srv.messages.ListByConversation(context.Background(), resp.ChatID)
	if err != nil {
		t.Fatalf("listing messages: %v", err)
	}
	if len(msgs) != 2 || msgs[0].Role != domain.RoleUser || msgs[1].Role != domain.RoleAssistant {
		t.Fatalf("expected USER then ASSISTANT rows, got %+v", msgs)
	}
}

func TestSubmitRejectsMissingMessage(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{name: "m", text: "hi"})

	rec := srv.do(t, http.MethodPost, "/api/chatbot", "token-1", gin.H{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing message, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/chatbot", "token-1", gin.H{"message": "   "})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for blank message, got %d", rec.Code)
	}
}

func TestSubmitExhaustionStillSucceeds(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{name: "m", err: errors.New("503 UNAVAILABLE")})

	rec := srv.do(t, http.MethodPost, "/api/chatbot", "token-1", gin.H{"message": "hello there"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with fallback reply, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Reply string `json:"reply"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.Reply == "" {
		t.Fatal("expected a fallback reply when all backends fail")
	}
}

func TestRegenerateErrorMapping(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{name: "m", text: "a different answer"})

	ctx := context.Background()
	conv := &domain.Conversation{ID: uuid.NewString(), OwnerID: "owner-1", Title: "Chat"}
	if err := srv.conversations.Create(ctx, conv); err != nil {
		t.Fatal(err)
	}
	userMsg := &domain.Message{ID: uuid.NewString(), ConversationID: conv.ID, Role: domain.RoleUser, Content: "question"}
	assistantMsg := &domain.Message{ID: uuid.NewString(), ConversationID: conv.ID, Role: domain.RoleAssistant, Content: "first answer"}
	for _, m := range []*domain.Message{userMsg, assistantMsg} {
		if err := srv.messages.Append(ctx, m); err != nil {
			t.Fatal(err)
		}
	}

	body := gin.H{"conversationId": conv.ID, "messageId": assistantMsg.ID}

	rec := srv.do(t, http.MethodPost, "/api/chatbot/regenerate", "token-2", body)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for foreign owner, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/chatbot/regenerate", "token-1",
		gin.H{"conversationId": conv.ID, "messageId": uuid.NewString()})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown message, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/chatbot/regenerate", "token-1",
		gin.H{"conversationId": conv.ID, "messageId": userMsg.ID})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for regenerating a user message, got %d", rec.Code)
	}

	rec = srv.do(t, http.MethodPost, "/api/chatbot/regenerate", "token-1", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on first regeneration, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		RegeneratedReply  string `json:"regeneratedReply"`
		NewMessageID      string `json:"newMessageId"`
		OriginalMessageID string `json:"originalMessageId"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp.RegeneratedReply != "a different answer" || resp.OriginalMessageID != assistantMsg.ID || resp.NewMessageID == "" {
		t.Fatalf("unexpected regenerate response: %+v", resp)
	}

	rec = srv.do(t, http.MethodPost, "/api/chatbot/regenerate", "token-1", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 on second regeneration, got %d", rec.Code)
	}
}

func TestListChatsScopedToOwner(t *testing.T) {
	srv := newTestServer(t, &fakeBackend{name: "m", text: "hi"})

	ctx := context.Background()
	mine := &domain.Conversation{ID: uuid.NewString(), OwnerID: "owner-1", Title: "Mine"}
	theirs := &domain.Conversation{ID: uuid.NewString(), OwnerID: "owner-2", Title: "Theirs"}
	for _, conv := range []*domain.Conversation{mine, theirs} {
		if err := srv.conversations.Create(ctx, conv); err != nil {
			t.Fatal(err)
		}
	}

	rec := srv.do(t, http.MethodGet, "/api/user/chats", "token-1", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var chats []struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &chats); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(chats) != 1 || chats[0].ID != mine.ID {
		t.Fatalf("expected only owner-1's chat, got %+v", chats)
	}

	rec = srv.do(t, http.MethodGet, "/api/user/chats/"+theirs.ID, "token-1", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 reading a foreign chat, got %d", rec.Code)
	}
}
