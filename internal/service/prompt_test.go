package service_test

import (
	"strings"
	"testing"

	"github.com/maricastroc/minerva-ai/internal/domain"
	"github.com/maricastroc/minerva-ai/internal/service"
)

func TestBuildPromptWindowsHistory(t *testing.T) {
	var history []domain.Turn
	for i := 0; i < 10; i++ {
		history = append(history, domain.Turn{Role: domain.RoleUser, Content: string(rune('a' + i))})
	}

	prompt := service.BuildPrompt(history, "latest question")

	if strings.Contains(prompt, "USER: a") {
		t.Fatal("turns beyond the window must be dropped")
	}
	if !strings.Contains(prompt, "USER: j") {
		t.Fatal("most recent turns must be kept")
	}
	if !strings.HasSuffix(prompt, "User: latest question\nAssistant:") {
		t.Fatalf("prompt must end with the user cue, got %q", prompt[len(prompt)-40:])
	}
}

func TestBuildRegenerationPromptEmbedsOriginal(t *testing.T) {
	prompt := service.BuildRegenerationPrompt(nil, "what is go?", "a language")

	if !strings.Contains(prompt, `User's original question: "what is go?"`) {
		t.Fatal("prompt must embed the user question")
	}
	if !strings.Contains(prompt, `Your previous response: "a language"`) {
		t.Fatal("prompt must embed the original reply")
	}
	if !strings.Contains(prompt, "No previous conversation history.") {
		t.Fatal("empty history must be stated explicitly")
	}
}
