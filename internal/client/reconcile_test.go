package client_test

import (
	"errors"
	"testing"

	"github.com/maricastroc/minerva-ai/internal/client"
	"github.com/maricastroc/minerva-ai/internal/domain"
)

func TestConfirmRewritesIDAndAppendsAssistant(t *testing.T) {
	tl := client.NewTimeline()

	localID, err := tl.Begin("Hello")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if !tl.InFlight() {
		t.Fatal("an exchange must be in flight after Begin")
	}

	if err := tl.Confirm(localID, "srv-user-1", "srv-assistant-1", "Hi!"); err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}

	entries := tl.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected exactly 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "srv-user-1" || entries[0].Content != "Hello" {
		t.Fatalf("optimistic entry must be rewritten in place, got %+v", entries[0])
	}
	if entries[1].ID != "srv-assistant-1" || entries[1].Role != domain.RoleAssistant {
		t.Fatalf("assistant turn must carry its server id, got %+v", entries[1])
	}
	if tl.InFlight() {
		t.Fatal("confirmation must resolve the in-flight exchange")
	}
}

func TestOnlyOneExchangeInFlight(t *testing.T) {
	tl := client.NewTimeline()

	if _, err := tl.Begin("first"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if _, err := tl.Begin("second"); !errors.Is(err, client.ErrExchangeInFlight) {
		t.Fatalf("expected ErrExchangeInFlight, got %v", err)
	}
}

func TestFailureKeepsOptimisticEntryAndRetryStartsFresh(t *testing.T) {
	tl := client.NewTimeline()

	localID, err := tl.Begin("Hello")
	if err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := tl.Fail(localID); err != nil {
		t.Fatalf("Fail failed: %v", err)
	}

	entries := tl.Entries()
	if len(entries) != 2 {
		t.Fatalf("expected failed entry plus synthetic error turn, got %d entries", len(entries))
	}
	if entries[0].ID != localID || entries[0].Content != "Hello" {
		t.Fatal("the optimistic entry must keep its original text")
	}
	if entries[0].State != client.StateFailed {
		t.Fatal("the optimistic entry must be marked failed")
	}
	if !entries[1].Synthetic || entries[1].Role != domain.RoleAssistant {
		t.Fatalf("expected one synthetic assistant error turn, got %+v", entries[1])
	}

	// Retry appends a new optimistic entry; the failed one is untouched.
	retryID, err := tl.Begin("Hello")
	if err != nil {
		t.Fatalf("retry Begin failed: %v", err)
	}
	if retryID == localID {
		t.Fatal("retry must get a fresh correlation id")
	}

	entries = tl.Entries()
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries after retry, got %d", len(entries))
	}
	if entries[0].State != client.StateFailed {
		t.Fatal("retry must not mutate the failed entry")
	}
}

func TestConfirmRejectsUnknownCorrelation(t *testing.T) {
	tl := client.NewTimeline()

	if _, err := tl.Begin("Hello"); err != nil {
		t.Fatalf("Begin failed: %v", err)
	}
	if err := tl.Confirm("bogus", "u", "a", "r"); !errors.Is(err, client.ErrUnknownCorrelation) {
		t.Fatalf("expected ErrUnknownCorrelation, got %v", err)
	}
}

func TestHistoryExcludesFailedAndSyntheticTurns(t *testing.T) {
	tl := client.NewTimeline()

	id, _ := tl.Begin("lost message")
	_ = tl.Fail(id)

	id, _ = tl.Begin("kept message")
	_ = tl.Confirm(id, "u1", "a1", "kept reply")

	turns := tl.History(10)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Content != "kept message" || turns[1].Content != "kept reply" {
		t.Fatalf("unexpected history %+v", turns)
	}
}
