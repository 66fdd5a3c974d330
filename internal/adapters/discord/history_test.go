package discord

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

type fakeLister struct {
	pages    [][]*discordgo.Message
	errs     []error
	calls    int
	beforeID []string
	limits   []int
}

func (f *fakeLister) ChannelMessages(_ string, limit int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	f.calls++
	f.beforeID = append(f.beforeID, beforeID)
	f.limits = append(f.limits, limit)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	if len(f.pages) == 0 {
		return nil, nil
	}
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func TestHistoryConvertsMessages(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	lister := &fakeLister{pages: [][]*discordgo.Message{{
		{
			ID:        "m2",
			Timestamp: ts,
			Author:    &discordgo.User{ID: "u1", Username: "alice"},
			Reactions: []*discordgo.MessageReactions{
				{Emoji: &discordgo.Emoji{Name: "5️⃣"}, Count: 2},
				{Emoji: &discordgo.Emoji{Name: "blob", ID: "123"}, Count: 1},
				{Emoji: &discordgo.Emoji{Name: "7️⃣"}, Count: 0},
				nil,
			},
		},
		nil,
		{ID: "m1", Author: &discordgo.User{ID: "u2", Username: "bob"}},
	}}}
	h := newHistory(lister, 1, time.Millisecond, zerolog.Nop())

	got, err := h.Messages(context.Background(), "c1", "m9", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.limits[0] != 100 || lister.beforeID[0] != "m9" {
		t.Fatalf("unexpected request: limit=%d before=%q", lister.limits[0], lister.beforeID[0])
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	first := got[0]
	if first.ID != "m2" || first.Author.ID != "u1" || first.Author.Name != "alice" || !first.Timestamp.Equal(ts) {
		t.Fatalf("unexpected message: %+v", first)
	}
	if len(first.Reactions) != 2 {
		t.Fatalf("expected 2 reactions, got %+v", first.Reactions)
	}
	if first.Reactions[0].Emoji != "5️⃣" || first.Reactions[0].Count != 2 {
		t.Fatalf("unexpected reaction: %+v", first.Reactions[0])
	}
	if first.Reactions[1].Emoji != "blob:123" {
		t.Fatalf("custom emoji should keep its api name, got %q", first.Reactions[1].Emoji)
	}
	if len(got[1].Reactions) != 0 {
		t.Fatalf("message without reactions should stay bare")
	}
}

func TestHistoryRetriesTransientErrors(t *testing.T) {
	lister := &fakeLister{
		errs:  []error{errors.New("connection reset"), nil},
		pages: [][]*discordgo.Message{{{ID: "m1"}}},
	}
	h := newHistory(lister, 3, time.Millisecond, zerolog.Nop())

	got, err := h.Messages(context.Background(), "c1", "", 100)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lister.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", lister.calls)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
}

func TestHistoryDoesNotRetryForbidden(t *testing.T) {
	forbidden := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden, Status: "403 Forbidden"}}
	lister := &fakeLister{errs: []error{forbidden, forbidden, forbidden}}
	h := newHistory(lister, 3, time.Millisecond, zerolog.Nop())

	if _, err := h.Messages(context.Background(), "c1", "", 100); err == nil {
		t.Fatalf("expected error")
	}
	if lister.calls != 1 {
		t.Fatalf("expected a single call, got %d", lister.calls)
	}
}

func TestHistoryGivesUpAfterAttempts(t *testing.T) {
	boom := errors.New("gateway timeout")
	lister := &fakeLister{errs: []error{boom, boom, boom, boom}}
	h := newHistory(lister, 3, time.Millisecond, zerolog.Nop())

	_, err := h.Messages(context.Background(), "c1", "", 100)
	if err == nil {
		t.Fatalf("expected error")
	}
	if lister.calls != 3 {
		t.Fatalf("expected 3 calls, got %d", lister.calls)
	}
}

func TestIsPermanent(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "plain", err: errors.New("eof"), want: false},
		{name: "not found", err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}, want: true},
		{name: "rate limited", err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusTooManyRequests}}, want: false},
		{name: "server error", err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusBadGateway}}, want: false},
		{name: "no response", err: &discordgo.RESTError{}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isPermanent(tt.err); got != tt.want {
				t.Fatalf("isPermanent() = %v, want %v", got, tt.want)
			}
		})
	}
}
