package domain

import (
	"testing"
	"time"
)

func TestAuthorKey(t *testing.T) {
	tests := []struct {
		name   string
		author Author
		key    string
		label  string
	}{
		{name: "id and name", author: Author{ID: "42", Name: "alice"}, key: "42", label: "alice"},
		{name: "name only", author: Author{Name: "bob"}, key: "bob", label: "bob"},
		{name: "id only", author: Author{ID: "7"}, key: "7", label: "7"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.author.Key(); got != tt.key {
				t.Fatalf("Key() = %q, want %q", got, tt.key)
			}
			if got := tt.author.DisplayName(); got != tt.label {
				t.Fatalf("DisplayName() = %q, want %q", got, tt.label)
			}
		})
	}
}

func TestRatedPostSameEntityIgnoresOtherFields(t *testing.T) {
	a := RatedPost{ID: "1", Author: Author{ID: "a"}, Reactions: []Reaction{{Emoji: "5️⃣", Count: 1}}, Timestamp: time.Unix(1, 0)}
	b := RatedPost{ID: "1", Author: Author{ID: "b"}, Reactions: []Reaction{{Emoji: "9️⃣", Count: 3}}, Timestamp: time.Unix(2, 0)}
	if !a.SameEntity(b) {
		t.Fatal("ожидали совпадение по ID")
	}
	b.ID = "2"
	if a.SameEntity(b) {
		t.Fatal("посты с разными ID не должны совпадать")
	}
}

func TestReportMessages(t *testing.T) {
	r := Report{Batches: 3}
	if r.Messages() != 300 {
		t.Fatalf("ожидали 300, получили %d", r.Messages())
	}
}
