package formatting_test

import (
	"errors"
	"testing"

	"github.com/tribuna-project/tribuna/pkg/formatting"
)

type assessment struct {
	Score     int    `json:"score"`
	Rationale string `json:"rationale"`
}

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		content string
		score   int
		wantErr bool
	}{
		{
			name:    "plain json",
			content: `{"score": 72, "rationale": "substantive"}`,
			score:   72,
		},
		{
			name:    "fenced json",
			content: "```json\n{\"score\": 55, \"rationale\": \"ok\"}\n```",
			score:   55,
		},
		{
			name:    "fence without language tag",
			content: "```\n{\"score\": 10}\n```",
			score:   10,
		},
		{
			name:    "prose around fence",
			content: "Here is the assessment:\n```json\n{\"score\": 88}\n```\nLet me know.",
			score:   88,
		},
		{
			name:    "no json at all",
			content: "the proposal is fine",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := formatting.Parse[assessment](tt.content)
			if tt.wantErr {
				if !errors.Is(err, formatting.ErrParseFailed) {
					t.Errorf("got %v, want ErrParseFailed", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse failed: %v", err)
			}
			if result.Score != tt.score {
				t.Errorf("score got %d, want %d", result.Score, tt.score)
			}
		})
	}
}
