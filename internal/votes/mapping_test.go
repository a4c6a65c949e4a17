package votes_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/tribuna-project/tribuna/internal/ingest"
	"github.com/tribuna-project/tribuna/internal/votes"
)

func TestMapSession(t *testing.T) {
	raw := json.RawMessage(`{"id":"2373298-43","siglaOrgao":"PLEN"}`)

	session, err := votes.MapSession(raw)
	if err != nil {
		t.Fatalf("map session failed: %v", err)
	}

	if session.ExternalID != "2373298-43" {
		t.Errorf("external id got %q", session.ExternalID)
	}
	if session.Organ != "PLEN" {
		t.Errorf("organ got %q, want PLEN", session.Organ)
	}
}

func TestMapSessionRequiresID(t *testing.T) {
	_, err := votes.MapSession(json.RawMessage(`{"siglaOrgao":"PLEN"}`))

	var mapErr *ingest.MappingError
	if !errors.As(err, &mapErr) {
		t.Errorf("got %v, want a mapping error", err)
	}
}

func TestMapVote(t *testing.T) {
	raw := json.RawMessage(`{
		"tipoVoto": "Sim",
		"dataRegistroVoto": "2025-05-20T19:42:11",
		"deputado_": {"id": 204554}
	}`)

	mapped, err := votes.MapVote(raw)
	if err != nil {
		t.Fatalf("map vote failed: %v", err)
	}

	if mapped.LegislatorExternal != 204554 {
		t.Errorf("legislator got %d, want 204554", mapped.LegislatorExternal)
	}
	if mapped.Vote.Choice != "Sim" {
		t.Errorf("choice got %q, want Sim", mapped.Vote.Choice)
	}
	if mapped.Vote.VotedAt == nil {
		t.Error("expected vote timestamp")
	}
}

func TestMapVoteRejectsIncompleteRecords(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"missing legislator", `{"tipoVoto":"Sim"}`},
		{"blank choice", `{"tipoVoto":" ","deputado_":{"id":1}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := votes.MapVote(json.RawMessage(tt.raw))

			var mapErr *ingest.MappingError
			if !errors.As(err, &mapErr) {
				t.Errorf("got %v, want a mapping error", err)
			}
		})
	}
}

func TestNaturalKey(t *testing.T) {
	id := uuid.MustParse("0d4bb777-2166-4c0c-a01c-7bbba84f6b25")
	vote := votes.Vote{ExternalVoteID: "2373298-43", LegislatorID: id}

	expected := "2373298-43|0d4bb777-2166-4c0c-a01c-7bbba84f6b25"
	if got := vote.NaturalKey(); got != expected {
		t.Errorf("got %q, want %q", got, expected)
	}
}
