package main

import (
	"testing"
	"time"

	"mercator-hq/callisto/pkg/interaction"
)

func TestSummarize(t *testing.T) {
	in := interaction.New("checkout-flow")
	in.Append(interaction.Message{
		Request: interaction.Request{
			Method: "POST",
			URL:    "https://api.example.com/cart",
			Body:   []byte(`{"item":"sku-1"}`),
		},
		Response: interaction.Response{
			Status:     201,
			StatusText: "201 Created",
			Body:       []byte(`{"id":42}`),
		},
		Started: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Elapsed: 120 * time.Millisecond,
	})
	in.Append(interaction.Message{
		Request:  interaction.Request{Method: "GET", URL: "https://api.example.com/cart/42"},
		Response: interaction.Response{Status: 200, StatusText: "200 OK"},
	})

	summary := summarize(in)

	if summary.Name != "checkout-flow" {
		t.Errorf("Name = %q, want %q", summary.Name, "checkout-flow")
	}
	if len(summary.Entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(summary.Entries))
	}

	first := summary.Entries[0]
	if first.Sequence != 1 {
		t.Errorf("Sequence = %d, want 1", first.Sequence)
	}
	if first.Method != "POST" || first.Status != 201 {
		t.Errorf("entry = %s %d, want POST 201", first.Method, first.Status)
	}
	if first.ElapsedMS != 120 {
		t.Errorf("ElapsedMS = %v, want 120", first.ElapsedMS)
	}
	if first.RequestBytes != len(`{"item":"sku-1"}`) {
		t.Errorf("RequestBytes = %d, want %d", first.RequestBytes, len(`{"item":"sku-1"}`))
	}

	if summary.Entries[1].Sequence != 2 {
		t.Errorf("second Sequence = %d, want 2", summary.Entries[1].Sequence)
	}
}

func TestSummarize_EmptyInteraction(t *testing.T) {
	summary := summarize(interaction.New("empty"))
	if len(summary.Entries) != 0 {
		t.Errorf("got %d entries, want 0", len(summary.Entries))
	}
}

func TestInspectCommandRegistered(t *testing.T) {
	found := false
	for _, c := range rootCmd.Commands() {
		if c.Name() == "inspect" {
			found = true
		}
	}
	if !found {
		t.Error("inspect command should be registered on the root command")
	}
}
