package core

import (
	"testing"

	"github.com/google/uuid"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"iMessage;-;+15551234567":  "imessage-15551234567",
		"SMS;-;friend@example.com": "sms-friendexample-com",
		"Café Crème":               "cafe-creme",
		"chat123456789012345678":   "chat123456789012345678",
		"Trip — Planning / 2014":   "trip-planning-2014",
	}
	for input, want := range cases {
		if got := Slugify(input); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestNewExportID(t *testing.T) {
	id := NewExportID()
	if _, err := uuid.Parse(id); err != nil {
		t.Fatalf("expected uuid, got %q: %v", id, err)
	}
	if NewExportID() == id {
		t.Fatal("expected unique export ids")
	}
}
