package gmail

import (
	"encoding/base64"
	"strings"
	"testing"
	"time"
)

func encodeBody(text string) *partBody {
	return &partBody{
		Size: len(text),
		Data: base64.RawURLEncoding.EncodeToString([]byte(text)),
	}
}

func TestToMessagePrefersPlainTextOverHTML(t *testing.T) {
	resource := &messageResource{
		ID:       "m1",
		ThreadID: "t1",
		Payload: &messagePart{
			MimeType: "multipart/alternative",
			Headers: []messageHeader{
				{Name: "Subject", Value: "Bewerbung"},
				{Name: "From", Value: "anna@example.com"},
				{Name: "Date", Value: "Mon, 02 Mar 2026 10:04:05 +0100"},
			},
			Parts: []*messagePart{
				{MimeType: mimeTextHTML, Body: encodeBody("<p>Hallo</p>")},
				{MimeType: mimeTextPlain, Body: encodeBody("Hallo, ich bin Nichtraucherin.")},
			},
		},
	}

	msg := resource.toMessage()

	if msg.Body != "Hallo, ich bin Nichtraucherin." {
		t.Fatalf("unexpected body: %q", msg.Body)
	}

	if msg.Sender != "anna@example.com" || msg.Subject != "Bewerbung" {
		t.Fatalf("unexpected headers: %q / %q", msg.Sender, msg.Subject)
	}

	want := time.Date(2026, 3, 2, 10, 4, 5, 0, time.FixedZone("", 3600))
	if !msg.Date.Equal(want) {
		t.Fatalf("unexpected date: %v", msg.Date)
	}
}

func TestToMessageFallsBackToHTML(t *testing.T) {
	resource := &messageResource{
		ID: "m2",
		Payload: &messagePart{
			MimeType: "multipart/alternative",
			Parts: []*messagePart{
				{MimeType: mimeTextHTML, Body: encodeBody("<p>Nur HTML</p>")},
			},
		},
	}

	if got := resource.toMessage().Body; got != "<p>Nur HTML</p>" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestToMessageWalksNestedParts(t *testing.T) {
	resource := &messageResource{
		ID: "m3",
		Payload: &messagePart{
			MimeType: "multipart/mixed",
			Parts: []*messagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*messagePart{
						{MimeType: mimeTextPlain, Body: encodeBody("nested text")},
					},
				},
			},
		},
	}

	if got := resource.toMessage().Body; got != "nested text" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestToMessageSinglePartPlain(t *testing.T) {
	resource := &messageResource{
		ID: "m4",
		Payload: &messagePart{
			MimeType: mimeTextPlain,
			Body:     encodeBody("  single part body \n"),
		},
	}

	if got := resource.toMessage().Body; got != "single part body" {
		t.Fatalf("unexpected body: %q", got)
	}
}

func TestToMessageDefaultsForMissingFields(t *testing.T) {
	resource := &messageResource{
		ID:      "m5",
		Payload: &messagePart{MimeType: "multipart/mixed"},
	}

	msg := resource.toMessage()

	if msg.Subject != noSubject {
		t.Fatalf("unexpected subject: %q", msg.Subject)
	}

	if msg.Sender != noSender {
		t.Fatalf("unexpected sender: %q", msg.Sender)
	}

	if msg.Body != noBody {
		t.Fatalf("unexpected body: %q", msg.Body)
	}

	if time.Since(msg.Date) > time.Minute {
		t.Fatalf("expected date close to now, got %v", msg.Date)
	}
}

func TestDecodeBodyHandlesPaddedData(t *testing.T) {
	padded := base64.URLEncoding.EncodeToString([]byte("padded?"))
	if !strings.Contains(padded, "=") {
		t.Fatalf("expected padded encoding, got %q", padded)
	}

	if got := decodeBody(&partBody{Data: padded}); got != "padded?" {
		t.Fatalf("unexpected decoded text: %q", got)
	}

	if got := decodeBody(&partBody{Data: "!!! not base64 !!!"}); got != "" {
		t.Fatalf("expected empty string for undecodable data, got %q", got)
	}

	if got := decodeBody(nil); got != "" {
		t.Fatalf("expected empty string for nil body, got %q", got)
	}
}

func TestBuildQueryWindow(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	if got := buildQuery("", 7, now); got != "after:2026/03/03" {
		t.Fatalf("unexpected query: %q", got)
	}

	if got := buildQuery("in:inbox", 1, now); got != "in:inbox after:2026/03/09" {
		t.Fatalf("unexpected query: %q", got)
	}
}
