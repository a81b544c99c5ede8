package gmail

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func newTestClient(serverURL string) *Client {
	client := New(context.Background(), zap.NewNop(), "test-token")
	client.APIURL = serverURL
	return client
}

func serveJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", contentType)
	fmt.Fprint(w, body)
}

func marshalResource(t *testing.T, resource *messageResource) string {
	t.Helper()

	data, err := json.Marshal(resource)
	if err != nil {
		t.Fatalf("marshal resource: %v", err)
	}

	return string(data)
}

func TestSearchPaginatesAndSkipsUnreadable(t *testing.T) {
	var listCalls int
	var gotAuth string

	resource := &messageResource{
		ID:       "m1",
		ThreadID: "t1",
		Payload: &messagePart{
			MimeType: mimeTextPlain,
			Headers: []messageHeader{
				{Name: "From", Value: "anna@example.com"},
				{Name: "Subject", Value: "Bewerbung"},
			},
			Body: encodeBody("Hallo, ich bin Nichtraucherin."),
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/users/me/messages", func(w http.ResponseWriter, r *http.Request) {
		listCalls++
		gotAuth = r.Header.Get("Authorization")

		if !strings.Contains(r.URL.Query().Get("q"), "after:") {
			t.Errorf("expected date filter in query, got %q", r.URL.Query().Get("q"))
		}

		switch r.URL.Query().Get("pageToken") {
		case "":
			serveJSON(w, `{"messages":[{"id":"m1","threadId":"t1"},{"id":"m2","threadId":"t2"}],"nextPageToken":"p2","resultSizeEstimate":3}`)
		case "p2":
			serveJSON(w, `{"messages":[{"id":"m3","threadId":"t3"}]}`)
		default:
			http.Error(w, "unexpected token", http.StatusBadRequest)
		}
	})
	mux.HandleFunc("/users/me/messages/m1", func(w http.ResponseWriter, _ *http.Request) {
		serveJSON(w, marshalResource(t, resource))
	})
	mux.HandleFunc("/users/me/messages/m2", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/users/me/messages/m3", func(w http.ResponseWriter, _ *http.Request) {
		third := *resource
		third.ID = "m3"
		serveJSON(w, marshalResource(t, &third))
	})

	server := httptest.NewServer(mux)
	defer server.Close()

	client := newTestClient(server.URL)

	messages, err := client.Search(&SearchParams{DaysBack: 3, MaxResults: 10})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if listCalls != 2 {
		t.Fatalf("expected 2 list requests, got %d", listCalls)
	}

	if gotAuth != "Bearer test-token" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}

	if messages.Len() != 2 {
		t.Fatalf("expected 2 readable messages, got %d", messages.Len())
	}

	if ids := messages.IDs(); ids[0] != "m1" || ids[1] != "m3" {
		t.Fatalf("unexpected message ids: %v", ids)
	}

	if msg := messages.FindByID("m1"); msg.Body != "Hallo, ich bin Nichtraucherin." {
		t.Fatalf("unexpected body: %q", msg.Body)
	}
}

func TestGetItemsStopsAtLimit(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		serveJSON(w, fmt.Sprintf(`{"messages":[{"id":"a%d"},{"id":"b%d"}],"nextPageToken":"more"}`, calls, calls))
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	items, err := client.GetItems(server.URL+listPath, nil, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if calls != 2 {
		t.Fatalf("expected 2 requests, got %d", calls)
	}

	if len(items) != 3 {
		t.Fatalf("expected 3 items after truncation, got %d", len(items))
	}
}

func TestGetItemsDecodesGzip(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
			t.Errorf("expected gzip in accept-encoding, got %q", r.Header.Get("Accept-Encoding"))
		}

		w.Header().Set("Content-Encoding", "gzip")
		gz := gzip.NewWriter(w)
		fmt.Fprint(gz, `{"messages":[{"id":"z1"}],"resultSizeEstimate":1}`)
		gz.Close()
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	items, err := client.GetItems(server.URL+listPath, nil, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestGetJSONBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	client := newTestClient(server.URL)

	err := client.getJSON(server.URL+listPath+"/x", nil, &struct{}{})
	if err == nil || !strings.Contains(err.Error(), "bad status") {
		t.Fatalf("expected bad status error, got %v", err)
	}
}
