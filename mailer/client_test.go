package mailer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
)

func TestHTTPClient_SendPostsMessage(t *testing.T) {
	t.Parallel()

	var seen *http.Request
	var payload sendRequest
	doer := fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
		seen = r
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Fatalf("decode send payload: %v", err)
		}
		return jsonResponse(http.StatusOK, Receipt{ID: "msg-8812", Accepted: 2}), nil
	}}

	client, err := NewClient(ClientConfig{
		BaseURL:    "https://mail.henley-auto.example/",
		APIToken:   "token-123",
		From:       "reports@henley-auto.example",
		UserAgent:  "dealerops-test",
		HTTPClient: doer,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	receipt, err := client.Send(context.Background(), Message{
		To:      []string{"gm@henley-auto.example", " controller@henley-auto.example "},
		Subject: "Nissan statement for 2026-02",
		HTML:    "<html><body>statement</body></html>",
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if receipt.ID != "msg-8812" || receipt.Accepted != 2 {
		t.Fatalf("unexpected receipt: %+v", receipt)
	}
	if seen == nil {
		t.Fatal("expected a request to reach the relay")
	}
	if seen.Method != http.MethodPost || seen.URL.Path != "/api/v1/messages" {
		t.Fatalf("unexpected request target: %s %s", seen.Method, seen.URL.Path)
	}
	if seen.URL.Host != "mail.henley-auto.example" {
		t.Fatalf("unexpected host: %q", seen.URL.Host)
	}
	if got := seen.Header.Get("Authorization"); got != "Bearer token-123" {
		t.Fatalf("unexpected Authorization header: %q", got)
	}
	if got := seen.Header.Get("User-Agent"); got != "dealerops-test" {
		t.Fatalf("unexpected User-Agent header: %q", got)
	}
	if got := seen.Header.Get("Content-Type"); !strings.HasPrefix(got, "application/json") {
		t.Fatalf("unexpected Content-Type header: %q", got)
	}

	if payload.From != "reports@henley-auto.example" {
		t.Fatalf("unexpected sender in payload: %q", payload.From)
	}
	if len(payload.To) != 2 || payload.To[1] != "controller@henley-auto.example" {
		t.Fatalf("expected trimmed recipients, got %+v", payload.To)
	}
	if payload.Subject != "Nissan statement for 2026-02" {
		t.Fatalf("unexpected subject: %q", payload.Subject)
	}
	if !strings.Contains(payload.HTML, "statement") {
		t.Fatalf("unexpected html body: %q", payload.HTML)
	}
}

func TestHTTPClient_SendValidatesMessage(t *testing.T) {
	t.Parallel()

	requests := 0
	doer := fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
		requests++
		return jsonResponse(http.StatusOK, Receipt{}), nil
	}}

	client, err := NewClient(ClientConfig{
		BaseURL:    "https://mail.henley-auto.example",
		From:       "reports@henley-auto.example",
		HTTPClient: doer,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	ctx := context.Background()
	if _, err := client.Send(ctx, Message{Subject: "s", HTML: "<p>x</p>"}); err == nil {
		t.Fatal("expected error for missing recipients")
	}
	if _, err := client.Send(ctx, Message{To: []string{"  "}, Subject: "s", HTML: "<p>x</p>"}); err == nil {
		t.Fatal("expected error for blank recipients")
	}
	if _, err := client.Send(ctx, Message{To: []string{"not-an-address"}, Subject: "s", HTML: "<p>x</p>"}); err == nil {
		t.Fatal("expected error for malformed recipient")
	}
	if _, err := client.Send(ctx, Message{To: []string{"gm@henley-auto.example"}, HTML: "<p>x</p>"}); err == nil {
		t.Fatal("expected error for missing subject")
	}
	if _, err := client.Send(ctx, Message{To: []string{"gm@henley-auto.example"}, Subject: "s"}); err == nil {
		t.Fatal("expected error for missing body")
	}

	if requests != 0 {
		t.Fatalf("expected no relay requests for invalid messages, got %d", requests)
	}
}

func TestHTTPClient_SendReportsUpstreamFailure(t *testing.T) {
	t.Parallel()

	doer := fakeDoer{fn: func(r *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusServiceUnavailable,
			Body:       io.NopCloser(strings.NewReader("relay offline for maintenance")),
			Header:     make(http.Header),
		}, nil
	}}

	client, err := NewClient(ClientConfig{
		BaseURL:    "https://mail.henley-auto.example",
		From:       "reports@henley-auto.example",
		HTTPClient: doer,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}

	_, err = client.Send(context.Background(), Message{
		To:      []string{"gm@henley-auto.example"},
		Subject: "subject",
		HTML:    "<p>body</p>",
	})
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if !strings.Contains(err.Error(), "status 503") {
		t.Fatalf("expected status in error, got %v", err)
	}
	if !strings.Contains(err.Error(), "relay offline") {
		t.Fatalf("expected response excerpt in error, got %v", err)
	}
}

func TestNewClient_ValidatesConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(ClientConfig{From: "reports@henley-auto.example"}); err == nil {
		t.Fatal("expected error for missing base URL")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "not a url", From: "reports@henley-auto.example"}); err == nil {
		t.Fatal("expected error for invalid base URL")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "https://mail.henley-auto.example"}); err == nil {
		t.Fatal("expected error for missing sender")
	}
	if _, err := NewClient(ClientConfig{BaseURL: "https://mail.henley-auto.example", From: "not-an-address"}); err == nil {
		t.Fatal("expected error for invalid sender")
	}

	client, err := NewClient(ClientConfig{
		BaseURL: "https://mail.henley-auto.example/",
		From:    "Dealer Reports <reports@henley-auto.example>",
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	if client.baseURL != "https://mail.henley-auto.example" {
		t.Fatalf("expected trimmed base URL, got %q", client.baseURL)
	}
}

type fakeDoer struct {
	fn func(*http.Request) (*http.Response, error)
}

func (f fakeDoer) Do(req *http.Request) (*http.Response, error) {
	return f.fn(req)
}

func jsonResponse(status int, payload any) *http.Response {
	body, _ := json.Marshal(payload)
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(string(body))),
		Header:     make(http.Header),
	}
}
