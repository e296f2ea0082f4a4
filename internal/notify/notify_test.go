package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"docwatch/internal/detect"
	"docwatch/internal/errors"
	"docwatch/internal/logging"
)

func quietLogger() *logging.Logger {
	return logging.NewLogger(logging.Config{
		Format: logging.HumanFormat,
		Level:  logging.ErrorLevel,
	})
}

func sampleReport() *Report {
	return &Report{
		FromRevision: "HEAD^",
		ToRevision:   "HEAD",
		Records: []detect.ChangeRecord{
			{
				Method:       detect.MethodPost,
				Path:         "/api/customers/{customer_id}/preferences",
				FunctionName: "create_customer_preferences",
				FilePath:     "services/customer-service/main.py",
				ChangeType:   detect.ChangeNew,
			},
			{
				Method:       detect.MethodGet,
				Path:         "/api/orders",
				FunctionName: "list_orders",
				FilePath:     "services/order-service/main.py",
				ChangeType:   detect.ChangeNew,
			},
		},
		APIReferences: []string{
			"## POST /api/customers/{customer_id}/preferences\n\ndocs draft one",
			"## GET /api/orders\n\ndocs draft two",
		},
		ChangelogEntries: []string{
			"### 2026-08-28\n- preferences entry",
			"### 2026-08-28\n- orders entry",
		},
		FilesChanged: 3,
		Additions:    42,
		Deletions:    5,
		GeneratedAt:  time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
}

func TestSubject(t *testing.T) {
	got := Subject(sampleReport())
	want := "API Documentation Update Required - 2 new endpoint(s)"
	if got != want {
		t.Errorf("Subject() = %q, want %q", got, want)
	}
}

func TestRenderEmailBody(t *testing.T) {
	body := RenderEmailBody(sampleReport())

	for _, want := range []string{
		"2 new API endpoint(s) detected between HEAD^ and HEAD",
		"1. POST /api/customers/{customer_id}/preferences",
		"   Function: create_customer_preferences",
		"2. GET /api/orders",
		"UPDATE #1: API REFERENCE DOCUMENTATION",
		"UPDATE #2: API REFERENCE DOCUMENTATION",
		"docs draft one",
		"docs draft two",
		"CHANGELOG UPDATE",
		"- preferences entry",
		"- orders entry",
		"DIFF SUMMARY: 3 file(s) changed, +42 -5",
		"NEXT STEPS:",
		"Time: 2026-08-28 12:00:00",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("email body missing %q", want)
		}
	}

	// Docs sections must come before the changelog block
	docsIdx := strings.Index(body, "UPDATE #1")
	changelogIdx := strings.Index(body, "CHANGELOG UPDATE")
	if docsIdx < 0 || changelogIdx < 0 || docsIdx > changelogIdx {
		t.Error("email sections out of order")
	}
}

func TestEmailNotifierSend(t *testing.T) {
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte

	n := NewEmailNotifier("smtp.gmail.com", 587, "bot@example.com", "app-pass", "team@example.com", quietLogger())
	n.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	if err := n.Send(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if gotAddr != "smtp.gmail.com:587" {
		t.Errorf("addr = %q", gotAddr)
	}
	if gotFrom != "bot@example.com" {
		t.Errorf("from = %q", gotFrom)
	}
	if len(gotTo) != 1 || gotTo[0] != "team@example.com" {
		t.Errorf("to = %v", gotTo)
	}

	msg := string(gotMsg)
	if !strings.Contains(msg, "Subject: API Documentation Update Required - 2 new endpoint(s)\r\n") {
		t.Error("message missing subject header")
	}
	if !strings.Contains(msg, "To: team@example.com\r\n") {
		t.Error("message missing To header")
	}
	if !strings.Contains(msg, "docs draft one") {
		t.Error("message missing body content")
	}
}

func TestEmailNotifierSkipsEmptyReport(t *testing.T) {
	n := NewEmailNotifier("smtp.gmail.com", 587, "bot@example.com", "app-pass", "team@example.com", quietLogger())
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Error("sendMail should not be called for an empty report")
		return nil
	}
	if err := n.Send(context.Background(), &Report{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
}

func TestEmailNotifierDeliveryFailure(t *testing.T) {
	n := NewEmailNotifier("smtp.gmail.com", 587, "bot@example.com", "app-pass", "team@example.com", quietLogger())
	n.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return context.DeadlineExceeded
	}
	err := n.Send(context.Background(), sampleReport())
	if errors.CodeOf(err) != errors.DeliveryFailed {
		t.Errorf("expected DeliveryFailed, got %v", err)
	}
}

func TestSlackNotifierSend(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("Content-Type = %q", r.Header.Get("Content-Type"))
		}
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		gotBody = body
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, quietLogger())
	if err := n.Send(context.Background(), sampleReport()); err != nil {
		t.Fatalf("Send: %v", err)
	}

	var payload struct {
		Attachments []struct {
			Color  string `json:"color"`
			Text   string `json:"text"`
			Footer string `json:"footer"`
		} `json:"attachments"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if len(payload.Attachments) != 1 {
		t.Fatalf("attachments = %d", len(payload.Attachments))
	}
	att := payload.Attachments[0]
	if att.Color != "good" || att.Footer != "docwatch" {
		t.Errorf("attachment = %+v", att)
	}
	if !strings.Contains(att.Text, "2 new API endpoint(s)") {
		t.Errorf("text = %q", att.Text)
	}
	if !strings.Contains(att.Text, "`POST /api/customers/{customer_id}/preferences` (create_customer_preferences)") {
		t.Errorf("text missing endpoint line: %q", att.Text)
	}
}

func TestSlackNotifierRejectedPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, quietLogger())
	err := n.Send(context.Background(), sampleReport())
	if errors.CodeOf(err) != errors.DeliveryFailed {
		t.Errorf("expected DeliveryFailed, got %v", err)
	}
}

func TestSlackNotifierSkipsEmptyReport(t *testing.T) {
	n := NewSlackNotifier("http://127.0.0.1:1", quietLogger())
	if err := n.Send(context.Background(), &Report{}); err != nil {
		t.Fatalf("Send: %v", err)
	}
}
