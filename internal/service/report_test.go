package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/sagealpha/backend/blob"
	"github.com/sagealpha/backend/email"
	"github.com/sagealpha/backend/internal/storage"
)

type stubReportStore struct {
	reports     map[string]storage.Report
	subscribers []storage.Subscriber
	deliveries  [][2]string
}

func (s *stubReportStore) CreateReport(ctx context.Context, id, userID, portfolioItemID, title, reportKey, reportType, reportDate string) (storage.Report, error) {
	return storage.Report{ID: id, UserID: userID, Title: title}, nil
}

func (s *stubReportStore) ReportByID(ctx context.Context, userID, reportID string) (storage.Report, error) {
	row, ok := s.reports[reportID]
	if !ok {
		return storage.Report{}, storage.ErrNotFound
	}
	return row, nil
}

func (s *stubReportStore) Reports(ctx context.Context, userID string) ([]storage.Report, error) {
	return nil, nil
}

func (s *stubReportStore) ApproveReport(ctx context.Context, userID, reportID string) error {
	return nil
}

func (s *stubReportStore) DeleteReport(ctx context.Context, userID, reportID string) error {
	return nil
}

func (s *stubReportStore) UpsertPortfolioItem(ctx context.Context, userID, companyName, ticker, itemDate string) (storage.PortfolioItem, bool, error) {
	return storage.PortfolioItem{}, false, nil
}

func (s *stubReportStore) AddMessage(ctx context.Context, userID, sessionID, role, content string) error {
	return nil
}

func (s *stubReportStore) Subscribers(ctx context.Context, userID string) ([]storage.Subscriber, error) {
	return s.subscribers, nil
}

func (s *stubReportStore) SubscriberByEmail(ctx context.Context, userID, addr string) (storage.Subscriber, error) {
	for _, sub := range s.subscribers {
		if strings.EqualFold(sub.Email, strings.TrimSpace(addr)) && sub.IsActive {
			return sub, nil
		}
	}
	return storage.Subscriber{}, storage.ErrNotFound
}

func (s *stubReportStore) RecordDelivery(ctx context.Context, userID, subscriberID, reportID string) error {
	s.deliveries = append(s.deliveries, [2]string{subscriberID, reportID})
	return nil
}

type stubBlobStore struct {
	docs map[string]string
}

func (s *stubBlobStore) Upload(ctx context.Context, id, html string) (string, error) {
	s.docs[id] = html
	return id + ".html", nil
}

func (s *stubBlobStore) Get(ctx context.Context, id string) (string, error) {
	doc, ok := s.docs[id]
	if !ok {
		return "", blob.ErrNotFound
	}
	return doc, nil
}

func (s *stubBlobStore) Delete(ctx context.Context, id string) error {
	delete(s.docs, id)
	return nil
}

type stubConverter struct{}

func (stubConverter) Convert(ctx context.Context, html string) ([]byte, error) {
	return []byte("%PDF-1.4 stub"), nil
}

type stubSender struct {
	configured bool
	sent       []email.Message
}

func (s *stubSender) Send(ctx context.Context, msg email.Message) error {
	s.sent = append(s.sent, msg)
	return nil
}

func (s *stubSender) Configured() bool { return s.configured }

func sendFixture() (*ReportService, *stubReportStore, *stubSender) {
	store := &stubReportStore{
		reports: map[string]storage.Report{
			"r1": {ID: "r1", UserID: "u1", Title: "Acme Corp Equity Research Report"},
			"r2": {ID: "r2", UserID: "u1", Title: "Globex Equity Research Report"},
		},
		subscribers: []storage.Subscriber{
			{ID: "s1", Name: "Asha", Email: "asha@example.com", IsActive: true},
			{ID: "s2", Name: "Ben", Email: "ben@example.com", IsActive: true},
		},
	}
	blobs := &stubBlobStore{docs: map[string]string{
		"r1": "<html><body>one</body></html>",
		"r2": "<html><body>two</body></html>",
	}}
	sender := &stubSender{configured: true}
	svc := NewReportService(store, nil, nil, blobs, stubConverter{}, sender, "http://localhost:8080")
	return svc, store, sender
}

func TestSendTargetsNamedSubscribers(t *testing.T) {
	svc, store, sender := sendFixture()

	result, err := svc.Send(context.Background(), "u1", []string{"r1"}, []string{"Asha@Example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("sent = %d, want 1", result.Sent)
	}
	if len(result.Failed) != 0 {
		t.Fatalf("failed = %v, want none", result.Failed)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "asha@example.com" {
		t.Fatalf("messages = %+v, want one to asha@example.com", sender.sent)
	}
	if len(store.deliveries) != 1 || store.deliveries[0] != [2]string{"s1", "r1"} {
		t.Fatalf("deliveries = %v, want [[s1 r1]]", store.deliveries)
	}
}

func TestSendFallsBackToAllActiveSubscribers(t *testing.T) {
	svc, _, sender := sendFixture()

	result, err := svc.Send(context.Background(), "u1", []string{"r1", "r2"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sent != 4 {
		t.Fatalf("sent = %d, want 4", result.Sent)
	}
	if len(sender.sent) != 4 {
		t.Fatalf("messages = %d, want 4", len(sender.sent))
	}
}

func TestSendAccumulatesRecipientFailures(t *testing.T) {
	svc, _, sender := sendFixture()

	result, err := svc.Send(context.Background(), "u1", []string{"r1"}, []string{"not-an-email", "ghost@example.com", "ben@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("sent = %d, want 1", result.Sent)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("failed = %v, want 2 entries", result.Failed)
	}
	if len(sender.sent) != 1 || sender.sent[0].To != "ben@example.com" {
		t.Fatalf("messages = %+v, want one to ben@example.com", sender.sent)
	}
}

func TestSendAccumulatesMissingReports(t *testing.T) {
	svc, _, _ := sendFixture()

	result, err := svc.Send(context.Background(), "u1", []string{"r1", "missing"}, []string{"asha@example.com"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Sent != 1 {
		t.Fatalf("sent = %d, want 1", result.Sent)
	}
	if len(result.Failed) != 1 || !strings.Contains(result.Failed[0], "missing") {
		t.Fatalf("failed = %v, want one entry for the missing report", result.Failed)
	}
}

func TestSendRequiresReportsAndConfiguredSender(t *testing.T) {
	svc, _, sender := sendFixture()

	if _, err := svc.Send(context.Background(), "u1", nil, nil); !errors.Is(err, ErrNoReports) {
		t.Fatalf("error = %v, want ErrNoReports", err)
	}

	sender.configured = false
	if _, err := svc.Send(context.Background(), "u1", []string{"r1"}, nil); !errors.Is(err, ErrEmailDisabled) {
		t.Fatalf("error = %v, want ErrEmailDisabled", err)
	}
}

func TestExtractBody(t *testing.T) {
	doc := "<!DOCTYPE html>\n<html lang=\"en\">\n<head><style>p{color:red}</style></head>\n<body class=\"report\"><p>Hello</p></body>\n</html>"

	if got := extractBody(doc); got != "<p>Hello</p>" {
		t.Errorf("extractBody = %q, want %q", got, "<p>Hello</p>")
	}

	fragment := "<p>no body element</p>"
	if got := extractBody(fragment); got != fragment {
		t.Errorf("extractBody on fragment = %q, want input unchanged", got)
	}
}

func TestRewrapBodyPreservesDocumentShell(t *testing.T) {
	original := "<!DOCTYPE html>\n<html lang=\"en\" data-theme=\"dark\">\n<head><style>p{color:red}</style></head>\n<body><p>old</p></body>\n</html>"

	got := rewrapBody(original, "<p>new</p>")

	for _, want := range []string{
		"<!DOCTYPE html>",
		`lang="en" data-theme="dark"`,
		"<style>p{color:red}</style>",
		"<p>new</p>",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("rewrapped document missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "<p>old</p>") {
		t.Errorf("rewrapped document still contains the old body:\n%s", got)
	}
}

func TestRewrapBodyDefaults(t *testing.T) {
	got := rewrapBody("<p>bare fragment</p>", "<p>edited</p>")

	for _, want := range []string{"<!DOCTYPE html>", `lang="en"`, `<meta charset="UTF-8">`, "<p>edited</p>"} {
		if !strings.Contains(got, want) {
			t.Errorf("rewrapped document missing default %q:\n%s", want, got)
		}
	}
}

func TestUpdateBodyRoundTrip(t *testing.T) {
	svc, _, _ := sendFixture()

	if err := svc.UpdateBody(context.Background(), "u1", "r1", "<p>revised</p>"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	body, err := svc.EditBody(context.Background(), "u1", "r1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(body) != "<p>revised</p>" {
		t.Errorf("body = %q, want %q", body, "<p>revised</p>")
	}

	if err := svc.UpdateBody(context.Background(), "u1", "missing", "<p>x</p>"); !errors.Is(err, ErrReportNotFound) {
		t.Errorf("error = %v, want ErrReportNotFound", err)
	}
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Corp Equity Research Report", "Acme_Corp_Equity_Research_Report"},
		{"Tata Motors (TTM) — Q4!", "Tata_Motors_TTM__Q4"},
		{"///", "report"},
		{"", "report"},
	}

	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestEmailPattern(t *testing.T) {
	valid := []string{"a@b.co", "analyst@sagealpha.ai", "first.last@example.com"}
	invalid := []string{"", "no-at-sign", "a@b", "a b@c.com", "@missing.local"}

	for _, e := range valid {
		if !emailPattern.MatchString(e) {
			t.Errorf("%q should be accepted", e)
		}
	}
	for _, e := range invalid {
		if emailPattern.MatchString(e) {
			t.Errorf("%q should be rejected", e)
		}
	}
}
