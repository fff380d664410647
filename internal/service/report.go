package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sagealpha/backend/blob"
	"github.com/sagealpha/backend/email"
	"github.com/sagealpha/backend/generator"
	"github.com/sagealpha/backend/internal/storage"
	"github.com/sagealpha/backend/pdf"
	"github.com/sagealpha/backend/rag"
	"github.com/sagealpha/backend/report"
)

// Rendered reports above this size are treated as corrupt output.
const maxReportSize = 1536 * 1024

const reportTopK = 3

var (
	ErrReportNotFound = errors.New("report not found")
	ErrReportTooLarge = errors.New("report exceeds maximum size")
	ErrNoReports      = errors.New("no reports selected")
	ErrNoSubscribers  = errors.New("no active subscribers")
	ErrEmailDisabled  = errors.New("email sending is not configured")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ReportStore is the slice of the relational layer the report service needs.
type ReportStore interface {
	CreateReport(ctx context.Context, id, userID, portfolioItemID, title, reportKey, reportType, reportDate string) (storage.Report, error)
	ReportByID(ctx context.Context, userID, reportID string) (storage.Report, error)
	Reports(ctx context.Context, userID string) ([]storage.Report, error)
	ApproveReport(ctx context.Context, userID, reportID string) error
	DeleteReport(ctx context.Context, userID, reportID string) error
	UpsertPortfolioItem(ctx context.Context, userID, companyName, ticker, itemDate string) (storage.PortfolioItem, bool, error)
	AddMessage(ctx context.Context, userID, sessionID, role, content string) error
	Subscribers(ctx context.Context, userID string) ([]storage.Subscriber, error)
	SubscriberByEmail(ctx context.Context, userID, email string) (storage.Subscriber, error)
	RecordDelivery(ctx context.Context, userID, subscriberID, reportID string) error
}

type ReportService struct {
	store       ReportStore
	pipeline    *rag.Pipeline
	synthesizer *report.Synthesizer
	blobs       blob.Store
	converter   pdf.Converter
	sender      email.Sender
	baseURL     string
}

func NewReportService(
	store ReportStore,
	pipeline *rag.Pipeline,
	synthesizer *report.Synthesizer,
	blobs blob.Store,
	converter pdf.Converter,
	sender email.Sender,
	baseURL string,
) *ReportService {
	return &ReportService{
		store:       store,
		pipeline:    pipeline,
		synthesizer: synthesizer,
		blobs:       blobs,
		converter:   converter,
		sender:      sender,
		baseURL:     baseURL,
	}
}

type CreatedReport struct {
	Report      storage.Report `json:"report"`
	Message     string         `json:"message"`
	DownloadURL string         `json:"download_url"`
	Sources     []rag.Source   `json:"sources"`
}

// Create retrieves indexed research for the company, synthesizes the
// branded HTML report, stores it, and records the result both as a
// report row and as a pair of chat messages in the session.
func (s *ReportService) Create(ctx context.Context, userID, sessionID, companyName, reportType string) (CreatedReport, error) {
	query := fmt.Sprintf("equity research analysis for %s: financials, valuation, risks, outlook", companyName)

	result, err := s.pipeline.Retrieve(ctx, query, reportTopK)
	if err != nil {
		return CreatedReport{}, fmt.Errorf("failed to retrieve context: %w", err)
	}

	prompt := fmt.Sprintf("Generate a full equity research report for %s.", companyName)

	html, err := s.synthesizer.Synthesize(ctx, companyName, prompt, result.Context)
	if err != nil {
		return CreatedReport{}, fmt.Errorf("failed to synthesize report: %w", err)
	}

	if len(html) > maxReportSize {
		return CreatedReport{}, ErrReportTooLarge
	}

	reportID := uuid.New().String()

	key, err := s.blobs.Upload(ctx, reportID, html)
	if err != nil {
		return CreatedReport{}, fmt.Errorf("failed to store report: %w", err)
	}

	if reportType == "" {
		reportType = "general"
	}

	today := time.Now().Format("2006-01-02")

	title := fmt.Sprintf("%s Equity Research Report", companyName)

	item, _, err := s.store.UpsertPortfolioItem(ctx, userID, companyName, "", today)
	if err != nil {
		slog.WarnContext(ctx, "failed to upsert portfolio item", "company", companyName, "error", err)
	}

	row, err := s.store.CreateReport(ctx, reportID, userID, item.ID, title, key, reportType, today)
	if err != nil {
		return CreatedReport{}, fmt.Errorf("failed to record report: %w", err)
	}

	downloadURL := fmt.Sprintf("%s/reports/download/%s", strings.TrimRight(s.baseURL, "/"), row.ID)

	message := fmt.Sprintf(
		"✅ Your research report for **%s** is ready! You can [download it here](%s) or preview it from the Reports page.",
		companyName,
		downloadURL,
	)

	if sessionID != "" {
		if err := s.store.AddMessage(ctx, userID, sessionID, generator.RoleUser, fmt.Sprintf("Create a research report for %s", companyName)); err != nil {
			slog.WarnContext(ctx, "failed to save report request message", "session_id", sessionID, "error", err)
		}
		if err := s.store.AddMessage(ctx, userID, sessionID, generator.RoleAssistant, message); err != nil {
			slog.WarnContext(ctx, "failed to save report ready message", "session_id", sessionID, "error", err)
		}
	}

	slog.InfoContext(ctx, "report created", "report_id", row.ID, "company", companyName, "sources", len(result.Sources))

	return CreatedReport{
		Report:      row,
		Message:     message,
		DownloadURL: downloadURL,
		Sources:     result.Sources,
	}, nil
}

func (s *ReportService) List(ctx context.Context, userID string) ([]storage.Report, error) {
	return s.store.Reports(ctx, userID)
}

func (s *ReportService) Approve(ctx context.Context, userID, reportID string) error {
	err := s.store.ApproveReport(ctx, userID, reportID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrReportNotFound
	}
	return err
}

// Delete removes the stored HTML first, then the row. A missing blob is
// not fatal: the row is the source of truth.
func (s *ReportService) Delete(ctx context.Context, userID, reportID string) error {
	row, err := s.store.ReportByID(ctx, userID, reportID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrReportNotFound
	}
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, row.ID); err != nil && !errors.Is(err, blob.ErrNotFound) {
		slog.WarnContext(ctx, "failed to delete report blob", "report_id", row.ID, "error", err)
	}

	err = s.store.DeleteReport(ctx, userID, reportID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrReportNotFound
	}
	return err
}

// HTML returns the stored report document.
func (s *ReportService) HTML(ctx context.Context, userID, reportID string) (string, error) {
	row, err := s.store.ReportByID(ctx, userID, reportID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", ErrReportNotFound
	}
	if err != nil {
		return "", err
	}

	html, err := s.blobs.Get(ctx, row.ID)
	if errors.Is(err, blob.ErrNotFound) {
		return "", ErrReportNotFound
	}
	if err != nil {
		return "", err
	}

	if len(html) > maxReportSize {
		return "", ErrReportTooLarge
	}

	return html, nil
}

// EditBody returns just the body markup of the stored document, for
// in-place editing in the client.
func (s *ReportService) EditBody(ctx context.Context, userID, reportID string) (string, error) {
	html, err := s.HTML(ctx, userID, reportID)
	if err != nil {
		return "", err
	}

	return extractBody(html), nil
}

// UpdateBody re-wraps edited body content with the stored document's
// doctype, html attributes, and head, then re-uploads the result so the
// original styling survives the edit.
func (s *ReportService) UpdateBody(ctx context.Context, userID, reportID, body string) error {
	row, err := s.store.ReportByID(ctx, userID, reportID)
	if errors.Is(err, storage.ErrNotFound) {
		return ErrReportNotFound
	}
	if err != nil {
		return err
	}

	original, err := s.blobs.Get(ctx, row.ID)
	if errors.Is(err, blob.ErrNotFound) {
		return ErrReportNotFound
	}
	if err != nil {
		return err
	}

	full := rewrapBody(original, body)
	if len(full) > maxReportSize {
		return ErrReportTooLarge
	}

	if _, err := s.blobs.Upload(ctx, row.ID, full); err != nil {
		return fmt.Errorf("failed to store edited report: %w", err)
	}

	slog.InfoContext(ctx, "report edited", "report_id", row.ID)

	return nil
}

// PDF converts the stored report to a PDF for download.
func (s *ReportService) PDF(ctx context.Context, userID, reportID string) (string, []byte, error) {
	row, err := s.store.ReportByID(ctx, userID, reportID)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil, ErrReportNotFound
	}
	if err != nil {
		return "", nil, err
	}

	html, err := s.HTML(ctx, userID, reportID)
	if err != nil {
		return "", nil, err
	}

	data, err := s.converter.Convert(ctx, html)
	if err != nil {
		return "", nil, fmt.Errorf("failed to convert report to pdf: %w", err)
	}

	filename := fmt.Sprintf("%s.pdf", sanitizeFilename(row.Title))

	return filename, data, nil
}

type SendResult struct {
	Sent   int      `json:"sent"`
	Failed []string `json:"failed,omitempty"`
}

// Send emails the selected reports as PDF attachments to the selected
// recipients. An empty recipient list falls back to every active
// subscriber. Per-recipient and per-report failures accumulate without
// aborting the remaining sends.
func (s *ReportService) Send(ctx context.Context, userID string, reportIDs, subscriberEmails []string) (SendResult, error) {
	if !s.sender.Configured() {
		return SendResult{}, ErrEmailDisabled
	}
	if len(reportIDs) == 0 {
		return SendResult{}, ErrNoReports
	}

	result := SendResult{}

	var subs []storage.Subscriber

	if len(subscriberEmails) == 0 {
		all, err := s.store.Subscribers(ctx, userID)
		if err != nil {
			return SendResult{}, fmt.Errorf("failed to list subscribers: %w", err)
		}
		if len(all) == 0 {
			return SendResult{}, ErrNoSubscribers
		}
		subs = all
	} else {
		for _, addr := range subscriberEmails {
			if !emailPattern.MatchString(addr) {
				result.Failed = append(result.Failed, fmt.Sprintf("%s: invalid email", addr))
				continue
			}

			sub, err := s.store.SubscriberByEmail(ctx, userID, addr)
			if errors.Is(err, storage.ErrNotFound) {
				result.Failed = append(result.Failed, fmt.Sprintf("%s: subscriber not found or inactive", addr))
				continue
			}
			if err != nil {
				return SendResult{}, fmt.Errorf("failed to look up subscriber: %w", err)
			}

			subs = append(subs, sub)
		}
	}

	type prepared struct {
		row      storage.Report
		filename string
		data     []byte
	}

	var reports []prepared

	for _, id := range reportIDs {
		row, err := s.store.ReportByID(ctx, userID, id)
		if errors.Is(err, storage.ErrNotFound) {
			result.Failed = append(result.Failed, fmt.Sprintf("report %s: not found", id))
			continue
		}
		if err != nil {
			return SendResult{}, err
		}

		filename, data, err := s.PDF(ctx, userID, id)
		if err != nil {
			result.Failed = append(result.Failed, fmt.Sprintf("report %s: %v", id, err))
			continue
		}

		reports = append(reports, prepared{row: row, filename: filename, data: data})
	}

	for _, sub := range subs {
		if !emailPattern.MatchString(sub.Email) {
			result.Failed = append(result.Failed, fmt.Sprintf("%s: invalid email", sub.Name))
			continue
		}

		for _, r := range reports {
			msg := email.Message{
				To:      sub.Email,
				Subject: r.row.Title,
				HTML: fmt.Sprintf(
					"<p>Hi %s,</p><p>Please find attached the latest research report: <strong>%s</strong>.</p><p>Regards,<br>SageAlpha Research Team</p>",
					sub.Name,
					r.row.Title,
				),
				Attachments: []email.Attachment{{Filename: r.filename, Content: r.data}},
			}

			if err := s.sender.Send(ctx, msg); err != nil {
				slog.WarnContext(ctx, "failed to send report", "subscriber_id", sub.ID, "report_id", r.row.ID, "error", err)
				result.Failed = append(result.Failed, fmt.Sprintf("%s: %v", sub.Name, err))
				continue
			}

			if err := s.store.RecordDelivery(ctx, userID, sub.ID, r.row.ID); err != nil {
				slog.WarnContext(ctx, "failed to record delivery", "subscriber_id", sub.ID, "report_id", r.row.ID, "error", err)
			}

			result.Sent++
		}
	}

	return result, nil
}

var (
	filenamePattern = regexp.MustCompile(`[^\w\- ]`)
	doctypePattern  = regexp.MustCompile(`(?i)<!DOCTYPE[^>]*>`)
	htmlTagPattern  = regexp.MustCompile(`(?is)<html\s+([^>]*)>`)
	headPattern     = regexp.MustCompile(`(?is)<head[^>]*>(.*?)</head>`)
	bodyPattern     = regexp.MustCompile(`(?is)<body[^>]*>(.*?)</body>`)
)

func sanitizeFilename(title string) string {
	name := filenamePattern.ReplaceAllString(title, "")
	name = strings.TrimSpace(name)
	if name == "" {
		return "report"
	}
	return strings.ReplaceAll(name, " ", "_")
}

// extractBody returns the markup between the body tags, or the whole
// document when no body element is found.
func extractBody(doc string) string {
	if m := bodyPattern.FindStringSubmatch(doc); m != nil {
		return m[1]
	}
	return doc
}

// rewrapBody rebuilds a full document around the edited body, carrying
// over the original's doctype, html attributes, and head.
func rewrapBody(original, body string) string {
	doctype := "<!DOCTYPE html>"
	if m := doctypePattern.FindString(original); m != "" {
		doctype = m
	}

	attrs := `lang="en"`
	if m := htmlTagPattern.FindStringSubmatch(original); m != nil && strings.TrimSpace(m[1]) != "" {
		attrs = m[1]
	}

	head := `<meta charset="UTF-8">`
	if m := headPattern.FindStringSubmatch(original); m != nil {
		head = m[1]
	}

	return fmt.Sprintf("%s\n<html %s>\n<head>\n%s\n</head>\n<body>\n%s\n</body>\n</html>", doctype, attrs, head, body)
}
