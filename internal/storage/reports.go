package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type Report struct {
	ID              string       `json:"id"`
	PortfolioItemID string       `json:"portfolio_item_id,omitempty"`
	UserID          string       `json:"-"`
	Title           string       `json:"title"`
	Status          string       `json:"status"`
	ReportKey       string       `json:"report_key"`
	ReportType      string       `json:"report_type"`
	ReportDate      string       `json:"report_date"`
	ApprovedAt      sql.NullTime `json:"-"`
	CreatedAt       time.Time    `json:"created_at"`
}

func (s *Store) CreateReport(ctx context.Context, id, userID, portfolioItemID, title, reportKey, reportType, reportDate string) (Report, error) {
	if id == "" {
		id = uuid.New().String()
	}

	r := Report{
		ID:              id,
		PortfolioItemID: portfolioItemID,
		UserID:          userID,
		Title:           title,
		Status:          "pending",
		ReportKey:       reportKey,
		ReportType:      reportType,
		ReportDate:      reportDate,
	}

	query := `
		INSERT INTO reports (id, portfolio_item_id, user_id, title, status, report_key, report_type, report_date)
		VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	if err := s.conn.QueryRowContext(ctx, query, r.ID, r.PortfolioItemID, r.UserID, r.Title, r.Status, r.ReportKey, r.ReportType, r.ReportDate).Scan(&r.CreatedAt); err != nil {
		return Report{}, err
	}

	return r, nil
}

func (s *Store) ReportByID(ctx context.Context, userID, reportID string) (Report, error) {
	return s.scanReport(s.conn.QueryRowContext(ctx, reportQuery+` WHERE id = $1 AND user_id = $2`, reportID, userID))
}

func (s *Store) Reports(ctx context.Context, userID string) ([]Report, error) {
	rows, err := s.conn.QueryContext(ctx, reportQuery+` WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := []Report{}

	for rows.Next() {
		var r Report
		var itemID sql.NullString
		if err := rows.Scan(&r.ID, &itemID, &r.UserID, &r.Title, &r.Status, &r.ReportKey, &r.ReportType, &r.ReportDate, &r.ApprovedAt, &r.CreatedAt); err != nil {
			return nil, err
		}
		r.PortfolioItemID = itemID.String
		reports = append(reports, r)
	}

	return reports, rows.Err()
}

func (s *Store) ApproveReport(ctx context.Context, userID, reportID string) error {
	res, err := s.conn.ExecContext(
		ctx,
		`UPDATE reports SET status = 'approved', approved_at = now() WHERE id = $1 AND user_id = $2`,
		reportID,
		userID,
	)
	if err != nil {
		return err
	}

	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *Store) DeleteReport(ctx context.Context, userID, reportID string) error {
	res, err := s.conn.ExecContext(
		ctx,
		`DELETE FROM reports WHERE id = $1 AND user_id = $2`,
		reportID,
		userID,
	)
	if err != nil {
		return err
	}

	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	return nil
}

const reportQuery = `
	SELECT id, portfolio_item_id, user_id, title, status, report_key, report_type, to_char(report_date, 'YYYY-MM-DD'), approved_at, created_at
	FROM reports
`

func (s *Store) scanReport(row *sql.Row) (Report, error) {
	var r Report
	var itemID sql.NullString

	err := row.Scan(&r.ID, &itemID, &r.UserID, &r.Title, &r.Status, &r.ReportKey, &r.ReportType, &r.ReportDate, &r.ApprovedAt, &r.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Report{}, ErrNotFound
	}
	if err != nil {
		return Report{}, err
	}

	r.PortfolioItemID = itemID.String

	return r, nil
}

type Delivery struct {
	SubscriberID string    `json:"subscriber_id"`
	ReportID     string    `json:"report_id"`
	ReportTitle  string    `json:"report_title"`
	SentAt       time.Time `json:"sent_at"`
}

func (s *Store) RecordDelivery(ctx context.Context, userID, subscriberID, reportID string) error {
	_, err := s.conn.ExecContext(
		ctx,
		`INSERT INTO report_deliveries (subscriber_id, report_id, user_id) VALUES ($1, $2, $3)`,
		subscriberID,
		reportID,
		userID,
	)
	return err
}

func (s *Store) Deliveries(ctx context.Context, userID, subscriberID string) ([]Delivery, error) {
	query := `
		SELECT d.subscriber_id, d.report_id, r.title, d.sent_at
		FROM report_deliveries d
		JOIN reports r ON r.id = d.report_id
		WHERE d.subscriber_id = $1 AND d.user_id = $2
		ORDER BY d.sent_at DESC
	`

	rows, err := s.conn.QueryContext(ctx, query, subscriberID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	deliveries := []Delivery{}

	for rows.Next() {
		var d Delivery
		if err := rows.Scan(&d.SubscriberID, &d.ReportID, &d.ReportTitle, &d.SentAt); err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}

	return deliveries, rows.Err()
}
