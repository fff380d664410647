package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

type PortfolioItem struct {
	ID          string    `json:"id"`
	UserID      string    `json:"-"`
	CompanyName string    `json:"company_name"`
	Ticker      string    `json:"ticker"`
	ItemDate    string    `json:"date"`
	CreatedAt   time.Time `json:"created_at"`
}

// UpsertPortfolioItem inserts a portfolio item unless the user already
// tracks the company on the given date, in which case the existing row
// is reused. The second return reports whether a new row was created.
func (s *Store) UpsertPortfolioItem(ctx context.Context, userID, companyName, ticker, itemDate string) (PortfolioItem, bool, error) {
	var existing PortfolioItem

	query := `
		SELECT id, user_id, company_name, ticker, to_char(item_date, 'YYYY-MM-DD'), created_at
		FROM portfolio_items
		WHERE user_id = $1 AND company_name = $2 AND item_date = $3
	`

	err := s.conn.QueryRowContext(ctx, query, userID, companyName, itemDate).Scan(
		&existing.ID,
		&existing.UserID,
		&existing.CompanyName,
		&existing.Ticker,
		&existing.ItemDate,
		&existing.CreatedAt,
	)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return PortfolioItem{}, false, err
	}

	item := PortfolioItem{
		ID:          uuid.New().String(),
		UserID:      userID,
		CompanyName: companyName,
		Ticker:      ticker,
		ItemDate:    itemDate,
	}

	insert := `
		INSERT INTO portfolio_items (id, user_id, company_name, ticker, item_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	if err := s.conn.QueryRowContext(ctx, insert, item.ID, item.UserID, item.CompanyName, item.Ticker, item.ItemDate).Scan(&item.CreatedAt); err != nil {
		return PortfolioItem{}, false, err
	}

	return item, true, nil
}

func (s *Store) PortfolioItems(ctx context.Context, userID string) ([]PortfolioItem, error) {
	query := `
		SELECT id, user_id, company_name, ticker, to_char(item_date, 'YYYY-MM-DD'), created_at
		FROM portfolio_items
		WHERE user_id = $1
		ORDER BY item_date DESC, created_at DESC
	`

	rows, err := s.conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []PortfolioItem{}

	for rows.Next() {
		var item PortfolioItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.CompanyName, &item.Ticker, &item.ItemDate, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, rows.Err()
}
