package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"auction-house/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLAuctionRepository struct {
	db *sql.DB
}

func NewMySQLAuctionRepository(db *sql.DB) *MySQLAuctionRepository {
	return &MySQLAuctionRepository{db: db}
}

func (r *MySQLAuctionRepository) Create(ctx context.Context, auction *domain.Auction) error {
	query := `
        INSERT INTO auctions (id, item_id, seller_id, winner_id, buy_it_now_price,
                              end_date, extendable, status, created_at, updated_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		auction.ID, auction.ItemID, auction.SellerID, nullable(auction.WinnerID),
		auction.BuyItNowPrice, auction.EndDate, auction.Extendable,
		string(auction.Status), auction.CreatedAt, auction.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating auction: %w", err)
	}
	return nil
}

func (r *MySQLAuctionRepository) GetByID(ctx context.Context, auctionID string) (*domain.Auction, error) {
	query := `
        SELECT a.id, a.item_id, a.seller_id, a.winner_id, a.buy_it_now_price,
               a.end_date, a.extendable, a.status, a.created_at, a.updated_at,
               i.id, i.name, i.description, i.created_at
        FROM auctions a
        JOIN items i ON i.id = a.item_id
        WHERE a.id = ?
    `

	var auction domain.Auction
	var item domain.Item
	var winnerID sql.NullString
	var status string

	err := r.db.QueryRowContext(ctx, query, auctionID).Scan(
		&auction.ID, &auction.ItemID, &auction.SellerID, &winnerID,
		&auction.BuyItNowPrice, &auction.EndDate, &auction.Extendable,
		&status, &auction.CreatedAt, &auction.UpdatedAt,
		&item.ID, &item.Name, &item.Description, &item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("getting auction: %w", err)
	}

	auction.WinnerID = winnerID.String
	auction.Status = domain.AuctionStatus(status)
	auction.Item = &item
	return &auction, nil
}

func (r *MySQLAuctionRepository) Delete(ctx context.Context, auctionID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM auctions WHERE id = ?`, auctionID)
	if err != nil {
		return fmt.Errorf("deleting auction: %w", err)
	}
	return nil
}

func (r *MySQLAuctionRepository) UpdateStatus(ctx context.Context, auction *domain.Auction, status domain.AuctionStatus) error {
	now := time.Now().UTC()
	query := `UPDATE auctions SET status = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, string(status), now, auction.ID); err != nil {
		return fmt.Errorf("updating auction status: %w", err)
	}
	auction.Status = status
	auction.UpdatedAt = now
	return nil
}

func (r *MySQLAuctionRepository) UpdateEndDate(ctx context.Context, auction *domain.Auction) error {
	now := time.Now().UTC()
	query := `UPDATE auctions SET end_date = ?, updated_at = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, auction.EndDate, now, auction.ID); err != nil {
		return fmt.Errorf("updating auction end date: %w", err)
	}
	auction.UpdatedAt = now
	return nil
}

func (r *MySQLAuctionRepository) Close(ctx context.Context, auction *domain.Auction) error {
	now := time.Now().UTC()
	query := `UPDATE auctions SET winner_id = ?, status = ?, updated_at = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, query,
		nullable(auction.WinnerID), string(domain.AuctionClosed), now, auction.ID)
	if err != nil {
		return fmt.Errorf("closing auction: %w", err)
	}
	auction.UpdatedAt = now
	return nil
}

func (r *MySQLAuctionRepository) ListExpired(ctx context.Context, before time.Time, afterID string, limit int) ([]*domain.Auction, error) {
	query := `
        SELECT id, item_id, seller_id, winner_id, buy_it_now_price,
               end_date, extendable, status, created_at, updated_at
        FROM auctions
        WHERE status = ? AND end_date < ? AND id > ?
        ORDER BY id ASC
        LIMIT ?
    `

	rows, err := r.db.QueryContext(ctx, query,
		string(domain.AuctionStarted), before, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("listing expired auctions: %w", err)
	}
	defer rows.Close()

	var auctions []*domain.Auction
	for rows.Next() {
		var auction domain.Auction
		var winnerID sql.NullString
		var status string

		err := rows.Scan(&auction.ID, &auction.ItemID, &auction.SellerID, &winnerID,
			&auction.BuyItNowPrice, &auction.EndDate, &auction.Extendable,
			&status, &auction.CreatedAt, &auction.UpdatedAt)
		if err != nil {
			return nil, err
		}

		auction.WinnerID = winnerID.String
		auction.Status = domain.AuctionStatus(status)
		auctions = append(auctions, &auction)
	}

	return auctions, rows.Err()
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
