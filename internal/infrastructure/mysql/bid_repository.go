package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"auction-house/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

// ErrBidConflict is returned when a bid loses a race against a concurrently
// accepted bid on the same auction.
var ErrBidConflict = errors.New("bid conflicts with a concurrently accepted bid")

type MySQLBidRepository struct {
	db *sql.DB
}

func NewMySQLBidRepository(db *sql.DB) *MySQLBidRepository {
	return &MySQLBidRepository{db: db}
}

// Create appends the bid to the auction's sequence inside one transaction.
// The auction row is locked FOR UPDATE so reads of the last bid and the
// insert of the next one are serialized per auction; the UNIQUE
// (auction_id, seq) key backstops the lock. Status and monotonic-amount
// rules are re-checked under the lock because the caller validated against
// a possibly stale snapshot.
func (r *MySQLBidRepository) Create(ctx context.Context, bid *domain.Bid) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting bid transaction: %w", err)
	}
	defer tx.Rollback()

	var status string
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM auctions WHERE id = ? FOR UPDATE`,
		bid.AuctionID).Scan(&status)
	if err != nil {
		return fmt.Errorf("locking auction: %w", err)
	}
	if domain.AuctionStatus(status) != domain.AuctionStarted {
		return ErrBidConflict
	}

	var lastSeq, lastAmount int64
	err = tx.QueryRowContext(ctx,
		`SELECT seq, amount FROM bids WHERE auction_id = ? ORDER BY seq DESC LIMIT 1`,
		bid.AuctionID).Scan(&lastSeq, &lastAmount)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("reading last bid: %w", err)
	}
	if lastSeq > 0 && bid.Amount <= lastAmount {
		return ErrBidConflict
	}

	bid.Seq = lastSeq + 1
	_, err = tx.ExecContext(ctx,
		`INSERT INTO bids (id, auction_id, user_id, amount, seq, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		bid.ID, bid.AuctionID, bid.UserID, bid.Amount, bid.Seq, bid.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating bid: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing bid: %w", err)
	}
	return nil
}

func (r *MySQLBidRepository) Last(ctx context.Context, auctionID string) (*domain.Bid, error) {
	query := `
        SELECT id, auction_id, user_id, amount, seq, created_at
        FROM bids WHERE auction_id = ?
        ORDER BY seq DESC LIMIT 1
    `

	var bid domain.Bid
	err := r.db.QueryRowContext(ctx, query, auctionID).Scan(
		&bid.ID, &bid.AuctionID, &bid.UserID, &bid.Amount, &bid.Seq, &bid.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting last bid: %w", err)
	}
	return &bid, nil
}

func (r *MySQLBidRepository) ListByAuction(ctx context.Context, auctionID string) ([]*domain.Bid, error) {
	query := `
        SELECT id, auction_id, user_id, amount, seq, created_at
        FROM bids WHERE auction_id = ?
        ORDER BY seq ASC
    `

	rows, err := r.db.QueryContext(ctx, query, auctionID)
	if err != nil {
		return nil, fmt.Errorf("listing bids: %w", err)
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		var bid domain.Bid
		err := rows.Scan(&bid.ID, &bid.AuctionID, &bid.UserID,
			&bid.Amount, &bid.Seq, &bid.CreatedAt)
		if err != nil {
			return nil, err
		}
		bids = append(bids, &bid)
	}

	return bids, rows.Err()
}
