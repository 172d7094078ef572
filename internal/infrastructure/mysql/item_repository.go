package mysql

import (
	"context"
	"database/sql"
	"fmt"

	"auction-house/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLItemRepository struct {
	db *sql.DB
}

func NewMySQLItemRepository(db *sql.DB) *MySQLItemRepository {
	return &MySQLItemRepository{db: db}
}

func (r *MySQLItemRepository) Create(ctx context.Context, item *domain.Item) error {
	query := `
        INSERT INTO items (id, name, description, created_at)
        VALUES (?, ?, ?, ?)
    `
	_, err := r.db.ExecContext(ctx, query,
		item.ID, item.Name, item.Description, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating item: %w", err)
	}
	return nil
}

func (r *MySQLItemRepository) Delete(ctx context.Context, itemID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}
