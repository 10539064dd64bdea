package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/swaploop/swaploop/internal/domain"
)

type SwapRepo struct {
	pool *pgxpool.Pool
}

func NewSwapRepo(pool *pgxpool.Pool) *SwapRepo {
	return &SwapRepo{pool: pool}
}

const swapColumns = `id, requester_id, owner_id, requester_listing_id, owner_listing_id, status, created_at, updated_at, completed_at`

func (r *SwapRepo) Create(ctx context.Context, swap *domain.Swap) error {
	query := `
		INSERT INTO swaps (id, requester_id, owner_id, requester_listing_id, owner_listing_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.pool.Exec(ctx, query,
		swap.ID, swap.RequesterID, swap.OwnerID, swap.RequesterListingID,
		swap.OwnerListingID, swap.Status, swap.CreatedAt, swap.UpdatedAt,
	)
	return err
}

func (r *SwapRepo) GetByID(ctx context.Context, id string) (*domain.Swap, error) {
	query := `SELECT ` + swapColumns + ` FROM swaps WHERE id = $1`
	swap, err := scanSwap(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return swap, err
}

func (r *SwapRepo) ListByUser(ctx context.Context, userID string) ([]domain.Swap, error) {
	query := `
		SELECT ` + swapColumns + `
		FROM swaps
		WHERE requester_id = $1 OR owner_id = $1
		ORDER BY created_at DESC`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	swaps := []domain.Swap{}
	for rows.Next() {
		swap, err := scanSwap(rows)
		if err != nil {
			return nil, err
		}
		swaps = append(swaps, *swap)
	}
	return swaps, rows.Err()
}

func (r *SwapRepo) UpdateStatus(ctx context.Context, swap *domain.Swap) error {
	query := `
		UPDATE swaps SET status = $2, updated_at = $3, completed_at = $4
		WHERE id = $1`
	_, err := r.pool.Exec(ctx, query, swap.ID, swap.Status, swap.UpdatedAt, swap.CompletedAt)
	return err
}

func (r *SwapRepo) Delete(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM swaps WHERE id = $1`, id)
	return err
}

func scanSwap(row rowScanner) (*domain.Swap, error) {
	var swap domain.Swap
	err := row.Scan(
		&swap.ID, &swap.RequesterID, &swap.OwnerID, &swap.RequesterListingID,
		&swap.OwnerListingID, &swap.Status, &swap.CreatedAt, &swap.UpdatedAt,
		&swap.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &swap, nil
}
