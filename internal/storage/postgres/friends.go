package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// FriendRepository stores one-directional friendships.
type FriendRepository struct {
	db *pgxpool.Pool
}

// NewFriendRepository creates a FriendRepository backed by the given pool.
func NewFriendRepository(db *pgxpool.Pool) *FriendRepository {
	return &FriendRepository{db: db}
}

// Friends returns the ids userID has added, ascending.
func (r *FriendRepository) Friends(ctx context.Context, userID int32) ([]int32, error) {
	rows, err := r.db.Query(ctx,
		`SELECT friend_id FROM friends WHERE user_id = $1 ORDER BY friend_id`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying friends: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int32])
	if err != nil {
		return nil, fmt.Errorf("scanning friends: %w", err)
	}
	return ids, nil
}

// Add records that userID befriended friendID. Adding twice is a no-op.
//
// Postcondition: Returns ErrUserNotFound when either id has no user row.
func (r *FriendRepository) Add(ctx context.Context, userID, friendID int32) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO friends (user_id, friend_id) VALUES ($1, $2)
		 ON CONFLICT DO NOTHING`,
		userID, friendID,
	)
	if err != nil {
		if isForeignKeyError(err) {
			return ErrUserNotFound
		}
		return fmt.Errorf("inserting friend: %w", err)
	}
	return nil
}

// Remove deletes the friendship if present.
func (r *FriendRepository) Remove(ctx context.Context, userID, friendID int32) error {
	if _, err := r.db.Exec(ctx,
		`DELETE FROM friends WHERE user_id = $1 AND friend_id = $2`,
		userID, friendID,
	); err != nil {
		return fmt.Errorf("deleting friend: %w", err)
	}
	return nil
}
