package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeenyuhs/Ragnarok/internal/game/channel"
)

// ChannelRepository loads the persistent chat channel catalogue.
type ChannelRepository struct {
	db *pgxpool.Pool
}

// NewChannelRepository creates a ChannelRepository backed by the given pool.
func NewChannelRepository(db *pgxpool.Pool) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// All returns every configured channel ordered by name.
func (r *ChannelRepository) All(ctx context.Context) ([]channel.Options, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, display_name, topic, public, staff, read_only, auto_join
		 FROM channels ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying channels: %w", err)
	}
	opts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (channel.Options, error) {
		var o channel.Options
		err := row.Scan(&o.Name, &o.DisplayName, &o.Topic, &o.Public, &o.Staff, &o.ReadOnly, &o.AutoJoin)
		return o, err
	})
	if err != nil {
		return nil, fmt.Errorf("scanning channels: %w", err)
	}
	return opts, nil
}

// Upsert inserts or replaces a channel row.
func (r *ChannelRepository) Upsert(ctx context.Context, o channel.Options) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO channels (name, display_name, topic, public, staff, read_only, auto_join)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
		   display_name = EXCLUDED.display_name, topic = EXCLUDED.topic,
		   public = EXCLUDED.public, staff = EXCLUDED.staff,
		   read_only = EXCLUDED.read_only, auto_join = EXCLUDED.auto_join`,
		o.Name, o.DisplayName, o.Topic, o.Public, o.Staff, o.ReadOnly, o.AutoJoin,
	)
	if err != nil {
		return fmt.Errorf("upserting channel %q: %w", o.Name, err)
	}
	return nil
}
