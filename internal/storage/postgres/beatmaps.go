package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeenyuhs/Ragnarok/internal/beatmap"
	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
)

// BeatmapRepository stores beatmap metadata keyed by file hash. It
// satisfies beatmap.Resolver.
type BeatmapRepository struct {
	db *pgxpool.Pool
}

// NewBeatmapRepository creates a BeatmapRepository backed by the given pool.
func NewBeatmapRepository(db *pgxpool.Pool) *BeatmapRepository {
	return &BeatmapRepository{db: db}
}

// ByMD5 loads the beatmap with the given hash.
//
// Postcondition: Returns beatmap.ErrNotFound when no row matched.
func (r *BeatmapRepository) ByMD5(ctx context.Context, md5 string) (beatmap.Beatmap, error) {
	var (
		b            beatmap.Beatmap
		mode, status int16
	)
	err := r.db.QueryRow(ctx,
		`SELECT set_id, map_id, md5, title, version, artist, creator, mode, status, stars
		 FROM beatmaps WHERE md5 = $1`, md5,
	).Scan(&b.SetID, &b.MapID, &b.MD5, &b.Title, &b.Version, &b.Artist, &b.Creator, &mode, &status, &b.Stars)
	if err != nil {
		if noRows(err) {
			return beatmap.Beatmap{}, beatmap.ErrNotFound
		}
		return beatmap.Beatmap{}, fmt.Errorf("querying beatmap: %w", err)
	}
	b.Mode = mods.Mode(mode)
	b.Status = beatmap.Status(status)
	return b, nil
}

// Upsert inserts or replaces a beatmap row.
func (r *BeatmapRepository) Upsert(ctx context.Context, b beatmap.Beatmap) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO beatmaps (md5, map_id, set_id, title, version, artist, creator, mode, status, stars)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		 ON CONFLICT (md5) DO UPDATE SET
		   map_id = EXCLUDED.map_id, set_id = EXCLUDED.set_id, title = EXCLUDED.title,
		   version = EXCLUDED.version, artist = EXCLUDED.artist, creator = EXCLUDED.creator,
		   mode = EXCLUDED.mode, status = EXCLUDED.status, stars = EXCLUDED.stars`,
		b.MD5, b.MapID, b.SetID, b.Title, b.Version, b.Artist, b.Creator, int16(b.Mode), int16(b.Status), b.Stars,
	)
	if err != nil {
		return fmt.Errorf("upserting beatmap %s: %w", b.MD5, err)
	}
	return nil
}
