// Package beatmap resolves beatmap metadata by content hash.
package beatmap

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
)

// ErrNotFound is returned when no beatmap has the requested hash.
var ErrNotFound = errors.New("beatmap not found")

// Status is a beatmap's ranking state.
type Status int8

const (
	Graveyard Status = -2
	WIP       Status = -1
	Pending   Status = 0
	Ranked    Status = 1
	Approved  Status = 2
	Qualified Status = 3
	Loved     Status = 4
)

// Beatmap is one difficulty of a beatmap set.
type Beatmap struct {
	SetID   int32
	MapID   int32
	MD5     string
	Title   string
	Version string
	Artist  string
	Creator string
	Mode    mods.Mode
	Status  Status
	Stars   float64
}

// FullTitle renders "Artist - Title [Version]".
func (b Beatmap) FullTitle() string {
	return fmt.Sprintf("%s - %s [%s]", b.Artist, b.Title, b.Version)
}

// Resolver looks up beatmaps by MD5 hash.
type Resolver interface {
	ByMD5(ctx context.Context, md5 string) (Beatmap, error)
}

// None resolves nothing. It serves deployments without storage.
type None struct{}

// ByMD5 always returns ErrNotFound.
func (None) ByMD5(context.Context, string) (Beatmap, error) { return Beatmap{}, ErrNotFound }

// Cached memoizes hits from an underlying resolver for ttl. Misses and errors
// are never cached.
type Cached struct {
	source Resolver
	cache  *gocache.Cache
	logger *zap.Logger
}

// NewCached wraps source.
//
// Precondition: source and logger must be non-nil; ttl must be positive.
func NewCached(source Resolver, ttl time.Duration, logger *zap.Logger) *Cached {
	return &Cached{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
		logger: logger,
	}
}

// ByMD5 returns the cached beatmap or consults the source.
func (c *Cached) ByMD5(ctx context.Context, md5 string) (Beatmap, error) {
	if v, ok := c.cache.Get(md5); ok {
		return v.(Beatmap), nil
	}
	b, err := c.source.ByMD5(ctx, md5)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.Warn("resolving beatmap", zap.String("md5", md5), zap.Error(err))
		}
		return Beatmap{}, err
	}
	c.cache.SetDefault(md5, b)
	return b, nil
}

// Len returns the number of cached entries.
func (c *Cached) Len() int { return c.cache.ItemCount() }
