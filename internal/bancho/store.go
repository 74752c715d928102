package bancho

import (
	"context"

	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
	"github.com/jeenyuhs/Ragnarok/internal/storage/postgres"
)

// Users looks up accounts and their statistics. Satisfied by
// *postgres.UserRepository.
type Users interface {
	ByName(ctx context.Context, name string) (postgres.User, error)
	Stats(ctx context.Context, id int32, mode mods.Mode) (session.Stats, error)
}

// Friends persists friend lists. Satisfied by *postgres.FriendRepository.
type Friends interface {
	Friends(ctx context.Context, userID int32) ([]int32, error)
	Add(ctx context.Context, userID, friendID int32) error
	Remove(ctx context.Context, userID, friendID int32) error
}

// Verifier checks a client password digest against a stored hash.
// Satisfied by *postgres.Verifier.
type Verifier interface {
	Verify(passwordMD5, hash string) bool
}
