package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jeenyuhs/Ragnarok/internal/game/mods"
	"github.com/jeenyuhs/Ragnarok/internal/game/session"
)

// User is an account row.
type User struct {
	ID         int32
	Name       string
	SafeName   string
	Email      string
	Password   string
	Privileges session.Privileges
	Country    uint8
	Longitude  float32
	Latitude   float32
	CreatedAt  time.Time
}

// Identity converts the row into the login-time identity of a session.
func (u User) Identity() session.Identity {
	return session.Identity{
		ID:         u.ID,
		Name:       u.Name,
		Privileges: u.Privileges,
		Country:    u.Country,
		Longitude:  u.Longitude,
		Latitude:   u.Latitude,
	}
}

// ErrUserNotFound is returned when a user lookup yields no results.
var ErrUserNotFound = errors.New("user not found")

// ErrUserExists is returned when attempting to create a duplicate name.
var ErrUserExists = errors.New("user already exists")

// UserRepository provides account and statistics persistence.
type UserRepository struct {
	db *pgxpool.Pool
}

// NewUserRepository creates a UserRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, name, safe_name, email, password_bcrypt, privileges, country, longitude, latitude, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (User, error) {
	var (
		u       User
		priv    int32
		country int16
	)
	err := row.Scan(&u.ID, &u.Name, &u.SafeName, &u.Email, &u.Password, &priv, &country, &u.Longitude, &u.Latitude, &u.CreatedAt)
	u.Privileges = session.Privileges(priv)
	u.Country = uint8(country)
	return u, err
}

// Create inserts a user whose stored password is the bcrypt hash of the
// client-side MD5 hex digest, with an empty stats row per mode.
//
// Precondition: name and passwordMD5 must be non-empty.
// Postcondition: Returns the created User, or ErrUserExists if the safe name is taken.
func (r *UserRepository) Create(ctx context.Context, name, passwordMD5 string, priv session.Privileges) (User, error) {
	hash, err := HashPassword(passwordMD5)
	if err != nil {
		return User{}, fmt.Errorf("hashing password: %w", err)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return User{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	u, err := scanUser(tx.QueryRow(ctx,
		`INSERT INTO users (name, safe_name, password_bcrypt, privileges)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		name, session.SafeName(name), hash, int32(priv),
	))
	if err != nil {
		if isDuplicateKeyError(err) {
			return User{}, ErrUserExists
		}
		return User{}, fmt.Errorf("inserting user: %w", err)
	}

	for _, mode := range []mods.Mode{mods.Osu, mods.Taiko, mods.Catch, mods.Mania} {
		if _, err := tx.Exec(ctx,
			`INSERT INTO stats (user_id, mode) VALUES ($1, $2)`, u.ID, int16(mode),
		); err != nil {
			return User{}, fmt.Errorf("inserting stats: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, fmt.Errorf("committing user: %w", err)
	}
	return u, nil
}

// ByName retrieves a user by display or safe name.
//
// Postcondition: Returns the User or ErrUserNotFound.
func (r *UserRepository) ByName(ctx context.Context, name string) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE safe_name = $1`,
		session.SafeName(name),
	))
	if err != nil {
		if noRows(err) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// ByID retrieves a user by id.
//
// Postcondition: Returns the User or ErrUserNotFound.
func (r *UserRepository) ByID(ctx context.Context, id int32) (User, error) {
	u, err := scanUser(r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id,
	))
	if err != nil {
		if noRows(err) {
			return User{}, ErrUserNotFound
		}
		return User{}, fmt.Errorf("querying user: %w", err)
	}
	return u, nil
}

// SetPrivileges overwrites a user's privilege bits.
//
// Postcondition: Returns ErrUserNotFound when no row matched.
func (r *UserRepository) SetPrivileges(ctx context.Context, id int32, priv session.Privileges) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET privileges = $1 WHERE id = $2`, int32(priv), id,
	)
	if err != nil {
		return fmt.Errorf("updating privileges: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Stats loads a user's statistics for mode. Rank is the 1-based position by
// pp among users with at least 1pp, or 0 below that.
//
// Postcondition: A missing row yields zero statistics, not an error.
func (r *UserRepository) Stats(ctx context.Context, id int32, mode mods.Mode) (session.Stats, error) {
	var s session.Stats
	err := r.db.QueryRow(ctx,
		`SELECT ranked_score, total_score, accuracy, playcount, pp
		 FROM stats WHERE user_id = $1 AND mode = $2`,
		id, int16(mode),
	).Scan(&s.RankedScore, &s.TotalScore, &s.Accuracy, &s.PlayCount, &s.PP)
	if err != nil {
		if noRows(err) {
			return session.Stats{}, nil
		}
		return session.Stats{}, fmt.Errorf("querying stats: %w", err)
	}
	if s.PP < 1 {
		return s, nil
	}

	var ahead int32
	err = r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM stats s
		 JOIN users u ON u.id = s.user_id
		 WHERE s.mode = $1 AND s.user_id <> $2 AND s.pp > $3
		   AND u.privileges & $4 = 0 AND u.privileges & $5 <> 0`,
		int16(mode), id, s.PP, int32(session.Banned), int32(session.Verified),
	).Scan(&ahead)
	if err != nil {
		return session.Stats{}, fmt.Errorf("ranking stats: %w", err)
	}
	s.Rank = ahead + 1
	return s, nil
}
