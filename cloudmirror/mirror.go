package cloudmirror

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pizzanight/server/models"
)

// app_state keys. Each is overwritten wholesale on save - the mirror
// stores snapshots, not diffs.
const (
	KeyPizzas = "pizzas"
	KeySocial = "social_data"
)

var (
	// ErrNotFound is returned when a key or table has no row.
	ErrNotFound = errors.New("cloudmirror: not found")

	// ErrTableMissing is returned once a table's circuit breaker has
	// tripped: the remote schema is absent and every further call
	// short-circuits until restart.
	ErrTableMissing = errors.New("cloudmirror: relation does not exist on server")
)

// undefinedTable is the PostgreSQL error code for "relation does not
// exist" (42P01).
const undefinedTable = "42P01"

// Status is the mirror health surfaced to admins. Cloud failures are
// never surfaced as blocking errors to ordinary users.
type Status struct {
	StateTableMissing bool `json:"stateTableMissing"`
	UsersTableMissing bool `json:"usersTableMissing"`
}

// Mirror replicates the shared document to a remote key-value table, best
// effort and non-authoritative. It is used as a seed/tie-breaker on fresh
// session start and degrades gracefully (permanently, until restart)
// when the remote schema is absent.
type Mirror struct {
	pool *pgxpool.Pool
	log  *slog.Logger

	mu           sync.Mutex
	stateMissing bool
	usersMissing bool
}

// New connects to the mirror database. The connection itself must
// succeed; table availability is probed lazily per call.
func New(ctx context.Context, url string, log *slog.Logger) (*Mirror, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse mirror URL: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect mirror: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	return &Mirror{pool: pool, log: log}, nil
}

func (m *Mirror) Close() {
	m.pool.Close()
}

// EnsureSchema creates the mirror tables when the connected role is
// allowed to. Failure is a warning, not an error: the per-call circuit
// breaker handles a missing schema either way.
func (m *Mirror) EnsureSchema(ctx context.Context) {
	_, err := m.pool.Exec(ctx, `
CREATE TABLE IF NOT EXISTS app_state (
	key text PRIMARY KEY,
	data jsonb NOT NULL,
	updated_at timestamptz NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS users (
	nickname text PRIMARY KEY,
	phone text,
	password text,
	is_verified boolean DEFAULT false,
	avatar text,
	cover text,
	xp_offset double precision DEFAULT 0,
	points_offset double precision DEFAULT 0,
	max_regular_points double precision DEFAULT 0,
	max_bonus_points double precision DEFAULT 0
);
`)
	if err != nil {
		m.log.Warn("mirror schema setup failed", "error", err)
	}
}

// Status reports which tables have tripped their circuit breaker.
func (m *Mirror) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{StateTableMissing: m.stateMissing, UsersTableMissing: m.usersMissing}
}

// SaveState upserts one app_state key wholesale.
func (m *Mirror) SaveState(ctx context.Context, key string, data []byte) error {
	if m.tripped(&m.stateMissing) {
		return ErrTableMissing
	}
	_, err := m.pool.Exec(ctx, `
INSERT INTO app_state (key, data, updated_at) VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = now();
`, key, data)
	if err != nil {
		return m.classify(&m.stateMissing, "app_state", fmt.Errorf("save state %q: %w", key, err))
	}
	return nil
}

// LoadState returns one app_state key's payload.
func (m *Mirror) LoadState(ctx context.Context, key string) ([]byte, error) {
	if m.tripped(&m.stateMissing) {
		return nil, ErrTableMissing
	}
	var data []byte
	err := m.pool.QueryRow(ctx, `SELECT data FROM app_state WHERE key = $1`, key).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, m.classify(&m.stateMissing, "app_state", fmt.Errorf("load state %q: %w", key, err))
	}
	return data, nil
}

// SaveUser upserts one registry row.
func (m *Mirror) SaveUser(ctx context.Context, u models.UserAccount) error {
	if m.tripped(&m.usersMissing) {
		return ErrTableMissing
	}
	_, err := m.pool.Exec(ctx, `
INSERT INTO users (nickname, phone, password, is_verified, avatar, cover,
	xp_offset, points_offset, max_regular_points, max_bonus_points)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (nickname) DO UPDATE SET
	phone = EXCLUDED.phone,
	password = EXCLUDED.password,
	is_verified = EXCLUDED.is_verified,
	avatar = EXCLUDED.avatar,
	cover = EXCLUDED.cover,
	xp_offset = EXCLUDED.xp_offset,
	points_offset = EXCLUDED.points_offset,
	max_regular_points = EXCLUDED.max_regular_points,
	max_bonus_points = EXCLUDED.max_bonus_points;
`, u.Nickname, u.Phone, u.Password, u.IsVerified, u.Avatar, u.Cover,
		u.XPOffset, u.PointsOffset, u.MaxRegularPoints, u.MaxBonusPoints)
	if err != nil {
		return m.classify(&m.usersMissing, "users", fmt.Errorf("save user %q: %w", u.Nickname, err))
	}
	return nil
}

// LoadUsers returns the whole mirrored registry.
func (m *Mirror) LoadUsers(ctx context.Context) ([]models.UserAccount, error) {
	if m.tripped(&m.usersMissing) {
		return nil, ErrTableMissing
	}
	rows, err := m.pool.Query(ctx, `
SELECT nickname, COALESCE(phone,''), COALESCE(password,''), COALESCE(is_verified,false),
	COALESCE(avatar,''), COALESCE(cover,''), COALESCE(xp_offset,0), COALESCE(points_offset,0),
	COALESCE(max_regular_points,0), COALESCE(max_bonus_points,0)
FROM users ORDER BY nickname
`)
	if err != nil {
		return nil, m.classify(&m.usersMissing, "users", fmt.Errorf("load users: %w", err))
	}
	defer rows.Close()

	var out []models.UserAccount
	for rows.Next() {
		var u models.UserAccount
		if err := rows.Scan(&u.Nickname, &u.Phone, &u.Password, &u.IsVerified,
			&u.Avatar, &u.Cover, &u.XPOffset, &u.PointsOffset,
			&u.MaxRegularPoints, &u.MaxBonusPoints); err != nil {
			return nil, fmt.Errorf("scan user row: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (m *Mirror) tripped(flag *bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *flag
}

// classify inspects a failure: "relation does not exist" flips the
// table's breaker and downgrades to ErrTableMissing; anything else passes
// through for the caller to log as a warning.
func (m *Mirror) classify(flag *bool, table string, err error) error {
	if IsRelationMissing(err) {
		m.mu.Lock()
		*flag = true
		m.mu.Unlock()
		m.log.Warn("mirror table missing, disabling until restart", "table", table)
		return ErrTableMissing
	}
	return err
}

// IsRelationMissing reports whether err is PostgreSQL 42P01.
func IsRelationMissing(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == undefinedTable
}
