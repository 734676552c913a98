package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schema is applied idempotently at startup. Derived player columns are
// materialized caches; the source of truth is the ordered match history plus
// purchases (see game.Service.RecomputeAll).
const schema = `
CREATE SCHEMA IF NOT EXISTS game;

CREATE TABLE IF NOT EXISTS game.players (
	id                 BIGSERIAL PRIMARY KEY,
	first_name         TEXT NOT NULL,
	last_name          TEXT NOT NULL DEFAULT '',
	username           TEXT NOT NULL DEFAULT '',
	rating             INTEGER NOT NULL,
	blue_wins          INTEGER NOT NULL DEFAULT 0,
	red_wins           INTEGER NOT NULL DEFAULT 0,
	infiltrator_wins   INTEGER NOT NULL DEFAULT 0,
	social_blue        INTEGER NOT NULL DEFAULT 0,
	social_red         INTEGER NOT NULL DEFAULT 0,
	social_infiltrator INTEGER NOT NULL DEFAULT 0,
	killer_points      INTEGER NOT NULL DEFAULT 0,
	coin_balance       INTEGER NOT NULL DEFAULT 0,
	win_streak         INTEGER NOT NULL DEFAULT 0,
	lose_streak        INTEGER NOT NULL DEFAULT 0,
	created_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS game.matches (
	id             BIGSERIAL PRIMARY KEY,
	title          TEXT NOT NULL,
	created_by     BIGINT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	outcome        TEXT,
	infiltrator_id BIGINT REFERENCES game.players(id) ON DELETE SET NULL,
	killer_id      BIGINT REFERENCES game.players(id) ON DELETE SET NULL,
	scored_at      TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS game.match_participants (
	id        BIGSERIAL PRIMARY KEY,
	match_id  BIGINT NOT NULL REFERENCES game.matches(id) ON DELETE CASCADE,
	player_id BIGINT NOT NULL REFERENCES game.players(id) ON DELETE CASCADE,
	team      TEXT NOT NULL,
	UNIQUE (match_id, player_id)
);
CREATE INDEX IF NOT EXISTS match_participants_player_idx
	ON game.match_participants (player_id, match_id);

CREATE TABLE IF NOT EXISTS game.purchases (
	id         BIGSERIAL PRIMARY KEY,
	player_id  BIGINT NOT NULL REFERENCES game.players(id) ON DELETE CASCADE,
	item_code  TEXT NOT NULL,
	title      TEXT NOT NULL,
	cost       INTEGER NOT NULL,
	received   BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS game.idempotency_keys (
	player_id  BIGINT NOT NULL,
	key        TEXT NOT NULL,
	action     TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (player_id, key)
);

CREATE TABLE IF NOT EXISTS game.match_events (
	id           BIGSERIAL PRIMARY KEY,
	match_id     BIGINT NOT NULL,
	player_id    BIGINT NOT NULL,
	side         TEXT NOT NULL,
	rating_delta INTEGER NOT NULL,
	social_gain  INTEGER NOT NULL,
	opponent_avg DOUBLE PRECISION NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS match_events_player_idx
	ON game.match_events (player_id, created_at);
`

func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
