package subscriptions

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS email_subscriptions (
	id            uuid PRIMARY KEY,
	email         text NOT NULL UNIQUE,
	subscribed_at timestamptz NOT NULL DEFAULT now(),
	active        boolean NOT NULL DEFAULT true
)`

// PostgresStore keeps subscriptions in the email_subscriptions table
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to databaseURL and creates the table if needed
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Close() {
	p.pool.Close()
}

func (p *PostgresStore) Upsert(ctx context.Context, email string) (Subscription, bool, error) {
	// xmax is 0 only for a freshly inserted row
	row := p.pool.QueryRow(ctx, `
		INSERT INTO email_subscriptions (id, email, subscribed_at, active)
		VALUES ($1::uuid, $2, now(), true)
		ON CONFLICT (email) DO UPDATE
			SET subscribed_at = EXCLUDED.subscribed_at, active = true
		RETURNING id::text, email, subscribed_at, active, (xmax = 0) AS inserted`,
		uuid.NewString(), email)

	var sub Subscription
	var inserted bool
	if err := row.Scan(&sub.ID, &sub.Email, &sub.SubscribedAt, &sub.Active, &inserted); err != nil {
		return Subscription{}, false, fmt.Errorf("upsert subscription: %w", err)
	}
	sub.SubscribedAt = sub.SubscribedAt.UTC()
	return sub, inserted, nil
}

func (p *PostgresStore) Remove(ctx context.Context, email string) (bool, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM email_subscriptions WHERE email = $1`, email)
	if err != nil {
		return false, fmt.Errorf("remove subscription: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (p *PostgresStore) List(ctx context.Context) ([]Subscription, error) {
	return p.query(ctx, `SELECT id::text, email, subscribed_at, active FROM email_subscriptions ORDER BY subscribed_at`)
}

func (p *PostgresStore) Active(ctx context.Context) ([]Subscription, error) {
	return p.query(ctx, `SELECT id::text, email, subscribed_at, active FROM email_subscriptions WHERE active ORDER BY subscribed_at`)
}

func (p *PostgresStore) query(ctx context.Context, sql string) ([]Subscription, error) {
	rows, err := p.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	subs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Subscription, error) {
		var s Subscription
		err := row.Scan(&s.ID, &s.Email, &s.SubscribedAt, &s.Active)
		s.SubscribedAt = s.SubscribedAt.UTC()
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	return subs, nil
}
