package crdb

import (
	"context"

	"github.com/cockroachdb/errors"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS persons (
		id UUID PRIMARY KEY,
		name STRING NOT NULL,
		email STRING NOT NULL UNIQUE,
		phone STRING NOT NULL DEFAULT '',
		password_hash STRING NOT NULL,
		birth_date DATE NULL,
		role STRING NOT NULL CHECK (role IN ('CLIENT', 'ADMIN')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS attractions (
		id UUID PRIMARY KEY,
		name STRING NOT NULL,
		category STRING NOT NULL DEFAULT '',
		description STRING NOT NULL DEFAULT '',
		capacity INT NOT NULL CHECK (capacity >= 0),
		duration STRING NOT NULL DEFAULT '',
		base_price DECIMAL(10,2) NOT NULL CHECK (base_price >= 0),
		status STRING NOT NULL CHECK (status IN ('ACTIVE', 'INACTIVE')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS reservations (
		id UUID PRIMARY KEY,
		person_id UUID NULL REFERENCES persons (id),
		guest_name STRING NULL,
		guest_email STRING NULL,
		attraction_id UUID NOT NULL REFERENCES attractions (id),
		visit_date DATE NOT NULL,
		status STRING NOT NULL CHECK (status IN ('PENDING', 'CONFIRMED', 'CANCELLED')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		CONSTRAINT single_holder CHECK ((person_id IS NULL) != (guest_email IS NULL)),
		INDEX reservations_person_idx (person_id),
		INDEX reservations_guest_idx (guest_email)
	)`,
	`CREATE TABLE IF NOT EXISTS payments (
		id UUID PRIMARY KEY,
		reservation_id UUID NOT NULL UNIQUE REFERENCES reservations (id),
		payer_id UUID NULL,
		amount DECIMAL(10,2) NOT NULL,
		paid_at TIMESTAMPTZ NOT NULL,
		method STRING NOT NULL CHECK (method IN ('card', 'cash')),
		status STRING NOT NULL CHECK (status IN ('PENDING', 'COMPLETED', 'REJECTED'))
	)`,
	`CREATE TABLE IF NOT EXISTS outbox (
		id UUID PRIMARY KEY,
		aggregate_type STRING NOT NULL,
		aggregate_id UUID NOT NULL,
		event_type STRING NOT NULL,
		payload_json JSONB NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		published_at TIMESTAMPTZ NULL,
		status STRING NOT NULL CHECK (status IN ('NEW', 'PUBLISHED')),
		dedupe_key STRING NOT NULL UNIQUE,
		INDEX outbox_status_idx (status, created_at)
	)`,
}

// Migrate creates any missing tables.
func (r *Repository) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return errors.Wrap(err, "apply schema")
		}
	}
	return nil
}
