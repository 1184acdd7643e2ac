package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createExtensions,
		createIdentitiesTable,
		createVenuesTable,
		createVenuesOwnerIndex,
		createBookingsTable,
		createBookingsSettledIndex,
		createBookingsOwnerIndex,
		createBookingsClientIndex,
		createDashboardSummariesTable,
		createNotificationsTable,
		createNotificationsRecipientIndex,
	}

	for i, migration := range migrations {
		slog.Debug("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createExtensions = `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`

const createIdentitiesTable = `
CREATE TABLE IF NOT EXISTS identities (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    email VARCHAR(255) NOT NULL UNIQUE,
    password_hash VARCHAR(100) NOT NULL,
    first_name VARCHAR(100) NOT NULL,
    last_name VARCHAR(100) NOT NULL,
    phone VARCHAR(32),
    profile_image TEXT,
    role VARCHAR(20) NOT NULL,
    is_verified BOOLEAN NOT NULL DEFAULT FALSE,
    last_login_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (role IN ('client', 'venue_owner', 'admin'))
);`

const createVenuesTable = `
CREATE TABLE IF NOT EXISTS venues (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    owner_id UUID NOT NULL REFERENCES identities(id),
    name VARCHAR(200) NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    street VARCHAR(255) NOT NULL,
    city VARCHAR(100) NOT NULL,
    state VARCHAR(100) NOT NULL,
    capacity_min INTEGER NOT NULL DEFAULT 0,
    capacity_max INTEGER NOT NULL,
    price NUMERIC(14,2) NOT NULL,
    caution_fee NUMERIC(14,2) NOT NULL DEFAULT 0,
    open_time VARCHAR(5) NOT NULL,
    close_time VARCHAR(5) NOT NULL,
    hall_size VARCHAR(100) NOT NULL DEFAULT '',
    type VARCHAR(20) NOT NULL,
    amenities TEXT[] NOT NULL DEFAULT '{}',
    documents JSONB NOT NULL DEFAULT '{"images": []}',
    available BOOLEAN NOT NULL DEFAULT TRUE,
    featured BOOLEAN NOT NULL DEFAULT FALSE,
    featured_until TIMESTAMPTZ,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    deleted_at TIMESTAMPTZ,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (type IN ('indoor', 'outdoor', 'multipurpose')),
    CHECK (status IN ('pending', 'unverified', 'verified')),
    CHECK (price > 0),
    CHECK (capacity_max >= capacity_min)
);`

const createVenuesOwnerIndex = `
CREATE INDEX IF NOT EXISTS venues_owner_id_idx ON venues (owner_id) WHERE deleted_at IS NULL;`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    venue_id UUID NOT NULL REFERENCES venues(id),
    owner_id UUID NOT NULL REFERENCES identities(id),
    client_id UUID NOT NULL REFERENCES identities(id),
    event_date DATE NOT NULL,
    number_of_guests INTEGER NOT NULL,
    base_amount NUMERIC(14,2) NOT NULL,
    service_charge NUMERIC(14,2) NOT NULL,
    total_amount NUMERIC(14,2) NOT NULL,
    caution_fee NUMERIC(14,2) NOT NULL DEFAULT 0,
    caution_fee_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    payment_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    payment_reference VARCHAR(100) UNIQUE,
    paid_at TIMESTAMPTZ,
    booking_status VARCHAR(20) NOT NULL DEFAULT 'pending',
    version BIGINT NOT NULL DEFAULT 1,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (booking_status IN ('pending', 'accepted', 'rejected')),
    CHECK (payment_status IN ('pending', 'paid', 'failed')),
    CHECK (caution_fee_status IN ('pending', 'refunded')),
    CHECK (total_amount = base_amount + service_charge),
    CHECK (number_of_guests > 0)
);`

// A client may hold at most one accepted and paid booking per venue.
const createBookingsSettledIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS bookings_client_venue_settled_uidx
ON bookings (client_id, venue_id)
WHERE booking_status = 'accepted' AND payment_status = 'paid';`

const createBookingsOwnerIndex = `
CREATE INDEX IF NOT EXISTS bookings_owner_id_created_at_idx ON bookings (owner_id, created_at DESC);`

const createBookingsClientIndex = `
CREATE INDEX IF NOT EXISTS bookings_client_id_created_at_idx ON bookings (client_id, created_at DESC);`

const createDashboardSummariesTable = `
CREATE TABLE IF NOT EXISTS dashboard_summaries (
    owner_id UUID PRIMARY KEY REFERENCES identities(id),
    total_venues BIGINT NOT NULL DEFAULT 0,
    total_venues_trend DOUBLE PRECISION NOT NULL DEFAULT 0,
    confirmed_bookings BIGINT NOT NULL DEFAULT 0,
    pending_bookings BIGINT NOT NULL DEFAULT 0,
    revenue_total NUMERIC(14,2) NOT NULL DEFAULT 0,
    revenue_trend DOUBLE PRECISION NOT NULL DEFAULT 0,
    occupancy_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
    occupancy_trend DOUBLE PRECISION NOT NULL DEFAULT 0,
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createNotificationsTable = `
CREATE TABLE IF NOT EXISTS notifications (
    id UUID PRIMARY KEY,
    recipient_id UUID NOT NULL,
    recipient_role VARCHAR(20) NOT NULL,
    venue_id UUID,
    booking_id UUID,
    title VARCHAR(100) NOT NULL,
    message TEXT NOT NULL,
    dot VARCHAR(10) NOT NULL,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createNotificationsRecipientIndex = `
CREATE INDEX IF NOT EXISTS notifications_recipient_created_at_idx
ON notifications (recipient_id, created_at DESC);`
