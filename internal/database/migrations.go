package database

import (
	"context"
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations(ctx context.Context) error {
	slog.Info("Running database migrations...")

	for i, migration := range Migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migrations are applied in order; each statement is idempotent.
var Migrations = []string{
	createExtensions,
	createProfilesTable,
	createUserRolesTable,
	createRoutesTable,
	createBusesTable,
	createSchedulesTable,
	createBookingsTable,
	createPromoCodesTable,
	createSchedulesDepartureIndex,
	createProfileTrigger,
}

const createExtensions = `CREATE EXTENSION IF NOT EXISTS "pgcrypto";`

const createProfilesTable = `
CREATE TABLE IF NOT EXISTS profiles (
    id UUID PRIMARY KEY,
    full_name VARCHAR(255) NOT NULL DEFAULT '',
    phone VARCHAR(32),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createUserRolesTable = `
CREATE TABLE IF NOT EXISTS user_roles (
    id SERIAL PRIMARY KEY,
    user_id UUID NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
    role VARCHAR(50) NOT NULL,
    role_level INTEGER NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(user_id, role)
);`

const createRoutesTable = `
CREATE TABLE IF NOT EXISTS routes (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    origin VARCHAR(255) NOT NULL,
    destination VARCHAR(255) NOT NULL,
    distance_km INTEGER,
    duration_min INTEGER,

    UNIQUE(origin, destination)
);`

const createBusesTable = `
CREATE TABLE IF NOT EXISTS buses (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    plate_number VARCHAR(32) UNIQUE NOT NULL,
    model VARCHAR(100) NOT NULL DEFAULT '',
    capacity INTEGER NOT NULL CHECK (capacity > 0)
);`

const createSchedulesTable = `
CREATE TABLE IF NOT EXISTS schedules (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    route_id UUID NOT NULL REFERENCES routes(id) ON DELETE CASCADE,
    bus_id UUID NOT NULL REFERENCES buses(id),
    departure_time TIMESTAMP NOT NULL,
    arrival_time TIMESTAMP,
    fare DECIMAL(10,2) NOT NULL,
    available_seats INTEGER NOT NULL DEFAULT 0,
    status VARCHAR(20) NOT NULL DEFAULT 'scheduled',

    CHECK (status IN ('scheduled', 'departed', 'completed', 'cancelled'))
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    schedule_id UUID NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
    user_id UUID NOT NULL,
    passenger_name VARCHAR(255) NOT NULL,
    passenger_phone VARCHAR(32),
    passenger_id_number VARCHAR(64) NOT NULL DEFAULT '',
    passenger_gender VARCHAR(16) NOT NULL DEFAULT '',
    next_of_kin VARCHAR(255) NOT NULL DEFAULT '',
    seat_number VARCHAR(16) NOT NULL,
    total_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
    discount_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
    promo_code VARCHAR(64),
    status VARCHAR(20) NOT NULL DEFAULT 'confirmed',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('confirmed', 'cancelled'))
);
CREATE UNIQUE INDEX IF NOT EXISTS bookings_active_seat_idx
ON bookings (schedule_id, seat_number) WHERE status = 'confirmed';`

const createPromoCodesTable = `
CREATE TABLE IF NOT EXISTS promo_codes (
    id SERIAL PRIMARY KEY,
    code VARCHAR(64) UNIQUE NOT NULL,
    discount_type VARCHAR(16) NOT NULL,
    discount_value DECIMAL(10,2) NOT NULL,
    max_discount DECIMAL(10,2),
    min_amount DECIMAL(10,2) NOT NULL DEFAULT 0,
    usage_limit INTEGER,
    used_count INTEGER NOT NULL DEFAULT 0,
    schedule_id UUID REFERENCES schedules(id) ON DELETE CASCADE,
    valid_from TIMESTAMP,
    valid_until TIMESTAMP,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (discount_type IN ('percentage', 'fixed'))
);`

const createSchedulesDepartureIndex = `
CREATE INDEX IF NOT EXISTS schedules_departure_date_idx
ON schedules (DATE(departure_time));`

// The hosted auth service keeps its users in auth.users; when that schema is
// present, a profile row is created on sign-up from the user metadata.
const createProfileTrigger = `
DO $$
BEGIN
    IF EXISTS (SELECT 1 FROM information_schema.tables
               WHERE table_schema = 'auth' AND table_name = 'users') THEN
        CREATE OR REPLACE FUNCTION public.handle_new_user() RETURNS trigger AS $fn$
        BEGIN
            INSERT INTO public.profiles (id, full_name, phone)
            VALUES (NEW.id,
                    COALESCE(NEW.raw_user_meta_data->>'full_name', ''),
                    NEW.raw_user_meta_data->>'phone')
            ON CONFLICT (id) DO NOTHING;
            INSERT INTO public.user_roles (user_id, role, role_level)
            VALUES (NEW.id, 'customer', 1)
            ON CONFLICT (user_id, role) DO NOTHING;
            RETURN NEW;
        END;
        $fn$ LANGUAGE plpgsql SECURITY DEFINER;

        DROP TRIGGER IF EXISTS on_auth_user_created ON auth.users;
        CREATE TRIGGER on_auth_user_created
            AFTER INSERT ON auth.users
            FOR EACH ROW EXECUTE FUNCTION public.handle_new_user();
    END IF;
END
$$;`
