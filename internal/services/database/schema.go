package database

// Schema is the DDL for the farmer and scheme tables. Every statement is
// idempotent so it can be applied on each deploy.
const Schema = `
CREATE TABLE IF NOT EXISTS farmers (
	id              BIGSERIAL PRIMARY KEY,
	name            TEXT NOT NULL,
	age             INTEGER NOT NULL DEFAULT 0,
	gender          TEXT NOT NULL DEFAULT '',
	phone           TEXT NOT NULL DEFAULT '',
	email           TEXT NOT NULL DEFAULT '',
	state           TEXT NOT NULL,
	district        TEXT NOT NULL DEFAULT '',
	village         TEXT NOT NULL DEFAULT '',
	land_ownership  TEXT NOT NULL DEFAULT '',
	land_size       DOUBLE PRECISION NOT NULL,
	land_unit       TEXT NOT NULL DEFAULT 'Acres',
	crop_types      TEXT[] NOT NULL DEFAULT '{}',
	soil_type       TEXT NOT NULL DEFAULT '',
	irrigation_type TEXT NOT NULL DEFAULT '',
	annual_income   DOUBLE PRECISION NOT NULL DEFAULT 0,
	family_size     INTEGER NOT NULL DEFAULT 1,
	farmer_category TEXT NOT NULL DEFAULT '',
	bank_account    BOOLEAN NOT NULL DEFAULT false,
	aadhaar_linked  BOOLEAN NOT NULL DEFAULT false,
	batch_id        TEXT NOT NULL DEFAULT '',
	joined_date     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_farmers_batch_id ON farmers (batch_id);
CREATE INDEX IF NOT EXISTS idx_farmers_state ON farmers (state);

CREATE TABLE IF NOT EXISTS schemes (
	id                 TEXT PRIMARY KEY,
	name               TEXT NOT NULL,
	ministry           TEXT NOT NULL DEFAULT '',
	description        TEXT NOT NULL DEFAULT '',
	benefit_amount     TEXT NOT NULL DEFAULT '',
	eligibility        TEXT NOT NULL DEFAULT '',
	category           TEXT NOT NULL DEFAULT '',
	required_documents TEXT[] NOT NULL DEFAULT '{}',
	deadline           TEXT NOT NULL DEFAULT '',
	is_active          BOOLEAN NOT NULL DEFAULT true,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`
