package database

import (
	"context"
	"fmt"
)

// Schema is the catalog DDL. Statements are idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS vendors (
	id        BIGINT PRIMARY KEY,
	name      TEXT NOT NULL,
	logo_url  TEXT
);

CREATE TABLE IF NOT EXISTS terminals (
	id                 BIGINT PRIMARY KEY,
	name               TEXT NOT NULL,
	image_url          TEXT,
	vendor_id          BIGINT NOT NULL REFERENCES vendors(id),
	price              NUMERIC(14, 4) NOT NULL DEFAULT 0,
	promo_price        NUMERIC(14, 4),
	monthly_fee        NUMERIC(14, 4) NOT NULL DEFAULT 0,
	monthly_fee_waiver NUMERIC(14, 4),
	fee_free           BOOLEAN NOT NULL DEFAULT false,
	warranty_years     INTEGER NOT NULL DEFAULT 0,
	max_installments   INTEGER NOT NULL DEFAULT 1,
	chip               BOOLEAN NOT NULL DEFAULT false,
	mag_stripe         BOOLEAN NOT NULL DEFAULT false,
	contactless        BOOLEAN NOT NULL DEFAULT false,
	requires_wire      BOOLEAN NOT NULL DEFAULT false,
	prints_receipt     BOOLEAN NOT NULL DEFAULT false,
	requires_phone     BOOLEAN NOT NULL DEFAULT false,
	anticipation       BOOLEAN NOT NULL DEFAULT false,
	ecommerce          BOOLEAN NOT NULL DEFAULT false,
	transparent_fees   BOOLEAN NOT NULL DEFAULT false,
	meal_voucher       BOOLEAN NOT NULL DEFAULT false,
	supports_pf        BOOLEAN NOT NULL DEFAULT false,
	supports_pj        BOOLEAN NOT NULL DEFAULT false,
	connectivity       TEXT[] NOT NULL DEFAULT '{}',
	card_networks      TEXT[] NOT NULL DEFAULT '{}',
	receipt_methods    TEXT[] NOT NULL DEFAULT '{}',
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS pricing_plans (
	id                          BIGINT PRIMARY KEY,
	terminal_id                 BIGINT NOT NULL REFERENCES terminals(id) ON DELETE CASCADE,
	position                    INTEGER NOT NULL DEFAULT 0,
	name                        TEXT NOT NULL,
	active                      BOOLEAN NOT NULL DEFAULT true,
	debit_rate                  NUMERIC(10, 6) NOT NULL DEFAULT 0,
	credit_rate                 NUMERIC(10, 6) NOT NULL DEFAULT 0,
	installment_increment       NUMERIC(10, 6) NOT NULL DEFAULT 0,
	debit_settlement_days       INTEGER NOT NULL DEFAULT 0,
	credit_settlement_days      INTEGER NOT NULL DEFAULT 0,
	installment_settlement_days INTEGER NOT NULL DEFAULT 0,
	settlement_day_unit         TEXT NOT NULL DEFAULT 'business',
	installment_payout          TEXT NOT NULL DEFAULT 'lump_sum',
	billing_model               TEXT NOT NULL,
	anticipation                BOOLEAN NOT NULL DEFAULT false,
	tier_kind                   TEXT NOT NULL DEFAULT '',
	excess_rate                 NUMERIC(10, 6) NOT NULL DEFAULT 0,
	conditional_rate            NUMERIC(10, 6),
	conditional_threshold       NUMERIC(14, 4),
	rating                      DOUBLE PRECISION NOT NULL DEFAULT 0,
	contract_url                TEXT,
	plan_group                  TEXT
);

CREATE INDEX IF NOT EXISTS idx_pricing_plans_terminal ON pricing_plans(terminal_id, position);

CREATE TABLE IF NOT EXISTS revenue_tiers (
	plan_id                  BIGINT NOT NULL REFERENCES pricing_plans(id) ON DELETE CASCADE,
	position                 INTEGER NOT NULL,
	min_revenue              NUMERIC(14, 4),
	max_revenue              NUMERIC(14, 4),
	price                    NUMERIC(14, 4),
	debit_rate               NUMERIC(10, 6),
	credit_rate              NUMERIC(10, 6),
	installment_rate_up_to_6 NUMERIC(10, 6),
	installment_rate_over_6  NUMERIC(10, 6),
	base_installment_rate    NUMERIC(10, 6),
	PRIMARY KEY (plan_id, position)
);

CREATE TABLE IF NOT EXISTS installment_rates (
	plan_id      BIGINT NOT NULL REFERENCES pricing_plans(id) ON DELETE CASCADE,
	installments INTEGER NOT NULL CHECK (installments BETWEEN 1 AND 12),
	rate         NUMERIC(10, 6) NOT NULL,
	PRIMARY KEY (plan_id, installments)
);

CREATE TABLE IF NOT EXISTS sectors (
	id   BIGINT PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS plan_sectors (
	plan_id   BIGINT NOT NULL REFERENCES pricing_plans(id) ON DELETE CASCADE,
	sector_id BIGINT NOT NULL REFERENCES sectors(id),
	PRIMARY KEY (plan_id, sector_id)
);
`

// Migrate applies the catalog schema.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
