package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"card-fee-simulator/internal/models"
)

// TerminalRepository reads the terminal catalog with its plans, tiers, rate tables and sectors.
type TerminalRepository struct {
	db *DB
}

// NewTerminalRepository creates a new terminal repository.
func NewTerminalRepository(db *DB) *TerminalRepository {
	return &TerminalRepository{db: db}
}

// LoadOffers returns every terminal that has at least one active plan. Only active plans
// are attached; tiers and installment rates keep their stored position.
func (r *TerminalRepository) LoadOffers(ctx context.Context) ([]models.TerminalOffer, error) {
	terminals, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	plans, err := r.activePlans(ctx)
	if err != nil {
		return nil, err
	}

	offers := make([]models.TerminalOffer, 0, len(terminals))
	for _, t := range terminals {
		t.Plans = plans[t.ID]
		if len(t.Plans) == 0 {
			continue
		}
		offers = append(offers, *t)
	}

	return offers, nil
}

// GetAll retrieves all terminals without their plans, ordered by id.
func (r *TerminalRepository) GetAll(ctx context.Context) ([]*models.TerminalOffer, error) {
	query := `
		SELECT t.id, t.name, t.image_url, t.vendor_id, v.name, v.logo_url,
			t.price, t.promo_price, t.monthly_fee, t.monthly_fee_waiver, t.fee_free,
			t.warranty_years, t.max_installments,
			t.chip, t.mag_stripe, t.contactless, t.requires_wire, t.prints_receipt,
			t.requires_phone, t.anticipation, t.ecommerce, t.transparent_fees,
			t.meal_voucher, t.supports_pf, t.supports_pj,
			t.connectivity, t.card_networks, t.receipt_methods, t.updated_at
		FROM terminals t
		JOIN vendors v ON v.id = t.vendor_id
		ORDER BY t.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query terminals: %w", err)
	}
	defer rows.Close()

	var terminals []*models.TerminalOffer
	for rows.Next() {
		t, err := scanTerminal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan terminal: %w", err)
		}
		terminals = append(terminals, t)
	}

	return terminals, rows.Err()
}

// activePlans loads active plans keyed by terminal id, with their children attached.
func (r *TerminalRepository) activePlans(ctx context.Context) (map[int64][]models.PricingPlan, error) {
	query := `
		SELECT id, terminal_id, name, active,
			debit_rate, credit_rate, installment_increment,
			debit_settlement_days, credit_settlement_days, installment_settlement_days,
			settlement_day_unit, installment_payout,
			billing_model, anticipation, tier_kind, excess_rate,
			conditional_rate, conditional_threshold,
			rating, contract_url, plan_group
		FROM pricing_plans
		WHERE active = true
		ORDER BY terminal_id, position, id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query pricing plans: %w", err)
	}

	type planRow struct {
		terminalID int64
		plan       models.PricingPlan
	}
	var loaded []planRow
	for rows.Next() {
		var pr planRow
		if err := scanPlan(rows, &pr.terminalID, &pr.plan); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan pricing plan: %w", err)
		}
		loaded = append(loaded, pr)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read pricing plans: %w", err)
	}

	tiers, err := r.tiers(ctx)
	if err != nil {
		return nil, err
	}
	rates, err := r.installmentRates(ctx)
	if err != nil {
		return nil, err
	}
	sectors, err := r.planSectors(ctx)
	if err != nil {
		return nil, err
	}

	byTerminal := make(map[int64][]models.PricingPlan)
	for _, pr := range loaded {
		pr.plan.Tiers = tiers[pr.plan.ID]
		pr.plan.InstallmentRates = rates[pr.plan.ID]
		pr.plan.Sectors = sectors[pr.plan.ID]
		byTerminal[pr.terminalID] = append(byTerminal[pr.terminalID], pr.plan)
	}

	return byTerminal, nil
}

func (r *TerminalRepository) tiers(ctx context.Context) (map[int64][]models.RevenueTier, error) {
	query := `
		SELECT plan_id, min_revenue, max_revenue, price,
			debit_rate, credit_rate, installment_rate_up_to_6, installment_rate_over_6,
			base_installment_rate
		FROM revenue_tiers
		ORDER BY plan_id, position`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query revenue tiers: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.RevenueTier)
	for rows.Next() {
		var planID int64
		var minRev, maxRev, price, debit, credit, upTo6, over6, base decimal.NullDecimal
		if err := rows.Scan(&planID, &minRev, &maxRev, &price, &debit, &credit, &upTo6, &over6, &base); err != nil {
			return nil, fmt.Errorf("failed to scan revenue tier: %w", err)
		}
		out[planID] = append(out[planID], models.RevenueTier{
			Min:                  nullable(minRev),
			Max:                  nullable(maxRev),
			Price:                nullable(price),
			DebitRate:            nullable(debit),
			CreditRate:           nullable(credit),
			InstallmentRateUpTo6: nullable(upTo6),
			InstallmentRateOver6: nullable(over6),
			BaseInstallmentRate:  nullable(base),
		})
	}

	return out, rows.Err()
}

func (r *TerminalRepository) installmentRates(ctx context.Context) (map[int64][]models.InstallmentRate, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT plan_id, installments, rate FROM installment_rates ORDER BY plan_id, installments")
	if err != nil {
		return nil, fmt.Errorf("failed to query installment rates: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.InstallmentRate)
	for rows.Next() {
		var planID int64
		var rate models.InstallmentRate
		if err := rows.Scan(&planID, &rate.Installments, &rate.Rate); err != nil {
			return nil, fmt.Errorf("failed to scan installment rate: %w", err)
		}
		out[planID] = append(out[planID], rate)
	}

	return out, rows.Err()
}

func (r *TerminalRepository) planSectors(ctx context.Context) (map[int64][]models.Sector, error) {
	query := `
		SELECT ps.plan_id, s.id, s.name
		FROM plan_sectors ps
		JOIN sectors s ON s.id = ps.sector_id
		ORDER BY ps.plan_id, s.id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query plan sectors: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]models.Sector)
	for rows.Next() {
		var planID int64
		var s models.Sector
		if err := rows.Scan(&planID, &s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan plan sector: %w", err)
		}
		out[planID] = append(out[planID], s)
	}

	return out, rows.Err()
}

// Import replaces the catalog with the given offers in a single transaction. Used to seed a
// database from a snapshot file.
func (r *TerminalRepository) Import(ctx context.Context, offers []models.TerminalOffer) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		for _, table := range []string{"plan_sectors", "installment_rates", "revenue_tiers", "pricing_plans", "terminals", "vendors", "sectors"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("failed to clear %s: %w", table, err)
			}
		}

		for i := range offers {
			if err := importOffer(ctx, tx, &offers[i]); err != nil {
				return fmt.Errorf("terminal %d: %w", offers[i].ID, err)
			}
		}
		return nil
	})
}

func importOffer(ctx context.Context, tx pgx.Tx, t *models.TerminalOffer) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO vendors (id, name, logo_url) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO NOTHING`,
		t.VendorID, t.VendorName, t.VendorLogoURL)
	if err != nil {
		return fmt.Errorf("failed to insert vendor: %w", err)
	}

	updatedAt := t.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO terminals (
			id, name, image_url, vendor_id, price, promo_price, monthly_fee, monthly_fee_waiver,
			fee_free, warranty_years, max_installments, chip, mag_stripe, contactless,
			requires_wire, prints_receipt, requires_phone, anticipation, ecommerce,
			transparent_fees, meal_voucher, supports_pf, supports_pj,
			connectivity, card_networks, receipt_methods, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`,
		t.ID, t.Name, t.ImageURL, t.VendorID, t.Price, nullDecimal(t.PromoPrice), t.MonthlyFee,
		nullDecimal(t.MonthlyFeeWaiver), t.FeeFree, t.WarrantyYears, t.MaxInstallments,
		t.Chip, t.MagStripe, t.Contactless, t.RequiresWire, t.PrintsReceipt, t.RequiresPhone,
		t.Anticipation, t.Ecommerce, t.TransparentFees, t.MealVoucher, t.SupportsPF, t.SupportsPJ,
		nonNil(t.Connectivity), nonNil(t.CardNetworks), nonNil(t.ReceiptMethods), updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert terminal: %w", err)
	}

	for pos := range t.Plans {
		if err := importPlan(ctx, tx, t.ID, pos, &t.Plans[pos]); err != nil {
			return fmt.Errorf("plan %d: %w", t.Plans[pos].ID, err)
		}
	}
	return nil
}

func importPlan(ctx context.Context, tx pgx.Tx, terminalID int64, position int, p *models.PricingPlan) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO pricing_plans (
			id, terminal_id, position, name, active, debit_rate, credit_rate, installment_increment,
			debit_settlement_days, credit_settlement_days, installment_settlement_days,
			settlement_day_unit, installment_payout, billing_model, anticipation, tier_kind,
			excess_rate, conditional_rate, conditional_threshold, rating, contract_url, plan_group
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22)`,
		p.ID, terminalID, position, p.Name, p.Active, p.DebitRate, p.CreditRate, p.InstallmentIncrement,
		p.DebitSettlementDays, p.CreditSettlementDays, p.InstallmentSettlementDays,
		string(p.SettlementDayUnit), string(p.InstallmentPayout), string(p.Model), p.Anticipation,
		string(p.TierKind), p.ExcessRate, nullDecimal(p.ConditionalRate), nullDecimal(p.ConditionalThreshold),
		p.Rating, p.ContractURL, p.Group,
	)
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	for pos, tier := range p.Tiers {
		_, err := tx.Exec(ctx, `
			INSERT INTO revenue_tiers (
				plan_id, position, min_revenue, max_revenue, price, debit_rate, credit_rate,
				installment_rate_up_to_6, installment_rate_over_6, base_installment_rate
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.ID, pos, nullDecimal(tier.Min), nullDecimal(tier.Max), nullDecimal(tier.Price),
			nullDecimal(tier.DebitRate), nullDecimal(tier.CreditRate), nullDecimal(tier.InstallmentRateUpTo6),
			nullDecimal(tier.InstallmentRateOver6), nullDecimal(tier.BaseInstallmentRate),
		)
		if err != nil {
			return fmt.Errorf("failed to insert revenue tier %d: %w", pos, err)
		}
	}

	for _, rate := range p.InstallmentRates {
		_, err := tx.Exec(ctx,
			"INSERT INTO installment_rates (plan_id, installments, rate) VALUES ($1, $2, $3)",
			p.ID, rate.Installments, rate.Rate)
		if err != nil {
			return fmt.Errorf("failed to insert installment rate %d: %w", rate.Installments, err)
		}
	}

	for _, s := range p.Sectors {
		_, err := tx.Exec(ctx, `
			INSERT INTO sectors (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
			s.ID, s.Name)
		if err != nil {
			return fmt.Errorf("failed to insert sector %d: %w", s.ID, err)
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO plan_sectors (plan_id, sector_id) VALUES ($1, $2)", p.ID, s.ID)
		if err != nil {
			return fmt.Errorf("failed to link sector %d: %w", s.ID, err)
		}
	}

	return nil
}

// scanTerminal scans a terminal row from pgx.Rows.
func scanTerminal(rows pgx.Rows) (*models.TerminalOffer, error) {
	var t models.TerminalOffer
	var imageURL, logoURL *string
	var promo, waiver decimal.NullDecimal

	err := rows.Scan(
		&t.ID,
		&t.Name,
		&imageURL,
		&t.VendorID,
		&t.VendorName,
		&logoURL,
		&t.Price,
		&promo,
		&t.MonthlyFee,
		&waiver,
		&t.FeeFree,
		&t.WarrantyYears,
		&t.MaxInstallments,
		&t.Chip,
		&t.MagStripe,
		&t.Contactless,
		&t.RequiresWire,
		&t.PrintsReceipt,
		&t.RequiresPhone,
		&t.Anticipation,
		&t.Ecommerce,
		&t.TransparentFees,
		&t.MealVoucher,
		&t.SupportsPF,
		&t.SupportsPJ,
		&t.Connectivity,
		&t.CardNetworks,
		&t.ReceiptMethods,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if imageURL != nil {
		t.ImageURL = *imageURL
	}
	if logoURL != nil {
		t.VendorLogoURL = *logoURL
	}
	t.PromoPrice = nullable(promo)
	t.MonthlyFeeWaiver = nullable(waiver)

	return &t, nil
}

// scanPlan scans a pricing plan row from pgx.Rows.
func scanPlan(rows pgx.Rows, terminalID *int64, p *models.PricingPlan) error {
	var dayUnit, payout, model, tierKind string
	var contractURL, group *string
	var condRate, condThreshold decimal.NullDecimal

	err := rows.Scan(
		&p.ID,
		terminalID,
		&p.Name,
		&p.Active,
		&p.DebitRate,
		&p.CreditRate,
		&p.InstallmentIncrement,
		&p.DebitSettlementDays,
		&p.CreditSettlementDays,
		&p.InstallmentSettlementDays,
		&dayUnit,
		&payout,
		&model,
		&p.Anticipation,
		&tierKind,
		&p.ExcessRate,
		&condRate,
		&condThreshold,
		&p.Rating,
		&contractURL,
		&group,
	)
	if err != nil {
		return err
	}

	p.SettlementDayUnit = models.DayUnit(dayUnit)
	p.InstallmentPayout = models.PayoutMode(payout)
	p.Model = models.BillingModel(model)
	p.TierKind = models.TierKind(tierKind)
	p.ConditionalRate = nullable(condRate)
	p.ConditionalThreshold = nullable(condThreshold)
	if contractURL != nil {
		p.ContractURL = *contractURL
	}
	if group != nil {
		p.Group = *group
	}

	return nil
}

// nonNil keeps NOT NULL array columns from receiving NULL.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func nullable(d decimal.NullDecimal) *decimal.Decimal {
	if !d.Valid {
		return nil
	}
	v := d.Decimal
	return &v
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}
