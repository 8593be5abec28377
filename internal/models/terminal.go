// Package models defines the data structures for the card-terminal fee simulator.
package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Connectivity values stored on a terminal.
const (
	ConnectivityWiFi      = "wifi"
	ConnectivityChip      = "chip"
	ConnectivityBluetooth = "bluetooth"
	ConnectivityEthernet  = "ethernet"
)

// TerminalOffer is a card machine offered by a vendor, with its commercial plans.
type TerminalOffer struct {
	ID            int64  `json:"id" db:"id"`
	Name          string `json:"nome" db:"name"`
	ImageURL      string `json:"imagem,omitempty" db:"image_url"`
	VendorID      int64  `json:"empresa_id" db:"vendor_id"`
	VendorName    string `json:"empresa" db:"vendor_name"`
	VendorLogoURL string `json:"empresa_logo,omitempty" db:"vendor_logo_url"`

	Price      decimal.Decimal  `json:"valor" db:"price"`
	PromoPrice *decimal.Decimal `json:"valor_promocional,omitempty" db:"promo_price"`
	MonthlyFee decimal.Decimal  `json:"aluguel" db:"monthly_fee"`
	// MonthlyFeeWaiver is the monthly revenue (major units) from which the rental is waived.
	MonthlyFeeWaiver *decimal.Decimal `json:"isencao_aluguel,omitempty" db:"monthly_fee_waiver"`
	FeeFree          bool             `json:"sem_mensalidade" db:"fee_free"`
	WarrantyYears    int              `json:"garantia" db:"warranty_years"`
	MaxInstallments  int              `json:"possibilidade_parcelamento" db:"max_installments"`

	Chip            bool `json:"chip" db:"chip"`
	MagStripe       bool `json:"tarja" db:"mag_stripe"`
	Contactless     bool `json:"nfc" db:"contactless"`
	RequiresWire    bool `json:"fio" db:"requires_wire"`
	PrintsReceipt   bool `json:"imprime_recibo" db:"prints_receipt"`
	RequiresPhone   bool `json:"precisa_celular" db:"requires_phone"`
	Anticipation    bool `json:"permite_antecipacao" db:"anticipation"`
	Ecommerce       bool `json:"ecommerce" db:"ecommerce"`
	TransparentFees bool `json:"taxa_transparente" db:"transparent_fees"`
	MealVoucher     bool `json:"vale_refeicao" db:"meal_voucher"`
	SupportsPF      bool `json:"pf" db:"supports_pf"`
	SupportsPJ      bool `json:"pj" db:"supports_pj"`

	Connectivity   []string `json:"conexoes" db:"connectivity"`
	CardNetworks   []string `json:"bandeiras" db:"card_networks"`
	ReceiptMethods []string `json:"forma_recebimento" db:"receipt_methods"`

	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
	Plans     []PricingPlan `json:"planos"`
}

// EquipmentPrice returns the promotional price when present, else the base price.
func (t *TerminalOffer) EquipmentPrice() decimal.Decimal {
	if t.PromoPrice != nil {
		return *t.PromoPrice
	}
	return t.Price
}

// HasConnectivity reports whether the terminal lists the given connectivity type.
func (t *TerminalOffer) HasConnectivity(kind string) bool {
	for _, c := range t.Connectivity {
		if strings.EqualFold(strings.TrimSpace(c), kind) {
			return true
		}
	}
	return false
}

// ActivePlans returns the plans flagged active, in stored order.
func (t *TerminalOffer) ActivePlans() []PricingPlan {
	active := make([]PricingPlan, 0, len(t.Plans))
	for _, p := range t.Plans {
		if p.Active {
			active = append(active, p)
		}
	}
	return active
}
