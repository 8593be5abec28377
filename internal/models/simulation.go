package models

import (
	"github.com/shopspring/decimal"
)

// FilterCriteria holds the optional boolean filters a merchant can request.
// A false value means "no preference".
type FilterCriteria struct {
	NoMonthlyFee  bool `json:"sem_mensalidade"`
	Ecommerce     bool `json:"ecommerce"`
	MagStripe     bool `json:"tarja"`
	Contactless   bool `json:"nfc"`
	Chip          bool `json:"chip"`
	Wireless      bool `json:"sem_fio"`
	PJ            bool `json:"pj"`
	PF            bool `json:"pf"`
	WiFi          bool `json:"wifi"`
	PrintsReceipt bool `json:"imprime_recibo"`
	NoPhone       bool `json:"sem_celular"`
	MealVoucher   bool `json:"vale_refeicao"`
}

// IsEmpty reports whether no filter is requested.
func (f FilterCriteria) IsEmpty() bool {
	return f == FilterCriteria{}
}

// SimulationRequest describes a merchant's monthly card sales. Volumes are in minor units.
type SimulationRequest struct {
	DebitVolume       decimal.Decimal `json:"venda_debito" validate:"gte=0"`
	CreditVolume      decimal.Decimal `json:"venda_credito_vista" validate:"gte=0"`
	InstallmentVolume decimal.Decimal `json:"venda_credito_parcelado" validate:"gte=0"`
	Installments      int             `json:"numero_parcelas" validate:"gte=1,lte=12"`
	Sector            *int64          `json:"segmento,omitempty" validate:"omitempty,gt=0"`
	Filters           *FilterCriteria `json:"filtros,omitempty"`
}

// TotalVolume is the sum of the three sales channels in minor units.
func (r SimulationRequest) TotalVolume() decimal.Decimal {
	return r.DebitVolume.Add(r.CreditVolume).Add(r.InstallmentVolume)
}

// Normalize returns a copy with an all-false filter set dropped.
func (r SimulationRequest) Normalize() SimulationRequest {
	out := r
	if out.Filters != nil && out.Filters.IsEmpty() {
		out.Filters = nil
	}
	if out.Filters != nil {
		f := *out.Filters
		out.Filters = &f
	}
	if out.Sector != nil {
		s := *out.Sector
		out.Sector = &s
	}
	return out
}

// CostBreakdown is the effective monthly cost of a plan in major units.
type CostBreakdown struct {
	TransactionFees decimal.Decimal `json:"taxas"`
	Equipment       decimal.Decimal `json:"equipamento"`
	Rental          decimal.Decimal `json:"aluguel"`
	Total           decimal.Decimal `json:"total"`
}

// AppliedRates are the effective per-channel rates used for a result.
type AppliedRates struct {
	Debit       decimal.Decimal `json:"debito"`
	Credit      decimal.Decimal `json:"credito_vista"`
	Installment decimal.Decimal `json:"credito_parcelado"`
}

// SimulationResult is the evaluation of one (terminal, plan) pair.
type SimulationResult struct {
	TerminalID    int64  `json:"maquininha_id"`
	TerminalName  string `json:"maquininha"`
	ImageURL      string `json:"imagem,omitempty"`
	VendorName    string `json:"empresa"`
	VendorLogoURL string `json:"empresa_logo,omitempty"`
	PlanID        int64  `json:"plano_id"`
	PlanName      string `json:"plano"`

	Cost         CostBreakdown `json:"custo"`
	MonthlyCost  float64       `json:"custo_mensal"`
	Rates        AppliedRates  `json:"taxas"`
	Model        BillingModel  `json:"modelo"`
	DiscountPct  *float64      `json:"desconto,omitempty"`
	Price        float64       `json:"valor"`
	PromoPrice   *float64      `json:"valor_promocional,omitempty"`
	MonthlyFee   float64       `json:"aluguel"`
	Rating       float64       `json:"avaliacao"`
	ContractURL  string        `json:"url_contratacao,omitempty"`
	Anticipation bool          `json:"antecipacao"`

	DebitSettlementDays       int        `json:"dias_debito"`
	CreditSettlementDays      int        `json:"dias_credito"`
	InstallmentSettlementDays int        `json:"dias_parcelado"`
	SettlementDayUnit         DayUnit    `json:"tipo_dias"`
	InstallmentPayout         PayoutMode `json:"recebimento_parcelado"`

	WarrantyYears   int      `json:"garantia"`
	MaxInstallments int      `json:"possibilidade_parcelamento"`
	Chip            bool     `json:"chip"`
	MagStripe       bool     `json:"tarja"`
	Contactless     bool     `json:"nfc"`
	RequiresWire    bool     `json:"fio"`
	PrintsReceipt   bool     `json:"imprime_recibo"`
	RequiresPhone   bool     `json:"precisa_celular"`
	Ecommerce       bool     `json:"ecommerce"`
	TransparentFees bool     `json:"taxa_transparente"`
	MealVoucher     bool     `json:"vale_refeicao"`
	SupportsPF      bool     `json:"pf"`
	SupportsPJ      bool     `json:"pj"`
	Connectivity    []string `json:"conexoes,omitempty"`
	CardNetworks    []string `json:"bandeiras,omitempty"`
	ReceiptMethods  []string `json:"forma_recebimento,omitempty"`
}
