package model

import "time"

// Status is the auction lifecycle state of a stored notice.
type Status string

const (
	StatusActive        Status = "active"
	StatusSecondAuction Status = "segunda_subasta"
	StatusThirdAuction  Status = "tercera_subasta"
	StatusFinalized     Status = "finalizado"
)

// Currency is the closed set of currencies a base price may be quoted in.
type Currency string

const (
	CurrencyCRC Currency = "CRC"
	CurrencyUSD Currency = "USD"
)

// Remate is one judicial real-estate auction notice extracted from a bulletin.
// Nil pointer fields are unknown values.
type Remate struct {
	Matricula string  `json:"matricula"`
	FincaID   *string `json:"finca_id"`

	Provincia     *string `json:"provincia"`
	Canton        *string `json:"canton"`
	Distrito      *string `json:"distrito"`
	CadastralCode *string `json:"cadastral_code,omitempty"`

	Naturaleza   *string  `json:"naturaleza"`
	Colindancias *string  `json:"colindancias"`
	AreaText     *string  `json:"area_text"`
	AreaNumeric  *float64 `json:"area_numeric"`

	BasePriceText    *string   `json:"base_price_text"`
	BasePriceNumeric *float64  `json:"base_price_numeric"`
	Currency         *Currency `json:"currency"`

	FirstAuctionDate *string `json:"first_auction_date"`
	FirstAuctionTime *string `json:"first_auction_time"`

	SecondAuctionDate     *string  `json:"second_auction_date"`
	SecondAuctionTime     *string  `json:"second_auction_time"`
	SecondAuctionBaseText *string  `json:"second_auction_base_text"`
	SecondAuctionBase     *float64 `json:"second_auction_base"`

	ThirdAuctionDate     *string  `json:"third_auction_date"`
	ThirdAuctionTime     *string  `json:"third_auction_time"`
	ThirdAuctionBaseText *string  `json:"third_auction_base_text"`
	ThirdAuctionBase     *float64 `json:"third_auction_base"`

	CaseType   *string `json:"case_type"`
	CaseNumber *string `json:"case_number"`
	Plaintiff  *string `json:"plaintiff"`
	Defendant  *string `json:"defendant"`
	Court      *string `json:"court"`
	Judge      *string `json:"judge"`

	RawText        string     `json:"raw_text"`
	BulletinNumber *string    `json:"bulletin_number"`
	Status         Status     `json:"status,omitempty"`
	IsActive       bool       `json:"is_active"`
	ExtractionDate *time.Time `json:"extraction_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at,omitzero"`
	UpdatedAt      time.Time  `json:"updated_at,omitzero"`
}

// Tier is one escalation auction (second or third) with its base price.
type Tier struct {
	Date     *string  `json:"date"`
	Time     *string  `json:"time"`
	BaseText *string  `json:"base_text"`
	Base     *float64 `json:"base"`
}

// IsSet reports whether the tier has been scheduled. A tier counts as set
// once its date is known.
func (t Tier) IsSet() bool {
	return t.Date != nil
}

// SecondTier returns the second auction fields as a Tier.
func (r *Remate) SecondTier() Tier {
	return Tier{Date: r.SecondAuctionDate, Time: r.SecondAuctionTime, BaseText: r.SecondAuctionBaseText, Base: r.SecondAuctionBase}
}

// ThirdTier returns the third auction fields as a Tier.
func (r *Remate) ThirdTier() Tier {
	return Tier{Date: r.ThirdAuctionDate, Time: r.ThirdAuctionTime, BaseText: r.ThirdAuctionBaseText, Base: r.ThirdAuctionBase}
}

// SetSecondTier overwrites the second auction fields.
func (r *Remate) SetSecondTier(t Tier) {
	r.SecondAuctionDate, r.SecondAuctionTime, r.SecondAuctionBaseText, r.SecondAuctionBase = t.Date, t.Time, t.BaseText, t.Base
}

// SetThirdTier overwrites the third auction fields.
func (r *Remate) SetThirdTier(t Tier) {
	r.ThirdAuctionDate, r.ThirdAuctionTime, r.ThirdAuctionBaseText, r.ThirdAuctionBase = t.Date, t.Time, t.BaseText, t.Base
}

// RemateUpdate is the partial update applied to an already stored notice.
// Nil tiers are left untouched.
type RemateUpdate struct {
	RawText   string    `json:"raw_text"`
	Second    *Tier     `json:"second,omitempty"`
	Third     *Tier     `json:"third,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Apply mutates r the same way the store applies the update.
func (u RemateUpdate) Apply(r *Remate) {
	r.RawText = u.RawText
	if u.Second != nil {
		r.SetSecondTier(*u.Second)
	}
	if u.Third != nil {
		r.SetThirdTier(*u.Third)
	}
	r.UpdatedAt = u.UpdatedAt
}

// Stats aggregates the stored notices by lifecycle state.
type Stats struct {
	Total         int            `json:"total"`
	Active        int            `json:"active"`
	FirstAuction  int            `json:"first_auction"`
	SecondAuction int            `json:"second_auction"`
	ThirdAuction  int            `json:"third_auction"`
	Finalized     int            `json:"finalized"`
	ByProvince    map[string]int `json:"by_province"`
}

// FailedRecord is a dead-lettered notice the pipeline could not extract or
// persist.
type FailedRecord struct {
	ID             string    `json:"id"`
	BulletinNumber string    `json:"bulletin_number"`
	Reference      string    `json:"reference"`
	Matricula      string    `json:"matricula"`
	ErrorKind      string    `json:"error_kind"`
	Error          string    `json:"error"`
	RawText        string    `json:"raw_text"`
	CreatedAt      time.Time `json:"created_at"`
}
