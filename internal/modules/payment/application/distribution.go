package application

import (
	"github.com/shopspring/decimal"
	"github.com/trackhaus/trackhaus-backend/internal/modules/payment/domain"
)

// DistributionRules are the fractional shares of a completed sale's amount.
type DistributionRules struct {
	PlatformFee   decimal.Decimal `json:"platform_fee"`
	ArtistShare   decimal.Decimal `json:"artist_share"`
	ProducerShare decimal.Decimal `json:"producer_share"`
}

// DefaultDistributionRules is the platform's standard split.
var DefaultDistributionRules = DistributionRules{
	PlatformFee:   decimal.NewFromFloat(0.10),
	ArtistShare:   decimal.NewFromFloat(0.70),
	ProducerShare: decimal.NewFromFloat(0.20),
}

// Distribution is the breakdown of one sale's amount. Each share is rounded
// to 2 decimal places independently; Remaining carries the rounding
// residual rather than silently folding it into a share.
type Distribution struct {
	PlatformFee   decimal.Decimal `json:"platform_fee"`
	ArtistShare   decimal.Decimal `json:"artist_share"`
	ProducerShare decimal.Decimal `json:"producer_share"`
	Remaining     decimal.Decimal `json:"remaining"`
	Status        string          `json:"status"`
}

// Distribute splits amount according to rules (nil means the default
// split). Rule sets whose shares sum to more than 100% are rejected.
func Distribute(amount decimal.Decimal, rules *DistributionRules) (*Distribution, error) {
	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}
	if rules == nil {
		rules = &DefaultDistributionRules
	}
	if rules.PlatformFee.Add(rules.ArtistShare).Add(rules.ProducerShare).GreaterThan(decimal.NewFromInt(1)) {
		return nil, domain.ErrDistributionRules
	}

	platform := amount.Mul(rules.PlatformFee).Round(2)
	artist := amount.Mul(rules.ArtistShare).Round(2)
	producer := amount.Mul(rules.ProducerShare).Round(2)

	return &Distribution{
		PlatformFee:   platform,
		ArtistShare:   artist,
		ProducerShare: producer,
		Remaining:     amount.Sub(platform).Sub(artist).Sub(producer),
		Status:        "completed",
	}, nil
}

// DistributeSale computes the breakdown for a sale. Sales that never
// reached completion get an all-zero breakdown tagged pending instead of a
// real split.
func DistributeSale(sale *domain.Sale, rules *DistributionRules) (*Distribution, error) {
	if sale.PaymentStatus != domain.PaymentStatusCompleted {
		return &Distribution{
			PlatformFee:   decimal.Zero,
			ArtistShare:   decimal.Zero,
			ProducerShare: decimal.Zero,
			Remaining:     decimal.Zero,
			Status:        "pending",
		}, nil
	}
	return Distribute(sale.Price, rules)
}
