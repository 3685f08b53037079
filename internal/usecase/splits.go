package usecase

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"checkout_service/internal/domain/entities"
)

const (
	DefaultPlatformFeePercent  = 8.0
	DefaultAffiliateCommission = 5.0
	maxProductSummaryLength    = 500
)

var hundred = decimal.NewFromInt(100)

func percentOf(total, percent float64) decimal.Decimal {
	return decimal.NewFromFloat(total).Mul(decimal.NewFromFloat(percent)).Div(hundred).Round(2)
}

func lineTotal(unitPrice float64, quantity int) float64 {
	return money(decimal.NewFromFloat(unitPrice).Mul(decimal.NewFromInt(int64(quantity))))
}

func money(d decimal.Decimal) float64 {
	f, _ := d.Round(2).Float64()
	return f
}

// ComputeSplits derives the split breakdown of finalTotal. The first requested
// split is the company share and the optional second one the affiliate share.
func ComputeSplits(finalTotal float64, requested []entities.RequestedSplit, platformFeePercent float64) ([]entities.PaymentSplit, error) {
	if len(requested) == 0 {
		return nil, ErrSplitsMissing
	}
	if platformFeePercent <= 0 {
		platformFeePercent = DefaultPlatformFeePercent
	}

	splits := []entities.PaymentSplit{
		{
			Recipient:  entities.SplitRecipientPlatform,
			Percentage: platformFeePercent,
			Amount:     money(percentOf(finalTotal, platformFeePercent)),
		},
		{
			Recipient:  entities.SplitRecipientCompany,
			WalletID:   requested[0].WalletID,
			Percentage: requested[0].Percentage,
			Amount:     money(percentOf(finalTotal, requested[0].Percentage)),
		},
	}
	if len(requested) > 1 {
		splits = append(splits, entities.PaymentSplit{
			Recipient:  entities.SplitRecipientAffiliate,
			WalletID:   requested[1].WalletID,
			Percentage: requested[1].Percentage,
			Amount:     money(percentOf(finalTotal, requested[1].Percentage)),
		})
	}
	return splits, nil
}

// BuildAffiliateSale returns nil unless the checkout has both a coupon and an
// affiliate.
func BuildAffiliateSale(orderID string, v entities.ValidatedCheckout, items []entities.OrderItem, platformFeePercent, defaultCommission float64, now time.Time) *entities.AffiliateSale {
	if !v.HasAffiliateSale() {
		return nil
	}
	if platformFeePercent <= 0 {
		platformFeePercent = DefaultPlatformFeePercent
	}
	rate := v.Affiliate.CommissionRate
	if rate <= 0 {
		rate = defaultCommission
	}
	if rate <= 0 {
		rate = DefaultAffiliateCommission
	}

	gross := decimal.NewFromFloat(v.FinalTotal)
	fee := percentOf(v.FinalTotal, platformFeePercent)

	return &entities.AffiliateSale{
		ID:                  uuid.NewString(),
		OrderID:             orderID,
		AffiliateID:         v.Affiliate.ID,
		CouponID:            v.Coupon.ID,
		CouponCode:          v.Coupon.Code,
		GrossValue:          money(gross),
		CommissionRate:      rate,
		PlatformFee:         money(fee),
		AffiliateCommission: money(percentOf(v.FinalTotal, rate)),
		NetValue:            money(gross.Sub(fee)),
		PaymentStatus:       entities.PaymentStatusPending,
		ProductSummary:      productSummary(items),
		CreatedAt:           now,
	}
}

// ExternalReference is the raw order id, or a versioned JSON document when an
// affiliate sale exists.
func ExternalReference(orderID string, sale *entities.AffiliateSale) string {
	if sale == nil {
		return orderID
	}
	b, err := json.Marshal(entities.AffiliateReference{
		Version:             entities.AffiliateReferenceVersion,
		OrderID:             orderID,
		AffiliateID:         sale.AffiliateID,
		CouponID:            sale.CouponID,
		CouponCode:          sale.CouponCode,
		CommissionRate:      sale.CommissionRate,
		AffiliateCommission: sale.AffiliateCommission,
		PlatformFee:         sale.PlatformFee,
		NetValue:            sale.NetValue,
	})
	if err != nil {
		return orderID
	}
	return string(b)
}

func productSummary(items []entities.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, it.Name+" x"+strconv.Itoa(it.Quantity))
	}
	s := strings.Join(parts, ", ")
	return truncateUTF8(s, maxProductSummaryLength)
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
