package usecase

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"checkout_service/internal/domain/entities"
)

func TestComputeSplits(t *testing.T) {
	t.Run("missing splits", func(t *testing.T) {
		if _, err := ComputeSplits(100, nil, 8); !errors.Is(err, ErrSplitsMissing) {
			t.Fatalf("expected ErrSplitsMissing, got %v", err)
		}
	})

	t.Run("company only", func(t *testing.T) {
		splits, err := ComputeSplits(250, []entities.RequestedSplit{{WalletID: "w-company", Percentage: 92}}, 8)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(splits) != 2 {
			t.Fatalf("expected platform + company, got %+v", splits)
		}
		if splits[0].Recipient != entities.SplitRecipientPlatform || splits[0].Amount != 20 {
			t.Fatalf("unexpected platform split: %+v", splits[0])
		}
		if splits[1].WalletID != "w-company" || splits[1].Amount != 230 {
			t.Fatalf("unexpected company split: %+v", splits[1])
		}
	})

	t.Run("company and affiliate rounded to cents", func(t *testing.T) {
		splits, err := ComputeSplits(99.99, []entities.RequestedSplit{
			{WalletID: "w-company", Percentage: 87},
			{WalletID: "w-affiliate", Percentage: 5},
		}, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(splits) != 3 {
			t.Fatalf("expected 3 splits, got %+v", splits)
		}
		if splits[0].Percentage != DefaultPlatformFeePercent || splits[0].Amount != 8 {
			t.Fatalf("unexpected platform split: %+v", splits[0])
		}
		if splits[1].Amount != 86.99 || splits[2].Amount != 5 {
			t.Fatalf("unexpected amounts: %+v", splits)
		}
		if splits[2].Recipient != entities.SplitRecipientAffiliate {
			t.Fatalf("second requested split must be the affiliate share")
		}
	})
}

func TestBuildAffiliateSale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	items := []entities.OrderItem{{Name: "Mug", Quantity: 2}, {Name: "Shirt", Quantity: 1}}
	validated := entities.ValidatedCheckout{
		Coupon:     &entities.Coupon{ID: "coupon-1", Code: "PROMO10"},
		Affiliate:  &entities.Affiliate{ID: "aff-1", CommissionRate: 5},
		FinalTotal: 100,
	}

	sale := BuildAffiliateSale("order-1", validated, items, 8, 5, now)
	if sale == nil {
		t.Fatalf("expected a sale")
	}
	if sale.AffiliateCommission != 5 || sale.PlatformFee != 8 || sale.NetValue != 92 || sale.GrossValue != 100 {
		t.Fatalf("unexpected amounts: %+v", sale)
	}
	if sale.ID == "" || sale.OrderID != "order-1" || sale.CouponCode != "PROMO10" || sale.PaymentStatus != entities.PaymentStatusPending {
		t.Fatalf("unexpected sale: %+v", sale)
	}
	if sale.ProductSummary != "Mug x2, Shirt x1" || !sale.CreatedAt.Equal(now) || sale.PaidAt != nil {
		t.Fatalf("unexpected summary/timestamps: %+v", sale)
	}

	t.Run("default commission rate", func(t *testing.T) {
		v := validated
		v.Affiliate = &entities.Affiliate{ID: "aff-1"}
		v.FinalTotal = 200
		s := BuildAffiliateSale("order-2", v, items, 8, 0, now)
		if s.CommissionRate != DefaultAffiliateCommission || s.AffiliateCommission != 10 {
			t.Fatalf("expected 5%% default commission, got %+v", s)
		}
	})

	t.Run("no sale without coupon and affiliate", func(t *testing.T) {
		v := validated
		v.Coupon = nil
		if BuildAffiliateSale("order-3", v, items, 8, 5, now) != nil {
			t.Fatalf("expected nil sale")
		}
	})
}

func TestProductSummary_KeepsValidUTF8(t *testing.T) {
	t.Run("cut never splits a rune", func(t *testing.T) {
		s := strings.Repeat("a", maxProductSummaryLength-1) + "ão"
		got := truncateUTF8(s, maxProductSummaryLength)
		if !utf8.ValidString(got) || len(got) != maxProductSummaryLength-1 {
			t.Fatalf("expected %d valid bytes, got %d valid=%v", maxProductSummaryLength-1, len(got), utf8.ValidString(got))
		}
		if truncateUTF8("Café", 10) != "Café" {
			t.Fatalf("short strings must be untouched")
		}
	})

	t.Run("long multi-byte cart", func(t *testing.T) {
		items := make([]entities.OrderItem, 0, 60)
		for i := 0; i < 60; i++ {
			items = append(items, entities.OrderItem{Name: "Café Orgânico", Quantity: 1})
		}
		got := productSummary(items)
		if len(got) > maxProductSummaryLength || !utf8.ValidString(got) {
			t.Fatalf("summary must be valid UTF-8 within %d bytes, got %d bytes valid=%v", maxProductSummaryLength, len(got), utf8.ValidString(got))
		}
		if !strings.HasPrefix(got, "Café Orgânico x1, ") {
			t.Fatalf("unexpected summary prefix: %q", got[:20])
		}
	})
}

func TestExternalReference(t *testing.T) {
	if got := ExternalReference("order-1", nil); got != "order-1" {
		t.Fatalf("expected raw order id, got %q", got)
	}

	sale := &entities.AffiliateSale{
		AffiliateID: "aff-1", CouponID: "c-1", CouponCode: "PROMO",
		CommissionRate: 5, AffiliateCommission: 5, PlatformFee: 8, NetValue: 92,
	}
	var ref entities.AffiliateReference
	if err := json.Unmarshal([]byte(ExternalReference("order-1", sale)), &ref); err != nil {
		t.Fatalf("expected json reference: %v", err)
	}
	if ref.Version != 1 || ref.OrderID != "order-1" || ref.AffiliateID != "aff-1" || ref.NetValue != 92 {
		t.Fatalf("unexpected reference: %+v", ref)
	}
}
