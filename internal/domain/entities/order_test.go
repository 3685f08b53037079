package entities

import "testing"

func TestOrderStatus_Transitions(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		want bool
	}{
		{OrderStatusCreated, OrderStatusPendingPayment, true},
		{OrderStatusCreated, OrderStatusPaid, false},
		{OrderStatusPendingPayment, OrderStatusPaid, true},
		{OrderStatusPendingPayment, OrderStatusConfirmed, true},
		{OrderStatusPendingPayment, OrderStatusCancelled, true},
		{OrderStatusPendingPayment, OrderStatusExpired, true},
		{OrderStatusPendingPayment, OrderStatusCreated, false},
		{OrderStatusPaid, OrderStatusConfirmed, true},
		{OrderStatusPaid, OrderStatusCancelled, false},
		{OrderStatusCancelled, OrderStatusPendingPayment, false},
		{OrderStatusExpired, OrderStatusCancelled, false},
		{OrderStatusConfirmed, OrderStatusCancelled, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Fatalf("%s -> %s: expected %v got %v", tc.from, tc.to, tc.want, got)
		}
	}
}

func TestOrderStatus_TerminalAndValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusCancelled, OrderStatusExpired, OrderStatusConfirmed} {
		if !s.Terminal() {
			t.Fatalf("expected %s to be terminal", s)
		}
	}
	for _, s := range []OrderStatus{OrderStatusCreated, OrderStatusPendingPayment, OrderStatusPaid} {
		if s.Terminal() {
			t.Fatalf("expected %s to be non-terminal", s)
		}
	}
	if OrderStatus("SHIPPED").Valid() {
		t.Fatalf("unknown status must be invalid")
	}
	if !OrderStatusPendingPayment.Valid() {
		t.Fatalf("expected PENDING_PAYMENT to be valid")
	}
}

func TestValidatedCheckout_HasAffiliateSale(t *testing.T) {
	if (ValidatedCheckout{Coupon: &Coupon{ID: "c"}}).HasAffiliateSale() {
		t.Fatalf("coupon alone must not create a sale")
	}
	if (ValidatedCheckout{Affiliate: &Affiliate{ID: "a"}}).HasAffiliateSale() {
		t.Fatalf("affiliate alone must not create a sale")
	}
	if !(ValidatedCheckout{Coupon: &Coupon{ID: "c"}, Affiliate: &Affiliate{ID: "a"}}).HasAffiliateSale() {
		t.Fatalf("coupon and affiliate must create a sale")
	}
}
