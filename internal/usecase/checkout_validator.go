package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"checkout_service/internal/domain/entities"
	"checkout_service/internal/usecase/interfaces"
)

const (
	FieldCodeRequired          = "REQUIRED"
	FieldCodeInvalid           = "INVALID"
	FieldCodeNotFound          = "NOT_FOUND"
	FieldCodeInactive          = "INACTIVE"
	FieldCodeOutOfStock        = "OUT_OF_STOCK"
	FieldCodePriceMismatch     = "PRICE_MISMATCH"
	FieldCodeTotalMismatch     = "TOTAL_MISMATCH"
	FieldCodeExpired           = "EXPIRED"
	FieldCodeMinOrderNotMet    = "MIN_ORDER_NOT_MET"
	FieldCodeAffiliateMismatch = "AFFILIATE_MISMATCH"
)

var priceTolerance = decimal.NewFromFloat(0.01)

// FieldError is one rejected field of a checkout request.
type FieldError struct {
	Field       string
	Code        string
	Description string
}

// ValidationError carries every field error found in a request.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "validation failed"
	}
	return fmt.Sprintf("validation failed: %s %s", e.Errors[0].Field, e.Errors[0].Code)
}

type fieldErrors []FieldError

func (f *fieldErrors) add(field, code, format string, args ...any) {
	*f = append(*f, FieldError{Field: field, Code: code, Description: fmt.Sprintf(format, args...)})
}

// CatalogCheckoutValidator checks a checkout against the catalog tables.
// All field errors are collected before returning.
type CatalogCheckoutValidator struct {
	catalog interfaces.ICatalogRepository
	logger  *zap.Logger
	now     func() time.Time
}

var _ interfaces.ICheckoutValidator = (*CatalogCheckoutValidator)(nil)

func NewCatalogCheckoutValidator(catalog interfaces.ICatalogRepository, logger *zap.Logger) *CatalogCheckoutValidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogCheckoutValidator{catalog: catalog, logger: logger, now: time.Now}
}

func (v *CatalogCheckoutValidator) Validate(ctx context.Context, req entities.CheckoutRequest) (entities.ValidatedCheckout, error) {
	var errs fieldErrors
	out := entities.ValidatedCheckout{}

	companyID := strings.TrimSpace(req.CompanyID)
	if companyID == "" {
		errs.add("companyId", FieldCodeRequired, "company id is required")
	} else {
		company, err := v.catalog.GetCompany(ctx, companyID)
		if err != nil {
			return out, fmt.Errorf("%w: load company: %w", ErrPersistence, err)
		}
		switch {
		case company.ID == "":
			errs.add("companyId", FieldCodeNotFound, "company not found")
		case company.Status != entities.CompanyStatusActive:
			errs.add("companyId", FieldCodeInactive, "company is not active")
		}
		out.Company = company
	}

	subtotal := decimal.Zero
	if len(req.Items) == 0 {
		errs.add("items", FieldCodeRequired, "at least one item is required")
	}
	out.Products = make([]entities.Product, len(req.Items))
	for i, item := range req.Items {
		field := fmt.Sprintf("items[%d]", i)
		if strings.TrimSpace(item.ProductID) == "" {
			errs.add(field+".productId", FieldCodeRequired, "product id is required")
			continue
		}
		if item.Quantity <= 0 {
			errs.add(field+".quantity", FieldCodeInvalid, "quantity must be greater than zero")
			continue
		}

		product, err := v.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return out, fmt.Errorf("%w: load product: %w", ErrPersistence, err)
		}
		switch {
		case product.ID == "" || (companyID != "" && product.CompanyID != companyID):
			errs.add(field+".productId", FieldCodeNotFound, "product not found")
			continue
		case !product.Active:
			errs.add(field+".productId", FieldCodeInactive, "product is not available")
			continue
		case product.Stock < item.Quantity:
			errs.add(field+".quantity", FieldCodeOutOfStock, "only %d units in stock", product.Stock)
		}
		out.Products[i] = product

		price := decimal.NewFromFloat(product.Price)
		qty := decimal.NewFromInt(int64(item.Quantity))
		if !withinTolerance(decimal.NewFromFloat(item.UnitPrice), price) {
			errs.add(field+".unitPrice", FieldCodePriceMismatch, "unit price does not match the catalog")
		}
		if item.Total != 0 && !withinTolerance(decimal.NewFromFloat(item.Total), decimal.NewFromFloat(item.UnitPrice).Mul(qty)) {
			errs.add(field+".total", FieldCodeTotalMismatch, "line total does not match quantity times unit price")
		}
		subtotal = subtotal.Add(price.Mul(qty))
	}

	discount := decimal.Zero
	code := strings.TrimSpace(req.CouponCode)
	if code != "" && companyID != "" {
		coupon, err := v.catalog.GetCouponByCode(ctx, companyID, code)
		if err != nil {
			return out, fmt.Errorf("%w: load coupon: %w", ErrPersistence, err)
		}
		if d, ok := v.checkCoupon(coupon, subtotal, &errs); ok {
			discount = d
			out.Coupon = &coupon
		}
	}

	affiliateID := strings.TrimSpace(req.AffiliateID)
	if out.Coupon != nil && out.Coupon.AffiliateID != "" {
		switch {
		case affiliateID == "":
			affiliateID = out.Coupon.AffiliateID
		case affiliateID != out.Coupon.AffiliateID:
			errs.add("affiliateId", FieldCodeAffiliateMismatch, "affiliate does not own this coupon")
			affiliateID = ""
		}
	}
	if affiliateID != "" {
		affiliate, err := v.catalog.GetAffiliate(ctx, affiliateID)
		if err != nil {
			return out, fmt.Errorf("%w: load affiliate: %w", ErrPersistence, err)
		}
		switch {
		case affiliate.ID == "":
			errs.add("affiliateId", FieldCodeNotFound, "affiliate not found")
		case affiliate.Status != entities.AffiliateStatusActive:
			errs.add("affiliateId", FieldCodeInactive, "affiliate is not active")
		default:
			out.Affiliate = &affiliate
		}
	}

	if strings.TrimSpace(req.Customer.Email) == "" {
		errs.add("customer.email", FieldCodeRequired, "customer email is required")
	}
	if strings.TrimSpace(req.Customer.Name) == "" {
		errs.add("customer.name", FieldCodeRequired, "customer name is required")
	}

	final := subtotal.Sub(discount)
	if len(req.Items) > 0 && !withinTolerance(decimal.NewFromFloat(req.TotalAmount), final) {
		errs.add("totalAmount", FieldCodeTotalMismatch, "total amount does not match the order total")
	}

	if len(errs) > 0 {
		v.logger.Info("[checkout][validator] request rejected",
			zap.String("company_id", companyID),
			zap.Int("errors", len(errs)),
		)
		return entities.ValidatedCheckout{}, &ValidationError{Errors: errs}
	}

	out.Subtotal = money(subtotal)
	out.DiscountValue = money(discount)
	out.FinalTotal = money(final)
	return out, nil
}

func (v *CatalogCheckoutValidator) checkCoupon(c entities.Coupon, subtotal decimal.Decimal, errs *fieldErrors) (decimal.Decimal, bool) {
	switch {
	case c.ID == "":
		errs.add("couponCode", FieldCodeNotFound, "coupon not found")
		return decimal.Zero, false
	case !c.Active:
		errs.add("couponCode", FieldCodeInactive, "coupon is not active")
		return decimal.Zero, false
	case c.ExpiresAt != nil && !v.now().Before(*c.ExpiresAt):
		errs.add("couponCode", FieldCodeExpired, "coupon has expired")
		return decimal.Zero, false
	case c.MinOrderValue > 0 && subtotal.LessThan(decimal.NewFromFloat(c.MinOrderValue)):
		errs.add("couponCode", FieldCodeMinOrderNotMet, "order does not reach the coupon minimum of %.2f", c.MinOrderValue)
		return decimal.Zero, false
	}

	var d decimal.Decimal
	switch c.DiscountType {
	case entities.DiscountTypePercentage:
		d = subtotal.Mul(decimal.NewFromFloat(c.DiscountValue)).Div(hundred).Round(2)
	case entities.DiscountTypeFixed:
		d = decimal.NewFromFloat(c.DiscountValue)
	default:
		errs.add("couponCode", FieldCodeInvalid, "coupon has an unknown discount type")
		return decimal.Zero, false
	}
	if d.GreaterThan(subtotal) {
		d = subtotal
	}
	if d.IsNegative() {
		d = decimal.Zero
	}
	return d, true
}

func withinTolerance(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(priceTolerance)
}
