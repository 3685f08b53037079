package interfaces

import (
	"context"

	"checkout_service/internal/domain/entities"
)

// ICatalogRepository reads the catalog used to validate checkouts.
// Missing records are returned as zero values with a nil error.
type ICatalogRepository interface {
	GetCompany(ctx context.Context, id string) (entities.Company, error)
	GetProduct(ctx context.Context, id string) (entities.Product, error)
	GetCouponByCode(ctx context.Context, companyID, code string) (entities.Coupon, error)
	GetAffiliate(ctx context.Context, id string) (entities.Affiliate, error)
}
