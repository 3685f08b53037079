package repository

import (
	"context"

	"checkout_service/internal/domain/entities"
	"checkout_service/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const couponsCodeIndex = "code-index"

// CatalogTables names the catalog tables. Empty names fall back to the
// defaults (companies, products, coupons, affiliates).
type CatalogTables struct {
	Companies  string
	Products   string
	Coupons    string
	Affiliates string
}

type companyItem struct {
	ID       string `dynamodbav:"id"`
	Name     string `dynamodbav:"name"`
	Status   string `dynamodbav:"status"`
	WalletID string `dynamodbav:"wallet_id,omitempty"`
}

type productItem struct {
	ID          string  `dynamodbav:"id"`
	CompanyID   string  `dynamodbav:"company_id"`
	Name        string  `dynamodbav:"name"`
	Description string  `dynamodbav:"description,omitempty"`
	Price       float64 `dynamodbav:"price"`
	Stock       int     `dynamodbav:"stock"`
	ImageURL    string  `dynamodbav:"image_url,omitempty"`
	Active      bool    `dynamodbav:"active"`
}

type couponItem struct {
	ID            string  `dynamodbav:"id"`
	Code          string  `dynamodbav:"code"`
	CompanyID     string  `dynamodbav:"company_id"`
	AffiliateID   string  `dynamodbav:"affiliate_id,omitempty"`
	DiscountType  string  `dynamodbav:"discount_type"`
	DiscountValue float64 `dynamodbav:"discount_value"`
	MinOrderValue float64 `dynamodbav:"min_order_value,omitempty"`
	Active        bool    `dynamodbav:"active"`
	ExpiresAt     string  `dynamodbav:"expires_at,omitempty"`
}

type affiliateItem struct {
	ID             string  `dynamodbav:"id"`
	UserID         string  `dynamodbav:"user_id"`
	Status         string  `dynamodbav:"status"`
	CommissionRate float64 `dynamodbav:"commission_rate"`
	WalletID       string  `dynamodbav:"wallet_id,omitempty"`
}

// CatalogDynamoRepository reads companies, products, coupons and affiliates.
//
// Table requirements:
//   - every table: PK id (string)
//   - coupons: GSI code-index (PK: code)
type CatalogDynamoRepository struct {
	ddb    DynamoDBAPI
	tables CatalogTables
}

var _ interfaces.ICatalogRepository = (*CatalogDynamoRepository)(nil)

func NewCatalogDynamoRepository(ddb DynamoDBAPI, tables CatalogTables) *CatalogDynamoRepository {
	tables.Companies = orDefault(tables.Companies, "companies")
	tables.Products = orDefault(tables.Products, "products")
	tables.Coupons = orDefault(tables.Coupons, "coupons")
	tables.Affiliates = orDefault(tables.Affiliates, "affiliates")
	return &CatalogDynamoRepository{ddb: ddb, tables: tables}
}

func (r *CatalogDynamoRepository) GetCompany(ctx context.Context, id string) (entities.Company, error) {
	var it companyItem
	found, err := r.getByID(ctx, r.tables.Companies, id, &it)
	if err != nil || !found {
		return entities.Company{}, err
	}
	return entities.Company(it), nil
}

func (r *CatalogDynamoRepository) GetProduct(ctx context.Context, id string) (entities.Product, error) {
	var it productItem
	found, err := r.getByID(ctx, r.tables.Products, id, &it)
	if err != nil || !found {
		return entities.Product{}, err
	}
	return entities.Product(it), nil
}

func (r *CatalogDynamoRepository) GetAffiliate(ctx context.Context, id string) (entities.Affiliate, error) {
	var it affiliateItem
	found, err := r.getByID(ctx, r.tables.Affiliates, id, &it)
	if err != nil || !found {
		return entities.Affiliate{}, err
	}
	return entities.Affiliate(it), nil
}

// GetCouponByCode looks the code up in the code index and keeps the coupon
// owned by companyID. Codes are unique per company, not globally.
func (r *CatalogDynamoRepository) GetCouponByCode(ctx context.Context, companyID, code string) (entities.Coupon, error) {
	out, err := r.ddb.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tables.Coupons),
		IndexName:              aws.String(couponsCodeIndex),
		KeyConditionExpression: aws.String("code = :code"),
		FilterExpression:       aws.String("company_id = :cid"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":code": &types.AttributeValueMemberS{Value: code},
			":cid":  &types.AttributeValueMemberS{Value: companyID},
		},
	})
	if err != nil {
		return entities.Coupon{}, err
	}
	if len(out.Items) == 0 {
		return entities.Coupon{}, nil
	}

	var it couponItem
	if err := attributevalue.UnmarshalMap(out.Items[0], &it); err != nil {
		return entities.Coupon{}, err
	}
	return entities.Coupon{
		ID:            it.ID,
		Code:          it.Code,
		CompanyID:     it.CompanyID,
		AffiliateID:   it.AffiliateID,
		DiscountType:  entities.DiscountType(it.DiscountType),
		DiscountValue: it.DiscountValue,
		MinOrderValue: it.MinOrderValue,
		Active:        it.Active,
		ExpiresAt:     parseTimePtr(it.ExpiresAt),
	}, nil
}

func (r *CatalogDynamoRepository) getByID(ctx context.Context, table, id string, dst any) (bool, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       idKey(id),
	})
	if err != nil {
		return false, err
	}
	if len(out.Item) == 0 {
		return false, nil
	}
	if err := attributevalue.UnmarshalMap(out.Item, dst); err != nil {
		return false, err
	}
	return true, nil
}
