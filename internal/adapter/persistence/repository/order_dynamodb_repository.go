package repository

import (
	"context"
	"fmt"
	"time"

	"checkout_service/internal/domain/entities"
	"checkout_service/internal/usecase/interfaces"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

const (
	defaultOrdersTableName         = "orders"
	defaultAffiliateSalesTableName = "affiliate_sales"
)

type orderLineItem struct {
	ProductID string  `dynamodbav:"product_id"`
	Name      string  `dynamodbav:"name"`
	Quantity  int     `dynamodbav:"quantity"`
	UnitPrice float64 `dynamodbav:"unit_price"`
	Total     float64 `dynamodbav:"total"`
	ImageURL  string  `dynamodbav:"image_url,omitempty"`
}

type paymentSplitItem struct {
	Recipient  string  `dynamodbav:"recipient"`
	WalletID   string  `dynamodbav:"wallet_id,omitempty"`
	Percentage float64 `dynamodbav:"percentage"`
	Amount     float64 `dynamodbav:"amount"`
}

type orderItem struct {
	ID                string             `dynamodbav:"id"`
	CustomerID        string             `dynamodbav:"customer_id"`
	CustomerEmail     string             `dynamodbav:"customer_email"`
	CustomerName      string             `dynamodbav:"customer_name"`
	CustomerPhone     string             `dynamodbav:"customer_phone,omitempty"`
	CompanyID         string             `dynamodbav:"company_id"`
	Items             []orderLineItem    `dynamodbav:"items"`
	Subtotal          float64            `dynamodbav:"subtotal"`
	Discount          float64            `dynamodbav:"discount"`
	Total             float64            `dynamodbav:"total"`
	CouponCode        string             `dynamodbav:"coupon_code,omitempty"`
	CouponID          string             `dynamodbav:"coupon_id,omitempty"`
	AffiliateID       string             `dynamodbav:"affiliate_id,omitempty"`
	Status            string             `dynamodbav:"status"`
	PaymentStatus     string             `dynamodbav:"payment_status"`
	CheckoutURL       string             `dynamodbav:"checkout_url,omitempty"`
	ExternalPaymentID string             `dynamodbav:"external_payment_id,omitempty"`
	Splits            []paymentSplitItem `dynamodbav:"splits,omitempty"`
	CreatedAt         string             `dynamodbav:"created_at"`
	UpdatedAt         string             `dynamodbav:"updated_at"`
}

type affiliateSaleItem struct {
	ID                  string  `dynamodbav:"id"`
	OrderID             string  `dynamodbav:"order_id"`
	AffiliateID         string  `dynamodbav:"affiliate_id"`
	CouponID            string  `dynamodbav:"coupon_id"`
	CouponCode          string  `dynamodbav:"coupon_code"`
	GrossValue          float64 `dynamodbav:"gross_value"`
	CommissionRate      float64 `dynamodbav:"commission_rate"`
	PlatformFee         float64 `dynamodbav:"platform_fee"`
	AffiliateCommission float64 `dynamodbav:"affiliate_commission"`
	NetValue            float64 `dynamodbav:"net_value"`
	PaymentStatus       string  `dynamodbav:"payment_status"`
	ProductSummary      string  `dynamodbav:"product_summary"`
	CreatedAt           string  `dynamodbav:"created_at"`
	PaidAt              string  `dynamodbav:"paid_at,omitempty"`
}

// OrderDynamoRepository persists orders and affiliate sales in DynamoDB.
//
// Table requirements:
//   - orders: PK id (string)
//   - affiliate_sales: PK id (string), GSI order_id-index (PK: order_id)
//
// An order and its affiliate sale are written with one TransactWriteItems
// call, so either both exist or neither does.
type OrderDynamoRepository struct {
	ddb         DynamoDBAPI
	ordersTable string
	salesTable  string
	now         func() time.Time
}

var _ interfaces.IOrderRepository = (*OrderDynamoRepository)(nil)

func NewOrderDynamoRepository(ddb DynamoDBAPI, ordersTable, salesTable string) *OrderDynamoRepository {
	return &OrderDynamoRepository{
		ddb:         ddb,
		ordersTable: orDefault(ordersTable, defaultOrdersTableName),
		salesTable:  orDefault(salesTable, defaultAffiliateSalesTableName),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (r *OrderDynamoRepository) CreateWithAffiliateSale(ctx context.Context, o entities.Order, sale *entities.AffiliateSale) error {
	orderAV, err := attributevalue.MarshalMap(toOrderItem(o))
	if err != nil {
		return err
	}

	writes := []types.TransactWriteItem{{
		Put: &types.Put{
			TableName:                aws.String(r.ordersTable),
			Item:                     orderAV,
			ConditionExpression:      aws.String("attribute_not_exists(#id)"),
			ExpressionAttributeNames: map[string]string{"#id": "id"},
		},
	}}

	if sale != nil {
		saleAV, err := attributevalue.MarshalMap(toAffiliateSaleItem(*sale))
		if err != nil {
			return err
		}
		writes = append(writes, types.TransactWriteItem{
			Put: &types.Put{
				TableName:                aws.String(r.salesTable),
				Item:                     saleAV,
				ConditionExpression:      aws.String("attribute_not_exists(#id)"),
				ExpressionAttributeNames: map[string]string{"#id": "id"},
			},
		})
	}

	_, err = r.ddb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems:      writes,
		ClientRequestToken: aws.String(o.ID),
	})
	if err != nil {
		return fmt.Errorf("transact write order %s: %w", o.ID, err)
	}
	return nil
}

func (r *OrderDynamoRepository) GetByID(ctx context.Context, id string) (entities.Order, error) {
	out, err := r.ddb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.ordersTable),
		Key:            idKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return entities.Order{}, err
	}
	if len(out.Item) == 0 {
		return entities.Order{}, nil
	}

	var it orderItem
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return entities.Order{}, err
	}
	return fromOrderItem(it), nil
}

// ApplyPaymentLink overwrites the link fields with SET only, so applying the
// same link twice yields the same document.
func (r *OrderDynamoRepository) ApplyPaymentLink(ctx context.Context, orderID string, link entities.PaymentLink) (entities.Order, error) {
	splits, err := attributevalue.Marshal(toPaymentSplitItems(link.Splits))
	if err != nil {
		return entities.Order{}, err
	}

	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.ordersTable),
		Key:                 idKey(orderID),
		UpdateExpression:    aws.String("SET external_payment_id = :pid, checkout_url = :url, splits = :splits, updated_at = :now"),
		ConditionExpression: aws.String("attribute_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pid":    &types.AttributeValueMemberS{Value: link.ExternalPaymentID},
			":url":    &types.AttributeValueMemberS{Value: link.CheckoutURL},
			":splits": splits,
			":now":    &types.AttributeValueMemberS{Value: formatTime(r.now())},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return entities.Order{}, nil
	}
	if err != nil {
		return entities.Order{}, err
	}
	return decodeOrder(out.Attributes)
}

// UpdateStatus moves the order from -> to. A zero Order means the order is
// missing or its status is no longer from.
func (r *OrderDynamoRepository) UpdateStatus(ctx context.Context, orderID string, from, to entities.OrderStatus) (entities.Order, error) {
	out, err := r.ddb.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.ordersTable),
		Key:                 idKey(orderID),
		UpdateExpression:    aws.String("SET #status = :to, updated_at = :now"),
		ConditionExpression: aws.String("#status = :from"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":from": &types.AttributeValueMemberS{Value: string(from)},
			":to":   &types.AttributeValueMemberS{Value: string(to)},
			":now":  &types.AttributeValueMemberS{Value: formatTime(r.now())},
		},
		ReturnValues: types.ReturnValueAllNew,
	})
	if isConditionFailed(err) {
		return entities.Order{}, nil
	}
	if err != nil {
		return entities.Order{}, err
	}
	return decodeOrder(out.Attributes)
}

func decodeOrder(av map[string]types.AttributeValue) (entities.Order, error) {
	if len(av) == 0 {
		return entities.Order{}, nil
	}
	var it orderItem
	if err := attributevalue.UnmarshalMap(av, &it); err != nil {
		return entities.Order{}, err
	}
	return fromOrderItem(it), nil
}

func toOrderItem(o entities.Order) orderItem {
	lines := make([]orderLineItem, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, orderLineItem{
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
			Total:     it.Total,
			ImageURL:  it.ImageURL,
		})
	}
	return orderItem{
		ID:                o.ID,
		CustomerID:        o.CustomerID,
		CustomerEmail:     o.CustomerEmail,
		CustomerName:      o.CustomerName,
		CustomerPhone:     o.CustomerPhone,
		CompanyID:         o.CompanyID,
		Items:             lines,
		Subtotal:          o.Subtotal,
		Discount:          o.Discount,
		Total:             o.Total,
		CouponCode:        o.CouponCode,
		CouponID:          o.CouponID,
		AffiliateID:       o.AffiliateID,
		Status:            string(o.Status),
		PaymentStatus:     string(o.PaymentStatus),
		CheckoutURL:       o.CheckoutURL,
		ExternalPaymentID: o.ExternalPaymentID,
		Splits:            toPaymentSplitItems(o.Splits),
		CreatedAt:         formatTime(o.CreatedAt),
		UpdatedAt:         formatTime(o.UpdatedAt),
	}
}

func fromOrderItem(it orderItem) entities.Order {
	lines := make([]entities.OrderItem, 0, len(it.Items))
	for _, l := range it.Items {
		lines = append(lines, entities.OrderItem{
			ProductID: l.ProductID,
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
			Total:     l.Total,
			ImageURL:  l.ImageURL,
		})
	}
	var splits []entities.PaymentSplit
	for _, s := range it.Splits {
		splits = append(splits, entities.PaymentSplit{
			Recipient:  s.Recipient,
			WalletID:   s.WalletID,
			Percentage: s.Percentage,
			Amount:     s.Amount,
		})
	}
	return entities.Order{
		ID:                it.ID,
		CustomerID:        it.CustomerID,
		CustomerEmail:     it.CustomerEmail,
		CustomerName:      it.CustomerName,
		CustomerPhone:     it.CustomerPhone,
		CompanyID:         it.CompanyID,
		Items:             lines,
		Subtotal:          it.Subtotal,
		Discount:          it.Discount,
		Total:             it.Total,
		CouponCode:        it.CouponCode,
		CouponID:          it.CouponID,
		AffiliateID:       it.AffiliateID,
		Status:            entities.OrderStatus(it.Status),
		PaymentStatus:     entities.PaymentStatus(it.PaymentStatus),
		CheckoutURL:       it.CheckoutURL,
		ExternalPaymentID: it.ExternalPaymentID,
		Splits:            splits,
		CreatedAt:         parseTime(it.CreatedAt),
		UpdatedAt:         parseTime(it.UpdatedAt),
	}
}

func toPaymentSplitItems(splits []entities.PaymentSplit) []paymentSplitItem {
	out := make([]paymentSplitItem, 0, len(splits))
	for _, s := range splits {
		out = append(out, paymentSplitItem{
			Recipient:  s.Recipient,
			WalletID:   s.WalletID,
			Percentage: s.Percentage,
			Amount:     s.Amount,
		})
	}
	return out
}

func toAffiliateSaleItem(s entities.AffiliateSale) affiliateSaleItem {
	it := affiliateSaleItem{
		ID:                  s.ID,
		OrderID:             s.OrderID,
		AffiliateID:         s.AffiliateID,
		CouponID:            s.CouponID,
		CouponCode:          s.CouponCode,
		GrossValue:          s.GrossValue,
		CommissionRate:      s.CommissionRate,
		PlatformFee:         s.PlatformFee,
		AffiliateCommission: s.AffiliateCommission,
		NetValue:            s.NetValue,
		PaymentStatus:       string(s.PaymentStatus),
		ProductSummary:      s.ProductSummary,
		CreatedAt:           formatTime(s.CreatedAt),
	}
	if s.PaidAt != nil {
		it.PaidAt = formatTime(*s.PaidAt)
	}
	return it
}
