package usecase

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"checkout_service/internal/domain/entities"
)

// signedItem and signedPayload define the canonical signed document. Field
// order is part of the contract; product ids are deliberately not signed.
type signedItem struct {
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type signedPayload struct {
	CompanyID   string       `json:"companyId"`
	TotalAmount float64      `json:"totalAmount"`
	Items       []signedItem `json:"items"`
}

// CanonicalSignaturePayload returns the exact bytes that are signed.
func CanonicalSignaturePayload(req entities.CheckoutRequest) []byte {
	p := signedPayload{
		CompanyID:   req.CompanyID,
		TotalAmount: req.TotalAmount,
		Items:       make([]signedItem, 0, len(req.Items)),
	}
	for _, it := range req.Items {
		p.Items = append(p.Items, signedItem{Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}
	// Marshal cannot fail for this shape.
	b, _ := json.Marshal(p)
	return b
}

// ComputeSignature returns the hex encoded HMAC-SHA256 of the canonical payload.
func ComputeSignature(req entities.CheckoutRequest, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(CanonicalSignaturePayload(req))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time. It never reports which field
// differed.
func VerifySignature(req entities.CheckoutRequest, secret, signature string) bool {
	expected, err := hex.DecodeString(ComputeSignature(req, secret))
	if err != nil {
		return false
	}
	got, err := hex.DecodeString(strings.ToLower(strings.TrimSpace(signature)))
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}
