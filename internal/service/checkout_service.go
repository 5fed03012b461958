package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/veldshoe/storefront_api/internal/models"
	"github.com/veldshoe/storefront_api/internal/utils"
	"github.com/veldshoe/storefront_api/pkg/commerce"
	"github.com/veldshoe/storefront_api/pkg/yoco"
)

// OrderCreator creates orders in the commerce backend. *commerce.Client
// satisfies it.
type OrderCreator interface {
	CreateOrder(ctx context.Context, req *commerce.OrderRequest) (*commerce.OrderResponse, error)
}

// Charger charges payment tokens. *yoco.Client satisfies it.
type Charger interface {
	Charge(ctx context.Context, req *yoco.ChargeRequest) (*yoco.ChargeResponse, error)
}

// CheckoutService turns a session cart into a paid order. The charge always
// precedes order creation: an order is never created as paid unless the
// gateway confirmed the payment first.
type CheckoutService struct {
	orders   OrderCreator
	payments Charger
	cart     *CartService
	currency string
}

// NewCheckoutService constructs a CheckoutService.
func NewCheckoutService(orders OrderCreator, payments Charger, cart *CartService, currency string) *CheckoutService {
	return &CheckoutService{orders: orders, payments: payments, cart: cart, currency: currency}
}

// Checkout validates the request, charges the payment token for the cart
// total, creates the backend order marked paid, and clears the cart.
// Failures are typed: validation errors leave everything untouched, a
// declined charge returns ErrPaymentFailed with no order created, and an
// order-creation failure after a successful charge returns ErrOrderPending
// so the captured payment can be reconciled.
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	if err := validateCheckout(req); err != nil {
		return nil, err
	}

	items, err := s.cart.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, utils.ErrCartEmpty
	}

	total := models.CartTotal(items)
	amountCents := total.Mul(decimal.NewFromInt(100)).Round(0).IntPart()

	// 1. Charge the gateway. Amount is in minor currency units.
	charge, err := s.payments.Charge(ctx, &yoco.ChargeRequest{
		Token:         req.PaymentToken,
		AmountInCents: amountCents,
		Currency:      s.currency,
	})
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("charge failed")
		return nil, fmt.Errorf("%w: %v", utils.ErrPaymentFailed, err)
	}

	// 2. Create the order, marked paid only now that the charge succeeded.
	order, err := s.orders.CreateOrder(ctx, buildOrder(req, items, total, charge.ID))
	if err != nil {
		// Payment is captured but the order is missing; surface this
		// distinctly so it can be reconciled against the charge id.
		log.Error().Err(err).Str("charge_id", charge.ID).Msg("order creation failed after successful charge")
		return nil, fmt.Errorf("%w: charge %s captured", utils.ErrOrderPending, charge.ID)
	}

	if err := s.cart.Clear(ctx, sessionID); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to clear cart after checkout")
	}

	return &models.CheckoutResult{
		OrderID:  commerce.OrderIDString(order.ID),
		ChargeID: charge.ID,
		Total:    total.StringFixed(2),
		Currency: s.currency,
	}, nil
}

// buildOrder assembles the backend order payload from the cart.
func buildOrder(req *models.CheckoutRequest, items []models.CartItem, total decimal.Decimal, chargeID string) *commerce.OrderRequest {
	lines := make([]commerce.OrderLineItem, 0, len(items))
	for i := range items {
		it := &items[i]
		productID, _ := strconv.ParseInt(it.ProductID, 10, 64)
		variationID, _ := strconv.ParseInt(it.VariationID, 10, 64)
		name := it.Name
		if it.VariationName != "" {
			name = fmt.Sprintf("%s - %s", it.Name, it.VariationName)
		}
		lines = append(lines, commerce.OrderLineItem{
			ProductID:   productID,
			VariationID: variationID,
			Name:        name,
			Quantity:    it.Quantity,
			Total:       it.LineTotal().StringFixed(2),
		})
	}

	return &commerce.OrderRequest{
		PaymentMethod:      "yoco",
		PaymentMethodTitle: "Card (Yoco)",
		SetPaid:            true,
		Billing: commerce.OrderBilling{
			FirstName: req.Billing.FirstName,
			LastName:  req.Billing.LastName,
			Email:     req.Billing.Email,
			Phone:     req.Billing.Phone,
			Address1:  req.Billing.Address1,
			Address2:  req.Billing.Address2,
			City:      req.Billing.City,
			Postcode:  req.Billing.Postcode,
			Country:   req.Billing.Country,
		},
		LineItems: lines,
		ShippingLines: []commerce.ShippingLine{
			{MethodID: "flat_rate", MethodTitle: "Flat Rate", Total: "0.00"},
		},
		MetaData: []commerce.OrderMetaData{
			{Key: "_charge_id", Value: chargeID},
		},
	}
}

// validateCheckout rejects requests missing required billing fields or the
// payment token. The check happens before any external call, so a rejection
// has no side effects.
func validateCheckout(req *models.CheckoutRequest) error {
	required := map[string]string{
		"firstName":    req.Billing.FirstName,
		"lastName":     req.Billing.LastName,
		"email":        req.Billing.Email,
		"address1":     req.Billing.Address1,
		"city":         req.Billing.City,
		"postcode":     req.Billing.Postcode,
		"country":      req.Billing.Country,
		"paymentToken": req.PaymentToken,
	}
	var missing []string
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", utils.ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}
