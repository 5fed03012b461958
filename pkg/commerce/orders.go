package commerce

import (
	"context"
	"net/http"
	"strconv"
)

// OrderBilling mirrors the REST API's billing block.
type OrderBilling struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address1  string `json:"address_1"`
	Address2  string `json:"address_2,omitempty"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

// OrderLineItem is one purchased line on an order.
type OrderLineItem struct {
	ProductID   int64  `json:"product_id"`
	VariationID int64  `json:"variation_id,omitempty"`
	Name        string `json:"name,omitempty"`
	Quantity    int    `json:"quantity"`
	Total       string `json:"total"`
}

// ShippingLine is one shipping charge on an order.
type ShippingLine struct {
	MethodID    string `json:"method_id"`
	MethodTitle string `json:"method_title"`
	Total       string `json:"total"`
}

// OrderMetaData is arbitrary key/value metadata attached to an order.
type OrderMetaData struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// OrderRequest is the payload for order creation.
type OrderRequest struct {
	PaymentMethod      string          `json:"payment_method"`
	PaymentMethodTitle string          `json:"payment_method_title"`
	SetPaid            bool            `json:"set_paid"`
	Billing            OrderBilling    `json:"billing"`
	LineItems          []OrderLineItem `json:"line_items"`
	ShippingLines      []ShippingLine  `json:"shipping_lines,omitempty"`
	MetaData           []OrderMetaData `json:"meta_data,omitempty"`
}

// OrderResponse is the created order as returned by the backend.
type OrderResponse struct {
	ID       int64  `json:"id"`
	OrderKey string `json:"order_key"`
	Status   string `json:"status"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

// CreateOrder creates an order in the commerce backend. Callers must only
// pass SetPaid=true after the payment gateway has confirmed the charge.
func (c *Client) CreateOrder(ctx context.Context, req *OrderRequest) (*OrderResponse, error) {
	var resp OrderResponse
	if err := c.doREST(ctx, http.MethodPost, "/orders", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// OrderIDString formats a numeric order ID for presentation layers keyed by
// string identifiers.
func OrderIDString(id int64) string {
	return strconv.FormatInt(id, 10)
}
