package models

// Billing holds the customer billing details required for order creation.
type Billing struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Postcode  string `json:"postcode"`
	Country   string `json:"country"`
}

// CheckoutRequest is the payload for POST /v1/checkout. The payment token is
// obtained client-side from the gateway's tokenization widget.
type CheckoutRequest struct {
	Billing      Billing `json:"billing"`
	PaymentToken string  `json:"paymentToken"`
}

// CheckoutResult reports a completed checkout.
type CheckoutResult struct {
	OrderID  string `json:"orderId"`
	ChargeID string `json:"chargeId"`
	Total    string `json:"total"`
	Currency string `json:"currency"`
}
