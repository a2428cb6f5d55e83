package domain

// Address is the shipping address collected at checkout. All fields except
// Country must be filled before an order can be submitted.
type Address struct {
	FullName string `json:"fullName" validate:"required"`
	Address  string `json:"address" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required"`
	Phone    string `json:"phone" validate:"required"`
	Country  string `json:"country"`
}

// ShippingRate is one row of the server-provided rate table. The checkout
// shipping selection must come from this table.
type ShippingRate struct {
	ID    string `json:"_id"`
	State string `json:"state"`
	Price int64  `json:"price"`
}

// OrderItem is a line of a created order as returned by the backend.
type OrderItem struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// Order is the server-side order. The client holds only its identifier
// between creation and verification; the full record is fetched for the
// receipt view.
type Order struct {
	ID              string      `json:"_id"`
	OrderItems      []OrderItem `json:"orderItems,omitempty"`
	ShippingAddress *Address    `json:"shippingAddress,omitempty"`
	TotalPrice      int64       `json:"totalPrice"`
	PaymentMethod   string      `json:"paymentMethod,omitempty"`
	OrderStatus     string      `json:"orderStatus,omitempty"`
	TrackingNumber  string      `json:"trackingNumber,omitempty"`
	InvoiceURL      string      `json:"invoiceUrl,omitempty"`
}

// Product is a catalog entry.
type Product struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Image       string `json:"image,omitempty"`
	Category    string `json:"category,omitempty"`
	Description string `json:"description,omitempty"`
}

// CheckoutTotals is the priced summary for a checkout attempt: the cart
// subtotal plus the selected shipping rate.
type CheckoutTotals struct {
	Subtotal int64
	Shipping int64
	Total    int64
}

// ComputeTotals prices a checkout attempt from the cart snapshot and the
// selected shipping rate. A nil rate contributes zero shipping, matching
// the summary shown before a state is chosen.
func ComputeTotals(snapshot *CartSnapshot, rate *ShippingRate) CheckoutTotals {
	subtotal := snapshot.Subtotal()
	var shipping int64
	if rate != nil {
		shipping = rate.Price
	}
	return CheckoutTotals{
		Subtotal: subtotal,
		Shipping: shipping,
		Total:    subtotal + shipping,
	}
}
