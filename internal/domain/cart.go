package domain

// CartItem is a single line in the server cart. The server recomputes
// TotalItemPrice (price * quantity) as the source of truth; the client only
// mirrors it.
type CartItem struct {
	ProductID      string `json:"productId"`
	Name           string `json:"name"`
	Price          int64  `json:"price"`
	Quantity       int    `json:"quantity"`
	TotalItemPrice int64  `json:"totalItemPrice"`
	Image          string `json:"image,omitempty"`
}

// CartSnapshot is the authoritative server view of the cart: an ordered
// item list in server-defined order.
type CartSnapshot struct {
	CartedItems []CartItem `json:"cartedItems"`
}

// ItemCount returns the total number of units across all lines.
func (s CartSnapshot) ItemCount() int {
	var count int
	for _, item := range s.CartedItems {
		count += item.Quantity
	}
	return count
}

// Subtotal sums the server-computed line totals.
func (s CartSnapshot) Subtotal() int64 {
	var total int64
	for _, item := range s.CartedItems {
		total += item.TotalItemPrice
	}
	return total
}

// IsEmpty reports whether the cart has no lines.
func (s CartSnapshot) IsEmpty() bool {
	return len(s.CartedItems) == 0
}

// FindItem returns the index of the line for the given product, or -1.
func (s CartSnapshot) FindItem(productID string) int {
	for i := range s.CartedItems {
		if s.CartedItems[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone returns a deep copy of the snapshot so optimistic local mutations
// never alias the last synced state.
func (s CartSnapshot) Clone() CartSnapshot {
	items := make([]CartItem, len(s.CartedItems))
	copy(items, s.CartedItems)
	return CartSnapshot{CartedItems: items}
}

// Quantity adjustment actions accepted by the cart update endpoint.
const (
	ActionIncrease = "increase"
	ActionDecrease = "decrease"
)

// Flat shipping quote shown on the cart summary. Checkout uses the
// state-specific rate table instead.
const (
	FreeShippingThreshold = 50_000
	FlatShippingFee       = 1_500
)

// FlatShippingQuote returns the cart-summary shipping fee for a subtotal:
// free above the threshold, a flat fee otherwise.
func FlatShippingQuote(subtotal int64) int64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return FlatShippingFee
}

// PendingIntent is a deferred cart add captured when an unauthenticated
// user attempts to add an item. It is replayed exactly once after a
// successful login and discarded on failure.
type PendingIntent struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}
