package models

// Pricing for a single product line. One unit sells at the unit price, three
// units at a discounted bundle price, any other quantity at unit price times
// quantity.
const (
	UnitPrice      = 890
	BundleQuantity = 3
	BundlePrice    = 1800
)

// DefaultStatus is assigned to every freshly created order.
const DefaultStatus = "new"

// Order represents a customer order in the system. The numeric ID is the
// storage surrogate key; OrderID is the business identifier customers see.
type Order struct {
	ID       int64  `db:"id" json:"id"`
	OrderID  string `db:"order_id" json:"order_id"`
	Name     string `db:"name" json:"name"`
	Phone    string `db:"phone" json:"phone"`
	Quantity int    `db:"quantity" json:"quantity"`
	Price    int    `db:"price" json:"price"`
	Date     string `db:"date" json:"date"`
	Status   string `db:"status" json:"status"`
}

// PriceFor computes the charge for the given quantity.
func PriceFor(quantity int) int {
	switch quantity {
	case 1:
		return UnitPrice
	case BundleQuantity:
		return BundlePrice
	default:
		return quantity * UnitPrice
	}
}

// NewOrder creates a new order with a generated order ID, the derived price
// and the current server time. The price is fixed here and never recomputed.
func NewOrder(name, phone string, quantity int) *Order {
	return &Order{
		OrderID:  GenerateOrderID(GetCurrentTime()),
		Name:     name,
		Phone:    phone,
		Quantity: quantity,
		Price:    PriceFor(quantity),
		Date:     FormatTimestamp(GetCurrentTime()),
		Status:   DefaultStatus,
	}
}
