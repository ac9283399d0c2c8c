package domain

// Size is the pizza size of an order.
type Size string

const (
	SizeUnset Size = ""
	SizeSmall Size = "small"
	SizeLarge Size = "large"
)

// PaymentMethod is how the customer pays for an order.
type PaymentMethod string

const (
	PaymentUnset PaymentMethod = ""
	PaymentCash  PaymentMethod = "cash"
	PaymentCard  PaymentMethod = "card"
)

const (
	// DefaultSize is shown in the order summary when the user never chose a size.
	DefaultSize = SizeLarge
	// DefaultPayment is shown in the order summary when the user never chose a payment method.
	DefaultPayment = PaymentCash
)

// Order is the data accumulated during one ordering cycle.
type Order struct {
	Size    Size          `json:"size"`
	Payment PaymentMethod `json:"payment"`
}

// NewOrder returns an order pre-populated with the default size and payment method.
func NewOrder() Order {
	return Order{
		Size:    DefaultSize,
		Payment: DefaultPayment,
	}
}
