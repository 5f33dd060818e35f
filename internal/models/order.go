package models

import "time"

// OrderType is how the customer receives the order.
type OrderType string

const (
	OrderDineIn   OrderType = "DINE_IN"
	OrderTakeaway OrderType = "TAKEAWAY"
	OrderDelivery OrderType = "DELIVERY"
	OrderPreorder OrderType = "PREORDER"
)

// OrderStatus is the fulfillment state of an order.
type OrderStatus string

const (
	OrderNew        OrderStatus = "NEW"
	OrderInProgress OrderStatus = "IN_PROGRESS"
	OrderReady      OrderStatus = "READY"
	OrderCompleted  OrderStatus = "COMPLETED"
	OrderCancelled  OrderStatus = "CANCELLED"
)

// PaymentMethod is how a payment was tendered.
type PaymentMethod string

const (
	PayCash PaymentMethod = "CASH"
	PayCard PaymentMethod = "CARD"
	PayQR   PaymentMethod = "QR"
	PayBank PaymentMethod = "BANK"
)

// OrderItem is one cart line on an order.
type OrderItem struct {
	ID           UUID             `json:"id"`
	ProductID    UUID             `json:"productId"`
	ProductName  string           `json:"productName"`
	BasePrice    float64          `json:"basePrice"`
	Quantity     int              `json:"quantity"`
	Variants     []ProductVariant `json:"variants,omitempty"`
	Note         string           `json:"note,omitempty"`
	LineDiscount float64          `json:"lineDiscount,omitempty"`
	LineTotal    float64          `json:"lineTotal"`
}

// Payment is one normalized tender against an order.
type Payment struct {
	ID        UUID          `json:"id"`
	Method    PaymentMethod `json:"method"`
	Amount    float64       `json:"amount"`
	Reference string        `json:"reference,omitempty"`
}

// Order is a completed sale. Synced tracks remote durability and is
// independent of the outbox: an order written directly to the remote service
// is synced without ever having had a queue entry.
type Order struct {
	ID         UUID        `json:"id"`
	OrderNo    string      `json:"orderNo"`
	SessionID  UUID        `json:"sessionId"`
	CashierID  UUID        `json:"cashierId"`
	OrderType  OrderType   `json:"orderType"`
	Status     OrderStatus `json:"status"`
	Items      []OrderItem `json:"items"`
	Payments   []Payment   `json:"payments"`
	Subtotal   float64     `json:"subtotal"`
	Discount   float64     `json:"discount"`
	Tax        float64     `json:"tax"`
	Total      float64     `json:"total"`
	Note       string      `json:"note,omitempty"`
	PickupTime *time.Time  `json:"pickupTime,omitempty"`
	CreatedAt  time.Time   `json:"createdAt"`
	PrintedAt  *time.Time  `json:"printedAt,omitempty"`
	Synced     bool        `json:"synced"`
}

// OrderRow is the remote table shape for orders. The conflict key for
// upserts is order_no, which makes re-sending a partially synced order safe.
type OrderRow struct {
	ID         string      `json:"id"`
	OrderNo    string      `json:"order_no"`
	SessionID  *string     `json:"session_id"`
	CashierID  string      `json:"cashier_id"`
	OrderType  string      `json:"order_type"`
	Status     string      `json:"status"`
	Items      []OrderItem `json:"items"`
	Payments   []Payment   `json:"payments"`
	Subtotal   float64     `json:"subtotal"`
	Discount   float64     `json:"discount"`
	Tax        float64     `json:"tax"`
	Total      float64     `json:"total"`
	Note       *string     `json:"note"`
	PickupTime *time.Time  `json:"pickup_time"`
	CreatedAt  time.Time   `json:"created_at"`
	PrintedAt  *time.Time  `json:"printed_at"`
}

// TableName returns the remote table for OrderRow.
func (OrderRow) TableName() string {
	return "orders"
}

// Row converts the local record into the remote table shape. A blank
// session reference becomes NULL remotely.
func (o Order) Row() OrderRow {
	r := OrderRow{
		ID:         string(o.ID),
		OrderNo:    o.OrderNo,
		CashierID:  string(o.CashierID),
		OrderType:  string(o.OrderType),
		Status:     string(o.Status),
		Items:      o.Items,
		Payments:   o.Payments,
		Subtotal:   o.Subtotal,
		Discount:   o.Discount,
		Tax:        o.Tax,
		Total:      o.Total,
		PickupTime: o.PickupTime,
		CreatedAt:  o.CreatedAt,
		PrintedAt:  o.PrintedAt,
	}
	if o.SessionID != "" {
		sid := string(o.SessionID)
		r.SessionID = &sid
	}
	if o.Note != "" {
		r.Note = &o.Note
	}
	return r
}
