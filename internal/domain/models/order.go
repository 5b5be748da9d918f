package models

import "time"

// Side of a fill or order intent.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// OrderType distinguishes market from limit intents. The core only
// emits market orders; limit support lives with the broker collaborator.
type OrderType string

const (
	OrderTypeMarket OrderType = "MARKET"
	OrderTypeLimit  OrderType = "LIMIT"
)

// Fill records a completed (accepted) order execution in the ledger.
type Fill struct {
	ID        string
	Timestamp time.Time
	Side      Side
	Quantity  float64
	Price     float64
}

// OrderIntent is what the core hands to a broker collaborator.
type OrderIntent struct {
	Symbol    string
	Quantity  float64
	Side      Side
	OrderType OrderType
}

// OrderStatus is the collaborator's verdict on an order intent.
type OrderStatus string

const (
	OrderStatusSuccess OrderStatus = "success"
	OrderStatusFailed  OrderStatus = "failed"
)

// OrderResult is returned by a broker collaborator for an order intent.
type OrderResult struct {
	Status      OrderStatus
	OrderID     string
	RawResponse string
}

// OpenPosition describes a currently held position at a broker.
type OpenPosition struct {
	Symbol   string
	Quantity float64
}

// EquityPoint is one mark-to-market sample of the equity curve:
// cash + position x last close.
type EquityPoint struct {
	Timestamp time.Time
	Equity    float64
}
