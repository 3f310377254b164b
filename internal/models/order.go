package models

import "time"

const (
	OrderStatusPending  = "pending"
	OrderStatusPaid     = "paid"
	OrderStatusCanceled = "canceled"

	DeliveryTypePickup   = "pickup"
	DeliveryTypeDelivery = "delivery"
)

type OrderItem struct {
	ID       int64   `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
}

type Order struct {
	ID           int64       `json:"id"`
	UserID       int64       `json:"userId"`
	Items        []OrderItem `json:"items"`
	TotalAmount  float64     `json:"totalAmount"`
	Status       string      `json:"status"`
	Phone        string      `json:"phone"`
	DeliveryType string      `json:"deliveryType"`
	Address      *string     `json:"address"`
	PaymentID    *string     `json:"paymentId"`
	CreatedAt    time.Time   `json:"createdAt"`
	UpdatedAt    time.Time   `json:"updatedAt"`
	User         PublicUser  `json:"user"`
}

type CreateOrderRequest struct {
	Items        []OrderItem `json:"items"`
	Phone        string      `json:"phone"`
	DeliveryType string      `json:"deliveryType"`
	Address      *string     `json:"address,omitempty"`
}

type OrderPayment struct {
	ID              string `json:"id"`
	ConfirmationURL string `json:"confirmationUrl"`
}

type CreateOrderResponse struct {
	Order   Order        `json:"order"`
	Payment OrderPayment `json:"payment"`
}
