package models

const (
	PaymentStatusPending           = "pending"
	PaymentStatusWaitingForCapture = "waiting_for_capture"
	PaymentStatusSucceeded         = "succeeded"
	PaymentStatusCanceled          = "canceled"
)

type Amount struct {
	Value    string `json:"value"`
	Currency string `json:"currency"`
}

type Confirmation struct {
	Type            string `json:"type"`
	ConfirmationURL string `json:"confirmation_url,omitempty"`
	ReturnURL       string `json:"return_url,omitempty"`
}

// Payment is the subset of the YooKassa payment object this service uses.
type Payment struct {
	ID           string       `json:"id"`
	Status       string       `json:"status"`
	Paid         bool         `json:"paid"`
	Amount       Amount       `json:"amount"`
	Confirmation Confirmation `json:"confirmation"`
	Description  string       `json:"description,omitempty"`
	CreatedAt    string       `json:"created_at,omitempty"`
}

type CreatePaymentRequest struct {
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

// PaymentNotification is the body YooKassa posts to the notification URL.
type PaymentNotification struct {
	Type   string  `json:"type"`
	Event  string  `json:"event"`
	Object Payment `json:"object"`
}
