package entity

import "time"

type PaymentKind string

const (
	PaymentKindCard PaymentKind = "card"
	PaymentKindPix  PaymentKind = "pix"
)

type PaymentStatus string

const (
	PaymentStatusCreated   PaymentStatus = "created"
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusApproved  PaymentStatus = "approved"
	PaymentStatusRejected  PaymentStatus = "rejected"
	PaymentStatusInProcess PaymentStatus = "in_process"
)

// Terminal reports whether no further transition is expected.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusApproved || s == PaymentStatusRejected
}

type Identification struct {
	Type   string `json:"type"`
	Number string `json:"number"`
}

type Payer struct {
	Email          string         `json:"email"`
	FirstName      string         `json:"first_name,omitempty"`
	LastName       string         `json:"last_name,omitempty"`
	Identification Identification `json:"identification"`
}

// PaymentIntent is one checkout attempt. Amount is snapshotted from the
// cart at creation time and is not re-read from the catalog afterwards.
type PaymentIntent struct {
	Kind       PaymentKind   `json:"kind"`
	Amount     float64       `json:"amount"`
	ExternalID string        `json:"external_id"`
	Status     PaymentStatus `json:"status"`
	Payer      Payer         `json:"payer"`

	// Pix presentation fields, empty for card intents.
	QRCode       string `json:"qr_code,omitempty"`
	QRCodeBase64 string `json:"qr_code_base64,omitempty"`
	WatchID      string `json:"watch_id,omitempty"`
}

// OrderRecord is the archived snapshot of a finalized attempt. Records are
// append-only; both flows write exactly one record when a terminal status
// is reached.
type OrderRecord struct {
	Type         PaymentKind   `json:"type"`
	Payer        Payer         `json:"payer"`
	Amount       float64       `json:"amount"`
	Installments int           `json:"installments,omitempty"`
	PaymentID    string        `json:"payment_id"`
	Status       PaymentStatus `json:"status"`
	StatusDetail string        `json:"status_detail,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}
