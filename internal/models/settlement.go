package models

import "time"

// TransactionStatus is the settlement status of a sale
type TransactionStatus string

const (
	// TransactionCreated means the winner is known but the seller has not initiated yet
	TransactionCreated         TransactionStatus = "CREATED"
	TransactionInitiated       TransactionStatus = "INITIATED"
	TransactionWaitingPayment  TransactionStatus = "WAITING_PAYMENT"
	TransactionWaitingDelivery TransactionStatus = "WAITING_DELIVERY"
	TransactionPendingReview   TransactionStatus = "PENDING_REVIEW"
	TransactionCompleted       TransactionStatus = "COMPLETED"
	TransactionCancelled       TransactionStatus = "CANCELLED"
)

// Terminal reports whether the transaction can no longer change
func (s TransactionStatus) Terminal() bool {
	return s == TransactionCompleted || s == TransactionCancelled
}

// Transaction is the post-auction settlement between one seller and one buyer
type Transaction struct {
	TransactionID string            `json:"transaction_id"`
	AuctionID     string            `json:"auction_id"`
	ListingID     string            `json:"listing_id"`
	SellerID      string            `json:"seller_id"`
	BuyerID       string            `json:"buyer_id"`
	Amount        float64           `json:"amount"`
	Status        TransactionStatus `json:"status"`
	Rating        int               `json:"rating,omitempty"`
	Comment       string            `json:"comment,omitempty"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

// ActionKind is the type of participant action on a transaction
type ActionKind string

const (
	ActionInitiate        ActionKind = "INITIATE"
	ActionAccept          ActionKind = "ACCEPT"
	ActionConfirmPayment  ActionKind = "CONFIRM_PAYMENT"
	ActionConfirmDelivery ActionKind = "CONFIRM_DELIVERY"
	ActionReview          ActionKind = "REVIEW"
	ActionCancel          ActionKind = "CANCEL"
)

// Valid reports whether k is one of the known action kinds
func (k ActionKind) Valid() bool {
	switch k {
	case ActionInitiate, ActionAccept, ActionConfirmPayment, ActionConfirmDelivery, ActionReview, ActionCancel:
		return true
	}
	return false
}

// ActionPayload carries kind-specific data
type ActionPayload struct {
	Rating  int    `json:"rating,omitempty"`
	Comment string `json:"comment,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

// ActionEvent is an immutable participant-issued record on a transaction
type ActionEvent struct {
	EventID       string            `json:"event_id"`
	TransactionID string            `json:"transaction_id"`
	IssuerID      string            `json:"issuer_id"`
	Kind          ActionKind        `json:"kind"`
	Payload       ActionPayload     `json:"payload"`
	FromStatus    TransactionStatus `json:"from_status"`
	ToStatus      TransactionStatus `json:"to_status"`
	CreatedAt     time.Time         `json:"created_at"`
}
