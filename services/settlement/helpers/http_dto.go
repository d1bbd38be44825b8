package helpers

import (
	model "auction-engine/internal/models"
)

type SubmitActionRequest struct {
	// EventID is the client's idempotency key; one is generated when absent.
	EventID string           `json:"event_id"`
	Kind    model.ActionKind `json:"kind" binding:"required,oneof=INITIATE ACCEPT CONFIRM_PAYMENT CONFIRM_DELIVERY REVIEW CANCEL"`
	Rating  int              `json:"rating" binding:"omitempty,min=1,max=5"`
	Comment string           `json:"comment" binding:"max=2000"`
	Reason  string           `json:"reason" binding:"max=2000"`
}

type ActionResponse struct {
	TransactionID string                  `json:"transaction_id"`
	EventID       string                  `json:"event_id"`
	NewStatus     model.TransactionStatus `json:"new_status"`
	Duplicate     bool                    `json:"duplicate"`
}

// ToEvent builds the action event issued by issuerID
func (r SubmitActionRequest) ToEvent(transactionID, issuerID, eventID string) model.ActionEvent {
	return model.ActionEvent{
		EventID:       eventID,
		TransactionID: transactionID,
		IssuerID:      issuerID,
		Kind:          r.Kind,
		Payload: model.ActionPayload{
			Rating:  r.Rating,
			Comment: r.Comment,
			Reason:  r.Reason,
		},
	}
}
