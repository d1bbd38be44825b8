package settlement

import (
	model "auction-engine/internal/models"
)

// role names the participant allowed to issue an action
type role int

const (
	roleSeller role = iota + 1
	roleBuyer
	roleEither
)

type transition struct {
	issuer role
	to     model.TransactionStatus
}

type transitionKey struct {
	from model.TransactionStatus
	kind model.ActionKind
}

// forward is the only path through a transaction; there is no way back
var forward = map[transitionKey]transition{
	{model.TransactionCreated, model.ActionInitiate}:                {roleSeller, model.TransactionInitiated},
	{model.TransactionInitiated, model.ActionAccept}:                {roleBuyer, model.TransactionWaitingPayment},
	{model.TransactionWaitingPayment, model.ActionConfirmPayment}:   {roleSeller, model.TransactionWaitingDelivery},
	{model.TransactionWaitingDelivery, model.ActionConfirmDelivery}: {roleBuyer, model.TransactionPendingReview},
	{model.TransactionPendingReview, model.ActionReview}:            {roleBuyer, model.TransactionCompleted},
}

// next returns the status an action moves the transaction to, or false when the
// action is not allowed from the current status by that issuer
func next(txn model.Transaction, kind model.ActionKind, issuerID string) (model.TransactionStatus, bool) {
	if txn.Status.Terminal() {
		return "", false
	}

	t, ok := forward[transitionKey{txn.Status, kind}]
	if kind == model.ActionCancel {
		t, ok = transition{roleEither, model.TransactionCancelled}, true
	}
	if !ok {
		return "", false
	}

	switch t.issuer {
	case roleSeller:
		ok = issuerID == txn.SellerID
	case roleBuyer:
		ok = issuerID == txn.BuyerID
	case roleEither:
		ok = issuerID == txn.SellerID || issuerID == txn.BuyerID
	}
	return t.to, ok
}
