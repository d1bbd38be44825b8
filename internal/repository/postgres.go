package repository

import (
	"auction-engine/internal/biddingerrors"
	model "auction-engine/internal/models"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const uniqueViolation = "23505"

// Schema creates the tables PostgresRepo needs
const Schema = `
CREATE TABLE IF NOT EXISTS auctions (
	auction_id     TEXT PRIMARY KEY,
	listing_id     TEXT NOT NULL,
	seller_id      TEXT NOT NULL,
	starting_price NUMERIC(14,2) NOT NULL,
	increment      NUMERIC(14,2) NOT NULL,
	buy_now_price  NUMERIC(14,2),
	current_bid    NUMERIC(14,2),
	current_bidder TEXT,
	start_time     TIMESTAMPTZ NOT NULL,
	end_time       TIMESTAMPTZ NOT NULL,
	status         TEXT NOT NULL,
	last_sequence  BIGINT NOT NULL DEFAULT 0,
	winner_id      TEXT,
	final_amount   NUMERIC(14,2),
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS auctions_status_end_idx ON auctions (status, end_time);

CREATE TABLE IF NOT EXISTS bids (
	bid_id     TEXT PRIMARY KEY,
	auction_id TEXT NOT NULL REFERENCES auctions (auction_id),
	bidder_id  TEXT NOT NULL,
	sequence   BIGINT NOT NULL,
	amount     NUMERIC(14,2) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	UNIQUE (auction_id, sequence)
);

CREATE TABLE IF NOT EXISTS transactions (
	transaction_id TEXT PRIMARY KEY,
	auction_id     TEXT NOT NULL UNIQUE REFERENCES auctions (auction_id),
	listing_id     TEXT NOT NULL,
	seller_id      TEXT NOT NULL,
	buyer_id       TEXT NOT NULL,
	amount         NUMERIC(14,2) NOT NULL,
	status         TEXT NOT NULL,
	rating         INT NOT NULL DEFAULT 0,
	comment        TEXT NOT NULL DEFAULT '',
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL,
	CHECK (seller_id <> buyer_id)
);

CREATE TABLE IF NOT EXISTS action_events (
	id             BIGSERIAL PRIMARY KEY,
	event_id       TEXT NOT NULL,
	transaction_id TEXT NOT NULL REFERENCES transactions (transaction_id),
	issuer_id      TEXT NOT NULL,
	kind           TEXT NOT NULL,
	rating         INT NOT NULL DEFAULT 0,
	comment        TEXT NOT NULL DEFAULT '',
	reason         TEXT NOT NULL DEFAULT '',
	from_status    TEXT NOT NULL,
	to_status      TEXT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL
);
ALTER TABLE action_events DROP CONSTRAINT IF EXISTS action_events_event_id_key;
CREATE UNIQUE INDEX IF NOT EXISTS action_events_transaction_event_idx ON action_events (transaction_id, event_id);
`

const auctionColumns = `auction_id, listing_id, seller_id, starting_price, increment, buy_now_price,
	current_bid, current_bidder, start_time, end_time, status, last_sequence, winner_id, final_amount,
	created_at, updated_at`

const transactionColumns = `transaction_id, auction_id, listing_id, seller_id, buyer_id, amount, status,
	rating, comment, created_at, updated_at`

// PostgresRepo is the durable AuctionDB and SettlementDB backed by PostgreSQL
type PostgresRepo struct {
	db     *sql.DB
	tracer trace.Tracer
}

// NewPostgresRepo wraps an open database handle
func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{
		db:     db,
		tracer: otel.Tracer("auction-engine/repository"),
	}
}

// Migrate creates the schema if it does not exist
func (r *PostgresRepo) Migrate(ctx context.Context) error {
	ctx, span := r.tracer.Start(ctx, "repository.migrate")
	defer span.End()

	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		span.RecordError(err)
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (model.Auction, error) {
	var (
		a                      model.Auction
		buyNow, current, final sql.NullFloat64
		currentBidder, winner  sql.NullString
		status                 string
	)
	err := row.Scan(&a.AuctionID, &a.ListingID, &a.SellerID, &a.StartingPrice, &a.Increment, &buyNow,
		&current, &currentBidder, &a.StartTime, &a.EndTime, &status, &a.LastSequence, &winner, &final,
		&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return model.Auction{}, err
	}
	a.Status = model.AuctionStatus(status)
	a.BuyNowPrice = nullFloat(buyNow)
	a.CurrentBid = nullFloat(current)
	a.FinalAmount = nullFloat(final)
	a.CurrentBidder = nullString(currentBidder)
	a.WinnerID = nullString(winner)
	return a, nil
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var (
		t      model.Transaction
		status string
	)
	err := row.Scan(&t.TransactionID, &t.AuctionID, &t.ListingID, &t.SellerID, &t.BuyerID, &t.Amount,
		&status, &t.Rating, &t.Comment, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Transaction{}, err
	}
	t.Status = model.TransactionStatus(status)
	return t, nil
}

// CreateAuction inserts a new auction row
func (r *PostgresRepo) CreateAuction(ctx context.Context, a model.Auction) error {
	ctx, span := r.tracer.Start(ctx, "repository.create_auction",
		trace.WithAttributes(attribute.String("auction.id", a.AuctionID)))
	defer span.End()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO auctions (`+auctionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`, a.AuctionID, a.ListingID, a.SellerID, a.StartingPrice, a.Increment, a.BuyNowPrice,
		a.CurrentBid, a.CurrentBidder, a.StartTime, a.EndTime, string(a.Status), a.LastSequence,
		a.WinnerID, a.FinalAmount, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return fmt.Errorf("create auction %s: %w", a.AuctionID, biddingerrors.ErrAlreadyExists)
		}
		return fmt.Errorf("create auction %s: %w", a.AuctionID, err)
	}
	return nil
}

// GetAuction loads one auction row
func (r *PostgresRepo) GetAuction(ctx context.Context, auctionID string) (model.Auction, error) {
	ctx, span := r.tracer.Start(ctx, "repository.get_auction",
		trace.WithAttributes(attribute.String("auction.id", auctionID)))
	defer span.End()

	a, err := scanAuction(r.db.QueryRowContext(ctx, `SELECT `+auctionColumns+` FROM auctions WHERE auction_id = $1`, auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, biddingerrors.ErrAuctionNotFound)
	}
	if err != nil {
		span.RecordError(err)
		return model.Auction{}, fmt.Errorf("get auction %s: %w", auctionID, err)
	}
	return a, nil
}

// ListAuctionsByStatus returns auctions in the given statuses ordered by end time
func (r *PostgresRepo) ListAuctionsByStatus(ctx context.Context, statuses ...model.AuctionStatus) ([]model.Auction, error) {
	ctx, span := r.tracer.Start(ctx, "repository.list_auctions",
		trace.WithAttributes(attribute.Int("status.count", len(statuses))))
	defer span.End()

	query := `SELECT ` + auctionColumns + ` FROM auctions`
	args := make([]any, 0, 1)
	if len(statuses) > 0 {
		names := make([]string, len(statuses))
		for i, s := range statuses {
			names[i] = string(s)
		}
		query += ` WHERE status = ANY($1)`
		args = append(args, pq.Array(names))
	}
	query += ` ORDER BY end_time ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	var out []model.Auction
	for rows.Next() {
		a, err := scanAuction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan auction: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate auctions: %w", err)
	}

	span.SetAttributes(attribute.Int("auctions.loaded", len(out)))
	return out, nil
}

// CommitBid inserts the bid and updates the auction inside one serializable transaction
func (r *PostgresRepo) CommitBid(ctx context.Context, bid model.Bid, a model.Auction) error {
	ctx, span := r.tracer.Start(ctx, "repository.commit_bid",
		trace.WithAttributes(
			attribute.String("auction.id", bid.AuctionID),
			attribute.Int64("bid.sequence", bid.Sequence),
		),
	)
	defer span.End()

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		lastSequence int64
		status       string
	)
	err = tx.QueryRowContext(ctx, `SELECT last_sequence, status FROM auctions WHERE auction_id = $1 FOR UPDATE`, bid.AuctionID).
		Scan(&lastSequence, &status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("commit bid for auction %s: %w", bid.AuctionID, biddingerrors.ErrAuctionNotFound)
	}
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("lock auction %s: %w", bid.AuctionID, err)
	}
	if model.AuctionStatus(status) != model.AuctionActive {
		return fmt.Errorf("commit bid for auction %s: %w - stored status %s", bid.AuctionID, biddingerrors.ErrStatusConflict, status)
	}
	if bid.Sequence != lastSequence+1 {
		span.SetAttributes(attribute.Bool("conflict.detected", true))
		return fmt.Errorf("commit bid for auction %s: %w - expected %d, got %d", bid.AuctionID, biddingerrors.ErrSequenceConflict, lastSequence+1, bid.Sequence)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO bids (bid_id, auction_id, bidder_id, sequence, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, bid.BidID, bid.AuctionID, bid.BidderID, bid.Sequence, bid.Amount, bid.CreatedAt)
	if err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return fmt.Errorf("insert bid %s: %w", bid.BidID, biddingerrors.ErrSequenceConflict)
		}
		return fmt.Errorf("insert bid %s: %w", bid.BidID, err)
	}

	if err := updateAuction(ctx, tx, a); err != nil {
		span.RecordError(err)
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func updateAuction(ctx context.Context, tx *sql.Tx, a model.Auction) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE auctions
		SET current_bid = $2, current_bidder = $3, end_time = $4, status = $5, last_sequence = $6,
		    winner_id = $7, final_amount = $8, updated_at = $9
		WHERE auction_id = $1
	`, a.AuctionID, a.CurrentBid, a.CurrentBidder, a.EndTime, string(a.Status), a.LastSequence,
		a.WinnerID, a.FinalAmount, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update auction %s: %w", a.AuctionID, err)
	}
	return nil
}

// GetBidsByAuction returns accepted bids in sequence order
func (r *PostgresRepo) GetBidsByAuction(ctx context.Context, auctionID string) ([]model.Bid, error) {
	ctx, span := r.tracer.Start(ctx, "repository.get_bids",
		trace.WithAttributes(attribute.String("auction.id", auctionID)))
	defer span.End()

	if _, err := r.GetAuction(ctx, auctionID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT bid_id, auction_id, bidder_id, sequence, amount, created_at
		FROM bids
		WHERE auction_id = $1
		ORDER BY sequence ASC
	`, auctionID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query bids: %w", err)
	}
	defer rows.Close()

	bids := make([]model.Bid, 0)
	for rows.Next() {
		b := model.Bid{Accepted: true}
		if err := rows.Scan(&b.BidID, &b.AuctionID, &b.BidderID, &b.Sequence, &b.Amount, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan bid: %w", err)
		}
		bids = append(bids, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate bids: %w", err)
	}
	return bids, nil
}

// TransitionAuction writes the auction only if its stored status is still from
func (r *PostgresRepo) TransitionAuction(ctx context.Context, a model.Auction, from model.AuctionStatus) error {
	ctx, span := r.tracer.Start(ctx, "repository.transition_auction",
		trace.WithAttributes(
			attribute.String("auction.id", a.AuctionID),
			attribute.String("status.from", string(from)),
			attribute.String("status.to", string(a.Status)),
		),
	)
	defer span.End()

	res, err := r.db.ExecContext(ctx, `
		UPDATE auctions
		SET current_bid = $2, current_bidder = $3, end_time = $4, status = $5, last_sequence = $6,
		    winner_id = $7, final_amount = $8, updated_at = $9
		WHERE auction_id = $1 AND status = $10
	`, a.AuctionID, a.CurrentBid, a.CurrentBidder, a.EndTime, string(a.Status), a.LastSequence,
		a.WinnerID, a.FinalAmount, a.UpdatedAt, string(from))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("transition auction %s: %w", a.AuctionID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition auction %s: %w", a.AuctionID, err)
	}
	if n == 0 {
		if _, err := r.GetAuction(ctx, a.AuctionID); err != nil {
			return err
		}
		return fmt.Errorf("transition auction %s: %w - expected %s", a.AuctionID, biddingerrors.ErrStatusConflict, from)
	}
	return nil
}

// CreateTransaction inserts a settlement transaction
func (r *PostgresRepo) CreateTransaction(ctx context.Context, t model.Transaction) error {
	ctx, span := r.tracer.Start(ctx, "repository.create_transaction",
		trace.WithAttributes(
			attribute.String("transaction.id", t.TransactionID),
			attribute.String("auction.id", t.AuctionID),
		),
	)
	defer span.End()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, t.TransactionID, t.AuctionID, t.ListingID, t.SellerID, t.BuyerID, t.Amount, string(t.Status),
		t.Rating, t.Comment, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return fmt.Errorf("create transaction for auction %s: %w", t.AuctionID, biddingerrors.ErrAlreadyExists)
		}
		return fmt.Errorf("create transaction %s: %w", t.TransactionID, err)
	}
	return nil
}

// GetTransaction loads one transaction
func (r *PostgresRepo) GetTransaction(ctx context.Context, transactionID string) (model.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "repository.get_transaction",
		trace.WithAttributes(attribute.String("transaction.id", transactionID)))
	defer span.End()

	t, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE transaction_id = $1`, transactionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("get transaction %s: %w", transactionID, biddingerrors.ErrTransactionNotFound)
	}
	if err != nil {
		span.RecordError(err)
		return model.Transaction{}, fmt.Errorf("get transaction %s: %w", transactionID, err)
	}
	return t, nil
}

// GetTransactionByAuction loads the transaction seeded by an auction
func (r *PostgresRepo) GetTransactionByAuction(ctx context.Context, auctionID string) (model.Transaction, error) {
	ctx, span := r.tracer.Start(ctx, "repository.get_transaction_by_auction",
		trace.WithAttributes(attribute.String("auction.id", auctionID)))
	defer span.End()

	t, err := scanTransaction(r.db.QueryRowContext(ctx, `SELECT `+transactionColumns+` FROM transactions WHERE auction_id = $1`, auctionID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, fmt.Errorf("get transaction for auction %s: %w", auctionID, biddingerrors.ErrTransactionNotFound)
	}
	if err != nil {
		span.RecordError(err)
		return model.Transaction{}, fmt.Errorf("get transaction for auction %s: %w", auctionID, err)
	}
	return t, nil
}

// FindActionEvent returns the logged event with this id on the transaction, if any
func (r *PostgresRepo) FindActionEvent(ctx context.Context, transactionID, eventID string) (model.ActionEvent, bool, error) {
	ctx, span := r.tracer.Start(ctx, "repository.find_action_event",
		trace.WithAttributes(
			attribute.String("transaction.id", transactionID),
			attribute.String("event.id", eventID),
		),
	)
	defer span.End()

	var (
		e              model.ActionEvent
		kind, from, to string
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT event_id, transaction_id, issuer_id, kind, rating, comment, reason, from_status, to_status, created_at
		FROM action_events
		WHERE transaction_id = $1 AND event_id = $2
	`, transactionID, eventID).Scan(&e.EventID, &e.TransactionID, &e.IssuerID, &kind, &e.Payload.Rating,
		&e.Payload.Comment, &e.Payload.Reason, &from, &to, &e.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.ActionEvent{}, false, nil
	}
	if err != nil {
		span.RecordError(err)
		return model.ActionEvent{}, false, fmt.Errorf("find action event %s: %w", eventID, err)
	}
	e.Kind = model.ActionKind(kind)
	e.FromStatus = model.TransactionStatus(from)
	e.ToStatus = model.TransactionStatus(to)
	return e, true, nil
}

// ApplyActionEvent appends the event and updates the transaction status atomically
func (r *PostgresRepo) ApplyActionEvent(ctx context.Context, e model.ActionEvent, t model.Transaction) error {
	ctx, span := r.tracer.Start(ctx, "repository.apply_action_event",
		trace.WithAttributes(
			attribute.String("transaction.id", e.TransactionID),
			attribute.String("event.id", e.EventID),
			attribute.String("event.kind", string(e.Kind)),
		),
	)
	defer span.End()

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $2, rating = $3, comment = $4, updated_at = $5
		WHERE transaction_id = $1 AND status = $6
	`, t.TransactionID, string(t.Status), t.Rating, t.Comment, t.UpdatedAt, string(e.FromStatus))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("update transaction %s: %w", t.TransactionID, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return fmt.Errorf("update transaction %s: %w", t.TransactionID, err)
	} else if n == 0 {
		return fmt.Errorf("apply event %s: %w - expected %s", e.EventID, biddingerrors.ErrStatusConflict, e.FromStatus)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO action_events (event_id, transaction_id, issuer_id, kind, rating, comment, reason, from_status, to_status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, e.EventID, e.TransactionID, e.IssuerID, string(e.Kind), e.Payload.Rating, e.Payload.Comment,
		e.Payload.Reason, string(e.FromStatus), string(e.ToStatus), e.CreatedAt)
	if err != nil {
		span.RecordError(err)
		if isUniqueViolation(err) {
			return fmt.Errorf("apply event %s: %w", e.EventID, biddingerrors.ErrDuplicateEvent)
		}
		return fmt.Errorf("insert action event %s: %w", e.EventID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListActionEvents returns the immutable log in append order
func (r *PostgresRepo) ListActionEvents(ctx context.Context, transactionID string) ([]model.ActionEvent, error) {
	ctx, span := r.tracer.Start(ctx, "repository.list_action_events",
		trace.WithAttributes(attribute.String("transaction.id", transactionID)))
	defer span.End()

	if _, err := r.GetTransaction(ctx, transactionID); err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT event_id, transaction_id, issuer_id, kind, rating, comment, reason, from_status, to_status, created_at
		FROM action_events
		WHERE transaction_id = $1
		ORDER BY id ASC
	`, transactionID)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("query action events: %w", err)
	}
	defer rows.Close()

	events := make([]model.ActionEvent, 0)
	for rows.Next() {
		var (
			e              model.ActionEvent
			kind, from, to string
		)
		if err := rows.Scan(&e.EventID, &e.TransactionID, &e.IssuerID, &kind, &e.Payload.Rating,
			&e.Payload.Comment, &e.Payload.Reason, &from, &to, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan action event: %w", err)
		}
		e.Kind = model.ActionKind(kind)
		e.FromStatus = model.TransactionStatus(from)
		e.ToStatus = model.TransactionStatus(to)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate action events: %w", err)
	}
	return events, nil
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := strings.Clone(v.String)
	return &s
}
