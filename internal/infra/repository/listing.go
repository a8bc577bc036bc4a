package repository

import (
	"context"
	"errors"
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"
	"bookmarket/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/google/uuid"
)

const uniqueViolation = "23505"

const listingColumns = `
	id, isbn, title, author, condition,
	source_appraisal_id, purchase_request_id, status,
	offer_amount, listing_amount, currency,
	held_by_order_id, held_until, sold_at, withdraw_reason,
	created_at, updated_at`

type ListingRepository struct {
	db *pgxpool.Pool
}

func NewListingRepository(db *pgxpool.Pool) *ListingRepository {
	return &ListingRepository{db: db}
}

func (r *ListingRepository) Create(ctx context.Context, l *listing.Listing) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO listings (
			id, isbn, title, author, condition,
			source_appraisal_id, purchase_request_id, status,
			offer_amount, listing_amount, currency,
			held_by_order_id, held_until, sold_at, withdraw_reason,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17)`,
		l.ID(), l.Book().ISBN(), l.Book().Title(), l.Book().Author(), l.Book().Condition().String(),
		l.SourceAppraisalID(), l.PurchaseRequestID(), string(l.Status()),
		l.OfferPrice().Amount(), l.ListingPrice().Amount(), l.ListingPrice().Currency().String(),
		l.HeldByOrderID(), l.HeldUntil(), l.SoldAt(), l.WithdrawReason(),
		l.CreatedAt(), l.UpdatedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return infra.WrapRepoErr(infra.KindDuplicateKey, "listing already exists", err)
		}
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to insert listing", err)
	}
	return nil
}

func (r *ListingRepository) FindByID(ctx context.Context, id uuid.UUID) (*listing.Listing, error) {
	row := r.db.QueryRow(ctx, `SELECT`+listingColumns+` FROM listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "listing not found")
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load listing", err)
	}
	return l, nil
}

// UpdateIfStatus writes the whole row conditionally on the stored status.
// RowsAffected == 0 with an existing row means some concurrent writer moved
// the listing first; that is the CONFLICT the hold handoff keys on.
func (r *ListingRepository) UpdateIfStatus(ctx context.Context, next *listing.Listing, expected listing.Status) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE listings SET
			status = $2,
			held_by_order_id = $3,
			held_until = $4,
			sold_at = $5,
			withdraw_reason = $6,
			updated_at = $7
		WHERE id = $1 AND status = $8`,
		next.ID(), string(next.Status()),
		next.HeldByOrderID(), next.HeldUntil(), next.SoldAt(), next.WithdrawReason(),
		next.UpdatedAt(), string(expected),
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update listing", err)
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)`, next.ID()).Scan(&exists); err != nil {
			return infra.WrapRepoErr(infra.KindDBFailure, "failed to check listing existence", err)
		}
		if !exists {
			return infra.NewRepoErr(infra.KindNotFound, "listing not found")
		}
		return infra.NewRepoErr(infra.KindConflict, "listing status changed")
	}
	return nil
}

// UpdateIfHeldBy is the holder-scoped variant of UpdateIfStatus: the write
// lands only while the row is Held by the given order, so a stale release
// cannot strip a hold that has since been handed to someone else.
func (r *ListingRepository) UpdateIfHeldBy(ctx context.Context, next *listing.Listing, holder uuid.UUID) error {
	ct, err := r.db.Exec(ctx, `
		UPDATE listings SET
			status = $2,
			held_by_order_id = $3,
			held_until = $4,
			sold_at = $5,
			withdraw_reason = $6,
			updated_at = $7
		WHERE id = $1 AND status = $8 AND held_by_order_id = $9`,
		next.ID(), string(next.Status()),
		next.HeldByOrderID(), next.HeldUntil(), next.SoldAt(), next.WithdrawReason(),
		next.UpdatedAt(), string(listing.StatusHeld), holder,
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update listing", err)
	}
	if ct.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM listings WHERE id = $1)`, next.ID()).Scan(&exists); err != nil {
			return infra.WrapRepoErr(infra.KindDBFailure, "failed to check listing existence", err)
		}
		if !exists {
			return infra.NewRepoErr(infra.KindNotFound, "listing not found")
		}
		return infra.NewRepoErr(infra.KindConflict, "listing not held by order")
	}
	return nil
}

func (r *ListingRepository) FindByStatus(ctx context.Context, status listing.Status) ([]*listing.Listing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+listingColumns+` FROM listings WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to query listings", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

func (r *ListingRepository) FindExpiredHeld(ctx context.Context, now time.Time) ([]*listing.Listing, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+listingColumns+` FROM listings
		WHERE status = $1 AND held_until < $2 ORDER BY held_until`,
		string(listing.StatusHeld), now)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to query expired holds", err)
	}
	defer rows.Close()
	return collectListings(rows)
}

func collectListings(rows pgx.Rows) ([]*listing.Listing, error) {
	var result []*listing.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan listing", err)
		}
		result = append(result, l)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to read listings", err)
	}
	return result, nil
}

func scanListing(row pgx.Row) (*listing.Listing, error) {
	var (
		id, sourceAppraisalID, purchaseRequestID uuid.UUID
		isbn, title, author, condition, status   string
		offerAmount, listingAmount               int64
		currency                                 string
		heldByOrderID                            *uuid.UUID
		heldUntil, soldAt                        *time.Time
		withdrawReason                           *string
		createdAt, updatedAt                     time.Time
	)
	if err := row.Scan(
		&id, &isbn, &title, &author, &condition,
		&sourceAppraisalID, &purchaseRequestID, &status,
		&offerAmount, &listingAmount, &currency,
		&heldByOrderID, &heldUntil, &soldAt, &withdrawReason,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	cond, err := listing.NewCondition(condition)
	if err != nil {
		return nil, err
	}
	book, err := listing.NewBookInfo(isbn, title, author, cond)
	if err != nil {
		return nil, err
	}
	cur, err := money.NewCurrency(currency)
	if err != nil {
		return nil, err
	}
	offer, err := money.New(offerAmount, cur)
	if err != nil {
		return nil, err
	}
	price, err := money.New(listingAmount, cur)
	if err != nil {
		return nil, err
	}

	return listing.ReconstructListing(
		id, book, sourceAppraisalID, purchaseRequestID,
		listing.Status(status), offer, price,
		heldByOrderID, heldUntil, soldAt, withdrawReason,
		createdAt, updatedAt,
	), nil
}
