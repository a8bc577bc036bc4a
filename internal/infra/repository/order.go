package repository

import (
	"context"
	"errors"
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"
	"bookmarket/internal/domain/order"
	"bookmarket/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/google/uuid"
)

const orderColumns = `
	id, customer_id, status,
	shipping_line1, shipping_line2, shipping_city, shipping_postal_code, shipping_country,
	billing_line1, billing_line2, billing_city, billing_postal_code, billing_country,
	tax_amount, shipping_amount, currency,
	payment_method, payment_transaction_id, paid_at,
	carrier, tracking_number, shipped_at,
	cancelled_at, cancel_reason,
	created_at, updated_at`

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var billing billingColumns
	if b := o.BillingAddress(); b != nil {
		billing = newBillingColumns(*b)
	}
	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, customer_id, status,
			shipping_line1, shipping_line2, shipping_city, shipping_postal_code, shipping_country,
			billing_line1, billing_line2, billing_city, billing_postal_code, billing_country,
			tax_amount, shipping_amount, currency,
			created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18)`,
		o.ID(), o.CustomerID(), string(o.Status()),
		o.ShippingAddress().Line1(), o.ShippingAddress().Line2(), o.ShippingAddress().City(),
		o.ShippingAddress().PostalCode(), o.ShippingAddress().Country(),
		billing.line1, billing.line2, billing.city, billing.postalCode, billing.country,
		o.Tax().Amount(), o.Shipping().Amount(), o.Tax().Currency().String(),
		o.CreatedAt(), o.UpdatedAt(),
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return infra.WrapRepoErr(infra.KindDuplicateKey, "order already exists", err)
		}
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to insert order", err)
	}

	if err := insertLineItems(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to commit order", err)
	}
	return nil
}

// Update rewrites the order row and its line items in one transaction. Line
// items are replaced wholesale; the aggregate is small enough that diffing
// buys nothing.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to begin transaction", err)
	}
	defer tx.Rollback(ctx)

	var payment paymentColumns
	if p := o.Payment(); p != nil {
		payment = newPaymentColumns(*p)
	}
	var tracking trackingColumns
	if t := o.Tracking(); t != nil {
		tracking = newTrackingColumns(*t)
	}

	ct, err := tx.Exec(ctx, `
		UPDATE orders SET
			status = $2,
			payment_method = $3, payment_transaction_id = $4, paid_at = $5,
			carrier = $6, tracking_number = $7, shipped_at = $8,
			cancelled_at = $9, cancel_reason = $10,
			updated_at = $11
		WHERE id = $1`,
		o.ID(), string(o.Status()),
		payment.method, payment.transactionID, payment.paidAt,
		tracking.carrier, tracking.trackingNumber, tracking.shippedAt,
		o.CancelledAt(), o.CancelReason(),
		o.UpdatedAt(),
	)
	if err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to update order", err)
	}
	if ct.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "order not found")
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_line_items WHERE order_id = $1`, o.ID()); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to clear line items", err)
	}
	if err := insertLineItems(ctx, tx, o); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return infra.WrapRepoErr(infra.KindDBFailure, "failed to commit order", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	row := r.db.QueryRow(ctx, `SELECT`+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := r.scanOrder(ctx, row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.NewRepoErr(infra.KindNotFound, "order not found")
		}
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to load order", err)
	}
	return o, nil
}

func (r *OrderRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*order.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+orderColumns+` FROM orders WHERE customer_id = $1 ORDER BY created_at DESC`, customerID)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to query orders", err)
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

func (r *OrderRepository) FindStale(ctx context.Context, statuses []order.Status, cutoff time.Time) ([]*order.Order, error) {
	names := make([]string, len(statuses))
	for i, s := range statuses {
		names[i] = string(s)
	}
	rows, err := r.db.Query(ctx, `
		SELECT`+orderColumns+` FROM orders
		WHERE status = ANY($1) AND updated_at < $2 ORDER BY updated_at`,
		names, cutoff)
	if err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to query stale orders", err)
	}
	defer rows.Close()
	return r.collectOrders(ctx, rows)
}

func insertLineItems(ctx context.Context, tx pgx.Tx, o *order.Order) error {
	for i, li := range o.LineItems() {
		_, err := tx.Exec(ctx, `
			INSERT INTO order_line_items (
				order_id, position, listing_id, isbn, title, author, condition,
				price_amount, currency, status
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
			o.ID(), i, li.ListingID(), li.ISBN(), li.Title(), li.Author(), li.Condition().String(),
			li.Price().Amount(), li.Price().Currency().String(), string(li.Status()),
		)
		if err != nil {
			return infra.WrapRepoErr(infra.KindDBFailure, "failed to insert line item", err)
		}
	}
	return nil
}

func (r *OrderRepository) loadLineItems(ctx context.Context, orderID uuid.UUID) ([]order.LineItem, error) {
	rows, err := r.db.Query(ctx, `
		SELECT listing_id, isbn, title, author, condition, price_amount, currency, status
		FROM order_line_items WHERE order_id = $1 ORDER BY position`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []order.LineItem
	for rows.Next() {
		var (
			listingID                       uuid.UUID
			isbn, title, author             string
			condition, currency, itemStatus string
			priceAmount                     int64
		)
		if err := rows.Scan(&listingID, &isbn, &title, &author, &condition, &priceAmount, &currency, &itemStatus); err != nil {
			return nil, err
		}
		cond, err := listing.NewCondition(condition)
		if err != nil {
			return nil, err
		}
		cur, err := money.NewCurrency(currency)
		if err != nil {
			return nil, err
		}
		price, err := money.New(priceAmount, cur)
		if err != nil {
			return nil, err
		}
		items = append(items, order.ReconstructLineItem(listingID, isbn, title, author, cond, price, order.ItemStatus(itemStatus)))
	}
	return items, rows.Err()
}

func (r *OrderRepository) collectOrders(ctx context.Context, rows pgx.Rows) ([]*order.Order, error) {
	var result []*order.Order
	for rows.Next() {
		o, err := r.scanOrder(ctx, rows)
		if err != nil {
			return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to scan order", err)
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(infra.KindDBFailure, "failed to read orders", err)
	}
	return result, nil
}

type billingColumns struct {
	line1, line2, city, postalCode, country *string
}

func newBillingColumns(a order.Address) billingColumns {
	line1, line2 := a.Line1(), a.Line2()
	city, postal, country := a.City(), a.PostalCode(), a.Country()
	return billingColumns{&line1, &line2, &city, &postal, &country}
}

type paymentColumns struct {
	method, transactionID *string
	paidAt                *time.Time
}

func newPaymentColumns(p order.Payment) paymentColumns {
	method, txID, paidAt := p.Method(), p.TransactionID(), p.PaidAt()
	return paymentColumns{&method, &txID, &paidAt}
}

type trackingColumns struct {
	carrier, trackingNumber *string
	shippedAt               *time.Time
}

func newTrackingColumns(t order.ShipmentTracking) trackingColumns {
	carrier, number, shippedAt := t.Carrier(), t.TrackingNumber(), t.ShippedAt()
	return trackingColumns{&carrier, &number, &shippedAt}
}

func (r *OrderRepository) scanOrder(ctx context.Context, row pgx.Row) (*order.Order, error) {
	var (
		id, customerID                           uuid.UUID
		status                                   string
		sLine1, sLine2, sCity, sPostal, sCountry string
		billing                                  billingColumns
		taxAmount, shippingAmount                int64
		currency                                 string
		payment                                  paymentColumns
		tracking                                 trackingColumns
		cancelledAt                              *time.Time
		cancelReason                             *string
		createdAt, updatedAt                     time.Time
	)
	if err := row.Scan(
		&id, &customerID, &status,
		&sLine1, &sLine2, &sCity, &sPostal, &sCountry,
		&billing.line1, &billing.line2, &billing.city, &billing.postalCode, &billing.country,
		&taxAmount, &shippingAmount, &currency,
		&payment.method, &payment.transactionID, &payment.paidAt,
		&tracking.carrier, &tracking.trackingNumber, &tracking.shippedAt,
		&cancelledAt, &cancelReason,
		&createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	shipping, err := order.NewAddress(sLine1, sLine2, sCity, sPostal, sCountry)
	if err != nil {
		return nil, err
	}
	var billingAddr *order.Address
	if billing.line1 != nil {
		a, err := order.NewAddress(*billing.line1, deref(billing.line2), *billing.city, *billing.postalCode, *billing.country)
		if err != nil {
			return nil, err
		}
		billingAddr = &a
	}
	cur, err := money.NewCurrency(currency)
	if err != nil {
		return nil, err
	}
	tax, err := money.New(taxAmount, cur)
	if err != nil {
		return nil, err
	}
	shippingFee, err := money.New(shippingAmount, cur)
	if err != nil {
		return nil, err
	}
	var pay *order.Payment
	if payment.method != nil {
		p, err := order.NewPayment(*payment.method, *payment.transactionID, *payment.paidAt)
		if err != nil {
			return nil, err
		}
		pay = &p
	}
	var track *order.ShipmentTracking
	if tracking.carrier != nil {
		t, err := order.NewShipmentTracking(*tracking.carrier, *tracking.trackingNumber, *tracking.shippedAt)
		if err != nil {
			return nil, err
		}
		track = &t
	}

	items, err := r.loadLineItems(ctx, id)
	if err != nil {
		return nil, err
	}

	return order.ReconstructOrder(
		id, customerID, shipping, billingAddr, items,
		order.Status(status), tax, shippingFee,
		pay, track, cancelledAt, cancelReason,
		createdAt, updatedAt,
	), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
