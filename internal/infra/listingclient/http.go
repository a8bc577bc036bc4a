package listingclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"bookmarket/internal/domain/listing"
	"bookmarket/internal/domain/money"
	"bookmarket/internal/pkg/errs"
	"bookmarket/internal/usecase/commands"

	"github.com/google/uuid"
)

// Client talks to a remotely deployed listing service. Remote failure codes
// are folded back into the same sentinel errors the local client produces, so
// the saga's compensation logic is transport-agnostic.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type listingResponse struct {
	ID        uuid.UUID   `json:"id"`
	ISBN      string      `json:"isbn"`
	Title     string      `json:"title"`
	Author    string      `json:"author"`
	Condition string      `json:"condition"`
	Price     money.Money `json:"listing_price"`
	Status    string      `json:"status"`
}

type errorResponse struct {
	Code string `json:"code"`
}

func (c *Client) GetByID(ctx context.Context, listingID uuid.UUID) (*commands.ListingSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url("/listings/%s", listingID), nil)
	if err != nil {
		return nil, errs.Wrap(err, "failed to build listing request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrap(err, "listing service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.mapError(resp)
	}

	var body listingResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, errs.Wrap(err, "failed to decode listing response")
	}
	cond, err := listing.NewCondition(body.Condition)
	if err != nil {
		return nil, errs.Wrap(err, "listing response carries unknown condition")
	}
	return &commands.ListingSnapshot{
		ID:        body.ID,
		ISBN:      body.ISBN,
		Title:     body.Title,
		Author:    body.Author,
		Condition: cond,
		Price:     body.Price,
		Status:    listing.Status(body.Status),
	}, nil
}

func (c *Client) HoldForOrder(ctx context.Context, listingID, orderID uuid.UUID) error {
	payload := map[string]string{"order_id": orderID.String()}
	return c.post(ctx, c.url("/listings/%s/hold", listingID), payload)
}

func (c *Client) ReleaseHold(ctx context.Context, listingID, orderID uuid.UUID) error {
	payload := map[string]string{"order_id": orderID.String()}
	return c.post(ctx, c.url("/listings/%s/release", listingID), payload)
}

func (c *Client) MarkSold(ctx context.Context, listingID, orderID uuid.UUID) error {
	payload := map[string]string{"order_id": orderID.String()}
	return c.post(ctx, c.url("/listings/%s/sold", listingID), payload)
}

func (c *Client) post(ctx context.Context, url string, payload any) error {
	var body bytes.Buffer
	if payload != nil {
		if err := json.NewEncoder(&body).Encode(payload); err != nil {
			return errs.Wrap(err, "failed to encode request body")
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return errs.Wrap(err, "failed to build listing request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return errs.Wrap(err, "listing service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.mapError(resp)
	}
	return nil
}

// mapError translates the listing service's status codes and conflict body
// codes into the client contract's sentinels. Unknown failures stay opaque.
func (c *Client) mapError(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return commands.ErrListingNotFound
	}
	if resp.StatusCode == http.StatusConflict {
		var body errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
			switch body.Code {
			case "listing_already_held":
				return commands.ErrListingAlreadyHeld
			case "listing_already_sold":
				return commands.ErrListingAlreadySold
			case "listing_not_held":
				return commands.ErrListingNotHeld
			}
		}
		return commands.ErrListingAlreadyHeld
	}
	return errs.Newf("listing service returned status %d", resp.StatusCode)
}

func (c *Client) url(format string, args ...any) string {
	return c.baseURL + fmt.Sprintf(format, args...)
}
