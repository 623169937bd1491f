package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/commands"

	"github.com/google/uuid"
)

// NewGateway returns the hosted checkout client, or the local gateway when no
// provider URL is configured.
func NewGateway(cfg config.PaymentConfig) commands.PaymentGateway {
	if cfg.APIURL == "" {
		return NewLocalGateway(cfg.RedirectBaseURL)
	}
	return NewHTTPGateway(cfg)
}

type HTTPGateway struct {
	baseURL string
	apiKey  string
	hc      *http.Client
}

func NewHTTPGateway(cfg config.PaymentConfig) *HTTPGateway {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPGateway{
		baseURL: strings.TrimRight(cfg.APIURL, "/"),
		apiKey:  cfg.APIKey,
		hc:      &http.Client{Timeout: timeout},
	}
}

type sessionRequest struct {
	ClientReference string    `json:"clientReference"`
	EventID         string    `json:"eventId"`
	HolderID        string    `json:"holderId"`
	CustomerEmail   string    `json:"customerEmail"`
	Quantity        int       `json:"quantity"`
	Amount          string    `json:"amount"`
	Currency        string    `json:"currency"`
	Description     string    `json:"description"`
	ExpiresAt       time.Time `json:"expiresAt"`
}

type sessionReply struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

func (g *HTTPGateway) CreateSession(ctx context.Context, req commands.SessionRequest) (*commands.CheckoutSession, error) {
	body, err := json.Marshal(sessionRequest{
		ClientReference: req.BookingID.String(),
		EventID:         req.EventID.String(),
		HolderID:        req.HolderID.String(),
		CustomerEmail:   req.HolderEmail,
		Quantity:        req.Seats,
		Amount:          req.Amount.Decimal().String(),
		Currency:        req.Amount.Currency(),
		Description:     req.Description,
		ExpiresAt:       req.ExpiresAt.UTC(),
	})
	if err != nil {
		return nil, errs.Wrap(err, "failed to encode checkout session request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, errs.Wrap(err, "failed to build checkout session request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Idempotency-Key", req.BookingID.String())
	if g.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	resp, err := g.hc.Do(httpReq)
	if err != nil {
		return nil, errs.Wrap(err, "checkout session request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, errs.Newf("payment provider returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var reply sessionReply
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		return nil, errs.Wrap(err, "failed to decode checkout session reply")
	}
	if reply.ID == "" || reply.URL == "" {
		return nil, errs.New("payment provider returned an incomplete session")
	}

	return &commands.CheckoutSession{ID: reply.ID, RedirectURL: reply.URL}, nil
}

// LocalGateway mints session handles without a provider. Payments are then
// confirmed by posting to the webhook directly.
type LocalGateway struct {
	redirectBase string
}

func NewLocalGateway(redirectBaseURL string) *LocalGateway {
	return &LocalGateway{redirectBase: strings.TrimRight(redirectBaseURL, "/")}
}

func (g *LocalGateway) CreateSession(_ context.Context, req commands.SessionRequest) (*commands.CheckoutSession, error) {
	id := "cs_local_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	q := url.Values{}
	q.Set("booking", req.BookingID.String())
	return &commands.CheckoutSession{
		ID:          id,
		RedirectURL: fmt.Sprintf("%s/%s?%s", g.redirectBase, id, q.Encode()),
	}, nil
}
