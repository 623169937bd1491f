package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"cinema-booking/internal/domain/booking"
	reqdto "cinema-booking/internal/handler/dto/request"
	resdto "cinema-booking/internal/handler/dto/response"
	"cinema-booking/internal/handler/httperr"
	"cinema-booking/internal/infra/payment"
	"cinema-booking/internal/pkg/config"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/commands"
	"cinema-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const maxWebhookBody = 64 << 10

var errBadSignature = errs.New("webhook signature mismatch")

type PaymentHandler struct {
	cmds   commands.PaymentCommands
	q      queries.PaymentQueries
	secret string
}

func NewPaymentHandler(cmds commands.PaymentCommands, q queries.PaymentQueries, cfg config.Config) *PaymentHandler {
	return &PaymentHandler{cmds: cmds, q: q, secret: cfg.Payment.WebhookSecret}
}

// @Summary Payment webhook
// @Description Provider notification that a payment succeeded. Redelivery is safe.
// @Tags payments
// @Accept json
// @Produce json
// @Param X-Payment-Signature header string false "hex HMAC-SHA256 of the body"
// @Param request body reqdto.PaymentWebhookRequest true "Payment confirmation"
// @Success 200 {object} resdto.WebhookResponse "confirmed or replayed"
// @Success 202 {object} resdto.WebhookResponse "no booking yet, queued for retry"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 409 {object} resdto.WebhookResponse "flagged for manual review"
// @Failure 500 {object} httperr.Response
// @Router /api/payments/webhook [post]
func (h *PaymentHandler) Webhook(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unreadable body", nil)
		return
	}
	if !payment.VerifySignature(body, c.GetHeader(payment.SignatureHeader), h.secret) {
		httperr.AbortWithError(c, http.StatusUnauthorized, errBadSignature, "Invalid signature", nil)
		return
	}

	var req reqdto.PaymentWebhookRequest
	if err := decodeJSON(body, &req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Receive(c.Request.Context(), req.ToConfirmation())
	if err != nil {
		switch {
		case errs.Is(err, commands.ErrInvalidRequest):
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid payment confirmation", nil)
		default:
			// provider redelivers on 5xx
			httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		}
		return
	}

	c.JSON(webhookStatus(result.Outcome), resdto.FromReconcileResult(result))
}

// @Summary Payments needing review
// @Description Conflicting, cancelled-booking and exhausted orphan confirmations
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Max items (default 20)"
// @Success 200 {array} resdto.PaymentReviewResponse
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/admin/payments/review [get]
func (h *PaymentHandler) ListForReview(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = queries.ValidateLimit(iv)
		}
	}
	items, err := h.q.ListForReview(c.Request.Context(), limit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromPaymentReviewList(items))
}

func webhookStatus(outcome booking.ReconcileOutcome) int {
	switch outcome {
	case booking.OutcomeConfirmed, booking.OutcomeReplayed:
		return http.StatusOK
	case booking.OutcomeOrphan:
		return http.StatusAccepted
	case booking.OutcomePaymentConflict, booking.OutcomeBookingCancelled:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeJSON validates a body that was already read for the signature check.
// Unknown provider fields are tolerated.
func decodeJSON(body []byte, obj any) error {
	if err := json.NewDecoder(bytes.NewReader(body)).Decode(obj); err != nil {
		return err
	}
	return binding.Validator.ValidateStruct(obj)
}
