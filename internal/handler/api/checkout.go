package api

import (
	"net/http"

	reqdto "cinema-booking/internal/handler/dto/request"
	resdto "cinema-booking/internal/handler/dto/response"
	"cinema-booking/internal/handler/httperr"
	"cinema-booking/internal/handler/middleware"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

const idempotencyKeyHeader = "Idempotency-Key"

var (
	errIdempotencyKeyRequired = errs.New("idempotency key required")
	errIdempotencyKeyFormat   = errs.New("invalid idempotency key format")
)

type CheckoutHandler struct {
	cmds commands.CheckoutCommands
}

func NewCheckoutHandler(cmds commands.CheckoutCommands) *CheckoutHandler {
	return &CheckoutHandler{cmds: cmds}
}

// @Summary Start checkout
// @Description Holds seats for the caller and opens a hosted payment session
// @Tags checkouts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param Idempotency-Key header string true "Client-generated UUID"
// @Param request body reqdto.CheckoutRequest true "Checkout request"
// @Success 201 {object} resdto.CheckoutResponse
// @Success 200 {object} resdto.CheckoutResponse "Replay of an earlier request"
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 502 {object} httperr.Response
// @Router /api/checkouts [post]
func (h *CheckoutHandler) Create(c *gin.Context) {
	holderID, ok := middleware.GetUserID(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Unauthorized", nil)
		return
	}

	key, err := idempotencyKey(c)
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, err.Error(), nil)
		return
	}

	var req reqdto.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	var cmd commands.CheckoutRequest
	if err := copier.Copy(&cmd, &req); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	result, err := h.cmds.Checkout(c.Request.Context(), cmd, holderID, key)
	if err != nil {
		abortCheckout(c, err)
		return
	}

	status := http.StatusCreated
	if result.IsReplayed {
		status = http.StatusOK
	} else {
		c.Header("Location", "/api/bookings/"+result.Booking.ID.String())
	}
	c.JSON(status, resdto.FromCheckout(result.Booking, result.IsReplayed))
}

func abortCheckout(c *gin.Context, err error) {
	switch {
	case errs.Is(err, commands.ErrInvalidRequest):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid checkout request", nil)
	case errs.Is(err, commands.ErrHolderInactive):
		httperr.AbortWithError(c, http.StatusForbidden, err, "Account is inactive", nil)
	case errs.Is(err, commands.ErrEventNotFound):
		httperr.AbortWithError(c, http.StatusNotFound, err, "Event not found", nil)
	case errs.Is(err, commands.ErrCapacityRejected):
		httperr.AbortWithError(c, http.StatusConflict, err, "Not enough seats available", httperr.Code{Code: "capacity_rejected"})
	case errs.Is(err, commands.ErrDuplicateBooking):
		httperr.AbortWithError(c, http.StatusConflict, err, "A booking for this event already exists", httperr.Code{Code: "duplicate_booking"})
	case errs.Is(err, commands.ErrEventNotBookable):
		httperr.AbortWithError(c, http.StatusConflict, err, "Event is not open for booking", httperr.Code{Code: "event_not_bookable"})
	case errs.Is(err, commands.ErrIdempotencyKeyReused):
		httperr.AbortWithError(c, http.StatusConflict, err, "Idempotency key was used with a different request", httperr.Code{Code: "idempotency_key_reused"})
	case errs.Is(err, commands.ErrIdempotencyInProgress):
		httperr.AbortWithError(c, http.StatusConflict, err, "Checkout request is currently being processed", httperr.Code{Code: "in_progress"})
	case errs.Is(err, commands.ErrBookingNotPending):
		httperr.AbortWithError(c, http.StatusConflict, err, "Booking hold expired before payment could start", nil)
	case errs.Is(err, commands.ErrPaymentUnavailable):
		httperr.AbortWithError(c, http.StatusBadGateway, err, "Payment provider unavailable", nil)
	default:
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
	}
}

func idempotencyKey(c *gin.Context) (uuid.UUID, error) {
	raw := c.GetHeader(idempotencyKeyHeader)
	if raw == "" {
		return uuid.Nil, errIdempotencyKeyRequired
	}
	key, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, errIdempotencyKeyFormat
	}
	return key, nil
}
