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
)

type CheckInHandler struct {
	cmds commands.CheckInCommands
}

func NewCheckInHandler(cmds commands.CheckInCommands) *CheckInHandler {
	return &CheckInHandler{cmds: cmds}
}

// @Summary Redeem ticket
// @Description Admits a scanned ticket at most once. Rejected scans still return 200 with their outcome.
// @Tags check-ins
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CheckInRequest true "Scanned token or QR payload"
// @Success 200 {object} resdto.CheckInResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/check-ins [post]
func (h *CheckInHandler) Redeem(c *gin.Context) {
	operator, ok := middleware.GetActor(c)
	if !ok {
		httperr.AbortWithError(c, http.StatusUnauthorized, errUnauthenticated, "Unauthorized", nil)
		return
	}

	var req reqdto.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Redeem(c.Request.Context(), req.Token, operator)
	if err != nil {
		if errs.Is(err, commands.ErrOperatorRequired) {
			httperr.AbortWithError(c, http.StatusForbidden, err, "Operator role required", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	c.JSON(http.StatusOK, resdto.FromRedeemResult(result))
}
