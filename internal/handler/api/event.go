package api

import (
	"net/http"
	"strconv"

	reqdto "cinema-booking/internal/handler/dto/request"
	resdto "cinema-booking/internal/handler/dto/response"
	"cinema-booking/internal/handler/httperr"
	"cinema-booking/internal/pkg/errs"
	"cinema-booking/internal/usecase/commands"
	"cinema-booking/internal/usecase/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

type EventHandler struct {
	cmds commands.EventCommands
	q    queries.EventQueries
}

func NewEventHandler(cmds commands.EventCommands, q queries.EventQueries) *EventHandler {
	return &EventHandler{cmds: cmds, q: q}
}

// @Summary List upcoming events
// @Tags events
// @Produce json
// @Param limit query int false "Max items (default 20)"
// @Success 200 {array} resdto.EventResponse
// @Router /api/events [get]
func (h *EventHandler) List(c *gin.Context) {
	limit := 20
	if v := c.Query("limit"); v != "" {
		if iv, e := strconv.Atoi(v); e == nil {
			limit = queries.ValidateLimit(iv)
		}
	}
	items, err := h.q.ListUpcoming(c.Request.Context(), limit)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromEventList(items))
}

// @Summary Event availability
// @Description Capacity, committed seats and remaining seats for one event
// @Tags events
// @Produce json
// @Param id path string true "Event ID"
// @Success 200 {object} resdto.EventResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /api/events/{id}/availability [get]
func (h *EventHandler) Availability(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid event id", nil)
		return
	}
	view, err := h.q.GetAvailability(c.Request.Context(), id)
	if err != nil {
		if errs.Is(err, queries.ErrEventNotFound) {
			httperr.AbortWithError(c, http.StatusNotFound, err, "Event not found", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resdto.FromEventView(view))
}

// @Summary Create event
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body reqdto.CreateEventRequest true "Event"
// @Success 201 {object} resdto.EventResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Failure 403 {object} httperr.Response
// @Router /api/admin/events [post]
func (h *EventHandler) Create(c *gin.Context) {
	var req reqdto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	req.Normalize()

	var cmd commands.CreateEventRequest
	if err := copier.Copy(&cmd, &req); err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}

	view, err := h.cmds.CreateEvent(c.Request.Context(), cmd)
	if err != nil {
		if errs.Is(err, commands.ErrInvalidRequest) {
			httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid event", nil)
			return
		}
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.Header("Location", "/api/events/"+view.ID.String()+"/availability")
	c.JSON(http.StatusCreated, resdto.FromEventView(view))
}
