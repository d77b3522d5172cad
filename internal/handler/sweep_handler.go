package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/attendify/attendify-api/internal/service"
	appErrors "github.com/attendify/attendify-api/pkg/errors"
	"github.com/attendify/attendify-api/pkg/response"
)

// SweepHandler exposes the absence reconciliation trigger.
type SweepHandler struct {
	sweep *service.SweepService
	clock func() time.Time
}

// NewSweepHandler constructs SweepHandler. The clock is injectable for tests.
func NewSweepHandler(sweep *service.SweepService, clock func() time.Time) *SweepHandler {
	if clock == nil {
		clock = time.Now
	}
	return &SweepHandler{sweep: sweep, clock: clock}
}

// Trigger godoc
// @Summary Run the absence reconciliation sweep
// @Tags Sweep
// @Produce json
// @Param at query string false "Override the sweep instant (RFC3339)"
// @Param debug query bool false "Include matched session detail"
// @Success 200 {object} response.Envelope
// @Router /internal/sweep [post]
func (h *SweepHandler) Trigger(c *gin.Context) {
	now := h.clock()
	if at := c.Query("at"); at != "" {
		parsed, err := time.Parse(time.RFC3339, at)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid 'at' value, expected RFC3339"))
			return
		}
		now = parsed.In(now.Location())
	}
	debug := c.Query("debug") == "true"

	summary, details, err := h.sweep.Run(c.Request.Context(), now)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "sweep failed"))
		return
	}

	var meta map[string]interface{}
	if debug {
		meta = map[string]interface{}{"sessions": details}
	}
	response.JSON(c, http.StatusOK, summary, nil, meta)
}

// Status godoc
// @Summary Last sweep summary
// @Tags Sweep
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sweep/status [get]
func (h *SweepHandler) Status(c *gin.Context) {
	summary, err := h.sweep.LastSummary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	if summary == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no sweep has run yet"))
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
