package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/service/reporting"
)

// DashboardHandler serves the balance reconciliation endpoint.
type DashboardHandler struct {
	svc    *reporting.Service
	logger *zap.Logger
}

// NewDashboardHandler constructs the HTTP handler adapter.
func NewDashboardHandler(svc *reporting.Service, logger *zap.Logger) *DashboardHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardHandler{svc: svc, logger: logger}
}

// Get computes the balance report for the query filters.
func (h *DashboardHandler) Get(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}

	filter := reporting.DashboardFilter{
		Base:      c.Query("base"),
		Equipment: c.Query("equipment"),
		FromDate:  c.Query("fromDate"),
		ToDate:    c.Query("toDate"),
	}

	report, err := h.svc.Dashboard(c.Request.Context(), actor, filter)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, report)
}
