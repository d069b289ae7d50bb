package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/armory/internal/service/inventory"
)

// LedgerHandler serves the transaction write paths and scoped registers.
type LedgerHandler struct {
	svc    *inventory.Service
	logger *zap.Logger
}

// NewLedgerHandler constructs the HTTP handler adapter.
func NewLedgerHandler(svc *inventory.Service, logger *zap.Logger) *LedgerHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LedgerHandler{svc: svc, logger: logger}
}

// CreatePurchase records one purchase.
func (h *LedgerHandler) CreatePurchase(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var in inventory.PurchaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid purchase payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.svc.RecordPurchase(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListPurchases returns purchases visible to the actor.
func (h *LedgerHandler) ListPurchases(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	records, err := h.svc.ListPurchases(c.Request.Context(), actor)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// CreateTransfer records one inter-base transfer.
func (h *LedgerHandler) CreateTransfer(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var in inventory.TransferInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid transfer payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.svc.RecordTransfer(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListTransfers returns transfers visible to the actor.
func (h *LedgerHandler) ListTransfers(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	records, err := h.svc.ListTransfers(c.Request.Context(), actor)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// CreateAssignment records one personnel assignment.
func (h *LedgerHandler) CreateAssignment(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var in inventory.AssignmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid assignment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.svc.RecordAssignment(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListAssignments returns assignments visible to the actor.
func (h *LedgerHandler) ListAssignments(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	records, err := h.svc.ListAssignments(c.Request.Context(), actor)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// CreateExpenditure records one expenditure.
func (h *LedgerHandler) CreateExpenditure(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var in inventory.ExpenditureInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid expenditure payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.svc.RecordExpenditure(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListExpenditures returns expenditures visible to the actor.
func (h *LedgerHandler) ListExpenditures(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	records, err := h.svc.ListExpenditures(c.Request.Context(), actor)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// CreateBase registers a new base.
func (h *LedgerHandler) CreateBase(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var in inventory.BaseInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid base payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.svc.CreateBase(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListBases returns the base directory.
func (h *LedgerHandler) ListBases(c *gin.Context) {
	records, err := h.svc.ListBases(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}

// GetBase returns one base by id.
func (h *LedgerHandler) GetBase(c *gin.Context) {
	base, err := h.svc.GetBase(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, base)
}

// CreateEquipment registers a new equipment type.
func (h *LedgerHandler) CreateEquipment(c *gin.Context) {
	actor, ok := mustActor(c)
	if !ok {
		return
	}
	var in inventory.EquipmentInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.logger.Warn("invalid equipment payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	created, err := h.svc.CreateEquipment(c.Request.Context(), actor, in)
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListEquipments returns the equipment directory.
func (h *LedgerHandler) ListEquipments(c *gin.Context) {
	records, err := h.svc.ListEquipments(c.Request.Context())
	if err != nil {
		writeError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, records)
}
