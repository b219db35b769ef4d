package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/salon-ledger/backend/internal/application/service"
	"github.com/salon-ledger/backend/internal/domain/entity"
	domainerror "github.com/salon-ledger/backend/internal/domain/error"
	"github.com/salon-ledger/backend/internal/integration/entrypoint/dto"
	"github.com/salon-ledger/backend/internal/integration/entrypoint/middleware"
)

// TreatmentController handles treatment endpoints.
type TreatmentController struct {
	treatments *service.TreatmentService
}

// NewTreatmentController creates a new treatment controller instance.
func NewTreatmentController(treatments *service.TreatmentService) *TreatmentController {
	return &TreatmentController{
		treatments: treatments,
	}
}

// List handles GET /treatments requests.
func (c *TreatmentController) List(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	treatments, err := c.treatments.FetchAll(ctx.Request.Context(), userID.String())
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTreatmentListResponse(treatments))
}

// Create handles POST /treatments requests.
func (c *TreatmentController) Create(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.CreateTreatmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	treatment, err := c.treatments.Add(ctx.Request.Context(), userID.String(), req.Name, req.Price, req.Icon, req.Color)
	if err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToTreatmentResponse(treatment))
}

// Update handles PATCH /treatments/:id requests.
func (c *TreatmentController) Update(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.UpdateTreatmentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	treatment := entity.Treatment{
		ID:    ctx.Param("id"),
		Name:  req.Name,
		Price: req.Price,
		Icon:  req.Icon,
		Color: req.Color,
	}
	if err := c.treatments.Update(ctx.Request.Context(), userID.String(), treatment); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTreatmentResponse(&treatment))
}

// Delete handles DELETE /treatments/:id requests.
func (c *TreatmentController) Delete(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	if err := c.treatments.Delete(ctx.Request.Context(), userID.String(), ctx.Param("id")); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

// Reorder handles PUT /treatments/reorder requests.
func (c *TreatmentController) Reorder(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		respondUnauthenticated(ctx)
		return
	}

	var req dto.ReorderRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: "Invalid request body",
			Code:  string(domainerror.ErrCodeMissingFields),
		})
		return
	}

	if err := c.treatments.Reorder(ctx.Request.Context(), userID.String(), req.IDs); err != nil {
		handleLedgerError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToTreatmentListResponse(c.treatments.Snapshot(userID.String())))
}

// respondUnauthenticated writes the shared missing-user response.
func respondUnauthenticated(ctx *gin.Context) {
	ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
		Error: "User not authenticated",
		Code:  string(domainerror.ErrCodeMissingToken),
	})
}
