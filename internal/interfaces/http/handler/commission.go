package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
)

// CommissionHandler handles commission payout requests
type CommissionHandler struct {
	BaseHandler
	service *financeapp.CommissionService
}

// NewCommissionHandler creates a new commission handler
func NewCommissionHandler(service *financeapp.CommissionService) *CommissionHandler {
	return &CommissionHandler{service: service}
}

// MarkPaid godoc
// @Summary      Record a commission payout
// @Description  Moves an approved commission to paid and refreshes the beneficiary's totals
// @Tags         commissions
// @Produce      json
// @Param        id path string true "Commission ID" format(uuid)
// @Success      200 {object} dto.Response{data=CommissionResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /commissions/{id}/pay [post]
func (h *CommissionHandler) MarkPaid(c *gin.Context) {
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	paid, err := h.service.MarkPaid(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toCommissionResponse(paid))
}
