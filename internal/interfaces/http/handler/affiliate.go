package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/dto"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/middleware"
)

// EarningsResponse aggregates a beneficiary's commission ledger
type EarningsResponse struct {
	TotalEarnings    string               `json:"totalEarnings" example:"150.00"`
	ApprovedEarnings string               `json:"approvedEarnings" example:"100.00"`
	PendingEarnings  string               `json:"pendingEarnings" example:"0.00"`
	PaidEarnings     string               `json:"paidEarnings" example:"50.00"`
	Commissions      []CommissionResponse `json:"commissions"`
}

// ReferralResponse is the public profile of a referred user
type ReferralResponse struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"fullName"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}

// SummaryResponse is a user's cached commission totals
type SummaryResponse struct {
	TotalEarned string `json:"totalEarned"`
	Pending     string `json:"pending"`
	PaidOut     string `json:"paidOut"`
}

// AffiliateHandler serves referral program reports
type AffiliateHandler struct {
	BaseHandler
	service *financeapp.AffiliateService
}

// NewAffiliateHandler creates a new affiliate handler
func NewAffiliateHandler(service *financeapp.AffiliateService) *AffiliateHandler {
	return &AffiliateHandler{service: service}
}

// Earnings godoc
// @Summary      Commission earnings
// @Description  Aggregates the caller's commission ledger. Admins may pass userId to inspect another user.
// @Tags         affiliates
// @Produce      json
// @Param        userId query string false "Beneficiary (admins only)" format(uuid)
// @Success      200 {object} dto.Response{data=EarningsResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /affiliates/earnings [get]
func (h *AffiliateHandler) Earnings(c *gin.Context) {
	userID, ok := h.subject(c)
	if !ok {
		return
	}

	earnings, err := h.service.Earnings(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, EarningsResponse{
		TotalEarnings:    earnings.TotalEarnings.StringFixed(2),
		ApprovedEarnings: earnings.ApprovedEarnings.StringFixed(2),
		PendingEarnings:  earnings.PendingEarnings.StringFixed(2),
		PaidEarnings:     earnings.PaidEarnings.StringFixed(2),
		Commissions:      toCommissionResponses(earnings.Commissions),
	})
}

// Referrals godoc
// @Summary      Referred users
// @Description  Lists users who signed up with the caller's referral code. Admins may pass userId.
// @Tags         affiliates
// @Produce      json
// @Param        userId query string false "Referrer (admins only)" format(uuid)
// @Success      200 {object} dto.Response{data=[]ReferralResponse,meta=dto.Meta}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /affiliates/referrals [get]
func (h *AffiliateHandler) Referrals(c *gin.Context) {
	userID, ok := h.subject(c)
	if !ok {
		return
	}

	profiles, err := h.service.Referrals(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]ReferralResponse, len(profiles))
	for i, p := range profiles {
		out[i] = ReferralResponse(p)
	}
	h.SuccessList(c, out, len(out))
}

// RecomputeSummary godoc
// @Summary      Rebuild cached totals
// @Description  Recomputes a user's commission summary from the ledger
// @Tags         affiliates
// @Produce      json
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=SummaryResponse}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /affiliates/{id}/recompute [post]
func (h *AffiliateHandler) RecomputeSummary(c *gin.Context) {
	userID, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	summary, err := h.service.RecomputeSummary(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, SummaryResponse{
		TotalEarned: summary.TotalEarned.StringFixed(2),
		Pending:     summary.Pending.StringFixed(2),
		PaidOut:     summary.PaidOut.StringFixed(2),
	})
}

// subject resolves whose report is requested: the caller, or for admins an
// explicit userId
func (h *AffiliateHandler) subject(c *gin.Context) (uuid.UUID, bool) {
	callerID, ok := h.CallerID(c)
	if !ok {
		return uuid.Nil, false
	}

	raw := c.Query("userId")
	if raw == "" {
		return callerID, true
	}
	if middleware.GetJWTRole(c) != identity.RoleSuperAdmin {
		h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, "Only admins may view other users' reports")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid userId")
		return uuid.Nil, false
	}
	return id, true
}
