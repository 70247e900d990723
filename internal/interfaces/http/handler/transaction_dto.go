package handler

import (
	"time"

	"github.com/google/uuid"
	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// =====================
// Transaction Request DTOs
// =====================

// CreateTransactionRequest is the JSON form of a new payment claim. The
// multipart form carries the same fields plus a "receipt" file.
type CreateTransactionRequest struct {
	StudentID       string          `json:"studentId" form:"studentId" binding:"omitempty,uuid"`
	Amount          decimal.Decimal `json:"amount" form:"amount" binding:"money" swaggertype:"string" example:"1000.00"`
	ReceiptURL      string          `json:"receiptUrl" form:"receiptUrl" binding:"omitempty,url,max=2048"`
	ReceiptPublicID string          `json:"receiptPublicId" form:"receiptPublicId" binding:"omitempty,max=512"`
}

// UpdateTransactionRequest carries the fields of a pending transaction to
// change. Omitted fields are left as they are.
type UpdateTransactionRequest struct {
	Amount          *decimal.Decimal `json:"amount" form:"amount" binding:"omitempty,money" swaggertype:"string" example:"1200.00"`
	ReceiptURL      *string          `json:"receiptUrl" form:"receiptUrl" binding:"omitempty,url,max=2048"`
	ReceiptPublicID *string          `json:"receiptPublicId" form:"receiptPublicId" binding:"omitempty,max=512"`
}

// ListTransactionsQuery narrows GET /transactions
type ListTransactionsQuery struct {
	StudentID string `form:"studentId" binding:"omitempty,uuid"`
	Status    string `form:"status" binding:"omitempty,txstatus"`
}

// =====================
// Transaction Response DTOs
// =====================

// UserSummaryResponse is the user projection embedded in transactions
type UserSummaryResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`
}

// ReceiptResponse locates the uploaded evidence
type ReceiptResponse struct {
	URL      string `json:"url,omitempty"`
	PublicID string `json:"publicId,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          uuid.UUID            `json:"id"`
	StudentID   uuid.UUID            `json:"studentId"`
	Student     *UserSummaryResponse `json:"student,omitempty"`
	Amount      string               `json:"amount" example:"1000.00"`
	Receipt     ReceiptResponse      `json:"receipt"`
	Status      string               `json:"status" example:"pending"`
	ConfirmedBy *UserSummaryResponse `json:"confirmedBy,omitempty"`
	ConfirmedAt *time.Time           `json:"confirmedAt,omitempty"`
	RejectedAt  *time.Time           `json:"rejectedAt,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// CommissionResponse represents a commission ledger entry
type CommissionResponse struct {
	ID             uuid.UUID  `json:"id"`
	UserID         uuid.UUID  `json:"userId"`
	TransactionID  uuid.UUID  `json:"transactionId"`
	ReferredUserID uuid.UUID  `json:"referredUserId"`
	Amount         string     `json:"amount" example:"100.00"`
	Type           string     `json:"type" example:"referral"`
	Status         string     `json:"status" example:"approved"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	PaidAt         *time.Time `json:"paidAt,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// ConfirmTransactionResponse is returned by a successful confirmation
type ConfirmTransactionResponse struct {
	Transaction TransactionResponse  `json:"transaction"`
	Commissions []CommissionResponse `json:"commissions"`
}

func toUserSummary(u *financeapp.UserSummary) *UserSummaryResponse {
	if u == nil {
		return nil
	}
	return &UserSummaryResponse{ID: u.ID, Username: u.Username, Email: u.Email}
}

func toTransactionResponse(v financeapp.TransactionView) TransactionResponse {
	tx := v.Transaction
	return TransactionResponse{
		ID:          tx.ID,
		StudentID:   tx.StudentID,
		Student:     toUserSummary(v.Student),
		Amount:      tx.Amount.StringFixed(2),
		Receipt:     ReceiptResponse{URL: tx.Receipt.URL, PublicID: tx.Receipt.PublicID},
		Status:      tx.Status.String(),
		ConfirmedBy: toUserSummary(v.ConfirmedBy),
		ConfirmedAt: tx.ConfirmedAt,
		RejectedAt:  tx.RejectedAt,
		CreatedAt:   tx.CreatedAt,
		UpdatedAt:   tx.UpdatedAt,
	}
}

func toTransactionResponses(views []financeapp.TransactionView) []TransactionResponse {
	out := make([]TransactionResponse, len(views))
	for i, v := range views {
		out[i] = toTransactionResponse(v)
	}
	return out
}

func toCommissionResponse(c *finance.Commission) CommissionResponse {
	return CommissionResponse{
		ID:             c.ID,
		UserID:         c.UserID,
		TransactionID:  c.TransactionID,
		ReferredUserID: c.ReferredUserID,
		Amount:         c.Amount.StringFixed(2),
		Type:           c.Type.String(),
		Status:         c.Status.String(),
		ApprovedAt:     c.ApprovedAt,
		PaidAt:         c.PaidAt,
		CreatedAt:      c.CreatedAt,
	}
}

func toCommissionResponses(cs []*finance.Commission) []CommissionResponse {
	out := make([]CommissionResponse, len(cs))
	for i, c := range cs {
		out[i] = toCommissionResponse(c)
	}
	return out
}
