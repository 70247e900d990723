package handler

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	financeapp "github.com/jneralrex/stratos-backend/internal/application/finance"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/dto"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// ReceiptField is the multipart field carrying the receipt file
const ReceiptField = "receipt"

// allowedReceiptTypes are the sniffed content types accepted as receipts
var allowedReceiptTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
	"application/pdf": true,
}

// TransactionHandler handles payment claim HTTP requests
type TransactionHandler struct {
	BaseHandler
	service       *financeapp.TransactionService
	maxUploadSize int64
}

// NewTransactionHandler creates a new transaction handler. Receipt files
// larger than maxUploadSize bytes are refused.
func NewTransactionHandler(service *financeapp.TransactionService, maxUploadSize int64) *TransactionHandler {
	return &TransactionHandler{service: service, maxUploadSize: maxUploadSize}
}

// Create godoc
// @Summary      Submit a payment claim
// @Description  Students submit for themselves, admins name the student. Send JSON, or multipart/form-data with a "receipt" image or PDF.
// @Tags         transactions
// @Accept       json,mpfd
// @Produce      json
// @Param        request body     CreateTransactionRequest false "Claim (JSON)"
// @Param        receipt formData file                     false "Receipt file (multipart)"
// @Success      201 {object} dto.Response{data=TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      413 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions [post]
func (h *TransactionHandler) Create(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	var req CreateTransactionRequest
	var upload *financeapp.ReceiptUpload
	if isMultipart(c) {
		amount, ok := h.formAmount(c, "amount")
		if !ok {
			return
		}
		if amount == nil {
			amount = &decimal.Zero
		}
		req = CreateTransactionRequest{
			StudentID:       c.PostForm("studentId"),
			Amount:          *amount,
			ReceiptURL:      c.PostForm("receiptUrl"),
			ReceiptPublicID: c.PostForm("receiptPublicId"),
		}
		if !h.validate(c, &req) {
			return
		}
		if upload, ok = h.readReceipt(c); !ok {
			return
		}
	} else if !h.BindJSON(c, &req) {
		return
	}

	input := financeapp.CreateTransactionInput{
		Amount:          req.Amount,
		Upload:          upload,
		ReceiptURL:      req.ReceiptURL,
		ReceiptPublicID: req.ReceiptPublicID,
	}
	if req.StudentID != "" {
		id := uuid.MustParse(req.StudentID)
		input.StudentID = &id
	}

	view, err := h.service.Create(c.Request.Context(), actor, input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, toTransactionResponse(*view))
}

// Update godoc
// @Summary      Amend a pending transaction
// @Description  Owners and admins may change the amount or receipt while the transaction is pending
// @Tags         transactions
// @Accept       json,mpfd
// @Produce      json
// @Param        id      path     string                   true  "Transaction ID" format(uuid)
// @Param        request body     UpdateTransactionRequest false "Changes (JSON)"
// @Param        receipt formData file                     false "Replacement receipt (multipart)"
// @Success      200 {object} dto.Response{data=TransactionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/{id} [put]
func (h *TransactionHandler) Update(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	var req UpdateTransactionRequest
	var upload *financeapp.ReceiptUpload
	if isMultipart(c) {
		if req.Amount, ok = h.formAmount(c, "amount"); !ok {
			return
		}
		if v, present := c.GetPostForm("receiptUrl"); present {
			req.ReceiptURL = &v
		}
		if v, present := c.GetPostForm("receiptPublicId"); present {
			req.ReceiptPublicID = &v
		}
		if !h.validate(c, &req) {
			return
		}
		if upload, ok = h.readReceipt(c); !ok {
			return
		}
	} else if !h.BindJSON(c, &req) {
		return
	}

	view, err := h.service.Update(c.Request.Context(), actor, id, financeapp.UpdateTransactionInput{
		Amount:          req.Amount,
		ReceiptURL:      req.ReceiptURL,
		ReceiptPublicID: req.ReceiptPublicID,
		Upload:          upload,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransactionResponse(*view))
}

// Confirm godoc
// @Summary      Confirm a pending transaction
// @Description  Marks the payment as received and distributes the referral and sales commissions atomically
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=ConfirmTransactionResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/{id}/confirm [post]
func (h *TransactionHandler) Confirm(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.Confirm(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ConfirmTransactionResponse{
		Transaction: toTransactionResponse(result.Transaction),
		Commissions: toCommissionResponses(result.Commissions),
	})
}

// Reject godoc
// @Summary      Reject a pending transaction
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=TransactionResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/{id}/reject [post]
func (h *TransactionHandler) Reject(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	view, err := h.service.Reject(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransactionResponse(*view))
}

// Delete godoc
// @Summary      Delete a transaction
// @Description  Removes the transaction in any status along with its stored receipt
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/{id} [delete]
func (h *TransactionHandler) Delete(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), actor, id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Transaction deleted")
}

// GetByID godoc
// @Summary      Get a transaction
// @Description  Students may only read their own transactions
// @Tags         transactions
// @Produce      json
// @Param        id path string true "Transaction ID" format(uuid)
// @Success      200 {object} dto.Response{data=TransactionResponse}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/{id} [get]
func (h *TransactionHandler) GetByID(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}
	id, ok := h.PathUUID(c, "id")
	if !ok {
		return
	}

	view, err := h.service.GetByID(c.Request.Context(), actor, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toTransactionResponse(*view))
}

// List godoc
// @Summary      List transactions
// @Tags         transactions
// @Produce      json
// @Param        studentId query string false "Only this student's transactions" format(uuid)
// @Param        status    query string false "Only this status" Enums(pending, confirmed, rejected)
// @Success      200 {object} dto.Response{data=[]TransactionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions [get]
func (h *TransactionHandler) List(c *gin.Context) {
	var q ListTransactionsQuery
	if !h.BindQuery(c, &q) {
		return
	}

	input := financeapp.ListTransactionsInput{Status: q.Status}
	if q.StudentID != "" {
		id := uuid.MustParse(q.StudentID)
		input.StudentID = &id
	}

	views, err := h.service.List(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, toTransactionResponses(views), len(views))
}

// ListMine godoc
// @Summary      List my transactions
// @Tags         transactions
// @Produce      json
// @Success      200 {object} dto.Response{data=[]TransactionResponse,meta=dto.Meta}
// @Security     BearerAuth
// @Router       /transactions/user/me [get]
func (h *TransactionHandler) ListMine(c *gin.Context) {
	actor, ok := h.Actor(c)
	if !ok {
		return
	}

	views, err := h.service.ListMine(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, toTransactionResponses(views), len(views))
}

// ListByStatus godoc
// @Summary      List transactions by status
// @Tags         transactions
// @Produce      json
// @Param        status path string true "Status" Enums(pending, confirmed, rejected)
// @Success      200 {object} dto.Response{data=[]TransactionResponse,meta=dto.Meta}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /transactions/status/{status} [get]
func (h *TransactionHandler) ListByStatus(c *gin.Context) {
	views, err := h.service.ListByStatus(c.Request.Context(), c.Param("status"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessList(c, toTransactionResponses(views), len(views))
}

func isMultipart(c *gin.Context) bool {
	return strings.HasPrefix(c.ContentType(), "multipart/form-data")
}

// validate runs the binding validator over a request assembled by hand
func (h *TransactionHandler) validate(c *gin.Context, req any) bool {
	if err := binding.Validator.ValidateStruct(req); err != nil {
		h.bindError(c, err)
		return false
	}
	return true
}

// formAmount parses an optional decimal form field
func (h *TransactionHandler) formAmount(c *gin.Context, field string) (*decimal.Decimal, bool) {
	raw, present := c.GetPostForm(field)
	if !present {
		return nil, true
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewValidationErrorResponse(
			"Request validation failed",
			middleware.GetRequestID(c),
			[]dto.ValidationDetail{{Field: field, Message: "Must be a decimal number"}},
		))
		return nil, false
	}
	return &amount, true
}

// readReceipt loads the optional receipt file, checking its size and sniffed
// content type
func (h *TransactionHandler) readReceipt(c *gin.Context) (*financeapp.ReceiptUpload, bool) {
	header, err := c.FormFile(ReceiptField)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, true
	}
	if err != nil {
		h.BadRequest(c, "Invalid receipt upload")
		return nil, false
	}
	if h.maxUploadSize > 0 && header.Size > h.maxUploadSize {
		h.Error(c, http.StatusRequestEntityTooLarge, dto.ErrCodeRequestTooLarge, "Receipt file is too large")
		return nil, false
	}

	f, err := header.Open()
	if err != nil {
		h.BadRequest(c, "Invalid receipt upload")
		return nil, false
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		h.BadRequest(c, "Invalid receipt upload")
		return nil, false
	}
	if len(data) == 0 {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Receipt file is empty")
		return nil, false
	}

	contentType := http.DetectContentType(data)
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	if !allowedReceiptTypes[contentType] {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Receipt must be an image or PDF")
		return nil, false
	}

	return &financeapp.ReceiptUpload{
		Filename:    filepath.Base(header.Filename),
		ContentType: contentType,
		Data:        data,
	}, true
}
