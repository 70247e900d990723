package middleware

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email  string          `json:"email" binding:"required,email"`
	Amount decimal.Decimal `json:"amount" binding:"money"`
	Role   string          `json:"role" binding:"omitempty,role"`
	Status string          `form:"status" binding:"omitempty,txstatus"`
}

func newTestValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	registerValidations(v)
	return v
}

func TestCustomValidations(t *testing.T) {
	v := newTestValidator()
	valid := sampleRequest{Email: "ada@example.com", Amount: decimal.RequireFromString("1500.50"), Role: "salesRep", Status: "pending"}
	require.NoError(t, v.Struct(valid))

	tests := []struct {
		name   string
		mutate func(*sampleRequest)
		field  string
	}{
		{"zero amount", func(r *sampleRequest) { r.Amount = decimal.Zero }, "amount"},
		{"negative amount", func(r *sampleRequest) { r.Amount = decimal.NewFromInt(-5) }, "amount"},
		{"three decimals", func(r *sampleRequest) { r.Amount = decimal.RequireFromString("1.005") }, "amount"},
		{"unknown role", func(r *sampleRequest) { r.Role = "admin" }, "role"},
		{"unknown status", func(r *sampleRequest) { r.Status = "paid" }, "status"},
		{"bad email", func(r *sampleRequest) { r.Email = "nope" }, "email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)
			err := v.Struct(req)
			require.Error(t, err)

			resp := FormatValidationErrors(err, "req-1")
			require.NotNil(t, resp.Error)
			assert.Equal(t, "req-1", resp.Error.RequestID)
			require.Len(t, resp.Error.Details, 1)
			assert.Equal(t, tt.field, resp.Error.Details[0].Field)
			assert.NotEqual(t, "Invalid value", resp.Error.Details[0].Message)
		})
	}
}

func TestFormatValidationErrors_NonValidatorError(t *testing.T) {
	resp := FormatValidationErrors(assert.AnError, "")
	require.NotNil(t, resp.Error)
	assert.Empty(t, resp.Error.Details)
}
