package testutil

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jneralrex/stratos-backend/internal/domain/finance"
	"github.com/jneralrex/stratos-backend/internal/domain/identity"
	"github.com/jneralrex/stratos-backend/internal/infrastructure/logger"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ==================== Database ====================

func TestNewMockDB(t *testing.T) {
	db := NewMockDB(t)
	db.Mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	var n int
	require.NoError(t, db.DB.Raw("SELECT 1").Scan(&n).Error)
	assert.Equal(t, 1, n)
	db.ExpectationsWereMet(t)
}

// ==================== Gin context ====================

func TestTestContext_SetCaller(t *testing.T) {
	tc := NewTestContext(t)
	id := uuid.New()

	tc.SetRequestID("req-1")
	tc.SetCaller(id, identity.RoleSalesRep)

	assert.Equal(t, "req-1", tc.Context.GetString(logger.GinRequestIDKey))
	assert.Equal(t, id.String(), middleware.GetJWTUserID(tc.Context))
	assert.Equal(t, identity.RoleSalesRep, middleware.GetJWTRole(tc.Context))
	assert.Equal(t, id.String(), logger.GetUserID(tc.Context.Request.Context()))
}

func TestNewTestUUID(t *testing.T) {
	assert.Equal(t, NewTestUUID("a"), NewTestUUID("a"))
	assert.NotEqual(t, NewTestUUID("a"), NewTestUUID("b"))
}

func TestContextWithTimeout(t *testing.T) {
	ctx := ContextWithTimeout(t, time.Minute)
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(time.Minute), deadline, time.Second)
}

func TestRequireEventually(t *testing.T) {
	start := time.Now()
	RequireEventually(t, func() bool { return time.Since(start) > 20*time.Millisecond }, time.Second, 5*time.Millisecond)
}

// ==================== HTTP ====================

func TestRunHTTPTestCases(t *testing.T) {
	h := func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.JSON(http.StatusUnauthorized, map[string]any{
				"success": false,
				"error":   map[string]any{"code": "ERR_UNAUTHORIZED", "message": "no token"},
			})
			return
		}
		c.JSON(http.StatusOK, map[string]any{"success": true, "data": map[string]string{"id": "42"}})
	}

	RunHTTPTestCases(t, h, []HTTPTestCase{
		{Name: "anonymous", ExpectedStatus: http.StatusUnauthorized, ExpectedCode: "ERR_UNAUTHORIZED"},
		{
			Name:           "authenticated",
			Headers:        BearerHeader("token"),
			ExpectedStatus: http.StatusOK,
			Validate: func(t *testing.T, tc *TestContext) {
				AssertSuccessResponse(t, tc)
				data := DecodeData[map[string]string](t, DecodeEnvelope(t, tc.ResponseBody()))
				assert.Equal(t, "42", data["id"])
			},
		},
	})
}

// ==================== Events ====================

func TestRecordingPublisher(t *testing.T) {
	p := NewRecordingPublisher()
	tx := NewFixtures(7).PendingTransaction(uuid.New())
	require.NoError(t, tx.Confirm(uuid.New()))

	require.NoError(t, p.Publish(context.Background(), tx.GetDomainEvents()...))
	assert.Equal(t, []string{finance.EventTypeTransactionConfirmed}, p.Types())
	assert.Equal(t, 1, p.Count(finance.EventTypeTransactionConfirmed))

	boom := errors.New("boom")
	p.SetError(boom)
	assert.ErrorIs(t, p.Publish(context.Background()), boom)
}

// ==================== Fixtures ====================

func TestFixtures_SignUpPassesValidation(t *testing.T) {
	f := NewFixtures(42)

	for _, role := range []identity.Role{identity.RoleStudent, identity.RoleAffiliate} {
		p := f.SignUp(role)
		assert.NoError(t, identity.ValidatePassword(p.Password))
		assert.Regexp(t, `^[a-zA-Z0-9_\-.]{3,100}$`, p.Username)
		assert.Equal(t, role == identity.RoleStudent, p.Course != "")
	}
}

func TestFixtures_UsersAreUnique(t *testing.T) {
	f := NewFixtures(1)
	a, b := f.User(identity.RoleAffiliate), f.User(identity.RoleAffiliate)

	assert.NotEqual(t, a.ID, b.ID)
	assert.NotEqual(t, a.Username, b.Username)
	assert.NotEqual(t, a.ReferralCode, b.ReferralCode)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(FixturePassword)))
}

func TestFixtures_ReferredStudent(t *testing.T) {
	f := NewFixtures(3)
	affiliate := f.User(identity.RoleAffiliate)
	student := f.ReferredStudent(affiliate)

	require.NotNil(t, student.ReferredBy)
	assert.Equal(t, affiliate.ID, *student.ReferredBy)
	assert.Empty(t, student.ReferralCode)
	assert.NotEmpty(t, student.Course)
}

func TestFixtures_PendingTransaction(t *testing.T) {
	tx := NewFixtures(9).PendingTransaction(uuid.New())

	assert.True(t, tx.IsPending())
	assert.True(t, tx.Amount.IsPositive())
	assert.Equal(t, tx.Amount.StringFixed(2), tx.Amount.Round(2).StringFixed(2))
	assert.Empty(t, tx.GetDomainEvents())
}
