package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/jneralrex/stratos-backend/internal/application/identity"
	"github.com/jneralrex/stratos-backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration and session HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// SignUp godoc
// @Summary      Register an account
// @Description  Public registration for students, affiliates and admins. A referral code may come from the ref query parameter or the body; an OTP is mailed to verify the email.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        ref     query string        false "Referral code"
// @Param        request body  SignUpRequest true  "Registration form"
// @Success      201 {object} dto.Response{data=SignUpResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      500 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/signup [post]
func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if !h.BindJSON(c, &req) {
		return
	}

	code := req.ReferralCode
	if ref := c.Query("ref"); ref != "" {
		code = ref
	}

	result, err := h.authService.SignUp(c.Request.Context(), identityapp.SignUpInput{
		FullName:           req.FullName,
		PhoneNumber:        req.PhoneNumber,
		CountryOfResidence: req.CountryOfResidence,
		Username:           req.Username,
		Email:              req.Email,
		Password:           req.Password,
		Course:             req.Course,
		Role:               req.Role,
		ReferralCode:       code,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, SignUpResponse{
		UserID:       result.UserID,
		Email:        result.Email,
		ReferralCode: result.ReferralCode,
		RefLink:      result.RefLink,
	})
}

// CreateUser godoc
// @Summary      Create a staff account
// @Description  Creates an already verified sales rep or admin
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body CreateUserRequest true "Account"
// @Success      201 {object} dto.Response{data=CreatedUserResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/users [post]
func (h *AuthHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if !h.BindJSON(c, &req) {
		return
	}

	created, err := h.authService.CreateUserByAdmin(c.Request.Context(), identityapp.CreateUserInput{
		FullName:           req.FullName,
		PhoneNumber:        req.PhoneNumber,
		CountryOfResidence: req.CountryOfResidence,
		Username:           req.Username,
		Email:              req.Email,
		Password:           req.Password,
		Role:               req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, CreatedUserResponse{ID: created.ID, Email: created.Email, Role: created.Role.String()})
}

// VerifyOTP godoc
// @Summary      Verify email
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body VerifyOTPRequest true "Email and OTP"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req VerifyOTPRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.authService.VerifyOTP(c.Request.Context(), req.Email, req.OTP); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Email verified successfully")
}

// ResendOTP godoc
// @Summary      Resend verification OTP
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body ResendOTPRequest true "Email"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/resend-otp [post]
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req ResendOTPRequest
	if !h.BindJSON(c, &req) {
		return
	}
	if err := h.authService.ResendOTP(c.Request.Context(), req.Email); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "A new OTP has been sent")
}

// SignIn godoc
// @Summary      Sign in
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body SignInRequest true "Credentials"
// @Success      200 {object} dto.Response{data=SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/signin [post]
func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.SignIn(c.Request.Context(), identityapp.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(result))
}

// RefreshToken godoc
// @Summary      Refresh access token
// @Description  Rotates a refresh token into a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "Refresh token"
// @Success      200 {object} dto.Response{data=SessionResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/refresh-token [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if !h.BindJSON(c, &req) {
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toSessionResponse(result))
}

// Logout godoc
// @Summary      Sign out
// @Description  Revokes the current access token and, when supplied, the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LogoutRequest false "Refresh token to revoke"
// @Success      200 {object} dto.Response
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	if claims == nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, ok := h.CallerID(c)
	if !ok {
		return
	}

	// The body is optional
	var req LogoutRequest
	if c.Request.ContentLength > 0 && !h.BindJSON(c, &req) {
		return
	}

	err := h.authService.Logout(c.Request.Context(), identityapp.LogoutInput{
		UserID:         userID,
		AccessTokenJTI: claims.ID,
		AccessTokenTTL: claims.GetRemainingTTL(),
		RefreshToken:   req.RefreshToken,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Logged out successfully")
}
