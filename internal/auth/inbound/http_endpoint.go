package inbound

import (
	"github.com/hlmsyhb/authgate/internal/auth/usecase"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
	"github.com/hlmsyhb/authgate/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for the authentication workflows.
type HTTPEndpoint struct {
	uc uc
}

// Register creates an unverified account and triggers code delivery.
func (h *HTTPEndpoint) Register(r *router.Request) (any, error) {
	var req RegisterRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Register(r.Context(), usecase.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.Name,
	})
	if err != nil {
		return nil, err
	}

	return RegisterResponse{
		User: UserData{Email: resp.Email, Name: resp.FullName},
	}, nil
}

// Login authenticates a verified account and issues tokens.
func (h *HTTPEndpoint) Login(r *router.Request) (any, error) {
	var req LoginRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Login(r.Context(), usecase.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return nil, err
	}

	return LoginResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         UserData{Email: resp.Email, Name: resp.FullName},
	}, nil
}

// VerifyEmail confirms an account with its emailed code.
func (h *HTTPEndpoint) VerifyEmail(r *router.Request) (any, error) {
	var req VerifyEmailRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if _, err := h.uc.VerifyEmail(r.Context(), usecase.VerifyEmailInput{
		Email: req.Email,
		Code:  req.Code,
	}); err != nil {
		return nil, err
	}

	return VerifyEmailResponse{}, nil
}

// ResendVerification issues a replacement verification code, throttled by the
// resend cooldown.
func (h *HTTPEndpoint) ResendVerification(r *router.Request) (any, error) {
	var req ResendVerificationRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if _, err := h.uc.ResendVerification(r.Context(), usecase.ResendVerificationInput{
		Email: req.Email,
	}); err != nil {
		return nil, err
	}

	return ResendVerificationResponse{}, nil
}

// ForgotPassword starts password recovery with a deliberately generic reply.
func (h *HTTPEndpoint) ForgotPassword(r *router.Request) (any, error) {
	var req ForgotPasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if _, err := h.uc.ForgotPassword(r.Context(), usecase.ForgotPasswordInput{
		Email: req.Email,
	}); err != nil {
		return nil, err
	}

	return ForgotPasswordResponse{}, nil
}

// ResetPassword sets a new credential after a valid reset code.
func (h *HTTPEndpoint) ResetPassword(r *router.Request) (any, error) {
	var req ResetPasswordRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if _, err := h.uc.ResetPassword(r.Context(), usecase.ResetPasswordInput{
		Email:       req.Email,
		Code:        req.Code,
		NewPassword: req.NewPassword,
	}); err != nil {
		return nil, err
	}

	return ResetPasswordResponse{}, nil
}

// Refresh exchanges a refresh identifier for a fresh access token.
func (h *HTTPEndpoint) Refresh(r *router.Request) (any, error) {
	var req RefreshRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.Refresh(r.Context(), usecase.RefreshInput{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		return nil, err
	}

	return RefreshResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
	}, nil
}

// Me returns the public view of the account owning the bearer token.
func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	token := r.BearerToken()
	if token == "" {
		return nil, goerror.NewBusiness("Invalid token", goerror.CodeUnauthorized)
	}

	resp, err := h.uc.Me(r.Context(), usecase.MeInput{AccessToken: token})
	if err != nil {
		return nil, err
	}

	createdAt := resp.CreatedAt

	return MeResponse{
		User: UserData{Email: resp.Email, Name: resp.FullName, CreatedAt: &createdAt},
	}, nil
}
