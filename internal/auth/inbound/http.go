package inbound

import (
	"context"

	"github.com/hlmsyhb/authgate/internal/auth/usecase"
	"github.com/hlmsyhb/authgate/internal/pkg/router"
)

type uc interface {
	Register(ctx context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error)
	Login(ctx context.Context, in usecase.LoginInput) (*usecase.LoginOutput, error)
	VerifyEmail(ctx context.Context, in usecase.VerifyEmailInput) (*usecase.VerifyEmailOutput, error)
	ResendVerification(ctx context.Context, in usecase.ResendVerificationInput) (*usecase.ResendVerificationOutput, error)
	ForgotPassword(ctx context.Context, in usecase.ForgotPasswordInput) (*usecase.ForgotPasswordOutput, error)
	ResetPassword(ctx context.Context, in usecase.ResetPasswordInput) (*usecase.ResetPasswordOutput, error)
	Refresh(ctx context.Context, in usecase.RefreshInput) (*usecase.RefreshOutput, error)
	Me(ctx context.Context, in usecase.MeInput) (*usecase.MeOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	// Registration & verification
	r.POST("/api/v1/auth/register", end.Register)
	r.POST("/api/v1/auth/verify-email", end.VerifyEmail)
	r.POST("/api/v1/auth/resend-verification", end.ResendVerification)

	// Sessions
	r.POST("/api/v1/auth/login", end.Login)
	r.POST("/api/v1/auth/refresh", end.Refresh)
	r.GET("/api/v1/auth/me", end.Me)

	// Password recovery
	r.POST("/api/v1/auth/forgot-password", end.ForgotPassword)
	r.POST("/api/v1/auth/reset-password", end.ResetPassword)
}
