package inbound

import "time"

// UserData is the public account view; credentials never leave the usecase
// layer.
type UserData struct {
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type RegisterResponse struct {
	User UserData `json:"user"`
}

func (RegisterResponse) Message() string {
	return "Registration successful. Please verify your email."
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         UserData `json:"user"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type VerifyEmailResponse struct{}

func (VerifyEmailResponse) Message() string {
	return "Email verified successfully!"
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

type ResendVerificationResponse struct{}

func (ResendVerificationResponse) Message() string {
	return "Verification code sent! Check your email for the code."
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordResponse struct{}

func (ForgotPasswordResponse) Message() string {
	return "If the email exists, a reset code has been sent."
}

type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Code        string `json:"code"`
	NewPassword string `json:"newPassword"`
}

type ResetPasswordResponse struct{}

func (ResetPasswordResponse) Message() string {
	return "Password reset successfully!"
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type RefreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type MeResponse struct {
	User UserData `json:"user"`
}
