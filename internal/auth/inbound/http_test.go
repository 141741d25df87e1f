package inbound_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hlmsyhb/authgate/internal/auth/inbound"
	"github.com/hlmsyhb/authgate/internal/auth/usecase"
	"github.com/hlmsyhb/authgate/internal/pkg/config"
	"github.com/hlmsyhb/authgate/internal/pkg/goerror"
	"github.com/hlmsyhb/authgate/internal/pkg/instrument"
	"github.com/hlmsyhb/authgate/internal/pkg/router"
)

const routerConfigYAML = `
app:
  maintenance:
    endpoints: []
instrument:
  log_mask_fields:
    - "password"
    - "code"
`

type staticUUID struct{}

func (staticUUID) Generate() string { return "test-correlation-id" }

// fakeUsecase returns canned outputs and records the inputs it received.
type fakeUsecase struct {
	registerOut *usecase.RegisterOutput
	registerErr error
	loginOut    *usecase.LoginOutput
	loginErr    error
	verifyErr   error
	resendErr   error
	forgotErr   error
	resetErr    error
	refreshOut  *usecase.RefreshOutput
	refreshErr  error
	meOut       *usecase.MeOutput
	meErr       error

	lastRegister usecase.RegisterInput
	lastReset    usecase.ResetPasswordInput
	lastMe       usecase.MeInput
}

func (f *fakeUsecase) Register(_ context.Context, in usecase.RegisterInput) (*usecase.RegisterOutput, error) {
	f.lastRegister = in
	return f.registerOut, f.registerErr
}

func (f *fakeUsecase) Login(_ context.Context, _ usecase.LoginInput) (*usecase.LoginOutput, error) {
	return f.loginOut, f.loginErr
}

func (f *fakeUsecase) VerifyEmail(_ context.Context, _ usecase.VerifyEmailInput) (*usecase.VerifyEmailOutput, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return &usecase.VerifyEmailOutput{}, nil
}

func (f *fakeUsecase) ResendVerification(_ context.Context, _ usecase.ResendVerificationInput) (*usecase.ResendVerificationOutput, error) {
	if f.resendErr != nil {
		return nil, f.resendErr
	}
	return &usecase.ResendVerificationOutput{}, nil
}

func (f *fakeUsecase) ForgotPassword(_ context.Context, _ usecase.ForgotPasswordInput) (*usecase.ForgotPasswordOutput, error) {
	if f.forgotErr != nil {
		return nil, f.forgotErr
	}
	return &usecase.ForgotPasswordOutput{}, nil
}

func (f *fakeUsecase) ResetPassword(_ context.Context, in usecase.ResetPasswordInput) (*usecase.ResetPasswordOutput, error) {
	f.lastReset = in
	if f.resetErr != nil {
		return nil, f.resetErr
	}
	return &usecase.ResetPasswordOutput{}, nil
}

func (f *fakeUsecase) Refresh(_ context.Context, _ usecase.RefreshInput) (*usecase.RefreshOutput, error) {
	return f.refreshOut, f.refreshErr
}

func (f *fakeUsecase) Me(_ context.Context, in usecase.MeInput) (*usecase.MeOutput, error) {
	f.lastMe = in
	return f.meOut, f.meErr
}

func newTestServer(t *testing.T, uc *fakeUsecase) *httptest.Server {
	t.Helper()

	cfg, err := config.NewViperFromBytes("yaml", []byte(routerConfigYAML))
	if err != nil {
		t.Fatalf("failed to build config: %v", err)
	}

	ro := router.NewRouter(router.Config{
		Config:     cfg,
		UUID:       staticUUID{},
		Instrument: instrument.NewNoop(),
	})
	inbound.RegisterHTTPEndpoint(ro, uc)

	srv := httptest.NewServer(ro)
	t.Cleanup(srv.Close)
	return srv
}

type envelope struct {
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func doJSON(t *testing.T, srv *httptest.Server, method, path, body string, header http.Header) (int, envelope) {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp.StatusCode, env
}

func TestRegisterEndpoint(t *testing.T) {
	uc := &fakeUsecase{
		registerOut: &usecase.RegisterOutput{Email: "ann@example.com", FullName: "Ann Moore"},
	}
	srv := newTestServer(t, uc)

	status, env := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register",
		`{"email":"ann@example.com","password":"hunter2hunter2","name":"Ann Moore"}`, nil)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if env.Message != "Registration successful. Please verify your email." {
		t.Fatalf("unexpected message: %q", env.Message)
	}

	var data struct {
		User struct {
			Email string `json:"email"`
			Name  string `json:"name"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.User.Email != "ann@example.com" || data.User.Name != "Ann Moore" {
		t.Fatalf("unexpected user data: %+v", data.User)
	}

	if uc.lastRegister.FullName != "Ann Moore" {
		t.Fatalf("name field not mapped to full name: %+v", uc.lastRegister)
	}
}

func TestRegisterConflict(t *testing.T) {
	uc := &fakeUsecase{
		registerErr: goerror.NewBusiness("Email already registered", goerror.CodeConflict),
	}
	srv := newTestServer(t, uc)

	status, env := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register",
		`{"email":"ann@example.com","password":"hunter2hunter2","name":"Ann Moore"}`, nil)

	if status != http.StatusConflict {
		t.Fatalf("expected 409, got %d", status)
	}
	if env.Message != "Email already registered" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestRegisterRejectsUnknownFields(t *testing.T) {
	srv := newTestServer(t, &fakeUsecase{})

	status, _ := doJSON(t, srv, http.MethodPost, "/api/v1/auth/register",
		`{"email":"ann@example.com","password":"hunter2hunter2","name":"Ann Moore","admin":true}`, nil)

	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown field, got %d", status)
	}
}

func TestLoginEndpoint(t *testing.T) {
	uc := &fakeUsecase{
		loginOut: &usecase.LoginOutput{
			AccessToken:  "access-1",
			RefreshToken: "refresh-1",
			Email:        "ann@example.com",
			FullName:     "Ann Moore",
		},
	}
	srv := newTestServer(t, uc)

	status, env := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login",
		`{"email":"ann@example.com","password":"hunter2hunter2"}`, nil)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
		User         struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.AccessToken != "access-1" || data.RefreshToken != "refresh-1" || data.User.Email != "ann@example.com" {
		t.Fatalf("unexpected login data: %+v", data)
	}
}

func TestLoginErrorStatuses(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{
			name:   "invalid credentials",
			err:    goerror.NewBusiness("Invalid credentials", goerror.CodeUnauthorized),
			status: http.StatusUnauthorized,
			msg:    "Invalid credentials",
		},
		{
			name:   "unverified email",
			err:    goerror.NewBusiness("Please verify your email first", goerror.CodeForbidden),
			status: http.StatusForbidden,
			msg:    "Please verify your email first",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := newTestServer(t, &fakeUsecase{loginErr: tc.err})

			status, env := doJSON(t, srv, http.MethodPost, "/api/v1/auth/login",
				`{"email":"ann@example.com","password":"hunter2hunter2"}`, nil)

			if status != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, status)
			}
			if env.Message != tc.msg {
				t.Fatalf("unexpected message: %q", env.Message)
			}
		})
	}
}

func TestVerifyEmailEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeUsecase{})

	status, env := doJSON(t, srv, http.MethodPost, "/api/v1/auth/verify-email",
		`{"email":"ann@example.com","code":"123456"}`, nil)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if env.Message != "Email verified successfully!" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestResendVerificationCooldownStatus(t *testing.T) {
	uc := &fakeUsecase{
		resendErr: goerror.NewBusiness("Please wait 42 seconds before requesting a new code", goerror.CodeTooManyRequest),
	}
	srv := newTestServer(t, uc)

	status, env := doJSON(t, srv, http.MethodPost, "/api/v1/auth/resend-verification",
		`{"email":"ann@example.com"}`, nil)

	if status != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", status)
	}
	if env.Message != "Please wait 42 seconds before requesting a new code" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestForgotPasswordEndpoint(t *testing.T) {
	srv := newTestServer(t, &fakeUsecase{})

	status, env := doJSON(t, srv, http.MethodPost, "/api/v1/auth/forgot-password",
		`{"email":"ghost@example.com"}`, nil)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if env.Message != "If the email exists, a reset code has been sent." {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}

func TestResetPasswordEndpoint(t *testing.T) {
	uc := &fakeUsecase{}
	srv := newTestServer(t, uc)

	status, env := doJSON(t, srv, http.MethodPost, "/api/v1/auth/reset-password",
		`{"email":"ann@example.com","code":"123456","newPassword":"freshpassword"}`, nil)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if env.Message != "Password reset successfully!" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
	if uc.lastReset.NewPassword != "freshpassword" {
		t.Fatalf("newPassword not mapped: %+v", uc.lastReset)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	uc := &fakeUsecase{
		refreshOut: &usecase.RefreshOutput{AccessToken: "access-2", RefreshToken: "refresh-1"},
	}
	srv := newTestServer(t, uc)

	status, env := doJSON(t, srv, http.MethodPost, "/api/v1/auth/refresh",
		`{"refreshToken":"refresh-1"}`, nil)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}

	var data struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.AccessToken != "access-2" || data.RefreshToken != "refresh-1" {
		t.Fatalf("unexpected refresh data: %+v", data)
	}
}

func TestMeEndpoint(t *testing.T) {
	createdAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	uc := &fakeUsecase{
		meOut: &usecase.MeOutput{Email: "ann@example.com", FullName: "Ann Moore", CreatedAt: createdAt},
	}
	srv := newTestServer(t, uc)

	header := http.Header{}
	header.Set("Authorization", "Bearer access-1")
	status, env := doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", "", header)

	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if uc.lastMe.AccessToken != "access-1" {
		t.Fatalf("bearer token not extracted: %+v", uc.lastMe)
	}

	var data struct {
		User struct {
			Email     string    `json:"email"`
			Name      string    `json:"name"`
			CreatedAt time.Time `json:"createdAt"`
		} `json:"user"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.User.Email != "ann@example.com" || !data.User.CreatedAt.Equal(createdAt) {
		t.Fatalf("unexpected me data: %+v", data.User)
	}
}

func TestMeWithoutBearerToken(t *testing.T) {
	srv := newTestServer(t, &fakeUsecase{})

	status, env := doJSON(t, srv, http.MethodGet, "/api/v1/auth/me", "", nil)

	if status != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", status)
	}
	if env.Message != "Invalid token" {
		t.Fatalf("unexpected message: %q", env.Message)
	}
}
