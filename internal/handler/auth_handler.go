package handler

import (
	"errors"
	"net/http"

	"github.com/hitoshi/todosync/internal/metrics"
	"github.com/hitoshi/todosync/internal/middleware"
	"github.com/hitoshi/todosync/internal/model"
)

// AuthUseCases は認証ハンドラーが使うユースケース群。
type AuthUseCases struct {
	Register       RegisterUseCase
	Login          LoginUseCase
	Logout         LogoutUseCase
	CurrentUser    middleware.CurrentUserFinder
	UpdateProfile  UpdateProfileUseCase
	ResetPassword  ResetPasswordUseCase
	RestoreSession RestoreSessionUseCase
}

// AuthHandler は認証とプロフィールのHTTPハンドラー。
type AuthHandler struct {
	uc        AuthUseCases
	sanitizer Sanitizer
	recorder
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(uc AuthUseCases, sanitizer Sanitizer, collector metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{uc: uc, sanitizer: sanitizer, recorder: recorder{collector: collector}}
}

type registerRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"displayName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type updateProfileRequest struct {
	DisplayName string `json:"displayName"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

// meResponse は /auth/me のレスポンス。
// userは認証基盤のサインイン中ユーザー、lastKnownUserIdはローカルセッションの値。
type meResponse struct {
	User            *model.User `json:"user"`
	LastKnownUserID string      `json:"lastKnownUserId,omitempty"`
}

// Register はアカウントを登録する。
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.uc.Register.Execute(r.Context(), req.Email, req.Password, h.sanitizer.Sanitize(req.DisplayName))
	h.record("register", err)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login はサインインする。
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.uc.Login.Execute(r.Context(), req.Email, req.Password)
	h.record("login", err)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Logout はサインアウトする。
// POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	err := h.uc.Logout.Execute(r.Context())
	h.record("logout", err)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me は現在のユーザーを返す。未サインインでもuser=nullで200を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.uc.CurrentUser.Execute(r.Context())
	h.record("get_current_user", err)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := meResponse{User: user}
	if id, ok := h.uc.RestoreSession.Execute(r.Context()); ok {
		resp.LastKnownUserID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

// UpdateProfile は表示名を更新する。
// PUT /auth/profile
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.uc.UpdateProfile.Execute(r.Context(), userID, h.sanitizer.Sanitize(req.DisplayName))
	h.record("update_profile", err)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ResetPassword はパスワード再設定メールを送信する。
// POST /auth/password-reset
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := h.uc.ResetPassword.Execute(r.Context(), req.Email)
	h.record("reset_password", err)
	var apiErr *model.APIError
	if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeUserNotFound {
		// サインインの失敗ではなく、宛先のアカウントがないことを表す
		middleware.WriteErrorResponse(w, http.StatusNotFound, apiErr)
		return
	}
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusAccepted)
}
