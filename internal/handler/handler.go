// Package handler はプレゼンテーション層向けのローカルHTTP APIを提供する。
// リクエストをユースケースに渡し、結果をJSONで返すだけで業務ロジックは持たない。
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/todosync/internal/identity"
	"github.com/hitoshi/todosync/internal/metrics"
	"github.com/hitoshi/todosync/internal/middleware"
	"github.com/hitoshi/todosync/internal/model"
	"github.com/hitoshi/todosync/internal/usecase"
)

// RegisterUseCase はアカウント登録のユースケース。
type RegisterUseCase interface {
	Execute(ctx context.Context, email, password, displayName string) (*model.User, error)
}

// LoginUseCase はサインインのユースケース。
type LoginUseCase interface {
	Execute(ctx context.Context, email, password string) (*model.User, error)
}

// LogoutUseCase はサインアウトのユースケース。
type LogoutUseCase interface {
	Execute(ctx context.Context) error
}

// UpdateProfileUseCase は表示名更新のユースケース。
type UpdateProfileUseCase interface {
	Execute(ctx context.Context, userID, displayName string) (*model.User, error)
}

// ResetPasswordUseCase はパスワード再設定のユースケース。
type ResetPasswordUseCase interface {
	Execute(ctx context.Context, email string) error
}

// ObserveAuthStateUseCase は認証状態購読のユースケース。
type ObserveAuthStateUseCase interface {
	Execute(callback func(*model.User)) *identity.Subscription
}

// RestoreSessionUseCase はローカルセッション読み出しのユースケース。
type RestoreSessionUseCase interface {
	Execute(ctx context.Context) (string, bool)
}

// CreateTodoUseCase はタスク作成のユースケース。
type CreateTodoUseCase interface {
	Execute(ctx context.Context, title, userID string) (*model.Todo, error)
}

// GetAllTodosUseCase はタスク一覧のユースケース。
type GetAllTodosUseCase interface {
	Execute(ctx context.Context, userID string) ([]*model.Todo, error)
}

// ToggleTodoUseCase はタスク完了切り替えのユースケース。
type ToggleTodoUseCase interface {
	Execute(ctx context.Context, id string) (*model.Todo, error)
}

// DeleteTodoUseCase はタスク削除のユースケース。
type DeleteTodoUseCase interface {
	Execute(ctx context.Context, id string) error
}

// Sanitizer は入力テキストからマークアップを取り除く。
type Sanitizer interface {
	Sanitize(raw string) string
}

// compile-time interface checks
var (
	_ RegisterUseCase              = (*usecase.Register)(nil)
	_ LoginUseCase                 = (*usecase.Login)(nil)
	_ LogoutUseCase                = (*usecase.Logout)(nil)
	_ middleware.CurrentUserFinder = (*usecase.GetCurrentUser)(nil)
	_ UpdateProfileUseCase         = (*usecase.UpdateProfile)(nil)
	_ ResetPasswordUseCase         = (*usecase.ResetPassword)(nil)
	_ ObserveAuthStateUseCase      = (*usecase.ObserveAuthState)(nil)
	_ RestoreSessionUseCase        = (*usecase.RestoreSession)(nil)
	_ CreateTodoUseCase            = (*usecase.CreateTodo)(nil)
	_ GetAllTodosUseCase           = (*usecase.GetAllTodos)(nil)
	_ ToggleTodoUseCase            = (*usecase.ToggleTodo)(nil)
	_ DeleteTodoUseCase            = (*usecase.DeleteTodo)(nil)
)

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// decodeJSON はリクエストボディをデコードする。失敗時は400を書き込んでfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "Solicitud inválida",
			Category: "validation",
			Action:   "Envía la solicitud en formato JSON válido.",
		})
		return false
	}
	return true
}

// handleServiceError はユースケースのエラーをHTTPレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeValidation, model.ErrCodeInvalidEmail, model.ErrCodeWeakPassword:
		return http.StatusBadRequest
	case model.ErrCodeNotFound:
		return http.StatusNotFound
	case model.ErrCodeNotAuthenticated, model.ErrCodeUserNotFound,
		model.ErrCodeWrongPassword, model.ErrCodeInvalidCredential:
		return http.StatusUnauthorized
	case model.ErrCodeEmailInUse:
		return http.StatusConflict
	case model.ErrCodeAuthFailure, model.ErrCodeStoreFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// recorder はユースケースの結果をメトリクスに記録する。collectorがnilなら何もしない。
type recorder struct {
	collector metrics.MetricsCollector
}

func (r recorder) record(name string, err error) {
	if r.collector != nil {
		r.collector.RecordUseCase(name, err)
	}
}

// currentUserID はサインイン必須ミドルウェアが注入したユーザーIDを返す。
// 取得できない場合は401を書き込んでfalseを返す。
func currentUserID(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewNotAuthenticatedError())
		return "", false
	}
	return userID, true
}
