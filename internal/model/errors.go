// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// Messageはそのまま画面に表示できる文言とし、バックエンドの生エラーは含めない。
type APIError struct {
	Code     string // エラーコード
	Message  string // 表示用メッセージ
	Category string // カテゴリ: auth, validation, todo, store
	Action   string // ユーザー向け対処方法

	cause error // ログ用の元エラー。Messageには出さない
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap は元エラーを返す。
func (e *APIError) Unwrap() error {
	return e.cause
}

// Is はエラーコードが一致する場合にtrueを返す。
// errors.Is(err, model.ErrNotFound) のようにセンチネルと比較できる。
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// 定義済みエラーコード
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeNotAuthenticated  = "NOT_AUTHENTICATED"
	ErrCodeEmailInUse        = "EMAIL_IN_USE"
	ErrCodeInvalidEmail      = "INVALID_EMAIL"
	ErrCodeWeakPassword      = "WEAK_PASSWORD"
	ErrCodeUserNotFound      = "USER_NOT_FOUND"
	ErrCodeWrongPassword     = "WRONG_PASSWORD"
	ErrCodeInvalidCredential = "INVALID_CREDENTIAL"
	ErrCodeAuthFailure       = "AUTH_FAILURE"
	ErrCodeStoreFailure      = "STORE_FAILURE"
)

// errors.Is 比較用のセンチネル。
var (
	ErrValidation        = &APIError{Code: ErrCodeValidation}
	ErrNotFound          = &APIError{Code: ErrCodeNotFound}
	ErrNotAuthenticated  = &APIError{Code: ErrCodeNotAuthenticated}
	ErrEmailInUse        = &APIError{Code: ErrCodeEmailInUse}
	ErrInvalidEmail      = &APIError{Code: ErrCodeInvalidEmail}
	ErrWeakPassword      = &APIError{Code: ErrCodeWeakPassword}
	ErrUserNotFound      = &APIError{Code: ErrCodeUserNotFound}
	ErrWrongPassword     = &APIError{Code: ErrCodeWrongPassword}
	ErrInvalidCredential = &APIError{Code: ErrCodeInvalidCredential}
	ErrAuthFailure       = &APIError{Code: ErrCodeAuthFailure}
	ErrStoreFailure      = &APIError{Code: ErrCodeStoreFailure}
)

// IsAuthFailure は認証系（AuthFailureとそのサブ種別）のエラーかどうかを返す。
func IsAuthFailure(err error) bool {
	var e *APIError
	if !errors.As(err, &e) {
		return false
	}
	switch e.Code {
	case ErrCodeEmailInUse, ErrCodeInvalidEmail, ErrCodeWeakPassword,
		ErrCodeUserNotFound, ErrCodeWrongPassword, ErrCodeInvalidCredential,
		ErrCodeAuthFailure:
		return true
	}
	return false
}

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidation,
		Message:  message,
		Category: "validation",
		Action:   "Revisa los datos ingresados.",
	}
}

// NewTodoNotFoundError はタスク未検出エラーを生成する。
func NewTodoNotFoundError(todoID string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  "Tarea no encontrada",
		Category: "todo",
		Action:   fmt.Sprintf("Verifica que la tarea %s exista.", todoID),
	}
}

// NewNotAuthenticatedError は未ログイン状態での操作エラーを生成する。
func NewNotAuthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeNotAuthenticated,
		Message:  "No hay usuario autenticado",
		Category: "auth",
		Action:   "Inicia sesión para continuar.",
	}
}

// NewEmailInUseError はメールアドレス重複エラーを生成する。
func NewEmailInUseError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailInUse,
		Message:  "Este email ya está registrado",
		Category: "auth",
		Action:   "Inicia sesión o usa otro email.",
	}
}

// NewInvalidEmailError はメールアドレス形式エラーを生成する。
func NewInvalidEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidEmail,
		Message:  "Email inválido",
		Category: "auth",
		Action:   "Revisa el formato del email.",
	}
}

// NewWeakPasswordError は弱いパスワードのエラーを生成する。
func NewWeakPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWeakPassword,
		Message:  "La contraseña es muy débil (mínimo 6 caracteres)",
		Category: "auth",
		Action:   "Usa una contraseña de al menos 6 caracteres.",
	}
}

// NewUserNotFoundError はアカウント未検出エラーを生成する。
// パスワードリセット時は文言が異なるため message を受け取る。
func NewUserNotFoundError(message string) *APIError {
	if message == "" {
		message = "Usuario no encontrado"
	}
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  message,
		Category: "auth",
		Action:   "Revisa el email o crea una cuenta.",
	}
}

// NewWrongPasswordError はパスワード不一致エラーを生成する。
func NewWrongPasswordError() *APIError {
	return &APIError{
		Code:     ErrCodeWrongPassword,
		Message:  "Contraseña incorrecta",
		Category: "auth",
		Action:   "Revisa la contraseña.",
	}
}

// NewInvalidCredentialError は認証情報不正エラーを生成する。
func NewInvalidCredentialError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidCredential,
		Message:  "Credenciales inválidas",
		Category: "auth",
		Action:   "Revisa el email y la contraseña.",
	}
}

// NewAuthFailureError は汎用の認証エラーを生成する。
// message は操作ごとの表示文言（例: "Error al iniciar sesión"）。
func NewAuthFailureError(message string, cause error) *APIError {
	return &APIError{
		Code:     ErrCodeAuthFailure,
		Message:  message,
		Category: "auth",
		Action:   "Espera un momento e inténtalo de nuevo.",
		cause:    cause,
	}
}

// NewStoreFailureError はドキュメントストアの汎用エラーを生成する。
// operationはログ用に元エラーへ付与し、表示用の文言には含めない。
func NewStoreFailureError(operation string, cause error) *APIError {
	if cause != nil {
		cause = fmt.Errorf("%s: %w", operation, cause)
	}
	return &APIError{
		Code:     ErrCodeStoreFailure,
		Message:  "No se pudo completar la operación. Inténtalo de nuevo.",
		Category: "store",
		Action:   "Espera un momento e inténtalo de nuevo.",
		cause:    cause,
	}
}
