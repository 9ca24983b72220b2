package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/todosync/internal/identity"
	"github.com/hitoshi/todosync/internal/model"
	"github.com/hitoshi/todosync/internal/repository"
)

// 表示名の文字数制限
const (
	MinDisplayNameLength = 2
	MaxDisplayNameLength = 50
)

// GetCurrentUser はサインイン中のユーザーを取得する。
type GetCurrentUser struct {
	repo repository.AuthRepository
}

// NewGetCurrentUser はGetCurrentUserを生成する。
func NewGetCurrentUser(repo repository.AuthRepository) *GetCurrentUser {
	return &GetCurrentUser{repo: repo}
}

// Execute はサインイン中のユーザーを返す。未サインインならnilを返す。
func (uc *GetCurrentUser) Execute(ctx context.Context) (*model.User, error) {
	return uc.repo.GetCurrentUser(ctx)
}

// UpdateProfile は表示名を更新する。
type UpdateProfile struct {
	repo repository.AuthRepository
}

// NewUpdateProfile はUpdateProfileを生成する。
func NewUpdateProfile(repo repository.AuthRepository) *UpdateProfile {
	return &UpdateProfile{repo: repo}
}

// Execute は表示名を検証し、前後の空白を除いた値で更新する。
// 検証に失敗した場合はどちらのバックエンドにも書き込まない。
func (uc *UpdateProfile) Execute(ctx context.Context, userID, displayName string) (*model.User, error) {
	trimmed := strings.TrimSpace(displayName)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n == 0:
		return nil, model.NewValidationError("El nombre no puede estar vacío")
	case n < MinDisplayNameLength:
		return nil, model.NewValidationError("El nombre debe tener al menos 2 caracteres")
	case n > MaxDisplayNameLength:
		return nil, model.NewValidationError("El nombre es demasiado largo (máximo 50 caracteres)")
	}

	return uc.repo.UpdateProfile(ctx, userID, trimmed)
}

// Register はアカウントを新規登録する。
type Register struct {
	repo repository.AuthRepository
}

// NewRegister はRegisterを生成する。
func NewRegister(repo repository.AuthRepository) *Register {
	return &Register{repo: repo}
}

// Execute は入力がそろっていることを確認してから登録する。
// パスワードは空白を含めてそのまま認証基盤に渡す。
func (uc *Register) Execute(ctx context.Context, email, password, displayName string) (*model.User, error) {
	email = strings.TrimSpace(email)
	displayName = strings.TrimSpace(displayName)
	if email == "" || strings.TrimSpace(password) == "" || displayName == "" {
		return nil, model.NewValidationError("Por favor completa todos los campos")
	}

	return uc.repo.Register(ctx, email, password, displayName)
}

// Login はメールアドレスとパスワードでサインインする。
type Login struct {
	repo repository.AuthRepository
}

// NewLogin はLoginを生成する。
func NewLogin(repo repository.AuthRepository) *Login {
	return &Login{repo: repo}
}

// Execute は入力がそろっていることを確認してからサインインする。
func (uc *Login) Execute(ctx context.Context, email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || strings.TrimSpace(password) == "" {
		return nil, model.NewValidationError("Por favor completa todos los campos")
	}

	return uc.repo.Login(ctx, email, password)
}

// Logout はサインアウトする。
type Logout struct {
	repo repository.AuthRepository
}

// NewLogout はLogoutを生成する。
func NewLogout(repo repository.AuthRepository) *Logout {
	return &Logout{repo: repo}
}

// Execute はサインアウトしてローカルセッションを削除する。
func (uc *Logout) Execute(ctx context.Context) error {
	return uc.repo.Logout(ctx)
}

// ResetPassword はパスワード再設定メールを送信する。
type ResetPassword struct {
	repo repository.AuthRepository
}

// NewResetPassword はResetPasswordを生成する。
func NewResetPassword(repo repository.AuthRepository) *ResetPassword {
	return &ResetPassword{repo: repo}
}

// Execute はメールアドレスが空でないことを確認してから送信する。
func (uc *ResetPassword) Execute(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return model.NewValidationError("Por favor ingresa tu email")
	}

	return uc.repo.ResetPassword(ctx, email)
}

// ObserveAuthState は認証状態の変化を購読する。
type ObserveAuthState struct {
	repo repository.AuthRepository
}

// NewObserveAuthState はObserveAuthStateを生成する。
func NewObserveAuthState(repo repository.AuthRepository) *ObserveAuthState {
	return &ObserveAuthState{repo: repo}
}

// Execute はcallbackを登録する。不要になったら戻り値のUnsubscribeを呼ぶこと。
func (uc *ObserveAuthState) Execute(callback func(*model.User)) *identity.Subscription {
	return uc.repo.OnAuthStateChanged(callback)
}

// RestoreSession はローカルセッションに残っている最後のユーザーIDを取得する。
type RestoreSession struct {
	repo repository.AuthRepository
}

// NewRestoreSession はRestoreSessionを生成する。
func NewRestoreSession(repo repository.AuthRepository) *RestoreSession {
	return &RestoreSession{repo: repo}
}

// Execute はセッションが保存されていればユーザーIDとtrueを返す。
func (uc *RestoreSession) Execute(ctx context.Context) (string, bool) {
	return uc.repo.LastKnownUserID(ctx)
}
