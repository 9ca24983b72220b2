// Package identity はリモート認証基盤とのやり取りを扱う。
//
// Authority は認証基盤そのものの契約、Gateway はそれを包んで
// ドメインエラーへの変換とローカルセッションへの反映を行う。
package identity

import (
	"context"
	"fmt"
	"time"
)

// 認証基盤が返すエラーコード。
const (
	CodeEmailAlreadyInUse = "auth/email-already-in-use"
	CodeInvalidEmail      = "auth/invalid-email"
	CodeWeakPassword      = "auth/weak-password"
	CodeUserNotFound      = "auth/user-not-found"
	CodeWrongPassword     = "auth/wrong-password"
	CodeInvalidCredential = "auth/invalid-credential"
	CodeNoCurrentUser     = "auth/no-current-user"
	CodeNetworkFailed     = "auth/network-request-failed"
	CodeInternal          = "auth/internal-error"
)

// AuthorityUser は認証基盤が保持するユーザー情報。
// DisplayNameが空、CreatedAtがゼロ値の場合は認証基盤に値がないことを表す。
type AuthorityUser struct {
	UID         string
	Email       string
	DisplayName string
	CreatedAt   time.Time
}

// AuthorityError は認証基盤固有のエラー。
type AuthorityError struct {
	Code    string
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *AuthorityError) Error() string {
	if e.Message == "" {
		return e.Code
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Authority はリモート認証基盤の契約。
type Authority interface {
	// CreateAccount はアカウントを作成し、作成したユーザーでサインインする。
	CreateAccount(ctx context.Context, email, password string) (*AuthorityUser, error)
	// Authenticate はメールアドレスとパスワードでサインインする。
	Authenticate(ctx context.Context, email, password string) (*AuthorityUser, error)
	// SignOut はサインアウトする。
	SignOut(ctx context.Context) error
	// UpdateDisplayName はサインイン中ユーザーの表示名を更新する。
	UpdateDisplayName(ctx context.Context, displayName string) (*AuthorityUser, error)
	// SendPasswordReset はパスワード再設定メールを送信する。
	SendPasswordReset(ctx context.Context, email string) error
	// CurrentUser はサインイン中ユーザーを返す。未サインインならnil。
	CurrentUser() *AuthorityUser
	// Subscribe は認証状態の変化を購読する。
	// 登録時に現在の状態を1回通知し、以降は変化のたびに通知する。
	// 1つの登録に対する通知は直列化される。戻り値は購読解除関数。
	Subscribe(fn func(*AuthorityUser)) (unsubscribe func())
}

func copyUser(u *AuthorityUser) *AuthorityUser {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
