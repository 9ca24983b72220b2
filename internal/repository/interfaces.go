// Package repository はユースケース層が依存するリポジトリを定義する。
// 認証基盤とドキュメントストアの複数ゲートウェイを組み合わせるのはこの層だけである。
package repository

import (
	"context"

	"github.com/hitoshi/todosync/internal/identity"
	"github.com/hitoshi/todosync/internal/model"
)

// AuthRepository は認証とユーザープロフィールのリポジトリ。
// 返すUserは認証基盤とプロフィールストアをマージした値である（GetCurrentUserを除く）。
type AuthRepository interface {
	// Register はアカウントとプロフィールを作成し、セッションを保存する。
	Register(ctx context.Context, email, password, displayName string) (*model.User, error)
	// Login は認証してセッションを保存し、マージ済みのUserを返す。
	Login(ctx context.Context, email, password string) (*model.User, error)
	// Logout はサインアウトしてセッションを削除する。
	Logout(ctx context.Context) error
	// GetCurrentUser は認証基盤のサインイン中ユーザーを返す。未サインインならnil。
	GetCurrentUser(ctx context.Context) (*model.User, error)
	// UpdateProfile は認証基盤とプロフィールストアの表示名を更新する。
	UpdateProfile(ctx context.Context, userID, displayName string) (*model.User, error)
	// ResetPassword はパスワード再設定メールを送信する。
	ResetPassword(ctx context.Context, email string) error
	// OnAuthStateChanged は認証状態の変化を購読する。
	OnAuthStateChanged(callback func(*model.User)) *identity.Subscription
	// LastKnownUserID はローカルセッションに残っているユーザーIDを返す。
	LastKnownUserID(ctx context.Context) (string, bool)
}

// TodoRepository はタスクのリポジトリ。
type TodoRepository interface {
	Create(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error)
	GetAll(ctx context.Context, userID string) ([]*model.Todo, error)
	GetByID(ctx context.Context, id string) (*model.Todo, error)
	Update(ctx context.Context, patch model.TodoPatch) (*model.Todo, error)
	Delete(ctx context.Context, id string) error
}

// IdentityGateway はAuthRepositoryが使う認証ゲートウェイ。identity.Gatewayが実装する。
type IdentityGateway interface {
	SignUp(ctx context.Context, email, password, displayName string) (*identity.AuthorityUser, error)
	SignIn(ctx context.Context, email, password string) (*identity.AuthorityUser, error)
	SignOut(ctx context.Context) error
	CurrentUser() *model.User
	UpdateDisplayName(ctx context.Context, displayName string) (*model.User, error)
	ResetPassword(ctx context.Context, email string) error
	RememberSession(ctx context.Context, userID string)
	LastKnownUserID(ctx context.Context) (string, bool)
	OnAuthStateChanged(callback func(*model.User)) *identity.Subscription
}

var _ IdentityGateway = (*identity.Gateway)(nil)
