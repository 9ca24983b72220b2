package repository

import (
	"context"
	"log/slog"
	"time"

	"github.com/hitoshi/todosync/internal/identity"
	"github.com/hitoshi/todosync/internal/model"
	"github.com/hitoshi/todosync/internal/store"
)

// authRepo は認証ゲートウェイとプロフィールストアを組み合わせたAuthRepository。
// 2つのバックエンドへの書き込みは原子的ではなく、途中で失敗しても補償しない。
type authRepo struct {
	identity IdentityGateway
	profiles store.ProfileStore
	now      func() time.Time
}

// NewAuthRepository はAuthRepositoryを生成する。
func NewAuthRepository(gateway IdentityGateway, profiles store.ProfileStore) *authRepo {
	return &authRepo{identity: gateway, profiles: profiles, now: time.Now}
}

// Register は 認証基盤 → プロフィールストア → ローカルセッション の順に書き込む。
func (r *authRepo) Register(ctx context.Context, email, password, displayName string) (*model.User, error) {
	au, err := r.identity.SignUp(ctx, email, password, displayName)
	if err != nil {
		return nil, err
	}

	now := r.now()
	profile := &model.Profile{
		UserID:      au.UID,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
	}
	if err := r.profiles.Set(ctx, profile); err != nil {
		slog.Error("account created without profile record",
			slog.String("user_id", au.UID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	r.identity.RememberSession(ctx, au.UID)

	return &model.User{
		ID:          au.UID,
		Email:       email,
		DisplayName: displayName,
		CreatedAt:   now,
	}, nil
}

// Login は認証してセッションを保存した後、プロフィールを取得してマージする。
func (r *authRepo) Login(ctx context.Context, email, password string) (*model.User, error) {
	au, err := r.identity.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}

	r.identity.RememberSession(ctx, au.UID)

	profile, err := r.profiles.Get(ctx, au.UID)
	if err != nil {
		return nil, err
	}

	user := MergeUser(au, profile, r.now())
	return &user, nil
}

// Logout はサインアウトしてセッションを削除する。
func (r *authRepo) Logout(ctx context.Context) error {
	return r.identity.SignOut(ctx)
}

// GetCurrentUser は認証基盤のサインイン中ユーザーをマージせずに返す。
func (r *authRepo) GetCurrentUser(ctx context.Context) (*model.User, error) {
	return r.identity.CurrentUser(), nil
}

// UpdateProfile は 認証基盤 → プロフィールストア の順に表示名を書き込む。
// 返すUserは認証基盤側の値のみから組み立てる。
func (r *authRepo) UpdateProfile(ctx context.Context, userID, displayName string) (*model.User, error) {
	user, err := r.identity.UpdateDisplayName(ctx, displayName)
	if err != nil {
		return nil, err
	}

	if err := r.profiles.UpdateDisplayName(ctx, userID, displayName); err != nil {
		slog.Error("display name updated only in authority",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	return user, nil
}

// ResetPassword はパスワード再設定メールを送信する。
func (r *authRepo) ResetPassword(ctx context.Context, email string) error {
	return r.identity.ResetPassword(ctx, email)
}

// OnAuthStateChanged は認証状態の変化を購読する。
func (r *authRepo) OnAuthStateChanged(callback func(*model.User)) *identity.Subscription {
	return r.identity.OnAuthStateChanged(callback)
}

// LastKnownUserID はローカルセッションに残っているユーザーIDを返す。
func (r *authRepo) LastKnownUserID(ctx context.Context) (string, bool) {
	return r.identity.LastKnownUserID(ctx)
}

// compile-time interface check
var _ AuthRepository = (*authRepo)(nil)
