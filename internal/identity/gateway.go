package identity

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/hitoshi/todosync/internal/model"
)

// SessionStore はゲートウェイが認証状態を書き写すローカルセッション。
type SessionStore interface {
	Save(ctx context.Context, userID string)
	Load(ctx context.Context) (string, bool)
	Clear(ctx context.Context)
}

// Gateway は認証基盤を包み、エラーをドメインエラーに変換する。
// 認証状態の変化はローカルセッションへ反映してから購読者に通知する。
type Gateway struct {
	authority Authority
	sessions  SessionStore
	now       func() time.Time

	mu sync.Mutex
	// restored は生成時点でローカルセッションに残っていたユーザーID。
	// 認証基盤はプロセス起動直後に未サインインを通知してセッションを消すため、
	// 明示的なサインイン・サインアウトか、サインイン通知があるまで保持する。
	restored string
}

// NewGateway はGatewayを生成する。
// 認証基盤の購読より前に、前回のセッションを読み込んでおく。
func NewGateway(authority Authority, sessions SessionStore) *Gateway {
	g := &Gateway{
		authority: authority,
		sessions:  sessions,
		now:       time.Now,
	}
	if id, ok := sessions.Load(context.Background()); ok {
		g.restored = id
	}
	return g
}

func (g *Gateway) forgetRestored() {
	g.mu.Lock()
	g.restored = ""
	g.mu.Unlock()
}

// SignUp はアカウントを作成し、認証基盤側の表示名を設定する。
// 返すAuthorityUserの表示名は入力値。
func (g *Gateway) SignUp(ctx context.Context, email, password, displayName string) (*AuthorityUser, error) {
	created, err := g.authority.CreateAccount(ctx, email, password)
	if err != nil {
		logAuthorityError("sign_up", err)
		return nil, mapSignUpError(err)
	}

	updated, err := g.authority.UpdateDisplayName(ctx, displayName)
	if err != nil {
		logAuthorityError("sign_up.update_display_name", err)
		return nil, mapSignUpError(err)
	}
	if updated != nil {
		created = updated
	}
	created.DisplayName = displayName
	return created, nil
}

// SignIn はメールアドレスとパスワードで認証する。
func (g *Gateway) SignIn(ctx context.Context, email, password string) (*AuthorityUser, error) {
	u, err := g.authority.Authenticate(ctx, email, password)
	if err != nil {
		logAuthorityError("sign_in", err)
		return nil, mapSignInError(err)
	}
	return u, nil
}

// SignOut は認証基盤からサインアウトし、ローカルセッションを削除する。
// サインアウト後のセッション削除に失敗しても成功として扱う。
func (g *Gateway) SignOut(ctx context.Context) error {
	if err := g.authority.SignOut(ctx); err != nil {
		logAuthorityError("sign_out", err)
		return model.NewAuthFailureError("Error al cerrar sesión", err)
	}
	g.forgetRestored()
	g.sessions.Clear(ctx)
	return nil
}

// CurrentUser は認証基盤のサインイン中ユーザーをそのまま変換して返す。
// プロフィールストアとのマージは行わない。未サインインならnil。
func (g *Gateway) CurrentUser() *model.User {
	u := g.authority.CurrentUser()
	if u == nil {
		return nil
	}
	mapped := g.MapUser(u)
	return &mapped
}

// UpdateDisplayName はサインイン中ユーザーの表示名を認証基盤上で更新する。
// サインイン中ユーザーがいない場合は何も書き込まずにNotAuthenticatedを返す。
func (g *Gateway) UpdateDisplayName(ctx context.Context, displayName string) (*model.User, error) {
	if g.authority.CurrentUser() == nil {
		return nil, model.NewNotAuthenticatedError()
	}

	u, err := g.authority.UpdateDisplayName(ctx, displayName)
	if err != nil {
		logAuthorityError("update_display_name", err)
		var ae *AuthorityError
		if errors.As(err, &ae) && ae.Code == CodeNoCurrentUser {
			return nil, model.NewNotAuthenticatedError()
		}
		return nil, model.NewAuthFailureError("Error al actualizar perfil", err)
	}
	mapped := g.MapUser(u)
	return &mapped, nil
}

// ResetPassword はパスワード再設定メールを送信する。
func (g *Gateway) ResetPassword(ctx context.Context, email string) error {
	if err := g.authority.SendPasswordReset(ctx, email); err != nil {
		logAuthorityError("reset_password", err)
		switch authorityCode(err) {
		case CodeUserNotFound:
			return model.NewUserNotFoundError("No existe una cuenta con este email")
		case CodeInvalidEmail:
			return model.NewInvalidEmailError()
		}
		return model.NewAuthFailureError("Error al enviar email de recuperación", err)
	}
	return nil
}

// RememberSession はユーザーIDをローカルセッションに保存する。
func (g *Gateway) RememberSession(ctx context.Context, userID string) {
	g.forgetRestored()
	g.sessions.Save(ctx, userID)
}

// LastKnownUserID はローカルセッションに残っているユーザーIDを返す。
// セッションが空なら、起動時に読み込んだ前回のユーザーIDを返す。
// 認証基盤の現在の状態とは一致しない可能性がある。
func (g *Gateway) LastKnownUserID(ctx context.Context) (string, bool) {
	if id, ok := g.sessions.Load(ctx); ok {
		return id, true
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.restored, g.restored != ""
}

// Subscription は認証状態の購読登録。Unsubscribeで解除する。
type Subscription struct {
	once        sync.Once
	unsubscribe func()
}

// Unsubscribe は購読を解除する。複数回呼んでも安全。
func (s *Subscription) Unsubscribe() {
	s.once.Do(s.unsubscribe)
}

// OnAuthStateChanged は認証状態の変化を購読する。
// 通知のたびに、サインイン中ならセッションを保存、未サインインならセッションを削除してから
// callbackを呼ぶ。購読開始時点の状態も通知されることがある。
func (g *Gateway) OnAuthStateChanged(callback func(*model.User)) *Subscription {
	unsubscribe := g.authority.Subscribe(func(u *AuthorityUser) {
		ctx := context.Background()
		if u == nil {
			g.sessions.Clear(ctx)
			callback(nil)
			return
		}
		g.forgetRestored()
		g.sessions.Save(ctx, u.UID)
		mapped := g.MapUser(u)
		callback(&mapped)
	})
	return NewSubscription(unsubscribe)
}

// MapUser は認証基盤のユーザーをドメインのUserに変換する。
// 表示名がなければ既定値、作成日時がなければ現在時刻を使う。
func (g *Gateway) MapUser(u *AuthorityUser) model.User {
	user := model.User{
		ID:          u.UID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
		CreatedAt:   u.CreatedAt,
	}
	if user.DisplayName == "" {
		user.DisplayName = model.DefaultDisplayName
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = g.now()
	}
	return user
}

func mapSignUpError(err error) error {
	switch authorityCode(err) {
	case CodeEmailAlreadyInUse:
		return model.NewEmailInUseError()
	case CodeInvalidEmail:
		return model.NewInvalidEmailError()
	case CodeWeakPassword:
		return model.NewWeakPasswordError()
	}
	return model.NewAuthFailureError("Error al registrar usuario", err)
}

func mapSignInError(err error) error {
	switch authorityCode(err) {
	case CodeUserNotFound:
		return model.NewUserNotFoundError("")
	case CodeWrongPassword:
		return model.NewWrongPasswordError()
	case CodeInvalidCredential:
		return model.NewInvalidCredentialError()
	}
	return model.NewAuthFailureError("Error al iniciar sesión", err)
}

func authorityCode(err error) string {
	var ae *AuthorityError
	if errors.As(err, &ae) {
		return ae.Code
	}
	return ""
}

func logAuthorityError(operation string, err error) {
	slog.Error("identity operation failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// NewSubscription は解除関数からSubscriptionを生成する。
func NewSubscription(unsubscribe func()) *Subscription {
	return &Subscription{unsubscribe: unsubscribe}
}
