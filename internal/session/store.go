package session

import (
	"context"
	"log/slog"
)

// UserSessionKey はサインイン中ユーザーIDを保存するキー。
const UserSessionKey = "@user_session"

// Store はローカルセッション（最後に確認できたサインイン中ユーザーID）を管理する。
// ローカルストアのエラーはログに記録して握りつぶす。
// 認証基盤が正であり、ローカルの写しを失ってもサインイン・サインアウトを妨げないため。
type Store struct {
	kv KeyValue
}

// NewStore はStoreを生成する。
func NewStore(kv KeyValue) *Store {
	return &Store{kv: kv}
}

// Save はユーザーIDを保存する。
func (s *Store) Save(ctx context.Context, userID string) {
	if err := s.kv.Set(ctx, UserSessionKey, userID); err != nil {
		slog.Warn("failed to save user session",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}
}

// Load は保存済みのユーザーIDを返す。未保存または読み込み失敗時はfalseを返す。
func (s *Store) Load(ctx context.Context) (string, bool) {
	userID, ok, err := s.kv.Get(ctx, UserSessionKey)
	if err != nil {
		slog.Warn("failed to load user session", slog.String("error", err.Error()))
		return "", false
	}
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}

// Clear は保存済みのユーザーIDを削除する。
func (s *Store) Clear(ctx context.Context) {
	if err := s.kv.Remove(ctx, UserSessionKey); err != nil {
		slog.Warn("failed to clear user session", slog.String("error", err.Error()))
	}
}
