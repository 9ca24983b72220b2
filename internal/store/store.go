// Package store はドキュメントストア（プロフィールとタスク）へのアクセスを提供する。
// 業務上の検証は行わず、バックエンドの失敗はすべてStoreFailureとして返す。
package store

import (
	"context"
	"log/slog"

	"github.com/hitoshi/todosync/internal/model"
)

// ProfileStore は users コレクションの拡張プロフィールを扱う。
type ProfileStore interface {
	// Get は指定ユーザーのプロフィールを取得する。存在しない場合はnilを返す。
	Get(ctx context.Context, userID string) (*model.Profile, error)
	// Set はプロフィールを丸ごと書き込む。既存のレコードは置き換える。
	Set(ctx context.Context, profile *model.Profile) error
	// UpdateDisplayName は既存プロフィールの表示名だけを更新する。
	// レコードが存在しない場合はエラーを返す。
	UpdateDisplayName(ctx context.Context, userID, displayName string) error
}

// TodoStore は todos コレクションのタスクを扱う。
type TodoStore interface {
	// Create はタスクを作成し、ストアが採番したIDを含めて返す。completedはfalseで作成する。
	Create(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error)
	// GetByID は指定IDのタスクを取得する。存在しない場合はnilを返す。
	GetByID(ctx context.Context, id string) (*model.Todo, error)
	// GetAll はタスクを作成日時の新しい順に返す。userIDが空でなければそのユーザーのタスクに絞る。
	GetAll(ctx context.Context, userID string) ([]*model.Todo, error)
	// Update はパッチを適用して更新後のタスクを返す。存在しない場合はnilを返す。
	Update(ctx context.Context, patch model.TodoPatch) (*model.Todo, error)
	// Delete は指定IDのタスクを削除する。存在しないIDの削除は成功として扱う。
	Delete(ctx context.Context, id string) error
}

// storeFailure はバックエンドの生エラーをログに記録し、汎用のStoreFailureに包む。
func storeFailure(ctx context.Context, operation string, err error) error {
	slog.ErrorContext(ctx, "document store operation failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	return model.NewStoreFailureError(operation, err)
}
