// Package usecase はプレゼンテーション層から呼ばれる業務操作を提供する。
// 入力検証はこの層で行い、それ以外のエラーはリポジトリからそのまま返す。
package usecase

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/todosync/internal/model"
	"github.com/hitoshi/todosync/internal/repository"
)

// CreateTodo はタスクを作成する。
type CreateTodo struct {
	repo repository.TodoRepository
}

// NewCreateTodo はCreateTodoを生成する。
func NewCreateTodo(repo repository.TodoRepository) *CreateTodo {
	return &CreateTodo{repo: repo}
}

// Execute はタイトルを検証してからタスクを作成する。
// 前後の空白を除いたタイトルが空、または200文字を超える場合はストアに書き込まない。
func (uc *CreateTodo) Execute(ctx context.Context, title, userID string) (*model.Todo, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return nil, model.NewValidationError("El titulo no puede estar vacio")
	}
	if utf8.RuneCountInString(trimmed) > model.MaxTodoTitleLength {
		return nil, model.NewValidationError("El titulo es demasiado largo")
	}

	return uc.repo.Create(ctx, model.CreateTodoInput{Title: trimmed, UserID: userID})
}

// DeleteTodo はタスクを削除する。
type DeleteTodo struct {
	repo repository.TodoRepository
}

// NewDeleteTodo はDeleteTodoを生成する。
func NewDeleteTodo(repo repository.TodoRepository) *DeleteTodo {
	return &DeleteTodo{repo: repo}
}

// Execute は指定IDのタスクを削除する。
func (uc *DeleteTodo) Execute(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// GetAllTodos はタスク一覧を取得する。
type GetAllTodos struct {
	repo repository.TodoRepository
}

// NewGetAllTodos はGetAllTodosを生成する。
func NewGetAllTodos(repo repository.TodoRepository) *GetAllTodos {
	return &GetAllTodos{repo: repo}
}

// Execute はタスクを作成日時の新しい順に返す。
func (uc *GetAllTodos) Execute(ctx context.Context, userID string) ([]*model.Todo, error) {
	return uc.repo.GetAll(ctx, userID)
}

// ToggleTodo はタスクの完了状態を反転する。
// 読み取りと書き込みの間に他の更新が入った場合は後勝ちになる。
type ToggleTodo struct {
	repo repository.TodoRepository
}

// NewToggleTodo はToggleTodoを生成する。
func NewToggleTodo(repo repository.TodoRepository) *ToggleTodo {
	return &ToggleTodo{repo: repo}
}

// Execute は指定IDのタスクを取得し、completedを反転して保存する。
func (uc *ToggleTodo) Execute(ctx context.Context, id string) (*model.Todo, error) {
	todo, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if todo == nil {
		return nil, model.NewTodoNotFoundError(id)
	}

	completed := !todo.Completed
	updated, err := uc.repo.Update(ctx, model.TodoPatch{ID: id, Completed: &completed})
	if err != nil {
		return nil, err
	}
	// 取得後に削除された
	if updated == nil {
		return nil, model.NewTodoNotFoundError(id)
	}
	return updated, nil
}
