package repository

import (
	"context"

	"github.com/hitoshi/todosync/internal/model"
	"github.com/hitoshi/todosync/internal/store"
)

// todoRepo はTodoStoreへの素通しのTodoRepository。
type todoRepo struct {
	todos store.TodoStore
}

// NewTodoRepository はTodoRepositoryを生成する。
func NewTodoRepository(todos store.TodoStore) *todoRepo {
	return &todoRepo{todos: todos}
}

func (r *todoRepo) Create(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error) {
	return r.todos.Create(ctx, input)
}

func (r *todoRepo) GetAll(ctx context.Context, userID string) ([]*model.Todo, error) {
	return r.todos.GetAll(ctx, userID)
}

func (r *todoRepo) GetByID(ctx context.Context, id string) (*model.Todo, error) {
	return r.todos.GetByID(ctx, id)
}

func (r *todoRepo) Update(ctx context.Context, patch model.TodoPatch) (*model.Todo, error) {
	return r.todos.Update(ctx, patch)
}

func (r *todoRepo) Delete(ctx context.Context, id string) error {
	return r.todos.Delete(ctx, id)
}

// compile-time interface check
var _ TodoRepository = (*todoRepo)(nil)
