package repository

import (
	"context"
	"testing"

	"github.com/hitoshi/todosync/internal/model"
)

type mockTodoStore struct {
	createFn  func(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error)
	getAllFn  func(ctx context.Context, userID string) ([]*model.Todo, error)
	getByIDFn func(ctx context.Context, id string) (*model.Todo, error)
	updateFn  func(ctx context.Context, patch model.TodoPatch) (*model.Todo, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockTodoStore) Create(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error) {
	return m.createFn(ctx, input)
}

func (m *mockTodoStore) GetAll(ctx context.Context, userID string) ([]*model.Todo, error) {
	return m.getAllFn(ctx, userID)
}

func (m *mockTodoStore) GetByID(ctx context.Context, id string) (*model.Todo, error) {
	return m.getByIDFn(ctx, id)
}

func (m *mockTodoStore) Update(ctx context.Context, patch model.TodoPatch) (*model.Todo, error) {
	return m.updateFn(ctx, patch)
}

func (m *mockTodoStore) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}

func TestTodoRepo_PassesThrough(t *testing.T) {
	var deleted string
	s := &mockTodoStore{
		createFn: func(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error) {
			return &model.Todo{ID: "t-1", Title: input.Title}, nil
		},
		getAllFn: func(ctx context.Context, userID string) ([]*model.Todo, error) {
			return []*model.Todo{{ID: "t-1", UserID: userID}}, nil
		},
		getByIDFn: func(ctx context.Context, id string) (*model.Todo, error) {
			return nil, nil
		},
		updateFn: func(ctx context.Context, patch model.TodoPatch) (*model.Todo, error) {
			return &model.Todo{ID: patch.ID, Completed: *patch.Completed}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deleted = id
			return nil
		},
	}
	r := NewTodoRepository(s)
	ctx := context.Background()

	if todo, _ := r.Create(ctx, model.CreateTodoInput{Title: "Buy milk"}); todo.Title != "Buy milk" {
		t.Errorf("Create = %+v", todo)
	}
	if todos, _ := r.GetAll(ctx, "uid-1"); len(todos) != 1 || todos[0].UserID != "uid-1" {
		t.Errorf("GetAll = %+v", todos)
	}
	if todo, err := r.GetByID(ctx, "missing"); todo != nil || err != nil {
		t.Errorf("GetByID = (%+v, %v)", todo, err)
	}
	completed := true
	if todo, _ := r.Update(ctx, model.TodoPatch{ID: "t-1", Completed: &completed}); !todo.Completed {
		t.Errorf("Update = %+v", todo)
	}
	if err := r.Delete(ctx, "t-1"); err != nil || deleted != "t-1" {
		t.Errorf("Delete = %v, deleted = %q", err, deleted)
	}
}
