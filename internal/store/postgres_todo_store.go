package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/todosync/internal/model"
)

// PostgresTodoStore はPostgreSQLの todos テーブルを使用したTodoStore。
type PostgresTodoStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewPostgresTodoStore はPostgresTodoStoreを生成する。
func NewPostgresTodoStore(db *sql.DB) *PostgresTodoStore {
	return &PostgresTodoStore{db: db, now: time.Now}
}

const todoColumns = `id, title, completed, user_id, created_at, updated_at`

// Create はタスクを作成する。IDはUUIDv4で採番する。
func (s *PostgresTodoStore) Create(ctx context.Context, input model.CreateTodoInput) (*model.Todo, error) {
	now := s.now().UTC()
	todo := &model.Todo{
		ID:        uuid.New().String(),
		Title:     input.Title,
		Completed: false,
		UserID:    input.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO todos (id, title, completed, user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		todo.ID, todo.Title, todo.Completed, nullString(todo.UserID), todo.CreatedAt, todo.UpdatedAt,
	)
	if err != nil {
		return nil, storeFailure(ctx, "todo.create", err)
	}
	return todo, nil
}

// GetByID は指定IDのタスクを取得する。UUIDとして不正なIDは存在しないものとして扱う。
func (s *PostgresTodoStore) GetByID(ctx context.Context, id string) (*model.Todo, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)
	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure(ctx, "todo.get", err)
	}
	return todo, nil
}

// GetAll はタスクを作成日時の新しい順に返す。
func (s *PostgresTodoStore) GetAll(ctx context.Context, userID string) ([]*model.Todo, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if userID == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+todoColumns+` FROM todos ORDER BY created_at DESC, id`)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+todoColumns+` FROM todos WHERE user_id = $1 ORDER BY created_at DESC, id`,
			userID)
	}
	if err != nil {
		return nil, storeFailure(ctx, "todo.list", err)
	}
	defer rows.Close()

	todos := []*model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, storeFailure(ctx, "todo.list", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, storeFailure(ctx, "todo.list", err)
	}
	return todos, nil
}

// Update はパッチを適用して更新後のタスクを返す。
func (s *PostgresTodoStore) Update(ctx context.Context, patch model.TodoPatch) (*model.Todo, error) {
	if _, err := uuid.Parse(patch.ID); err != nil {
		return nil, nil
	}

	completed := sql.NullBool{}
	if patch.Completed != nil {
		completed = sql.NullBool{Bool: *patch.Completed, Valid: true}
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE todos
		 SET completed = COALESCE($2, completed), updated_at = $3
		 WHERE id = $1
		 RETURNING `+todoColumns,
		patch.ID, completed, s.now().UTC(),
	)
	todo, err := scanTodo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, storeFailure(ctx, "todo.update", err)
	}
	return todo, nil
}

// Delete は指定IDのタスクを削除する。
func (s *PostgresTodoStore) Delete(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return nil
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id); err != nil {
		return storeFailure(ctx, "todo.delete", err)
	}
	return nil
}

// rowScanner は*sql.Rowと*sql.Rowsの共通インターフェース。
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTodo(row rowScanner) (*model.Todo, error) {
	var (
		todo   = &model.Todo{}
		userID sql.NullString
	)
	if err := row.Scan(&todo.ID, &todo.Title, &todo.Completed, &userID, &todo.CreatedAt, &todo.UpdatedAt); err != nil {
		return nil, err
	}
	todo.UserID = userID.String
	return todo, nil
}

// compile-time interface check
var _ TodoStore = (*PostgresTodoStore)(nil)
