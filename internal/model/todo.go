package model

import "time"

// MaxTodoTitleLength はタスクタイトルの最大文字数。
const MaxTodoTitleLength = 200

// Todo はタスクを表す。
type Todo struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	UserID    string    `json:"userId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CreateTodoInput はタスク作成時の入力を表す。
type CreateTodoInput struct {
	Title  string
	UserID string
}

// TodoPatch はタスクの部分更新を表す。nilのフィールドは変更しない。
// タイトルは作成後に直接変更しないため含めない。
type TodoPatch struct {
	ID        string
	Completed *bool
}
