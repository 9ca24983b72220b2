package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/todosync/internal/metrics"
	"github.com/hitoshi/todosync/internal/model"
)

// TodoUseCases はタスクハンドラーが使うユースケース群。
type TodoUseCases struct {
	Create CreateTodoUseCase
	GetAll GetAllTodosUseCase
	Toggle ToggleTodoUseCase
	Delete DeleteTodoUseCase
}

// TodoHandler はタスクのHTTPハンドラー。サインイン必須ミドルウェアの内側に置く。
type TodoHandler struct {
	uc        TodoUseCases
	sanitizer Sanitizer
	recorder
}

// NewTodoHandler はTodoHandlerを生成する。
func NewTodoHandler(uc TodoUseCases, sanitizer Sanitizer, collector metrics.MetricsCollector) *TodoHandler {
	return &TodoHandler{uc: uc, sanitizer: sanitizer, recorder: recorder{collector: collector}}
}

type createTodoRequest struct {
	Title string `json:"title"`
}

type todoListResponse struct {
	Todos []*model.Todo `json:"todos"`
}

// List はサインイン中ユーザーのタスクを新しい順に返す。
// GET /api/todos
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	todos, err := h.uc.GetAll.Execute(r.Context(), userID)
	h.record("get_all_todos", err)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if todos == nil {
		todos = []*model.Todo{}
	}

	writeJSON(w, http.StatusOK, todoListResponse{Todos: todos})
}

// Create はタスクを作成する。
// POST /api/todos
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUserID(w, r)
	if !ok {
		return
	}

	var req createTodoRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	todo, err := h.uc.Create.Execute(r.Context(), h.sanitizer.Sanitize(req.Title), userID)
	h.record("create_todo", err)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, todo)
}

// Toggle はタスクの完了状態を反転する。
// POST /api/todos/{id}/toggle
func (h *TodoHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	todo, err := h.uc.Toggle.Execute(r.Context(), chi.URLParam(r, "id"))
	h.record("toggle_todo", err)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, todo)
}

// Delete はタスクを削除する。存在しないIDでも204を返す。
// DELETE /api/todos/{id}
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.uc.Delete.Execute(r.Context(), chi.URLParam(r, "id"))
	h.record("delete_todo", err)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
