package handler

import (
	"context"
	"sync"

	"github.com/hitoshi/todosync/internal/identity"
	"github.com/hitoshi/todosync/internal/model"
)

// --- モック ---

type mockRegister struct {
	fn func(ctx context.Context, email, password, displayName string) (*model.User, error)
}

func (m *mockRegister) Execute(ctx context.Context, email, password, displayName string) (*model.User, error) {
	return m.fn(ctx, email, password, displayName)
}

type mockLogin struct {
	fn func(ctx context.Context, email, password string) (*model.User, error)
}

func (m *mockLogin) Execute(ctx context.Context, email, password string) (*model.User, error) {
	return m.fn(ctx, email, password)
}

type mockLogout struct {
	fn func(ctx context.Context) error
}

func (m *mockLogout) Execute(ctx context.Context) error {
	return m.fn(ctx)
}

type mockCurrentUser struct {
	user *model.User
	err  error
}

func (m *mockCurrentUser) Execute(ctx context.Context) (*model.User, error) {
	return m.user, m.err
}

type mockUpdateProfile struct {
	fn func(ctx context.Context, userID, displayName string) (*model.User, error)
}

func (m *mockUpdateProfile) Execute(ctx context.Context, userID, displayName string) (*model.User, error) {
	return m.fn(ctx, userID, displayName)
}

type mockResetPassword struct {
	fn func(ctx context.Context, email string) error
}

func (m *mockResetPassword) Execute(ctx context.Context, email string) error {
	return m.fn(ctx, email)
}

type mockRestoreSession struct {
	userID string
	ok     bool
}

func (m *mockRestoreSession) Execute(ctx context.Context) (string, bool) {
	return m.userID, m.ok
}

type mockCreateTodo struct {
	fn func(ctx context.Context, title, userID string) (*model.Todo, error)
}

func (m *mockCreateTodo) Execute(ctx context.Context, title, userID string) (*model.Todo, error) {
	return m.fn(ctx, title, userID)
}

type mockGetAllTodos struct {
	fn func(ctx context.Context, userID string) ([]*model.Todo, error)
}

func (m *mockGetAllTodos) Execute(ctx context.Context, userID string) ([]*model.Todo, error) {
	return m.fn(ctx, userID)
}

type mockToggleTodo struct {
	fn func(ctx context.Context, id string) (*model.Todo, error)
}

func (m *mockToggleTodo) Execute(ctx context.Context, id string) (*model.Todo, error) {
	return m.fn(ctx, id)
}

type mockDeleteTodo struct {
	fn func(ctx context.Context, id string) error
}

func (m *mockDeleteTodo) Execute(ctx context.Context, id string) error {
	return m.fn(ctx, id)
}

// fakeObserve は購読を記録し、テストから状態変化を発火できる。
type fakeObserve struct {
	mu        sync.Mutex
	callbacks map[int]func(*model.User)
	nextID    int
	initial   *model.User
	// subscribed は購読が登録されるたびに通知される
	subscribed chan struct{}
}

func newFakeObserve(initial *model.User) *fakeObserve {
	return &fakeObserve{
		callbacks:  map[int]func(*model.User){},
		initial:    initial,
		subscribed: make(chan struct{}, 8),
	}
}

func (f *fakeObserve) Execute(callback func(*model.User)) *identity.Subscription {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	f.callbacks[id] = callback
	initial := f.initial
	f.mu.Unlock()

	// 購読開始時に現在の状態を通知する
	go callback(initial)
	f.subscribed <- struct{}{}

	return identity.NewSubscription(func() {
		f.mu.Lock()
		delete(f.callbacks, id)
		f.mu.Unlock()
	})
}

func (f *fakeObserve) emit(u *model.User) {
	f.mu.Lock()
	cbs := make([]func(*model.User), 0, len(f.callbacks))
	for _, cb := range f.callbacks {
		cbs = append(cbs, cb)
	}
	f.mu.Unlock()
	for _, cb := range cbs {
		cb(u)
	}
}

func (f *fakeObserve) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.callbacks)
}
