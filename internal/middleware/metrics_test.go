package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

// --- モック ---

type mockCollector struct {
	statuses []int
	routes   []string
	useCases []string
}

func (m *mockCollector) RecordUseCase(name string, err error) { m.useCases = append(m.useCases, name) }
func (m *mockCollector) RecordAuthStateChange(signedIn bool)  {}
func (m *mockCollector) RecordHTTPStatus(statusCode int)      { m.statuses = append(m.statuses, statusCode) }
func (m *mockCollector) RecordRequestLatency(route string, duration time.Duration) {
	m.routes = append(m.routes, route)
}

func TestMetricsMiddleware_RecordsStatusAndRoute(t *testing.T) {
	c := &mockCollector{}
	r := chi.NewRouter()
	r.Use(NewMetricsMiddleware(c))
	r.Delete("/api/todos/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodDelete, "/api/todos/t-1", nil))

	if len(c.statuses) != 1 || c.statuses[0] != http.StatusNoContent {
		t.Errorf("statuses = %v, want [204]", c.statuses)
	}
	if len(c.routes) != 1 || c.routes[0] != "/api/todos/{id}" {
		t.Errorf("routes = %v, want [/api/todos/{id}]", c.routes)
	}
}
