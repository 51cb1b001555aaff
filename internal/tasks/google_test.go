package tasks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daviddao/taskdawn/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	gt "google.golang.org/api/tasks/v1"
)

func newTestProvider(t *testing.T, mux *http.ServeMux) *GoogleProvider {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	svc, err := gt.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)
	return NewGoogleProvider(svc)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func TestGoogleProvider_ListTaskLists(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "100", r.URL.Query().Get("maxResults"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]string{
				{"id": "a", "title": "Work"},
				{"id": "", "title": "broken"},
				{"id": "b", "title": "Home"},
			},
		})
	})

	lists, err := newTestProvider(t, mux).ListTaskLists(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []types.TaskList{{ID: "a", Title: "Work"}, {ID: "b", Title: "Home"}}, lists)
}

func TestGoogleProvider_ListOpenTasks(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/v1/lists/a/tasks", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "false", q.Get("showCompleted"))
		assert.Equal(t, "false", q.Get("showHidden"))
		writeJSON(w, http.StatusOK, map[string]any{
			"items": []map[string]string{
				{"id": "1", "title": "Open", "status": "needsAction", "due": "2024-01-15T00:00:00.000Z", "updated": "2024-01-10T08:00:00.000Z"},
				{"id": "2", "title": "Done", "status": "completed"},
				{"id": "3", "title": "", "status": "needsAction"},
				{"id": "4", "title": "Odd dates", "status": "needsAction", "due": "soon", "updated": "never"},
			},
		})
	})

	got, err := newTestProvider(t, mux).ListOpenTasks(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "1", got[0].ID)
	assert.Equal(t, "a", got[0].ListID)
	require.NotNil(t, got[0].Due)
	require.NotNil(t, got[0].Created)
	assert.Equal(t, 10, got[0].Created.Day())

	assert.Equal(t, "4", got[1].ID)
	assert.Nil(t, got[1].Due)
	assert.Nil(t, got[1].Created)
}

func TestGoogleProvider_CreateTaskList(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		var body gt.TaskList
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, map[string]string{"id": "new", "title": body.Title})
	})

	list, err := newTestProvider(t, mux).CreateTaskList(context.Background(), "Task Dawn Sync")
	require.NoError(t, err)
	assert.Equal(t, types.TaskList{ID: "new", Title: "Task Dawn Sync"}, list)
}

func TestGoogleProvider_StatusClassification(t *testing.T) {
	for _, tc := range []struct {
		status    int
		retryable bool
	}{
		{http.StatusTooManyRequests, true},
		{http.StatusServiceUnavailable, true},
		{http.StatusUnauthorized, false},
		{http.StatusNotFound, false},
	} {
		mux := http.NewServeMux()
		mux.HandleFunc("/tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, tc.status, map[string]any{"error": map[string]any{"code": tc.status, "message": "nope"}})
		})

		_, err := newTestProvider(t, mux).ListTaskLists(context.Background())
		require.Error(t, err)

		var pe *ProviderError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, tc.status, pe.StatusCode)
		assert.Equal(t, tc.retryable, IsRetryable(err), "status %d", tc.status)
	}
}
