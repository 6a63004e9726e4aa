package leanix

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbolis/poll-creator/model"
)

const (
	workspace = "3fa85f64-5717-4562-b3fc-2c963f66afa6"
	apiToken  = "secret-api-token"
)

type fakeAPI struct {
	*httptest.Server
	tokenCalls atomic.Int32

	mu     sync.Mutex
	polls  map[string][]byte
	bodies [][]byte
}

func newFakeAPI(t *testing.T) *fakeAPI {
	api := &fakeAPI{polls: map[string][]byte{}}
	mux := http.NewServeMux()
	mux.HandleFunc(tokenPath, func(w http.ResponseWriter, r *http.Request) {
		api.tokenCalls.Add(1)
		user, pass, ok := r.BasicAuth()
		if !ok || user != "apitoken" || pass != apiToken {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if err := r.ParseForm(); err != nil || r.PostForm.Get("grant_type") != "client_credentials" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Write([]byte(`{"access_token": "bearer-1", "expires_in": 3600}`))
	})
	mux.HandleFunc(pollsPath, func(w http.ResponseWriter, r *http.Request) {
		if !api.authorized(w, r) {
			return
		}
		body, _ := io.ReadAll(r.Body)
		api.mu.Lock()
		api.bodies = append(api.bodies, body)
		api.polls["p-1"] = body
		api.mu.Unlock()
		w.Write([]byte(`{"status": "OK", "data": {"id": "p-1"}}`))
	})
	mux.HandleFunc(pollsPath+"/", func(w http.ResponseWriter, r *http.Request) {
		if !api.authorized(w, r) {
			return
		}
		id := strings.TrimPrefix(r.URL.Path, pollsPath+"/")
		api.mu.Lock()
		poll, ok := api.polls[id]
		api.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status": "ERROR", "errors": ["not found"]}`))
			return
		}
		w.Write(poll)
	})
	api.Server = httptest.NewServer(mux)
	t.Cleanup(api.Close)
	return api
}

func (api *fakeAPI) authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer bearer-1" || r.URL.Query().Get("workspaceId") != workspace {
		w.WriteHeader(http.StatusForbidden)
		return false
	}
	return true
}

func (api *fakeAPI) creds() Credentials {
	return Credentials{BaseURL: api.URL, APIToken: apiToken, WorkspaceID: workspace}
}

type recorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recorder) RecordUpstream(op string, _ time.Duration, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		op += ":error"
	}
	r.calls = append(r.calls, op)
}

func samplePoll() *model.PollCreate {
	return &model.PollCreate{
		Title:         "Review",
		Language:      "en",
		FactSheetType: "Application",
		Questionnaire: model.Questionnaire{Questions: []model.Question{
			{ID: "q1", Label: "Why?", Type: model.QuestionText},
		}},
	}
}

func TestCreateAndGetPoll(t *testing.T) {
	api := newFakeAPI(t)
	rec := &recorder{}
	client := NewClient(api.Client(), WithObserver(rec))

	id, err := client.CreatePoll(context.Background(), api.creds(), samplePoll())
	require.NoError(t, err)
	assert.Equal(t, "p-1", id)

	require.Len(t, api.bodies, 1)
	var sent map[string]any
	require.NoError(t, json.Unmarshal(api.bodies[0], &sent))
	assert.Equal(t, "Review", sent["title"])
	assert.NotContains(t, sent, "dueDate")

	poll, err := client.GetPoll(context.Background(), api.creds(), "p-1")
	require.NoError(t, err)
	assert.JSONEq(t, string(api.bodies[0]), string(poll))

	assert.Equal(t, int32(1), api.tokenCalls.Load())
	assert.Equal(t, []string{"token", "create_poll", "get_poll"}, rec.calls)
}

func TestGetPollNotFound(t *testing.T) {
	api := newFakeAPI(t)
	client := NewClient(api.Client())

	_, err := client.GetPoll(context.Background(), api.creds(), "missing")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "not found")
}

func TestBadAPIToken(t *testing.T) {
	api := newFakeAPI(t)
	client := NewClient(api.Client())
	creds := api.creds()
	creds.APIToken = "wrong-api-token"

	_, err := client.CreatePoll(context.Background(), creds, samplePoll())
	assert.ErrorIs(t, err, ErrAuthentication)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	// failed exchanges are retried on the next call
	_, err = client.CreatePoll(context.Background(), creds, samplePoll())
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, int32(2), api.tokenCalls.Load())
}

func TestResponseTooLarge(t *testing.T) {
	api := newFakeAPI(t)
	client := NewClient(api.Client(), WithMaxBodySize(8))

	_, err := client.CreatePoll(context.Background(), api.creds(), samplePoll())
	var tooLarge ResponseTooLargeError
	assert.True(t, errors.As(err, &tooLarge))
}

func TestUnreachable(t *testing.T) {
	api := newFakeAPI(t)
	creds := api.creds()
	api.Close()

	_, err := NewClient(http.DefaultClient).GetPoll(context.Background(), creds, "p-1")
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
}

func TestCredentialsValidate(t *testing.T) {
	good := Credentials{BaseURL: "https://acme.leanix.net", APIToken: apiToken, WorkspaceID: workspace}
	assert.NoError(t, good.Validate())

	tests := []struct {
		name  string
		creds Credentials
		want  []string
	}{
		{"trailing slash", Credentials{"https://acme.leanix.net/", apiToken, workspace}, []string{"URL should not end with a slash"}},
		{"scheme", Credentials{"ftp://acme.leanix.net", apiToken, workspace}, []string{"URL must use http or https"}},
		{"no host", Credentials{"https://", apiToken, workspace}, []string{"invalid URL format", "URL should not end with a slash"}},
		{"empty token", Credentials{"https://acme.leanix.net", "  ", workspace}, []string{"API token cannot be empty"}},
		{"short token", Credentials{"https://acme.leanix.net", "abc", workspace}, []string{"API token appears too short"}},
		{"workspace", Credentials{"https://acme.leanix.net", apiToken, "ws1"}, []string{"workspace id must be a UUID"}},
		{"everything", Credentials{"acme", "", ""}, []string{
			"URL must use http or https",
			"invalid URL format",
			"API token cannot be empty",
			"workspace id must be a UUID",
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.creds.Validate()
			var merr *multierror.Error
			require.True(t, errors.As(err, &merr))
			var got []string
			for _, e := range merr.Errors {
				got = append(got, e.Error())
			}
			assert.Equal(t, tt.want, got)
			assert.True(t, strings.HasPrefix(err.Error(), "invalid configuration: "))
		})
	}
}
