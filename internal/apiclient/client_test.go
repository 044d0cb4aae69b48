package apiclient_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"complaintdesk/dashboard/internal/apiclient"
	"complaintdesk/dashboard/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.Handler) *apiclient.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	log := logrus.New()
	log.SetOutput(io.Discard)
	c, err := apiclient.NewClient(srv.URL+"/", 2*time.Second, logrus.NewEntry(log))
	require.NoError(t, err)
	return c
}

func TestClient_LoginKeepsSessionCookie(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/api/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "ADMIN", body["role"])
		assert.Equal(t, "boss@uni.edu", body["username"])
		assert.Equal(t, "boss@uni.edu", body["email"])

		http.SetCookie(w, &http.Cookie{Name: "JSESSIONID", Value: "abc", Path: "/"})
		fmt.Fprint(w, `{"success":true,"user":{"id":7,"email":"boss@uni.edu","role":"ADMIN"}}`)
	})
	mux.HandleFunc("/auth/api/me", func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie("JSESSIONID"); err != nil || ck.Value != "abc" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"error":"Not authenticated"}`)
			return
		}
		fmt.Fprint(w, `{"id":7,"username":"boss","email":"boss@uni.edu","role":"ADMIN"}`)
	})
	c := newTestClient(t, mux)

	user, err := c.Login(context.Background(), "  boss@uni.edu ", "pw", models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, models.ID("7"), user.ID)

	me, err := c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "boss", me.DisplayName())
	assert.Equal(t, models.RoleAdmin, me.Role)
}

func TestClient_LoginRejected(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"success":false,"error":"Invalid credentials"}`)
	}))

	_, err := c.Login(context.Background(), "a@b.c", "bad", models.RoleStudent)
	require.Error(t, err)
	assert.Equal(t, "Invalid credentials", apiclient.Message(err))
	assert.False(t, apiclient.IsUnauthenticated(err))
}

func TestClient_LoginServerRoleWins(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"success":true,"user":{"email":"d@uni.edu","role":"DEPARTMENT"}}`)
	}))

	user, err := c.Login(context.Background(), "d@uni.edu", "pw", models.RoleStudent)
	require.NoError(t, err)
	assert.Equal(t, models.RoleDepartment, user.Role)
}

func TestClient_MeUnauthenticated(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"Not authenticated"}`)
	}))

	_, err := c.Me(context.Background())
	require.Error(t, err)
	assert.True(t, apiclient.IsUnauthenticated(err))

	var apiErr *apiclient.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
}

func TestClient_ErrorMessageFallbacks(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"error field", http.StatusBadRequest, `{"error":"Title is required"}`, "Title is required"},
		{"message field", http.StatusConflict, `{"message":"Already pushed"}`, "Already pushed"},
		{"status text", http.StatusInternalServerError, `<html>oops</html>`, "Internal Server Error"},
		{"generic", 599, ``, "Request failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			_, err := c.AdminComplaints(context.Background())
			require.Error(t, err)
			assert.Equal(t, tt.want, apiclient.Message(err))
		})
	}
}

func TestClient_ComplaintListShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"bare array", `[{"id":1,"status":"pending"},{"id":2,"status":"resolved"}]`, 2},
		{"wrapped", `{"complaints":[{"id":"3","status":"In Progress"}]}`, 1},
		{"malformed", `{"complaints":[`, 0},
		{"empty body", ``, 0},
		{"unrelated object", `{"ok":true}`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			list, err := c.StudentComplaints(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, list)
			assert.Len(t, list, tt.want)
		})
	}
}

func TestClient_SubmitFillsMissingFields(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in models.NewComplaint
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, models.CategoryOther, in.Category)
		fmt.Fprint(w, `{"success":true,"id":42}`)
	}))

	created, err := c.SubmitComplaint(context.Background(), models.NewComplaint{Title: "Wifi", Description: "down"})
	require.NoError(t, err)
	assert.Equal(t, models.ID("42"), created.ID)
	assert.Equal(t, "Wifi", created.Title)
	assert.Equal(t, models.CategoryOther, created.Category)
	assert.Equal(t, models.StatusPending, created.Status)
}

func TestClient_PushEscapesID(t *testing.T) {
	var gotPath string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		fmt.Fprint(w, `{"success":true,"id":5}`)
	}))

	require.NoError(t, c.Push(context.Background(), models.ID("5")))
	assert.Equal(t, "/admin/api/push/5", gotPath)
}

func TestClient_ContextTimeout(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.AdminComplaints(ctx)
	require.Error(t, err)
	assert.False(t, apiclient.IsUnauthenticated(err))
}
