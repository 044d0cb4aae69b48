package handler_test

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"complaintdesk/dashboard/internal/models"
)

// fakeUpstream is an in-memory complaints server.
type fakeUpstream struct {
	mu         sync.Mutex
	roles      map[string]string // session cookie -> role
	complaints []models.Complaint
	nextID     int
}

func newFakeUpstream(complaints []models.Complaint) *fakeUpstream {
	return &fakeUpstream{roles: map[string]string{}, complaints: complaints, nextID: 100}
}

func (f *fakeUpstream) expireAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles = map[string]string{}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (f *fakeUpstream) role(r *http.Request) (string, string, bool) {
	ck, err := r.Cookie("UPSTREAM")
	if err != nil {
		return "", "", false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	role, ok := f.roles[ck.Value]
	return ck.Value, role, ok
}

func (f *fakeUpstream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/auth/api/login" && r.Method == http.MethodPost:
		var body struct{ Email, Password, Role string }
		json.NewDecoder(r.Body).Decode(&body)
		if body.Password != "pw" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "error": "Invalid credentials"})
			return
		}
		f.mu.Lock()
		f.roles[body.Email] = body.Role
		f.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: "UPSTREAM", Value: body.Email, Path: "/"})
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "user": map[string]string{"email": body.Email, "role": body.Role}})
		return
	case r.URL.Path == "/auth/logout":
		if email, _, ok := f.role(r); ok {
			f.mu.Lock()
			delete(f.roles, email)
			f.mu.Unlock()
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	email, role, ok := f.role(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.URL.Path == "/auth/api/me":
		writeJSON(w, http.StatusOK, map[string]string{"email": email, "role": role})
	case r.URL.Path == "/admin/api/complaints":
		writeJSON(w, http.StatusOK, f.complaints)
	case strings.HasPrefix(r.URL.Path, "/admin/api/push/"):
		id := models.ID(strings.TrimPrefix(r.URL.Path, "/admin/api/push/"))
		for i := range f.complaints {
			if f.complaints[i].ID == id {
				f.complaints[i].Status = models.StatusSentToDept
				f.complaints[i].DepartmentStatus = "Sent"
				writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id})
				return
			}
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Complaint not found"})
	case r.URL.Path == "/student/api/complaints" && r.Method == http.MethodGet:
		var own []models.Complaint
		for _, c := range f.complaints {
			if c.StudentEmail == email {
				own = append(own, c)
			}
		}
		writeJSON(w, http.StatusOK, map[string]any{"complaints": own})
	case r.URL.Path == "/student/api/complaints" && r.Method == http.MethodPost:
		var in models.NewComplaint
		json.NewDecoder(r.Body).Decode(&in)
		f.nextID++
		c := models.Complaint{
			ID:           models.ID(strconv.Itoa(f.nextID)),
			Title:        in.Title,
			Category:     in.Category,
			Description:  in.Description,
			Status:       models.StatusPending,
			StudentEmail: email,
		}
		f.complaints = append(f.complaints, c)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": f.nextID})
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not found"})
	}
}
