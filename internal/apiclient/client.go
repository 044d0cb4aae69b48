// Package apiclient talks to the remote complaints server. It keeps the
// server's session cookie in a per-client jar, so one Client is one signed-in
// browser session.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"complaintdesk/dashboard/internal/config"
	"complaintdesk/dashboard/internal/models"

	"github.com/sirupsen/logrus"
)

const maxBodyBytes = 4 << 20

// Client performs JSON requests against the complaints server.
type Client struct {
	baseURL string
	http    *http.Client
	log     *logrus.Entry
}

// NewClient creates a client with its own cookie jar.
func NewClient(baseURL string, timeout time.Duration, log *logrus.Entry) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("cookie jar: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		http:    &http.Client{Timeout: timeout, Jar: jar},
		log:     log.WithField("component", "apiclient"),
	}, nil
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error"`
	Message string       `json:"message"`
	User    *models.User `json:"user"`
}

// Login signs in and stores the session cookie. The role reported by the
// server wins over the requested one.
func (c *Client) Login(ctx context.Context, email, password string, role models.Role) (*models.User, error) {
	email = strings.TrimSpace(email)
	if role == "" {
		role = models.RoleStudent
	}
	body := loginRequest{Username: email, Email: email, Password: password, Role: role.Upper()}

	var resp loginResponse
	status, err := c.do(ctx, http.MethodPost, "/auth/api/login", body, &resp)
	if err != nil && status == 0 {
		return nil, err
	}
	if err != nil || !resp.Success {
		msg := firstNonEmpty(resp.Error, resp.Message, "Login failed. Please check your credentials.")
		if status < 300 {
			status = http.StatusUnauthorized
		}
		return nil, &APIError{StatusCode: status, Message: msg}
	}

	user := models.User{Email: email, Role: role}
	if resp.User != nil {
		user = *resp.User
		if user.Email == "" {
			user.Email = email
		}
		if user.Role == "" {
			user.Role = role
		}
	}
	c.log.WithFields(logrus.Fields{"email": user.Email, "role": user.Role}).Info("signed in")
	return &user, nil
}

// Logout ends the server session. The server answers with a redirect, so the
// body is ignored.
func (c *Client) Logout(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, "/auth/logout", nil, nil)
	return err
}

// Me returns the signed-in user or an "Not authenticated" APIError.
func (c *Client) Me(ctx context.Context) (*models.User, error) {
	var u models.User
	if _, err := c.do(ctx, http.MethodGet, "/auth/api/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// StudentComplaints lists the signed-in student's own complaints.
func (c *Client) StudentComplaints(ctx context.Context) ([]models.Complaint, error) {
	return c.listComplaints(ctx, "/student/api/complaints")
}

// AdminComplaints lists every complaint.
func (c *Client) AdminComplaints(ctx context.Context) ([]models.Complaint, error) {
	return c.listComplaints(ctx, "/admin/api/complaints")
}

type submitResponse struct {
	models.Complaint
	Success bool `json:"success"`
}

// SubmitComplaint creates a complaint. The server may answer with the full
// record or only {success, id}; missing fields are filled from the request.
func (c *Client) SubmitComplaint(ctx context.Context, in models.NewComplaint) (*models.Complaint, error) {
	if in.Category == "" {
		in.Category = models.CategoryOther
	}
	var resp submitResponse
	if _, err := c.do(ctx, http.MethodPost, "/student/api/complaints", in, &resp); err != nil {
		return nil, err
	}
	created := resp.Complaint
	if created.Title == "" {
		created.Title = in.Title
	}
	if created.Category == "" {
		created.Category = in.Category
	}
	if created.Description == "" {
		created.Description = in.Description
	}
	if created.Status == "" {
		created.Status = models.StatusPending
	}
	return &created, nil
}

// Push forwards a complaint to its department.
func (c *Client) Push(ctx context.Context, id models.ID) error {
	_, err := c.do(ctx, http.MethodPost, "/admin/api/push/"+url.PathEscape(id.String()), nil, nil)
	return err
}

func (c *Client) listComplaints(ctx context.Context, path string) ([]models.Complaint, error) {
	var raw json.RawMessage
	if _, err := c.do(ctx, http.MethodGet, path, nil, &raw); err != nil {
		return nil, err
	}
	return decodeComplaintList(raw), nil
}

// decodeComplaintList accepts a bare array or {"complaints":[...]}. Anything
// else is an empty list.
func decodeComplaintList(raw json.RawMessage) []models.Complaint {
	raw = bytes.TrimSpace(raw)
	out := []models.Complaint{}
	if len(raw) == 0 {
		return out
	}
	if raw[0] == '[' {
		if err := json.Unmarshal(raw, &out); err != nil {
			return []models.Complaint{}
		}
		return out
	}
	var wrapped struct {
		Complaints []models.Complaint `json:"complaints"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil || wrapped.Complaints == nil {
		return out
	}
	return wrapped.Complaints
}

// do sends one request. A body that is not valid JSON is read as an empty
// object. It returns the HTTP status (0 when no response arrived).
func (c *Client) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		blob, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(blob)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{"method": method, "path": path}).Warn("request failed")
		return 0, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	blob, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return resp.StatusCode, fmt.Errorf("read %s %s: %w", method, path, err)
	}
	c.log.WithFields(logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}).Debug("upstream call")

	payload := normalizeJSON(blob)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var msg struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		_ = json.Unmarshal(payload, &msg)
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    firstNonEmpty(msg.Error, msg.Message, http.StatusText(resp.StatusCode), config.GenericFailureMessage),
		}
		if out != nil {
			_ = json.Unmarshal(payload, out)
		}
		return resp.StatusCode, apiErr
	}

	if out != nil {
		if err := json.Unmarshal(payload, out); err != nil {
			c.log.WithError(err).WithField("path", path).Warn("unexpected response shape")
		}
	}
	return resp.StatusCode, nil
}

func normalizeJSON(blob []byte) []byte {
	blob = bytes.TrimSpace(blob)
	if len(blob) == 0 || !json.Valid(blob) {
		return []byte("{}")
	}
	return blob
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
