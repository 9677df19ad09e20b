package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Fetcher is the read surface the session watcher consumes. It is
// implemented by *Client and can be replaced in tests.
type Fetcher interface {
	GetClient(ctx context.Context, token string, id int64) (*ClientProfile, error)
	ListVoiceRecords(ctx context.Context, token string, clientID int64) (*VoiceRecordListResponse, error)
	ListUploadJobs(ctx context.Context, token string, clientID int64) ([]UploadJob, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

// Client talks to the counseling backend's HTTP API. It holds no
// credential state: the bearer token is passed into every call so the
// token's lifetime stays with the caller.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultBaseURL   = "http://localhost:8000"
	defaultUserAgent = "voicestart/0.1"
	requestTimeout   = 15 * time.Second

	maxErrorBody = 64 * 1024
)

// StatusError is a backend response with a non-2xx status. The raw body
// is retained so proxies can relay it verbatim and views can surface the
// backend-provided message.
type StatusError struct {
	Code int
	Body []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned status %d", e.Code)
}

// Message extracts a human-readable message from the JSON body, falling
// back to the raw text.
func (e *StatusError) Message() string {
	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(e.Body, &payload); err == nil {
		for _, m := range []string{payload.Message, payload.Detail, payload.Error} {
			if m != "" {
				return m
			}
		}
	}
	return strings.TrimSpace(string(e.Body))
}

// IsUnauthorized reports whether err is a backend 401, the signal to
// clear the stored token and re-authenticate.
func IsUnauthorized(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.Code == http.StatusUnauthorized
}

// NewClient builds a Client for the given base address. A bare host:port
// is promoted to an http URL.
func NewClient(baseAddr string) (*Client, error) {
	base, err := parseBaseURL(baseAddr)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*Token, error) {
	var token Token
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &token); err != nil {
		return nil, err
	}
	return &token, nil
}

// Register creates a counselor account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Me fetches the account behind the token.
func (c *Client) Me(ctx context.Context, token string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ListClients fetches the counseling-client roster.
func (c *Client) ListClients(ctx context.Context, token string) (*ClientListResponse, error) {
	var list ClientListResponse
	if err := c.do(ctx, http.MethodGet, "/clients", token, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// GetClient fetches one counseling-client profile.
func (c *Client) GetClient(ctx context.Context, token string, id int64) (*ClientProfile, error) {
	var profile ClientProfile
	if err := c.do(ctx, http.MethodGet, "/clients/"+formatID(id), token, nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// CreateClient registers a new counseling client.
func (c *Client) CreateClient(ctx context.Context, token string, req ClientCreate) (*ClientProfile, error) {
	var profile ClientProfile
	if err := c.do(ctx, http.MethodPost, "/clients", token, req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// UpdateClient applies a partial update to a counseling client.
func (c *Client) UpdateClient(ctx context.Context, token string, id int64, req ClientUpdate) (*ClientProfile, error) {
	var profile ClientProfile
	if err := c.do(ctx, http.MethodPatch, "/clients/"+formatID(id), token, req, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// DeleteClient removes a counseling client and everything attached to it.
func (c *Client) DeleteClient(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/clients/"+formatID(id), token, nil, nil)
}

// ListAppointments fetches the appointment calendar.
func (c *Client) ListAppointments(ctx context.Context, token string) (*AppointmentListResponse, error) {
	var list AppointmentListResponse
	if err := c.do(ctx, http.MethodGet, "/appointments", token, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// CreateAppointment books a session slot on the calendar.
func (c *Client) CreateAppointment(ctx context.Context, token string, req AppointmentCreate) (*Appointment, error) {
	var appt Appointment
	if err := c.do(ctx, http.MethodPost, "/appointments", token, req, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// GetAppointment fetches one appointment.
func (c *Client) GetAppointment(ctx context.Context, token string, id int64) (*Appointment, error) {
	var appt Appointment
	if err := c.do(ctx, http.MethodGet, "/appointments/"+formatID(id), token, nil, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// UpdateAppointment applies a partial update to an appointment.
func (c *Client) UpdateAppointment(ctx context.Context, token string, id int64, req AppointmentUpdate) (*Appointment, error) {
	var appt Appointment
	if err := c.do(ctx, http.MethodPatch, "/appointments/"+formatID(id), token, req, &appt); err != nil {
		return nil, err
	}
	return &appt, nil
}

// DeleteAppointment cancels an appointment.
func (c *Client) DeleteAppointment(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/appointments/"+formatID(id), token, nil, nil)
}

// ListVoiceRecords fetches the finalized records for one client. Both the
// envelope and bare-array response shapes are accepted.
func (c *Client) ListVoiceRecords(ctx context.Context, token string, clientID int64) (*VoiceRecordListResponse, error) {
	var list VoiceRecordListResponse
	path := "/clients/" + formatID(clientID) + "/voice-records"
	if err := c.do(ctx, http.MethodGet, path, token, nil, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// ListUploadJobs fetches the lightweight upload-status snapshot for one
// client.
func (c *Client) ListUploadJobs(ctx context.Context, token string, clientID int64) ([]UploadJob, error) {
	var payload UploadStatusResponse
	path := "/clients/" + formatID(clientID) + "/upload-status"
	if err := c.do(ctx, http.MethodGet, path, token, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Uploads, nil
}

// GetVoiceRecord fetches a full transcript record.
func (c *Client) GetVoiceRecord(ctx context.Context, token string, id int64) (*VoiceRecordDetail, error) {
	var detail VoiceRecordDetail
	if err := c.do(ctx, http.MethodGet, "/voice/records/"+formatID(id), token, nil, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// UpdateVoiceRecord edits a record's title or speaker labels.
func (c *Client) UpdateVoiceRecord(ctx context.Context, token string, id int64, req VoiceRecordUpdate) (*VoiceRecordDetail, error) {
	var detail VoiceRecordDetail
	if err := c.do(ctx, http.MethodPatch, "/voice/records/"+formatID(id), token, req, &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// DeleteVoiceRecord removes a transcript record.
func (c *Client) DeleteVoiceRecord(ctx context.Context, token string, id int64) error {
	return c.do(ctx, http.MethodDelete, "/voice/records/"+formatID(id), token, nil, nil)
}

// CreateUploadURL asks for a pre-signed object-storage PUT target.
func (c *Client) CreateUploadURL(ctx context.Context, token string, req UploadURLRequest) (*UploadURLResponse, error) {
	var resp UploadURLResponse
	if err := c.do(ctx, http.MethodPost, "/voice/generate-upload-url", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SubmitProcessing hands an uploaded object to the diarization pipeline.
func (c *Client) SubmitProcessing(ctx context.Context, token string, req ProcessRequest) (*ProcessResponse, error) {
	var resp ProcessResponse
	if err := c.do(ctx, http.MethodPost, "/voice/process-s3-file-speechmatics", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{Code: resp.StatusCode, Body: raw}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseBaseURL(baseAddr string) (*url.URL, error) {
	trimmed := strings.TrimSpace(baseAddr)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse backend url %q: %w", baseAddr, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
