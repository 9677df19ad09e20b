package backend

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const isoTimestampLayout = "2006-01-02T15:04:05.999999"

// JobStatusKind enumerates the processing states the backend reports for
// an upload job.
type JobStatusKind int

const (
	StatusUnknown JobStatusKind = iota
	StatusQueued
	StatusProcessing
	StatusFailed
)

// JobStatus is the closed form of the backend's open status string. Raw
// preserves the wire value so a status we do not recognize stays visible
// instead of silently collapsing into a display state.
type JobStatus struct {
	Kind JobStatusKind
	Raw  string
}

// ParseJobStatus maps a wire status string onto a JobStatus.
func ParseJobStatus(raw string) JobStatus {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "queued":
		return JobStatus{Kind: StatusQueued, Raw: raw}
	case "processing":
		return JobStatus{Kind: StatusProcessing, Raw: raw}
	case "failed":
		return JobStatus{Kind: StatusFailed, Raw: raw}
	default:
		return JobStatus{Kind: StatusUnknown, Raw: raw}
	}
}

// Pending reports whether the job is still being worked on.
func (s JobStatus) Pending() bool {
	return s.Kind == StatusQueued || s.Kind == StatusProcessing
}

// Failed reports whether the job ended in failure.
func (s JobStatus) Failed() bool {
	return s.Kind == StatusFailed
}

func (s JobStatus) String() string {
	switch s.Kind {
	case StatusQueued:
		return "queued"
	case StatusProcessing:
		return "processing"
	case StatusFailed:
		return "failed"
	default:
		if s.Raw == "" {
			return "unknown"
		}
		return s.Raw
	}
}

// UnmarshalJSON decodes the wire status string.
func (s *JobStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseJobStatus(raw)
	return nil
}

// MarshalJSON writes the status back in wire form.
func (s JobStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// SessionNumber is a session slot index that may arrive as a JSON number,
// a numeric string, or null. Null and unparseable values stay unset and
// are excluded from per-session reconciliation.
type SessionNumber struct {
	n  int
	ok bool
}

// NewSessionNumber builds a set SessionNumber, mainly for tests and
// request payloads.
func NewSessionNumber(n int) SessionNumber {
	return SessionNumber{n: n, ok: true}
}

// Value returns the session index and whether it is set.
func (s SessionNumber) Value() (int, bool) {
	return s.n, s.ok
}

// UnmarshalJSON accepts a number, a numeric string, or null.
func (s *SessionNumber) UnmarshalJSON(data []byte) error {
	*s = SessionNumber{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	text := string(trimmed)
	if text[0] == '"' {
		var str string
		if err := json.Unmarshal(trimmed, &str); err != nil {
			return nil
		}
		text = strings.TrimSpace(str)
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		return nil
	}
	*s = SessionNumber{n: n, ok: true}
	return nil
}

// MarshalJSON writes the index or null when unset.
func (s SessionNumber) MarshalJSON() ([]byte, error) {
	if !s.ok {
		return []byte("null"), nil
	}
	return json.Marshal(s.n)
}

// UploadJob is a read-only snapshot of one in-flight or terminal audio
// processing attempt. The backend owns all job state; this side only
// polls and reads.
type UploadJob struct {
	ID            int64         `json:"id"`
	SessionNumber SessionNumber `json:"session_number"`
	Status        JobStatus     `json:"status"`
	ErrorMessage  string        `json:"error_message"`
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (j UploadJob) ParsedCreatedAt() time.Time {
	return parseTime(j.CreatedAt)
}

// VoiceRecord is a finalized transcript entry as returned in list
// responses.
type VoiceRecord struct {
	ID            int64         `json:"id"`
	Title         string        `json:"title"`
	ClientID      int64         `json:"client_id"`
	SessionNumber SessionNumber `json:"session_number"`
	TotalSpeakers int           `json:"total_speakers"`
	LanguageCode  string        `json:"language_code"`
	Duration      int           `json:"duration"`
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
}

// ParsedCreatedAt returns the parsed CreatedAt timestamp.
func (r VoiceRecord) ParsedCreatedAt() time.Time {
	return parseTime(r.CreatedAt)
}

// VoiceRecordDetail is the full record payload including transcript and
// diarization data. Speaker and segment payloads are kept raw; their
// shape belongs to the backend's speech pipeline.
type VoiceRecordDetail struct {
	VoiceRecord
	UserID           int64             `json:"user_id"`
	S3Key            string            `json:"s3_key"`
	OriginalFilename string            `json:"original_filename"`
	FullTranscript   string            `json:"full_transcript"`
	SpeakersData     []json.RawMessage `json:"speakers_data"`
	SegmentsData     []json.RawMessage `json:"segments_data"`
	Dialogue         string            `json:"dialogue"`
	NextSessionGoal  string            `json:"next_session_goal"`
}

// VoiceRecordUpdate carries the editable fields of a record.
type VoiceRecordUpdate struct {
	Title          string            `json:"title,omitempty"`
	SpeakerRenames map[string]string `json:"speaker_renames,omitempty"`
}

// UploadStatusResponse mirrors GET /clients/{id}/upload-status.
type UploadStatusResponse struct {
	Uploads []UploadJob `json:"uploads"`
}

// VoiceRecordListResponse mirrors GET /clients/{id}/voice-records. Older
// backend builds returned a bare record array; UnmarshalJSON accepts
// both shapes.
type VoiceRecordListResponse struct {
	Total   int           `json:"total"`
	Records []VoiceRecord `json:"records"`
	Uploads []UploadJob   `json:"uploads"`
}

// UnmarshalJSON accepts either the envelope object or a bare array of
// records.
func (r *VoiceRecordListResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var records []VoiceRecord
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return err
		}
		*r = VoiceRecordListResponse{Total: len(records), Records: records}
		return nil
	}
	type envelope VoiceRecordListResponse
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return err
	}
	*r = VoiceRecordListResponse(env)
	return nil
}

// ClientProfile is the full counseling-client record.
type ClientProfile struct {
	ID                       int64  `json:"id"`
	UserID                   int64  `json:"user_id"`
	Name                     string `json:"name"`
	Age                      int    `json:"age"`
	Gender                   string `json:"gender"`
	TotalSessions            int    `json:"total_sessions"`
	ConsultationBackground   string `json:"consultation_background"`
	MainComplaint            string `json:"main_complaint"`
	HasPreviousCounseling    bool   `json:"has_previous_counseling"`
	CurrentSymptoms          string `json:"current_symptoms"`
	AIConsultationBackground string `json:"ai_consultation_background"`
	AIMainComplaint          string `json:"ai_main_complaint"`
	AICurrentSymptoms        string `json:"ai_current_symptoms"`
	AIAnalysisCompleted      bool   `json:"ai_analysis_completed"`
	CreatedAt                string `json:"created_at"`
	UpdatedAt                string `json:"updated_at"`
}

// ClientSummary is the abbreviated list form of a counseling client.
type ClientSummary struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	Age           int    `json:"age"`
	Gender        string `json:"gender"`
	MainComplaint string `json:"main_complaint"`
	CreatedAt     string `json:"created_at"`
}

// ClientListResponse mirrors GET /clients.
type ClientListResponse struct {
	Total   int             `json:"total"`
	Clients []ClientSummary `json:"clients"`
}

// ClientCreate carries the fields required to register a new counseling
// client.
type ClientCreate struct {
	Name                   string `json:"name"`
	Age                    int    `json:"age"`
	Gender                 string `json:"gender"`
	TotalSessions          int    `json:"total_sessions,omitempty"`
	ConsultationBackground string `json:"consultation_background"`
	MainComplaint          string `json:"main_complaint"`
	HasPreviousCounseling  bool   `json:"has_previous_counseling"`
	CurrentSymptoms        string `json:"current_symptoms"`
}

// ClientUpdate is a partial update; nil fields are left untouched.
type ClientUpdate struct {
	Name                   *string `json:"name,omitempty"`
	Age                    *int    `json:"age,omitempty"`
	Gender                 *string `json:"gender,omitempty"`
	TotalSessions          *int    `json:"total_sessions,omitempty"`
	ConsultationBackground *string `json:"consultation_background,omitempty"`
	MainComplaint          *string `json:"main_complaint,omitempty"`
	HasPreviousCounseling  *bool   `json:"has_previous_counseling,omitempty"`
	CurrentSymptoms        *string `json:"current_symptoms,omitempty"`
}

// Appointment is one scheduled counseling session.
type Appointment struct {
	ID            int64  `json:"id"`
	UserID        int64  `json:"user_id"`
	ClientID      int64  `json:"client_id"`
	ClientName    string `json:"client_name"`
	SessionNumber int    `json:"session_number"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Memo          string `json:"memo"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

// AppointmentCreate carries the fields for booking an appointment.
type AppointmentCreate struct {
	ClientID      int64  `json:"client_id"`
	SessionNumber int    `json:"session_number"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	EndTime       string `json:"end_time"`
	Memo          string `json:"memo,omitempty"`
}

// AppointmentUpdate is a partial appointment update.
type AppointmentUpdate struct {
	ClientID      *int64  `json:"client_id,omitempty"`
	SessionNumber *int    `json:"session_number,omitempty"`
	Date          *string `json:"date,omitempty"`
	StartTime     *string `json:"start_time,omitempty"`
	EndTime       *string `json:"end_time,omitempty"`
	Memo          *string `json:"memo,omitempty"`
}

// AppointmentListResponse mirrors GET /appointments.
type AppointmentListResponse struct {
	Total        int           `json:"total"`
	Appointments []Appointment `json:"appointments"`
}

// User is the authenticated counselor account.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	FullName    string `json:"full_name"`
	IsActive    bool   `json:"is_active"`
	IsSuperuser bool   `json:"is_superuser"`
	CreatedAt   string `json:"created_at"`
}

// LoginRequest mirrors POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RegisterRequest mirrors POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	FullName string `json:"full_name,omitempty"`
	Password string `json:"password"`
}

// Token is the bearer credential issued at login.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// UploadURLRequest asks the backend for a pre-signed object-storage URL.
type UploadURLRequest struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
}

// UploadURLResponse carries the pre-signed PUT target and the object key
// to reference in the processing submission.
type UploadURLResponse struct {
	UploadURL string `json:"upload_url"`
	S3Key     string `json:"s3_key"`
}

// ProcessRequest submits an uploaded object for diarization and
// transcription.
type ProcessRequest struct {
	S3Key         string `json:"s3_key"`
	LanguageCode  string `json:"language_code"`
	ClientID      *int64 `json:"client_id"`
	SessionNumber *int   `json:"session_number"`
}

// ProcessResponse acknowledges a processing submission.
type ProcessResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Queued reports whether the submission was accepted asynchronously.
func (r ProcessResponse) Queued() bool {
	return strings.EqualFold(r.Status, "queued")
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t
		}
	}
	// FastAPI emits naive isoformat timestamps without a zone.
	if t, err := time.ParseInLocation(isoTimestampLayout, value, time.UTC); err == nil {
		return t
	}
	return time.Time{}
}
