package uploader

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/voicestart/voicestart/internal/backend"
)

const (
	// MaxFileSize bounds a single recording. Counseling sessions run
	// about an hour; 500MB covers uncompressed WAV with headroom.
	MaxFileSize = 500 * 1024 * 1024

	// MaxSessionNumber matches the backend's total_sessions bound.
	MaxSessionNumber = 100

	defaultLanguageCode = "ko"
	putTimeout          = 10 * time.Minute
)

// Sentinel validation errors. Callers use errors.Is() instead of string
// matching.
var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrFileTooLarge      = errors.New("file too large - maximum 500MB allowed")
	ErrInvalidFileType   = errors.New("invalid file type - only mp3, wav, m4a, ogg, webm allowed")
	ErrFilenameTooLong   = errors.New("filename too long - maximum 255 characters")
	ErrSessionOutOfRange = errors.New("session number must be between 1 and 100")
)

var allowedMimeTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/mp3":   true,
	"audio/mp4":   true,
	"audio/m4a":   true,
	"audio/wav":   true,
	"audio/wave":  true,
	"audio/x-wav": true,
	"audio/ogg":   true,
	"audio/webm":  true,
}

// Submission describes one recording to push through the pipeline.
// SessionNumber 0 submits the recording unassigned; the counselor ties
// it to a slot later.
type Submission struct {
	ClientID      int64
	SessionNumber int
	Path          string
	LanguageCode  string
}

// Uploader drives the three-step submit: pre-signed URL, object PUT,
// processing job. The PUT goes straight to object storage with its own
// long-timeout client; only the first and third steps talk to the
// backend.
type Uploader struct {
	Backend *backend.Client
	put     *http.Client
}

// New builds an Uploader over the given backend client.
func New(bc *backend.Client) *Uploader {
	return &Uploader{
		Backend: bc,
		put:     &http.Client{Timeout: putTimeout},
	}
}

// Submit validates the file, uploads it, and queues processing. It
// returns the backend's acknowledgment; the recording shows up in the
// client's upload status from then on.
func (u *Uploader) Submit(ctx context.Context, token string, sub Submission) (*backend.ProcessResponse, error) {
	contentType, err := validate(sub)
	if err != nil {
		return nil, err
	}

	filename := filepath.Base(sub.Path)
	target, err := u.Backend.CreateUploadURL(ctx, token, backend.UploadURLRequest{
		Filename:    filename,
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("request upload url: %w", err)
	}

	if err := u.putObject(ctx, target.UploadURL, sub.Path, contentType); err != nil {
		return nil, err
	}

	req := backend.ProcessRequest{
		S3Key:        target.S3Key,
		LanguageCode: sub.LanguageCode,
	}
	if req.LanguageCode == "" {
		req.LanguageCode = defaultLanguageCode
	}
	if sub.ClientID > 0 {
		req.ClientID = &sub.ClientID
	}
	if sub.SessionNumber > 0 {
		n := sub.SessionNumber
		req.SessionNumber = &n
	}

	resp, err := u.Backend.SubmitProcessing(ctx, token, req)
	if err != nil {
		return nil, fmt.Errorf("submit processing: %w", err)
	}
	return resp, nil
}

// putObject streams the file to the pre-signed URL. The URL carries its
// own authorization; no token is attached.
func (u *Uploader) putObject(ctx context.Context, uploadURL, path, contentType string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open recording: %w", err)
	}
	defer func() { _ = file.Close() }()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat recording: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = info.Size()
	req.Header.Set("Content-Type", contentType)

	resp, err := u.put.Do(req)
	if err != nil {
		return fmt.Errorf("upload object: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("object storage rejected upload (HTTP %d)", resp.StatusCode)
	}
	return nil
}

func validate(sub Submission) (string, error) {
	if sub.SessionNumber < 0 || sub.SessionNumber > MaxSessionNumber {
		return "", ErrSessionOutOfRange
	}

	filename := filepath.Base(sub.Path)
	if len(filename) > 255 {
		return "", ErrFilenameTooLong
	}

	info, err := os.Stat(sub.Path)
	if err != nil {
		return "", fmt.Errorf("stat recording: %w", err)
	}
	if info.Size() == 0 {
		return "", ErrEmptyFile
	}
	if info.Size() > MaxFileSize {
		return "", ErrFileTooLarge
	}

	contentType := guessContentType(filename)
	if !allowedMimeTypes[contentType] {
		return "", ErrInvalidFileType
	}
	return contentType, nil
}

func guessContentType(filename string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	typeMap := map[string]string{
		"mp3":  "audio/mpeg",
		"m4a":  "audio/mp4",
		"wav":  "audio/wav",
		"ogg":  "audio/ogg",
		"webm": "audio/webm",
	}
	if ct, ok := typeMap[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}
