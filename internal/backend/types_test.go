package backend

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseJobStatus(t *testing.T) {
	tests := []struct {
		raw     string
		kind    JobStatusKind
		pending bool
		failed  bool
	}{
		{"queued", StatusQueued, true, false},
		{"processing", StatusProcessing, true, false},
		{"failed", StatusFailed, false, true},
		{"QUEUED", StatusQueued, true, false},
		{"  processing  ", StatusProcessing, true, false},
		{"transcribing", StatusUnknown, false, false},
		{"", StatusUnknown, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ParseJobStatus(tt.raw)
			if got.Kind != tt.kind {
				t.Fatalf("ParseJobStatus(%q).Kind = %v, want %v", tt.raw, got.Kind, tt.kind)
			}
			if got.Raw != tt.raw {
				t.Fatalf("ParseJobStatus(%q).Raw = %q, want wire value preserved", tt.raw, got.Raw)
			}
			if got.Pending() != tt.pending {
				t.Fatalf("Pending() = %v, want %v", got.Pending(), tt.pending)
			}
			if got.Failed() != tt.failed {
				t.Fatalf("Failed() = %v, want %v", got.Failed(), tt.failed)
			}
		})
	}
}

func TestJobStatus_UnknownKeepsRaw(t *testing.T) {
	var s JobStatus
	if err := json.Unmarshal([]byte(`"transcribing"`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Kind != StatusUnknown {
		t.Fatalf("Kind = %v, want StatusUnknown", s.Kind)
	}
	if s.String() != "transcribing" {
		t.Fatalf("String() = %q, want raw value surfaced", s.String())
	}
}

func TestSessionNumber_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		set   bool
	}{
		{"number", `3`, 3, true},
		{"numeric string", `"2"`, 2, true},
		{"padded string", `" 7 "`, 7, true},
		{"null", `null`, 0, false},
		{"empty string", `""`, 0, false},
		{"garbage string", `"three"`, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s SessionNumber
			if err := json.Unmarshal([]byte(tt.input), &s); err != nil {
				t.Fatalf("unmarshal %s: %v", tt.input, err)
			}
			got, ok := s.Value()
			if ok != tt.set {
				t.Fatalf("Value() set = %v, want %v", ok, tt.set)
			}
			if got != tt.want {
				t.Fatalf("Value() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSessionNumber_MarshalJSON(t *testing.T) {
	set, err := json.Marshal(NewSessionNumber(4))
	if err != nil {
		t.Fatalf("marshal set: %v", err)
	}
	if string(set) != "4" {
		t.Fatalf("set marshals to %s, want 4", set)
	}

	unset, err := json.Marshal(SessionNumber{})
	if err != nil {
		t.Fatalf("marshal unset: %v", err)
	}
	if string(unset) != "null" {
		t.Fatalf("unset marshals to %s, want null", unset)
	}
}

func TestVoiceRecordListResponse_AcceptsBothShapes(t *testing.T) {
	envelope := `{"total":2,"records":[{"id":1},{"id":2}],"uploads":[{"id":9,"status":"queued"}]}`
	var env VoiceRecordListResponse
	if err := json.Unmarshal([]byte(envelope), &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	if env.Total != 2 || len(env.Records) != 2 || len(env.Uploads) != 1 {
		t.Fatalf("envelope parsed as %+v", env)
	}

	bare := `[{"id":1},{"id":2},{"id":3}]`
	var arr VoiceRecordListResponse
	if err := json.Unmarshal([]byte(bare), &arr); err != nil {
		t.Fatalf("unmarshal bare array: %v", err)
	}
	if arr.Total != 3 || len(arr.Records) != 3 {
		t.Fatalf("bare array parsed as %+v", arr)
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "rfc3339",
			input: "2025-06-01T10:30:00Z",
			want:  time.Date(2025, 6, 1, 10, 30, 0, 0, time.UTC),
		},
		{
			name:  "rfc3339 fractional",
			input: "2025-06-01T10:30:00.123456Z",
			want:  time.Date(2025, 6, 1, 10, 30, 0, 123456000, time.UTC),
		},
		{
			name: "naive isoformat",
			// FastAPI default serialization carries no zone designator.
			input: "2025-06-01T10:30:00.500000",
			want:  time.Date(2025, 6, 1, 10, 30, 0, 500000000, time.UTC),
		},
		{
			name:  "empty",
			input: "",
			want:  time.Time{},
		},
		{
			name:  "unparseable",
			input: "yesterday",
			want:  time.Time{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseTime(tt.input); !got.Equal(tt.want) {
				t.Fatalf("parseTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestProcessResponse_Queued(t *testing.T) {
	if !(ProcessResponse{Status: "queued"}).Queued() {
		t.Fatal("queued status not recognized")
	}
	if !(ProcessResponse{Status: "Queued"}).Queued() {
		t.Fatal("case-insensitive match expected")
	}
	if (ProcessResponse{Status: "rejected"}).Queued() {
		t.Fatal("rejected status must not report queued")
	}
}
