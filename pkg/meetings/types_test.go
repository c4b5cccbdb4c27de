package meetings

import "testing"

func TestStatusValid(t *testing.T) {
	valid := []Status{
		StatusUploaded, StatusTranscribing, StatusTranscribed,
		StatusSummarizing, StatusCompleted, StatusFailed,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("Status(%q).Valid() = false, want true", s)
		}
	}

	for _, raw := range []string{"", "pending", "UPLOADED", "done"} {
		if s := Status(raw); s.Valid() {
			t.Errorf("Status(%q).Valid() = true, want false", raw)
		}
	}
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("transcribing")
	if !ok || s != StatusTranscribing {
		t.Errorf("ParseStatus(transcribing) = (%v, %v), want (transcribing, true)", s, ok)
	}

	if _, ok := ParseStatus("garbage"); ok {
		t.Error("ParseStatus(garbage) ok = true, want false")
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		{StatusUploaded, StatusTranscribing, true},
		{StatusTranscribing, StatusTranscribed, true},
		{StatusTranscribing, StatusFailed, true},
		{StatusTranscribed, StatusSummarizing, true},
		{StatusSummarizing, StatusCompleted, true},
		{StatusSummarizing, StatusFailed, true},

		// No skipping stages.
		{StatusUploaded, StatusTranscribed, false},
		{StatusUploaded, StatusSummarizing, false},
		{StatusTranscribed, StatusCompleted, false},

		// No backward transitions.
		{StatusTranscribed, StatusTranscribing, false},
		{StatusCompleted, StatusSummarizing, false},

		// completed is fully terminal.
		{StatusCompleted, StatusFailed, false},
		{StatusCompleted, StatusUploaded, false},

		// failed only re-enters via an explicit stage claim.
		{StatusFailed, StatusTranscribing, true},
		{StatusFailed, StatusSummarizing, true},
		{StatusFailed, StatusUploaded, false},
		{StatusFailed, StatusCompleted, false},
	}

	for _, tt := range tests {
		if got := tt.from.CanTransition(tt.to); got != tt.want {
			t.Errorf("CanTransition(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTerminal(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{StatusUploaded, false},
		{StatusTranscribing, false},
		{StatusTranscribed, false},
		{StatusSummarizing, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}

	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.want {
			t.Errorf("Status(%s).Terminal() = %v, want %v", tt.status, got, tt.want)
		}
	}
}

func TestClaimStates(t *testing.T) {
	// Every claim transition must be permitted by the transition table.
	for _, from := range TranscriptionClaimStates {
		if !from.CanTransition(StatusTranscribing) {
			t.Errorf("transcription claim from %s not allowed by transition table", from)
		}
	}
	for _, from := range SummarizationClaimStates {
		if !from.CanTransition(StatusSummarizing) {
			t.Errorf("summarization claim from %s not allowed by transition table", from)
		}
	}
}

func TestPriorityValid(t *testing.T) {
	for _, p := range []Priority{PriorityLow, PriorityMedium, PriorityHigh} {
		if !p.Valid() {
			t.Errorf("Priority(%q).Valid() = false, want true", p)
		}
	}
	if Priority("urgent").Valid() {
		t.Error("Priority(urgent).Valid() = true, want false")
	}
}
