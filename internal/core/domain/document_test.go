package domain

import (
	"testing"
)

func TestNewDocument(t *testing.T) {
	doc := NewDocument("user-123", "report.pdf", "/data/raw/report.pdf")

	if doc.ID == "" {
		t.Error("expected non-empty ID")
	}
	if doc.OwnerID != "user-123" {
		t.Errorf("expected owner user-123, got %s", doc.OwnerID)
	}
	if doc.Filename != "report.pdf" {
		t.Errorf("expected filename report.pdf, got %s", doc.Filename)
	}
	if doc.RawPath != "/data/raw/report.pdf" {
		t.Errorf("expected raw path /data/raw/report.pdf, got %s", doc.RawPath)
	}
	if doc.ExtractedPath != "" {
		t.Errorf("expected empty extracted path, got %s", doc.ExtractedPath)
	}
	if doc.Status != StatusQueued {
		t.Errorf("expected status %s, got %s", StatusQueued, doc.Status)
	}
	if doc.ErrorDetail != "" {
		t.Errorf("expected empty error detail, got %s", doc.ErrorDetail)
	}
	if doc.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}
	if doc.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt to be set")
	}
}

func TestNewDocument_UniqueIDs(t *testing.T) {
	a := NewDocument("user-1", "a.pdf", "/data/a.pdf")
	b := NewDocument("user-1", "a.pdf", "/data/a.pdf")

	if a.ID == b.ID {
		t.Error("expected distinct IDs for distinct documents")
	}
}

func TestDocumentStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   DocumentStatus
		expected bool
	}{
		{StatusQueued, false},
		{StatusProcessing, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestDocumentStatus_CanTransitionTo(t *testing.T) {
	all := []DocumentStatus{StatusQueued, StatusProcessing, StatusCompleted, StatusFailed}

	allowed := map[DocumentStatus]map[DocumentStatus]bool{
		StatusQueued:     {StatusProcessing: true},
		StatusProcessing: {StatusCompleted: true, StatusFailed: true},
		StatusCompleted:  {StatusProcessing: true},
		StatusFailed:     {StatusProcessing: true},
	}

	for _, from := range all {
		for _, to := range all {
			expected := allowed[from][to]
			if got := from.CanTransitionTo(to); got != expected {
				t.Errorf("%s -> %s: expected %v, got %v", from, to, expected, got)
			}
		}
	}
}

func TestDocumentStatus_CanTransitionTo_Unknown(t *testing.T) {
	if DocumentStatus("bogus").CanTransitionTo(StatusProcessing) {
		t.Error("unknown status should not transition anywhere")
	}
}
