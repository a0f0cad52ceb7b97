package queue

import (
	"reflect"
	"testing"
)

func TestJobRoundTrip(t *testing.T) {
	job := Job{
		SectionID:  "section-123",
		DocumentID: "document-456",
		RequestID:  "request-789",
		Force:      true,
		EnqueuedAt: "2026-08-30T22:00:00Z",
		Version:    1,
	}

	payload, err := EncodeJob(job)
	if err != nil {
		t.Fatalf("encode job: %v", err)
	}

	got, err := DecodeJob(payload)
	if err != nil {
		t.Fatalf("decode job: %v", err)
	}

	if !reflect.DeepEqual(got, job) {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, job)
	}
}

func TestDecodeJobInvalidPayload(t *testing.T) {
	if _, err := DecodeJob([]byte("{not json")); err == nil {
		t.Fatal("expected decode error")
	}
}
