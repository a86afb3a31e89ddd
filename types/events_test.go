package types

import (
	"encoding/json"
	"testing"
)

func TestEventWireShape(t *testing.T) {
	e := &Event{
		Type:      EventStep,
		TraceID:   "p-1234",
		ProjectID: "p",
		StepID:    "s-1",
		StepName:  "fetch",
		StepNumber: 3,
		Artifacts: []Artifact{{DataID: "d-1", Type: ArtifactInput}},
	}

	raw, err := json.Marshal(e)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if decoded["type"] != "step" {
		t.Fatalf("expected type=step, got %v", decoded["type"])
	}
	if decoded["stepName"] != "fetch" {
		t.Fatalf("expected stepName=fetch, got %v", decoded["stepName"])
	}
	if _, ok := decoded["status"]; ok {
		t.Fatalf("status should be omitted for step events")
	}
}

func TestIngestRequestShape(t *testing.T) {
	req := IngestRequest{Events: []*Event{{Type: EventTraceStart, TraceID: "p-1"}}}
	raw, err := json.Marshal(req)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	events, ok := decoded["events"].([]any)
	if !ok || len(events) != 1 {
		t.Fatalf("expected events array of length 1, got %v", decoded["events"])
	}
}
