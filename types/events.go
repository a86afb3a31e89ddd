// Package types holds the wire-level value types shared across the xray
// SDK: events, artifacts, and the presign/ingest request and response
// bodies. Types here are
// value types — once an event is emitted it is never mutated.
package types

// EventType discriminates the tagged-sum Event variants described in the
// trace data model.
type EventType string

const (
	EventTraceStart   EventType = "trace-start"
	EventTraceSuccess EventType = "trace-success"
	EventTraceFailure EventType = "trace-failure"
	EventStep         EventType = "step"
	EventData         EventType = "data"
)

// ArtifactType tags a step artifact as an input, an output, or untagged
// (minimal mode, via Trace.Capture).
type ArtifactType string

const (
	ArtifactInput   ArtifactType = "input"
	ArtifactOutput  ArtifactType = "output"
	ArtifactUntyped ArtifactType = ""
)

// Metadata is a recursive tagged union of scalars, arrays, and nested
// objects. The SDK never tries to reify host types into structs: it only
// round-trips whatever JSON-shaped tree the caller hands it.
type Metadata = map[string]any

// Artifact is a reference from a step to a previously stored data blob.
type Artifact struct {
	DataID string       `json:"dataId"`
	Type   ArtifactType `json:"type"`
}

// Event is the tagged sum emitted by a Trace. Exactly one of the Status
// variants is populated per Event, selected by Type. Fields that don't
// apply to a given Type are left at their zero value and omitted from the
// wire encoding.
type Event struct {
	Type      EventType `json:"type"`
	TraceID   string    `json:"traceId"`
	ProjectID string    `json:"projectId"`
	CreatedAt string    `json:"createdAt"`

	// trace-start / trace-success / trace-failure
	Metadata        Metadata `json:"metadata,omitempty"`
	SuccessMetadata Metadata `json:"successMetadata,omitempty"`
	Status          string   `json:"status,omitempty"`
	EndedAt         string   `json:"endedAt,omitempty"`

	// step
	StepID     string     `json:"stepId,omitempty"`
	StepName   string     `json:"stepName,omitempty"`
	StepNumber int64      `json:"stepNumber,omitempty"`
	Artifacts  []Artifact `json:"artifacts,omitempty"`
	Timestamp  string     `json:"timestamp,omitempty"`

	// data (metadata-only record of a blob upload)
	DataID   string `json:"dataId,omitempty"`
	Key      string `json:"key,omitempty"`
	DataPath string `json:"dataPath,omitempty"`
}

// PresignRequest is the body of POST {baseUrl}/api/v1/presign.
type PresignRequest struct {
	DataID   string   `json:"dataId"`
	TraceID  string   `json:"traceId"`
	Key      string   `json:"key"`
	Metadata Metadata `json:"metadata,omitempty"`
}

// PresignResponse is the response of POST {baseUrl}/api/v1/presign.
type PresignResponse struct {
	PresignedURL string `json:"presignedUrl"`
	DataPath     string `json:"dataPath,omitempty"`
}

// IngestRequest is the body of POST {baseUrl}/api/v1/ingest.
type IngestRequest struct {
	Events []*Event `json:"events"`
}

// IngestResponse is the response of POST {baseUrl}/api/v1/ingest.
type IngestResponse struct {
	Success bool `json:"success"`
}
