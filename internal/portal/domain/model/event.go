package model

import "time"

// ApplicationEventType names a change to a job's applicant list.
type ApplicationEventType string

const (
	ApplicationSubmitted     ApplicationEventType = "submitted"
	ApplicationWithdrawn     ApplicationEventType = "withdrawn"
	ApplicationStatusChanged ApplicationEventType = "status_changed"
	JobDeleted               ApplicationEventType = "job_deleted"
)

// ApplicationEvent is pushed to websocket listeners of a job and appended to
// the job's event stream.
type ApplicationEvent struct {
	ID            string               `json:"id"`
	Type          ApplicationEventType `json:"type"`
	JobID         string               `json:"job_id"`
	ApplicationID string               `json:"application_id,omitempty"`
	Status        string               `json:"status,omitempty"`
	Count         int64                `json:"applicationCount"`
	Timestamp     time.Time            `json:"timestamp"`

	// StreamID is the position of the event in the job's stream, set once stored.
	StreamID string `json:"stream_id,omitempty"`
}

// StreamKey returns the key of the per-job event stream.
func StreamKey(jobID string) string {
	return "job:" + jobID + ":applications"
}
