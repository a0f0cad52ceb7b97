package queue

import "encoding/json"

// Job is the render work item sent to downstream queue consumers.
type Job struct {
	SectionID  string `json:"sectionId"`
	DocumentID string `json:"documentId"`
	RequestID  string `json:"requestId"`
	Force      bool   `json:"force"`
	EnqueuedAt string `json:"enqueuedAt"`
	Version    int    `json:"version"`
}

// EncodeJob returns the JSON representation of a job.
func EncodeJob(job Job) ([]byte, error) {
	return json.Marshal(job)
}

// DecodeJob parses a JSON payload into a Job.
func DecodeJob(payload []byte) (Job, error) {
	var job Job
	if err := json.Unmarshal(payload, &job); err != nil {
		return Job{}, err
	}
	return job, nil
}
