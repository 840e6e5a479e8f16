package types

import "strings"

// SubmissionPayload is the structured record a job-seeker or employer
// submits. It is opaque to the payment layer and stored verbatim; only the
// relay interprets individual fields.
type SubmissionPayload map[string]string

func (p SubmissionPayload) Field(name string) string {
	return strings.TrimSpace(p[name])
}

func (p SubmissionPayload) Email() string {
	return p.Field("email")
}

func (p SubmissionPayload) IsEmpty() bool {
	return len(p) == 0
}

func (p SubmissionPayload) Clone() SubmissionPayload {
	if len(p) == 0 {
		return SubmissionPayload{}
	}
	dst := make(SubmissionPayload, len(p))
	for k, v := range p {
		dst[k] = v
	}
	return dst
}
