package domain

import "time"

// RunRecord captures a successful run so that the next invocation can diff against it.
type RunRecord struct {
	// Target is the task name the record applies to.
	Target string `json:"target"`
	// Ref is the revision the successful run was computed at.
	Ref string `json:"ref"`
	// Fingerprint identifies the module registry the run was computed against.
	Fingerprint string `json:"fingerprint"`
	// Modules lists the modules whose task ran.
	Modules []string `json:"modules,omitzero"`
	// Timestamp is when the run completed.
	Timestamp time.Time `json:"timestamp,omitzero"`
}
