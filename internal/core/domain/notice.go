package domain

// NoticeKind classifies a non-fatal condition observed while computing decisions.
type NoticeKind uint8

const (
	// NoticeRegistryIntegrity marks a tied directory ownership or a dangling dependency edge.
	NoticeRegistryIntegrity NoticeKind = iota + 1
	// NoticeUnknownOverride marks an alwaysRun, neverRun or allowList id that names no module.
	NoticeUnknownOverride
	// NoticeUnownedFile marks a changed file that no module directory prefixes.
	NoticeUnownedFile
)

// String returns the kind's name.
func (k NoticeKind) String() string {
	switch k {
	case NoticeRegistryIntegrity:
		return "registry-integrity"
	case NoticeUnknownOverride:
		return "unknown-override"
	case NoticeUnownedFile:
		return "unowned-file"
	default:
		return "unknown"
	}
}

// Notice is a recorded, non-fatal condition. It never interrupts a computation.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
	Path    string     `json:"path,omitzero"`
	Modules []string   `json:"modules,omitzero"`
}

// MarshalText lets NoticeKind serialize by name.
func (k NoticeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}
