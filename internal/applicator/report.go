package applicator

// SkipReason explains why Apply left a target unchanged.
type SkipReason uint8

const (
	// SkipNone means settings were applied.
	SkipNone SkipReason = iota
	// SkipNoPath means the target is an unsaved buffer.
	SkipNoPath
	// SkipOptOut means the target disabled directory settings.
	SkipOptOut
	// SkipEmpty means no settings resolved for the target's directory.
	SkipEmpty
)

// String returns the reason name.
func (r SkipReason) String() string {
	switch r {
	case SkipNone:
		return "none"
	case SkipNoPath:
		return "no-path"
	case SkipOptOut:
		return "opt-out"
	case SkipEmpty:
		return "empty"
	default:
		return "unknown"
	}
}

// Report describes the outcome of one Apply.
type Report struct {
	// Target is the file path of the target.
	Target string
	// Skipped is SkipNone when settings were applied.
	Skipped SkipReason
	// Set lists the keys that were set, sorted.
	Set []string
	// Erased lists the keys that were erased, sorted.
	Erased []string
}

// Applied reports whether Apply wrote to the target.
func (r Report) Applied() bool {
	return r.Skipped == SkipNone
}
