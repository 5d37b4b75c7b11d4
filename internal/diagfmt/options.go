package diagfmt

import "sierradec/internal/source"

// PathMode specifies how file paths are displayed.
type PathMode uint8

const (
	// PathModeAuto shows paths relative to BaseDir when they live below it.
	PathModeAuto PathMode = iota
	PathModeAbsolute
	PathModeRelative
	PathModeBasename
)

// SourceLookup returns the loaded text for a path, or nil.
type SourceLookup func(path string) *source.File

// PrettyOpts configures pretty-printing of diagnostics.
type PrettyOpts struct {
	Color     bool
	PathMode  PathMode
	BaseDir   string
	ShowNotes bool
	// Sources enables the source line preview under positioned diagnostics.
	Sources SourceLookup
	// Width truncates preview lines, 0 means unlimited.
	Width int
}

// JSONOpts configures JSON output of diagnostics.
type JSONOpts struct {
	PathMode     PathMode
	BaseDir      string
	Max          int // 0 means all
	IncludeNotes bool
}
