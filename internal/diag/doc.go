// Package diag collects diagnostics produced by a decompilation run.
//
// Every failure the pipeline can report has a Code. Codes are grouped by
// the stage that raises them and print with a prefix:
//
//	LOD1xxx  loading Sierra text or snapshots
//	RES2xxx  type and libfunc resolution
//	DEC3xxx  statement walking and emission
//	IO4xxx   output and cache files
//	OBS6xxx  observability notes (timings)
//
// Diagnostics flow through a Reporter, usually a BagReporter that stores
// them in a Bag. Formatting for terminals lives in diagfmt; FormatShort
// gives a stable single-line form for tests and scripts.
package diag
