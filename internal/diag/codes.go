package diag

import "fmt"

type Code uint16

const (
	UnknownCode Code = 0

	// loading
	LoadInfo      Code = 1000
	LoadSyntax    Code = 1001
	LoadRedeclare Code = 1002
	LoadEntry     Code = 1003
	LoadSnapshot  Code = 1004
	LoadRead      Code = 1005

	// resolution
	ResInfo           Code = 2000
	ResTypeLookup     Code = 2001
	ResOperatorLookup Code = 2002

	// decompilation
	DecInfo                Code = 3000
	DecUnsupportedOperator Code = 3001
	DecInvariant           Code = 3002
	DecCycle               Code = 3003
	DecStepLimit           Code = 3004
	DecCancelled           Code = 3005

	// files
	IOWriteOutput Code = 4001
	IOCache       Code = 4002
	IOConfig      Code = 4003

	// observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var codeDescription = map[Code]string{
	UnknownCode:            "Unknown error",
	LoadInfo:               "Load information",
	LoadSyntax:             "Malformed Sierra program",
	LoadRedeclare:          "Duplicate declaration",
	LoadEntry:              "Function entry out of range",
	LoadSnapshot:           "Unreadable program snapshot",
	LoadRead:               "Cannot read input",
	ResInfo:                "Resolution information",
	ResTypeLookup:          "Type cannot be resolved",
	ResOperatorLookup:      "Libfunc cannot be resolved",
	DecInfo:                "Decompilation information",
	DecUnsupportedOperator: "Libfunc has no pseudo-source form",
	DecInvariant:           "Malformed statement",
	DecCycle:               "Control-flow cycle",
	DecStepLimit:           "Too many paths",
	DecCancelled:           "Cancelled",
	IOWriteOutput:          "Cannot write output",
	IOCache:                "Program cache failure",
	IOConfig:               "Invalid configuration",
	ObsInfo:                "Observability",
	ObsTimings:             "Timings",
}

var codePrefixes = [...]string{1: "LOD", 2: "RES", 3: "DEC", 4: "IO", 6: "OBS"}

// ID returns the printable identifier, e.g. "DEC3001".
func (c Code) ID() string {
	group := int(c) / 1000
	if group < len(codePrefixes) && codePrefixes[group] != "" {
		return fmt.Sprintf("%s%04d", codePrefixes[group], int(c))
	}
	return "E0000"
}

// Title returns a short human description of the code.
func (c Code) Title() string {
	if desc, ok := codeDescription[c]; ok {
		return desc
	}
	return codeDescription[UnknownCode]
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
