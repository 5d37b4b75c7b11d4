package program

import "fmt"

// Ids are the numeric identities of Sierra declarations. Debug names are
// kept alongside the declaration, never inside the id.
type (
	TypeID    uint64
	LibfuncID uint64
	FuncID    uint64
	VarID     uint64
)

// StatementIdx addresses a statement in Program.Statements.
type StatementIdx int

// NoStatement marks an absent statement index.
const NoStatement StatementIdx = -1

func (id TypeID) String() string    { return fmt.Sprintf("[%d]", uint64(id)) }
func (id LibfuncID) String() string { return fmt.Sprintf("[%d]", uint64(id)) }
func (id FuncID) String() string    { return fmt.Sprintf("[%d]", uint64(id)) }
func (id VarID) String() string     { return fmt.Sprintf("[%d]", uint64(id)) }

// Name is the pseudo-source identifier of a variable.
func (id VarID) Name() string { return fmt.Sprintf("v%d", uint64(id)) }
