package program

// StmtKind enumerates statement forms.
type StmtKind uint8

const (
	// StmtInvocation invokes a libfunc with one or more branches.
	StmtInvocation StmtKind = iota
	// StmtReturn terminates the enclosing function.
	StmtReturn
)

// BranchTarget is the successor of a branch: either the next statement or
// an absolute index.
type BranchTarget struct {
	Fallthrough bool         `msgpack:"ft,omitempty"`
	Index       StatementIdx `msgpack:"idx,omitempty"`
}

// Fallthrough targets the statement right after the invocation.
func Fallthrough() BranchTarget { return BranchTarget{Fallthrough: true} }

// Jump targets an absolute statement index.
func Jump(idx StatementIdx) BranchTarget { return BranchTarget{Index: idx} }

// Branch is one successor of an invocation and the variables it binds.
type Branch struct {
	Target  BranchTarget `msgpack:"target"`
	Results []VarID      `msgpack:"results,omitempty"`
}

// Next resolves the branch target relative to the invoking statement.
func (b *Branch) Next(from StatementIdx) StatementIdx {
	if b.Target.Fallthrough {
		return from + 1
	}
	return b.Target.Index
}

// Invocation calls a libfunc.
type Invocation struct {
	Libfunc  LibfuncID `msgpack:"libfunc"`
	Args     []VarID   `msgpack:"args,omitempty"`
	Branches []Branch  `msgpack:"branches"`
}

// Statement is either an Invocation or a Return.
type Statement struct {
	Kind       StmtKind   `msgpack:"kind"`
	Invocation Invocation `msgpack:"inv"`
	Return     []VarID    `msgpack:"ret,omitempty"`
}

// Invoke builds an invocation statement.
func Invoke(lib LibfuncID, args []VarID, branches ...Branch) Statement {
	return Statement{
		Kind:       StmtInvocation,
		Invocation: Invocation{Libfunc: lib, Args: args, Branches: branches},
	}
}

// Return builds a return statement.
func Return(vars ...VarID) Statement {
	return Statement{Kind: StmtReturn, Return: vars}
}
