package subset

import "fmt"

// Edge - one column pair of a foreign key constraint from the owning table to its target.
type Edge struct {
	Constraint   string
	LocalColumn  string
	TargetColumn string
	IsNullable   bool
}

func (e Edge) String() string {
	return fmt.Sprintf("%s(%s -> %s)", e.Constraint, e.LocalColumn, e.TargetColumn)
}

// Constraint - foreign key constraint with all its columns in definition order. It is used for
// restoring the references in the destination schema.
type Constraint struct {
	Name          string
	Table         string
	Columns       []string
	Target        string
	TargetColumns []string
}
