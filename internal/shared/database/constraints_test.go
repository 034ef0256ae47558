package database

import (
	"strings"
	"testing"
)

// The statements run inside InitDB on every boot, so each must survive a
// schema that already carries it. PostgreSQL rejects ADD CONSTRAINT
// IF NOT EXISTS outright, so the constraint has to guard itself with an
// exception block instead.
func TestConstraintStatementsAreRerunnable(t *testing.T) {
	if len(constraintStatements) == 0 {
		t.Fatal("no constraint statements registered")
	}

	for _, stmt := range constraintStatements {
		switch {
		case strings.Contains(stmt, "ADD CONSTRAINT"):
			if strings.Contains(stmt, "ADD CONSTRAINT IF NOT EXISTS") {
				t.Errorf("ADD CONSTRAINT IF NOT EXISTS is not valid PostgreSQL:\n%s", stmt)
			}
			if !strings.Contains(stmt, "duplicate_object") {
				t.Errorf("unguarded ADD CONSTRAINT fails on the second boot:\n%s", stmt)
			}
		case strings.Contains(stmt, "CREATE INDEX"):
			if !strings.Contains(stmt, "IF NOT EXISTS") {
				t.Errorf("CREATE INDEX without IF NOT EXISTS fails on the second boot:\n%s", stmt)
			}
		default:
			t.Errorf("unrecognized statement kind:\n%s", stmt)
		}
	}
}
