package repository

import (
	"strings"
	"time"
)

// now returns the timestamp written to created_at/updated_at.  DATETIME
// columns hold whole seconds, so the value is truncated to match.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}

// nullable turns an optional string into a NULL-able query argument.
// Blank values are stored as NULL, so sending "" in an update clears the
// column.
func nullable(s *string) any {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return v
}

// setList accumulates "column = ?" assignments for partial updates.
type setList struct {
	cols []string
	args []any
}

func (s *setList) add(col string, v any) {
	s.cols = append(s.cols, col+" = ?")
	s.args = append(s.args, v)
}

func (s *setList) empty() bool { return len(s.cols) == 0 }

// sql renders the SET clause, always bumping updated_at.
func (s *setList) sql() (string, []any) {
	cols := append(append([]string{}, s.cols...), "updated_at = ?")
	args := append(append([]any{}, s.args...), now())
	return strings.Join(cols, ", "), args
}
