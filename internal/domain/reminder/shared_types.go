// internal/domain/reminder/shared_types.go
package reminder

// Type says what a reminder is owed for.
type Type string

const (
	TypeLesson Type = "lesson" // a specific past session
	TypeCourse Type = "course" // overall course completion
)

// DateLayout is the calendar-date format used in dedup keys and on the wire.
const DateLayout = "2006-01-02"

// Valid reports whether t is one of the known reminder types.
func (t Type) Valid() bool {
	return t == TypeLesson || t == TypeCourse
}
