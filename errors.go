package blogposts

import (
	"fmt"
	"strings"
)

// ValidationError is returned when required post fields are missing.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("missing required field(s): %s", strings.Join(e.Fields, ", "))
}

// NotFoundError is returned when no post has the requested id.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("blog post %q not found", e.ID)
}

// MismatchError is returned when an update names one id in the path and
// another in the body.
type MismatchError struct {
	PathID string
	BodyID string
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("request path id (%s) and request body id (%s) must match", e.PathID, e.BodyID)
}
