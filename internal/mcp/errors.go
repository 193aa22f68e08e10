package mcp

import "fmt"

// NotFoundError reports an unknown model or template id, or a missing tool
// argument. Kind names which namespace the id was looked up in ("model",
// "template", "argument").
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}
