// Package record defines the HCM backend capability the agent tools run
// against: CRUD, search and relationship operations on named modules.
package record

import (
	"context"
	"fmt"
)

// Record is one backend row: an id plus its attribute map.
type Record struct {
	ID         string         `json:"id"`
	Module     string         `json:"module"`
	Attributes map[string]any `json:"attributes"`
}

// FieldSchema describes one module field as reported by the backend.
type FieldSchema struct {
	Name   string `json:"name"`
	DBType string `json:"dbType"`
}

// Filter is a single field predicate. Supported operators mirror the
// backend query language: =, <>, >, >=, <, <=, LIKE, NOT LIKE, IN,
// NOT IN, BETWEEN. IN/NOT IN take comma separated values, BETWEEN takes
// exactly two values separated by a comma.
type Filter struct {
	Operator string `json:"operator"`
	Value    string `json:"value"`
}

// System is the record backend capability. Implementations must be safe
// for concurrent use; the agent processes many conversations at once.
type System interface {
	Create(ctx context.Context, module string, attributes map[string]any) (string, error)
	Get(ctx context.Context, module, id string) (*Record, error)
	Search(ctx context.Context, module string, filters map[string]Filter, operator string, fields []string) ([]*Record, error)
	Update(ctx context.Context, module, id string, attributes map[string]any) error
	Delete(ctx context.Context, module, id string) error

	Link(ctx context.Context, module, id, relatedModule, relatedID string) error
	Unlink(ctx context.Context, module, id, relatedModule, relatedID string) error
	Relationships(ctx context.Context, module, id, relatedModule string) ([]*Record, error)

	ModuleNames(ctx context.Context) ([]string, error)
	ModuleFields(ctx context.Context, module string) ([]FieldSchema, error)

	// RecordURL returns the backend UI address of a record, used for the
	// out-of-band link events after record creation.
	RecordURL(module, id string) string
}

// ModuleError marks a reference to a module the backend does not know.
// Tool error handling relies on recognising this case to hint the model
// towards the module listing tool.
type ModuleError struct {
	Module string
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("Module %s does not exist", e.Module)
}

// NotFoundError marks a missing record.
type NotFoundError struct {
	Module string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("record %s not found in module %s", e.ID, e.Module)
}
