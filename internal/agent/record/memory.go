package record

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// MemorySystem is an in-process record backend used by tests and local
// development. Modules and their field schemas are fixed at construction;
// records live in a map guarded by a mutex.
type MemorySystem struct {
	mu      sync.RWMutex
	baseURL string
	fields  map[string][]FieldSchema
	records map[string]map[string]*Record
	links   map[string]map[string][]string
}

// DefaultModules mirrors the module whitelist exposed to the agent.
var DefaultModules = map[string][]FieldSchema{
	"Meetings": {
		{Name: "id", DBType: "id"},
		{Name: "name", DBType: "name"},
		{Name: "date_start", DBType: "datetime"},
		{Name: "date_end", DBType: "datetime"},
		{Name: "status", DBType: "varchar"},
		{Name: "assigned_user_id", DBType: "id"},
		{Name: "duration_hours", DBType: "int"},
		{Name: "duration_minutes", DBType: "int"},
	},
	"Users": {
		{Name: "id", DBType: "id"},
		{Name: "user_name", DBType: "varchar"},
		{Name: "full_name", DBType: "varchar"},
		{Name: "email_addresses_primary", DBType: "varchar"},
		{Name: "phone_mobile", DBType: "varchar"},
		{Name: "phone_work", DBType: "varchar"},
		{Name: "position_name", DBType: "varchar"},
		{Name: "reports_to_id", DBType: "id"},
		{Name: "employee_status", DBType: "varchar"},
	},
	"Tasks": {
		{Name: "id", DBType: "id"},
		{Name: "name", DBType: "name"},
		{Name: "date_due", DBType: "datetime"},
		{Name: "status", DBType: "varchar"},
		{Name: "assigned_user_id", DBType: "id"},
	},
	"Calls": {
		{Name: "id", DBType: "id"},
		{Name: "name", DBType: "name"},
		{Name: "date_start", DBType: "datetime"},
		{Name: "status", DBType: "varchar"},
	},
	"Candidates": {
		{Name: "id", DBType: "id"},
		{Name: "first_name", DBType: "varchar"},
		{Name: "last_name", DBType: "varchar"},
		{Name: "email", DBType: "varchar"},
		{Name: "status", DBType: "varchar"},
	},
	"Candidatures": {
		{Name: "id", DBType: "id"},
		{Name: "name", DBType: "name"},
		{Name: "status", DBType: "varchar"},
	},
	"Certificates": {
		{Name: "id", DBType: "id"},
		{Name: "name", DBType: "name"},
		{Name: "assigned_user_id", DBType: "id"},
	},
	"Responsibilities": {
		{Name: "id", DBType: "id"},
		{Name: "name", DBType: "name"},
		{Name: "assigned_user_id", DBType: "id"},
	},
	"Benefits": {
		{Name: "id", DBType: "id"},
		{Name: "name", DBType: "name"},
		{Name: "assigned_user_id", DBType: "id"},
	},
}

// NewMemorySystem builds an empty backend with the default module set.
func NewMemorySystem(baseURL string) *MemorySystem {
	fields := make(map[string][]FieldSchema, len(DefaultModules))
	records := make(map[string]map[string]*Record, len(DefaultModules))
	for module, schema := range DefaultModules {
		fields[module] = schema
		records[module] = map[string]*Record{}
	}
	return &MemorySystem{
		baseURL: strings.TrimRight(baseURL, "/"),
		fields:  fields,
		records: records,
		links:   map[string]map[string][]string{},
	}
}

func (m *MemorySystem) Create(ctx context.Context, module string, attributes map[string]any) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[module]; !ok {
		return "", &ModuleError{Module: module}
	}
	id, err := uuid.NewV7()
	if err != nil {
		return "", err
	}
	attrs := make(map[string]any, len(attributes)+1)
	for k, v := range attributes {
		attrs[k] = v
	}
	attrs["id"] = id.String()
	m.records[module][id.String()] = &Record{ID: id.String(), Module: module, Attributes: attrs}
	return id.String(), nil
}

func (m *MemorySystem) Get(ctx context.Context, module, id string) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.records[module]
	if !ok {
		return nil, &ModuleError{Module: module}
	}
	rec, ok := rows[id]
	if !ok {
		return nil, &NotFoundError{Module: module, ID: id}
	}
	return rec, nil
}

func (m *MemorySystem) Search(ctx context.Context, module string, filters map[string]Filter, operator string, fields []string) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows, ok := m.records[module]
	if !ok {
		return nil, &ModuleError{Module: module}
	}
	if operator != "or" {
		operator = "and"
	}

	var out []*Record
	for _, rec := range rows {
		match, err := matches(rec, filters, operator)
		if err != nil {
			return nil, err
		}
		if !match {
			continue
		}
		out = append(out, project(rec, fields))
	}
	return out, nil
}

func (m *MemorySystem) Update(ctx context.Context, module, id string, attributes map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.records[module]
	if !ok {
		return &ModuleError{Module: module}
	}
	rec, ok := rows[id]
	if !ok {
		return &NotFoundError{Module: module, ID: id}
	}
	for k, v := range attributes {
		rec.Attributes[k] = v
	}
	return nil
}

func (m *MemorySystem) Delete(ctx context.Context, module, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows, ok := m.records[module]
	if !ok {
		return &ModuleError{Module: module}
	}
	if _, ok := rows[id]; !ok {
		return &NotFoundError{Module: module, ID: id}
	}
	delete(rows, id)
	return nil
}

func (m *MemorySystem) Link(ctx context.Context, module, id, relatedModule, relatedID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := module + "/" + id
	if m.links[key] == nil {
		m.links[key] = map[string][]string{}
	}
	m.links[key][relatedModule] = append(m.links[key][relatedModule], relatedID)
	return nil
}

func (m *MemorySystem) Unlink(ctx context.Context, module, id, relatedModule, relatedID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := module + "/" + id
	ids := m.links[key][relatedModule]
	for i, v := range ids {
		if v == relatedID {
			m.links[key][relatedModule] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return &NotFoundError{Module: relatedModule, ID: relatedID}
}

func (m *MemorySystem) Relationships(ctx context.Context, module, id, relatedModule string) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	key := module + "/" + id
	var out []*Record
	for _, relID := range m.links[key][relatedModule] {
		if rec, ok := m.records[relatedModule][relID]; ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *MemorySystem) ModuleNames(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.fields))
	for module := range m.fields {
		out = append(out, module)
	}
	return out, nil
}

func (m *MemorySystem) ModuleFields(ctx context.Context, module string) ([]FieldSchema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	schema, ok := m.fields[module]
	if !ok {
		return nil, &ModuleError{Module: module}
	}
	return schema, nil
}

func (m *MemorySystem) RecordURL(module, id string) string {
	if m.baseURL == "" {
		return ""
	}
	return fmt.Sprintf("%s/#/%s/record/%s", m.baseURL, module, id)
}

func project(rec *Record, fields []string) *Record {
	if len(fields) == 0 {
		return rec
	}
	attrs := make(map[string]any, len(fields))
	for _, f := range fields {
		if v, ok := rec.Attributes[f]; ok {
			attrs[f] = v
		}
	}
	return &Record{ID: rec.ID, Module: rec.Module, Attributes: attrs}
}

func matches(rec *Record, filters map[string]Filter, operator string) (bool, error) {
	if len(filters) == 0 {
		return true, nil
	}
	anyMatch := false
	for field, filter := range filters {
		ok, err := evalFilter(rec.Attributes[field], filter)
		if err != nil {
			return false, err
		}
		if operator == "and" && !ok {
			return false, nil
		}
		if ok {
			anyMatch = true
		}
	}
	if operator == "or" {
		return anyMatch, nil
	}
	return true, nil
}

func evalFilter(raw any, f Filter) (bool, error) {
	value := fmt.Sprintf("%v", raw)
	if raw == nil {
		value = ""
	}
	switch strings.ToUpper(strings.TrimSpace(f.Operator)) {
	case "=":
		return value == f.Value, nil
	case "<>":
		return value != f.Value, nil
	case ">":
		return compare(value, f.Value) > 0, nil
	case ">=":
		return compare(value, f.Value) >= 0, nil
	case "<":
		return compare(value, f.Value) < 0, nil
	case "<=":
		return compare(value, f.Value) <= 0, nil
	case "LIKE":
		return like(value, f.Value), nil
	case "NOT LIKE":
		return !like(value, f.Value), nil
	case "IN":
		return inList(value, f.Value), nil
	case "NOT IN":
		return !inList(value, f.Value), nil
	case "BETWEEN":
		parts := strings.SplitN(f.Value, ",", 2)
		if len(parts) != 2 {
			return false, fmt.Errorf("BETWEEN requires two comma separated values, got %q", f.Value)
		}
		lo := strings.TrimSpace(parts[0])
		hi := strings.TrimSpace(parts[1])
		return compare(value, lo) >= 0 && compare(value, hi) <= 0, nil
	default:
		return false, fmt.Errorf("unsupported filter operator %q", f.Operator)
	}
}

// compare orders numerically when both sides parse as numbers, otherwise
// lexicographically. ISO datetime strings order correctly either way.
func compare(a, b string) int {
	fa, errA := strconv.ParseFloat(a, 64)
	fb, errB := strconv.ParseFloat(b, 64)
	if errA == nil && errB == nil {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func like(value, pattern string) bool {
	p := strings.ToLower(pattern)
	v := strings.ToLower(value)
	switch {
	case strings.HasPrefix(p, "%") && strings.HasSuffix(p, "%"):
		return strings.Contains(v, strings.Trim(p, "%"))
	case strings.HasPrefix(p, "%"):
		return strings.HasSuffix(v, strings.TrimPrefix(p, "%"))
	case strings.HasSuffix(p, "%"):
		return strings.HasPrefix(v, strings.TrimSuffix(p, "%"))
	default:
		return v == p
	}
}

func inList(value, list string) bool {
	for _, item := range strings.Split(list, ",") {
		if strings.TrimSpace(item) == value {
			return true
		}
	}
	return false
}
