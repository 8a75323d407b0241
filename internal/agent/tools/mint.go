package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/record"
)

// moduleWhitelist limits the module listing to the modules the agent is
// meant to work with.
var moduleWhitelist = []string{
	"Meetings",
	"Tasks",
	"Certificates",
	"Responsibilities",
	"Calls",
	"Candidates",
	"Candidatures",
	"Benefits",
}

// DefaultSafeTools are exempt from human confirmation.
var DefaultSafeTools = []string{"CalendarTool"}

// NewDefaultRegistry wires every HCM tool plus the calendar helpers.
func NewDefaultRegistry() *Registry {
	return NewRegistry(DefaultSafeTools,
		GetModuleNamesTool(),
		GetModuleFieldsTool(),
		SearchTool(),
		CreateRecordTool(),
		CreateMeetingTool(),
		GetUsersTool(),
		UpdateFieldsTool(),
		CreateRelTool(),
		DeleteRecordTool(),
		DeleteRelTool(),
		GetRelTool(),
		CalendarTool(),
		AvailabilityTool(),
	)
}

// GetModuleNamesTool lists the modules available to the agent.
func GetModuleNamesTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name:        "MintGetModuleNamesTool",
			Description: "Tool to retrieve list of module names. Use this tool only if user asks for list of available modules or to check if specific module exists.",
			Params:      map[string]*schema.ParameterInfo{},
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			names, err := deps.Records.ModuleNames(ctx)
			if err != nil {
				return Output{}, err
			}
			allowed := make(map[string]bool, len(moduleWhitelist))
			for _, m := range moduleWhitelist {
				allowed[m] = true
			}
			var visible []string
			for _, name := range names {
				if allowed[name] {
					visible = append(visible, name)
				}
			}
			sort.Strings(visible)
			return Output{Response: strings.Join(visible, ", ")}, nil
		},
	}
}

// GetModuleFieldsTool lists the fields of one module.
func GetModuleFieldsTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name:        "MintGetModuleFieldsTool",
			Description: "Tool to retrieve list of fields and their types in a MintHCM module. Use this tool ALWAYS before using MintSearchTool to get list of fields available in the module.",
			Params: map[string]*schema.ParameterInfo{
				"module_name": {
					Type:     schema.String,
					Desc:     "Name of the module in Mint in which the information is to be read",
					Required: true,
				},
			},
			Fields: map[string]FieldDescription{
				"module_name": {Label: "Module", Required: true},
			},
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			module := stringArg(args, "module_name")
			fields, err := deps.Records.ModuleFields(ctx, module)
			if err != nil {
				return Output{}, err
			}
			byName := make(map[string]map[string]string, len(fields))
			for _, f := range fields {
				byName[f.Name] = map[string]string{"dbType": f.DBType}
			}
			payload, err := json.Marshal(map[string]any{"fields": byName})
			if err != nil {
				return Output{}, err
			}
			return Output{Response: string(payload)}, nil
		},
	}
}

const searchFiltersDesc = `JSON with filters to apply to the query.
Example: { "filters": { "date_start": { "operator": ">", "value": "2022-01-01" }, "assigned_user_id": { "operator": "=", "value": "1" } } }
ONLY available operators: =, <>, >, >=, <, <=, LIKE, NOT LIKE, IN, NOT IN, BETWEEN.
For operators IN, NOT IN set value as string with comma separated values.
For operator BETWEEN set value as string with two values separated by comma.
When performing search on a datetime field to find records related to a specific date, use operator BETWEEN with the specific date and the specific date + 1 day.
Remember that dates returned by MintHCM are in UTC timezone.`

// SearchTool retrieves records from a module with validated fields and
// filters.
func SearchTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name:        "MintSearchTool",
			Description: "Tool to retrieve list of records from MintHCM. Always use MintGetModuleFieldsTool to get list of fields available in the module. Do not use this tool without knowing the fields available in the module!",
			Params: map[string]*schema.ParameterInfo{
				"module_name": {
					Type:     schema.String,
					Desc:     "Name of the module in Mint in which the information is to be read",
					Required: true,
				},
				"filters": {
					Type:     schema.String,
					Desc:     searchFiltersDesc,
					Required: true,
				},
				"operator": {
					Type:     schema.String,
					Desc:     "Operator to use to join all filters. Possible values: 'and', 'or'",
					Required: true,
				},
				"fields": {
					Type:     schema.String,
					Desc:     "List of fields to retrieve from the module. Example: 'id,name,date_start,status'. Always use MintGetModuleFieldsTool to get list of fields available in the module.",
					Required: true,
				},
			},
			Fields: map[string]FieldDescription{
				"module_name": {Label: "Module", Required: true},
				"filters":     {Label: "Filters", Required: true},
				"operator":    {Label: "Filter operator"},
				"fields":      {Label: "Fields", Required: true},
			},
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			module := stringArg(args, "module_name")
			fieldNames, err := validatedFields(ctx, deps.Records, module, stringArg(args, "fields"))
			if err != nil {
				return Output{}, err
			}
			filters, err := parseFilters(stringArg(args, "filters"))
			if err != nil {
				return Output{}, err
			}
			if err := checkFilterFields(ctx, deps.Records, module, filters); err != nil {
				return Output{}, err
			}
			rows, err := deps.Records.Search(ctx, module, filters, stringArg(args, "operator"), fieldNames)
			if err != nil {
				return Output{}, err
			}
			data := make([]map[string]any, 0, len(rows))
			for _, row := range rows {
				data = append(data, row.Attributes)
			}
			payload, err := json.Marshal(map[string]any{"data": data})
			if err != nil {
				return Output{}, err
			}
			return Output{Response: string(payload)}, nil
		},
	}
}

// CreateRecordTool creates a record in any module except Meetings.
func CreateRecordTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name: "MintCreateRecordTool",
			Description: "General Tool to create new record in MintHCM modules, for example new employees, new candidates etc. " +
				"Don't use this tool for meetings. Use MintCreateMeetingTool for meetings. " +
				"Don't use this tool without knowing the fields available in the module. Use MintGetModuleFieldsTool to get list of fields available in the module.",
			RequestMessage: "Agent wants to create a record",
			Params: map[string]*schema.ParameterInfo{
				"module_name": {
					Type:     schema.String,
					Desc:     "Name of the module in Mint in which the record is to be created",
					Required: true,
				},
				"attributes": {
					Type:     schema.Object,
					Desc:     "Record attributes in key-value format",
					Required: true,
				},
			},
			Fields: map[string]FieldDescription{
				"module_name": {Label: "Module", Required: true},
				"attributes":  {Label: "Attributes", Kind: FieldDict, Required: true},
			},
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			module := stringArg(args, "module_name")
			id, err := deps.Records.Create(ctx, module, mapArg(args, "attributes"))
			if err != nil {
				return Output{}, err
			}
			return Output{
				Response: fmt.Sprintf("New record created in module %s", module),
				Extra:    map[string]any{"url": deps.Records.RecordURL(module, id)},
			}, nil
		},
	}
}

const meetingDateFormat = "2006-01-02 15:04:05"

// CreateMeetingTool creates a meeting and links attendees and candidates.
func CreateMeetingTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name: "MintCreateMeetingTool",
			Description: "Tool to create new meetings with attendees in MintHCM modules. " +
				"Use CalendarTool to get current_date and derive from it proper date_start and date_end for the meeting if asked to create meeting for today, tomorrow etc. " +
				"Use MintGetModuleFieldsTool to get list of fields available in the module.",
			RequestMessage: "Agent wants to create a meeting",
			Params: map[string]*schema.ParameterInfo{
				"attributes": {
					Type: schema.Object,
					Desc: "Record attributes in key-value format, value CAN NOT be a list. " +
						"Example: { 'name': 'Meeting with John', 'date_start': '2022-01-01 12:00:00', 'date_end': '2022-01-01 13:00:00', 'assigned_user_id': '1' }",
					Required: true,
				},
				"attendees": {
					Type:     schema.Array,
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Desc: "List of ids of attendees to the meeting. " +
						"If you have just first_name and a last_name or username use MintSearchTool to search for user id in MintHCM.",
					Required: true,
				},
				"candidates": {
					Type:     schema.Array,
					ElemInfo: &schema.ParameterInfo{Type: schema.String},
					Desc: "List of ids of candidates to the meeting. " +
						"If you have just first_name and a last_name of the candidate, use MintSearchTool to search for candidate id in MintHCM.",
				},
			},
			Fields: map[string]FieldDescription{
				"attributes": {
					Label:    "Meeting",
					Kind:     FieldDict,
					Required: true,
					Fields: map[string]FieldDescription{
						"name":             {Label: "Meeting name", Required: true},
						"date_start":       {Label: "Start time", Required: true},
						"date_end":         {Label: "End time", Required: true},
						"assigned_user_id": {Label: "Assigned to", Kind: FieldLink, RefModule: "Users", Required: true},
					},
				},
				"attendees":  {Label: "Attendees", Kind: FieldLinkArray, RefModule: "Users"},
				"candidates": {Label: "Candidates", Kind: FieldLinkArray, RefModule: "Candidates"},
			},
		},
		Run: runCreateMeeting,
	}
}

func runCreateMeeting(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
	attributes := mapArg(args, "attributes")
	attendees := stringsArg(args, "attendees")
	candidates := stringsArg(args, "candidates")

	start, errStart := time.Parse(meetingDateFormat, stringArg(attributes, "date_start"))
	end, errEnd := time.Parse(meetingDateFormat, stringArg(attributes, "date_end"))
	if errStart != nil || errEnd != nil {
		return Output{}, fmt.Errorf("date_start and date_end must be in format 'YYYY-MM-DD HH:MM:SS' e.g. '2022-01-01 12:00:00'")
	}

	duration := end.Sub(start)
	attributes["duration_hours"] = int(duration.Hours())
	attributes["duration_minutes"] = int(duration.Minutes()) % 60

	for _, attendee := range attendees {
		if _, err := deps.Records.Get(ctx, "Users", attendee); err != nil {
			return Output{Response: fmt.Sprintf("User with id %s does not exist", attendee)}, nil
		}
	}
	for _, candidate := range candidates {
		if _, err := deps.Records.Get(ctx, "Candidates", candidate); err != nil {
			return Output{Response: fmt.Sprintf("Candidate with id %s does not exist", candidate)}, nil
		}
	}

	// The organiser always attends their own meeting.
	if deps.MintUserID != "" && !contains(attendees, deps.MintUserID) {
		attendees = append(attendees, deps.MintUserID)
	}

	id, err := deps.Records.Create(ctx, "Meetings", attributes)
	if err != nil {
		return Output{}, err
	}
	for _, attendee := range attendees {
		if err := deps.Records.Link(ctx, "Meetings", id, "Users", attendee); err != nil {
			return Output{}, err
		}
	}
	for _, candidate := range candidates {
		if err := deps.Records.Link(ctx, "Meetings", id, "Candidates", candidate); err != nil {
			return Output{}, err
		}
	}

	return Output{
		Response: "New meeting created in module 'Meetings'",
		Extra:    map[string]any{"url": deps.Records.RecordURL("Meetings", id)},
	}, nil
}

// GetUsersTool lists users with their contact details.
func GetUsersTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name:        "MintGetUsersTool",
			Description: "Tool to retrieve list of users in MintHCM. Use this to get list of users in MintHCM and their details such as id, name, phone numbers, email, position etc.",
			Params:      map[string]*schema.ParameterInfo{},
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			rows, err := deps.Records.Search(ctx, "Users", nil, "and", nil)
			if err != nil {
				return Output{}, err
			}
			var b strings.Builder
			for _, row := range rows {
				fmt.Fprintf(&b, "ID: %s, Name: %v, Position: %v, Phone: %v, Email: %v, Employee status: %v\n",
					row.ID,
					row.Attributes["full_name"],
					row.Attributes["position_name"],
					row.Attributes["phone_mobile"],
					row.Attributes["email_addresses_primary"],
					row.Attributes["employee_status"],
				)
			}
			return Output{Response: b.String()}, nil
		},
	}
}

// UpdateFieldsTool updates fields of an existing record.
func UpdateFieldsTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name: "UpdateFieldsTool",
			Description: "Use this tool to update fields in the module based on data received from the user, for example duration or start date. " +
				"Before using UpdateFieldsTool, ensure you have the correct module name and record ID. If not, use MintSearchTool to retrieve them.",
			RequestMessage: "Agent wants to update a record",
			Params: map[string]*schema.ParameterInfo{
				"module_name": {
					Type:     schema.String,
					Desc:     "Name of the module in MintHCM system. If you don't know the module, use MintSearchTool to search for module name in MintHCM.",
					Required: true,
				},
				"id": {
					Type:     schema.String,
					Desc:     "ID number of the record to update. If you don't know id, use MintSearchTool to search for record id in MintHCM.",
					Required: true,
				},
				"attributes": {
					Type:     schema.Object,
					Desc:     "Attributes to update in key-value format",
					Required: true,
				},
			},
			Fields: map[string]FieldDescription{
				"module_name": {Label: "Module", Required: true},
				"id":          {Label: "Record ID", Required: true},
				"attributes":  {Label: "Attributes", Kind: FieldDict, Required: true},
			},
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			module := stringArg(args, "module_name")
			id := stringArg(args, "id")
			if err := deps.Records.Update(ctx, module, id, mapArg(args, "attributes")); err != nil {
				return Output{}, err
			}
			return Output{Response: fmt.Sprintf("Updated fields in module %s for record %s", module, id)}, nil
		},
	}
}

// CreateRelTool links two records.
func CreateRelTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name:           "MintCreateRelTool",
			Description:    "Tool to create a relationship between records in MintHCM modules. First you need to get both record_id and related_id by using MintSearchTool.",
			RequestMessage: "Agent wants to create a relationship",
			Params:         relParams(true),
			Fields:         relFields(true),
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			module := stringArg(args, "module_name")
			if err := deps.Records.Link(ctx, module, stringArg(args, "record_id"), stringArg(args, "related_module"), stringArg(args, "related_id")); err != nil {
				return Output{}, err
			}
			return Output{Response: "Relationship created"}, nil
		},
	}
}

// DeleteRelTool removes a link between two records.
func DeleteRelTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name:           "MintDeleteRelTool",
			Description:    "Tool to delete a relationship between records in MintHCM modules. If you don't know ID numbers, you need to get both record_id and related_id by using MintSearchTool.",
			RequestMessage: "Agent wants to delete a relationship",
			Params:         relParams(true),
			Fields:         relFields(true),
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			module := stringArg(args, "module_name")
			if err := deps.Records.Unlink(ctx, module, stringArg(args, "record_id"), stringArg(args, "related_module"), stringArg(args, "related_id")); err != nil {
				return Output{}, err
			}
			return Output{Response: "Relationship deleted"}, nil
		},
	}
}

// GetRelTool lists records related to one record.
func GetRelTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name:        "MintGetRelTool",
			Description: "Tool to get relationships between records in MintHCM modules",
			Params:      relParams(false),
			Fields:      relFields(false),
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			rows, err := deps.Records.Relationships(ctx, stringArg(args, "module_name"), stringArg(args, "record_id"), stringArg(args, "related_module"))
			if err != nil {
				return Output{}, err
			}
			data := make([]map[string]any, 0, len(rows))
			for _, row := range rows {
				data = append(data, row.Attributes)
			}
			payload, err := json.Marshal(map[string]any{"data": data})
			if err != nil {
				return Output{}, err
			}
			return Output{Response: string(payload)}, nil
		},
	}
}

// DeleteRecordTool deletes one record by id.
func DeleteRecordTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name: "MintDeleteRecordTool",
			Description: "General Tool to delete records in MintHCM modules, for example employees, candidates, meetings etc. " +
				"Use MintSearchTool to retrieve ID of the record.",
			RequestMessage: "Agent wants to delete a record",
			Params: map[string]*schema.ParameterInfo{
				"module_name": {
					Type:     schema.String,
					Desc:     "Name of the module in Mint in which the record is to be deleted",
					Required: true,
				},
				"id": {
					Type:     schema.String,
					Desc:     "ID number of the record to be deleted",
					Required: true,
				},
			},
			Fields: map[string]FieldDescription{
				"module_name": {Label: "Module", Required: true},
				"id":          {Label: "Record ID", Required: true},
			},
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			module := stringArg(args, "module_name")
			id := stringArg(args, "id")
			if err := deps.Records.Delete(ctx, module, id); err != nil {
				return Output{}, err
			}
			return Output{Response: fmt.Sprintf("Deleted record %s from module %s", id, module)}, nil
		},
	}
}

func relParams(withRelatedID bool) map[string]*schema.ParameterInfo {
	params := map[string]*schema.ParameterInfo{
		"module_name": {
			Type:     schema.String,
			Desc:     "Name of the module the record belongs to",
			Required: true,
		},
		"record_id": {
			Type:     schema.String,
			Desc:     "ID of the record the relationship starts from",
			Required: true,
		},
		"related_module": {
			Type:     schema.String,
			Desc:     "Name of the related module",
			Required: true,
		},
	}
	if withRelatedID {
		params["related_id"] = &schema.ParameterInfo{
			Type:     schema.String,
			Desc:     "ID of the related record",
			Required: true,
		}
	}
	return params
}

func relFields(withRelatedID bool) map[string]FieldDescription {
	fields := map[string]FieldDescription{
		"module_name":    {Label: "Module", Required: true},
		"record_id":      {Label: "Record ID", Required: true},
		"related_module": {Label: "Related module", Required: true},
	}
	if withRelatedID {
		fields["related_id"] = FieldDescription{Label: "Related record ID", Required: true}
	}
	return fields
}

// validatedFields splits a comma separated field list and checks each one
// against the module schema.
func validatedFields(ctx context.Context, records record.System, module, fields string) ([]string, error) {
	schemas, err := records.ModuleFields(ctx, module)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		known[s.Name] = true
	}
	var out []string
	for _, field := range strings.Split(strings.ReplaceAll(fields, " ", ""), ",") {
		if field == "" {
			continue
		}
		if !known[field] {
			return nil, fmt.Errorf("field %s is not available in the module %s. Use MintGetModuleFieldsTool to get list of fields available in the module", field, module)
		}
		out = append(out, field)
	}
	return out, nil
}

func checkFilterFields(ctx context.Context, records record.System, module string, filters map[string]record.Filter) error {
	if len(filters) == 0 {
		return nil
	}
	schemas, err := records.ModuleFields(ctx, module)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(schemas))
	for _, s := range schemas {
		known[s.Name] = true
	}
	for field := range filters {
		if !known[field] {
			return fmt.Errorf("field %s is not available in the module %s. Use MintGetModuleFieldsTool to get list of fields available in the module", field, module)
		}
	}
	return nil
}

func parseFilters(raw string) (map[string]record.Filter, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var wrapper struct {
		Filters map[string]record.Filter `json:"filters"`
	}
	if err := json.Unmarshal([]byte(raw), &wrapper); err != nil {
		return nil, fmt.Errorf("invalid filters JSON: %w", err)
	}
	return wrapper.Filters, nil
}

func contains(items []string, v string) bool {
	for _, item := range items {
		if item == v {
			return true
		}
	}
	return false
}
