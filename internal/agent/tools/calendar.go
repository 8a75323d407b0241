package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/record"
)

// CalendarTool returns the current date. Safe by default: it touches no
// backend data.
func CalendarTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name: "CalendarTool",
			Description: "Useful for when you need to know current date. " +
				"Always use this tool to get the current date if you are asked questions regarding today, yesterday, tomorrow etc.",
			Params: map[string]*schema.ParameterInfo{
				"format": {
					Type: schema.String,
					Desc: "Date format to be returned. Default is YYYY-MM-DD (Day)",
				},
			},
			Fields: map[string]FieldDescription{
				"format": {Label: "Format"},
			},
		},
		Run: func(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
			return Output{Response: deps.now().Format("2006-01-02 (Monday)")}, nil
		},
	}
}

// AvailabilityTool reports when a user is busy within a period, based on
// the meetings they are assigned to or attend.
func AvailabilityTool() Tool {
	return Tool{
		Descriptor: Descriptor{
			Name:        "AvailabilityTool",
			Description: "Useful when you want to check the availability of a person. This tool returns information about times when user is not available due to meetings, appointments etc.",
			Params: map[string]*schema.ParameterInfo{
				"current_user_id": {
					Type:     schema.String,
					Desc:     "ID of the user for whom you want to check the availability",
					Required: true,
				},
				"start_date": {
					Type:     schema.String,
					Desc:     "Start date of the period in YYYY-MM-DD format",
					Required: true,
				},
				"end_date": {
					Type:     schema.String,
					Desc:     "End date of the period in YYYY-MM-DD format",
					Required: true,
				},
			},
			Fields: map[string]FieldDescription{
				"current_user_id": {Label: "User", Kind: FieldLink, RefModule: "Users", Required: true},
				"start_date":      {Label: "From", Required: true},
				"end_date":        {Label: "To", Required: true},
			},
		},
		Run: runAvailability,
	}
}

func runAvailability(ctx context.Context, deps Deps, args map[string]any) (Output, error) {
	userID := stringArg(args, "current_user_id")
	start := stringArg(args, "start_date")
	end := stringArg(args, "end_date")

	filters := map[string]record.Filter{
		"date_start": {Operator: "BETWEEN", Value: start + " 00:00:00," + end + " 23:59:59"},
	}
	meetings, err := deps.Records.Search(ctx, "Meetings", filters, "and", nil)
	if err != nil {
		return Output{}, err
	}

	var b strings.Builder
	b.WriteString("__TABLE__\n")
	for _, meeting := range meetings {
		attends, err := attendsMeeting(ctx, deps.Records, meeting, userID)
		if err != nil {
			return Output{}, err
		}
		if !attends {
			continue
		}
		fmt.Fprintf(&b, "%v-%v-%v\n", meeting.Attributes["name"], meeting.Attributes["date_start"], meeting.Attributes["date_end"])
	}
	b.WriteString("__END_TABLE__")
	return Output{Response: b.String()}, nil
}

func attendsMeeting(ctx context.Context, records record.System, meeting *record.Record, userID string) (bool, error) {
	if assigned, _ := meeting.Attributes["assigned_user_id"].(string); assigned == userID {
		return true, nil
	}
	attendees, err := records.Relationships(ctx, "Meetings", meeting.ID, "Users")
	if err != nil {
		return false, err
	}
	for _, attendee := range attendees {
		if attendee.ID == userID {
			return true, nil
		}
	}
	return false, nil
}
