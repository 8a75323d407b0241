package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eVolpe-AI/AI-HR-Agent/internal/agent/record"
)

func TestMissingRequiredTopLevel(t *testing.T) {
	desc := DeleteRecordTool().Descriptor

	missing := desc.MissingRequired(map[string]any{"module_name": "Tasks"})
	assert.Equal(t, []string{"id"}, missing)

	missing = desc.MissingRequired(map[string]any{"module_name": "Tasks", "id": ""})
	assert.Equal(t, []string{"id"}, missing)

	missing = desc.MissingRequired(map[string]any{"module_name": "Tasks", "id": "42"})
	assert.Empty(t, missing)
}

func TestMissingRequiredDictFields(t *testing.T) {
	desc := CreateMeetingTool().Descriptor

	missing := desc.MissingRequired(map[string]any{
		"attributes": map[string]any{
			"name":       "Standup",
			"date_start": "2026-01-01 09:00:00",
		},
	})
	assert.ElementsMatch(t, []string{"date_end", "assigned_user_id"}, missing)

	missing = desc.MissingRequired(map[string]any{
		"attributes": map[string]any{
			"name":             "Standup",
			"date_start":       "2026-01-01 09:00:00",
			"date_end":         "2026-01-01 09:15:00",
			"assigned_user_id": "u1",
		},
	})
	assert.Empty(t, missing)
}

func TestMissingRequiredDictNotAMap(t *testing.T) {
	desc := CreateRecordTool().Descriptor
	missing := desc.MissingRequired(map[string]any{"module_name": "Tasks", "attributes": "oops"})
	assert.Equal(t, []string{"attributes"}, missing)
}

func TestRenderInputResolvesLinks(t *testing.T) {
	ctx := context.Background()
	records := record.NewMemorySystem("")
	userID, err := records.Create(ctx, "Users", map[string]any{"full_name": "Jan Kowalski"})
	require.NoError(t, err)

	desc := CreateMeetingTool().Descriptor
	rendered := desc.RenderInput(ctx, records, map[string]any{
		"attributes": map[string]any{
			"name":             "Interview",
			"assigned_user_id": userID,
		},
		"attendees": []any{userID, "missing-id"},
	})

	meeting, ok := rendered["Meeting"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Interview", meeting["Meeting name"])
	assert.Contains(t, meeting["Assigned to"], "Jan Kowalski")

	attendees, ok := rendered["Attendees"].([]any)
	require.True(t, ok)
	assert.Contains(t, attendees[0], "Jan Kowalski")
	// Unresolvable ids degrade to the raw value.
	assert.Equal(t, "missing-id", attendees[1])
}

func TestErrorMessageModuleHint(t *testing.T) {
	err := &record.ModuleError{Module: "Bogus"}
	msg := ErrorMessage(err)
	assert.Contains(t, msg, "Module Error")
	assert.Contains(t, msg, "MintGetModuleNamesTool")

	plain := ErrorMessage(errors.New("boom"))
	assert.Contains(t, plain, "Error: boom")
	assert.Contains(t, plain, "Please fix your mistakes")
}
