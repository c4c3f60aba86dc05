package intelligence

import (
	"slices"

	"github.com/alexanderramin/taskpilot/internal/llm"
)

func stringProp(description string) map[string]any {
	return map[string]any{"type": "string", "description": description}
}

func integerProp(description string) map[string]any {
	return map[string]any{"type": "integer", "description": description}
}

func strictObject(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for name := range props {
		required = append(required, name)
	}
	slices.Sort(required)
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// AssignmentSchema is the strict contract for assignment recommendations.
func AssignmentSchema() *llm.Schema {
	item := strictObject(map[string]any{
		"email":        stringProp("Email of the user selected for the assignment"),
		"display_name": stringProp("Display name of the user selected for the assignment"),
		"reason":       stringProp("Why the user is the best fit for the task"),
	})
	return &llm.Schema{
		Name:        "task_assignment_response",
		Description: "Recommended assignees for unassigned work items",
		Definition: strictObject(map[string]any{
			"assignments": map[string]any{
				"type":        "array",
				"description": "Recommended individuals, best fit first",
				"items":       item,
			},
		}),
	}
}

// RiskItemsSchema is the strict contract for the ranked risk report.
func RiskItemsSchema() *llm.Schema {
	item := strictObject(map[string]any{
		"id":             integerProp("Work item id"),
		"title":          stringProp("Title of the item"),
		"state":          stringProp("Current state of the item"),
		"assigned_to":    stringProp("User assigned to the item"),
		"team_project":   stringProp("Project the item belongs to"),
		"priority":       integerProp("Priority level of the item"),
		"severity":       stringProp("Severity level of the item"),
		"due_date":       stringProp("Due date of the item, empty if none"),
		"priority_score": integerProp("Calculated priority score"),
	})
	return &llm.Schema{
		Name:        "item_list",
		Description: "Ranked high-risk work items",
		Definition: strictObject(map[string]any{
			"items": map[string]any{
				"type":        "array",
				"description": "Work items, most at risk first",
				"items":       item,
			},
		}),
	}
}
