package template

import "github.com/flowgrid/flowgrid/pkg/models"

// BuiltIn returns the default template set.
func BuiltIn() []*models.Template {
	return []*models.Template{
		{
			ID:          "email-to-slack",
			Name:        "Email to Slack",
			Description: "Post a Slack message whenever an important email arrives",
			Category:    "Communication",
			Popularity:  95,
			Services:    []string{"Gmail", "Slack"},
			Workflow: models.Workflow{
				Name:        "Email to Slack",
				Description: "Post a Slack message whenever an important email arrives",
				Nodes: []*models.Node{
					{
						ID:       "tpl-gmail-trigger",
						Type:     models.NodeTypeTrigger,
						Service:  "Gmail",
						Action:   "New Email",
						Position: models.Position{X: 200, Y: 200},
						Config:   map[string]any{"subject_contains": "urgent"},
					},
					{
						ID:       "tpl-slack-action",
						Type:     models.NodeTypeAction,
						Service:  "Slack",
						Action:   "Send Message",
						Position: models.Position{X: 600, Y: 200},
						Config:   map[string]any{"channel": "#alerts"},
					},
				},
				Connections: []*models.Connection{
					{ID: "tpl-conn-1", SourceNodeID: "tpl-gmail-trigger", TargetNodeID: "tpl-slack-action"},
				},
			},
		},
		{
			ID:          "daily-report",
			Name:        "Daily Report Row",
			Description: "Append a spreadsheet row on a daily schedule",
			Category:    "Reporting",
			Popularity:  80,
			Services:    []string{"Schedule", "Google Sheets"},
			Workflow: models.Workflow{
				Name:        "Daily Report Row",
				Description: "Append a spreadsheet row on a daily schedule",
				Nodes: []*models.Node{
					{
						ID:       "tpl-schedule-trigger",
						Type:     models.NodeTypeTrigger,
						Service:  "Schedule",
						Action:   "Every Day",
						Position: models.Position{X: 200, Y: 250},
						Config:   map[string]any{"time": "09:00"},
					},
					{
						ID:       "tpl-sheets-action",
						Type:     models.NodeTypeAction,
						Service:  "Google Sheets",
						Action:   "Append Row",
						Position: models.Position{X: 600, Y: 250},
						Config:   map[string]any{},
					},
				},
				Connections: []*models.Connection{
					{ID: "tpl-conn-1", SourceNodeID: "tpl-schedule-trigger", TargetNodeID: "tpl-sheets-action"},
				},
			},
		},
	}
}
