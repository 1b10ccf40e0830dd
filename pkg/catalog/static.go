package catalog

import "github.com/flowgrid/flowgrid/pkg/models"

// Static is the built-in catalog used when no catalog document is
// configured.
type Static struct {
	memory
}

// NewStatic returns a catalog over the built-in service set.
func NewStatic() *Static {
	return &Static{memory{services: builtinServices()}}
}

func ptrFloat(f float64) *float64 { return &f }
func ptrInt(i int) *int           { return &i }

func builtinServices() []models.Service {
	return []models.Service{
		{
			ID:       "gmail",
			Name:     "Gmail",
			Category: "Email",
			Triggers: []models.Operation{
				{
					Name:        "New Email",
					Description: "Fires when a new email arrives in the inbox",
					Fields: []models.Field{
						{Name: "from", Label: "From Address", Type: models.FieldTypeEmail, Required: false, Placeholder: "anyone@example.com"},
						{Name: "subject_contains", Label: "Subject Contains", Type: models.FieldTypeText, Required: false, MaxLength: ptrInt(120)},
						{Name: "has_attachment", Label: "Has Attachment", Type: models.FieldTypeCheckbox, Required: false},
					},
				},
			},
			Actions: []models.Operation{
				{
					Name:        "Send Email",
					Description: "Sends an email from the connected account",
					Fields: []models.Field{
						{Name: "to", Label: "To Address", Type: models.FieldTypeEmail, Required: true},
						{Name: "subject", Label: "Subject", Type: models.FieldTypeText, Required: true, MaxLength: ptrInt(200)},
						{Name: "body", Label: "Body", Type: models.FieldTypeTextarea, Required: true, Rows: ptrInt(6)},
					},
				},
			},
		},
		{
			ID:       "slack",
			Name:     "Slack",
			Category: "Communication",
			Triggers: []models.Operation{
				{
					Name:        "New Message",
					Description: "Fires when a message is posted in a channel",
					Fields: []models.Field{
						{Name: "channel", Label: "Channel", Type: models.FieldTypeText, Required: true, Placeholder: "#general"},
					},
				},
			},
			Actions: []models.Operation{
				{
					Name:        "Send Message",
					Description: "Posts a message to a channel",
					Fields: []models.Field{
						{Name: "channel", Label: "Channel", Type: models.FieldTypeText, Required: true, Placeholder: "#general"},
						{Name: "message", Label: "Message", Type: models.FieldTypeTextarea, Required: true, Rows: ptrInt(4)},
						{Name: "as_bot", Label: "Send as Bot", Type: models.FieldTypeCheckbox, Required: false},
					},
				},
			},
		},
		{
			ID:       "schedule",
			Name:     "Schedule",
			Category: "Utilities",
			Triggers: []models.Operation{
				{
					Name:        "Every Day",
					Description: "Fires once a day at a fixed time",
					Fields: []models.Field{
						{Name: "time", Label: "Time of Day", Type: models.FieldTypeTime, Required: true},
					},
				},
				{
					Name:        "Every Hour",
					Description: "Fires at a fixed minute past every hour",
					Fields: []models.Field{
						{Name: "minute", Label: "Minute", Type: models.FieldTypeNumber, Required: true, Min: ptrFloat(0), Max: ptrFloat(59), Step: ptrFloat(1)},
					},
				},
			},
		},
		{
			ID:       "typeform",
			Name:     "Typeform",
			Category: "Forms",
			Triggers: []models.Operation{
				{
					Name:        "New Submission",
					Description: "Fires when a form receives a submission",
					Fields: []models.Field{
						{Name: "form_id", Label: "Form ID", Type: models.FieldTypeText, Required: true},
					},
				},
			},
		},
		{
			ID:       "hubspot",
			Name:     "HubSpot",
			Category: "CRM",
			Actions: []models.Operation{
				{
					Name:        "Create Contact",
					Description: "Creates a contact record",
					Fields: []models.Field{
						{Name: "email", Label: "Email", Type: models.FieldTypeEmail, Required: true},
						{Name: "name", Label: "Full Name", Type: models.FieldTypeText, Required: false},
						{Name: "lifecycle_stage", Label: "Lifecycle Stage", Type: models.FieldTypeSelect, Required: false, Options: []string{"lead", "customer", "opportunity"}},
					},
				},
			},
		},
		{
			ID:       "sheets",
			Name:     "Google Sheets",
			Category: "Spreadsheets",
			Actions: []models.Operation{
				{
					Name:        "Append Row",
					Description: "Appends a row to a spreadsheet",
					Fields: []models.Field{
						{Name: "spreadsheet_url", Label: "Spreadsheet URL", Type: models.FieldTypeURL, Required: true},
						{Name: "values", Label: "Row Values", Type: models.FieldTypeTextarea, Required: true, Rows: ptrInt(3)},
					},
				},
			},
		},
	}
}
