package models

// FieldType enumerates the input kinds a configuration field can
// declare. The set mirrors what the configuration panel can render.
type FieldType string

const (
	FieldTypeText     FieldType = "text"
	FieldTypeTextarea FieldType = "textarea"
	FieldTypeSelect   FieldType = "select"
	FieldTypeCheckbox FieldType = "checkbox"
	FieldTypeTime     FieldType = "time"
	FieldTypeEmail    FieldType = "email"
	FieldTypeURL      FieldType = "url"
	FieldTypeNumber   FieldType = "number"
)

// Field describes one configurable parameter of a catalog operation.
// Type-specific constraints are pointers so absent and zero are
// distinguishable after JSON round-trips.
type Field struct {
	Name        string    `json:"name"  validate:"required"`
	Label       string    `json:"label" validate:"required"`
	Type        FieldType `json:"type"  validate:"required,oneof=text textarea select checkbox time email url number"`
	Required    bool      `json:"required"`
	Placeholder string    `json:"placeholder,omitempty"`
	Options     []string  `json:"options,omitempty"`
	Min         *float64  `json:"min,omitempty"`
	Max         *float64  `json:"max,omitempty"`
	Step        *float64  `json:"step,omitempty"`
	MaxLength   *int      `json:"max_length,omitempty"`
	Rows        *int      `json:"rows,omitempty"`
}

// Operation is a single trigger or action a service exposes, together
// with the field schema a node of that operation can be configured with.
type Operation struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

// Service is one entry in the external service catalog.
type Service struct {
	ID       string      `json:"id"   validate:"required"`
	Name     string      `json:"name" validate:"required"`
	Category string      `json:"category"`
	Triggers []Operation `json:"triggers"`
	Actions  []Operation `json:"actions"`
}

// Operations returns the trigger list for trigger nodes and the action
// list otherwise.
func (s *Service) Operations(nodeType NodeType) []Operation {
	if nodeType == NodeTypeTrigger {
		return s.Triggers
	}

	return s.Actions
}
