// Package nodeconfig resolves the field schema a node's service/action
// pair declares in the catalog and validates user-entered configuration
// values against it.
package nodeconfig

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowgrid/flowgrid/pkg/catalog"
	"github.com/flowgrid/flowgrid/pkg/models"
)

// ErrNodeGone indicates the target node was deleted between schema load
// and apply; the pending configuration is discarded.
var ErrNodeGone = errors.New("node no longer exists")

// ConfigStore is the slice of the graph store the resolver writes
// through. Satisfied by *canvas.Graph.
type ConfigStore interface {
	Node(id string) (*models.Node, bool)
	UpdateNodeConfig(id string, partial map[string]any) bool
}

// ValidationError carries per-field messages for display next to the
// offending inputs. It blocks apply but is never fatal to the session.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%d configuration field(s) failed validation", len(e.Fields))
}

// Resolver looks up field schemas through the catalog provider.
type Resolver struct {
	catalog catalog.Provider
	logger  *slog.Logger
}

func NewResolver(provider catalog.Provider, logger *slog.Logger) *Resolver {
	return &Resolver{catalog: provider, logger: logger}
}

// LoadFieldSchema returns the fields declared by the catalog operation
// matching the node's service and action; the trigger list is consulted
// for trigger nodes, the action list otherwise. An absent service,
// operation, or field list yields an empty schema and no error: such a
// node simply has nothing to configure. A catalog failure also yields
// an empty schema, with the error returned for the caller to surface as
// a non-fatal warning.
func (r *Resolver) LoadFieldSchema(ctx context.Context, node *models.Node) ([]models.Field, error) {
	services, err := r.catalog.GetAll(ctx)
	if err != nil {
		return []models.Field{}, fmt.Errorf("load field schema for %s/%s: %w", node.Service, node.Action, err)
	}

	for _, service := range services {
		if service.Name != node.Service {
			continue
		}

		for _, op := range service.Operations(node.Type) {
			if op.Name == node.Action {
				return op.Fields, nil
			}
		}
	}

	return []models.Field{}, nil
}

// Validate checks values against the field schema. Every required field
// whose value is absent, nil, or empty after conversion to text gets a
// "<label> is required" message; fields not marked required are never
// flagged. An empty map means the configuration is valid.
func Validate(fields []models.Field, values map[string]any) map[string]string {
	errs := make(map[string]string)

	for _, field := range fields {
		if !field.Required {
			continue
		}

		value, ok := values[field.Name]
		if !ok || value == nil || strings.TrimSpace(fmt.Sprint(value)) == "" {
			errs[field.Name] = field.Label + " is required"
		}
	}

	return errs
}

// Apply merges values into the node's configuration. It refuses with a
// ValidationError while any required field is missing, and with
// ErrNodeGone when the node was deleted after the schema was loaded
// (the "still relevant" check for late async responses).
func (r *Resolver) Apply(store ConfigStore, nodeID string, fields []models.Field, values map[string]any) error {
	if errs := Validate(fields, values); len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}

	if _, ok := store.Node(nodeID); !ok {
		return fmt.Errorf("apply config to %s: %w", nodeID, ErrNodeGone)
	}

	store.UpdateNodeConfig(nodeID, values)

	return nil
}
