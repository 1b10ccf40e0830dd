// Package template provides pre-built workflow blueprints and their
// instantiation into fresh graphs.
package template

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/flowgrid/flowgrid/pkg/models"
	"github.com/google/uuid"
)

// ErrTemplateNotFound indicates no template matches the requested id.
var ErrTemplateNotFound = errors.New("template not found")

// Provider serves workflow templates. Template listings are sorted by
// popularity, most popular first.
type Provider struct {
	templates []*models.Template
}

func NewProvider(templates []*models.Template) *Provider {
	return &Provider{templates: templates}
}

func (p *Provider) All(_ context.Context) []*models.Template {
	templates := make([]*models.Template, len(p.templates))
	copy(templates, p.templates)

	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].Popularity > templates[j].Popularity
	})

	return templates
}

func (p *Provider) ByID(_ context.Context, id string) (*models.Template, error) {
	for _, template := range p.templates {
		if template.ID == id {
			return template, nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
}

func (p *Provider) Categories(_ context.Context) []string {
	seen := make(map[string]struct{})
	categories := make([]string, 0)

	for _, template := range p.templates {
		if _, ok := seen[template.Category]; ok {
			continue
		}

		seen[template.Category] = struct{}{}
		categories = append(categories, template.Category)
	}

	sort.Strings(categories)

	return categories
}

func (p *Provider) Search(ctx context.Context, query string) []*models.Template {
	query = strings.ToLower(query)
	matches := make([]*models.Template, 0)

	for _, template := range p.All(ctx) {
		if strings.Contains(strings.ToLower(template.Name), query) ||
			strings.Contains(strings.ToLower(template.Description), query) ||
			strings.Contains(strings.ToLower(template.Category), query) {
			matches = append(matches, template)
		}
	}

	return matches
}

// CreateFromTemplate instantiates a template into a new, unsaved
// workflow. Node and connection ids are regenerated and connection
// endpoints remapped, so instantiating the same template twice never
// produces colliding ids.
func (p *Provider) CreateFromTemplate(ctx context.Context, id string) (*models.Workflow, error) {
	template, err := p.ByID(ctx, id)
	if err != nil {
		return nil, err
	}

	idMapping := make(map[string]string, len(template.Workflow.Nodes))
	nodes := make([]*models.Node, 0, len(template.Workflow.Nodes))

	for _, node := range template.Workflow.Nodes {
		clone := node.Clone()
		clone.ID = uuid.New().String()
		idMapping[node.ID] = clone.ID
		nodes = append(nodes, clone)
	}

	connections := make([]*models.Connection, 0, len(template.Workflow.Connections))

	for _, conn := range template.Workflow.Connections {
		sourceID, ok := idMapping[conn.SourceNodeID]
		if !ok {
			return nil, fmt.Errorf("template %s: connection %s references unknown node %s", id, conn.ID, conn.SourceNodeID)
		}

		targetID, ok := idMapping[conn.TargetNodeID]
		if !ok {
			return nil, fmt.Errorf("template %s: connection %s references unknown node %s", id, conn.ID, conn.TargetNodeID)
		}

		connections = append(connections, &models.Connection{
			ID:           uuid.New().String(),
			SourceNodeID: sourceID,
			TargetNodeID: targetID,
		})
	}

	return &models.Workflow{
		Name:        template.Workflow.Name,
		Description: template.Workflow.Description,
		Nodes:       nodes,
		Connections: connections,
	}, nil
}
