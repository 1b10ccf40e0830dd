// Package web provides HTTP request and response types for the workflow API.
package web

import "github.com/flowgrid/flowgrid/pkg/models"

// CreateWorkflowRequest represents the request body for creating a new workflow.
// The graph may be supplied up front or left empty and edited afterwards.
type CreateWorkflowRequest struct {
	Name        string               `json:"name"        validate:"required,min=3"`
	Description string               `json:"description"`
	Nodes       []*models.Node       `json:"nodes"`
	Connections []*models.Connection `json:"connections"`
}

// UpdateWorkflowRequest represents the request body for saving a workflow.
// Name and Description are optional partial updates; Nodes and Connections,
// when present, replace the stored graph wholesale with the editor snapshot.
type UpdateWorkflowRequest struct {
	Name        *string              `json:"name,omitempty"        validate:"omitempty,min=3"`
	Description *string              `json:"description,omitempty"`
	Nodes       []*models.Node       `json:"nodes,omitempty"`
	Connections []*models.Connection `json:"connections,omitempty"`
}
