// Package catalog provides the service catalog the canvas consumes:
// the services a node can bind to, their triggers and actions, and the
// field schemas those operations declare.
package catalog

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/flowgrid/flowgrid/pkg/models"
)

// ErrServiceNotFound indicates no catalog entry matches the requested
// service id.
var ErrServiceNotFound = errors.New("service not found")

// Provider is the external catalog boundary. Implementations may be
// remote; every call can fail, and callers are expected to degrade to
// "no configuration available" rather than block editing.
type Provider interface {
	GetAll(ctx context.Context) ([]models.Service, error)
	GetByID(ctx context.Context, id string) (*models.Service, error)
	GetCategories(ctx context.Context) ([]string, error)
	GetTriggers(ctx context.Context, serviceID string) ([]models.Operation, error)
	GetActions(ctx context.Context, serviceID string) ([]models.Operation, error)
	Search(ctx context.Context, query string) ([]models.Service, error)
}

// memory is the shared lookup logic for catalogs held fully in memory
// (the built-in set and file-loaded documents).
type memory struct {
	services []models.Service
}

func (m *memory) GetAll(_ context.Context) ([]models.Service, error) {
	services := make([]models.Service, len(m.services))
	copy(services, m.services)

	return services, nil
}

func (m *memory) GetByID(_ context.Context, id string) (*models.Service, error) {
	for _, service := range m.services {
		if service.ID == id {
			return &service, nil
		}
	}

	return nil, ErrServiceNotFound
}

func (m *memory) GetCategories(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	categories := make([]string, 0)

	for _, service := range m.services {
		if _, ok := seen[service.Category]; ok {
			continue
		}

		seen[service.Category] = struct{}{}
		categories = append(categories, service.Category)
	}

	sort.Strings(categories)

	return categories, nil
}

func (m *memory) GetTriggers(ctx context.Context, serviceID string) ([]models.Operation, error) {
	service, err := m.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	return service.Triggers, nil
}

func (m *memory) GetActions(ctx context.Context, serviceID string) ([]models.Operation, error) {
	service, err := m.GetByID(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	return service.Actions, nil
}

func (m *memory) Search(_ context.Context, query string) ([]models.Service, error) {
	query = strings.ToLower(query)
	matches := make([]models.Service, 0)

	for _, service := range m.services {
		if strings.Contains(strings.ToLower(service.Name), query) ||
			strings.Contains(strings.ToLower(service.Category), query) {
			matches = append(matches, service)
		}
	}

	return matches, nil
}
