package cmd

import (
	"fmt"

	"github.com/flowgrid/flowgrid/pkg/catalog"
)

// NewCatalog loads a service catalog from the given document path, or
// returns the built-in set when no path is configured.
func NewCatalog(path string) catalog.Provider {
	if path == "" {
		return catalog.NewStatic()
	}

	provider, err := catalog.NewFile(path)
	if err != nil {
		panic(fmt.Errorf("failed to load catalog from %s: %w", path, err))
	}

	return provider
}
