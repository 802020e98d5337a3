// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package knowledge

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/property-engine/pkg/types"
)

// ExportDocument groups the exported records of one document.
type ExportDocument struct {
	ID      string                 `json:"id" yaml:"id"`
	Title   string                 `json:"title,omitempty" yaml:"title,omitempty"`
	Records []types.PropertyRecord `json:"records" yaml:"records"`
}

const exportLimit = 1000000

// ExportYAML writes the store to knowledge/index/export.yaml. It supports
// the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	docs, err := s.exportDocuments(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.knowledgeDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(docs)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the store to knowledge/index/export.json. It supports
// the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	docs, err := s.exportDocuments(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.knowledgeDir, indexDir, "export.json")
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// exportDocuments relies on Retrieve returning records grouped by document.
func (s *Store) exportDocuments(ctx context.Context, opts QueryOptions) ([]ExportDocument, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	docs := []ExportDocument{}
	for _, r := range results {
		if n := len(docs); n == 0 || docs[n-1].ID != r.DocumentID {
			docs = append(docs, ExportDocument{ID: r.DocumentID, Title: r.DocumentTitle})
		}
		docs[len(docs)-1].Records = append(docs[len(docs)-1].Records, r.PropertyRecord)
	}
	return docs, nil
}
