// Package ingest loads saved extraction-response documents from disk.
//
// The loader is deliberately tolerant: optional fields missing from older
// extraction output decode to their zero values, and a malformed job ID is
// a warning, not an error, since it does not affect validation itself.
package ingest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/ledgerline/soi-cli/internal/model"
)

// LoadDocument reads one extraction-response JSON file into a Document.
// The document's SourceFile is set to the file's base name when the
// payload does not carry one.
func LoadDocument(path string) (*model.Document, error) {
	log := zap.L().With(zap.String("component", "ingest.loader"))

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read %s", path)
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, eris.Wrapf(err, "ingest: decode %s", path)
	}

	if doc.SourceFile == "" {
		doc.SourceFile = filepath.Base(path)
	}
	if doc.JobID != "" {
		if _, err := uuid.Parse(doc.JobID); err != nil {
			log.Warn("job ID is not a valid UUID",
				zap.String("job_id", doc.JobID),
				zap.String("file", doc.SourceFile))
		}
	}

	log.Debug("loaded document",
		zap.String("file", doc.SourceFile),
		zap.Int("rows", len(doc.Rows)),
		zap.Int("soi_pages", len(doc.SOIPages)))

	return &doc, nil
}

// ListInputs collects the *.json files directly under dir, sorted by name.
// Subdirectories are not descended into; one extraction batch is one flat
// directory of responses.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, eris.Wrapf(err, "ingest: read directory %s", dir)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(e.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)

	if len(paths) == 0 {
		return nil, eris.Errorf("ingest: no .json inputs in %s", dir)
	}
	return paths, nil
}
