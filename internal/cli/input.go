package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/TriAiAdmin/LLM-automation/internal/extraction"
	"github.com/TriAiAdmin/LLM-automation/internal/models"
)

// collectFiles expands directories into the files accepted by keep, sorted,
// and keeps explicit file arguments in the order given
func collectFiles(args []string, keep func(string) bool) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("failed to read input %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && keep(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

func isJSONFile(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// readDocuments loads extracted documents. A file holds one document object
// or an array of them; a document without an id takes the file name.
func readDocuments(paths []string) ([]models.Document, error) {
	var docs []models.Document
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}

		if err := extraction.ValidateDocuments(data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		var batch []models.Document
		if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
			err = decodeJSON(trimmed, &batch)
		} else {
			var doc models.Document
			err = decodeJSON(trimmed, &doc)
			batch = []models.Document{doc}
		}
		if err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", path, err)
		}

		for i := range batch {
			if batch[i].ID == "" {
				batch[i].ID = filepath.Base(path)
				if len(batch) > 1 {
					batch[i].ID = fmt.Sprintf("%s#%d", filepath.Base(path), i+1)
				}
			}
		}
		docs = append(docs, batch...)
	}
	return docs, nil
}

// decodeJSON keeps numbers as json.Number so long PO numbers stay exact
func decodeJSON(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
