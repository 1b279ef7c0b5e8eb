// Package jsonfile persists the template store as a JSON file.
//
// Two layouts are read: a bare array of entries and an object that also
// records the embedding model and dimension the store was built with. Write
// always produces the tagged object.
package jsonfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/coldmail/core"
)

// Load reads, validates and decodes the store at path. Every failure wraps
// core.ErrStoreFormat.
func Load(path string) (*core.TemplateStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrStoreFormat, err)
	}
	return Decode(path, data)
}

// Decode validates and decodes store bytes. name is used in error messages.
func Decode(name string, data []byte) (*core.TemplateStore, error) {
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid JSON", core.ErrStoreFormat, name)
	}
	if err := validateSchema(name, data); err != nil {
		return nil, err
	}

	store := &core.TemplateStore{}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &store.Entries); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", core.ErrStoreFormat, name, err)
		}
	} else if err := json.Unmarshal(trimmed, store); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrStoreFormat, name, err)
	}

	if err := core.ValidateTemplateStore(store); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if store.Dimension == 0 && store.Len() > 0 {
		store.Dimension = len(store.Entries[0].Embedding)
	}

	return store, nil
}

// Write stores the tagged form of store at path. The file is replaced
// atomically so concurrent readers see either the old or the new store.
func Write(path string, store *core.TemplateStore) error {
	if err := core.ValidateTemplateStore(store); err != nil {
		return err
	}

	out := *store
	if out.Dimension == 0 && out.Len() > 0 {
		out.Dimension = len(out.Entries[0].Embedding)
	}
	if out.Entries == nil {
		out.Entries = []core.TemplateEntry{}
	}

	data, err := json.MarshalIndent(&out, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, path)
}
