package catalog

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

// Content subdirectory names under a catalog root.
const (
	CharactersDir = "characters"
	ItemsDir      = "items"
	PresetsDir    = "presets"
	TargetsDir    = "targets"
)

// LoadDir reads the characters, items, presets and targets subdirectories of
// root into a Registry seeded with the built-in targets and presets. Missing
// subdirectories are skipped. Every *.yaml or *.yml file may hold several
// YAML documents; unknown fields are rejected.
//
// Precondition: root must be a readable directory.
// Postcondition: returns a populated Registry or the first error encountered.
func LoadDir(root string) (*Registry, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("catalog: reading root %q: %w", root, err)
	}
	reg := NewStandardRegistry()

	if err := loadKind(filepath.Join(root, CharactersDir), func(p *build.CharacterProfile) error {
		return reg.RegisterCharacter(p)
	}); err != nil {
		return nil, err
	}
	if err := loadKind(filepath.Join(root, ItemsDir), func(it *build.EquipmentItem) error {
		defaultKinds(it.Modifiers)
		return reg.RegisterItem(it)
	}); err != nil {
		return nil, err
	}
	if err := loadKind(filepath.Join(root, PresetsDir), func(p *build.PassivePreset) error {
		defaultKinds(p.Modifiers)
		return reg.RegisterPreset(p)
	}); err != nil {
		return nil, err
	}
	if err := loadKind(filepath.Join(root, TargetsDir), func(t *build.Target) error {
		return reg.RegisterTarget(t)
	}); err != nil {
		return nil, err
	}
	return reg, nil
}

// defaultKinds treats a modifier without an explicit modifier_type as flat.
func defaultKinds(mods []stat.Modifier) {
	for i := range mods {
		if mods[i].Kind == "" {
			mods[i].Kind = stat.Flat
		}
	}
}

// loadKind decodes every YAML document in dir as a T and passes it to register.
func loadKind[T any](dir string, register func(*T) error) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("catalog: reading dir %q: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("catalog: reading %q: %w", path, err)
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		for doc := 0; ; doc++ {
			var v T
			err := dec.Decode(&v)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return fmt.Errorf("catalog: parsing %q: %w", path, err)
			}
			if err := register(&v); err != nil {
				return fmt.Errorf("catalog: %s document %d: %w", strings.TrimPrefix(path, dir+string(filepath.Separator)), doc, err)
			}
		}
	}
	return nil
}
