// Package catalog loads character profiles, equipment, passive presets and
// targets from YAML content directories and serves them read-only.
package catalog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cory-johannsen/buildcalc/internal/game/build"
)

// Registry holds every loaded catalog entry indexed by ID. A Registry is not
// modified after loading and is safe for concurrent reads.
type Registry struct {
	characters map[string]*build.CharacterProfile
	items      map[string]*build.EquipmentItem
	presets    map[string]*build.PassivePreset
	targets    map[string]*build.Target
}

// NewRegistry returns an empty Registry.
//
// Postcondition: all internal maps are initialised.
func NewRegistry() *Registry {
	return &Registry{
		characters: make(map[string]*build.CharacterProfile),
		items:      make(map[string]*build.EquipmentItem),
		presets:    make(map[string]*build.PassivePreset),
		targets:    make(map[string]*build.Target),
	}
}

// NewStandardRegistry returns a Registry seeded with the built-in targets and presets.
func NewStandardRegistry() *Registry {
	r := NewRegistry()
	for _, t := range build.StandardTargets() {
		r.targets[t.ID] = t
	}
	for _, p := range build.StandardPresets() {
		r.presets[p.ID] = p
	}
	return r
}

// Key normalises an ID or display name into a registry key.
func Key(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// RegisterCharacter adds p, keyed by its ID (or its name when ID is empty).
//
// Precondition: p must not be nil.
// Postcondition: returns an error if p is invalid or its key is already registered.
func (r *Registry) RegisterCharacter(p *build.CharacterProfile) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("catalog: Registry.RegisterCharacter: %w", err)
	}
	p.ID = idFor(p.ID, p.Name)
	if _, exists := r.characters[p.ID]; exists {
		return fmt.Errorf("catalog: Registry.RegisterCharacter: character ID %q already registered", p.ID)
	}
	r.characters[p.ID] = p
	return nil
}

// RegisterItem adds it, keyed by its ID (or its name when ID is empty).
//
// Precondition: it must not be nil.
// Postcondition: returns an error if it is invalid or its key is already registered.
func (r *Registry) RegisterItem(it *build.EquipmentItem) error {
	if err := it.Validate(); err != nil {
		return fmt.Errorf("catalog: Registry.RegisterItem: %w", err)
	}
	it.ID = idFor(it.ID, it.Name)
	if _, exists := r.items[it.ID]; exists {
		return fmt.Errorf("catalog: Registry.RegisterItem: item ID %q already registered", it.ID)
	}
	r.items[it.ID] = it
	return nil
}

// RegisterPreset adds p. Presets loaded from content replace a built-in
// preset with the same key.
func (r *Registry) RegisterPreset(p *build.PassivePreset) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("catalog: Registry.RegisterPreset: %w", err)
	}
	p.ID = idFor(p.ID, p.Name)
	r.presets[p.ID] = p
	return nil
}

// RegisterTarget adds t. Targets loaded from content replace a built-in
// target with the same key.
func (r *Registry) RegisterTarget(t *build.Target) error {
	if err := t.Validate(); err != nil {
		return fmt.Errorf("catalog: Registry.RegisterTarget: %w", err)
	}
	t.ID = idFor(t.ID, t.Name)
	r.targets[t.ID] = t
	return nil
}

// Character returns the profile for id and whether it was found.
func (r *Registry) Character(id string) (*build.CharacterProfile, bool) {
	p, ok := r.characters[Key(id)]
	return p, ok
}

// Item returns the item for id and whether it was found.
func (r *Registry) Item(id string) (*build.EquipmentItem, bool) {
	it, ok := r.items[Key(id)]
	return it, ok
}

// Preset returns the passive preset for id and whether it was found.
func (r *Registry) Preset(id string) (*build.PassivePreset, bool) {
	p, ok := r.presets[Key(id)]
	return p, ok
}

// Target returns the target for id and whether it was found.
func (r *Registry) Target(id string) (*build.Target, bool) {
	t, ok := r.targets[Key(id)]
	return t, ok
}

// Items resolves every id in order, failing on the first unknown one.
func (r *Registry) Items(ids []string) ([]*build.EquipmentItem, error) {
	out := make([]*build.EquipmentItem, 0, len(ids))
	for _, id := range ids {
		it, ok := r.Item(id)
		if !ok {
			return nil, fmt.Errorf("catalog: unknown item %q", id)
		}
		out = append(out, it)
	}
	return out, nil
}

// CharacterIDs returns every registered character ID, sorted.
func (r *Registry) CharacterIDs() []string { return sortedKeys(r.characters) }

// ItemIDs returns every registered item ID, sorted.
func (r *Registry) ItemIDs() []string { return sortedKeys(r.items) }

// PresetIDs returns every registered preset ID, sorted.
func (r *Registry) PresetIDs() []string { return sortedKeys(r.presets) }

// TargetIDs returns every registered target ID, sorted.
func (r *Registry) TargetIDs() []string { return sortedKeys(r.targets) }

// AllTargets returns every registered target ordered by ID.
func (r *Registry) AllTargets() []*build.Target {
	out := make([]*build.Target, 0, len(r.targets))
	for _, id := range r.TargetIDs() {
		out = append(out, r.targets[id])
	}
	return out
}

func idFor(id, name string) string {
	if k := Key(id); k != "" {
		return k
	}
	return Key(name)
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
