package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/buildcalc/internal/catalog"
	"github.com/cory-johannsen/buildcalc/internal/game/build"
	"github.com/cory-johannsen/buildcalc/internal/game/stat"
)

func writeFile(t *testing.T, root, sub, name, body string) {
	t.Helper()
	dir := filepath.Join(root, sub)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
}

func TestLoadDir(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, catalog.CharactersDir, "hero.yaml", `
id: hero
name: Hero
base_ad: 60
base_as: 0.65
base_hp: 600
growth_ad: 3
`)
	writeFile(t, root, catalog.ItemsDir, "items.yml", `
id: sword
name: Sword
cost: 350
modifiers:
  - {stat: attack_damage, value: 10}
---
id: gloves
name: Gloves
cost: 300
modifiers:
  - {stat: attack_speed, value: 12, modifier_type: percent}
`)
	writeFile(t, root, catalog.TargetsDir, "boss.yaml", "id: boss\nname: Boss\nhp: 9000\narmor: 150\nmr: 90\n")
	writeFile(t, root, catalog.ItemsDir, "README.txt", "ignored")

	reg, err := catalog.LoadDir(root)
	require.NoError(t, err)

	hero, ok := reg.Character("HERO")
	require.True(t, ok, "lookups are case-insensitive")
	assert.Equal(t, 60.0, hero.BaseAD)

	assert.Equal(t, []string{"gloves", "sword"}, reg.ItemIDs())
	sword, ok := reg.Item("sword")
	require.True(t, ok)
	assert.Equal(t, stat.Flat, sword.Modifiers[0].Kind, "missing modifier_type defaults to flat")

	boss, ok := reg.Target("boss")
	require.True(t, ok)
	assert.Equal(t, 9000.0, boss.HP)

	_, ok = reg.Target(build.DummyTargetID)
	assert.True(t, ok, "built-in targets are always present")
	_, ok = reg.Preset("ad_carry")
	assert.True(t, ok, "built-in presets are always present")
}

func TestLoadDir_MissingSubdirsSkipped(t *testing.T) {
	reg, err := catalog.LoadDir(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, reg.CharacterIDs())
	assert.Empty(t, reg.ItemIDs())
	assert.NotEmpty(t, reg.TargetIDs())
}

func TestLoadDir_MissingRoot(t *testing.T) {
	_, err := catalog.LoadDir(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestLoadDir_UnknownFieldRejected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, catalog.ItemsDir, "bad.yaml", "id: x\nname: X\ncost: 10\nweight: 3\n")
	_, err := catalog.LoadDir(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func TestLoadDir_InvalidEntryRejected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, catalog.ItemsDir, "bad.yaml", `
id: x
name: X
cost: 10
modifiers:
  - {stat: armor, value: -5}
`)
	_, err := catalog.LoadDir(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be >= 0")
}

func TestLoadDir_NonFiniteValuesRejected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, catalog.TargetsDir, "nan.yaml", "id: ghost\nname: Ghost\nhp: .nan\narmor: .nan\n")
	_, err := catalog.LoadDir(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hp must be finite")

	root = t.TempDir()
	writeFile(t, root, catalog.CharactersDir, "inf.yaml", "id: titan\nname: Titan\nbase_ad: 60\ngrowth_ad: .inf\n")
	_, err = catalog.LoadDir(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "growth_ad must be finite")
}

func TestLoadDir_DuplicateItemRejected(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, catalog.ItemsDir, "a.yaml", "id: sword\nname: Sword\ncost: 1\n")
	writeFile(t, root, catalog.ItemsDir, "b.yaml", "id: Sword\nname: Other Sword\ncost: 2\n")
	_, err := catalog.LoadDir(root)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestLoadDir_ShippedContent(t *testing.T) {
	reg, err := catalog.LoadDir(filepath.Join("..", "..", "content"))
	require.NoError(t, err)

	assert.Equal(t, []string{"brom", "iria", "vale"}, reg.CharacterIDs())
	bf, ok := reg.Item("bf_sword")
	require.True(t, ok)
	assert.Equal(t, 1300, bf.Cost)

	mythics := 0
	for _, id := range reg.ItemIDs() {
		it, _ := reg.Item(id)
		if it.Mythic {
			mythics++
		}
	}
	assert.GreaterOrEqual(t, mythics, 2)

	_, ok = reg.Target("raid_boss")
	assert.True(t, ok)
	_, ok = reg.Preset("lethality")
	assert.True(t, ok)
}

func TestRegistry_Items(t *testing.T) {
	reg := catalog.NewRegistry()
	require.NoError(t, reg.RegisterItem(&build.EquipmentItem{Name: "Long Sword", Cost: 350}))
	require.NoError(t, reg.RegisterItem(&build.EquipmentItem{ID: "dagger", Name: "Dagger", Cost: 300}))

	items, err := reg.Items([]string{"dagger", "long sword", "dagger"})
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "Dagger", items[0].Name)
	assert.Equal(t, "Long Sword", items[1].Name)

	_, err = reg.Items([]string{"dagger", "excalibur"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "excalibur")
}

func TestRegistry_PresetAndTargetOverride(t *testing.T) {
	reg := catalog.NewStandardRegistry()
	require.NoError(t, reg.RegisterTarget(&build.Target{ID: "tank", Name: "Raid Tank", HP: 9999}))
	tank, ok := reg.Target("tank")
	require.True(t, ok)
	assert.Equal(t, 9999.0, tank.HP)

	require.NoError(t, reg.RegisterPreset(&build.PassivePreset{ID: "tank", Name: "Custom Tank"}))
	p, ok := reg.Preset("tank")
	require.True(t, ok)
	assert.Equal(t, "Custom Tank", p.Name)
}

func TestRegistry_AllTargetsOrdered(t *testing.T) {
	targets := catalog.NewStandardRegistry().AllTargets()
	for i := 1; i < len(targets); i++ {
		assert.Less(t, targets[i-1].ID, targets[i].ID)
	}
}

func TestPropertyKeyNormalises(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[A-Za-z_]{1,12}`).Draw(t, "id")
		pad := rapid.StringMatching(`[ \t]{0,3}`).Draw(t, "pad")
		if catalog.Key(pad+s+pad) != catalog.Key(s) {
			t.Fatalf("Key not whitespace-insensitive for %q", s)
		}
		if catalog.Key(catalog.Key(s)) != catalog.Key(s) {
			t.Fatalf("Key not idempotent for %q", s)
		}
	})
}
