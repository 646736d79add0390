package build

import "github.com/cory-johannsen/buildcalc/internal/game/stat"

// DummyTargetID is the catalog id of the zero-resistance training dummy.
const DummyTargetID = "dummy"

// DummyTarget returns the neutral target used for level power curves.
func DummyTarget() *Target {
	return &Target{ID: DummyTargetID, Name: "Dummy", HP: 1000}
}

// StandardTargets returns the built-in target archetypes keyed by id.
func StandardTargets() map[string]*Target {
	return map[string]*Target{
		"fragile":     {ID: "fragile", Name: "Fragile", HP: 1800, Armor: 30, MR: 30},
		"adc":         {ID: "adc", Name: "ADC", HP: 2000, Armor: 70, MR: 30},
		"mage":        {ID: "mage", Name: "Mage", HP: 1900, Armor: 40, MR: 40},
		"bruiser":     {ID: "bruiser", Name: "Bruiser", HP: 2800, Armor: 120, MR: 60},
		"tank":        {ID: "tank", Name: "Tank", HP: 3500, Armor: 200, MR: 120},
		DummyTargetID: DummyTarget(),
	}
}

// StandardPresets returns the built-in passive presets keyed by id.
func StandardPresets() map[string]*PassivePreset {
	return map[string]*PassivePreset{
		"ad_carry": {
			ID:          "ad_carry",
			Name:        "AD Carry",
			Description: "Physical damage focus",
			Modifiers: []stat.Modifier{
				{Attribute: stat.AttackDamage, Value: 9, Kind: stat.Flat},
				{Attribute: stat.AttackSpeed, Value: 10, Kind: stat.Percent},
				{Attribute: stat.Armor, Value: 6, Kind: stat.Flat},
			},
		},
		"ap_carry": {
			ID:          "ap_carry",
			Name:        "AP Carry",
			Description: "Magic damage focus",
			Modifiers: []stat.Modifier{
				{Attribute: stat.AbilityPower, Value: 15, Kind: stat.Flat},
				{Attribute: stat.MagicResist, Value: 8, Kind: stat.Flat},
				{Attribute: stat.Health, Value: 65, Kind: stat.Flat},
			},
		},
		"tank": {
			ID:          "tank",
			Name:        "Tank",
			Description: "Resistance focus",
			Modifiers: []stat.Modifier{
				{Attribute: stat.Health, Value: 120, Kind: stat.Flat},
				{Attribute: stat.Armor, Value: 12, Kind: stat.Flat},
				{Attribute: stat.MagicResist, Value: 8, Kind: stat.Flat},
			},
		},
	}
}
