// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package property

import (
	g "github.com/pdiddy/property-engine/internal/grammar"
)

// Definition is one row of the property table. Everything a property
// grammar needs beyond the shared value grammar and templates is here.
type Definition struct {
	// Key identifies the property in records and the registry ("band_gap").
	Key string `json:"key" yaml:"key"`

	// Name is the human-readable property name.
	Name string `json:"name" yaml:"name"`

	// Symbols are case-sensitive single-token symbols ("Eg", "ΔH_fus").
	// They take precedence over spelled-out names.
	Symbols []string `json:"symbols,omitempty" yaml:"symbols,omitempty"`

	// Phrases are spelled-out names in grammar.CompilePhrase syntax.
	Phrases []string `json:"phrases,omitempty" yaml:"phrases,omitempty"`

	// Titles are extra symbols accepted only in table headings.
	Titles []string `json:"titles,omitempty" yaml:"titles,omitempty"`

	// Units matches the property's unit tokens. Nil means unitless.
	Units g.Element `json:"-" yaml:"-"`
}

// Unitless reports whether the property has no unit grammar.
func (d Definition) Unitless() bool {
	return d.Units == nil
}

func oneOf(words ...string) g.Element {
	if len(words) == 1 {
		return g.W(words[0])
	}
	elems := make([]g.Element, len(words))
	for i, w := range words {
		elems[i] = g.W(w)
	}
	return g.Or(elems...)
}

var per = g.Or(g.W("/"), g.I("per"))

var (
	electronVolts = oneOf("eV")
	percent       = oneOf("%")
	voltage       = oneOf("mV", "V")
	pressure      = oneOf("Pa", "kPa", "MPa", "GPa")

	currentDensity = g.Or(
		g.R(`^m?A/cm(2|\^2|²)$`),
		g.Seq(oneOf("mA", "A"), per, oneOf("cm2", "cm^2", "cm²")),
		g.Seq(oneOf("mA", "A"), oneOf("cm-2", "cm−2", "cm⁻²")),
	)

	molarMass = g.Or(
		oneOf("kDa", "Da", "kg/mol", "g/mol", "gmol-1", "kgmol-1", "g•mol-1", "kg•mol-1"),
		g.Seq(oneOf("kg", "g"), per, g.W("mol")),
		g.Seq(oneOf("kg", "g"), oneOf("mol-1", "mol−1", "mol⁻¹")),
	)

	specificEnergy = g.Or(
		g.R(`^[km]?(J|cal|Cal)/[km]?(g|mol)$`),
		g.Seq(oneOf("kJ", "J", "mJ", "Cal", "kcal", "cal", "mcal"), per, oneOf("kg", "g", "mg", "mol", "mmol")),
	)

	temperature = g.Or(
		g.R(`^[°º][CFK]$`),
		g.Seq(g.Opt(g.R(`^[°º]$`)), g.R(`^[CFK]$`)),
	)
)

// Catalog returns the built-in property table. Definitions sharing a
// symbol (ΔH) resolve by registry order during table extraction.
func Catalog() []Definition {
	return []Definition{
		{
			Key:     "band_gap",
			Name:    "band gap",
			Symbols: []string{"Eg", "EG", "E_g", "Egap", "EBG", "E_BG", "Ebandgap", "EBandGap"},
			Phrases: []string{"[optical] band gap [energy] [level]", "[optical] bandgap [energy] [level]"},
			Titles:  []string{"ΔE", "Egopt", "Egcv", "Eopt"},
			Units:   electronVolts,
		},
		{
			Key:     "fermi_energy",
			Name:    "Fermi energy",
			Symbols: []string{"EF", "Ef", "E_f", "E_F", "EFermi", "Efermi"},
			Phrases: []string{"fermi [energy] [level]"},
			Units:   electronVolts,
		},
		{
			Key:     "homo_level",
			Name:    "HOMO level",
			Symbols: []string{"EHOMO", "E_HOMO", "Ehomo"},
			Phrases: []string{"HOMO [energy] [level]"},
			Units:   electronVolts,
		},
		{
			Key:     "lumo_level",
			Name:    "LUMO level",
			Symbols: []string{"ELUMO", "E_LUMO", "Elumo"},
			Phrases: []string{"LUMO [energy] [level]"},
			Units:   electronVolts,
		},
		{
			Key:     "pce",
			Name:    "power conversion efficiency",
			Symbols: []string{"PCE", "η_PCE"},
			Phrases: []string{"power conversion efficiency"},
			Units:   percent,
		},
		{
			Key:     "fill_factor",
			Name:    "fill factor",
			Symbols: []string{"FF"},
			Phrases: []string{"fill factor"},
		},
		{
			Key:     "voc",
			Name:    "open-circuit voltage",
			Symbols: []string{"Voc", "VOC", "V_oc", "V_OC"},
			Phrases: []string{"open [-] circuit voltage", "open-circuit voltage"},
			Units:   voltage,
		},
		{
			Key:     "jsc",
			Name:    "short-circuit current density",
			Symbols: []string{"Jsc", "JSC", "J_sc", "J_SC"},
			Phrases: []string{"short [-] circuit current [density]", "short-circuit current [density]"},
			Units:   currentDensity,
		},
		{
			Key:     "mn",
			Name:    "number-average molecular weight",
			Symbols: []string{"Mn", "M_n", "MN"},
			Phrases: []string{"number [-] average molecular weight|mass", "number-average molecular weight|mass"},
			Units:   molarMass,
		},
		{
			Key:     "mw",
			Name:    "weight-average molecular weight",
			Symbols: []string{"Mw", "M_w", "MW"},
			Phrases: []string{"weight [-] average molecular weight|mass", "weight-average molecular weight|mass"},
			Units:   molarMass,
		},
		{
			Key:     "dispersity",
			Name:    "dispersity",
			Symbols: []string{"PDI", "Đ", "Đm", "Đ_M", "Mw/Mn"},
			Phrases: []string{"dispersity", "polydispersity [index]"},
		},
		{
			Key:     "crystallinity",
			Name:    "crystallinity",
			Symbols: []string{"Xc", "X_c", "Χ", "Χc", "Χ_c", "χ", "χc", "χ_c", "RDOC", "DOC"},
			Phrases: []string{"[relative] [degree [of]] crystallinity"},
			Units:   percent,
		},
		{
			Key:  "enthalpy_of_fusion",
			Name: "enthalpy of fusion",
			Symbols: []string{
				"ΔHf", "ΔHm", "ΔHc", "ΔH_f", "ΔH_m", "ΔH_c", "ΔHfus", "ΔH_fus",
				"ΔHcrys", "ΔH_crys", "ΔHmelt", "ΔH_melt",
			},
			Phrases: []string{"enthalpy|heat of fusion|melting|crystallization|crystalization"},
			Units:   specificEnergy,
		},
		{
			Key:     "enthalpy_of_sublimation",
			Name:    "enthalpy of sublimation",
			Symbols: []string{"ΔHs", "ΔH_s", "ΔHsub", "ΔH_sub", "ΔH"},
			Phrases: []string{"enthalpy|heat of sublimation"},
			Units:   specificEnergy,
		},
		{
			Key:     "enthalpy_of_vaporization",
			Name:    "enthalpy of vaporization",
			Symbols: []string{"ΔHv", "ΔHe", "ΔH_v", "ΔH_e", "ΔHvap", "ΔH_vap", "ΔHevap", "ΔH_evap"},
			Phrases: []string{"enthalpy|heat of vaporization|vaporisation|evaporation"},
			Units:   specificEnergy,
		},
		{
			Key:     "modulus",
			Name:    "modulus",
			Symbols: []string{"E"},
			Phrases: []string{"[young's|elastic|tensile] modulus", "young 's modulus"},
			Units:   pressure,
		},
		{
			Key:     "corrosion_inhibition",
			Name:    "corrosion inhibition efficiency",
			Symbols: []string{"η", "CI", "CIE", "IE"},
			Phrases: []string{"[corrosion] inhibition|inhibitor [efficiency]"},
			Units:   percent,
		},
		{
			Key:     "boiling_point",
			Name:    "boiling point",
			Symbols: []string{"Tb", "T_b", "b.p.", "bp", "b.p"},
			Phrases: []string{"boiling [point] [temperature] [range]"},
			Units:   temperature,
		},
	}
}
