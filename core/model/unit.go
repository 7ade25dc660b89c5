package model

import "fmt"

// Wire tags of the supported unit types.
const (
	TypeGasFired    = "gasfired"
	TypeTurbojet    = "turbojet"
	TypeWindTurbine = "windturbine"
)

// UnitKind is the closed set of generating technologies. Only types of this
// package implement it.
type UnitKind interface {
	// Tag returns the wire tag of the kind.
	Tag() string
	isUnitKind()
}

// Thermal burns a fuel with the given conversion efficiency in (0,1].
type Thermal struct {
	Fuel       Fuel
	Efficiency float64
}

func (t Thermal) Tag() string {
	if t.Fuel == FuelKerosine {
		return TypeTurbojet
	}
	return TypeGasFired
}

func (Thermal) isUnitKind() {}

// VariableOutput produces whatever the weather allows. Its output is
// exogenous: after normalization PMin equals PMax.
type VariableOutput struct{}

func (VariableOutput) Tag() string { return TypeWindTurbine }

func (VariableOutput) isUnitKind() {}

// ErrUnknownUnitType is returned by ParseUnitKind for unrecognised tags.
type ErrUnknownUnitType struct {
	Tag string
}

func (e ErrUnknownUnitType) Error() string {
	return fmt.Sprintf("unknown powerplant type %q", e.Tag)
}

// ParseUnitKind maps a wire tag to its kind. The efficiency is ignored for
// variable-output units.
func ParseUnitKind(tag string, efficiency float64) (UnitKind, error) {
	switch tag {
	case TypeGasFired:
		return Thermal{Fuel: FuelGas, Efficiency: efficiency}, nil
	case TypeTurbojet:
		return Thermal{Fuel: FuelKerosine, Efficiency: efficiency}, nil
	case TypeWindTurbine:
		return VariableOutput{}, nil
	default:
		return nil, ErrUnknownUnitType{Tag: tag}
	}
}

// GeneratingUnit is a raw unit as submitted by the caller.
type GeneratingUnit struct {
	Name string
	Kind UnitKind
	PMin float64 // MW
	PMax float64 // MW
}

// NormalizedUnit is a unit priced against the current fuel prices. For
// variable-output units PMin and PMax hold the available output.
type NormalizedUnit struct {
	GeneratingUnit
	Cost float64 // euro per MWh produced
}

// IsVariable reports whether the unit output is exogenous.
func (u NormalizedUnit) IsVariable() bool {
	_, ok := u.Kind.(VariableOutput)
	return ok
}
