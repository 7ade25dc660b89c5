package model

import "fmt"

// Fuel identifies the combustible burnt by a thermal unit.
type Fuel int

const (
	FuelGas Fuel = iota
	FuelKerosine
)

// String returns the fuel name used in logs and metrics labels.
func (f Fuel) String() string {
	switch f {
	case FuelGas:
		return "gas"
	case FuelKerosine:
		return "kerosine"
	default:
		return "unknown"
	}
}

// FuelPrices is the market snapshot used for one solve.
type FuelPrices struct {
	Gas         float64 // euro per MWh of thermal energy
	Kerosine    float64 // euro per MWh of thermal energy
	CO2         float64 // euro per ton, carried but not priced in
	WindPercent float64 // availability of wind units, 0..100
}

// Price returns the price of the given fuel.
func (p FuelPrices) Price(f Fuel) (float64, error) {
	switch f {
	case FuelGas:
		return p.Gas, nil
	case FuelKerosine:
		return p.Kerosine, nil
	default:
		return 0, fmt.Errorf("no price for fuel %d", int(f))
	}
}
