package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/productionplan/core/model"
)

type FuelsDef struct {
	Gas         float64 `yaml:"gas"`
	Kerosine    float64 `yaml:"kerosine"`
	CO2         float64 `yaml:"co2"`
	WindPercent float64 `yaml:"wind"`
}

type UnitDef struct {
	Name       string  `yaml:"name"`
	Type       string  `yaml:"type"`
	Efficiency float64 `yaml:"efficiency"`
	PMin       float64 `yaml:"pmin"`
	PMax       float64 `yaml:"pmax"`
}

func (u UnitDef) ToModel() (model.GeneratingUnit, error) {
	kind, err := model.ParseUnitKind(u.Type, u.Efficiency)
	if err != nil {
		return model.GeneratingUnit{}, fmt.Errorf("unit %s: %w", u.Name, err)
	}
	return model.GeneratingUnit{Name: u.Name, Kind: kind, PMin: u.PMin, PMax: u.PMax}, nil
}

type Expected struct {
	Status    string  `yaml:"status"`
	Shortfall float64 `yaml:"shortfall"`
	// Order lists the unit names in merit order.
	Order []string `yaml:"order"`
	// Power maps unit names to their assignment.
	Power map[string]float64 `yaml:"power"`
	Cost  *float64           `yaml:"cost,omitempty"`
	// LowerBound is checked when set.
	LowerBound *float64 `yaml:"lower_bound,omitempty"`
}

type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Load        float64   `yaml:"load"`
	Fuels       FuelsDef  `yaml:"fuels"`
	Units       []UnitDef `yaml:"powerplants"`
	Expected    Expected  `yaml:"expected"`
}

// Problem converts the scenario into solver input.
func (sc *Scenario) Problem() (model.Problem, error) {
	p := model.Problem{
		Load: sc.Load,
		Fuels: model.FuelPrices{
			Gas:         sc.Fuels.Gas,
			Kerosine:    sc.Fuels.Kerosine,
			CO2:         sc.Fuels.CO2,
			WindPercent: sc.Fuels.WindPercent,
		},
		Units: make([]model.GeneratingUnit, 0, len(sc.Units)),
	}
	for _, u := range sc.Units {
		gu, err := u.ToModel()
		if err != nil {
			return model.Problem{}, err
		}
		p.Units = append(p.Units, gu)
	}
	return p, nil
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	if sc.Name == "" {
		return nil, fmt.Errorf("%s: scenario name required", path)
	}
	return &sc, nil
}
