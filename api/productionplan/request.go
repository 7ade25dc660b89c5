package productionplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/productionplan/core/merit"
	"github.com/kilianp07/productionplan/core/model"
)

// Request is the body of POST /productionplan. Pointer fields distinguish a
// missing value from zero.
type Request struct {
	Load        *float64     `json:"load" validate:"required,gte=0"`
	Fuels       *Fuels       `json:"fuels" validate:"required"`
	Powerplants []Powerplant `json:"powerplants" validate:"required,unique=Name,dive"`
}

// Fuels carries the market prices and the wind availability.
type Fuels struct {
	Gas         *float64 `json:"gas(euro/MWh)"`
	Kerosine    *float64 `json:"kerosine(euro/MWh)"`
	CO2         *float64 `json:"co2(euro/ton)"`
	WindPercent *float64 `json:"wind(%)" validate:"omitempty,gte=0,lte=100"`
}

// Powerplant is one unit of the request. Efficiency is only read for
// thermal types.
type Powerplant struct {
	Name       string   `json:"name" validate:"required"`
	Type       string   `json:"type" validate:"required"`
	Efficiency *float64 `json:"efficiency"`
	PMin       *float64 `json:"pmin" validate:"required,gte=0"`
	PMax       *float64 `json:"pmax" validate:"required,gte=0"`
}

// Validator checks request bodies with struct tags and reports failures as
// merit.ValidationError values.
type Validator struct {
	validate *validator.Validate
}

// NewValidator returns a Validator naming fields after their JSON keys.
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// Validate runs the tag rules on req.
func (v *Validator) Validate(req *Request) error {
	err := v.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, &merit.ValidationError{Field: fieldPath(fe), Reason: reason(fe)})
	}
	return errors.Join(errs...)
}

// Decode reads a request body from r, validates it and converts it into a
// problem.
func (v *Validator) Decode(r io.Reader) (model.Problem, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return model.Problem{}, fmt.Errorf("decode request: %w", err)
	}
	if err := v.Validate(&req); err != nil {
		return model.Problem{}, err
	}
	return req.ToProblem()
}

// fieldPath strips the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be >= " + fe.Param()
	case "gt":
		return "must be > " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "unique":
		return "names must be unique"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// ToProblem converts a validated request into the solver input. Prices are
// only required for the fuels burnt by the listed units, and wind(%) only
// when a wind turbine is listed.
func (r *Request) ToProblem() (model.Problem, error) {
	p := model.Problem{Load: *r.Load, Units: make([]model.GeneratingUnit, 0, len(r.Powerplants))}
	f := r.Fuels
	var errs []error
	price := func(v *float64, required bool, field string) float64 {
		if v != nil {
			return *v
		}
		if required {
			errs = append(errs, &merit.ValidationError{Field: "fuels." + field, Reason: "is required"})
		}
		return 0
	}
	var usesGas, usesKerosine, usesWind bool
	for i, pp := range r.Powerplants {
		field := fmt.Sprintf("powerplants[%d]", i)
		eff := 0.0
		if pp.Efficiency != nil {
			eff = *pp.Efficiency
		}
		kind, err := model.ParseUnitKind(pp.Type, eff)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w: %w", field, merit.ErrUnsupportedUnitType, err))
			continue
		}
		switch k := kind.(type) {
		case model.Thermal:
			switch {
			case pp.Efficiency == nil:
				errs = append(errs, &merit.ValidationError{Field: field + ".efficiency", Reason: "is required"})
			case !(k.Efficiency > 0 && k.Efficiency <= 1):
				errs = append(errs, &merit.ValidationError{Field: field + ".efficiency", Reason: fmt.Sprintf("must be within (0,1], got %v", k.Efficiency)})
			}
			usesGas = usesGas || k.Fuel == model.FuelGas
			usesKerosine = usesKerosine || k.Fuel == model.FuelKerosine
		case model.VariableOutput:
			usesWind = true
		}
		p.Units = append(p.Units, model.GeneratingUnit{
			Name: pp.Name,
			Kind: kind,
			PMin: *pp.PMin,
			PMax: *pp.PMax,
		})
	}
	p.Fuels = model.FuelPrices{
		Gas:         price(f.Gas, usesGas, "gas(euro/MWh)"),
		Kerosine:    price(f.Kerosine, usesKerosine, "kerosine(euro/MWh)"),
		CO2:         price(f.CO2, false, "co2(euro/ton)"),
		WindPercent: price(f.WindPercent, usesWind, "wind(%)"),
	}
	if err := errors.Join(errs...); err != nil {
		return model.Problem{}, err
	}
	return p, nil
}
