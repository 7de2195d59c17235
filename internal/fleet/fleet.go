// Package fleet holds the static vehicle registry: which physical vehicles
// exist, their attributes, and how residual clusters of a class map onto
// vehicle identities.
package fleet

import (
	"fmt"

	"milelog/internal/config"
	"milelog/internal/records"
	"milelog/internal/textutil"
)

// Vehicle describes one physical vehicle.
type Vehicle struct {
	Name             records.Identity `json:"name"`
	Model            string           `json:"model"`
	Class            records.Class    `json:"class"`
	Year             int              `json:"year,omitempty"`
	Color            string           `json:"color,omitempty"`
	Engine           string           `json:"engine,omitempty"`
	VIN              string           `json:"vin,omitempty"`
	Registration     string           `json:"registration,omitempty"`
	EmissionStandard string           `json:"emission_standard,omitempty"`
	MaxLoadKg        int              `json:"max_load_kg,omitempty"`
	SpeedLimitKmh    int              `json:"speed_limit_kmh,omitempty"`
	DailyLimitKm     int              `json:"daily_limit_km,omitempty"`
	Seats            int              `json:"seats,omitempty"`
}

// Labels names the identities assigned to the two residual clusters of a
// class. Lower receives the cluster with the smaller mean residual.
type Labels struct {
	Lower records.Identity
	Upper records.Identity
}

// Registry is an immutable lookup over the configured fleet.
type Registry struct {
	vehicles []Vehicle
	byName   map[string]int
	groups   map[records.Class]Labels
}

// New builds a registry from configuration entries. Names are matched
// case-insensitively.
func New(vehicles []config.Vehicle, groups []config.ResidualGroup) (*Registry, error) {
	reg := &Registry{
		vehicles: make([]Vehicle, 0, len(vehicles)),
		byName:   make(map[string]int, len(vehicles)),
		groups:   make(map[records.Class]Labels, len(groups)),
	}
	for _, v := range vehicles {
		key := textutil.Fold(v.Name)
		if key == "" {
			return nil, fmt.Errorf("fleet: vehicle without name")
		}
		if _, dup := reg.byName[key]; dup {
			return nil, fmt.Errorf("fleet: duplicate vehicle %q", v.Name)
		}
		reg.byName[key] = len(reg.vehicles)
		reg.vehicles = append(reg.vehicles, Vehicle{
			Name:             records.Identity(v.Name),
			Model:            v.Model,
			Class:            records.ParseClass(v.Class),
			Year:             v.Year,
			Color:            v.Color,
			Engine:           v.Engine,
			VIN:              v.VIN,
			Registration:     v.Registration,
			EmissionStandard: v.EmissionStandard,
			MaxLoadKg:        v.MaxLoadKg,
			SpeedLimitKmh:    v.SpeedLimitKmh,
			DailyLimitKm:     v.DailyLimitKm,
			Seats:            v.Seats,
		})
	}
	for _, g := range groups {
		class := records.ParseClass(g.Class)
		lower, ok := reg.Lookup(g.Lower)
		if !ok {
			return nil, fmt.Errorf("fleet: residual group %s: unknown vehicle %q", class, g.Lower)
		}
		upper, ok := reg.Lookup(g.Upper)
		if !ok {
			return nil, fmt.Errorf("fleet: residual group %s: unknown vehicle %q", class, g.Upper)
		}
		reg.groups[class] = Labels{Lower: lower.Name, Upper: upper.Name}
	}
	return reg, nil
}

// FromConfig builds the registry described by cfg.
func FromConfig(cfg *config.Config) (*Registry, error) {
	return New(cfg.Vehicles, cfg.ResidualGroups)
}

// Default returns the built-in fleet.
func Default() *Registry {
	reg, err := New(config.DefaultVehicles(), config.DefaultResidualGroups())
	if err != nil {
		panic(err)
	}
	return reg
}

// Vehicles returns every registered vehicle in configuration order.
func (r *Registry) Vehicles() []Vehicle {
	return append([]Vehicle(nil), r.vehicles...)
}

// Lookup finds a vehicle by name, ignoring case.
func (r *Registry) Lookup(name string) (Vehicle, bool) {
	idx, ok := r.byName[textutil.Fold(name)]
	if !ok {
		return Vehicle{}, false
	}
	return r.vehicles[idx], true
}

// Canonical returns the registered spelling of an identity, or
// IdentityUnknown when it is not registered.
func (r *Registry) Canonical(name string) records.Identity {
	v, ok := r.Lookup(name)
	if !ok {
		return records.IdentityUnknown
	}
	return v.Name
}

// ByClass returns the vehicles of one class in configuration order.
func (r *Registry) ByClass(class records.Class) []Vehicle {
	var out []Vehicle
	for _, v := range r.vehicles {
		if v.Class == class {
			out = append(out, v)
		}
	}
	return out
}

// SoleVehicle returns the identity when exactly one vehicle is registered
// for class.
func (r *Registry) SoleVehicle(class records.Class) (records.Identity, bool) {
	vs := r.ByClass(class)
	if len(vs) != 1 {
		return "", false
	}
	return vs[0].Name, true
}

// ResidualLabels returns the cluster label mapping for class.
func (r *Registry) ResidualLabels(class records.Class) (Labels, bool) {
	labels, ok := r.groups[class]
	return labels, ok
}
