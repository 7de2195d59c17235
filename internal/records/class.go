package records

import (
	"strings"

	"milelog/internal/textutil"
)

// Class is the coarse vehicle category produced by the image classifier.
type Class string

const (
	ClassPersonal Class = "personal"
	ClassCargo    Class = "cargo"
	ClassUnknown  Class = "unknown"
)

var classAliases = map[string]Class{
	"personal":  ClassPersonal,
	"osobowy":   ClassPersonal,
	"car":       ClassPersonal,
	"cargo":     ClassCargo,
	"dostawczy": ClassCargo,
	"truck":     ClassCargo,
}

// ParseClass maps a label to a Class. Labels written by earlier versions of
// the log ("Osobowy", "Dostawczy", "car", "truck") are accepted. Anything
// unrecognized is ClassUnknown.
func ParseClass(value string) Class {
	if class, ok := classAliases[textutil.Fold(value)]; ok {
		return class
	}
	return ClassUnknown
}

// Known reports whether the class is personal or cargo.
func (c Class) Known() bool {
	return c == ClassPersonal || c == ClassCargo
}

// Classes lists the known classes in display order.
func Classes() []Class {
	return []Class{ClassPersonal, ClassCargo}
}

// Identity names one physical vehicle from the fleet registry.
type Identity string

// IdentityUnknown marks a record whose vehicle has not been resolved.
const IdentityUnknown Identity = "unknown"

// ParseIdentity trims value and maps empty or "unknown" (any case) to
// IdentityUnknown.
func ParseIdentity(value string) Identity {
	value = strings.TrimSpace(value)
	if value == "" || textutil.EqualFold(value, string(IdentityUnknown)) {
		return IdentityUnknown
	}
	return Identity(value)
}

// Known reports whether the identity names a vehicle.
func (i Identity) Known() bool {
	return i != "" && i != IdentityUnknown
}
