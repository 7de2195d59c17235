package engine

import (
	"context"
	"fmt"

	"milelog/internal/faults"
	"milelog/internal/logging"
	"milelog/internal/records"
)

// ConfirmIdentity sets the identity of the stored record with key. The
// identity must be registered and of the record's class; "unknown" clears
// it.
func (e *Engine) ConfirmIdentity(ctx context.Context, key records.Key, identity string) (records.Record, error) {
	id := records.ParseIdentity(identity)
	var vehicleClass records.Class
	if id.Known() {
		v, ok := e.fleet.Lookup(string(id))
		if !ok {
			return records.Record{}, faults.Wrap(faults.ErrValidation, "engine", "confirm identity", fmt.Sprintf("unknown vehicle %q", identity), nil)
		}
		id, vehicleClass = v.Name, v.Class
	}

	var confirmed records.Record
	err := e.store.Update(ctx, func(items []records.Record) ([]records.Record, error) {
		for i := range items {
			if items[i].Key() != key {
				continue
			}
			if vehicleClass.Known() && items[i].Class.Known() && items[i].Class != vehicleClass {
				return nil, faults.Wrap(faults.ErrValidation, "engine", "confirm identity",
					fmt.Sprintf("%s is a %s vehicle, record is %s", id, vehicleClass, items[i].Class), nil)
			}
			items[i].Identity = id
			confirmed = items[i]
			return items, nil
		}
		return nil, faults.Wrap(faults.ErrDataMissing, "engine", "confirm identity",
			fmt.Sprintf("no record for %s %d %s", key.Date, key.Mileage, key.Class), nil)
	})
	if err != nil {
		return records.Record{}, err
	}
	e.logger.Info("identity confirmed",
		logging.Identity(string(id)),
		logging.Mileage(confirmed.Mileage),
		logging.Class(string(confirmed.Class)))
	return confirmed, nil
}
