// Command milelog keeps an odometer log for a small fleet and infers which
// vehicle each reading belongs to.
//
// Every engine operation has a subcommand: records (list, add, confirm,
// import), rebuild, predict, trend, extrapolate, fleet, config, doctor,
// store backup and serve. Text output renders tables; --json emits the same
// documents the HTTP API returns.
package main
