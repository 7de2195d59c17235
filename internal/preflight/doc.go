// Package preflight provides readiness checks for the filesystem paths, the
// record store and the optional programs milelog depends on.
//
// The CLI "milelog doctor" command runs RunAll and CheckSystemDeps and
// renders the results; "milelog serve" runs RunAll before listening and
// refuses to start when a check fails.
package preflight
