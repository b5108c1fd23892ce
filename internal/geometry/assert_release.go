//go:build !geomdebug

package geometry

// debugChecks is false in release builds: invariant violations are corrected
// and reported through Violation instead of panicking.
const debugChecks = false
