//go:build geomdebug

package geometry

const debugChecks = true
