// Package astro provides the solar calculations behind the safety
// monitor: the sun's elevation for an observer, and the observation
// window search that determines when conditions are (or will next be)
// dark enough to open the roof.
//
// Elevation implements the NOAA solar position algorithm, including the
// standard atmospheric refraction correction. The window Calculator
// performs a bounded time-stepped search over any ElevationFunc, so the
// astronomy and the search logic stay independently testable.
//
// All calculations are pure functions of location and time; nothing in
// this package holds state or performs I/O.
package astro
