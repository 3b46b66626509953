// Package gps reads NMEA sentences from a serial GNSS receiver and accumulates
// the receiver state the clock needs:
//   - RMC for UTC date/time and validity
//   - GGA for fix quality and satellites used
//   - GSA for the fix type label
//   - GSV for the best observed signal-to-noise ratio
//
// Malformed or partial sentences never stop the reader; unreadable fields are
// skipped individually.
package gps
