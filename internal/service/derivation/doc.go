// Package derivation turns raw harvest, milling, storage and sale records into
// the figures shown on the dashboard.
//
// Every function is pure. A value computed by the backend always wins over the
// local formula; the formula only fills fields the payload left out. Figures
// that cannot be derived from the records at hand are reported with a false
// second return value instead of an error.
package derivation
