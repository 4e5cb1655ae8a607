// Package meddict extracts structured medicine records from the Naver
// medicine encyclopedia. It fetches entry pages, applies per-field
// extraction rules against a fixed field schema, scores extraction quality
// against stored reference records, and exposes the collected data through
// a CLI, exports, and a small JSON API.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, echo/).
package meddict
