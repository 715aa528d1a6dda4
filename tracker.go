// Package tracker holds the domain model shared by the cs2tracker engine:
// market sources, the holdings configuration, and currency conversion.
//
// The moving parts live in subpackages: fetch (retrying HTTP client),
// scrape (source parsers and the orchestrator), pricelog (daily totals
// store) and notify (webhook sink). The cst binary wires them together.
package tracker
