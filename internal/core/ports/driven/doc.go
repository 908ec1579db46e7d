// Package driven defines the outbound ports of the docweave core:
// contracts the core requires from infrastructure (embedding providers,
// corpus sources, cache and document stores, configuration).
// Adapters under internal/adapters/driven and internal/connectors
// implement them.
package driven
