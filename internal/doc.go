// Package internal contains the implementation packages of monetizer.
//
// # Package Organization
//
//   - page: page config model, defaults and tolerant wire decoding
//   - theme: color theme and font resolution
//   - feature: one HTML emitter per monetization block
//   - analytics: owner plans and the analytics beacon script
//   - document: assembly of the standalone 404 document, plus a render cache
//   - lint: structural checks on compiled documents
//   - store: SQLite persistence for pages and owner plans
//   - export: host bundles and the scheduled re-export job
//   - watcher: debounced page file watching and import
//   - server: page API, live view, preview and websocket live reload
//   - config, logging, errors, version: ambient support
//
// # Data Flow
//
// A page config is decoded by page, defaulted, and handed to document,
// which asks feature for each enabled block's fragment and places the
// fragments in a fixed order. The server, the exporter and the CLI all
// compile through document; they differ only in the render options they
// pass (owner plan, missing rating fallback, live reload).
//
// # Testing
//
// Unit tests live next to each package. Property tests use gopter and are
// behind the "property" build tag; end-to-end tests in integration_tests
// are behind the "integration" tag.
package internal
