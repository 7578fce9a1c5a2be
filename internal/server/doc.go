// Package server exposes the migration pipeline over HTTP.
//
// # Router Infrastructure
//
// [BasicRouter] implements [Router] on top of [http.ServeMux] with per-route method filtering. [Middleware] is
// applied in reverse order, so the first middleware added is the outermost. [RequestLogger], [Instrument] and
// [Recover] are installed by [New].
//
// # Endpoints
//
//	POST /migrate              one batch per category, body {"migration_types": [...], "batch_size": 50, "offset": 0}
//	GET  /connection           legacy connection status
//	GET  /preview/{category}   sample of legacy records
//	GET  /ledger/stats         ledger entry counts per type and status
//	GET  /metrics              Prometheus scrape endpoint
//
// POST /migrate answers with {"results": {"users": {"success": 1, "failed": 0, "skipped": 0}}, "totals": {...}}.
// Unknown categories and out-of-range batch sizes are rejected with 400. The handler takes the same file lock as
// the CLI, so a request arriving while another run is in progress gets 409.
//
// Dependencies are injected through [Options] as small interfaces ([Runner], [ConnectionTester], [Previewer],
// [LedgerStats]) so handlers can be tested without a database.
package server
