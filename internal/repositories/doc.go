// Package repositories implements SQLite persistence for the migration ledger and the target entity store.
//
// Key Implementations:
//   - [LedgerRepository] : wordpress_migrate_log entries (insert, latest success lookup, delete, stats)
//   - [UserRepository] : target accounts with mail lookups for reuse
//   - [ContentRepository] : content items with category and tag reference fields
//   - [TaxonomyRepository] : vocabularies and hierarchical terms
//   - [MediaRepository] : stored files (keyed by URI) and media entities
//   - [AliasRepository] : path aliases, replaced per (path, langcode)
//   - [SchemaRepository] : field definitions used to gate optional field writes
//
// [Store] bundles every repository over a single handle and answers existence checks by entity type.
// Entity IDs are integer row ids; every entity also carries a UUID from [shared.GenerateID].
package repositories
