// Package models defines the types that flow through the WordPress migration pipeline.
//
// The package contains three groups of types:
//
// 1. Legacy records: typed, read-only rows extracted from a WordPress schema
//   - [LegacyUser] : users row with usermeta
//   - [LegacyPost] : posts row with postmeta, category and tag [TermRef] sets
//   - [LegacyAttachment] : attachment post with postmeta
//   - [LegacyTerm] : term joined with its taxonomy row
//   - [LegacyComment] : approved comment with commentmeta
//
// 2. Run control: the [Category] tagged variant, ledger [MigrationType] and [Status], and [RunResult] counters.
// [Category] is the single switch point for per-category behaviour; its methods map a category to its ledger type,
// legacy taxonomy and legacy post type.
//
// 3. Target entities written to the local store: [User], [Vocabulary], [Term], [ContentItem], [File], [MediaAsset] and [PathAlias],
// plus the [LedgerEntry] rows that tie legacy ids to them.
package models
