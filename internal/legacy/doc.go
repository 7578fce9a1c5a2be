// Package legacy reads content out of a WordPress database.
//
// # Connector
//
// [Connector] resolves prefixed table names, builds the driver DSN (go-sql-driver/mysql for live sites,
// sqlite3 for local dumps) and opens a fresh handle per operation. [Connector.TestConnection] reports
// ok, warning (missing tables) or error (unreachable) without returning errors.
//
// # Extractor
//
// [Extractor] exposes paginated, read-only queries that return typed records from the models package:
//   - [Extractor.GetUsers] : users with usermeta
//   - [Extractor.GetPosts] : posts of a type with postmeta, categories and tags
//   - [Extractor.GetMedia] : attachments with postmeta
//   - [Extractor.GetTerms] : terms of a taxonomy with description, parent and count
//   - [Extractor.GetComments] : approved comments with commentmeta
//
// All of them fail soft and return an empty slice after logging the cause. Pages are ordered by ascending legacy id.
// Meta tables are read with one query per record.
package legacy
