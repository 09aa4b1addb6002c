// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) runs the init functions of each backend, which register their
// factories and dialect type rewrites with the storage package.
//
// Importing this package makes the following storage kinds available:
//
//   - "mysql"    (examimport/internal/storage/mysql)
//   - "postgres" (examimport/internal/storage/postgres)
//   - "sqlite"   (examimport/internal/storage/sqlite)
//
// Typical usage:
//
//	import _ "examimport/internal/storage/all"
//
//	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: "exam.db"})
package all

import (
	_ "examimport/internal/storage/mysql"
	_ "examimport/internal/storage/postgres"
	_ "examimport/internal/storage/sqlite"
)
