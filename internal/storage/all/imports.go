// Package all registers every built-in storage backend. Import it for side
// effects:
//
//	import _ "transform/internal/storage/all"
//
// Kinds made available: "postgres", "mssql", "sqlite", "mysql".
package all

import (
	_ "transform/internal/storage/mssql"
	_ "transform/internal/storage/mysql"
	_ "transform/internal/storage/postgres"
	_ "transform/internal/storage/sqlite"
)
