package migrator

import _ "embed"

//go:embed sql/0001_init.up.sql
var m0001Up string

//go:embed sql/0001_init.down.sql
var m0001Down string

//go:embed sql/0002_scoped_tables.up.sql
var m0002Up string

//go:embed sql/0002_scoped_tables.down.sql
var m0002Down string

//go:embed sql/0003_geo_tables.up.sql
var m0003Up string

//go:embed sql/0003_geo_tables.down.sql
var m0003Down string

// PostgreSQL migration files
//
//go:embed sql/postgres/0001_init.up.sql
var pg0001Up string

//go:embed sql/postgres/0001_init.down.sql
var pg0001Down string

//go:embed sql/postgres/0002_scoped_tables.up.sql
var pg0002Up string

//go:embed sql/postgres/0002_scoped_tables.down.sql
var pg0002Down string

//go:embed sql/postgres/0003_geo_tables.up.sql
var pg0003Up string

//go:embed sql/postgres/0003_geo_tables.down.sql
var pg0003Down string

var defaultMigrations = []Migration{
	{Version: 1, SemVer: "0.1.0", UpSQL: m0001Up, DownSQL: m0001Down},
	{Version: 2, SemVer: "0.2.0", UpSQL: m0002Up, DownSQL: m0002Down},
	{Version: 3, SemVer: "0.3.0", UpSQL: m0003Up, DownSQL: m0003Down},
}

var postgresMigrations = []Migration{
	{Version: 1, SemVer: "0.1.0", UpSQL: pg0001Up, DownSQL: pg0001Down},
	{Version: 2, SemVer: "0.2.0", UpSQL: pg0002Up, DownSQL: pg0002Down},
	{Version: 3, SemVer: "0.3.0", UpSQL: pg0003Up, DownSQL: pg0003Down},
}
