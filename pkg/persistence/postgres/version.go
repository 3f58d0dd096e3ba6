package postgres // import "github.com/joincivil/civil-content-gate/pkg/persistence/postgres"

import (
	"fmt"
)

const (
	// VersionTableName is the name of the schema version table
	VersionTableName = "content_gate_version"

	// SchemaVersion is the version of the tables in this package
	SchemaVersion = 1
)

// VersionSchema returns the query to create the schema version table
func VersionSchema() string {
	return VersionSchemaString(VersionTableName)
}

// VersionSchemaString returns the query to create this table
// NOTE: This table only is allowed to ever have 1 row
func VersionSchemaString(tableName string) string {
	queryString := fmt.Sprintf(`
        CREATE TABLE IF NOT EXISTS %s(version INT NOT NULL);
        CREATE UNIQUE INDEX IF NOT EXISTS %s ON %s((version IS NOT NULL));
    `, tableName, tableName+"_one_row", tableName)
	return queryString
}
