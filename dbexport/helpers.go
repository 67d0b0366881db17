package dbexport

import (
	"fmt"
	"strings"

	"tabledump/config"
)

// BuildSelectQuery builds the data query for a table: the configured columns in order
// and the filter, which is used verbatim.
func BuildSelectQuery(t config.Table) string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE %s", strings.Join(t.Columns, ","), t.Name, t.Filter())
}

// OutputName is the file name a table export is written to.
func OutputName(table string, f Format, c Compression) string {
	name := strings.NewReplacer("/", "_", `\`, "_").Replace(table)
	return name + "." + string(f) + c.Ext()
}
