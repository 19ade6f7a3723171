package refdata

import (
	"sort"
	"strings"

	"github.com/jinzhu/inflection"

	"github.com/refdata-dev/reftab/internal/logger"
	"github.com/refdata-dev/reftab/internal/metrics"
)

// ResolveKeyColumn returns the primary key column for a fetched row. An
// explicit PrimaryKey in the configuration always wins. Otherwise candidates
// are tried in order: configured candidates, "id", "{table}_id",
// "{singular(table)}_id", then the first column ending in "_id", finally
// defaulting to "id". Inference is resolved once per row at fetch time and
// retained on the Item so later updates and deletes target the right column.
func ResolveKeyColumn(cfg TableConfig, row map[string]any) string {
	if cfg.PrimaryKey != "" {
		return cfg.PrimaryKey
	}
	candidates := make([]string, 0, len(cfg.KeyCandidates)+3)
	candidates = append(candidates, cfg.KeyCandidates...)
	candidates = append(candidates, "id", cfg.Table+"_id", inflection.Singular(cfg.Table)+"_id")
	for _, c := range candidates {
		if c == "" {
			continue
		}
		if _, ok := row[c]; ok {
			warnInferred(cfg.Table, c)
			return c
		}
	}
	cols := make([]string, 0, len(row))
	for k := range row {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	for _, c := range cols {
		if strings.HasSuffix(c, "_id") {
			warnInferred(cfg.Table, c)
			return c
		}
	}
	warnInferred(cfg.Table, "id")
	return "id"
}

func warnInferred(table, column string) {
	logger.L.Warn("primary key column inferred; set primary_key in the table config",
		"table", table, "column", column)
	metrics.KeyInference.WithLabelValues(table, column).Inc()
}
