package refdata

import (
	"fmt"
	"strconv"
)

// Item is the normalized projection of a remote reference row. ID and
// KeyColumn are resolved at fetch time; Raw retains the original row so
// derived display columns can be rendered without another fetch.
type Item struct {
	ID         string         `json:"id"`
	KeyColumn  string         `json:"key_column"`
	Value      string         `json:"value"`
	BusinessID string         `json:"business_id,omitempty"`
	IsActive   bool           `json:"is_active"`
	Raw        map[string]any `json:"raw,omitempty"`
}

// Normalize maps a raw row onto an Item using the table configuration.
func Normalize(cfg TableConfig, row map[string]any) Item {
	key := ResolveKeyColumn(cfg, row)
	it := Item{
		ID:        stringify(row[key]),
		KeyColumn: key,
		Value:     stringify(row[cfg.ValueColumn]),
		IsActive:  true,
		Raw:       row,
	}
	if v, ok := row[BusinessColumn]; ok && v != nil {
		it.BusinessID = stringify(v)
	}
	if cfg.ToggleColumn != "" {
		it.IsActive = truthy(row[cfg.ToggleColumn])
	}
	return it
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func truthy(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case int64:
		return x != 0
	case int:
		return x != 0
	case float64:
		return x != 0
	case []byte:
		return len(x) > 0 && x[0] != 0 && x[0] != '0'
	case string:
		return x == "1" || x == "t" || x == "true"
	default:
		return false
	}
}
