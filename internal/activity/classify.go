package activity

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Signal weights, most severe first.
const (
	WeightStrong   = "strong"
	WeightModerate = "moderate"
	WeightInfo     = "info"
)

// weightOrder maps weights to severity (lower is more severe).
var weightOrder = map[string]int{
	WeightStrong:   1,
	WeightModerate: 2,
	WeightInfo:     3,
}

// WeightSeverity returns the numeric severity of weight; unknown weights
// rank as info.
func WeightSeverity(weight string) int {
	if s, ok := weightOrder[weight]; ok {
		return s
	}
	return weightOrder[WeightInfo]
}

// IsAtLeastWeight reports whether actual is as severe as minimum or more.
func IsAtLeastWeight(actual, minimum string) bool {
	return WeightSeverity(actual) <= WeightSeverity(minimum)
}

// Rule classifies events of one type. Rules with a condition are tried
// before the unconditional rule of the same type.
type Rule struct {
	EventType   string
	Condition   string
	Category    string
	Weight      string
	Description string
}

// Rules is the classification registry for engine events.
var Rules = []Rule{
	{EventType: "cell_painted", Condition: "color == ", Category: "inventory", Weight: WeightModerate, Description: "lens removed from the grid"},
	{EventType: "cell_painted", Category: "inventory", Weight: WeightInfo, Description: "lens status changed"},
	{EventType: "stock_set", Condition: "stock == 0", Category: "inventory", Weight: WeightStrong, Description: "lens out of stock"},
	{EventType: "stock_set", Category: "inventory", Weight: WeightInfo, Description: "stock adjusted"},
	{EventType: "inventory_imported", Condition: "skipped > 0", Category: "inventory", Weight: WeightModerate, Description: "import with skipped rows"},
	{EventType: "inventory_imported", Category: "inventory", Weight: WeightInfo, Description: "inventory imported"},
	{EventType: "color_added", Category: "catalog", Weight: WeightInfo, Description: "status added"},
	{EventType: "price_changed", Category: "catalog", Weight: WeightModerate, Description: "price changed"},
	{EventType: "option_added", Category: "options", Weight: WeightInfo, Description: "option added"},
}

// Classification is the outcome of matching an event against Rules.
type Classification struct {
	Category    string
	Weight      string
	Description string
}

var unclassified = Classification{Category: "other", Weight: WeightInfo}

// Classify returns the classification of an event from its type and JSON
// payload. Events with no matching rule are "other"/info.
func Classify(eventType string, payload json.RawMessage) Classification {
	var fields map[string]any
	if len(payload) > 0 {
		_ = json.Unmarshal(payload, &fields)
	}

	var fallback *Rule
	for i := range Rules {
		r := &Rules[i]
		if r.EventType != eventType {
			continue
		}
		if r.Condition == "" {
			if fallback == nil {
				fallback = r
			}
			continue
		}
		if matchCondition(r.Condition, fields) {
			return Classification{Category: r.Category, Weight: r.Weight, Description: r.Description}
		}
	}
	if fallback != nil {
		return Classification{Category: fallback.Category, Weight: fallback.Weight, Description: fallback.Description}
	}
	c := unclassified
	c.Description = eventType
	return c
}

// matchCondition evaluates "field OP value" against payload fields, where OP
// is one of ==, <, >, <=, >=.
func matchCondition(condition string, fields map[string]any) bool {
	if fields == nil {
		return false
	}
	// Two-char operators first.
	for _, op := range []string{"<=", ">=", "==", "<", ">"} {
		parts := strings.SplitN(condition, op, 2)
		if len(parts) != 2 {
			continue
		}
		actual, ok := fields[strings.TrimSpace(parts[0])]
		if !ok {
			return false
		}
		expected := strings.TrimSpace(parts[1])
		switch op {
		case "==":
			return valueEquals(actual, expected)
		case "<=":
			return valueCompare(actual, expected) <= 0
		case ">=":
			return valueCompare(actual, expected) >= 0
		case "<":
			return valueCompare(actual, expected) < 0
		case ">":
			return valueCompare(actual, expected) > 0
		}
	}
	return false
}

func valueEquals(actual any, expected string) bool {
	switch v := actual.(type) {
	case string:
		return v == expected
	case float64:
		ev, err := strconv.ParseFloat(expected, 64)
		if err != nil {
			return false
		}
		return v == ev
	case bool:
		return strconv.FormatBool(v) == expected
	default:
		return false
	}
}

// valueCompare returns -1, 0 or 1. Non-numeric values compare equal.
func valueCompare(actual any, threshold string) int {
	av, ok := actual.(float64)
	if !ok {
		return 0
	}
	tv, err := strconv.ParseFloat(threshold, 64)
	if err != nil {
		return 0
	}
	switch {
	case av < tv:
		return -1
	case av > tv:
		return 1
	}
	return 0
}
