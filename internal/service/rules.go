package service

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/OlegSmmDrug/agencycore.asia-sub007/internal/domain"
)

// EvaluateConditions reports whether every condition holds against values.
// An empty config passes. Unknown operators never match.
func EvaluateConditions(conditions domain.ConditionConfig, values map[string]any) bool {
	for field, cond := range conditions {
		if !evaluateCondition(cond, values[field]) {
			return false
		}
	}
	return true
}

func evaluateCondition(cond domain.Condition, actual any) bool {
	switch cond.Operator {
	case domain.OpEquals:
		return looseEqual(actual, cond.Value)
	case domain.OpNotEquals:
		return !looseEqual(actual, cond.Value)
	case domain.OpGreaterThan:
		a, okA := toFloat(actual)
		b, okB := toFloat(cond.Value)
		return okA && okB && a > b
	case domain.OpLessThan:
		a, okA := toFloat(actual)
		b, okB := toFloat(cond.Value)
		return okA && okB && a < b
	case domain.OpContains:
		if actual == nil || cond.Value == nil {
			return false
		}
		return strings.Contains(stringify(actual), stringify(cond.Value))
	case domain.OpIn:
		list, ok := cond.Value.([]any)
		if !ok {
			return false
		}
		for _, v := range list {
			if looseEqual(actual, v) {
				return true
			}
		}
		return false
	default:
		slog.Warn("unknown condition operator", "operator", cond.Operator)
		return false
	}
}

func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
	}
	return stringify(a) == stringify(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case decimal.Decimal:
		return n.InexactFloat64(), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func stringify(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case fmt.Stringer:
		return s.String()
	default:
		return fmt.Sprint(v)
	}
}

var templateVar = regexp.MustCompile(`\{\{\s*([\w.]+)\s*\}\}`)

// ReplaceVariables substitutes {{field}} placeholders with values from vars.
// Placeholders without a value are left as written.
func ReplaceVariables(template string, vars map[string]any) string {
	return templateVar.ReplaceAllStringFunc(template, func(match string) string {
		key := templateVar.FindStringSubmatch(match)[1]
		v, ok := vars[key]
		if !ok || v == nil {
			return match
		}
		return stringify(v)
	})
}

// SubstitutePayload applies ReplaceVariables to every string leaf of a JSON-like value.
func SubstitutePayload(v any, vars map[string]any) any {
	switch t := v.(type) {
	case string:
		return ReplaceVariables(t, vars)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = SubstitutePayload(val, vars)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = SubstitutePayload(val, vars)
		}
		return out
	default:
		return v
	}
}
