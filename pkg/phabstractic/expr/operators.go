package expr

import (
	"fmt"
	"strings"
)

// Compare compares two values using the named operator.
// Returns an error for unknown operators.
func Compare(left, right any, op string) (bool, error) {
	switch op {
	case "==":
		return compareEquals(left, right), nil
	case "!=":
		return compareNotEquals(left, right), nil
	case "<":
		return compareLT(left, right), nil
	case ">":
		return compareGT(left, right), nil
	case "<=":
		return compareLTE(left, right), nil
	case ">=":
		return compareGTE(left, right), nil
	case "contains", "has":
		return compareContains(left, right), nil
	default:
		return false, fmt.Errorf("unknown operator: %s", op)
	}
}

func compareEquals(left, right any) bool {
	return fmt.Sprintf("%v", left) == fmt.Sprintf("%v", right)
}

func compareNotEquals(left, right any) bool {
	return !compareEquals(left, right)
}

func compareLT(left, right any) bool {
	return ToFloat64(left) < ToFloat64(right)
}

func compareGT(left, right any) bool {
	return ToFloat64(left) > ToFloat64(right)
}

func compareLTE(left, right any) bool {
	return ToFloat64(left) <= ToFloat64(right)
}

func compareGTE(left, right any) bool {
	return ToFloat64(left) >= ToFloat64(right)
}

// compareContains is set membership for string and any slices and
// substring search for everything else.
func compareContains(left, right any) bool {
	needle := fmt.Sprintf("%v", right)
	switch l := left.(type) {
	case []string:
		for _, s := range l {
			if s == needle {
				return true
			}
		}
		return false
	case []any:
		for _, v := range l {
			if fmt.Sprintf("%v", v) == needle {
				return true
			}
		}
		return false
	case nil:
		return false
	}
	return strings.Contains(fmt.Sprintf("%v", left), needle)
}
