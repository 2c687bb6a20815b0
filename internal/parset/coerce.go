package parset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// Grouping is one size:count pair of the groupings parameter. A Count of zero
// means "all remaining directions" and is only allowed in the last pair.
type Grouping struct {
	Size  int `json:"size" toml:"size"`
	Count int `json:"count" toml:"count"`
}

func (g Grouping) String() string {
	return fmt.Sprintf("%d:%d", g.Size, g.Count)
}

// ParseBool accepts true/false, yes/no, on/off and 1/0, case-insensitively.
func ParseBool(raw string) (bool, error) {
	switch cases.Fold().String(strings.TrimSpace(raw)) {
	case "true", "yes", "on", "1":
		return true, nil
	case "false", "no", "off", "0":
		return false, nil
	default:
		return false, &TypeCoercionError{Value: raw, Kind: KindBool}
	}
}

// ParseInt converts a base-10 integer.
func ParseInt(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &TypeCoercionError{Value: raw, Kind: KindInt, Err: unwrapNumError(err)}
	}
	return value, nil
}

// ParseFloat converts a decimal or exponent float.
func ParseFloat(raw string) (float64, error) {
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &TypeCoercionError{Value: raw, Kind: KindFloat, Err: unwrapNumError(err)}
	}
	return value, nil
}

// ParseList splits a comma-separated value, trimming items and dropping empty
// ones. Surrounding brackets are accepted.
func ParseList(raw string) []string {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
		trimmed = trimmed[1 : len(trimmed)-1]
	}
	var items []string
	for _, part := range strings.Split(trimmed, ",") {
		if item := strings.TrimSpace(part); item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ParseGroupings parses "size:count, size:count, ...".
func ParseGroupings(raw string) ([]Grouping, error) {
	parts := ParseList(raw)
	if len(parts) == 0 {
		return nil, &TypeCoercionError{Value: raw, Kind: KindGroupings, Err: errors.New("no size:count pairs")}
	}
	groupings := make([]Grouping, 0, len(parts))
	for i, part := range parts {
		sizeText, countText, ok := strings.Cut(part, ":")
		if !ok {
			return nil, &TypeCoercionError{Value: raw, Kind: KindGroupings, Err: fmt.Errorf("pair %q is not size:count", part)}
		}
		size, err := strconv.Atoi(strings.TrimSpace(sizeText))
		if err != nil || size < 1 {
			return nil, &TypeCoercionError{Value: raw, Kind: KindGroupings, Err: fmt.Errorf("pair %q: size must be a positive integer", part)}
		}
		count, err := strconv.Atoi(strings.TrimSpace(countText))
		if err != nil || count < 0 {
			return nil, &TypeCoercionError{Value: raw, Kind: KindGroupings, Err: fmt.Errorf("pair %q: count must be a non-negative integer", part)}
		}
		if count == 0 && i != len(parts)-1 {
			return nil, &TypeCoercionError{Value: raw, Kind: KindGroupings, Err: fmt.Errorf("pair %q: count 0 is only allowed in the last pair", part)}
		}
		groupings = append(groupings, Grouping{Size: size, Count: count})
	}
	return groupings, nil
}

func unwrapNumError(err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) {
		return numErr.Err
	}
	return err
}
