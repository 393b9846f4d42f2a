package helpers

import (
	"math"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"umbraco-cms/pkg/udi"
)

// ConvertIDToInt accepts integer ids and their decimal string form.
func ConvertIDToInt(id interface{}) (int, bool) {
	switch v := id.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		if v < math.MinInt || v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		if uint64(v) > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint:
		if uint64(v) > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case uint64:
		if v > math.MaxInt {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// ConvertIDToGUID accepts uuid values and GUID strings.
func ConvertIDToGUID(id interface{}) (uuid.UUID, bool) {
	switch v := id.(type) {
	case uuid.UUID:
		return v, true
	case *uuid.UUID:
		if v == nil {
			return uuid.Nil, false
		}
		return *v, true
	case string:
		g, err := uuid.Parse(strings.TrimSpace(v))
		if err != nil {
			return uuid.Nil, false
		}
		return g, true
	}
	return uuid.Nil, false
}

// ConvertIDToUdi accepts UDI values and UDI strings.
func ConvertIDToUdi(id interface{}) (udi.Udi, bool) {
	switch v := id.(type) {
	case udi.Udi:
		return v, true
	case string:
		return udi.TryParse(strings.TrimSpace(v))
	}
	return nil, false
}
