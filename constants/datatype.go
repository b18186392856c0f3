package constants

import (
	"strings"
)

// DataType is the closed set of field data types a template may declare.
type DataType string

const (
	TypeString   DataType = "string"
	TypeDate     DataType = "date"
	TypeCurrency DataType = "currency"
	TypeInteger  DataType = "integer"
	TypeFloat    DataType = "float"
	TypeBoolean  DataType = "boolean"
	TypeAddress  DataType = "address"
	TypeArray    DataType = "array"
)

var allDataTypes = []DataType{
	TypeString,
	TypeDate,
	TypeCurrency,
	TypeInteger,
	TypeFloat,
	TypeBoolean,
	TypeAddress,
	TypeArray,
}

func AllDataTypes() []string {
	result := make([]string, len(allDataTypes))
	for i, dt := range allDataTypes {
		result[i] = string(dt)
	}
	return result
}

// ParseDataType resolves a raw data_type value. Unknown values default to
// TypeString so ambiguity never reaches the extraction logic; the second
// return reports whether the input was recognized.
func ParseDataType(input string) (DataType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(input))
	if normalized == "" {
		return TypeString, false
	}
	for _, dt := range allDataTypes {
		if normalized == string(dt) {
			return dt, true
		}
	}
	return TypeString, false
}
