package model

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// DataType declares how a value is coerced when it is bound or stored in a variable.
type DataType string

const (
	DataTypeAny     DataType = ""
	DataTypeString  DataType = "string"
	DataTypeNumber  DataType = "number"
	DataTypeInteger DataType = "integer"
	DataTypeBoolean DataType = "boolean"
	DataTypeList    DataType = "list"
	DataTypeMap     DataType = "map"
)

func (t DataType) valid() bool {
	switch t {
	case DataTypeAny, DataTypeString, DataTypeNumber, DataTypeInteger, DataTypeBoolean, DataTypeList, DataTypeMap:
		return true
	}
	return false
}

// Coerce converts v to the declared type. nil stays nil for every type.
func (t DataType) Coerce(v any) (any, error) {
	if v == nil || t == DataTypeAny {
		return v, nil
	}
	switch t {
	case DataTypeString:
		switch val := v.(type) {
		case string:
			return val, nil
		case fmt.Stringer:
			return val.String(), nil
		default:
			return fmt.Sprint(val), nil
		}
	case DataTypeNumber:
		return toFloat(v)
	case DataTypeInteger:
		f, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		if f != math.Trunc(f) {
			return nil, fmt.Errorf("value %v is not an integer", v)
		}
		return int64(f), nil
	case DataTypeBoolean:
		switch val := v.(type) {
		case bool:
			return val, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(val))
			if err != nil {
				return nil, fmt.Errorf("value %q is not a boolean: %w", val, err)
			}
			return b, nil
		}
		return nil, fmt.Errorf("value of type %T is not a boolean", v)
	case DataTypeList:
		if list, ok := v.([]any); ok {
			return list, nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
			return nil, fmt.Errorf("value of type %T is not a list", v)
		}
		list := make([]any, rv.Len())
		for i := range rv.Len() {
			list[i] = rv.Index(i).Interface()
		}
		return list, nil
	case DataTypeMap:
		if m, ok := v.(map[string]any); ok {
			return m, nil
		}
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("value of type %T is not a map", v)
		}
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[iter.Key().String()] = iter.Value().Interface()
		}
		return m, nil
	}
	return nil, fmt.Errorf("unknown data type %q", t)
}

func toFloat(v any) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int:
		return float64(val), nil
	case int32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case uint:
		return float64(val), nil
	case uint32:
		return float64(val), nil
	case uint64:
		return float64(val), nil
	case json.Number:
		return val.Float64()
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, fmt.Errorf("value %q is not a number: %w", val, err)
		}
		return f, nil
	case fmt.Stringer:
		// expression engines return their own decimal types
		f, err := strconv.ParseFloat(val.String(), 64)
		if err != nil {
			return 0, fmt.Errorf("value %s is not a number: %w", val, err)
		}
		return f, nil
	}
	return 0, fmt.Errorf("value of type %T is not a number", v)
}

// typeOf returns the data type a Go result type maps to.
func typeOf[T any]() DataType {
	var zero T
	switch any(zero).(type) {
	case string:
		return DataTypeString
	case float64:
		return DataTypeNumber
	case int64:
		return DataTypeInteger
	case bool:
		return DataTypeBoolean
	case []any:
		return DataTypeList
	case map[string]any:
		return DataTypeMap
	}
	return DataTypeAny
}
