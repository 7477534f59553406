package query

import (
	"fmt"
	"strings"

	"mongolens-be/pkg/mongodb/schema"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// validateDoc compares the now-concrete values of a fragment against the
// inferred schema. Warnings are diagnostic only and never block execution.
// The schema records top-level fields, so comparisons happen for values
// anchored at the top level (including operator-wrapped ones); deeper
// nesting only threads the walk forward.
func validateDoc(d bson.D, sm schema.Map, path string, warnings []string) []string {
	for _, el := range d {
		p := childPath(path, el.Key)
		if !strings.HasPrefix(el.Key, "$") && !strings.Contains(p, ".") {
			warnings = checkField(p, el.Value, sm, warnings)
		}
		switch val := el.Value.(type) {
		case bson.D:
			warnings = validateDoc(val, sm, p, warnings)
		case bson.A:
			for _, item := range val {
				if sub, ok := item.(bson.D); ok {
					warnings = validateDoc(sub, sm, p, warnings)
				}
			}
		}
	}
	return warnings
}

func checkField(field string, value interface{}, sm schema.Map, warnings []string) []string {
	tags, known := sm[field]
	if !known {
		return append(warnings, fmt.Sprintf("field %q is not present in the collection schema", field))
	}

	tag := runtimeTag(value)
	if tag == "" || tag == "object" || tag == "array" {
		// Containers wrap operators and nested criteria; their own type says
		// nothing about the field.
		return warnings
	}
	for _, t := range tags {
		if t == tag {
			return warnings
		}
	}
	return append(warnings, fmt.Sprintf("field %q has type %s but the schema records [%s]", field, tag, strings.Join(tags, ", ")))
}

// runtimeTag maps a coerced Go value back onto the schema tag vocabulary.
func runtimeTag(v interface{}) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "bool"
	case int32:
		return "int"
	case int64:
		return "long"
	case int:
		return "int"
	case float64:
		return "double"
	case primitive.ObjectID:
		return "ObjectId"
	case primitive.DateTime:
		return "Date"
	case primitive.Timestamp:
		return "timestamp"
	case primitive.Decimal128:
		return "decimal"
	case primitive.Regex:
		return "regex"
	case primitive.Binary:
		return "binData"
	case bson.D:
		return "object"
	case bson.A:
		return "array"
	default:
		return ""
	}
}
