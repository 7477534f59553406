package query

import (
	"regexp"
	"strings"
	"time"

	"mongolens-be/pkg/mongodb/schema"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var objectIDHex = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// coerceDoc walks a parsed fragment and substitutes native identifier and
// timestamp values for the ambiguous strings the UI sends. The dotted path
// threads through nested documents; keys starting with the $ operator sigil
// keep the path anchored at their parent.
func coerceDoc(d bson.D, sm schema.Map, path string) bson.D {
	out := make(bson.D, 0, len(d))
	for _, el := range d {
		out = append(out, bson.E{Key: el.Key, Value: coerceValue(el.Value, sm, childPath(path, el.Key))})
	}
	return out
}

func coerceValue(v interface{}, sm schema.Map, path string) interface{} {
	switch val := v.(type) {
	case bson.D:
		return coerceDoc(val, sm, path)
	case bson.A:
		out := make(bson.A, len(val))
		for i, item := range val {
			out[i] = coerceValue(item, sm, path)
		}
		return out
	case string:
		return coerceString(val, sm, path)
	default:
		return v
	}
}

// coerceString consults the schema of the path's top-level field. A Date
// field turns an ISO timestamp into a native one; an ObjectId field turns a
// strict 24-hex string into a native identifier. Anything else passes
// through untouched.
func coerceString(s string, sm schema.Map, path string) interface{} {
	field := topLevelField(path)
	if field == "" {
		return s
	}
	if sm.Has(field, "Date") {
		if t, err := time.Parse(time.RFC3339, s); err == nil {
			return primitive.NewDateTimeFromTime(t)
		}
	}
	if sm.Has(field, "ObjectId") && objectIDHex.MatchString(s) {
		if oid, err := primitive.ObjectIDFromHex(s); err == nil {
			return oid
		}
	}
	return s
}

func childPath(parent, key string) string {
	if strings.HasPrefix(key, "$") {
		return parent
	}
	if parent == "" {
		return key
	}
	return parent + "." + key
}

func topLevelField(path string) string {
	if i := strings.Index(path, "."); i >= 0 {
		return path[:i]
	}
	return path
}
