package schema

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

// Map is the inferred type schema of a collection: top-level field name to
// the type tags observed across a sample, deduplicated, in first-seen order.
type Map map[string][]string

// Has reports whether field was observed with the given tag.
func (m Map) Has(field, tag string) bool {
	for _, t := range m[field] {
		if t == tag {
			return true
		}
	}
	return false
}

func (m Map) add(field, tag string) {
	for _, t := range m[field] {
		if t == tag {
			return
		}
	}
	m[field] = append(m[field], tag)
}

// TagFor maps a BSON wire type to its tag. The identifier and timestamp
// types use the canonical ObjectId/Date forms; everything else passes
// through as the server reports it.
func TagFor(t bsontype.Type) string {
	switch t {
	case bsontype.Double:
		return "double"
	case bsontype.String:
		return "string"
	case bsontype.EmbeddedDocument:
		return "object"
	case bsontype.Array:
		return "array"
	case bsontype.Binary:
		return "binData"
	case bsontype.Undefined:
		return "undefined"
	case bsontype.ObjectID:
		return "ObjectId"
	case bsontype.Boolean:
		return "bool"
	case bsontype.DateTime:
		return "Date"
	case bsontype.Null:
		return "null"
	case bsontype.Regex:
		return "regex"
	case bsontype.DBPointer:
		return "dbPointer"
	case bsontype.JavaScript:
		return "javascript"
	case bsontype.Symbol:
		return "symbol"
	case bsontype.CodeWithScope:
		return "javascriptWithScope"
	case bsontype.Int32:
		return "int"
	case bsontype.Timestamp:
		return "timestamp"
	case bsontype.Int64:
		return "long"
	case bsontype.Decimal128:
		return "decimal"
	case bsontype.MinKey:
		return "minKey"
	case bsontype.MaxKey:
		return "maxKey"
	default:
		return t.String()
	}
}

// Build derives a schema from raw sampled documents. The type tag comes
// straight from the BSON element type on the wire, not from any client-side
// reflection over decoded values.
func Build(docs []bson.Raw) (Map, error) {
	m := make(Map)
	for _, doc := range docs {
		elements, err := doc.Elements()
		if err != nil {
			return nil, err
		}
		for _, el := range elements {
			m.add(el.Key(), TagFor(el.Value().Type))
		}
	}
	return m, nil
}
