package queryir

import (
	"encoding/base64"
	"strconv"
	"strings"
)

// Serialize turns ir into the server's query JSON dialect (spec
// §4.7). It is hand-written over a strings.Builder rather than
// encoding/json-marshaling a struct, because the output shape depends
// on the filter list's structure (same-field merge, AND/OR group
// splitting, single-vs-multi orderBy) in a way a flat struct dump
// can't express — the same reason the teacher's pql.Call.String()
// (pql/ast.go) hand-emits PQL text instead of using a generic
// marshaler.
func Serialize(ir *QueryIR) ([]byte, error) {
	var buf strings.Builder
	buf.WriteByte('{')

	writeFilter(&buf, ir.Filters)

	if len(ir.Projection) > 0 {
		buf.WriteString(`,"projection":[`)
		for i, f := range ir.Projection {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(f)
			buf.WriteByte('"')
		}
		buf.WriteByte(']')
	}

	if len(ir.OrderBy) == 1 {
		buf.WriteString(`,"orderBy":`)
		writeOrderByObject(&buf, ir.OrderBy[0])
	} else if len(ir.OrderBy) > 1 {
		buf.WriteString(`,"orderBy":[`)
		for i, ob := range ir.OrderBy {
			if i > 0 {
				buf.WriteByte(',')
			}
			writeOrderByObject(&buf, ob)
		}
		buf.WriteByte(']')
	}

	if ir.Limit != nil {
		buf.WriteString(`,"limit":`)
		buf.WriteString(strconv.FormatUint(uint64(*ir.Limit), 10))
	}
	if ir.Skip != nil {
		buf.WriteString(`,"skip":`)
		buf.WriteString(strconv.FormatUint(uint64(*ir.Skip), 10))
	}

	if len(ir.GroupBy) > 0 {
		buf.WriteString(`,"group_by":[`)
		for i, f := range ir.GroupBy {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(f)
			buf.WriteByte('"')
		}
		buf.WriteByte(']')
	}

	if len(ir.Aggregations) > 0 {
		buf.WriteString(`,"aggregate":{`)
		for i, agg := range ir.Aggregations {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(agg.OutputName)
			buf.WriteString(`":{"`)
			buf.WriteString(agg.Func.Mnemonic())
			buf.WriteString(`":`)
			if agg.Func == AggCount {
				buf.WriteString("true")
			} else {
				buf.WriteByte('"')
				buf.WriteString(agg.Field)
				buf.WriteByte('"')
			}
			buf.WriteByte('}')
		}
		buf.WriteByte('}')
	}

	if ir.QueryType != nil && *ir.QueryType == QueryCount {
		buf.WriteString(`,"count":true`)
	}

	if ir.Mutation != nil {
		buf.WriteString(`,"mutation":{"type":"`)
		switch ir.Mutation.Kind {
		case MutationInsert:
			buf.WriteString(`insert","payload":"`)
			buf.WriteString(base64.StdEncoding.EncodeToString(ir.Mutation.Payload))
			buf.WriteByte('"')
		case MutationUpdate:
			buf.WriteString(`update","payload":"`)
			buf.WriteString(base64.StdEncoding.EncodeToString(ir.Mutation.Payload))
			buf.WriteByte('"')
		case MutationDelete:
			buf.WriteString(`delete"`)
		}
		buf.WriteByte('}')
	}

	buf.WriteByte('}')
	return []byte(buf.String()), nil
}

func writeOrderByObject(buf *strings.Builder, ob OrderBy) {
	buf.WriteString(`{"field":"`)
	buf.WriteString(ob.Field)
	buf.WriteString(`","direction":"`)
	buf.WriteString(ob.Direction.String())
	buf.WriteString(`"}`)
}

// writeFilter emits the always-present "filter" key per rule 1,
// switching to compound "$or" mode per rule 2 when any filter in the
// list carries LogicOr.
func writeFilter(buf *strings.Builder, filters []FilterExpr) {
	buf.WriteString(`"filter":`)
	if len(filters) == 0 {
		buf.WriteString(`{}`)
		return
	}

	groups := splitOrGroups(filters)
	if len(groups) == 1 {
		writeGroupObject(buf, groups[0])
		return
	}

	buf.WriteString(`{"$or":[`)
	for i, g := range groups {
		if i > 0 {
			buf.WriteByte(',')
		}
		writeGroupObject(buf, g)
	}
	buf.WriteString(`]}`)
}

// splitOrGroups splits filters into consecutive AND-combined groups,
// breaking immediately after any filter whose Logic is LogicOr (spec
// §4.7 rule 2).
func splitOrGroups(filters []FilterExpr) [][]FilterExpr {
	var groups [][]FilterExpr
	var current []FilterExpr
	for _, f := range filters {
		current = append(current, f)
		if f.Logic == LogicOr {
			groups = append(groups, current)
			current = nil
		}
	}
	if len(current) > 0 || len(groups) == 0 {
		groups = append(groups, current)
	}
	return groups
}

// writeGroupObject emits one AND-combined group field-major (rule 3):
// multiple filters on the same field merge into one object, in
// first-appearance field order.
func writeGroupObject(buf *strings.Builder, group []FilterExpr) {
	var fieldOrder []string
	ops := make(map[string][]FilterExpr)
	for _, f := range group {
		if _, ok := ops[f.Field]; !ok {
			fieldOrder = append(fieldOrder, f.Field)
		}
		ops[f.Field] = append(ops[f.Field], f)
	}

	buf.WriteByte('{')
	for i, field := range fieldOrder {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('"')
		buf.WriteString(field)
		buf.WriteString(`":{`)
		for j, f := range ops[field] {
			if j > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(f.Op.Mnemonic())
			buf.WriteString(`":`)
			f.Value.appendJSON(buf)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
}
