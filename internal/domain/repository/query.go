package repository

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FieldID nombre reservado para filtrar por el ID del documento.
const FieldID = "__id"

// Cond condición de igualdad sobre un campo del documento.
type Cond struct {
	Field string
	Value string
}

// Filter conjunción de condiciones de igualdad. Vacío = todos los documentos.
type Filter []Cond

// Eq construye un filtro de una condición.
func Eq(field, value string) Filter { return Filter{{Field: field, Value: value}} }

// Key forma canónica del filtro (independiente del orden de las condiciones).
func (f Filter) Key() string {
	parts := make([]string, 0, len(f))
	for _, c := range f {
		parts = append(parts, c.Field+"="+c.Value)
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}

// Match evalúa el filtro sobre un documento.
func (f Filter) Match(doc Document) bool {
	for _, c := range f {
		if c.Field == FieldID {
			if doc.ID != c.Value {
				return false
			}
			continue
		}
		v, ok := doc.Fields[c.Field]
		if !ok || fmt.Sprint(v) != c.Value {
			return false
		}
	}
	return true
}

// Order orden opcional de una consulta.
type Order struct {
	Field string
	Desc  bool
}

// Query consulta lógica sobre una colección.
type Query struct {
	Collection string
	Filter     Filter
	Order      *Order
	Limit      int
}

// Key forma canónica de la consulta; identifica suscripciones equivalentes.
func (q Query) Key() string {
	k := q.Collection + "?" + q.Filter.Key()
	if q.Order != nil {
		dir := "asc"
		if q.Order.Desc {
			dir = "desc"
		}
		k += "#" + q.Order.Field + ":" + dir
	}
	if q.Limit > 0 {
		k += fmt.Sprintf("#limit:%d", q.Limit)
	}
	return k
}

// Apply ordena y recorta docs según la consulta. El filtro ya debe estar aplicado.
// Los adaptadores lo comparten para que memoria y PostgreSQL ordenen igual.
func (q Query) Apply(docs []Document) []Document {
	if q.Order != nil {
		field, desc := q.Order.Field, q.Order.Desc
		sort.SliceStable(docs, func(i, j int) bool {
			a, b := orderKey(docs[i], field), orderKey(docs[j], field)
			if desc {
				return a > b
			}
			return a < b
		})
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}
	return docs
}

const sortableTime = "2006-01-02T15:04:05.000000000Z"

func orderKey(doc Document, field string) string {
	if field == FieldID {
		return doc.ID
	}
	switch v := doc.Fields[field].(type) {
	case nil:
		return ""
	case time.Time:
		return v.UTC().Format(sortableTime)
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t.UTC().Format(sortableTime)
		}
		return v
	default:
		return fmt.Sprint(v)
	}
}
