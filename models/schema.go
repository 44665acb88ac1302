package models

import "fmt"

// SalesTable is the name of the table holding imported raw records.
const SalesTable = "sales"

// Field identifies a field of RawRecord / NormalizedRecord.
type Field string

const (
	FieldProductName        Field = "ProductName"
	FieldCategory           Field = "Category"
	FieldRating             Field = "Rating"
	FieldRatingCount        Field = "RatingCount"
	FieldPrice              Field = "Price"
	FieldOriginalPrice      Field = "OriginalPrice"
	FieldDiscountPercentage Field = "DiscountPercentage"
)

// ColumnMapping binds one raw source column to the record field it feeds.
type ColumnMapping struct {
	Column   string
	Field    Field
	Required bool // required when normalizing rows read back from the store
}

// Schema is the fixed raw schema, in table column order.
var Schema = []ColumnMapping{
	{Column: "product_name", Field: FieldProductName, Required: true},
	{Column: "category", Field: FieldCategory, Required: true},
	{Column: "rating", Field: FieldRating},
	{Column: "rating_count", Field: FieldRatingCount},
	{Column: "discounted_price", Field: FieldPrice, Required: true},
	{Column: "actual_price", Field: FieldOriginalPrice},
	{Column: "discount_percentage", Field: FieldDiscountPercentage},
}

var allFields = []Field{
	FieldProductName, FieldCategory, FieldRating, FieldRatingCount,
	FieldPrice, FieldOriginalPrice, FieldDiscountPercentage,
}

// Columns returns the raw column names in schema order.
func Columns() []string {
	cols := make([]string, len(Schema))
	for i, m := range Schema {
		cols[i] = m.Column
	}
	return cols
}

// ColumnFor returns the raw column that feeds field.
func ColumnFor(field Field) (string, bool) {
	for _, m := range Schema {
		if m.Field == field {
			return m.Column, true
		}
	}
	return "", false
}

// FieldFor returns the field fed by the raw column.
func FieldFor(column string) (Field, bool) {
	for _, m := range Schema {
		if m.Column == column {
			return m.Field, true
		}
	}
	return "", false
}

// ValidateSchema checks that the mapping is a bijection between the raw
// columns and the record fields.
func ValidateSchema() error {
	columns := make(map[string]struct{}, len(Schema))
	fields := make(map[Field]struct{}, len(Schema))
	for _, m := range Schema {
		if m.Column == "" {
			return fmt.Errorf("schema: empty column for field %s", m.Field)
		}
		if _, dup := columns[m.Column]; dup {
			return fmt.Errorf("schema: column %q mapped twice", m.Column)
		}
		if _, dup := fields[m.Field]; dup {
			return fmt.Errorf("schema: field %s mapped twice", m.Field)
		}
		columns[m.Column] = struct{}{}
		fields[m.Field] = struct{}{}
	}
	for _, f := range allFields {
		if _, ok := fields[f]; !ok {
			return fmt.Errorf("schema: field %s has no column", f)
		}
	}
	if len(fields) != len(allFields) {
		return fmt.Errorf("schema: %d mapped fields, want %d", len(fields), len(allFields))
	}
	return nil
}

// Values returns r's fields in schema column order.
func (r RawRecord) Values() []string {
	out := make([]string, len(Schema))
	for i, m := range Schema {
		out[i] = r.Get(m.Field)
	}
	return out
}

// Get returns the raw text of field.
func (r RawRecord) Get(field Field) string {
	switch field {
	case FieldProductName:
		return r.ProductName
	case FieldCategory:
		return r.Category
	case FieldRating:
		return r.Rating
	case FieldRatingCount:
		return r.RatingCount
	case FieldPrice:
		return r.DiscountedPrice
	case FieldOriginalPrice:
		return r.ActualPrice
	case FieldDiscountPercentage:
		return r.DiscountPercentage
	}
	return ""
}

// Set assigns the raw text of field.
func (r *RawRecord) Set(field Field, value string) {
	switch field {
	case FieldProductName:
		r.ProductName = value
	case FieldCategory:
		r.Category = value
	case FieldRating:
		r.Rating = value
	case FieldRatingCount:
		r.RatingCount = value
	case FieldPrice:
		r.DiscountedPrice = value
	case FieldOriginalPrice:
		r.ActualPrice = value
	case FieldDiscountPercentage:
		r.DiscountPercentage = value
	}
}
