// Package mapper applies a matched template to raw rows, renaming columns
// to canonical fields and normalizing typed values. It never discards a
// row: conversion failures surface as notes on the affected field and the
// validation engine decides whether the absence is acceptable.
package mapper

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/mrlokans/bordereaux/internal/canonical"
	"github.com/mrlokans/bordereaux/internal/entities"
)

// MapRows maps every decoded row through the template. Output order matches
// input order and row indexes are 0-based source positions. Mapping the same
// input twice yields identical rows.
func MapRows(fileID uint, template *entities.Template, headers []string, rawRows []map[string]string) ([]*canonical.Row, error) {
	mappings, err := template.Mappings()
	if err != nil {
		return nil, err
	}

	// Resolve each canonical field to one raw header by normalized name.
	// Template sources are walked in sorted order and headers in file column
	// order, so a field claimed by several sources always resolves to the
	// first matching header in the file. Raw columns without a mapping are
	// dropped.
	sources := make([]string, 0, len(mappings))
	for source := range mappings {
		sources = append(sources, source)
	}
	sort.Strings(sources)

	fieldByNorm := make(map[string]string, len(mappings))
	for _, source := range sources {
		field := mappings[source]
		if !canonical.IsField(field) {
			return nil, fmt.Errorf("template %s maps %q to unknown canonical field %q", template.TemplateID, source, field)
		}
		if n := canonical.NormalizeHeader(source); n != "" {
			if _, taken := fieldByNorm[n]; !taken {
				fieldByNorm[n] = field
			}
		}
	}

	fieldToHeader := make(map[string]string, len(mappings))
	for _, h := range headers {
		field, ok := fieldByNorm[canonical.NormalizeHeader(h)]
		if !ok {
			continue
		}
		if _, taken := fieldToHeader[field]; !taken {
			fieldToHeader[field] = h
		}
	}

	rows := make([]*canonical.Row, 0, len(rawRows))
	for idx, raw := range rawRows {
		rows = append(rows, mapRow(fileID, idx, fieldToHeader, raw))
	}
	return rows, nil
}

// mapRow maps a single raw row. Pure: no shared state beyond the read-only
// field resolution table, so rows may be mapped in any order.
func mapRow(fileID uint, index int, fieldToHeader map[string]string, raw map[string]string) *canonical.Row {
	row := canonical.NewRow(fileID, index)

	if data, err := json.Marshal(raw); err == nil {
		row.RawData = string(data)
	}

	for field, header := range fieldToHeader {
		cell, ok := raw[header]
		if !ok {
			continue
		}
		value := canonical.NormalizeString(cell)
		if value == "" {
			// Empty cells are absent fields, not conversion failures.
			continue
		}

		kind, _ := canonical.KindOf(field)
		switch kind {
		case canonical.KindDate:
			parsed, err := canonical.ParseDate(value)
			if err != nil {
				row.AddNote(field, cell, err.Error())
				continue
			}
			row.Set(field, canonical.DateValue(parsed))

		case canonical.KindDecimal:
			parsed, err := canonical.ParseDecimal(value)
			if err != nil {
				row.AddNote(field, cell, err.Error())
				continue
			}
			row.Set(field, canonical.DecimalValue(parsed))

		default:
			if field == canonical.FieldCurrency {
				value = canonical.NormalizeCurrency(value)
			}
			row.Set(field, canonical.StringValue(value))
		}
	}

	return row
}
