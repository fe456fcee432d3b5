package main

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// catalogRow fila del catálogo lista para insertar.
type catalogRow struct {
	ID       string
	SKU      string
	Name     string
	Category string
}

// parseCatalog lee el CSV en Latin-1. La primera fila es el encabezado; se aceptan las
// columnas sku, nombre/name, categoria/category e id (opcional) en cualquier orden.
// Un SKU repetido conserva la última fila.
func parseCatalog(r io.Reader) ([]catalogRow, error) {
	br := bufio.NewReader(transform.NewReader(r, charmap.ISO8859_1.NewDecoder()))
	head, err := br.Peek(4096)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.Comma = detectComma(head)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("encabezado: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		cols[normalizeHeader(h)] = i
	}
	skuIdx, ok := cols["sku"]
	if !ok {
		return nil, fmt.Errorf("falta la columna sku")
	}
	nameIdx := firstCol(cols, "nombre", "name")
	catIdx := firstCol(cols, "categoria", "category")
	idIdx := firstCol(cols, "id")

	bySKU := make(map[string]catalogRow)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("línea %d: %w", line, err)
		}
		sku := field(rec, skuIdx)
		if sku == "" {
			continue
		}
		row := catalogRow{
			ID:       field(rec, idIdx),
			SKU:      sku,
			Name:     field(rec, nameIdx),
			Category: field(rec, catIdx),
		}
		if row.ID == "" {
			row.ID = uuid.NewString()
		}
		bySKU[sku] = row
	}

	rows := make([]catalogRow, 0, len(bySKU))
	for _, row := range bySKU {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].SKU < rows[j].SKU })
	return rows, nil
}

// writeSeedSQL escribe un único INSERT idempotente sobre products.
func writeSeedSQL(w io.Writer, source string, rows []catalogRow) error {
	var b bytes.Buffer
	b.WriteString("-- Catálogo de productos\n")
	fmt.Fprintf(&b, "-- Generado desde %s\n\n", source)
	b.WriteString("INSERT INTO products (id, sku, name, category) VALUES\n")
	for i, r := range rows {
		sep := ","
		if i == len(rows)-1 {
			sep = ""
		}
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s')%s\n",
			escapeSQL(r.ID), escapeSQL(r.SKU), escapeSQL(r.Name), escapeSQL(r.Category), sep)
	}
	b.WriteString("ON CONFLICT (sku) DO UPDATE SET name = EXCLUDED.name, category = EXCLUDED.category;\n")
	_, err := w.Write(b.Bytes())
	return err
}

// detectComma elige ';' cuando la primera línea tiene más ';' que ','.
func detectComma(head []byte) rune {
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
	return strings.NewReplacer("í", "i", "á", "a", "é", "e", "ó", "o", "ú", "u").Replace(h)
}

func firstCol(cols map[string]int, names ...string) int {
	for _, n := range names {
		if i, ok := cols[n]; ok {
			return i
		}
	}
	return -1
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
