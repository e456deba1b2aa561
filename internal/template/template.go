// Package template personalizes campaign messages for a single recipient.
//
// A message may contain placeholders such as {firstName} or {barrio}. Only
// names from Vocabulary are substituted; any other {...} sequence is left
// as written.
package template

import (
	"regexp"
	"strings"

	"github.com/bingotables/bulkmsg/internal/models"
)

// Defaults used when the recipient field is empty
const (
	DefaultFirstName    = "Usuario"
	DefaultLastName     = "Sin Apellido"
	DefaultPhone        = "0999999999"
	DefaultNeighborhood = "Sin barrio"
	DefaultCanton       = "Sin cantón"
	DefaultProvince     = "Sin provincia"
	DefaultTableCode    = "Sin tabla"
	DefaultTable        = "sin tabla asignada"

	TableDelivered    = "Entregada"
	TableNotDelivered = "No entregada"
	OCRValidated      = "Validada"
	OCRNotValidated   = "Sin validar"
)

// Variable documents one placeholder
type Variable struct {
	Name        string
	Description string
}

// Vocabulary lists every recognized placeholder
var Vocabulary = []Variable{
	{Name: "firstName", Description: "Nombre"},
	{Name: "lastName", Description: "Apellido"},
	{Name: "fullName", Description: "Nombre completo"},
	{Name: "phone", Description: "Teléfono"},
	{Name: "barrio", Description: "Barrio"},
	{Name: "canton", Description: "Cantón"},
	{Name: "provincia", Description: "Provincia"},
	{Name: "tabla", Description: "Referencia de la tabla asignada"},
	{Name: "tableCode", Description: "Código de la tabla"},
	{Name: "tablaEntregado", Description: "Estado de entrega de la tabla"},
	{Name: "ocrValidated", Description: "Estado de validación OCR"},
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z]+)\}`)

var known = func() map[string]bool {
	m := make(map[string]bool, len(Vocabulary))
	for _, v := range Vocabulary {
		m[v.Name] = true
	}
	return m
}()

// IsKnown reports whether name is part of the vocabulary
func IsKnown(name string) bool {
	return known[name]
}

// Variables returns the substitution value of every placeholder for r
func Variables(r models.Recipient) map[string]string {
	first := orDefault(r.FirstName, DefaultFirstName)
	last := orDefault(r.LastName, DefaultLastName)

	tabla := DefaultTable
	if id := strings.TrimSpace(r.TableID.String()); id != "" {
		tabla = "#" + id
	}

	return map[string]string{
		"firstName":      first,
		"lastName":       last,
		"fullName":       strings.TrimSpace(first + " " + last),
		"phone":          orDefault(r.Phone, DefaultPhone),
		"barrio":         orDefault(r.Neighborhood, DefaultNeighborhood),
		"canton":         orDefault(r.Canton, DefaultCanton),
		"provincia":      orDefault(r.Province, DefaultProvince),
		"tabla":          tabla,
		"tableCode":      orDefault(r.TableCode, DefaultTableCode),
		"tablaEntregado": pick(r.TableDelivered, TableDelivered, TableNotDelivered),
		"ocrValidated":   pick(r.OCRValidated, OCRValidated, OCRNotValidated),
	}
}

// Render substitutes recognized placeholders in tmpl with values from r.
// It performs no I/O and does not modify its inputs.
func Render(tmpl string, r models.Recipient) string {
	if tmpl == "" || !strings.Contains(tmpl, "{") {
		return tmpl
	}

	vars := Variables(r)
	return placeholderPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		if value, ok := vars[match[1:len(match)-1]]; ok {
			return value
		}
		return match
	})
}

// Placeholders returns the recognized placeholders used in tmpl, in order of first use
func Placeholders(tmpl string) []string {
	return collect(tmpl, true)
}

// Unknown returns {name} sequences in tmpl that are not in the vocabulary
func Unknown(tmpl string) []string {
	return collect(tmpl, false)
}

func collect(tmpl string, wantKnown bool) []string {
	var out []string
	seen := make(map[string]bool)
	for _, m := range placeholderPattern.FindAllStringSubmatch(tmpl, -1) {
		name := m[1]
		if known[name] != wantKnown || seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

func orDefault(value, def string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return def
	}
	return value
}

func pick(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}
