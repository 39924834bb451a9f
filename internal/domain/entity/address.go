package entity

import "strings"

// Address dirección postal estructurada (cliente o acreedor).
type Address struct {
	Name       string
	Street     string
	HouseNo    string
	PostalCode string
	Town       string
	Country    string // código ISO 3166-1 alfa-2
}

// StreetLine devuelve calle y número en una sola línea.
func (a Address) StreetLine() string {
	return strings.TrimSpace(a.Street + " " + a.HouseNo)
}

// Place devuelve "<código postal> <localidad>", tal como aparece en la factura.
func (a Address) Place() string {
	return strings.TrimSpace(a.PostalCode + " " + a.Town)
}

// IsZero indica si la dirección no tiene ningún dato.
func (a Address) IsZero() bool {
	return a == Address{}
}
