// Package address holds the standardized Brazilian address model, the point
// of interest classifier, address change detection and the address cache.
package address

// DefaultCountry is the country used when the geocoder omits one.
const DefaultCountry = "Brasil"

// Address is a standardized Brazilian address. Every field except Pais may
// be absent: geocoding results are routinely incomplete and a nil field
// means the component was not resolved, not that it is empty.
type Address struct {
	Logradouro *string `json:"logradouro,omitempty"`
	Numero     *string `json:"numero,omitempty"`
	Bairro     *string `json:"bairro,omitempty"`
	Municipio  *string `json:"municipio,omitempty"`
	UF         *string `json:"uf,omitempty"`
	CEP        *string `json:"cep,omitempty"`

	// Pais is never empty; it defaults to DefaultCountry.
	Pais string `json:"pais"`

	// Place is the classified point of interest at this address, if any.
	Place *ReferencePlace `json:"place,omitempty"`
}

// NewAddress returns an address with the country default applied.
func NewAddress() *Address {
	return &Address{Pais: DefaultCountry}
}

// Field returns the value of a tracked hierarchy field.
func (a *Address) Field(f ChangeField) *string {
	if a == nil {
		return nil
	}
	switch f {
	case FieldLogradouro:
		return a.Logradouro
	case FieldBairro:
		return a.Bairro
	case FieldMunicipio:
		return a.Municipio
	default:
		return nil
	}
}

// String renders the address components that are present, most specific
// first, for logs and announcements.
func (a *Address) String() string {
	if a == nil {
		return ""
	}

	parts := make([]string, 0, 7)
	appendPart := func(s *string) {
		if s != nil && *s != "" {
			parts = append(parts, *s)
		}
	}
	appendPart(a.Logradouro)
	appendPart(a.Numero)
	appendPart(a.Bairro)
	appendPart(a.Municipio)
	appendPart(a.UF)
	appendPart(a.CEP)
	if a.Pais != "" {
		parts = append(parts, a.Pais)
	}

	out := ""
	for i, p := range parts {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}

// ptr is a convenience for building optional fields.
func ptr(s string) *string { return &s }
