package geocode

import (
	"strings"

	"github.com/rotaguia/rotaguia/internal/address"
)

// ufByState maps Brazilian state names (as Nominatim returns them) to the
// two-letter UF code.
var ufByState = map[string]string{
	"acre":                "AC",
	"alagoas":             "AL",
	"amapá":               "AP",
	"amazonas":            "AM",
	"bahia":               "BA",
	"ceará":               "CE",
	"distrito federal":    "DF",
	"espírito santo":      "ES",
	"goiás":               "GO",
	"maranhão":            "MA",
	"mato grosso":         "MT",
	"mato grosso do sul":  "MS",
	"minas gerais":        "MG",
	"pará":                "PA",
	"paraíba":             "PB",
	"paraná":              "PR",
	"pernambuco":          "PE",
	"piauí":               "PI",
	"rio de janeiro":      "RJ",
	"rio grande do norte": "RN",
	"rio grande do sul":   "RS",
	"rondônia":            "RO",
	"roraima":             "RR",
	"santa catarina":      "SC",
	"são paulo":           "SP",
	"sergipe":             "SE",
	"tocantins":           "TO",
}

// stateToUF resolves a state component to a UF code. A value that already
// looks like a UF code passes through; unknown states yield "".
func stateToUF(state string) string {
	s := strings.TrimSpace(state)
	if s == "" {
		return ""
	}
	if len(s) == 2 && s == strings.ToUpper(s) {
		return s
	}
	return ufByState[strings.ToLower(s)]
}

// Extract standardizes a raw geocoding result into an Address. Missing
// components stay nil; the country defaults when the provider omits it.
// The classifier decides whether the result's POI class/type pair yields a
// reference place.
func Extract(raw *RawResult, classifier *address.Classifier) *address.Address {
	if raw == nil {
		return nil
	}

	addr := address.NewAddress()

	setIfPresent := func(dst **string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = &v
		}
	}

	setIfPresent(&addr.Logradouro, raw.Address.Road)
	setIfPresent(&addr.Numero, raw.Address.HouseNumber)
	setIfPresent(&addr.Bairro, raw.Address.bairro())
	setIfPresent(&addr.Municipio, raw.Address.municipio())
	setIfPresent(&addr.CEP, raw.Address.Postcode)

	if uf := stateToUF(raw.Address.State); uf != "" {
		addr.UF = &uf
	}
	if country := strings.TrimSpace(raw.Address.Country); country != "" {
		addr.Pais = country
	}

	if raw.Class != "" && raw.Type != "" {
		place := classifier.Classify(raw.Class, raw.Type, raw.Name)
		addr.Place = &place
	}

	return addr
}
