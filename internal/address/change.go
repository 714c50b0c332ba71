package address

// ChangeField identifies a tracked address-hierarchy level.
type ChangeField string

// Tracked hierarchy fields, most specific first.
const (
	FieldLogradouro ChangeField = "logradouro"
	FieldBairro     ChangeField = "bairro"
	FieldMunicipio  ChangeField = "municipio"
)

// ChangeDetails records the comparison of one hierarchy field between two
// addresses. A transition from nil to a value counts as a change; nil to
// nil does not. Comparison is case-sensitive.
type ChangeDetails struct {
	Field    ChangeField `json:"field"`
	Previous *string     `json:"previous"`
	Current  *string     `json:"current"`
	Changed  bool        `json:"changed"`
}

// ChangeSet holds the per-field comparison of two addresses.
type ChangeSet struct {
	Logradouro ChangeDetails `json:"logradouro"`
	Bairro     ChangeDetails `json:"bairro"`
	Municipio  ChangeDetails `json:"municipio"`
}

// Compare produces the change set between a previous and a current address.
// Either address may be nil (all its fields compare as absent).
func Compare(previous, current *Address) ChangeSet {
	return ChangeSet{
		Logradouro: compareField(FieldLogradouro, previous, current),
		Bairro:     compareField(FieldBairro, previous, current),
		Municipio:  compareField(FieldMunicipio, previous, current),
	}
}

func compareField(f ChangeField, previous, current *Address) ChangeDetails {
	prev := previous.Field(f)
	cur := current.Field(f)
	return ChangeDetails{
		Field:    f,
		Previous: prev,
		Current:  cur,
		Changed:  fieldChanged(prev, cur),
	}
}

func fieldChanged(prev, cur *string) bool {
	if prev == nil && cur == nil {
		return false
	}
	if prev == nil || cur == nil {
		return true
	}
	return *prev != *cur
}

// HasChange reports whether any tracked field changed.
func (cs ChangeSet) HasChange() bool {
	return cs.Municipio.Changed || cs.Bairro.Changed || cs.Logradouro.Changed
}

// Announce returns the single change to announce. A município change
// suppresses bairro and logradouro announcements, and a bairro change
// suppresses logradouro, so the listener hears only the broadest move.
func (cs ChangeSet) Announce() (ChangeDetails, bool) {
	switch {
	case cs.Municipio.Changed:
		return cs.Municipio, true
	case cs.Bairro.Changed:
		return cs.Bairro, true
	case cs.Logradouro.Changed:
		return cs.Logradouro, true
	default:
		return ChangeDetails{}, false
	}
}
