package catalog

// vocab.go defines the closed vocabularies for enumerated catalog fields.
//
// The same vocabularies drive both directions: the ingest parser matches
// incoming text against them case-insensitively and stores the canonical
// value, and the export serializer writes the canonical value back out.
// Sharing one table guarantees round-trip consistency.

import "strings"

// StoneTypes is the closed vocabulary for the type column.
var StoneTypes = []string{
	"diamond", "sapphire", "ruby", "emerald", "amethyst", "topaz",
	"opal", "garnet", "aquamarine", "tourmaline", "peridot", "tanzanite",
}

// Colors is the closed vocabulary for the color column.
var Colors = []string{
	"colorless", "white", "blue", "red", "green", "yellow", "pink",
	"purple", "orange", "brown", "black", "multicolor",
}

// Cuts is the closed vocabulary for the cut column.
var Cuts = []string{
	"round", "oval", "cushion", "princess", "emerald", "pear",
	"marquise", "radiant", "asscher", "heart", "cabochon", "rough",
}

// ClarityGrades is the closed vocabulary for the clarity column,
// canonical form uppercase (GIA scale).
var ClarityGrades = []string{
	"FL", "IF", "VVS1", "VVS2", "VS1", "VS2", "SI1", "SI2", "I1", "I2", "I3",
}

// Currencies is the closed vocabulary for currency codes, canonical form
// uppercase ISO 4217.
var Currencies = []string{"USD", "EUR", "GBP", "CHF", "JPY"}

// DefaultCurrency is assumed when the currency column is absent or blank.
const DefaultCurrency = "USD"

// MatchVocab matches value against a vocabulary case-insensitively and
// returns the canonical entry. ok is false when the value is not in the
// vocabulary.
func MatchVocab(value string, vocab []string) (canonical string, ok bool) {
	value = strings.TrimSpace(value)
	for _, v := range vocab {
		if strings.EqualFold(v, value) {
			return v, true
		}
	}
	return "", false
}

// InVocab reports whether value is a canonical member of vocab. Used to
// check already-coerced values coming back out of the store.
func InVocab(value string, vocab []string) bool {
	for _, v := range vocab {
		if v == value {
			return true
		}
	}
	return false
}
