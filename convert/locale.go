package convert

import (
	"golang.org/x/text/language"

	"github.com/reoring/jsonapi"
)

// Locale returns a converter for language.Tag using BCP 47 language tags.
func Locale() jsonapi.TypeConverter {
	return jsonapi.ConverterFor(language.Parse, language.Tag.String)
}
