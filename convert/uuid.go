package convert

import (
	"github.com/google/uuid"

	"github.com/reoring/jsonapi"
)

// UUID returns a converter for uuid.UUID (and *uuid.UUID) in the canonical
// 8-4-4-4-12 form. Parsing also accepts the braced and urn:uuid: forms.
func UUID() jsonapi.TypeConverter {
	return jsonapi.ConverterFor(uuid.Parse, uuid.UUID.String)
}
