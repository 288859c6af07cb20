package shinyclient

import (
	"regexp"

	"github.com/shinydb/shinydb-go/internal/errors"
)

const maxEntityName = 64

// entityNameRegex matches the same identifier grammar queryparser.Scanner
// accepts for a bare field/store/space name, so an entity created through
// Create can always be referenced back from a parsed query.
var entityNameRegex = regexp.MustCompile("^[a-zA-Z_][a-zA-Z0-9_]*$")

// ValidEntityName reports whether name is an acceptable space/store/index/
// user name for Create/Drop.
func ValidEntityName(name string) bool {
	return len(name) > 0 && len(name) <= maxEntityName && entityNameRegex.MatchString(name)
}

func validateEntityName(name string) error {
	if ValidEntityName(name) {
		return nil
	}
	return errors.New(errors.ErrInvalidRequest, "invalid entity name: "+name)
}
