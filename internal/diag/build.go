package diag

import "github.com/google/uuid"

// NewBuildID stamps one compilation unit with a unique identifier;
// cmd/juliavm writes it into the header of the -b bytecode file (the
// Go source internal/codegen emits and the --stats output do not
// carry it), the way sentra's module loader
// tagged generated artifacts with a uuid before handing them to its
// security-platform modules.
func NewBuildID() string {
	return uuid.NewString()
}
