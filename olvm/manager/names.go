package manager

import (
	"regexp"

	"github.com/Cloud-Foundations/olvm/lib/errors"
)

// Names become file names, device names and store key components.
var validName = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

func validateName(field, name string) error {
	if name == "" {
		return errors.NewValidationError(field, "required")
	}
	if name == "." || name == ".." || !validName.MatchString(name) {
		return errors.NewValidationError(field,
			"may only contain letters, digits, '_', '.' and '-': "+name)
	}
	return nil
}
