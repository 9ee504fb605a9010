package location

import (
	"fmt"
	"regexp"
	"strings"
)

// Validation limits for names that arrive over the API.
const (
	maxDomainIDLength = 64
	maxAliasLength    = 64
	domainIDPattern   = `^[A-Za-z0-9][A-Za-z0-9_\-]*$`
)

var domainIDRegex = regexp.MustCompile(domainIDPattern)

// ValidateDomainID checks a facility, path or controller domain ID.
// Location IDs are dotted paths of these.
func ValidateDomainID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: domain id cannot be empty", ErrInvalidDomainID)
	}
	if len(id) > maxDomainIDLength {
		return fmt.Errorf("%w: domain id exceeds %d characters", ErrInvalidDomainID, maxDomainIDLength)
	}
	if !domainIDRegex.MatchString(id) {
		return fmt.Errorf("%w: %q must be letters, digits, '-' or '_'", ErrInvalidDomainID, id)
	}
	return nil
}

// ValidateLocationID checks a dotted location ID such as "A9.B1.T1.S3".
func ValidateLocationID(id string) error {
	for _, part := range strings.Split(id, ".") {
		if err := ValidateDomainID(part); err != nil {
			return err
		}
	}
	return nil
}

// ValidateAlias checks an alias name. Aliases may contain any printable
// characters except dots, which would make them ambiguous with location IDs.
func ValidateAlias(alias string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return ErrEmptyAlias
	}
	if len(alias) > maxAliasLength {
		return fmt.Errorf("%w: alias exceeds %d characters", ErrInvalidDomainID, maxAliasLength)
	}
	if strings.Contains(alias, ".") {
		return fmt.Errorf("%w: alias %q contains '.'", ErrInvalidDomainID, alias)
	}
	return nil
}
