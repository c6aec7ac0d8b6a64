package client

import (
	"errors"
	"fmt"
	"net"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ErrInvalidEmail is returned for addresses that fail the format check; no
// request is sent for them.
var ErrInvalidEmail = errors.New("invalid email address")

// ValidateEmail checks the address shape: something@domain.tld with no
// whitespace. It is intentionally loose; delivery failures are still possible.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// ValidateEmailDomain additionally verifies the domain publishes an MX record.
// It requires DNS access, so callers opt in separately from the format check.
func ValidateEmailDomain(email string) error {
	return validateEmailDomain(email, net.LookupMX)
}

// validateEmailDomain takes the MX resolver as a parameter so tests can pin it.
func validateEmailDomain(email string, lookupMX func(string) ([]*net.MX, error)) error {
	if err := ValidateEmail(email); err != nil {
		return err
	}
	domain := email[strings.LastIndex(email, "@")+1:]
	records, err := lookupMX(domain)
	if err != nil || len(records) == 0 {
		return fmt.Errorf("%w: domain %q has no mail server", ErrInvalidEmail, domain)
	}
	return nil
}
