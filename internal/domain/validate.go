package domain

import (
	"net/url"
	"regexp"
	"strings"
)

// codeRe bounds caller-supplied custom codes. Generated sequential codes
// may be shorter, so lookups use the looser lookupCodeRe instead.
var (
	codeRe       = regexp.MustCompile(`^[a-zA-Z0-9]{4,32}$`)
	lookupCodeRe = regexp.MustCompile(`^[a-zA-Z0-9]{1,32}$`)
)

// LookupCodeOK reports whether s can possibly be a stored code.
func LookupCodeOK(s string) bool {
	return lookupCodeRe.MatchString(s)
}

func ValidateTargetURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrInvalidURL
	}

	u, err := url.ParseRequestURI(s)
	if err != nil {
		return ErrInvalidURL
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return ErrInvalidURL
	}

	if u.Host == "" {
		return ErrInvalidURL
	}

	return nil
}

func ValidateCode(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return ErrInvalidCode
	}

	if !codeRe.MatchString(s) {
		return ErrInvalidCode
	}

	return nil
}
