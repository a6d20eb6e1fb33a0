// Package sqlutil provides SQL identifier helpers for the failure store.
package sqlutil

import (
	"regexp"
	"strings"
)

// QuoteIdentifier wraps a MySQL identifier in backticks, doubling any
// backtick inside it.
func QuoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// Table names come from configuration; only plain identifiers are accepted,
// optionally qualified with a schema.
var tableNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]+(\.[a-zA-Z0-9_]+)?$`)

// QuoteTable validates a possibly schema-qualified table name and quotes
// each part.
func QuoteTable(name string) (string, error) {
	if !tableNamePattern.MatchString(name) {
		return "", &InvalidIdentifierError{Name: name}
	}
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = QuoteIdentifier(p)
	}
	return strings.Join(parts, "."), nil
}

// InvalidIdentifierError is returned when a table name contains characters
// other than letters, digits and underscores.
type InvalidIdentifierError struct {
	Name string
}

func (e *InvalidIdentifierError) Error() string {
	return "invalid identifier: " + e.Name + " (must contain only alphanumeric characters and underscores)"
}
