package models

import (
	"slices"
	"strings"

	dErrors "auditfeed/pkg/domain-errors"
)

// Category names a class of audited activity as the user asks for it.
// The remote content type is looked up, never derived from the tag text.
type Category string

const (
	CategoryAzureActiveDirectory Category = "AzureActiveDirectory"
	CategoryExchange             Category = "Exchange"
	CategorySharePoint           Category = "SharePoint"
	CategoryGeneral              Category = "General"
	CategoryDLP                  Category = "DLP"
)

// contentTypes is the single source of truth for supported categories.
var contentTypes = map[Category]string{
	CategoryAzureActiveDirectory: "Audit.AzureActiveDirectory",
	CategoryExchange:             "Audit.Exchange",
	CategorySharePoint:           "Audit.SharePoint",
	CategoryGeneral:              "Audit.General",
	CategoryDLP:                  "DLP.All",
}

// Categories returns all supported categories in a stable order.
func Categories() []Category {
	out := make([]Category, 0, len(contentTypes))
	for c := range contentTypes {
		out = append(out, c)
	}
	slices.Sort(out)
	return out
}

// IsValid checks if the category is one of the supported enum values.
func (c Category) IsValid() bool {
	_, ok := contentTypes[c]
	return ok
}

// ContentType returns the identifier the management API uses for c, or ""
// when c is not a supported category.
func (c Category) ContentType() string {
	return contentTypes[c]
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory resolves a user supplied tag. Unknown tags are configuration
// errors and must be rejected before any request is made.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.TrimSpace(raw))
	if !c.IsValid() {
		names := make([]string, 0, len(contentTypes))
		for _, known := range Categories() {
			names = append(names, known.String())
		}
		return "", dErrors.Newf(dErrors.CodeValidation,
			"%s is not a valid value for the contentType option. Allowed values are %s",
			raw, strings.Join(names, " | "))
	}
	return c, nil
}
