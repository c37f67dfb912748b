// Package billing turns billing export objects into per-project cost tables.
package billing

import "strings"

// LineItemPrefix is the namespace carried by every exported line item id.
const LineItemPrefix = "com.google.cloud/services/"

// CanonicalLineItem strips the export namespace from a line item id.
func CanonicalLineItem(raw string) string {
	return strings.TrimPrefix(raw, LineItemPrefix)
}

// Product returns the product segment of a canonical line item,
// e.g. "compute-engine" for "compute-engine/VmimageN1Standard_1".
func Product(item string) string {
	if i := strings.Index(item, "/"); i >= 0 {
		return item[:i]
	}
	return item
}
