// ABOUTME: Version constants
// ABOUTME: Product identification for logs and diagnostics
package version

const (
	Version = "0.1.0"
	Product = "Vision Assistant Client"
)
