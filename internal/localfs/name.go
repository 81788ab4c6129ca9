package localfs

import "strings"

var nameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	"\r", "_",
	"\n", "_",
	"\t", "_",
)

// SanitizeName rewrites a remote item name into a safe single path segment.
// Separators and control characters become underscores so a hostile name
// like "../../etc/passwd" cannot escape the destination directory.
func SanitizeName(name string) string {
	return nameReplacer.Replace(name)
}
