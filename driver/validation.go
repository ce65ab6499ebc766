package driver

import (
	"errors"
	"path/filepath"
	"strings"
	"unicode"
)

// Limits of a DSN and of one extracted table.
const (
	// MaxFilesPerDSN is the number of exports one DSN may name
	MaxFilesPerDSN = 1000
	// MaxColumnCount is the default SQLite column limit
	MaxColumnCount = 2000
	// MaxEntityLength bounds an entity key given in a DSN
	MaxEntityLength = 128

	maxParentLevels = 3
	maxLogLength    = 200
)

var (
	// ErrTooManyFiles is returned when a DSN names too many files
	ErrTooManyFiles = errors.New("too many files")

	// ErrTooManyColumns is returned when a result set has too many fields
	ErrTooManyColumns = errors.New("too many columns")

	// ErrInvalidPath is returned when a path is invalid or potentially dangerous
	ErrInvalidPath = errors.New("invalid or dangerous path")

	// ErrInvalidEntity is returned for an empty or malformed entity key
	ErrInvalidEntity = errors.New("invalid entity key")
)

// blockedPrefixes are lower-cased prefixes of system locations. `\\` also
// covers UNC and `\\?\` paths.
var blockedPrefixes = []string{
	"/etc/", "/proc/", "/sys/", "/dev/", "/boot/",
	`c:\windows\`, "c:/windows/",
	`c:\program files`, "c:/program files",
	`c:\users\administrator`, "c:/users/administrator",
	`\\`,
}

// reservedNames are Windows device names; none may be a file stem.
var reservedNames = map[string]bool{
	"con": true, "prn": true, "aux": true, "nul": true,
	"com1": true, "com2": true, "com3": true, "com4": true, "com5": true,
	"com6": true, "com7": true, "com8": true, "com9": true,
	"lpt1": true, "lpt2": true, "lpt3": true, "lpt4": true, "lpt5": true,
	"lpt6": true, "lpt7": true, "lpt8": true, "lpt9": true,
}

// sensitiveWords make SanitizeForLog hide the whole input.
var sensitiveWords = []string{
	"password", "passwd", "secret", "key", "token",
	"credential", "auth", "private", "ssh", "rsa",
}

// ValidatePath rejects empty paths, null bytes, deep parent traversal,
// system locations and Windows device names.
func ValidatePath(path string) error {
	if strings.TrimSpace(path) == "" || strings.ContainsRune(path, 0) || climbsTooFar(path) {
		return ErrInvalidPath
	}

	lower := strings.ToLower(path)
	for _, prefix := range blockedPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return ErrInvalidPath
		}
	}

	stem := strings.ToLower(filepath.Base(path))
	if i := strings.IndexByte(stem, '.'); i >= 0 {
		stem = stem[:i]
	}
	if reservedNames[stem] {
		return ErrInvalidPath
	}
	return nil
}

// climbsTooFar reports whether the cleaned path starts with more than
// maxParentLevels ".." elements. Both separators count.
func climbsTooFar(path string) bool {
	parts := strings.FieldsFunc(filepath.Clean(path), func(c rune) bool {
		return c == '/' || c == '\\'
	})
	up := 0
	for _, part := range parts {
		if part != ".." {
			break
		}
		up++
	}
	return up > maxParentLevels
}

// ValidateEntity checks an entity key taken from a DSN.
func ValidateEntity(key string) error {
	if strings.TrimSpace(key) == "" || len(key) > MaxEntityLength {
		return ErrInvalidEntity
	}
	if strings.IndexFunc(key, unicode.IsControl) >= 0 {
		return ErrInvalidEntity
	}
	return nil
}

// ValidateColumnCount checks if the number of columns is within acceptable limits
func ValidateColumnCount(columnCount int) error {
	if columnCount > MaxColumnCount {
		return ErrTooManyColumns
	}
	return nil
}

// ValidateFileCount checks if the number of files is within acceptable limits
func ValidateFileCount(fileCount int) error {
	if fileCount > MaxFilesPerDSN {
		return ErrTooManyFiles
	}
	return nil
}

// IsValidFileName reports whether a directory entry should be collected.
// Hidden files, such as office lock files (".~lock.master.csv#"), are skipped.
func IsValidFileName(fileName string) bool {
	return !strings.HasPrefix(fileName, ".") && !strings.ContainsAny(fileName, "\x00<>:\"|?*")
}

// SanitizeForLog hides inputs that look like they name secrets and
// truncates long ones.
func SanitizeForLog(input string) string {
	lower := strings.ToLower(input)
	for _, word := range sensitiveWords {
		if strings.Contains(lower, word) {
			return "[REDACTED]"
		}
	}
	if len(input) > maxLogLength {
		return input[:maxLogLength] + "..."
	}
	return input
}
