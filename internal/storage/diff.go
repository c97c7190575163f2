package storage

import (
	"bytes"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// IsText reports whether data looks like a text file: no null bytes and
// valid UTF-8. A config file that fails this is certainly corrupt.
func IsText(data []byte) bool {
	return bytes.IndexByte(data, 0) == -1 && utf8.Valid(data)
}

// UnifiedDiff returns a unified diff turning from into to, or an empty
// string if both are identical.
func UnifiedDiff(fromName, toName string, from, to []byte) string {
	if bytes.Equal(from, to) {
		return ""
	}

	if !IsText(from) || !IsText(to) {
		return fmt.Sprintf("Binary files %s and %s differ\n", fromName, toName)
	}

	dmp := diffmatchpatch.New()

	// Line-mode diff for better output
	fromStr, toStr := string(from), string(to)
	a, b, lineArray := dmp.DiffLinesToChars(fromStr, toStr)
	diffs := dmp.DiffMain(a, b, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	patches := dmp.PatchMake(fromStr, diffs)
	if len(patches) == 0 {
		return ""
	}

	var result strings.Builder
	result.WriteString(fmt.Sprintf("--- %s\n", fromName))
	result.WriteString(fmt.Sprintf("+++ %s\n", toName))
	result.WriteString(dmp.PatchToText(patches))

	return result.String()
}
