package service

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"

	"github.com/young626-jang/ltv-flask/internal/registry"
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nonDigitRegex   = regexp.MustCompile(`\D+`)
)

// hashValue returns a deterministic SHA-256 hash for the provided value.
func hashValue(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}

// sanitizeString collapses whitespace and trims the result.
func sanitizeString(value string) string {
	value = whitespaceRegex.ReplaceAllString(value, " ")
	return strings.TrimSpace(value)
}

// DocumentHash identifies a document by its normalized text, so re-exports
// of the same register that differ only in invisible characters collide.
func DocumentHash(text string) string {
	return hashValue(sanitizeString(registry.NormalizeText(text)))
}

// PropertyID keys a property in the graph: the register's unique number when
// printed, otherwise a hash of the address, otherwise the document itself.
func PropertyID(doc registry.DocumentInfo, documentHash string) string {
	if digits := nonDigitRegex.ReplaceAllString(doc.UniqueNumber, ""); len(digits) >= 10 {
		return doc.UniqueNumber
	}
	if addr := sanitizeString(doc.Address); addr != "" {
		return "ADDR-" + hashValue(addr)[:16]
	}
	return "DOC-" + documentHash[:16]
}
