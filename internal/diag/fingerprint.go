package diag

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainDiagnostic separates diagnostic fingerprints from any other hash
// computed over the same canonical bytes.
const DomainDiagnostic = "constprop/diagnostic/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint identifies what a diagnostic says and where, independent of
// when it was emitted: Seq and highlight ranges are excluded. The history
// store deduplicates on it, so re-recording a run is idempotent.
func Fingerprint(function string, d Diagnostic) (string, error) {
	args := d.Args
	if args == nil {
		args = []string{}
	}
	obj := map[string]any{
		"function": function,
		"id":       string(d.ID),
		"severity": d.Severity.String(),
		"args":     args,
		"pos": map[string]any{
			"file": d.Pos.File,
			"line": d.Pos.Line,
			"col":  d.Pos.Col,
		},
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainDiagnostic, canonical), nil
}

// MustFingerprint is like Fingerprint but panics on error.
func MustFingerprint(function string, d Diagnostic) string {
	fp, err := Fingerprint(function, d)
	if err != nil {
		panic(err)
	}
	return fp
}
