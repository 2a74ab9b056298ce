package msgspec

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
)

// CanonicalText renders the canonical MD5 source text for spec: one line
// per constant in declaration order, then one line per field in
// declaration order. depMD5s must carry the already-computed fingerprint
// for every message-typed field spec references, keyed by "pkg/Name".
func CanonicalText(spec *MessageSpec, depMD5s map[string]string) (string, error) {
	lines := make([]string, 0, len(spec.Constants)+len(spec.Fields))

	for _, c := range spec.Constants {
		lines = append(lines, fmt.Sprintf("%s %s=%s", c.Kind, c.Name, c.Literal))
	}
	for _, f := range spec.Fields {
		typeText, err := fieldTypeText(f, depMD5s)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("%s %s", typeText, f.Name))
	}

	return strings.Join(lines, "\n"), nil
}

// fieldTypeText renders the type token of a single field line: the
// primitive name, or the referenced message's MD5, with the array suffix
// appended directly after.
func fieldTypeText(f Field, depMD5s map[string]string) (string, error) {
	var base string
	if f.Kind.IsMessage() {
		sum, ok := depMD5s[f.Kind.String()]
		if !ok {
			return "", fmt.Errorf("missing fingerprint for referenced message %s", f.Kind.String())
		}
		base = sum
	} else {
		base = string(f.Kind.Primitive)
	}

	switch f.Array {
	case ArrayDynamic:
		base += "[]"
	case ArrayFixed:
		base += fmt.Sprintf("[%d]", f.ArraySize)
	}
	return base, nil
}

// FingerprintAll computes the MD5 fingerprint of every spec in order,
// returning a map from "pkg/Name" to its 32-character lowercase hex digest.
// order must be topologically sorted (dependencies before dependents), as
// produced by Resolver.ResolveMessage / Resolver.ResolveService.
func FingerprintAll(order []*MessageSpec) (map[string]string, error) {
	md5s := make(map[string]string, len(order))
	for _, spec := range order {
		text, err := CanonicalText(spec, md5s)
		if err != nil {
			return nil, err
		}
		md5s[spec.FullName()] = md5Hex(text)
	}
	return md5s, nil
}

// Fingerprint computes the MD5 fingerprint of spec given the topologically
// ordered set of specs it transitively depends on (order need not include
// spec itself).
func Fingerprint(spec *MessageSpec, order []*MessageSpec) (string, error) {
	md5s, err := FingerprintAll(order)
	if err != nil {
		return "", err
	}
	if sum, ok := md5s[spec.FullName()]; ok {
		return sum, nil
	}
	text, err := CanonicalText(spec, md5s)
	if err != nil {
		return "", err
	}
	return md5Hex(text), nil
}

func md5Hex(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
