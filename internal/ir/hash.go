package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainTable = "turing/table/v1"
	DomainTrace = "turing/trace/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// RuleValue converts a rule to its canonical map form.
func RuleValue(r Rule) map[string]any {
	return map[string]any{
		"state": r.State,
		"read":  r.Read,
		"write": r.Write,
		"move":  r.Move,
		"next":  r.Next,
	}
}

// StepValue converts a step to its canonical map form.
func StepValue(s Step) map[string]any {
	return map[string]any{
		"seq":   s.Seq,
		"state": s.State,
		"read":  s.Read,
		"rule":  RuleValue(s.Rule),
		"head":  s.Head,
		"next":  s.Next,
	}
}

// TableHash computes the content hash of an ordered rule sequence.
// Source line numbers do not take part in the hash.
func TableHash(rules []Rule) (string, error) {
	list := make([]any, len(rules))
	for i, r := range rules {
		list[i] = RuleValue(r)
	}

	canonical, err := MarshalCanonical(list)
	if err != nil {
		return "", fmt.Errorf("TableHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTable, canonical), nil
}

// TraceHash computes the content hash of a step sequence and the final
// tape rendering. Two runs with equal trace hashes took the same transitions.
func TraceHash(steps []Step, output string) (string, error) {
	list := make([]any, len(steps))
	for i, s := range steps {
		list[i] = StepValue(s)
	}

	canonical, err := MarshalCanonical(map[string]any{
		"steps":  list,
		"output": output,
	})
	if err != nil {
		return "", fmt.Errorf("TraceHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTrace, canonical), nil
}
