package entities

import "strings"

// LanguageAuto is the client-only sentinel meaning "let the backend detect".
// It must never be transmitted to the backend.
const LanguageAuto = "auto"

// ParseParticipants splits a comma-separated participants string into an
// ordered list of trimmed, non-empty names. No dedup; identity is exact
// string match.
func ParseParticipants(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// JoinParticipants renders a participant list back into the UI-boundary
// comma-separated form.
func JoinParticipants(names []string) string {
	return strings.Join(names, ", ")
}
