package pynode

import (
	"strings"
)

// categorySuffix is the canonical category suffix every node category must
// carry; appended if absent.
const categorySuffix = "节点"

// NormalizedSpec is the canonicalized, registry-ready form of a node
// definition.
type NormalizedSpec struct {
	ExtractedSpec

	Category   string
	StandardKey string

	InputTypes  map[string]string
	OutputTypes map[string]string

	Scopes []string
}

// Normalize converts extracted specs into normalized ones. A spec missing
// name or category still produces a placeholder
// NormalizedSpec with empty type maps rather than being dropped, so the
// validator can report the problem instead of the pipeline crashing.
func Normalize(specs []ExtractedSpec) []NormalizedSpec {
	out := make([]NormalizedSpec, 0, len(specs))
	for _, spec := range specs {
		out = append(out, normalizeOne(spec))
	}
	return out
}

func normalizeOne(spec ExtractedSpec) NormalizedSpec {
	n := NormalizedSpec{ExtractedSpec: spec}

	if spec.Name == "" || spec.Category == "" {
		n.Category = ensureCategorySuffix(spec.Category)
		n.InputTypes = map[string]string{}
		n.OutputTypes = map[string]string{}
		n.Scopes = normalizeScopes(spec.Scopes, spec.FilePath)
		return n
	}

	n.Category = ensureCategorySuffix(spec.Category)
	n.StandardKey = n.Category + "/" + spec.Name
	n.InputTypes = pairsToTypeDict(spec.Inputs)
	n.OutputTypes = pairsToTypeDict(spec.Outputs)
	n.Scopes = normalizeScopes(spec.Scopes, spec.FilePath)
	return n
}

func ensureCategorySuffix(category string) string {
	if category == "" {
		return category
	}
	if strings.HasSuffix(category, categorySuffix) {
		return category
	}
	return category + categorySuffix
}

// pairsToTypeDict builds a port-name -> type-name map from ordered pairs.
// A malformed pair (empty name or type) is dropped; a duplicate port name
// keeps the last occurrence, matching the plain-dict-assignment semantics
// of the original Python loop.
func pairsToTypeDict(pairs [][2]string) map[string]string {
	out := map[string]string{}
	for _, pair := range pairs {
		name := strings.TrimSpace(pair[0])
		typeName := strings.TrimSpace(pair[1])
		if name == "" || typeName == "" {
			continue
		}
		out[name] = typeName
	}
	return out
}

// normalizeScopes keeps author-provided scopes (trimmed, non-empty) when
// present, and falls back to path inference only when that list is empty --
// never when scopes were provided but later filtered to something
// non-empty (normalizer.py::_normalize_scopes).
func normalizeScopes(provided []string, filePath string) []string {
	var cleaned []string
	for _, s := range provided {
		s = strings.TrimSpace(s)
		if s != "" {
			cleaned = append(cleaned, s)
		}
	}
	if len(cleaned) > 0 {
		return cleaned
	}
	return inferScopesFromPath(filePath)
}

// inferScopesFromPath lowercases every path component and checks for the
// literal "server"/"client" substrings, possibly returning both
// (normalizer.py::_infer_scopes_from_file_path).
func inferScopesFromPath(filePath string) []string {
	lower := strings.ToLower(filePath)
	var scopes []string
	if strings.Contains(lower, "server") {
		scopes = append(scopes, "server")
	}
	if strings.Contains(lower, "client") {
		scopes = append(scopes, "client")
	}
	return scopes
}
