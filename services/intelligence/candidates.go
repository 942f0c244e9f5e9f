package ai

import (
	"regexp"
	"strings"
)

var versionSuffixRe = regexp.MustCompile(`(-\d{3}|-latest|:\d+)$`)

// modelVariants returns the model as configured followed by its counterpart
// with the version suffix removed, or with "-latest" added when it has none.
func modelVariants(model string) []string {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil
	}
	if versionSuffixRe.MatchString(model) {
		return []string{model, versionSuffixRe.ReplaceAllString(model, "")}
	}
	return []string{model, model + "-latest"}
}

// ModelCandidates lists the models to try in order: the variants of primary,
// then those of fallback, without duplicates.
func ModelCandidates(primary, fallback string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range append(modelVariants(primary), modelVariants(fallback)...) {
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}
