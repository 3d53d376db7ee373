package servicemonitor

import (
	"slices"
	"strings"
)

// Kind identifies a supported status page provider.
//
// Kind doubles as the service identifier in the config file, so a registry
// holds at most one service per kind. The set of kinds is closed: every kind
// has an entry in the extractor table, and identifiers without one are
// rejected during reconciliation.
type Kind string

const (
	// KindBitBucket is the Atlassian Statuspage used by BitBucket.
	KindBitBucket Kind = "bitbucket"

	// KindGitLab is the GitLab status dashboard.
	KindGitLab Kind = "gitlab"
)

// String returns the identifier as written in the config file.
func (k Kind) String() string {
	return string(k)
}

// kinds maps each supported kind to its status extractor. Supporting a new
// provider means adding one entry here.
var kinds = map[Kind]StatusExtractor{
	KindBitBucket: SelectorExtractor("span.status.font-large"),
	KindGitLab:    SelectorExtractor("div.col-md-8.col-sm-6.col-xs-12"),
}

// SupportedKinds returns every supported kind in lexical order.
func SupportedKinds() []Kind {
	out := make([]Kind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// ParseKind validates an identifier from the config file.
// Surrounding whitespace is ignored; matching is case-sensitive.
func ParseKind(identifier string) (Kind, error) {
	k := Kind(strings.TrimSpace(identifier))
	if _, ok := kinds[k]; !ok {
		return "", &UnrecognizedKindError{Identifier: string(k), Supported: SupportedKinds()}
	}
	return k, nil
}

// extractorFor returns the extractor registered for k.
func extractorFor(k Kind) (StatusExtractor, bool) {
	ex, ok := kinds[k]
	return ex, ok
}
