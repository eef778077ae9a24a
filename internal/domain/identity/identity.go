// Package identity builds canonical employee identities from roster rows and
// reconciles report rows against them.
//
// Merging is deliberately conservative: only exact (case/whitespace
// insensitive) email equality joins aliases. Two people with similar display
// names but different emails stay separate, and fuzzy name matching is a
// secondary path that never overrides an exact email hit.
package identity

import (
	"regexp"
	"sort"
	"strings"

	"github.com/okian/workpulse/internal/domain/model"
)

var (
	bracketEmail = regexp.MustCompile(`<([^>]+)>`)
	plainEmail   = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// minFuzzyTokenLen filters initials and stray punctuation out of the
// token-overlap comparison.
const minFuzzyTokenLen = 2

// Resolver holds the immutable identity set for one snapshot.
type Resolver struct {
	identities  []model.EmployeeIdentity
	byAlias     map[string]string // normalized alias email -> primary email
	byPrimary   map[string]model.EmployeeIdentity
	skippedRows int
}

// NewResolver extracts identities from roster rows. A row contributes one
// identity per distinct combined-field entry; the first email found is the
// primary. Rows without any email pattern carry only a name and cannot be
// keyed, so they are skipped and counted.
func NewResolver(rows []model.RosterRow) *Resolver {
	r := &Resolver{
		byAlias:   make(map[string]string),
		byPrimary: make(map[string]model.EmployeeIdentity),
	}

	for _, row := range rows {
		name, emails := extractNameEmails(row.NameEmail)
		if len(emails) == 0 {
			r.skippedRows++
			continue
		}
		primary := emails[0]
		if _, exists := r.byPrimary[primary]; exists {
			// Duplicate roster entry for the same person; identities are
			// immutable after creation, so the first row wins.
			r.skippedRows++
			continue
		}
		id := model.EmployeeIdentity{
			PrimaryEmail: primary,
			DisplayName:  name,
			KnownEmails:  emails,
		}
		r.identities = append(r.identities, id)
		r.byPrimary[primary] = id
		for _, email := range emails {
			if _, taken := r.byAlias[email]; !taken {
				r.byAlias[email] = primary
			}
		}
	}
	return r
}

// extractNameEmails splits a combined "Name <email>" field into a display
// name and the ordered, de-duplicated set of normalized emails it mentions.
func extractNameEmails(field string) (string, []string) {
	text := strings.TrimSpace(field)
	if text == "" {
		return "", nil
	}

	var emails []string
	seen := make(map[string]struct{})
	add := func(raw string) {
		email := NormalizeEmail(raw)
		if email == "" {
			return
		}
		if _, dup := seen[email]; dup {
			return
		}
		seen[email] = struct{}{}
		emails = append(emails, email)
	}

	for _, m := range bracketEmail.FindAllStringSubmatch(text, -1) {
		add(m[1])
	}
	withoutBrackets := bracketEmail.ReplaceAllString(text, "")
	for _, m := range plainEmail.FindAllString(withoutBrackets, -1) {
		add(m)
	}

	name := text
	if i := strings.Index(name, "<"); i >= 0 {
		name = name[:i]
	}
	if i := strings.Index(name, "@"); i >= 0 {
		name = name[:i]
	}
	name = strings.TrimSpace(strings.TrimRight(strings.TrimSpace(name), ","))

	return name, emails
}

// NormalizeEmail lowercases and trims an email string. Aliases that
// normalize to the same value are the same alias.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Identities returns the identity set in roster order.
func (r *Resolver) Identities() []model.EmployeeIdentity {
	out := make([]model.EmployeeIdentity, len(r.identities))
	copy(out, r.identities)
	return out
}

// Lookup returns the identity keyed by a primary email.
func (r *Resolver) Lookup(primaryEmail string) (model.EmployeeIdentity, bool) {
	id, ok := r.byPrimary[NormalizeEmail(primaryEmail)]
	return id, ok
}

// SkippedRows reports how many roster rows could not produce an identity.
func (r *Resolver) SkippedRows() int {
	return r.skippedRows
}

// Resolve maps a reported email (and, failing that, a reported name) to a
// primary email. Exact alias lookup always wins; the fuzzy name path only
// resolves when exactly one identity matches.
func (r *Resolver) Resolve(reportedEmail, reportedName string) (string, bool) {
	if email := NormalizeEmail(reportedEmail); email != "" {
		if primary, ok := r.byAlias[email]; ok {
			return primary, true
		}
	}

	matches := r.fuzzyNameMatches(reportedName)
	if len(matches) == 1 {
		return matches[0], true
	}
	return model.Unresolved, false
}

// FindByName returns the single identity a free-text name query matches,
// used by callers that address employees by name instead of email.
func (r *Resolver) FindByName(query string) (model.EmployeeIdentity, bool) {
	matches := r.fuzzyNameMatches(query)
	if len(matches) != 1 {
		return model.EmployeeIdentity{}, false
	}
	return r.byPrimary[matches[0]], true
}

// fuzzyNameMatches collects primary emails whose display name matches the
// query by containment or whole-token overlap. Result order is
// deterministic (sorted) so ambiguity handling does not depend on roster
// order.
func (r *Resolver) fuzzyNameMatches(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	qTokens := nameTokens(q)

	var matches []string
	for _, id := range r.identities {
		name := strings.ToLower(id.DisplayName)
		if name == "" {
			continue
		}
		if strings.Contains(name, q) || strings.Contains(q, name) {
			matches = append(matches, id.PrimaryEmail)
			continue
		}
		if tokensOverlap(qTokens, nameTokens(name)) {
			matches = append(matches, id.PrimaryEmail)
		}
	}
	sort.Strings(matches)
	return matches
}

func nameTokens(name string) map[string]struct{} {
	tokens := make(map[string]struct{})
	for _, tok := range strings.Fields(name) {
		tok = strings.Trim(tok, ".,")
		if len(tok) >= minFuzzyTokenLen {
			tokens[tok] = struct{}{}
		}
	}
	return tokens
}

func tokensOverlap(a, b map[string]struct{}) bool {
	for tok := range a {
		if _, ok := b[tok]; ok {
			return true
		}
	}
	return false
}
