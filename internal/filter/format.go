package filter

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MaxItems is the cardinality limit of every list filter.
const MaxItems = 50

var (
	ErrTooManyItems  = errors.New("too many filter items")
	ErrInvalidFilter = errors.New("invalid SQL filter")
)

type CardinalityError struct {
	Field string
	Len   int
}

func (e *CardinalityError) Error() string {
	return fmt.Sprintf("Too many items for '%s' filter (%d); maximum allowed is %d.", e.Field, e.Len, MaxItems)
}

func (e *CardinalityError) Unwrap() error { return ErrTooManyItems }

const selectClause = "SELECT loc FROM engine"

// Format renders p as an SQL filter over the engine table. It does not
// validate the result, see Builder.
func Format(p Params) (string, error) {
	for _, l := range p.lists() {
		if len(l.items) > MaxItems {
			return "", &CardinalityError{Field: l.name, Len: len(l.items)}
		}
	}

	var clauses []string
	if c := rangeClause("published", p.PublishStart, p.PublishEnd); c != "" {
		clauses = append(clauses, c)
	}
	if c := rangeClause("visited", p.VisitedStart, p.VisitedEnd); c != "" {
		clauses = append(clauses, c)
	}

	if p.Certain != nil {
		if *p.Certain {
			clauses = append(clauses, "certain = TRUE")
		} else {
			clauses = append(clauses, "certain = FALSE")
		}
	}

	if len(p.IncludeNetlocs) > 0 {
		clauses = append(clauses, "netloc IN ("+quoteList(netlocVariants(p.IncludeNetlocs))+")")
	}
	if len(p.ExcludeNetlocs) > 0 {
		clauses = append(clauses, "netloc NOT IN ("+quoteList(netlocVariants(p.ExcludeNetlocs))+")")
	}

	if len(p.IncludeCompanies) > 0 {
		l := quoteList(p.IncludeCompanies)
		clauses = append(clauses, fmt.Sprintf("(company_1 IN (%s) OR company_2 IN (%s) OR company_3 IN (%s))", l, l, l))
	}
	if len(p.ExcludeCompanies) > 0 {
		l := quoteList(p.ExcludeCompanies)
		clauses = append(clauses, fmt.Sprintf("(company_1 NOT IN (%s) AND company_2 NOT IN (%s) AND company_3 NOT IN (%s))", l, l, l))
	}

	// язык в индексе хранится как "en-en"
	if len(p.IncludeLanguages) > 0 {
		clauses = append(clauses, "language IN ("+quoteList(languageTokens(p.IncludeLanguages))+")")
	}
	if len(p.ExcludeLanguages) > 0 {
		clauses = append(clauses, "language NOT IN ("+quoteList(languageTokens(p.ExcludeLanguages))+")")
	}

	if len(p.IncludeDocs) > 0 {
		clauses = append(clauses, "doc_hash IN ("+quoteList(p.IncludeDocs)+")")
	}
	if len(p.ExcludeDocs) > 0 {
		clauses = append(clauses, "doc_hash NOT IN ("+quoteList(p.ExcludeDocs)+")")
	}

	if len(clauses) == 0 {
		return selectClause, nil
	}
	return selectClause + " WHERE " + strings.Join(clauses, " AND "), nil
}

func rangeClause(column, start, end string) string {
	switch {
	case start != "" && end != "":
		return fmt.Sprintf("%s >= %s AND %s <= %s", column, quote(start), column, quote(end))
	case start != "":
		return fmt.Sprintf("%s >= %s", column, quote(start))
	case end != "":
		return fmt.Sprintf("%s <= %s", column, quote(end))
	}
	return ""
}

// netlocVariants adds the bare and www. forms of every netloc, deduplicated
// and sorted.
func netlocVariants(netlocs []string) []string {
	set := make(map[string]struct{}, len(netlocs)*2)
	for _, n := range netlocs {
		set[n] = struct{}{}
		if bare, ok := strings.CutPrefix(n, "www."); ok {
			set[bare] = struct{}{}
		} else {
			set["www."+n] = struct{}{}
		}
	}

	out := make([]string, 0, len(set))
	for n := range set {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func languageTokens(langs []string) []string {
	out := make([]string, len(langs))
	for i, l := range langs {
		out[i] = l + "-" + l
	}
	return out
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = quote(s)
	}
	return strings.Join(quoted, ", ")
}
