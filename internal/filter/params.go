package filter

// Params are the structured search filters. Empty strings and nil slices mean
// "not set".
type Params struct {
	PublishStart string   `json:"publish_start,omitempty"`
	PublishEnd   string   `json:"publish_end,omitempty"`
	VisitedStart string   `json:"visited_start,omitempty"`
	VisitedEnd   string   `json:"visited_end,omitempty"`
	Certain      *bool    `json:"certain,omitempty"`

	IncludeNetlocs   []string `json:"include_netlocs,omitempty"`
	ExcludeNetlocs   []string `json:"exclude_netlocs,omitempty"`
	IncludeLanguages []string `json:"include_languages,omitempty"`
	ExcludeLanguages []string `json:"exclude_languages,omitempty"`
	IncludeCompanies []string `json:"include_companies,omitempty"`
	ExcludeCompanies []string `json:"exclude_companies,omitempty"`
	IncludeDocs      []string `json:"include_docs,omitempty"`
	ExcludeDocs      []string `json:"exclude_docs,omitempty"`
}

// Merge returns p with unset fields taken from defaults.
func (p Params) Merge(defaults Params) Params {
	out := p
	mergeString(&out.PublishStart, defaults.PublishStart)
	mergeString(&out.PublishEnd, defaults.PublishEnd)
	mergeString(&out.VisitedStart, defaults.VisitedStart)
	mergeString(&out.VisitedEnd, defaults.VisitedEnd)
	if out.Certain == nil {
		out.Certain = defaults.Certain
	}
	mergeList(&out.IncludeNetlocs, defaults.IncludeNetlocs)
	mergeList(&out.ExcludeNetlocs, defaults.ExcludeNetlocs)
	mergeList(&out.IncludeLanguages, defaults.IncludeLanguages)
	mergeList(&out.ExcludeLanguages, defaults.ExcludeLanguages)
	mergeList(&out.IncludeCompanies, defaults.IncludeCompanies)
	mergeList(&out.ExcludeCompanies, defaults.ExcludeCompanies)
	mergeList(&out.IncludeDocs, defaults.IncludeDocs)
	mergeList(&out.ExcludeDocs, defaults.ExcludeDocs)
	return out
}

// IsZero reports whether no filter is set.
func (p Params) IsZero() bool {
	return p.PublishStart == "" && p.PublishEnd == "" &&
		p.VisitedStart == "" && p.VisitedEnd == "" &&
		p.Certain == nil &&
		len(p.IncludeNetlocs) == 0 && len(p.ExcludeNetlocs) == 0 &&
		len(p.IncludeLanguages) == 0 && len(p.ExcludeLanguages) == 0 &&
		len(p.IncludeCompanies) == 0 && len(p.ExcludeCompanies) == 0 &&
		len(p.IncludeDocs) == 0 && len(p.ExcludeDocs) == 0
}

func (p Params) lists() []namedList {
	return []namedList{
		{"include_netlocs", p.IncludeNetlocs},
		{"exclude_netlocs", p.ExcludeNetlocs},
		{"include_languages", p.IncludeLanguages},
		{"exclude_languages", p.ExcludeLanguages},
		{"include_companies", p.IncludeCompanies},
		{"exclude_companies", p.ExcludeCompanies},
		{"include_docs", p.IncludeDocs},
		{"exclude_docs", p.ExcludeDocs},
	}
}

type namedList struct {
	name  string
	items []string
}

// Bool is a helper for Params.Certain.
func Bool(v bool) *bool { return &v }

func mergeString(dst *string, def string) {
	if *dst == "" {
		*dst = def
	}
}

func mergeList(dst *[]string, def []string) {
	if *dst == nil && def != nil {
		*dst = append([]string(nil), def...)
	}
}
