package pipeline

import (
	"strings"

	"github.com/sells-group/company-research/internal/browser"
	"github.com/sells-group/company-research/internal/model"
)

// QuerySet holds one query per search backend. A fresh set is built for
// every attempt.
type QuerySet struct {
	Google string
	DDG    string
}

// For returns the query for a backend.
func (q QuerySet) For(b browser.Backend) string {
	if b == browser.Google {
		return q.Google
	}
	return q.DDG
}

// Retry strategies, selected by attempt number only.
const (
	StrategySiteRestricted = 1
	StrategyRegistry       = 2
	StrategyProfessional   = 3
	StrategyNews           = 4
	StrategySynonyms       = 5
)

// RetryStrategy maps an attempt number (from 1) onto the five-step schedule.
func RetryStrategy(attempt int) int {
	if attempt < 1 {
		attempt = 1
	}
	return ((attempt - 1) % 5) + 1
}

// Planner turns field identifiers into search queries for one target.
type Planner struct {
	fields  *model.FieldRegistry
	domain  string
	company string
}

// NewPlanner returns a planner for domain.
func NewPlanner(fields *model.FieldRegistry, domain string) *Planner {
	return &Planner{fields: fields, domain: domain, company: CompanyName(domain)}
}

// CompanyName derives a search-friendly name from the first domain label.
func CompanyName(domain string) string {
	label := domain
	if i := strings.IndexByte(label, '.'); i >= 0 {
		label = label[:i]
	}
	return strings.NewReplacer("-", " ", "_", " ").Replace(label)
}

func (p *Planner) expand(tmpl, label string) string {
	return strings.NewReplacer(
		"{domain}", p.domain,
		"{company}", p.company,
		"{field}", label,
	).Replace(tmpl)
}

// Initial returns the field's template pair, or a generic pair for fields
// the table does not know.
func (p *Planner) Initial(field string) QuerySet {
	spec := p.fields.Lookup(field)
	if spec == nil || (spec.Queries.Google == "" && spec.Queries.DDG == "") {
		label := strings.ReplaceAll(field, "_", " ")
		return QuerySet{
			Google: p.expand(`"{domain}" "{field}"`, label),
			DDG:    p.expand(`What is the {field} of {company}? {domain}`, label),
		}
	}
	label := spec.Label()
	return QuerySet{
		Google: p.expand(spec.Queries.Google, label),
		DDG:    p.expand(spec.Queries.DDG, label),
	}
}

// Retry returns the queries for a retry attempt. Strategies escalate by
// schedule and ignore why earlier attempts failed.
func (p *Planner) Retry(field string, attempt int) QuerySet {
	label := strings.ReplaceAll(field, "_", " ")
	var siteQuery, synonyms string
	if spec := p.fields.Lookup(field); spec != nil {
		label = spec.Label()
		siteQuery = spec.SiteQuery
		synonyms = spec.Synonyms
	}

	switch RetryStrategy(attempt) {
	case StrategySiteRestricted:
		google := `"{domain}" {field} -jobs -careers`
		if siteQuery != "" {
			google = siteQuery
		}
		return QuerySet{
			Google: p.expand(google, label),
			DDG:    p.expand(`{company} {field} official information`, label),
		}
	case StrategyRegistry:
		return QuerySet{
			Google: p.expand(`"{company}" {field} site:companieshouse.gov.uk OR site:endole.co.uk OR site:opencorporates.com`, label),
			DDG:    p.expand(`{domain} {field} business registry company data`, label),
		}
	case StrategyProfessional:
		return QuerySet{
			Google: p.expand(`"{company}" {field} site:linkedin.com OR site:crunchbase.com OR site:zoominfo.com`, label),
			DDG:    p.expand(`{company} {field} linkedin crunchbase profile`, label),
		}
	case StrategyNews:
		return QuerySet{
			Google: p.expand(`"{company}" {field} news OR press OR announcement`, label),
			DDG:    p.expand(`{company} {field} latest news press release`, label),
		}
	default:
		terms := synonyms
		if terms == "" {
			terms = label
		}
		return QuerySet{
			Google: p.expand(`"{domain}" (`+terms+`)`, label),
			DDG:    p.expand(`everything about {company} {domain} company information`, label),
		}
	}
}
