// Package report exports finished company profiles as multi-sheet xlsx
// workbooks and reads domain lists back from spreadsheets.
package report

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/sells-group/company-research/internal/config"
	"github.com/sells-group/company-research/internal/model"
)

// DefaultPrefix is used when no file name prefix is configured.
const DefaultPrefix = "Bulk_Report"

const timestampLayout = "20060102_150405"

// Sheet names in workbook order.
const (
	SheetCompany        = "company_information"
	SheetContact        = "contact_information"
	SheetSocial         = "social_media"
	SheetPeople         = "people_information"
	SheetDescription    = "description & industry"
	SheetCertifications = "certifications"
	SheetServices       = "services"
)

// sheet is one tab: a header row plus a row builder per profile. A builder
// may return several rows (people) or exactly one.
type sheet struct {
	name    string
	headers []string
	rows    func(p *model.CompanyProfile) [][]string
}

var sheets = []sheet{
	{
		name:    SheetCompany,
		headers: []string{"domain", "domain_status", "Company Registration Number", "VAT Number", "company_name", "Acronym", "logo_url", "tech_stack"},
		rows: func(p *model.CompanyProfile) [][]string {
			return [][]string{{p.Domain, p.DomainStatus, p.RegistrationNumber, p.VATNumber, p.Name, p.Acronym, p.LogoURL, joinList(p.TechStack)}}
		},
	},
	{
		name:    SheetContact,
		headers: []string{"domain", "text", "company_name", "full_address", "phone", "sales phone", "fax", "mobile", "other numbers", "email", "hours_of_operation", "HQ Indicator"},
		rows: func(p *model.CompanyProfile) [][]string {
			c := p.Contacts
			return [][]string{{p.Domain, "", p.Name, p.FullAddress, c.Phone, c.SalesPhone, c.Fax, c.Mobile, joinList(c.OtherNumbers), c.Email, c.Hours, p.HQIndicator}}
		},
	},
	{
		name:    SheetSocial,
		headers: []string{"domain", "linkedin", "facebook", "x", "Instagram", "Youtube", "blog", "articles"},
		rows: func(p *model.CompanyProfile) [][]string {
			s := p.Socials
			return [][]string{{p.Domain, s.LinkedIn, s.Facebook, s.Twitter, s.Instagram, s.YouTube, s.Blog, joinList(s.Articles)}}
		},
	},
	{
		name:    SheetPeople,
		headers: []string{"domain", "people_name", "people_title", "people_email", "url"},
		rows: func(p *model.CompanyProfile) [][]string {
			if len(p.KeyPeople) == 0 {
				return [][]string{{p.Domain, "", "", "", ""}}
			}
			out := make([][]string, 0, len(p.KeyPeople))
			for _, kp := range p.KeyPeople {
				out = append(out, []string{p.Domain, kp.Name, kp.Title, kp.Email, kp.LinkedInURL})
			}
			return out
		},
	},
	{
		name:    SheetDescription,
		headers: []string{"domain", "long description", "short description", "sic_code", "sic_text", "sub_industry", "industry", "sector", "tags"},
		rows: func(p *model.CompanyProfile) [][]string {
			return [][]string{{p.Domain, p.DescriptionLong, p.DescriptionShort, p.SICCode, p.SICText, p.SubIndustry, p.Industry, p.Sector, joinList(p.Tags)}}
		},
	},
	{
		name:    SheetCertifications,
		headers: []string{"domain", "certifications"},
		rows: func(p *model.CompanyProfile) [][]string {
			return [][]string{{p.Domain, joinList(p.Certifications)}}
		},
	},
	{
		name:    SheetServices,
		headers: []string{"domain", "products & services", "type"},
		rows: func(p *model.CompanyProfile) [][]string {
			return [][]string{{p.Domain, joinList(p.ProductsServices), p.ServiceType}}
		},
	},
}

// Writer writes workbooks into a report directory.
type Writer struct {
	dir    string
	prefix string
	now    func() time.Time
}

// NewWriter creates a Writer from report config.
func NewWriter(cfg config.ReportConfig) *Writer {
	prefix := cfg.Prefix
	if prefix == "" {
		prefix = DefaultPrefix
	}
	dir := cfg.Dir
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir, prefix: prefix, now: time.Now}
}

// FileName returns <prefix>_<YYYYMMDD_HHMMSS>.xlsx for t.
func (w *Writer) FileName(t time.Time) string {
	return w.prefix + "_" + t.Format(timestampLayout) + ".xlsx"
}

// Write builds the workbook for profiles and saves it. It returns the path
// of the written file.
func (w *Writer) Write(profiles []*model.CompanyProfile) (string, error) {
	f, err := Build(profiles)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "report: create dir %s", w.dir)
	}

	path := filepath.Join(w.dir, w.FileName(w.now()))
	if err := f.Save(path); err != nil {
		return "", eris.Wrapf(err, "report: save %s", path)
	}

	zap.L().Info("report written",
		zap.String("path", path),
		zap.Int("profiles", len(profiles)),
	)
	return path, nil
}

// Build assembles the in-memory workbook. Nil profiles are skipped.
func Build(profiles []*model.CompanyProfile) (*xlsx.File, error) {
	f := xlsx.NewFile()
	for _, s := range sheets {
		sh, err := f.AddSheet(s.name)
		if err != nil {
			return nil, eris.Wrapf(err, "report: add sheet %s", s.name)
		}
		addRow(sh, s.headers)
		for _, p := range profiles {
			if p == nil {
				continue
			}
			for _, r := range s.rows(p) {
				addRow(sh, r)
			}
		}
	}
	return f, nil
}

func addRow(sh *xlsx.Sheet, values []string) {
	row := sh.AddRow()
	for _, v := range values {
		row.AddCell().SetString(v)
	}
}

func joinList(items []string) string {
	return strings.Join(items, ", ")
}
