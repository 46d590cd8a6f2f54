package pipeline

import (
	"strings"

	"github.com/sells-group/company-research/internal/model"
)

// binding writes one field value into a profile. Bindings only fill empty
// attributes, so validated data is never replaced by later writes.
type binding func(p *model.CompanyProfile, v model.Value)

func scalar(dst func(p *model.CompanyProfile) *string) binding {
	return func(p *model.CompanyProfile, v model.Value) {
		setString(dst(p), v.Text())
	}
}

func list(dst func(p *model.CompanyProfile) *[]string) binding {
	return func(p *model.CompanyProfile, v model.Value) {
		setList(dst(p), v)
	}
}

func setList(dst *[]string, v model.Value) {
	if len(*dst) > 0 {
		return
	}
	if v.Kind() == model.KindScalar {
		*dst = splitList(v.Text())
		return
	}
	*dst = v.StringList()
}

func setString(dst *string, s string) {
	if *dst == "" {
		*dst = strings.TrimSpace(s)
	}
}

// bindings maps canonical field IDs to profile attributes.
var bindings = map[string]binding{
	"long_description":    scalar(func(p *model.CompanyProfile) *string { return &p.DescriptionLong }),
	"short_description":   scalar(func(p *model.CompanyProfile) *string { return &p.DescriptionShort }),
	"industry":            scalar(func(p *model.CompanyProfile) *string { return &p.Industry }),
	"sub_industry":        scalar(func(p *model.CompanyProfile) *string { return &p.SubIndustry }),
	"sector":              scalar(func(p *model.CompanyProfile) *string { return &p.Sector }),
	"sic_code":            scalar(func(p *model.CompanyProfile) *string { return &p.SICCode }),
	"sic_text":            scalar(func(p *model.CompanyProfile) *string { return &p.SICText }),
	"service_type":        scalar(func(p *model.CompanyProfile) *string { return &p.ServiceType }),
	"hq_indicator":        scalar(func(p *model.CompanyProfile) *string { return &p.HQIndicator }),
	"year_founded":        scalar(func(p *model.CompanyProfile) *string { return &p.YearFounded }),
	"company_size":        scalar(func(p *model.CompanyProfile) *string { return &p.CompanySize }),
	"registration_number": scalar(func(p *model.CompanyProfile) *string { return &p.RegistrationNumber }),
	"vat_number":          scalar(func(p *model.CompanyProfile) *string { return &p.VATNumber }),
	"acronym":             scalar(func(p *model.CompanyProfile) *string { return &p.Acronym }),
	"tags":                list(func(p *model.CompanyProfile) *[]string { return &p.Tags }),
	"products_services":   list(func(p *model.CompanyProfile) *[]string { return &p.ProductsServices }),
	"locations":           list(func(p *model.CompanyProfile) *[]string { return &p.Locations }),
	"tech_stack":          list(func(p *model.CompanyProfile) *[]string { return &p.TechStack }),
	"certifications":      list(func(p *model.CompanyProfile) *[]string { return &p.Certifications }),
	"key_people":          bindPeople,
	"contact_info":        bindContacts,
	"social_media":        bindSocials,
}

func bindPeople(p *model.CompanyProfile, v model.Value) {
	if len(p.KeyPeople) > 0 {
		return
	}
	for _, it := range v.Items() {
		var kp model.KeyPerson
		switch it.Kind() {
		case model.KindMapping:
			kp = model.KeyPerson{
				Name:         strings.TrimSpace(it.Get("name").Text()),
				Title:        strings.TrimSpace(it.Get("title").Text()),
				RoleCategory: strings.TrimSpace(it.Get("role_category").Text()),
				Email:        strings.TrimSpace(it.Get("email").Text()),
				LinkedInURL:  strings.TrimSpace(it.Get("linkedin_url").Text()),
			}
		case model.KindScalar:
			kp.Name = strings.TrimSpace(it.Text())
		}
		if kp.Name == "" {
			continue
		}
		if kp.RoleCategory == "" {
			kp.RoleCategory = "Management"
		}
		p.KeyPeople = append(p.KeyPeople, kp)
	}
}

func bindContacts(p *model.CompanyProfile, v model.Value) {
	c := &p.Contacts
	setString(&c.Phone, v.Get("phone").Text())
	setString(&c.SalesPhone, v.Get("sales").Text())
	setString(&c.Email, v.Get("email").Text())
	setString(&c.Fax, v.Get("fax").Text())
	setString(&c.Mobile, v.Get("mobile").Text())
	setString(&c.Hours, v.Get("hours").Text())
	setList(&c.OtherNumbers, Clean(v.Get("other_numbers")))
	setString(&p.FullAddress, v.Get("address").Text())
}

func bindSocials(p *model.CompanyProfile, v model.Value) {
	s := &p.Socials
	setString(&s.LinkedIn, v.Get("linkedin").Text())
	setString(&s.Twitter, v.Get("twitter").Text())
	setString(&s.Facebook, v.Get("facebook").Text())
	setString(&s.Instagram, v.Get("instagram").Text())
	setString(&s.YouTube, v.Get("youtube").Text())
	setString(&s.Blog, v.Get("blog").Text())
	setList(&s.Articles, Clean(v.Get("articles")))
}

// Assembler maps field values onto a profile.
type Assembler struct {
	fields *model.FieldRegistry
}

// NewAssembler returns an assembler resolving names through fields.
func NewAssembler(fields *model.FieldRegistry) *Assembler {
	return &Assembler{fields: fields}
}

// Assemble writes every non-empty value into p. Empty values leave the
// attribute at its default. Unknown fields are ignored.
func (a *Assembler) Assemble(p *model.CompanyProfile, values map[string]model.Value) {
	for name, v := range values {
		if v.IsZero() {
			continue
		}
		id, ok := a.fields.Canonical(name)
		if !ok {
			id = name
		}
		bind, ok := bindings[id]
		if !ok {
			continue
		}
		bind(p, Coerce(a.fields.ByID(id), v))
	}
}
