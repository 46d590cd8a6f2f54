package model

// KeyPerson is a member of the company's leadership.
type KeyPerson struct {
	Name         string `json:"name"`
	Title        string `json:"title"`
	RoleCategory string `json:"role_category"`
	Email        string `json:"email,omitempty"`
	LinkedInURL  string `json:"linkedin_url,omitempty"`
}

// Contacts groups the company's contact channels.
type Contacts struct {
	Email        string   `json:"email,omitempty"`
	Phone        string   `json:"phone,omitempty"`
	SalesPhone   string   `json:"sales_phone,omitempty"`
	Fax          string   `json:"fax,omitempty"`
	Mobile       string   `json:"mobile,omitempty"`
	OtherNumbers []string `json:"other_numbers,omitempty"`
	Hours        string   `json:"hours_of_operation,omitempty"`
}

// Socials groups the company's social media presence.
type Socials struct {
	LinkedIn  string   `json:"linkedin,omitempty"`
	Twitter   string   `json:"twitter,omitempty"`
	Facebook  string   `json:"facebook,omitempty"`
	Instagram string   `json:"instagram,omitempty"`
	YouTube   string   `json:"youtube,omitempty"`
	Blog      string   `json:"blog,omitempty"`
	Articles  []string `json:"articles,omitempty"`
}

// CompanyProfile is the terminal record of one research run.
type CompanyProfile struct {
	Name               string `json:"name"`
	Domain             string `json:"domain"`
	DomainStatus       string `json:"domain_status"`
	RegistrationNumber string `json:"company_registration_number,omitempty"`
	VATNumber          string `json:"vat_number,omitempty"`
	Acronym            string `json:"acronym,omitempty"`
	LogoURL            string `json:"logo_url,omitempty"`
	YearFounded        string `json:"year_founded,omitempty"`
	CompanySize        string `json:"company_size,omitempty"`

	DescriptionShort string   `json:"description_short"`
	DescriptionLong  string   `json:"description_long"`
	Industry         string   `json:"industry"`
	SubIndustry      string   `json:"sub_industry"`
	Sector           string   `json:"sector"`
	SICCode          string   `json:"sic_code,omitempty"`
	SICText          string   `json:"sic_text,omitempty"`
	Tags             []string `json:"tags"`

	ProductsServices []string `json:"products_services"`
	ServiceType      string   `json:"service_type,omitempty"`
	Certifications   []string `json:"certifications"`

	Locations   []string `json:"locations"`
	FullAddress string   `json:"full_address,omitempty"`
	HQIndicator string   `json:"hq_indicator"`

	Contacts  Contacts    `json:"contacts"`
	Socials   Socials     `json:"socials"`
	TechStack []string    `json:"tech_stack"`
	KeyPeople []KeyPerson `json:"key_people"`

	Graph Graph `json:"graph"`
}

// NewCompanyProfile returns a profile with defaults for a domain.
func NewCompanyProfile(name, domain string) *CompanyProfile {
	return &CompanyProfile{
		Name:         name,
		Domain:       domain,
		DomainStatus: "Active",
	}
}

// NodeType is the kind of a graph node.
type NodeType string

const (
	NodeCompany  NodeType = "Company"
	NodePerson   NodeType = "Person"
	NodeLocation NodeType = "Location"
	NodeProduct  NodeType = "Product"
)

// Relation labels a graph edge.
type Relation string

const (
	RelWorksAt   Relation = "works_at"
	RelProduces  Relation = "produces"
	RelLocatedAt Relation = "located_at"
)

// GraphNode is one entity in the derived company graph.
type GraphNode struct {
	ID         string            `json:"id"`
	Label      string            `json:"label"`
	Type       NodeType          `json:"type"`
	Properties map[string]string `json:"properties,omitempty"`
}

// GraphEdge is a directed relation between two nodes.
type GraphEdge struct {
	Source   string   `json:"source"`
	Target   string   `json:"target"`
	Relation Relation `json:"relation"`
}

// Graph is derived from a finished profile and never fed back into extraction.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}
