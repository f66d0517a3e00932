package model

// SellerContext describes the product being sold and the sender identity
// embedded in generated emails.
type SellerContext struct {
	CompanyName        string   `json:"companyName" yaml:"company_name" mapstructure:"company_name"`
	ProductDescription string   `json:"productDescription" yaml:"product_description" mapstructure:"product_description"`
	ValueProps         []string `json:"valueProps" yaml:"value_props" mapstructure:"value_props"`
	SenderName         string   `json:"senderName" yaml:"sender_name" mapstructure:"sender_name"`
	SenderTitle        string   `json:"senderTitle" yaml:"sender_title" mapstructure:"sender_title"`
	SenderEmail        string   `json:"senderEmail" yaml:"sender_email" mapstructure:"sender_email"`
}

// IsZero reports whether no seller fields were provided.
func (s SellerContext) IsZero() bool {
	return s.CompanyName == "" && s.ProductDescription == "" && len(s.ValueProps) == 0 &&
		s.SenderName == "" && s.SenderTitle == "" && s.SenderEmail == ""
}

// DefaultSellerContext is the built-in seller profile used when a request
// carries no companyContext and none is configured.
func DefaultSellerContext() SellerContext {
	return SellerContext{
		CompanyName:        "DeployFlow",
		ProductDescription: "A unified CI/CD and deployment platform that replaces Jenkins, self-managed GitHub Actions runners, or Bitbucket Pipelines with managed, auto-scaling pipeline infrastructure.",
		ValueProps: []string{
			"Speed: teams cut median build + deploy time by 60% through intelligent caching, parallelized test runs, and ephemeral build environments.",
			"Reliability: built-in deployment health checks, automatic rollback on error-rate spikes, and per-PR preview environments eliminate broken releases.",
			"Scale without DevOps headcount: DeployFlow self-tunes as teams grow; companies going from 5 to 50 engineers don't need a dedicated platform team.",
			"Observability: a single pane of glass for pipeline duration, flakiness trends, and deployment frequency, with key DORA metrics out of the box.",
			"Migration ease: 90-minute guided migration from GitHub Actions or Jenkins; dedicated onboarding engineer included.",
		},
		SenderName:  "Alex Rivera",
		SenderTitle: "Account Executive",
		SenderEmail: "alex.rivera@deployflow.io",
	}
}
