package source

import "github.com/sells-group/outreach-cli/internal/model"

// sampleLeads are five realistic seed leads shaped like Apollo enrichment
// data: VP/Head of Engineering at post-Series A/B SaaS companies in the
// 100-1,000 employee range, spanning SaaS sub-verticals.
var sampleLeads = []model.CandidateLead{
	{
		ID:          "lead-001",
		Name:        "Sarah Chen",
		Title:       "VP of Engineering",
		LinkedInURL: "https://linkedin.com/in/sarah-chen-eng",
		Company:     "Stackline",
		CompanySize: 280,
		Location:    "San Francisco, CA, US",
		Industry:    "B2B SaaS / Retail Analytics",
		TechStack: []string{
			"Kubernetes", "GitHub Actions", "AWS", "Terraform", "Python", "React",
		},
		HiringSignals: []string{
			"Senior Backend Engineer (3 open roles)",
			"DevOps / Platform Engineer",
			"Staff Engineer - Infrastructure",
		},
		FundingEvents: []string{
			"Series B $45M led by Sapphire Ventures (March 2024)",
		},
		CompanySummary: "Stackline is a retail analytics SaaS platform that helps consumer brands measure and optimize their e-commerce presence across Amazon, Walmart, and Target. The platform processes petabytes of retail data daily and serves 2,000+ brands including Nike and Samsung.",
	},
	{
		ID:          "lead-002",
		Name:        "Marcus Williams",
		Title:       "Head of Engineering",
		LinkedInURL: "https://linkedin.com/in/marcus-williams-hoe",
		Company:     "Finli",
		CompanySize: 165,
		Location:    "New York, NY, US",
		Industry:    "B2B SaaS / FinTech",
		TechStack: []string{
			"Docker", "CircleCI", "GCP", "Node.js", "Go", "PostgreSQL",
		},
		HiringSignals: []string{
			"Senior Software Engineer - Payments",
			"Engineering Manager - Platform",
			"Site Reliability Engineer",
		},
		FundingEvents: []string{
			"Series A $18M led by Lightspeed (November 2023)",
		},
		CompanySummary: "Finli is a payments and invoicing platform for small business owners, enabling them to get paid faster and manage cash flow. They recently expanded from mobile-only to a full web application, tripling their codebase in 12 months.",
	},
	{
		ID:          "lead-003",
		Name:        "Priya Nair",
		Title:       "VP Engineering",
		LinkedInURL: "https://linkedin.com/in/priya-nair-vpe",
		Company:     "Memo Health",
		CompanySize: 420,
		Location:    "Austin, TX, US",
		Industry:    "B2B SaaS / HealthTech",
		TechStack: []string{
			"Kubernetes", "Jenkins", "AWS", "Java", "React", "Kafka",
		},
		HiringSignals: []string{
			"Principal Engineer - Backend",
			"DevOps Engineer (2 open roles)",
			"Software Engineer - Data Platform",
			"Engineering Manager",
		},
		FundingEvents: []string{
			"Series B $62M led by General Catalyst (January 2024)",
			"Series A $15M (2022)",
		},
		CompanySummary: "Memo Health builds care coordination software used by 300+ hospital networks and insurance providers. Their platform surfaces care gaps and automates prior authorizations, and they are scaling rapidly after doubling ARR in 2023.",
	},
	{
		ID:          "lead-004",
		Name:        "David Park",
		Title:       "Head of Engineering",
		LinkedInURL: "https://linkedin.com/in/david-park-engineering",
		Company:     "Launchpad HQ",
		CompanySize: 110,
		Location:    "Seattle, WA, US",
		Industry:    "B2B SaaS / Developer Tools",
		TechStack: []string{
			"Docker", "GitHub Actions", "AWS Lambda", "TypeScript", "Rust", "PostgreSQL",
		},
		HiringSignals: []string{
			"Senior Full-Stack Engineer",
			"Platform / Infrastructure Engineer",
		},
		FundingEvents: []string{
			"Series A $12M led by Andreessen Horowitz (August 2023)",
		},
		CompanySummary: "Launchpad HQ is a developer productivity platform that unifies sprint planning, PR review, and on-call schedules into a single workflow hub. It integrates with GitHub, Jira, and PagerDuty and is used by 800+ engineering teams.",
	},
	{
		ID:          "lead-005",
		Name:        "Aisha Thompson",
		Title:       "VP of Engineering",
		LinkedInURL: "https://linkedin.com/in/aisha-thompson-vpe",
		Company:     "Rentable",
		CompanySize: 340,
		Location:    "Chicago, IL, US",
		Industry:    "B2B SaaS / PropTech",
		TechStack: []string{
			"Kubernetes", "Bitbucket Pipelines", "AWS", "Ruby on Rails", "React", "Redis",
		},
		HiringSignals: []string{
			"Senior Software Engineer - Backend (4 open roles)",
			"Staff Engineer - Platform",
			"Cloud Infrastructure Engineer",
		},
		FundingEvents: []string{
			"Series B $35M led by Moderne Ventures (October 2023)",
		},
		CompanySummary: "Rentable is a multifamily housing SaaS platform that powers lease management, rent payments, and maintenance workflows for 1,200+ apartment operators across the US. After their Series B they are rebuilding their monolith into microservices.",
	},
}
