package catalog

import "github.com/okian/eeat/internal/domain/model"

// DefaultVersion tags the compiled-in catalog.
const DefaultVersion = "2025.2"

// Group ids of the default catalog.
const (
	GroupBrand   = "brand"
	GroupContent = "content"
	GroupAuthor  = "author"
)

func all() []model.Intent { return []model.Intent{model.IntentAll} }

func info() []model.Intent { return []model.Intent{model.IntentInformational} }

// Default returns the canonical catalog: site-wide brand and trust signals
// followed by page-level content and author signals.
func Default() *Catalog {
	c, err := New(DefaultVersion, defaultGroups()...)
	if err != nil {
		panic(err)
	}
	return c
}

func defaultGroups() []Group {
	return []Group{
		{
			ID:          GroupBrand,
			Name:        "Brand & Trust Signals",
			Description: "Site-wide signals that establish domain credibility",
			Scope:       ScopeDomain,
			Source:      "domain",
			Signals: []Signal{
				{ID: "d1", Label: "Physical business address visible", Concept: model.Trust, Weight: 2, Intents: all(), Key: "contactAddress",
					Remediation: "Add physical business address to footer and Contact page. Avoid PO boxes or virtual addresses."},
				{ID: "d2", Label: "Phone number visible", Concept: model.Trust, Weight: 2, Intents: all(), Key: "phone",
					Remediation: "Display a phone number prominently in header or footer. Consider click-to-call for mobile."},
				{ID: "d3", Label: "Contact email from main domain", Concept: model.Trust, Weight: 2, Intents: all(), Key: "email",
					Remediation: "Use professional email from your domain (contact@yourdomain.com), not Gmail/Yahoo."},
				{ID: "d4", Label: "Dedicated Contact Us page", Concept: model.Trust, Weight: 2, Intents: all(), Key: "contactPage",
					Remediation: "Create a dedicated Contact Us page with multiple contact methods."},
				{ID: "d5", Label: "Valid SSL certificate", Concept: model.Trust, Weight: 3, Intents: all(), Key: "ssl",
					Remediation: "Ensure SSL certificate is installed, valid, and not expired. Check for mixed content warnings."},
				{ID: "d6", Label: "Privacy Policy page", Concept: model.Trust, Weight: 2, Intents: all(), Key: "privacyPolicy",
					Remediation: "Create comprehensive Privacy Policy page and link prominently in footer."},
				{ID: "d7", Label: "Terms & Conditions page", Concept: model.Trust, Weight: 2, Intents: all(), Key: "terms",
					Remediation: "Add Terms & Conditions page covering user rights, limitations, and legal disclaimers."},
				{ID: "d8", Label: "Detailed About Us page", Concept: model.Authority, Weight: 3, Intents: all(), Key: "aboutPage",
					Remediation: "Develop detailed About Us page with company history, mission, team bios, and expertise."},
				{ID: "d9", Label: "Meet the Team page", Concept: model.Trust, Weight: 2, Intents: all(), Key: "teamPage",
					Remediation: "Create Meet the Team page showcasing key team members with photos and backgrounds."},
				{ID: "d10", Label: "Accreditations/memberships displayed", Concept: model.Trust, Weight: 2, Intents: all(), ManualCheck: true, Key: "accreditations",
					Remediation: "Display industry accreditations, certifications, and professional memberships."},
				{ID: "d11", Label: "Press coverage/As Featured In", Concept: model.Authority, Weight: 2, Intents: all(), ManualCheck: true, Key: "pressCoverage",
					Remediation: "Add 'As Featured In' section with logos and links to press coverage."},
				{ID: "d12", Label: "Editorial Policy page", Concept: model.Trust, Weight: 2, Intents: all(), Key: "editorialPolicy",
					Remediation: "Publish Editorial Policy explaining content standards, fact-checking, and update processes."},
				{ID: "d13", Label: "Social media links visible", Concept: model.Trust, Weight: 1, Intents: all(), Key: "socialLinks",
					Remediation: "Add social media icons in header/footer linking to active company profiles."},
				{ID: "d14", Label: "Organization Schema markup", Concept: model.Trust, Weight: 2, Intents: all(), ManualCheck: true, Key: "orgSchema",
					Remediation: "Implement Organization Schema markup with logo, contact info, and social profiles."},
				{ID: "d15", Label: "Reviews/testimonials on site", Concept: model.Trust, Weight: 2, Intents: all(), Key: "testimonials",
					Remediation: "Display customer testimonials and reviews prominently on relevant pages."},
				{ID: "d16", Label: "Third-party reviews (Google, Trustpilot, etc.)", Concept: model.Trust, Weight: 3, Intents: all(), ManualCheck: true, Key: "thirdPartyReviews",
					Remediation: "Integrate third-party review widgets (Google Reviews, Trustpilot, etc.)."},
				{ID: "d17", Label: "Case studies/customer stories", Concept: model.Trust, Weight: 2, Intents: all(), Key: "caseStudies",
					Remediation: "Publish detailed case studies showing real results and customer success stories."},
				{ID: "d18", Label: "Clear topical focus area", Concept: model.Authority, Weight: 2, Intents: all(), ManualCheck: true, Key: "topicalFocus",
					Remediation: "Ensure site maintains clear topical focus rather than covering unrelated subjects."},
			},
		},
		{
			ID:          GroupContent,
			Name:        "Content Quality Signals",
			Description: "Page-specific content quality indicators",
			Scope:       ScopePage,
			Source:      "content",
			Signals: []Signal{
				{ID: "c1", Label: "Author clearly displayed", Concept: model.Expertise, Weight: 3, Intents: info(), Key: "author",
					Remediation: "Add clear author attribution with full name on all content pages."},
				{ID: "c2", Label: "Author is subject matter expert", Concept: model.Expertise, Weight: 3, Intents: info(), ManualCheck: true, Key: "authorExpert",
					Remediation: "Ensure content is written by qualified subject matter experts in the field."},
				{ID: "c3", Label: "Link to author profile page", Concept: model.Expertise, Weight: 2, Intents: info(), Key: "authorLink",
					Remediation: "Link author names to dedicated author profile pages with full bios."},
				{ID: "c4", Label: "Appropriate Schema markup (Article, Product, etc.)", Concept: model.Expertise, Weight: 2, Intents: all(), ManualCheck: true, Key: "schema",
					Remediation: "Implement Article, BlogPosting, Product, or appropriate Schema markup."},
				{ID: "c5", Label: "Publish date shown", Concept: model.Authority, Weight: 2, Intents: info(), Key: "publishDate",
					Remediation: "Display publish date on all content pages."},
				{ID: "c6", Label: "Last updated date shown", Concept: model.Authority, Weight: 2, Intents: info(), Key: "updateDate",
					Remediation: "Show 'last updated' date, especially for evergreen content."},
				{ID: "c7", Label: "Content is factually up-to-date", Concept: model.Authority, Weight: 3, Intents: info(), ManualCheck: true, Key: "upToDate",
					Remediation: "Review and update content regularly to ensure accuracy."},
				{ID: "c8", Label: "Medical/Legal/Financial reviewer (YMYL)", Concept: model.Expertise, Weight: 3, Intents: info(), Key: "reviewer",
					Remediation: "For YMYL content, display medical/legal/financial reviewer credentials."},
				{ID: "c9", Label: "Original photos/videos/visuals", Concept: model.Experience, Weight: 3, Intents: []model.Intent{model.IntentInformational, model.IntentCommercial}, ManualCheck: true, Key: "uniqueMedia",
					Remediation: "Use original photos, screenshots, and videos instead of stock imagery."},
				{ID: "c10", Label: "Free from spelling/grammar errors", Concept: model.Authority, Weight: 2, Intents: all(), Key: "grammar",
					Remediation: "Proofread all content. Use grammar tools and consider professional editing."},
				{ID: "c11", Label: "Links to authoritative sources", Concept: model.Authority, Weight: 3, Intents: info(), Key: "sources",
					Remediation: "Add citations and links to authoritative sources when making claims."},
				{ID: "c12", Label: "Factually accurate content", Concept: model.Expertise, Weight: 3, Intents: info(), ManualCheck: true, Key: "factual",
					Remediation: "Fact-check all content. Cite primary sources and expert opinions."},
				{ID: "c13", Label: "Free from distracting/intrusive ads", Concept: model.Trust, Weight: 2, Intents: all(), Key: "noAds",
					Remediation: "Remove or minimize intrusive ads. Ensure ads don't interfere with content."},
				{ID: "c14", Label: "Clear human effort demonstrated", Concept: model.Authority, Weight: 2, Intents: all(), ManualCheck: true, Key: "effort",
					Remediation: "Demonstrate clear effort and original research. Avoid thin or AI-generated content."},
				{ID: "c15", Label: "Unique insights or perspectives", Concept: model.Expertise, Weight: 3, Intents: info(), ManualCheck: true, Key: "insights",
					Remediation: "Include unique perspectives, expert quotes, and original insights."},
				{ID: "c16", Label: "Matches searcher intent", Concept: model.Expertise, Weight: 3, Intents: all(), ManualCheck: true, Key: "intentMatch",
					Remediation: "Align content with search intent. Check SERP to understand what users expect."},
				{ID: "c17", Label: "Written from first-hand experience", Concept: model.Experience, Weight: 3, Intents: info(), ManualCheck: true, Key: "experience",
					Remediation: "Write from first-hand experience. Include personal insights and real examples."},
				{ID: "c18", Label: "Product details accurate and complete", Concept: model.Expertise, Weight: 3, Intents: []model.Intent{model.IntentCommercial}, ManualCheck: true, Key: "productDetails",
					Remediation: "Ensure product specifications, features, and details are accurate and complete."},
				{ID: "c19", Label: "Clear pricing/availability info", Concept: model.Trust, Weight: 2, Intents: []model.Intent{model.IntentCommercial, model.IntentService}, Key: "pricing",
					Remediation: "Display clear pricing, availability, and shipping information."},
				{ID: "c20", Label: "Clear call-to-action", Concept: model.Trust, Weight: 2, Intents: []model.Intent{model.IntentCommercial, model.IntentService, model.IntentTransactional}, Key: "cta",
					Remediation: "Include clear, prominent call-to-action buttons or links."},
			},
		},
		{
			ID:          GroupAuthor,
			Name:        "Author Credibility Signals",
			Description: "Signals establishing author expertise (primarily for informational content)",
			Scope:       ScopePage,
			Source:      "author",
			Signals: []Signal{
				{ID: "a1", Label: "Standalone author profile page exists", Concept: model.Authority, Weight: 3, Intents: info(), Key: "profile",
					Remediation: "Create standalone author profile pages with comprehensive bios."},
				{ID: "a2", Label: "Author has first-hand experience in topic", Concept: model.Experience, Weight: 3, Intents: info(), ManualCheck: true, Key: "firstHand",
					Remediation: "Feature authors with demonstrable first-hand experience in topics."},
				{ID: "a3", Label: "Author has formal expertise/credentials", Concept: model.Expertise, Weight: 3, Intents: info(), ManualCheck: true, Key: "expertise",
					Remediation: "Highlight formal education, degrees, and professional training."},
				{ID: "a4", Label: "Author bio is detailed and current", Concept: model.Expertise, Weight: 2, Intents: info(), Key: "bio",
					Remediation: "Keep author bios current with recent achievements and roles."},
				{ID: "a5", Label: "Author headshot/photo displayed", Concept: model.Expertise, Weight: 2, Intents: info(), Key: "photo",
					Remediation: "Add professional headshots to author profiles and bylines."},
				{ID: "a6", Label: "Author job title displayed", Concept: model.Expertise, Weight: 2, Intents: info(), Key: "title",
					Remediation: "Display job titles that demonstrate relevant expertise."},
				{ID: "a7", Label: "Professional credentials shown", Concept: model.Expertise, Weight: 3, Intents: info(), ManualCheck: true, Key: "credentials",
					Remediation: "Show professional certifications, licenses, and accreditations."},
				{ID: "a8", Label: "Links to author social profiles", Concept: model.Expertise, Weight: 2, Intents: info(), Key: "social",
					Remediation: "Link to author LinkedIn, Twitter/X, and professional profiles."},
				{ID: "a9", Label: "Author cited as expert elsewhere", Concept: model.Authority, Weight: 3, Intents: info(), ManualCheck: true, Key: "pressCited",
					Remediation: "Pursue PR opportunities to get authors cited as experts in media."},
				{ID: "a10", Label: "Author has multiple posts on topic", Concept: model.Authority, Weight: 2, Intents: info(), ManualCheck: true, Key: "multiplePosts",
					Remediation: "Build content depth by publishing multiple related articles per author."},
				{ID: "a11", Label: "ProfilePage Schema markup", Concept: model.Expertise, Weight: 2, Intents: info(), ManualCheck: true, Key: "profileSchema",
					Remediation: "Implement ProfilePage Schema markup on author pages."},
			},
		},
	}
}
