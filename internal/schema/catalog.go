// internal/schema/catalog.go
//
// The site catalog: every table the API serves, declared as Go literals.
//
// Context
// -------
// Pages are singleton rows (id = 1) edited field by field from the admin
// panel.  Collections are services, blogs, tags, and partners.  Submissions
// are append-only intake tables.  Route names match the URL segment used by
// both the public and the admin routers.
//
// Notes
// -----
//   - Column lists mirror the admin editor forms.  Adding a field means
//     adding the column here and in the database; nothing else changes.
package schema

import "fmt"

// numbered expands a pattern with a %d verb for 1..n.
func numbered(pattern string, n int) []string {
	out := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, fmt.Sprintf(pattern, i))
	}
	return out
}

func concat(parts ...[]string) []string {
	var out []string
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

var socialColumns = []string{
	"social_facebook", "social_instagram", "social_linkedin",
	"social_pinterest", "social_twitter",
}

//
// Pages
//

var (
	HomePage = newTable(Table{
		Name: "home_page", Route: "home", Kind: SingletonPage,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true, Stamped: true,
		Plain: concat(
			[]string{"hero_image", "about_image", "about_phone",
				"testimonial_author", "testimonial_quote_icon"},
			numbered("feature%d_icon", 3),
			numbered("funfact_%d_number", 4),
			numbered("funfact_%d_symbol", 4),
			numbered("funfact_%d_icon", 4),
		),
		Localized: concat(
			[]string{"hero_title", "hero_subtitle", "hero_button",
				"about_tag", "about_title", "about_description", "about_description_bold",
				"services_tag", "services_title", "services_description"},
			numbered("feature%d_title", 3),
			numbered("feature%d_description", 3),
			[]string{"testimonial_quote"},
			numbered("funfact_%d_label", 4),
			[]string{"partner_tag", "partner_title", "partner_description", "partner_button",
				"blog_tag", "blog_title", "blog_description"},
		),
	})

	GlobalContent = newTable(Table{
		Name: "global_content", Route: "global", Kind: SingletonPage,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true, Stamped: true,
		Plain: concat(
			[]string{"logo_url", "logo_white", "phone", "email", "address"},
			socialColumns,
		),
		Localized: []string{"footer_about_text", "footer_nav_title",
			"footer_contact_title", "footer_copyright"},
	})

	ContactForm = newTable(Table{
		Name: "contact_form", Route: "contact-form", Kind: SingletonPage,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true, Stamped: true,
		Localized: []string{"title", "subtitle", "name_placeholder", "email_placeholder",
			"phone_placeholder", "subject_placeholder", "message_placeholder",
			"submit_button_text", "success_message"},
	})

	ServicesPage = newTable(Table{
		Name: "services_page", Route: "services-page", Kind: SingletonPage,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true, Stamped: true,
		Plain: []string{"background_image"},
		Localized: []string{"page_title", "page_breadcrumb", "section_tag",
			"section_title", "section_description"},
	})

	ServiceSinglePage = newTable(Table{
		Name: "service_single_page", Route: "service-single-page", Kind: SingletonPage,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true, Stamped: true,
		Plain: []string{"sidebar_help_phone"},
		Localized: concat(
			[]string{"page_breadcrumb", "sidebar_all_services", "sidebar_features_title"},
			numbered("sidebar_feature_%d", 4),
			[]string{"sidebar_help_title", "sidebar_help_text", "sidebar_contact_link"},
		),
	})

	BlogPage = newTable(Table{
		Name: "blog_page", Route: "blog-page", Kind: SingletonPage,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true, Stamped: true,
		Plain:     []string{"background_image"},
		Localized: []string{"page_title", "page_breadcrumb", "read_more"},
	})

	BlogSinglePage = newTable(Table{
		Name: "blog_single_page", Route: "blog-single-page", Kind: SingletonPage,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true, Stamped: true,
		Plain: []string{"background_image"},
		Localized: []string{"page_breadcrumb", "tags_label", "share_label",
			"sidebar_search_title", "sidebar_recent_title", "sidebar_tags_title"},
	})

	AboutPage = newTable(Table{
		Name: "about_page", Route: "about", Kind: SingletonPage,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true, Stamped: true,
		Plain: concat(
			[]string{"background_image", "profile_image", "name", "phone", "email"},
			socialColumns,
		),
		Localized: []string{"page_title", "page_breadcrumb", "title", "experience",
			"about_title", "about_content", "experience_title", "experience_content",
			"education_title", "education_content", "achievements_title",
			"achievements_content", "address"},
	})
)

//
// Collections
//

var (
	Tags = newTable(Table{
		Name: "tags", Route: "tags", Kind: TaggedItem,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true,
		Plain:     []string{"slug"},
		Localized: []string{"name"},
		Slug:      "slug",
		Order:     OrderID,
	})

	Services = newTable(Table{
		Name: "services", Route: "services", Kind: PublishedCollection,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true, Stamped: true,
		Plain: []string{"slug", "icon", "sort_order", "is_published"},
		Localized: concat(
			[]string{"title", "description"},
			numbered("section_%d_title", 3),
			numbered("section_%d_content", 3),
		),
		Published: "is_published",
		Slug:      "slug",
		Order:     OrderSortPosition,
	})

	Blogs = newTable(Table{
		Name: "blogs", Route: "blogs", Kind: PublishedCollection,
		Strategy: ColumnSuffixPerLanguage, CreatedAt: true, Stamped: true,
		Plain: []string{"slug", "image_url", "thumbnail_url", "background_image",
			"published_at", "is_published"},
		Localized: []string{"title", "description", "content"},
		Published: "is_published",
		Slug:      "slug",
		Order:     OrderPublishedDesc,
		Links: []Link{{
			Field:        "tag_ids",
			JoinTable:    "blog_tags",
			OwnerColumn:  "blog_id",
			TargetColumn: "tag_id",
			Target:       Tags,
			As:           "tags",
		}},
	})

	Partners = newTable(Table{
		Name: "partners", Route: "partners", Kind: PublishedCollection,
		Strategy: SingleLanguageAgnostic, CreatedAt: true,
		Plain:     []string{"name", "logo_url", "website_url", "sort_order", "is_published"},
		Published: "is_published",
		Order:     OrderSortPosition,
	})
)

//
// Submissions
//

var (
	ContactSubmissions = newTable(Table{
		Name: "contact_submissions", Route: "contact-submissions", Kind: AppendOnly,
		Strategy: SingleLanguageAgnostic, CreatedAt: true,
		Plain: []string{"name", "email", "phone", "subject", "message", "is_read"},
		Order: OrderCreatedDesc,
	})

	ServiceRequests = newTable(Table{
		Name: "service_requests", Route: "service-requests", Kind: AppendOnly,
		Strategy: SingleLanguageAgnostic, CreatedAt: true,
		Plain: []string{"service_id", "name", "email", "phone"},
		Order: OrderCreatedDesc,
	})
)

// Catalog indexes tables by route.
type Catalog struct {
	pages       map[string]*Table
	collections map[string]*Table
	pageOrder   []*Table
	collOrder   []*Table
}

// NewCatalog builds a catalog from the given tables; SingletonPage tables
// are indexed as pages, PublishedCollection and TaggedItem as collections.
// AppendOnly tables are not routable.
func NewCatalog(tables ...*Table) *Catalog {
	c := &Catalog{
		pages:       make(map[string]*Table),
		collections: make(map[string]*Table),
	}
	for _, t := range tables {
		switch t.Kind {
		case SingletonPage:
			c.pages[t.Route] = t
			c.pageOrder = append(c.pageOrder, t)
		case PublishedCollection, TaggedItem:
			c.collections[t.Route] = t
			c.collOrder = append(c.collOrder, t)
		}
	}
	return c
}

// Site returns the catalog served by the API.
func Site() *Catalog {
	return NewCatalog(
		HomePage, GlobalContent, ContactForm, ServicesPage, ServiceSinglePage,
		BlogPage, BlogSinglePage, AboutPage,
		Services, Blogs, Tags, Partners,
	)
}

// Page looks up a singleton page by route.
func (c *Catalog) Page(route string) (*Table, bool) {
	t, ok := c.pages[route]
	return t, ok
}

// Collection looks up a collection by route.
func (c *Catalog) Collection(route string) (*Table, bool) {
	t, ok := c.collections[route]
	return t, ok
}

// Pages returns pages in registration order.
func (c *Catalog) Pages() []*Table { return append([]*Table(nil), c.pageOrder...) }

// Collections returns collections in registration order.
func (c *Catalog) Collections() []*Table { return append([]*Table(nil), c.collOrder...) }
