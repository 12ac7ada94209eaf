package services

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"gorm.io/gorm"

	"cast-press/models"
)

// Bounds applied to every listing request. Limits are hard caps, not hints.
const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100

	MaxSearchLength   = 100
	MaxTagLength      = 50
	MaxCategoryLength = 50
	MaxAuthorLength   = 100
	MaxTags           = 10
)

// Characters kept by Sanitize besides letters, digits and whitespace.
// Pattern metacharacters (% and \) are deliberately absent; the lone
// survivor (_) is escaped again at query time by escapeLike.
const allowedPunctuation = "-_.,:!?'@#"

// ListParams carries the raw, untrusted query parameters of a listing request.
type ListParams struct {
	Page      string
	Limit     string
	Search    string
	Tags      string
	Category  string
	Status    string
	Author    string
	SortBy    string
	SortOrder string
}

// ListProfile parameterizes the builder per content type.
type ListProfile struct {
	// SearchColumns are matched case-insensitively against the search term.
	SearchColumns []string
	// SearchTags additionally matches the search term inside the tag array.
	SearchTags bool
	// CategoryCondition is the SQL condition the sanitized category value is
	// bound into. Empty disables category filtering.
	CategoryCondition string
	// CategoryPattern marks CategoryCondition as a pattern match; the bound
	// value then gets its ILIKE metacharacters escaped.
	CategoryPattern bool
	// AuthorColumn enables author filtering when non-empty.
	AuthorColumn string
	// SortColumns maps exposed sort names to database columns; anything not in
	// the map falls back to DefaultSort, so ORDER BY never sees caller input.
	SortColumns map[string]string
	DefaultSort string
}

// ArticleListProfile drives the article listing endpoints.
var ArticleListProfile = ListProfile{
	SearchColumns:     []string{"title", "content"},
	SearchTags:        true,
	CategoryCondition: "category = ?",
	AuthorColumn:      "author",
	SortColumns: map[string]string{
		"date":        "date",
		"title":       "title",
		"publishDate": "publish_date",
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
	},
	DefaultSort: "date",
}

// PodcastListProfile drives the podcast listing endpoints. Podcasts reference
// categories by id, so the category filter resolves the name first.
var PodcastListProfile = ListProfile{
	SearchColumns:     []string{"title", "description"},
	SearchTags:        true,
	CategoryCondition: "category_id IN (SELECT id FROM categories WHERE name ILIKE ?)",
	CategoryPattern:   true,
	SortColumns: map[string]string{
		"createdAt":   "created_at",
		"updatedAt":   "updated_at",
		"title":       "title",
		"publishDate": "publish_date",
	},
	DefaultSort: "createdAt",
}

// ListQuery is the validated result of parsing a listing request. Every field
// is safe to hand to the storage layer as-is.
type ListQuery struct {
	Page  int
	Limit int
	Skip  int

	Search   string
	Tags     []string
	Category string
	Status   string
	Author   string

	// SortField is the exposed name, SortColumn the database column it maps to.
	SortField     string
	SortColumn    string
	SortDirection string

	profile ListProfile
}

// ListFilters echoes what was actually applied, so clients can see how their
// input was normalized.
type ListFilters struct {
	Search    string   `json:"search,omitempty"`
	Tags      []string `json:"tags,omitempty"`
	Category  string   `json:"category,omitempty"`
	Status    string   `json:"status,omitempty"`
	Author    string   `json:"author,omitempty"`
	SortBy    string   `json:"sortBy"`
	SortOrder string   `json:"sortOrder"`
}

// Pagination describes the page window of a listing response.
type Pagination struct {
	CurrentPage     int   `json:"currentPage"`
	TotalPages      int   `json:"totalPages"`
	TotalItems      int64 `json:"totalItems"`
	HasNextPage     bool  `json:"hasNextPage"`
	HasPreviousPage bool  `json:"hasPreviousPage"`
	Limit           int   `json:"limit"`
}

// BuildListQuery turns untrusted request parameters into a safe, bounded
// query. It is a total function: every invalid input degrades to a default,
// never to an error. Listing endpoints must not 400 on a malformed filter.
func BuildListQuery(profile ListProfile, params ListParams) ListQuery {
	q := ListQuery{profile: profile}

	q.Page = parsePositiveInt(params.Page, DefaultPage)
	q.Limit = parsePositiveInt(params.Limit, DefaultLimit)
	if q.Limit > MaxLimit {
		q.Limit = MaxLimit
	}
	q.Skip = (q.Page - 1) * q.Limit

	q.Search = Sanitize(params.Search, MaxSearchLength)
	q.Category = Sanitize(params.Category, MaxCategoryLength)
	if profile.AuthorColumn != "" {
		q.Author = Sanitize(params.Author, MaxAuthorLength)
	}
	q.Tags = parseTags(params.Tags)

	if models.ValidStatus(params.Status) {
		q.Status = params.Status
	}

	q.SortField = params.SortBy
	if _, ok := profile.SortColumns[q.SortField]; !ok {
		q.SortField = profile.DefaultSort
	}
	q.SortColumn = profile.SortColumns[q.SortField]

	q.SortDirection = "desc"
	if params.SortOrder == "asc" {
		q.SortDirection = "asc"
	}

	return q
}

// Filters reports the applied filter set for the response envelope.
func (q ListQuery) Filters() ListFilters {
	return ListFilters{
		Search:    q.Search,
		Tags:      q.Tags,
		Category:  q.Category,
		Status:    q.Status,
		Author:    q.Author,
		SortBy:    q.SortField,
		SortOrder: q.SortDirection,
	}
}

// Pagination derives the page descriptor from the matching row count.
func (q ListQuery) Pagination(total int64) Pagination {
	totalPages := int((total + int64(q.Limit) - 1) / int64(q.Limit))
	return Pagination{
		CurrentPage:     q.Page,
		TotalPages:      totalPages,
		TotalItems:      total,
		HasNextPage:     q.Page < totalPages,
		HasPreviousPage: q.Page > 1,
		Limit:           q.Limit,
	}
}

// FilterScope applies only the WHERE conditions, for count queries.
func (q ListQuery) FilterScope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if q.Search != "" {
			pattern := "%" + escapeLike(q.Search) + "%"
			conds := make([]string, 0, len(q.profile.SearchColumns)+1)
			args := make([]interface{}, 0, len(q.profile.SearchColumns)+1)
			for _, col := range q.profile.SearchColumns {
				conds = append(conds, col+" ILIKE ?")
				args = append(args, pattern)
			}
			if q.profile.SearchTags {
				conds = append(conds, "tags::text ILIKE ?")
				args = append(args, pattern)
			}
			db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
		}
		if q.Category != "" && q.profile.CategoryCondition != "" {
			category := q.Category
			if q.profile.CategoryPattern {
				category = escapeLike(category)
			}
			db = db.Where(q.profile.CategoryCondition, category)
		}
		if q.Status != "" {
			db = db.Where("status = ?", q.Status)
		}
		// Author is a substring match, same as search.
		if q.Author != "" {
			db = db.Where(q.profile.AuthorColumn+" ILIKE ?", "%"+escapeLike(q.Author)+"%")
		}
		if len(q.Tags) > 0 {
			lowered := make([]string, len(q.Tags))
			for i, tag := range q.Tags {
				lowered[i] = strings.ToLower(tag)
			}
			db = db.Where(
				"EXISTS (SELECT 1 FROM jsonb_array_elements_text(tags) AS t(tag) WHERE LOWER(t.tag) IN ?)",
				lowered,
			)
		}
		return db
	}
}

// Scope applies filters, sort and pagination, for find queries.
func (q ListQuery) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Scopes(q.FilterScope()).
			Order(q.SortColumn + " " + q.SortDirection).
			Offset(q.Skip).
			Limit(q.Limit)
	}
}

// Sanitize trims, truncates to maxLen runes and strips every character that is
// not a letter, digit, whitespace or allow-listed punctuation. Idempotent:
// Sanitize(Sanitize(s)) == Sanitize(s).
func Sanitize(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) > maxLen {
		runes := []rune(s)
		s = string(runes[:maxLen])
	}
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) ||
			strings.ContainsRune(allowedPunctuation, r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// escapeLike escapes the ILIKE metacharacters that survive sanitization.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// parseTags splits, sanitizes and case-insensitively deduplicates the comma
// separated tag list. Entries longer than MaxTagLength are dropped, and at
// most MaxTags distinct tags survive.
func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}
	seen := make(map[string]struct{})
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" || utf8.RuneCountInString(trimmed) > MaxTagLength {
			continue
		}
		tag := Sanitize(trimmed, MaxTagLength)
		if tag == "" {
			continue
		}
		key := strings.ToLower(tag)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		tags = append(tags, tag)
		if len(tags) == MaxTags {
			break
		}
	}
	return tags
}

func parsePositiveInt(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
