package services_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"cast-press/models"
	"cast-press/services"
)

func TestSanitize(t *testing.T) {
	t.Run("strips disallowed characters", func(t *testing.T) {
		out := services.Sanitize(`<script>alert("x")</script>`, services.MaxSearchLength)
		assert.NotContains(t, out, "<")
		assert.NotContains(t, out, ">")
		assert.NotContains(t, out, `"`)
		assert.NotContains(t, out, "(")
		assert.Equal(t, "scriptalertxscript", out)
	})

	t.Run("keeps letters digits whitespace and safe punctuation", func(t *testing.T) {
		out := services.Sanitize("Hello, world - episode 42!", services.MaxSearchLength)
		assert.Equal(t, "Hello, world - episode 42!", out)
	})

	t.Run("keeps non-latin letters", func(t *testing.T) {
		out := services.Sanitize("مرحبا بالعالم", services.MaxSearchLength)
		assert.Equal(t, "مرحبا بالعالم", out)
	})

	t.Run("truncates to max length", func(t *testing.T) {
		long := strings.Repeat("a", 500)
		out := services.Sanitize(long, services.MaxSearchLength)
		assert.Len(t, out, services.MaxSearchLength)
	})

	t.Run("idempotent", func(t *testing.T) {
		samples := []string{
			"",
			"   plain   ",
			`"; DROP TABLE articles; --`,
			"%wild_card%",
			strings.Repeat("x<y>", 100),
			"tabs\tand\nnewlines",
		}
		for _, s := range samples {
			once := services.Sanitize(s, services.MaxSearchLength)
			twice := services.Sanitize(once, services.MaxSearchLength)
			assert.Equal(t, once, twice, "input %q", s)
		}
	})
}

func TestBuildListQuery_Pagination(t *testing.T) {
	cases := []struct {
		name      string
		page      string
		limit     string
		wantPage  int
		wantLimit int
	}{
		{"defaults", "", "", 1, 10},
		{"normal", "3", "25", 3, 25},
		{"negative page", "-5", "10", 1, 10},
		{"zero page", "0", "10", 1, 10},
		{"non-numeric page", "abc", "10", 1, 10},
		{"limit above cap", "1", "9999", 1, 100},
		{"negative limit", "1", "-3", 1, 10},
		{"zero limit", "1", "0", 1, 10},
		{"non-numeric limit", "1", "lots", 1, 10},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{
				Page:  tc.page,
				Limit: tc.limit,
			})
			assert.Equal(t, tc.wantPage, q.Page)
			assert.Equal(t, tc.wantLimit, q.Limit)
			assert.Equal(t, (tc.wantPage-1)*tc.wantLimit, q.Skip)
			assert.GreaterOrEqual(t, q.Limit, 1)
			assert.LessOrEqual(t, q.Limit, services.MaxLimit)
		})
	}
}

func TestBuildListQuery_Tags(t *testing.T) {
	t.Run("splits trims and drops empties", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{
			Tags: " go ,, web ,",
		})
		assert.Equal(t, []string{"go", "web"}, q.Tags)
	})

	t.Run("deduplicates case-insensitively before the cap", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{
			Tags: "a,A,a,b,B,c,d,e,f,g,h,i,j,k",
		})
		require.Len(t, q.Tags, 10)
		assert.Equal(t, []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j"}, q.Tags)
	})

	t.Run("drops overlong tags", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{
			Tags: strings.Repeat("x", services.MaxTagLength+1) + ",ok",
		})
		assert.Equal(t, []string{"ok"}, q.Tags)
	})

	t.Run("sanitizes each tag", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{
			Tags: "<hack>,news",
		})
		assert.Equal(t, []string{"hack", "news"}, q.Tags)
		for _, tag := range q.Tags {
			assert.LessOrEqual(t, len(tag), services.MaxTagLength)
		}
	})
}

func TestBuildListQuery_Sort(t *testing.T) {
	t.Run("allow-listed field maps to its column", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{
			SortBy: "publishDate", SortOrder: "asc",
		})
		assert.Equal(t, "publishDate", q.SortField)
		assert.Equal(t, "publish_date", q.SortColumn)
		assert.Equal(t, "asc", q.SortDirection)
	})

	t.Run("unknown field falls back to the profile default", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{
			SortBy: "password; DROP TABLE articles",
		})
		assert.Equal(t, "date", q.SortField)
		assert.Equal(t, "date", q.SortColumn)

		p := services.BuildListQuery(services.PodcastListProfile, services.ListParams{
			SortBy: "duration",
		})
		assert.Equal(t, "createdAt", p.SortField)
		assert.Equal(t, "created_at", p.SortColumn)
	})

	t.Run("anything but asc normalizes to desc", func(t *testing.T) {
		for _, order := range []string{"", "DESC", "ASC", "up", "asc;--"} {
			q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{SortOrder: order})
			assert.Equal(t, "desc", q.SortDirection, "order %q", order)
		}
	})
}

func TestBuildListQuery_Status(t *testing.T) {
	t.Run("valid enum kept", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{Status: "archived"})
		assert.Equal(t, "archived", q.Status)
	})

	t.Run("invalid enum means no filter, not an error", func(t *testing.T) {
		for _, status := range []string{"deleted", "DRAFT", "published ", "1"} {
			q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{Status: status})
			assert.Empty(t, q.Status, "status %q", status)
		}
	})
}

func TestBuildListQuery_GarbageRequest(t *testing.T) {
	// ?page=-5&limit=9999&tags=a,,b,b&search=<script>
	q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{
		Page:   "-5",
		Limit:  "9999",
		Tags:   "a,,b,b",
		Search: "<script>",
	})

	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 100, q.Limit)
	assert.Equal(t, 0, q.Skip)
	assert.Equal(t, []string{"a", "b"}, q.Tags)
	assert.Equal(t, "script", q.Search)

	filters := q.Filters()
	assert.Equal(t, "script", filters.Search)
	assert.Equal(t, []string{"a", "b"}, filters.Tags)
	assert.Equal(t, "date", filters.SortBy)
	assert.Equal(t, "desc", filters.SortOrder)
}

func TestBuildListQuery_AuthorPerProfile(t *testing.T) {
	articles := services.BuildListQuery(services.ArticleListProfile, services.ListParams{Author: "Jane's Show"})
	assert.Equal(t, "Jane's Show", articles.Author)

	// Podcasts have no author column; the parameter degrades to no filter.
	podcasts := services.BuildListQuery(services.PodcastListProfile, services.ListParams{Author: "Jane"})
	assert.Empty(t, podcasts.Author)
}

func TestListQuery_PaginationDescriptor(t *testing.T) {
	q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{Page: "2", Limit: "10"})

	p := q.Pagination(35)
	assert.Equal(t, 2, p.CurrentPage)
	assert.Equal(t, 4, p.TotalPages)
	assert.Equal(t, int64(35), p.TotalItems)
	assert.True(t, p.HasNextPage)
	assert.True(t, p.HasPreviousPage)
	assert.Equal(t, 10, p.Limit)

	empty := q.Pagination(0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
}

func TestFilterScope_LikeHandling(t *testing.T) {
	db := setupTestDB(t)

	statement := func(model interface{}, q services.ListQuery) *gorm.Statement {
		tx := db.Session(&gorm.Session{DryRun: true}).
			Model(model).
			Scopes(q.FilterScope()).
			Find(&[]map[string]interface{}{})
		require.NoError(t, tx.Error)
		return tx.Statement
	}

	t.Run("author matches as substring", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{Author: "Jane"})
		stmt := statement(&models.Article{}, q)
		assert.Contains(t, stmt.SQL.String(), "author ILIKE ?")
		assert.Contains(t, stmt.Vars, "%Jane%")
	})

	t.Run("author pattern metacharacters escaped", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{Author: "100_club"})
		stmt := statement(&models.Article{}, q)
		assert.Contains(t, stmt.Vars, `%100\_club%`)
	})

	t.Run("podcast category underscore escaped", func(t *testing.T) {
		q := services.BuildListQuery(services.PodcastListProfile, services.ListParams{Category: "tech_news"})
		stmt := statement(&models.Podcast{}, q)
		assert.Contains(t, stmt.SQL.String(), "name ILIKE ?")
		assert.Contains(t, stmt.Vars, `tech\_news`)
	})

	t.Run("article category stays an exact comparison", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{Category: "tech_news"})
		stmt := statement(&models.Article{}, q)
		assert.Contains(t, stmt.SQL.String(), "category = ?")
		assert.Contains(t, stmt.Vars, "tech_news")
	})

	t.Run("search term wildcarded and escaped", func(t *testing.T) {
		q := services.BuildListQuery(services.ArticleListProfile, services.ListParams{Search: "50_off"})
		stmt := statement(&models.Article{}, q)
		assert.Contains(t, stmt.Vars, `%50\_off%`)
	})
}
