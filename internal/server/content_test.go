package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBlogPostPublishing(t *testing.T) {
	env := newTestEnv(t)
	staffID, staffToken := env.registerAndLogin(t, "editor", nil)
	env.promoteToStaff(t, staffID)

	t.Run("slug derives from title", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/blog-posts", staffToken, map[string]any{
			"title":   "Securing LLM Deployments!",
			"content": "Long form content.",
			"excerpt": "Hardening a production LLM.",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		require.Equal(t, "securing-llm-deployments", decode(t, rec)["slug"])
	})

	t.Run("draft is hidden from anonymous readers", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/blog-posts/securing-llm-deployments", "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/blog-posts", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, decodeList(t, rec))
	})

	t.Run("staff see drafts", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/blog-posts/securing-llm-deployments", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/blog-posts", staffToken, nil)
		require.Len(t, decodeList(t, rec), 1)
	})

	t.Run("first publish stamps published_at", func(t *testing.T) {
		rec := env.do(t, http.MethodPatch, "/api/v1/blog-posts/securing-llm-deployments", staffToken,
			map[string]any{"is_published": true})
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.NotEmpty(t, body["published_at"])
		// A single-field PATCH leaves the rest of the post alone.
		require.Equal(t, "Hardening a production LLM.", body["excerpt"])
	})

	t.Run("published post is public", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/blog-posts/securing-llm-deployments", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("future publish date stays hidden", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/blog-posts", staffToken, map[string]any{
			"title":        "From The Future",
			"content":      "c",
			"is_published": true,
			"published_at": "2099-01-01T00:00:00Z",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/blog-posts/from-the-future", "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("anonymous writes are rejected", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/blog-posts", "", map[string]any{
			"title":   "anon",
			"content": "c",
		})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestBlogPostViewsAndCategories(t *testing.T) {
	env := newTestEnv(t)
	staffID, token := env.registerAndLogin(t, "editor", nil)
	env.promoteToStaff(t, staffID)

	rec := env.do(t, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "AI Safety"})
	require.Equal(t, http.StatusCreated, rec.Code)
	categoryID := decode(t, rec)["id"].(string)

	rec = env.do(t, http.MethodPost, "/api/v1/blog-posts", token, map[string]any{
		"title":        "Counted",
		"content":      "c",
		"categories":   []string{categoryID},
		"is_published": true,
		"featured":     true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("increment views", func(t *testing.T) {
		for range 3 {
			rec := env.do(t, http.MethodPost, "/api/v1/blog-posts/counted/increment_views", "", nil)
			require.Equal(t, http.StatusOK, rec.Code)
			require.Equal(t, "views incremented", decode(t, rec)["status"])
		}
		rec := env.do(t, http.MethodGet, "/api/v1/blog-posts/counted", "", nil)
		require.Equal(t, float64(3), decode(t, rec)["views"])
	})

	t.Run("featured listing", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/blog-posts/featured", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decodeList(t, rec), 1)
	})

	t.Run("by_category requires the slug", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/blog-posts/by_category", "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Category slug is required", decode(t, rec)["error"])
	})

	t.Run("by_category filters", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/blog-posts/by_category?category=ai-safety", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decodeList(t, rec), 1)

		rec = env.do(t, http.MethodGet, "/api/v1/blog-posts/by_category?category=nope", "", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCaseStudies(t *testing.T) {
	env := newTestEnv(t)
	staffID, token := env.registerAndLogin(t, "editor", nil)
	env.promoteToStaff(t, staffID)

	rec := env.do(t, http.MethodPost, "/api/v1/clients", token, map[string]string{
		"name": "Acme Bank", "industry": "finance",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	clientID := decode(t, rec)["id"].(string)

	rec = env.do(t, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Banking"})
	industryID := decode(t, rec)["id"].(string)

	t.Run("requires a client", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/case-studies", token, map[string]any{
			"title": "No Client", "content": "c",
		})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		errs := decode(t, rec)["errors"].(map[string]any)
		require.Contains(t, errs, "client")
	})

	rec = env.do(t, http.MethodPost, "/api/v1/case-studies", token, map[string]any{
		"title":        "Acme Fraud Platform",
		"content":      "c",
		"client":       clientID,
		"industry":     industryID,
		"key_results":  map[string]any{"fraud_reduction": "71%"},
		"technologies": []string{"go", "postgres"},
		"is_published": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	t.Run("slug lookup", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/case-studies/acme-fraud-platform", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode(t, rec)
		require.Equal(t, clientID, body["client"])
		results := body["key_results"].(map[string]any)
		require.Equal(t, "71%", results["fraud_reduction"])
	})

	t.Run("by_industry filters", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/case-studies/by_industry?industry=banking", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Len(t, decodeList(t, rec), 1)

		rec = env.do(t, http.MethodGet, "/api/v1/case-studies/by_industry", "", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "Industry slug is required", decode(t, rec)["error"])
	})

	t.Run("client writes are staff only", func(t *testing.T) {
		_, reader := env.registerAndLogin(t, "reader", nil)
		rec := env.do(t, http.MethodPost, "/api/v1/clients", reader, map[string]string{"name": "Rogue"})
		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Equal(t, "Permission denied", decode(t, rec)["error"])
	})
}

func TestCommentModeration(t *testing.T) {
	env := newTestEnv(t)
	staffID, staffToken := env.registerAndLogin(t, "mod", nil)
	env.promoteToStaff(t, staffID)
	_, readerToken := env.registerAndLogin(t, "reader", nil)

	rec := env.do(t, http.MethodPost, "/api/v1/blog-posts", staffToken, map[string]any{
		"title": "Discussed", "content": "c", "is_published": true,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	postID := decode(t, rec)["id"].(string)

	rec = env.do(t, http.MethodPost, "/api/v1/comments", readerToken, map[string]any{
		"content":   "great post",
		"blog_post": postID,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	commentID := decode(t, rec)["id"].(string)

	t.Run("pending comments are hidden from readers", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/v1/comments?blog_post="+postID, readerToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Empty(t, decodeList(t, rec))

		rec = env.do(t, http.MethodGet, "/api/v1/comments?blog_post="+postID, staffToken, nil)
		require.Len(t, decodeList(t, rec), 1)
	})

	t.Run("non-staff cannot moderate", func(t *testing.T) {
		for _, action := range []string{"approve", "mark_spam"} {
			rec := env.do(t, http.MethodPost, "/api/v1/comments/"+commentID+"/"+action, readerToken, nil)
			require.Equal(t, http.StatusForbidden, rec.Code)
			require.Equal(t, "Permission denied", decode(t, rec)["error"])
		}
	})

	t.Run("approve publishes", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/comments/"+commentID+"/approve", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "comment approved", decode(t, rec)["status"])

		rec = env.do(t, http.MethodGet, "/api/v1/comments?blog_post="+postID, readerToken, nil)
		require.Len(t, decodeList(t, rec), 1)
	})

	t.Run("mark_spam unpublishes", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/comments/"+commentID+"/mark_spam", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/comments/"+commentID, staffToken, nil)
		body := decode(t, rec)
		require.Equal(t, true, body["is_spam"])
		require.Equal(t, false, body["is_approved"])
	})

	t.Run("approve clears the spam flag", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/v1/comments/"+commentID+"/approve", staffToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, http.MethodGet, "/api/v1/comments/"+commentID, staffToken, nil)
		body := decode(t, rec)
		require.Equal(t, false, body["is_spam"])
		require.Equal(t, true, body["is_approved"])
	})
}

func TestCategorySlugConflicts(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.registerAndLogin(t, "editor", nil)

	rec := env.do(t, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Research"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/v1/categories", token, map[string]string{"name": "Research"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	errs := decode(t, rec)["errors"].(map[string]any)
	require.Contains(t, errs, "slug")
}
