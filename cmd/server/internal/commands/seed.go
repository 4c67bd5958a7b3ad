package commands

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/victoai/platform/internal/auth"
	"github.com/victoai/platform/internal/logger"
	"github.com/victoai/platform/internal/models"
)

// SeedCmd loads a YAML fixture file into the configured store. Records are
// keyed by name (organizations, users, clients) or slug (categories, tags)
// so fixtures can reference each other without knowing generated IDs.
type SeedCmd struct {
	File string `arg:"" help:"path to the YAML fixture file" type:"existingfile"`

	StoreType     string             `help:"store type (memory or postgres)" default:"postgres" env:"VICTOAI_STORE_TYPE" enum:"memory,postgres"`
	PostgresStore PostgresStoreFlags `embed:"" prefix:"postgres-"`
}

type fixtureFile struct {
	Organizations []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Industry    string `yaml:"industry"`
		Size        string `yaml:"size"`
		Website     string `yaml:"website"`
	} `yaml:"organizations"`

	Users []struct {
		Username     string `yaml:"username"`
		Email        string `yaml:"email"`
		Password     string `yaml:"password"`
		FirstName    string `yaml:"first_name"`
		LastName     string `yaml:"last_name"`
		Role         string `yaml:"role"`
		Organization string `yaml:"organization"`
		Staff        bool   `yaml:"staff"`
	} `yaml:"users"`

	Categories []struct {
		Name        string `yaml:"name"`
		Slug        string `yaml:"slug"`
		Description string `yaml:"description"`
		Order       int    `yaml:"order"`
	} `yaml:"categories"`

	Tags []struct {
		Name string `yaml:"name"`
		Slug string `yaml:"slug"`
	} `yaml:"tags"`

	Clients []struct {
		Name        string `yaml:"name"`
		Description string `yaml:"description"`
		Website     string `yaml:"website"`
		Industry    string `yaml:"industry"`
	} `yaml:"clients"`

	Models []struct {
		Name         string `yaml:"name"`
		ModelType    string `yaml:"model_type"`
		Version      string `yaml:"version"`
		Description  string `yaml:"description"`
		Organization string `yaml:"organization"`
		Status       string `yaml:"status"`
	} `yaml:"models"`

	BlogPosts []struct {
		Title      string   `yaml:"title"`
		Slug       string   `yaml:"slug"`
		Content    string   `yaml:"content"`
		Excerpt    string   `yaml:"excerpt"`
		Author     string   `yaml:"author"`
		Categories []string `yaml:"categories"`
		Tags       []string `yaml:"tags"`
		Featured   bool     `yaml:"featured"`
		Published  bool     `yaml:"published"`
	} `yaml:"blog_posts"`

	CaseStudies []struct {
		Title        string         `yaml:"title"`
		Slug         string         `yaml:"slug"`
		Content      string         `yaml:"content"`
		Excerpt      string         `yaml:"excerpt"`
		Client       string         `yaml:"client"`
		Industry     string         `yaml:"industry"`
		KeyResults   map[string]any `yaml:"key_results"`
		Technologies []string       `yaml:"technologies"`
		Testimonial  string         `yaml:"testimonial"`
		Featured     bool           `yaml:"featured"`
		Published    bool           `yaml:"published"`
	} `yaml:"case_studies"`
}

func (c *SeedCmd) Run(globals *Globals) error {
	log := logger.Setup(globals.Debug)
	ctx := context.Background()

	raw, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("failed to read fixture file: %w", err)
	}
	var fixtures fixtureFile
	if err := yaml.Unmarshal(raw, &fixtures); err != nil {
		return fmt.Errorf("failed to parse fixture file: %w", err)
	}

	stores, cleanup, err := buildStores(ctx, c.StoreType, c.PostgresStore)
	if err != nil {
		return err
	}
	defer cleanup()

	now := time.Now()
	orgIDs := make(map[string]uuid.UUID)
	userIDs := make(map[string]uuid.UUID)
	categoryIDs := make(map[string]uuid.UUID)
	tagIDs := make(map[string]uuid.UUID)
	clientIDs := make(map[string]uuid.UUID)

	for _, o := range fixtures.Organizations {
		org := &models.Organization{
			OrgID:       uuid.Must(uuid.NewV7()),
			Name:        o.Name,
			Description: o.Description,
			Industry:    o.Industry,
			Size:        o.Size,
			Website:     o.Website,
		}
		if err := stores.Organizations.Create(ctx, org); err != nil {
			return fmt.Errorf("organization %q: %w", o.Name, err)
		}
		orgIDs[o.Name] = org.OrgID
	}

	for _, u := range fixtures.Users {
		hash, err := auth.HashPassword(u.Password)
		if err != nil {
			return fmt.Errorf("user %q: %w", u.Username, err)
		}
		role := u.Role
		if role == "" {
			role = models.RoleDeveloper
		}
		p := &models.Principal{
			PrincipalID:  uuid.Must(uuid.NewV7()),
			Username:     u.Username,
			Email:        u.Email,
			FirstName:    u.FirstName,
			LastName:     u.LastName,
			PasswordHash: hash,
			Role:         role,
			IsStaff:      u.Staff,
		}
		if u.Organization != "" {
			orgID, ok := orgIDs[u.Organization]
			if !ok {
				return fmt.Errorf("user %q references unknown organization %q", u.Username, u.Organization)
			}
			p.OrgID = &orgID
		}
		if err := stores.Principals.Create(ctx, p); err != nil {
			return fmt.Errorf("user %q: %w", u.Username, err)
		}
		userIDs[u.Username] = p.PrincipalID
	}

	for _, cat := range fixtures.Categories {
		slug := cat.Slug
		if slug == "" {
			slug = models.Slugify(cat.Name)
		}
		record := &models.Category{
			CategoryID:  uuid.Must(uuid.NewV7()),
			Name:        cat.Name,
			Slug:        slug,
			Description: cat.Description,
			Order:       cat.Order,
			IsActive:    true,
		}
		if err := stores.Categories.Create(ctx, record); err != nil {
			return fmt.Errorf("category %q: %w", cat.Name, err)
		}
		categoryIDs[slug] = record.CategoryID
	}

	for _, tag := range fixtures.Tags {
		slug := tag.Slug
		if slug == "" {
			slug = models.Slugify(tag.Name)
		}
		record := &models.Tag{
			TagID: uuid.Must(uuid.NewV7()),
			Name:  tag.Name,
			Slug:  slug,
		}
		if err := stores.Tags.Create(ctx, record); err != nil {
			return fmt.Errorf("tag %q: %w", tag.Name, err)
		}
		tagIDs[slug] = record.TagID
	}

	for _, cl := range fixtures.Clients {
		record := &models.Client{
			ClientID:    uuid.Must(uuid.NewV7()),
			Name:        cl.Name,
			Description: cl.Description,
			Website:     cl.Website,
			Industry:    cl.Industry,
			IsActive:    true,
		}
		if err := stores.Clients.Create(ctx, record); err != nil {
			return fmt.Errorf("client %q: %w", cl.Name, err)
		}
		clientIDs[cl.Name] = record.ClientID
	}

	for _, m := range fixtures.Models {
		orgID, ok := orgIDs[m.Organization]
		if !ok {
			return fmt.Errorf("model %q references unknown organization %q", m.Name, m.Organization)
		}
		status := m.Status
		if status == "" {
			status = models.ModelStatusActive
		}
		record := &models.AIModel{
			ModelID:     uuid.Must(uuid.NewV7()),
			Name:        m.Name,
			ModelType:   m.ModelType,
			Version:     m.Version,
			Description: m.Description,
			OrgID:       orgID,
			Status:      status,
		}
		if err := stores.Models.Create(ctx, record); err != nil {
			return fmt.Errorf("model %q: %w", m.Name, err)
		}
	}

	for _, post := range fixtures.BlogPosts {
		authorID, ok := userIDs[post.Author]
		if !ok {
			return fmt.Errorf("blog post %q references unknown author %q", post.Title, post.Author)
		}
		slug := post.Slug
		if slug == "" {
			slug = models.Slugify(post.Title)
		}
		record := &models.BlogPost{
			PostID:        uuid.Must(uuid.NewV7()),
			Title:         post.Title,
			Slug:          slug,
			Content:       post.Content,
			Excerpt:       post.Excerpt,
			AuthorID:      authorID,
			Featured:      post.Featured,
			AllowComments: true,
			IsPublished:   post.Published,
		}
		if post.Published {
			record.PublishedAt = &now
		}
		if record.CategoryIDs, err = resolveSlugs(post.Categories, categoryIDs, "category"); err != nil {
			return fmt.Errorf("blog post %q: %w", post.Title, err)
		}
		if record.TagIDs, err = resolveSlugs(post.Tags, tagIDs, "tag"); err != nil {
			return fmt.Errorf("blog post %q: %w", post.Title, err)
		}
		if err := stores.BlogPosts.Create(ctx, record); err != nil {
			return fmt.Errorf("blog post %q: %w", post.Title, err)
		}
	}

	for _, study := range fixtures.CaseStudies {
		clientID, ok := clientIDs[study.Client]
		if !ok {
			return fmt.Errorf("case study %q references unknown client %q", study.Title, study.Client)
		}
		slug := study.Slug
		if slug == "" {
			slug = models.Slugify(study.Title)
		}
		record := &models.CaseStudy{
			StudyID:       uuid.Must(uuid.NewV7()),
			Title:         study.Title,
			Slug:          slug,
			Content:       study.Content,
			Excerpt:       study.Excerpt,
			ClientID:      clientID,
			KeyResults:    study.KeyResults,
			Technologies:  study.Technologies,
			Testimonial:   study.Testimonial,
			Featured:      study.Featured,
			AllowComments: true,
			IsPublished:   study.Published,
		}
		if study.Published {
			record.PublishedAt = &now
		}
		if study.Industry != "" {
			industryID, ok := categoryIDs[study.Industry]
			if !ok {
				return fmt.Errorf("case study %q references unknown industry %q", study.Title, study.Industry)
			}
			record.IndustryID = &industryID
		}
		if err := stores.CaseStudies.Create(ctx, record); err != nil {
			return fmt.Errorf("case study %q: %w", study.Title, err)
		}
	}

	log.Info().
		Int("organizations", len(fixtures.Organizations)).
		Int("users", len(fixtures.Users)).
		Int("categories", len(fixtures.Categories)).
		Int("tags", len(fixtures.Tags)).
		Int("clients", len(fixtures.Clients)).
		Int("models", len(fixtures.Models)).
		Int("blog_posts", len(fixtures.BlogPosts)).
		Int("case_studies", len(fixtures.CaseStudies)).
		Msg("Fixtures loaded")
	return nil
}

func resolveSlugs(slugs []string, ids map[string]uuid.UUID, kind string) ([]uuid.UUID, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	out := make([]uuid.UUID, 0, len(slugs))
	for _, slug := range slugs {
		id, ok := ids[slug]
		if !ok {
			return nil, fmt.Errorf("unknown %s %q", kind, slug)
		}
		out = append(out, id)
	}
	return out, nil
}
