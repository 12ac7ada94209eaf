package main

import (
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"cast-press/config"
	"cast-press/models"
	"cast-press/services"
	"cast-press/storage"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	contentPublishedCounter prometheus.Counter
	mediaUploadsCounter     prometheus.Counter
)

func init() {
	contentPublishedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "content_published_total",
			Help: "Total number of scheduled items promoted to published.",
		},
	)
	mediaUploadsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "media_uploads_total",
			Help: "Total number of media files uploaded to object storage.",
		},
	)
	prometheus.MustRegister(contentPublishedCounter, mediaUploadsCounter)
}

const adminContextKey = "admin"

func jwtAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}
		claims, err := services.ParseToken(token, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}
		c.Set(adminContextKey, claims)
		c.Next()
	}
}

func currentAdmin(c *gin.Context) *services.AdminClaims {
	return c.MustGet(adminContextKey).(*services.AdminClaims)
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	logging.Info("Running database auto-migration...")
	if err := db.AutoMigrate(&models.Category{}, &models.Article{}, &models.Podcast{}, &models.Admin{}); err != nil {
		logging.Fatal("Auto-migration failed", zap.Error(err))
	}

	seedDefaultCategories(db, logging)
	seedInitialAdmin(db, cfg, logging)

	s3Client, err := storage.NewS3Client(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}

	publisher := services.NewPublisher(db, cfg.PublishSchedule, logging)
	publisher.OnPublished = func(count int64) {
		contentPublishedCounter.Add(float64(count))
	}
	if err := publisher.Start(); err != nil {
		logging.Fatal("Failed to start publish scheduler", zap.Error(err))
	}
	defer publisher.Stop()

	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupArticleRoutes(router, db, s3Client, cfg, logging)
	setupPodcastRoutes(router, db, s3Client, cfg, logging)
	setupCategoryRoutes(router, db, cfg, logging)
	setupAdminRoutes(router, db, cfg, logging)

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

func listParamsFromRequest(c *gin.Context) services.ListParams {
	return services.ListParams{
		Page:      c.Query("page"),
		Limit:     c.Query("limit"),
		Search:    c.Query("search"),
		Tags:      c.Query("tags"),
		Category:  c.Query("category"),
		Status:    c.Query("status"),
		Author:    c.Query("author"),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
	}
}

// tagsJSON converts a comma separated form value into the jsonb column value.
func tagsJSON(raw string) datatypes.JSON {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	if tags == nil {
		return nil
	}
	b, _ := json.Marshal(tags)
	return datatypes.JSON(b)
}

// normalizeUpdates guards a raw partial-update payload: identity and lifecycle
// columns are managed by dedicated endpoints, and tag arrays must land as jsonb.
func normalizeUpdates(updates map[string]interface{}) map[string]interface{} {
	delete(updates, "id")
	delete(updates, "created_at")
	delete(updates, "publish_date")
	if v, ok := updates["tags"]; ok {
		b, err := json.Marshal(v)
		if err != nil {
			delete(updates, "tags")
		} else {
			updates["tags"] = datatypes.JSON(b)
		}
	}
	return updates
}

func uploadFormFile(c *gin.Context, client *s3.Client, cfg *config.Config, fh *multipart.FileHeader, mimePrefix, keyPrefix string, maxMB int64) (string, string, error) {
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, mimePrefix) {
		return "", "", errors.New("unexpected file type " + contentType)
	}
	if fh.Size > maxMB*1024*1024 {
		return "", "", errors.New("file too large")
	}
	file, err := fh.Open()
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	key := storage.ObjectKey(keyPrefix, fh.Filename)
	url, err := storage.UploadFile(c.Request.Context(), client, cfg, key, contentType, file)
	if err != nil {
		return "", "", err
	}
	mediaUploadsCounter.Inc()
	return url, key, nil
}

func setupArticleRoutes(router *gin.Engine, db *gorm.DB, s3Client *s3.Client, cfg *config.Config, log *zap.Logger) {
	rg := router.Group("/articles")
	authed := rg.Group("", jwtAuthMiddleware(cfg))

	// POST - Create article. Accepts JSON, or multipart with a thumbnail file.
	authed.POST("/", func(c *gin.Context) {
		var article models.Article

		if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
			article.Title = c.PostForm("title")
			article.Content = c.PostForm("content")
			article.Author = c.PostForm("author")
			article.Category = c.PostForm("category")
			article.Tags = tagsJSON(c.PostForm("tags"))
			if article.Title == "" {
				c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
				return
			}
			if date, err := time.Parse(time.RFC3339, c.PostForm("date")); err == nil {
				article.Date = date
			}
			if sched, err := time.Parse(time.RFC3339, c.PostForm("scheduled_date")); err == nil {
				article.ScheduledDate = sched
			}
			if slug := c.PostForm("slug"); slug != "" {
				article.Slug = &slug
			}
			if fh, err := c.FormFile("thumbnail"); err == nil {
				url, _, upErr := uploadFormFile(c, s3Client, cfg, fh, "image/", "articles/thumbnails", cfg.MaxImageUploadMB)
				if upErr != nil {
					c.JSON(http.StatusBadRequest, gin.H{"error": upErr.Error()})
					return
				}
				article.Thumbnail = url
			}
		} else if err := c.ShouldBindJSON(&article); err != nil {
			log.Error("Invalid request body for article creation", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		now := time.Now().UTC()
		if article.Date.IsZero() {
			article.Date = now
		}
		if article.ScheduledDate.IsZero() {
			article.ScheduledDate = now
		}
		if article.Status == "" {
			article.Status = models.StatusDraft
		}
		if article.Slug != nil && *article.Slug == "" {
			article.Slug = nil
		}

		if err := db.Create(&article).Error; err != nil {
			log.Error("Failed to create article", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save article"})
			return
		}

		log.Info("Article created", zap.Uint("id", article.ID), zap.String("title", article.Title))
		c.JSON(http.StatusCreated, article)
	})

	// GET - List with pagination, search and filtering. Garbage parameters
	// degrade to defaults and are echoed back, never rejected.
	rg.GET("/", func(c *gin.Context) {
		q := services.BuildListQuery(services.ArticleListProfile, listParamsFromRequest(c))

		var articles []models.Article
		if err := db.Scopes(q.Scope()).Find(&articles).Error; err != nil {
			log.Error("Database query for articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		var total int64
		if err := db.Model(&models.Article{}).Scopes(q.FilterScope()).Count(&total).Error; err != nil {
			log.Error("Database count for articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"articles":   articles,
			"pagination": q.Pagination(total),
			"filters":    q.Filters(),
		})
	})

	// GET - Published articles only, without the full content (public endpoint).
	rg.GET("/published", func(c *gin.Context) {
		params := listParamsFromRequest(c)
		params.Status = models.StatusPublished
		params.SortBy = "publishDate"
		q := services.BuildListQuery(services.ArticleListProfile, params)

		var articles []models.Article
		if err := db.Omit("content").Scopes(q.Scope()).Find(&articles).Error; err != nil {
			log.Error("Database query for published articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		var total int64
		if err := db.Model(&models.Article{}).Scopes(q.FilterScope()).Count(&total).Error; err != nil {
			log.Error("Database count for published articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"articles":   articles,
			"pagination": q.Pagination(total),
		})
	})

	// GET - Article stats for the admin dashboard.
	authed.GET("/stats/overview", func(c *gin.Context) {
		type statusCount struct {
			Status string `json:"status"`
			Count  int64  `json:"count"`
		}
		var breakdown []statusCount
		if err := db.Model(&models.Article{}).
			Select("status, count(*) as count").
			Group("status").
			Scan(&breakdown).Error; err != nil {
			log.Error("Stats query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		var total, published, drafts int64
		for _, row := range breakdown {
			total += row.Count
			switch row.Status {
			case models.StatusPublished:
				published = row.Count
			case models.StatusDraft:
				drafts = row.Count
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"totalArticles":     total,
			"publishedArticles": published,
			"draftArticles":     drafts,
			"statusBreakdown":   breakdown,
		})
	})

	// GET - Article by slug (SEO-friendly URLs, published only).
	rg.GET("/slug/:slug", func(c *gin.Context) {
		var article models.Article
		err := db.Where("slug = ? AND status = ?", c.Param("slug"), models.StatusPublished).
			First(&article).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
				return
			}
			log.Error("Database error fetching article by slug", zap.String("slug", c.Param("slug")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, article)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var article models.Article
		if err := db.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
				return
			}
			log.Error("Database error fetching article", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, article)
	})

	// PATCH - Partial update; only the fields present in the body change.
	authed.PATCH("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var article models.Article
		if err := db.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
				return
			}
			log.Error("Database error fetching article for update", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		updates = normalizeUpdates(updates)
		delete(updates, "status")

		if err := db.Model(&article).Updates(updates).Error; err != nil {
			log.Error("Failed to update article", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update article"})
			return
		}
		c.JSON(http.StatusOK, article)
	})

	// PATCH - Publish/unpublish/archive. Unlike listing filters, a bad enum
	// here is a client error and gets rejected.
	authed.PATCH("/:id/status", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var payload struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil || !models.ValidStatus(payload.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid status. Must be draft, published, or archived",
			})
			return
		}

		updates := map[string]interface{}{"status": payload.Status, "publish_date": nil}
		if payload.Status == models.StatusPublished {
			updates["publish_date"] = time.Now().UTC()
		}

		res := db.Model(&models.Article{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			log.Error("Failed to update article status", zap.Uint64("id", id), zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
			return
		}

		var article models.Article
		db.First(&article, id)
		c.JSON(http.StatusOK, article)
	})

	authed.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var article models.Article
		if err := db.First(&article, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
				return
			}
			log.Error("Database error fetching article for delete", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if err := db.Delete(&article).Error; err != nil {
			log.Error("Failed to delete article", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete article"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":        "Article deleted successfully",
			"deletedArticle": article,
		})
	})

	// POST - Upload in-article media (images embedded in the body).
	authed.POST("/upload-media", func(c *gin.Context) {
		fh, err := c.FormFile("media")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
			return
		}
		url, key, err := uploadFormFile(c, s3Client, cfg, fh, "image/", "articles/media", cfg.MaxImageUploadMB)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"url":  url,
			"key":  key,
			"type": fh.Header.Get("Content-Type"),
		})
	})
}

func setupPodcastRoutes(router *gin.Engine, db *gorm.DB, s3Client *s3.Client, cfg *config.Config, log *zap.Logger) {
	rg := router.Group("/podcasts")
	authed := rg.Group("", jwtAuthMiddleware(cfg))

	// POST - Create podcast with audio and/or video files.
	authed.POST("/", func(c *gin.Context) {
		podcast := models.Podcast{
			Title:       c.PostForm("title"),
			Description: c.PostForm("description"),
			Youtube:     c.PostForm("youtube"),
			Spotify:     c.PostForm("spotify"),
			Anghami:     c.PostForm("anghami"),
			AppleMusic:  c.PostForm("appleMusic"),
			Tags:        tagsJSON(c.PostForm("tags")),
			Status:      models.StatusDraft,
		}
		if podcast.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		if raw := c.PostForm("category_id"); raw != "" {
			if id, err := strconv.ParseUint(raw, 10, 64); err == nil {
				cid := uint(id)
				podcast.CategoryID = &cid
			}
		}
		if sched, err := time.Parse(time.RFC3339, c.PostForm("scheduled_date")); err == nil {
			podcast.ScheduledDate = sched
		} else {
			podcast.ScheduledDate = time.Now().UTC()
		}

		audioFH, _ := c.FormFile("audio")
		videoFH, _ := c.FormFile("video")
		thumbFH, _ := c.FormFile("thumbnail")
		if audioFH == nil && videoFH == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please upload at least one audio or video file"})
			return
		}

		if audioFH != nil {
			url, _, err := uploadFormFile(c, s3Client, cfg, audioFH, "audio/", "podcasts/audio", cfg.MaxAudioUploadMB)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			podcast.AudioURL = url
		}
		if videoFH != nil {
			url, _, err := uploadFormFile(c, s3Client, cfg, videoFH, "video/", "podcasts/video", cfg.MaxVideoUploadMB)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			podcast.VideoURL = url
		}
		if thumbFH != nil {
			url, _, err := uploadFormFile(c, s3Client, cfg, thumbFH, "image/", "podcasts/thumbnails", cfg.MaxImageUploadMB)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			podcast.ThumbnailURL = url
		}

		if err := db.Create(&podcast).Error; err != nil {
			log.Error("Failed to create podcast", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save podcast"})
			return
		}

		log.Info("Podcast created", zap.Uint("id", podcast.ID), zap.String("title", podcast.Title))
		c.JSON(http.StatusCreated, gin.H{
			"message": "Podcast uploaded successfully!",
			"podcast": podcast,
		})
	})

	authed.POST("/upload-audio", func(c *gin.Context) {
		fh, err := c.FormFile("audio")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No audio file uploaded"})
			return
		}
		url, key, err := uploadFormFile(c, s3Client, cfg, fh, "audio/", "podcasts/audio", cfg.MaxAudioUploadMB)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Audio uploaded successfully",
			"url":     url,
			"key":     key,
			"size":    fh.Size,
		})
	})

	authed.POST("/upload-video", func(c *gin.Context) {
		fh, err := c.FormFile("video")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No video file uploaded"})
			return
		}
		url, key, err := uploadFormFile(c, s3Client, cfg, fh, "video/", "podcasts/video", cfg.MaxVideoUploadMB)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Video uploaded successfully",
			"url":     url,
			"key":     key,
			"size":    fh.Size,
		})
	})

	rg.GET("/", func(c *gin.Context) {
		q := services.BuildListQuery(services.PodcastListProfile, listParamsFromRequest(c))

		var podcasts []models.Podcast
		if err := db.Preload("Category").Scopes(q.Scope()).Find(&podcasts).Error; err != nil {
			log.Error("Database query for podcasts failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		var total int64
		if err := db.Model(&models.Podcast{}).Scopes(q.FilterScope()).Count(&total).Error; err != nil {
			log.Error("Database count for podcasts failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"podcasts":   podcasts,
			"pagination": q.Pagination(total),
			"filters":    q.Filters(),
		})
	})

	rg.GET("/published", func(c *gin.Context) {
		params := listParamsFromRequest(c)
		params.Status = models.StatusPublished
		params.SortBy = "publishDate"
		q := services.BuildListQuery(services.PodcastListProfile, params)

		var podcasts []models.Podcast
		if err := db.Preload("Category").Scopes(q.Scope()).Find(&podcasts).Error; err != nil {
			log.Error("Database query for published podcasts failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		var total int64
		if err := db.Model(&models.Podcast{}).Scopes(q.FilterScope()).Count(&total).Error; err != nil {
			log.Error("Database count for published podcasts failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"podcasts":   podcasts,
			"pagination": q.Pagination(total),
		})
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var podcast models.Podcast
		if err := db.Preload("Category").First(&podcast, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
				return
			}
			log.Error("Database error fetching podcast", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, podcast)
	})

	authed.PATCH("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var podcast models.Podcast
		if err := db.First(&podcast, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
				return
			}
			log.Error("Database error fetching podcast for update", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		var updates map[string]interface{}
		if err := c.ShouldBindJSON(&updates); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		updates = normalizeUpdates(updates)
		delete(updates, "status")

		if err := db.Model(&podcast).Updates(updates).Error; err != nil {
			log.Error("Failed to update podcast", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update podcast"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message": "Podcast updated successfully",
			"podcast": podcast,
		})
	})

	authed.PATCH("/:id/status", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var payload struct {
			Status string `json:"status" binding:"required"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil || !models.ValidStatus(payload.Status) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Invalid status. Must be draft, published, or archived",
			})
			return
		}

		updates := map[string]interface{}{"status": payload.Status, "publish_date": nil}
		if payload.Status == models.StatusPublished {
			updates["publish_date"] = time.Now().UTC()
		}

		res := db.Model(&models.Podcast{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			log.Error("Failed to update podcast status", zap.Uint64("id", id), zap.Error(res.Error))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
			return
		}

		var podcast models.Podcast
		db.First(&podcast, id)
		c.JSON(http.StatusOK, podcast)
	})

	// DELETE - Remove the record and its stored media. S3 failures are logged
	// and do not block the database delete.
	authed.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var podcast models.Podcast
		if err := db.First(&podcast, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Podcast not found"})
				return
			}
			log.Error("Database error fetching podcast for delete", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}

		for _, fileURL := range []string{podcast.AudioURL, podcast.VideoURL, podcast.ThumbnailURL} {
			if fileURL == "" {
				continue
			}
			if err := storage.DeleteFileByURL(c.Request.Context(), s3Client, cfg, fileURL); err != nil {
				log.Warn("Failed to delete media from S3", zap.String("url", fileURL), zap.Error(err))
			}
		}

		if err := db.Delete(&podcast).Error; err != nil {
			log.Error("Failed to delete podcast", zap.Uint64("id", id), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete podcast"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"message":        "Podcast and associated files deleted successfully",
			"deletedPodcast": podcast,
		})
	})
}

func setupCategoryRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	rg := router.Group("/categories")
	authed := rg.Group("", jwtAuthMiddleware(cfg))

	rg.GET("/", func(c *gin.Context) {
		query := db.Model(&models.Category{})
		if t := c.Query("type"); t != "" && t != "all" {
			query = query.Where("type = ? OR type = ?", t, models.CategoryTypeBoth)
		}
		var categories []models.Category
		if err := query.Order("name asc").Find(&categories).Error; err != nil {
			log.Error("Database query for categories failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, categories)
	})

	rg.GET("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var category models.Category
		if err := db.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		c.JSON(http.StatusOK, category)
	})

	authed.POST("/", func(c *gin.Context) {
		var category models.Category
		if err := c.ShouldBindJSON(&category); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}
		category.Slug = services.Slugify(category.Name)
		if category.Type == "" {
			category.Type = models.CategoryTypeBoth
		}
		if err := db.Create(&category).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category with this name already exists"})
			return
		}
		c.JSON(http.StatusCreated, category)
	})

	authed.PATCH("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		var payload struct {
			Name        *string `json:"name"`
			Description *string `json:"description"`
			Type        *string `json:"type"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		updates := map[string]interface{}{}
		if payload.Name != nil && *payload.Name != "" {
			updates["name"] = *payload.Name
			updates["slug"] = services.Slugify(*payload.Name)
		}
		if payload.Description != nil {
			updates["description"] = *payload.Description
		}
		if payload.Type != nil && *payload.Type != "" {
			updates["type"] = *payload.Type
		}
		if len(updates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No updatable fields provided"})
			return
		}

		res := db.Model(&models.Category{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": res.Error.Error()})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}

		var category models.Category
		db.First(&category, id)
		c.JSON(http.StatusOK, category)
	})

	// DELETE - No cascade: content keeps its dangling reference and readers
	// tolerate it.
	authed.DELETE("/:id", func(c *gin.Context) {
		id, ok := parseID(c)
		if !ok {
			return
		}
		res := db.Delete(&models.Category{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Category deleted successfully"})
	})
}

func setupAdminRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log *zap.Logger) {
	rg := router.Group("/admin")

	rg.POST("/login", func(c *gin.Context) {
		var payload struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
			return
		}

		var admin models.Admin
		if err := db.Where("username = ?", payload.Username).First(&admin).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
			return
		}
		if !admin.ComparePassword(payload.Password) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
			return
		}

		token, err := services.IssueToken(&admin, cfg.JWTSecret, cfg.JWTTTL)
		if err != nil {
			log.Error("Failed to sign token", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": token})
	})

	authed := rg.Group("", jwtAuthMiddleware(cfg))

	authed.POST("/register", func(c *gin.Context) {
		if !currentAdmin(c).IsSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}

		var payload struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "username and password are required"})
			return
		}

		var count int64
		db.Model(&models.Admin{}).Where("username = ?", payload.Username).Count(&count)
		if count > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Admin already exists"})
			return
		}

		admin := models.Admin{Username: payload.Username}
		if err := admin.SetPassword(payload.Password, cfg.BcryptCost); err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		if err := db.Create(&admin).Error; err != nil {
			log.Error("Failed to create admin", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Admin registered successfully"})
	})

	authed.PATCH("/change-password", func(c *gin.Context) {
		var payload struct {
			OldPassword string `json:"oldPassword" binding:"required"`
			NewPassword string `json:"newPassword" binding:"required"`
		}
		if err := c.ShouldBindJSON(&payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"message": "oldPassword and newPassword are required"})
			return
		}

		var admin models.Admin
		if err := db.First(&admin, currentAdmin(c).AdminID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"message": "Admin not found"})
			return
		}
		if !admin.ComparePassword(payload.OldPassword) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Old password is incorrect"})
			return
		}
		if err := admin.SetPassword(payload.NewPassword, cfg.BcryptCost); err != nil {
			log.Error("Failed to hash password", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		if err := db.Save(&admin).Error; err != nil {
			log.Error("Failed to save admin", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
	})

	authed.DELETE("/delete/:id", func(c *gin.Context) {
		if !currentAdmin(c).IsSuperAdmin {
			c.JSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
			return
		}
		id, ok := parseID(c)
		if !ok {
			return
		}
		res := db.Delete(&models.Admin{}, id)
		if res.Error != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "Server error"})
			return
		}
		if res.RowsAffected == 0 {
			c.JSON(http.StatusNotFound, gin.H{"message": "Admin not found"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Admin deleted successfully"})
	})
}

// parseID reads the :id path parameter, answering 400 on garbage.
func parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ID format"})
		return 0, false
	}
	return id, true
}

func seedDefaultCategories(db *gorm.DB, logger *zap.Logger) {
	var count int64
	db.Model(&models.Category{}).Count(&count)
	if count > 0 {
		return
	}
	categories := []models.Category{
		{Name: "General", Slug: "general", Type: models.CategoryTypeBoth},
		{Name: "Interviews", Slug: "interviews", Type: models.CategoryTypePodcast},
		{Name: "News", Slug: "news", Type: models.CategoryTypeArticle},
	}
	if err := db.Create(&categories).Error; err != nil {
		logger.Warn("Failed to seed default categories", zap.Error(err))
	} else {
		logger.Info("Default categories seeded.")
	}
}

func seedInitialAdmin(db *gorm.DB, cfg *config.Config, logger *zap.Logger) {
	if cfg.InitialAdminUser == "" || cfg.InitialAdminPassword == "" {
		return
	}
	var count int64
	db.Model(&models.Admin{}).Count(&count)
	if count > 0 {
		return
	}
	admin := models.Admin{Username: cfg.InitialAdminUser, IsSuperAdmin: true}
	if err := admin.SetPassword(cfg.InitialAdminPassword, cfg.BcryptCost); err != nil {
		logger.Warn("Failed to hash initial admin password", zap.Error(err))
		return
	}
	if err := db.Create(&admin).Error; err != nil {
		logger.Warn("Failed to seed initial admin", zap.Error(err))
	} else {
		logger.Info("Initial super admin seeded.", zap.String("username", admin.Username))
	}
}
