package handlers

import (
	"log"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"

	"onrise_back_end/internal/database"
	"onrise_back_end/internal/models"
)

const blogColumns = `id, title, content, author, date, meta_title, meta_desc, created_at, updated_at`

// 🟢 Publier un article (admin)
func CreateBlogPost(c *gin.Context) {
	var input struct {
		Title     string     `json:"title" binding:"required"`
		Content   string     `json:"content" binding:"required"`
		Author    string     `json:"author"`
		Date      *time.Time `json:"date"`
		MetaTitle string     `json:"meta_title"`
		MetaDesc  string     `json:"meta_desc"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Les champs 'title' et 'content' sont obligatoires"})
		return
	}

	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	post := models.BlogPost{
		ID:        gocql.TimeUUID(),
		Title:     input.Title,
		Content:   input.Content,
		Author:    input.Author,
		Date:      time.Now(),
		MetaTitle: input.MetaTitle,
		MetaDesc:  input.MetaDesc,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	if input.Date != nil {
		post.Date = *input.Date
	}

	if err := insertBlogPost(session, &post); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	log.Println("✅ Article publié :", post.Title)
	c.JSON(http.StatusCreated, post)
}

// 📦 Liste paginée des articles, du plus récent au plus ancien
func GetAllBlogPosts(c *gin.Context) {
	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 50 {
		limit = 10
	}

	iter := session.Query(`SELECT ` + blogColumns + ` FROM blog_posts`).Iter()

	var posts []models.BlogPost
	for {
		post, ok := scanBlogPost(iter)
		if !ok {
			break
		}
		posts = append(posts, *post)
	}
	if err := iter.Close(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	sort.Slice(posts, func(i, j int) bool { return posts[i].Date.After(posts[j].Date) })

	total := len(posts)
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"posts": posts[start:end],
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// 🔍 Détail d'un article
func GetBlogPostByID(c *gin.Context) {
	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	postID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'article invalide"})
		return
	}

	post, err := findBlogPost(session, postID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article introuvable"})
		return
	}
	c.JSON(http.StatusOK, post)
}

// ✏️ Mettre à jour un article (admin)
func UpdateBlogPost(c *gin.Context) {
	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	postID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'article invalide"})
		return
	}

	existing, err := findBlogPost(session, postID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article introuvable"})
		return
	}

	var input struct {
		Title     *string    `json:"title"`
		Content   *string    `json:"content"`
		Author    *string    `json:"author"`
		Date      *time.Time `json:"date"`
		MetaTitle *string    `json:"meta_title"`
		MetaDesc  *string    `json:"meta_desc"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if input.Title != nil {
		existing.Title = *input.Title
	}
	if input.Content != nil {
		existing.Content = *input.Content
	}
	if input.Author != nil {
		existing.Author = *input.Author
	}
	if input.Date != nil {
		existing.Date = *input.Date
	}
	if input.MetaTitle != nil {
		existing.MetaTitle = *input.MetaTitle
	}
	if input.MetaDesc != nil {
		existing.MetaDesc = *input.MetaDesc
	}
	existing.UpdatedAt = time.Now()

	if err := insertBlogPost(session, existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, existing)
}

// 🗑️ Supprimer un article (admin)
func DeleteBlogPost(c *gin.Context) {
	session, err := database.GetStoreSession()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Erreur base de données"})
		return
	}

	postID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ID d'article invalide"})
		return
	}

	if err := session.Query(`DELETE FROM blog_posts WHERE id = ?`, postID).Exec(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// --- Helpers Scylla ---

func insertBlogPost(session *gocql.Session, post *models.BlogPost) error {
	return session.Query(`INSERT INTO blog_posts (`+blogColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		post.ID, post.Title, post.Content, post.Author, post.Date,
		post.MetaTitle, post.MetaDesc, post.CreatedAt, post.UpdatedAt,
	).Exec()
}

func findBlogPost(session *gocql.Session, id gocql.UUID) (*models.BlogPost, error) {
	iter := session.Query(`SELECT `+blogColumns+` FROM blog_posts WHERE id = ?`, id).Iter()
	post, ok := scanBlogPost(iter)
	if err := iter.Close(); err != nil {
		return nil, err
	}
	if !ok {
		return nil, gocql.ErrNotFound
	}
	return post, nil
}

func scanBlogPost(iter *gocql.Iter) (*models.BlogPost, bool) {
	var post models.BlogPost
	ok := iter.Scan(&post.ID, &post.Title, &post.Content, &post.Author, &post.Date,
		&post.MetaTitle, &post.MetaDesc, &post.CreatedAt, &post.UpdatedAt)
	if !ok {
		return nil, false
	}
	return &post, true
}
