package api

import (
	"encoding/base64"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/gin-gonic/gin"
	"golang.org/x/text/unicode/norm"

	"github.com/lysyi3m/rss-curator/app/curator"
	"github.com/lysyi3m/rss-curator/app/feed"
)

type Handler struct {
	curator   *curator.Curator
	generator GeneratorInterface
	opts      Options
}

func NewHandler(c *curator.Curator, opts Options) *Handler {
	return &Handler{
		curator:   c,
		generator: feed.NewGenerator(opts.Location),
		opts:      opts,
	}
}

func (h *Handler) GetFeed(c *gin.Context) {
	scope, limit, ok := h.listingParams(c, defaultFeedLimit)
	if !ok {
		return
	}

	items, err := h.curator.Items(c.Request.Context(), scope, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	selfLink := h.opts.PublicURL + "/feed"
	title := "RSS Curator"
	if !scope.IsAll() {
		selfLink += "?source=" + url.QueryEscape(scope.SourceID())
		title += " - " + scope.SourceID()
	}

	rss, err := h.generator.Run(feed.Channel{
		Title:     title,
		Link:      h.opts.PublicURL,
		SelfLink:  selfLink,
		Generator: fmt.Sprintf("RSS-Curator/%s", h.opts.Version),
	}, items)
	if err != nil {
		slog.Error("RSS generation error", "scope", scope.String(), "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Header("Content-Type", "application/xml; charset=utf-8")
	c.Header("X-Feed-Items", strconv.Itoa(len(items)))
	c.Header("X-Feed-Scope", scope.String())

	c.String(http.StatusOK, rss)
}

func (h *Handler) GetFeedJSON(c *gin.Context) {
	scope, limit, ok := h.listingParams(c, defaultFeedLimit)
	if !ok {
		return
	}

	items, err := h.curator.Items(c.Request.Context(), scope, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"total": len(items),
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().In(h.location()).Format(time.RFC3339),
		"cache":     h.opts.CacheBackend,
		"version":   h.opts.Version,
	}

	if count, err := h.curator.SourceCount(c.Request.Context()); err == nil {
		health["sources"] = count
	} else {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListItems(c *gin.Context) {
	scope, limit, ok := h.listingParams(c, defaultListLimit)
	if !ok {
		return
	}

	items, err := h.curator.ListItems(c.Request.Context(), scope, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"items":   items,
		"total":   len(items),
	})
}

func (h *Handler) APIPublish(c *gin.Context) {
	var req publishRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title and link are required")
		return
	}

	if err := feed.ValidateURL(req.Link); err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	content, err := decodeContent(req.Content, req.ContentEncoding)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}

	result, err := h.curator.Publish(c.Request.Context(), curator.PublishInput{
		Title:   sanitizeTitle(req.Title),
		Link:    req.Link,
		Content: content,
		Author:  strings.TrimSpace(c.GetHeader(userHeader)),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"document_id": result.DocumentID,
		"edit_url":    result.EditURL,
	})
}

func (h *Handler) APIGetDocument(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		respondBadRequest(c, "Invalid document id")
		return
	}

	doc, err := h.curator.Document(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if doc == nil {
		respondNotFound(c, "Document not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":         doc.ID,
		"title":      doc.Title,
		"content":    doc.Content,
		"status":     doc.Status,
		"author":     doc.Author,
		"created_at": doc.CreatedAt.In(h.location()).Format(time.RFC3339),
	})
}

func (h *Handler) APIGetSettings(c *gin.Context) {
	settings, err := h.curator.Settings(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) APIUpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid settings payload")
		return
	}

	if req.APIKey != nil {
		key := strings.TrimSpace(*req.APIKey)
		req.APIKey = &key
	}

	settings, err := h.curator.UpdateSettings(c.Request.Context(), curator.SettingsUpdate{
		APIKey:       req.APIKey,
		SystemPrompt: req.SystemPrompt,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) APIRestorePrompt(c *gin.Context) {
	settings, err := h.curator.RestoreDefaultPrompt(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *Handler) APIVerifyCredential(c *gin.Context) {
	var req verifyRequest
	// an empty body verifies the stored credential
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "Invalid verify payload")
			return
		}
	}

	result, err := h.curator.VerifyCredential(c.Request.Context(), strings.TrimSpace(req.APIKey))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": result,
	})
}

func (h *Handler) APIListSources(c *gin.Context) {
	sources, err := h.curator.ListSources(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	list := make([]map[string]interface{}, 0, len(sources))
	for _, src := range sources {
		list = append(list, map[string]interface{}{
			"id":      src.ID,
			"name":    src.Name,
			"url":     src.URL,
			"filters": src.Filters,
		})
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"sources": list,
		"total":   len(list),
	})
}

func (h *Handler) APIPutSource(c *gin.Context) {
	id := c.Param("id")

	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "url is required")
		return
	}

	src := feed.Source{
		ID:      id,
		Name:    strings.TrimSpace(req.Name),
		URL:     strings.TrimSpace(req.URL),
		Filters: req.Filters,
	}

	if err := h.curator.SaveSource(c.Request.Context(), src); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"source": gin.H{
			"id":   src.ID,
			"name": src.Name,
			"url":  src.URL,
		},
	})
}

func (h *Handler) APIDeleteSource(c *gin.Context) {
	deleted, err := h.curator.DeleteSource(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if !deleted {
		respondNotFound(c, "Source not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) APIReloadSources(c *gin.Context) {
	count, err := h.curator.ReloadSources(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Sources reloaded",
		"sources": count,
	})
}

// listingParams reads ?source= and ?limit=. It writes a 400 and returns
// false on a malformed limit.
func (h *Handler) listingParams(c *gin.Context, defaultLimit int) (feed.Scope, int, bool) {
	scope := feed.ScopeFor(strings.TrimSpace(c.Query("source")))

	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondBadRequest(c, "limit must be a positive integer")
			return scope, 0, false
		}
		limit = min(n, maxLimit)
	}

	return scope, limit, true
}

func (h *Handler) location() *time.Location {
	if h.opts.Location != nil {
		return h.opts.Location
	}
	return time.UTC
}

func decodeContent(content, encoding string) (string, error) {
	switch encoding {
	case "", "plain":
		return content, nil
	case "base64":
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return "", fmt.Errorf("content is not valid base64")
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported content encoding %q", encoding)
	}
}

// sanitizeTitle normalizes to NFC and drops control characters.
func sanitizeTitle(title string) string {
	title = norm.NFC.String(title)
	title = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, title)
	return strings.Join(strings.Fields(title), " ")
}
