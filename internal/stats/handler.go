package stats

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"moviehub/internal/api"
	"moviehub/internal/errlog"
	"moviehub/internal/health"
	"moviehub/internal/links"
	"moviehub/pkg/models"
)

type Handler struct {
	Repo    *Repo
	Links   *links.Repo
	Ledger  *errlog.Repo
	Tracker *health.Tracker
}

func NewHandler(repo *Repo, linksRepo *links.Repo, ledger *errlog.Repo, tracker *health.Tracker) *Handler {
	return &Handler{Repo: repo, Links: linksRepo, Ledger: ledger, Tracker: tracker}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/dashboard/stats", h.dashboard)
	rg.GET("/dashboard/activity-chart", h.activityChart)
	rg.GET("/search-analytics", h.searchAnalytics)
}

// RegisterIngestRoutes exposes the unauthenticated tracking endpoints
// the public API calls on every search and download.
func (h *Handler) RegisterIngestRoutes(rg *gin.RouterGroup) {
	rg.POST("/track-search", h.trackSearch)
	rg.POST("/track-download", h.trackDownload)
}

type trackSearchReq struct {
	Query        string `json:"query"`
	ResultsCount int    `json:"results_count"`
}

func (h *Handler) trackSearch(c *gin.Context) {
	var req trackSearchReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.Repo.TrackSearch(c.Request.Context(), SearchRecord{
		Query:        req.Query,
		ResultsCount: req.ResultsCount,
		IPAddress:    c.ClientIP(),
	})
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tracked"})
}

type trackDownloadReq struct {
	TmdbID     *int64 `json:"tmdb_id"`
	MovieTitle string `json:"movie_title"`
	Quality    string `json:"quality"`
}

func (h *Handler) trackDownload(c *gin.Context) {
	var req trackDownloadReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	err := h.Repo.TrackDownload(c.Request.Context(), DownloadRecord{
		TmdbID:     req.TmdbID,
		MovieTitle: req.MovieTitle,
		Quality:    req.Quality,
		IPAddress:  c.ClientIP(),
	})
	if err != nil {
		api.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "tracked"})
}

func (h *Handler) dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	weekAgo := time.Now().UTC().AddDate(0, 0, -7)

	out := models.DashboardStats{}

	var err error
	if out.TodaySearches, err = h.Repo.TodaySearches(ctx); err != nil {
		api.WriteError(c, err)
		return
	}
	if out.TodayDownloads, err = h.Repo.TodayDownloads(ctx); err != nil {
		api.WriteError(c, err)
		return
	}
	if out.TotalManualLinks, err = h.Links.CountActive(ctx); err != nil {
		api.WriteError(c, err)
		return
	}

	unresolved := false
	_, total, err := h.Ledger.List(ctx, errlog.ListQuery{Resolved: &unresolved, Limit: 1})
	if err != nil {
		api.WriteError(c, err)
		return
	}
	out.UnresolvedErrors = total

	if out.TopSearches, err = h.Repo.TopSearches(ctx, weekAgo, 10); err != nil {
		api.WriteError(c, err)
		return
	}
	if out.TopDownloads, err = h.Repo.TopDownloads(ctx, weekAgo, 10); err != nil {
		api.WriteError(c, err)
		return
	}
	if out.Sources, err = h.Tracker.ListSources(ctx); err != nil {
		api.WriteError(c, err)
		return
	}
	if out.RecentErrors, _, err = h.Ledger.List(ctx, errlog.ListQuery{Limit: 5}); err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (h *Handler) activityChart(c *gin.Context) {
	days := parseDays(c.Query("days"), 7)
	ctx := c.Request.Context()

	searches, err := h.Repo.DailySeries(ctx, "search_logs", "search_timestamp", days)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	downloads, err := h.Repo.DailySeries(ctx, "download_stats", "download_timestamp", days)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.ActivityChart{Searches: searches, Downloads: downloads})
}

func (h *Handler) searchAnalytics(c *gin.Context) {
	days := parseDays(c.Query("days"), 30)
	ctx := c.Request.Context()
	since := time.Now().UTC().AddDate(0, 0, -days)

	top, err := h.Repo.TopSearches(ctx, since, 20)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	daily, err := h.Repo.DailySeries(ctx, "search_logs", "search_timestamp", days)
	if err != nil {
		api.WriteError(c, err)
		return
	}
	zero, err := h.Repo.ZeroResultQueries(ctx, since, 20)
	if err != nil {
		api.WriteError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SearchAnalytics{
		TopQueries:    top,
		DailySearches: daily,
		ZeroResults:   zero,
	})
}

func parseDays(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 365 {
		return fallback
	}
	return n
}
