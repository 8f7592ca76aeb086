package httpserver

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/avelesov/urlwords/internal/analyzer"
	"github.com/avelesov/urlwords/internal/events"
	"github.com/avelesov/urlwords/internal/logging"
	"github.com/avelesov/urlwords/internal/middleware"
	"github.com/avelesov/urlwords/internal/models"
	"github.com/avelesov/urlwords/internal/repo"
	"github.com/avelesov/urlwords/internal/search"
	"github.com/avelesov/urlwords/internal/util"
)

type URLHTTP struct {
	Repo     *repo.GormRepo
	Analyzer *analyzer.Service
	ES       *search.Client
	Producer *events.Producer
}

func (h *URLHTTP) Analyze(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "urls_analyze")
	user := middleware.CurrentUser(c)

	var req analyzeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	topWords, err := h.Analyzer.AnalyzeURL(ctx, req.URL)
	if err != nil {
		l.Warn("analysis failed", "url", req.URL, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("failed to analyze url: %v", err))
	}

	a := &models.URLAnalysis{
		URL:      req.URL,
		TopWords: topWords,
		UserID:   user.ID,
	}
	if err := h.Repo.SaveAnalysis(ctx, a); err != nil {
		l.Error("save failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	if err := h.ES.IndexAnalysis(ctx, a); err != nil {
		l.Warn("index failed", "analysis_id", a.ID, "error", err)
	}

	h.publish(c, user.ID, map[string]interface{}{
		"type":        "url_analyzed",
		"analysis_id": a.ID,
		"user_id":     user.ID,
		"url":         a.URL,
	})

	return c.JSON(http.StatusCreated, a)
}

func (h *URLHTTP) History(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	page, size, offset := queryPagination(c)
	items, total, err := h.Repo.AnalysesByUser(ctx, user.ID, offset, size)
	if err != nil {
		logging.FromContext(ctx).Error("history query failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, paginatedAnalyses{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: util.Pages(total, size),
	})
}

func (h *URLHTTP) HistoryAll(c echo.Context) error {
	ctx := c.Request().Context()

	page, size, offset := queryPagination(c)
	items, total, err := h.Repo.AllAnalyses(ctx, offset, size)
	if err != nil {
		logging.FromContext(ctx).Error("history query failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, paginatedAnalyses{
		Items: items,
		Total: total,
		Page:  page,
		Size:  size,
		Pages: util.Pages(total, size),
	})
}

func (h *URLHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	user := middleware.CurrentUser(c)

	if h.ES == nil || h.ES.ES == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
	}

	q := c.QueryParam("q")
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
	}

	_, size, offset := queryPagination(c)
	total, docs, err := h.ES.SearchAnalyses(ctx, user.ID, q, offset, size)
	if err != nil {
		logging.FromContext(ctx).Error("search failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}

	return c.JSON(http.StatusOK, echo.Map{"total": total, "items": docs})
}

func (h *URLHTTP) publish(c echo.Context, userID uint, event map[string]interface{}) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Producer.PublishEvent(ctx, events.TopicAnalysisEvents, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(c.Request().Context()).Warn("event publish failed", "topic", events.TopicAnalysisEvents, "error", err)
	}
}

func queryPagination(c echo.Context) (page, size, offset int) {
	page, _ = strconv.Atoi(c.QueryParam("page"))
	size, _ = strconv.Atoi(c.QueryParam("size"))
	return util.Normalize(page, size)
}
