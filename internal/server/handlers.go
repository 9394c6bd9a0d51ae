package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"datahub/internal/charts"
	"datahub/internal/config"
	"datahub/internal/filters"
	"datahub/internal/storage"
)

const newsLimit = 10

type filterRequest struct {
	Selects map[string]string `json:"selects"`
	Inputs  map[string]string `json:"inputs"`
}

type resizeRequest struct {
	Width  int `json:"width" binding:"required"`
	Height int `json:"height" binding:"required"`
}

// HandleIndex serves the dashboard page
func (s *Server) HandleIndex(c *gin.Context) {
	page, err := renderPage(buildPageData(s.Session.View(), s.Session.Renderer().Layout()))
	if err != nil {
		s.log.Error("Failed to render dashboard", err)
		c.String(http.StatusInternalServerError, "Service Unavailable")
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page)
}

// HandleHealth provides health check endpoint
func (s *Server) HandleHealth(c *gin.Context) {
	body := gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   config.GetVersion(),
	}
	if s.Session != nil {
		snap := s.Session.Snapshot()
		body["generation"] = snap.Generation
		body["loading"] = s.Session.Loading()
		body["degraded"] = snap.Degraded()
	}
	if s.Hub != nil {
		body["clients"] = s.Hub.Clients()
	}
	c.JSON(http.StatusOK, body)
}

// HandleState returns stat values, sources and filter state
func (s *Server) HandleState(c *gin.Context) {
	c.JSON(http.StatusOK, s.Session.View())
}

// HandleCharts returns every live chart handle
func (s *Server) HandleCharts(c *gin.Context) {
	handles := s.Session.Renderer().Handles()
	c.JSON(http.StatusOK, gin.H{"charts": handles, "count": len(handles)})
}

// HandleChart returns one live chart handle
func (s *Server) HandleChart(c *gin.Context) {
	id := c.Param("id")
	layout := s.Session.Renderer().Layout()
	if _, ok := layout.Canvas(id); !ok {
		errorJSON(c, http.StatusNotFound, "unknown_chart", "No canvas with id "+id)
		return
	}
	h, ok := s.Session.Renderer().Get(id)
	if !ok {
		errorJSON(c, http.StatusNotFound, "not_rendered", "Chart "+id+" has not been drawn yet")
		return
	}
	c.JSON(http.StatusOK, h)
}

// HandleResize changes a canvas size and redraws its chart
func (s *Server) HandleResize(c *gin.Context) {
	var req resizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	id := c.Param("id")
	h, err := s.Session.Renderer().Resize(id, req.Width, req.Height)
	switch {
	case errors.Is(err, charts.ErrUnknownCanvas):
		errorJSON(c, http.StatusNotFound, "unknown_chart", err.Error())
		return
	case err != nil:
		errorJSON(c, http.StatusBadRequest, "invalid_size", err.Error())
		return
	}

	if h == nil {
		c.JSON(http.StatusOK, gin.H{"id": id, "rendered": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "rendered": true, "chart": h})
}

func (s *Server) bindFilters(c *gin.Context) (filters.Set, bool) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_request", err.Error())
		return nil, false
	}
	return filters.Collect(req.Selects, req.Inputs), true
}

// HandleFilters reports a filter form change. Under the reactive policy it
// schedules a debounced recompute, under the manual policy it only records it.
func (s *Server) HandleFilters(c *gin.Context) {
	set, ok := s.bindFilters(c)
	if !ok {
		return
	}
	scheduled := s.Session.ChangeFilters(set)
	c.JSON(http.StatusAccepted, gin.H{
		"scheduled": scheduled,
		"policy":    s.Session.Filters().Policy(),
		"filters":   set,
	})
}

// HandleApplyFilters recomputes charts with the given filters right away
func (s *Server) HandleApplyFilters(c *gin.Context) {
	set, ok := s.bindFilters(c)
	if !ok {
		return
	}
	s.Session.ApplyFilters(set)
	c.JSON(http.StatusOK, gin.H{"filters": set})
}

// HandleRefresh starts a new data load. The load outlives the request.
func (s *Server) HandleRefresh(c *gin.Context) {
	generation := s.Session.Refresh(s.baseContext())
	c.JSON(http.StatusAccepted, gin.H{"generation": generation})
}

// HandleWebSocket upgrades the connection and subscribes the page to updates
func (s *Server) HandleWebSocket(c *gin.Context) {
	if s.Hub == nil {
		errorJSON(c, http.StatusServiceUnavailable, "unavailable", "Live updates are disabled")
		return
	}
	s.Hub.HandleWebSocket(c.Writer, c.Request)
}

// HandleNews returns the latest game news headlines
func (s *Server) HandleNews(c *gin.Context) {
	if s.News == nil || !s.News.Enabled() {
		c.JSON(http.StatusOK, gin.H{"news": []interface{}{}, "enabled": false})
		return
	}
	items := s.News.Latest(c.Request.Context(), newsLimit)
	c.JSON(http.StatusOK, gin.H{"news": items, "enabled": true})
}

// HandleCreateSnapshot stores a snapshot of the current dashboard. Only one
// snapshot is built at a time.
func (s *Server) HandleCreateSnapshot(c *gin.Context) {
	if s.Snapshots == nil {
		errorJSON(c, http.StatusServiceUnavailable, "unavailable", "Snapshot storage is not configured")
		return
	}
	if !s.snapshotLock.TryLock() {
		s.log.Warn("Snapshot already in progress, rejecting request")
		errorJSON(c, http.StatusConflict, "snapshot_in_progress",
			"A snapshot is currently being created. Please wait for it to complete.")
		return
	}
	defer s.snapshotLock.Unlock()

	result, err := s.Snapshots.Create(c.Request.Context(), s.Session)
	if err != nil {
		s.log.Error("Snapshot creation failed", err)
		errorJSON(c, http.StatusInternalServerError, "snapshot_failed", err.Error())
		return
	}
	c.JSON(http.StatusCreated, result)
}

// HandleListSnapshots lists stored snapshots, newest first
func (s *Server) HandleListSnapshots(c *gin.Context) {
	if s.Snapshots == nil {
		errorJSON(c, http.StatusServiceUnavailable, "unavailable", "Snapshot storage is not configured")
		return
	}
	limit := parseLimit(c)
	snapshots, err := s.Snapshots.List(c.Request.Context(), limit)
	if err != nil {
		s.log.Error("Failed to list snapshots", err)
		errorJSON(c, http.StatusInternalServerError, "list_failed", err.Error())
		return
	}
	if snapshots == nil {
		snapshots = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"snapshots": snapshots,
		"count":     len(snapshots),
		"limit":     limit,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HandleFileProxy serves stored snapshot files
func (s *Server) HandleFileProxy(c *gin.Context) {
	if s.Snapshots == nil {
		errorJSON(c, http.StatusServiceUnavailable, "unavailable", "Snapshot storage is not configured")
		return
	}
	p, err := storage.CleanPath(c.Param("path"))
	if err != nil {
		errorJSON(c, http.StatusBadRequest, "invalid_path", err.Error())
		return
	}

	data, err := s.Snapshots.Storage().GetFile(c.Request.Context(), p)
	if errors.Is(err, storage.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, "not_found", "File not found")
		return
	}
	if err != nil {
		s.log.Error("Failed to read stored file", err, map[string]interface{}{"path": p})
		errorJSON(c, http.StatusInternalServerError, "read_failed", "Failed to read file")
		return
	}
	c.Header("Cache-Control", "public, max-age=300")
	c.Data(http.StatusOK, storage.GetContentType(p), data)
}
