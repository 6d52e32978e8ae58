package api

import (
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"chainboard/internal/engine"
	"chainboard/internal/models"
)

// snapshot is one loaded dataset with its resolved role mapping. A new load
// replaces the whole snapshot; a failed load leaves the previous one alone.
type snapshot struct {
	ID       uuid.UUID
	Data     *engine.Dataset
	Roles    engine.RoleMap
	Source   string
	LoadedAt time.Time
}

type Handler struct {
	mu   sync.RWMutex
	snap *snapshot

	loader      *engine.Loader
	log         *zap.Logger
	defaultTopN int
	previewRows int
}

func NewHandler(loader *engine.Loader, log *zap.Logger, defaultTopN, previewRows int) *Handler {
	return &Handler{
		loader:      loader,
		log:         log,
		defaultTopN: defaultTopN,
		previewRows: previewRows,
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.POST("/load", h.Load)
	api.GET("/pages/:page", h.GetPage)
	api.GET("/export", h.Export)
	api.GET("/health", h.Health)
}

// SetDataset installs a snapshot directly; used by the background preload
// at startup.
func (h *Handler) SetDataset(ds *engine.Dataset, source string) uuid.UUID {
	snap := &snapshot{
		ID:       uuid.New(),
		Data:     ds,
		Roles:    engine.ResolveRoles(ds.Columns),
		Source:   source,
		LoadedAt: time.Now(),
	}
	h.mu.Lock()
	h.snap = snap
	h.mu.Unlock()
	return snap.ID
}

func (h *Handler) current() *snapshot {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snap
}

type loadRequest struct {
	UseLocal bool   `json:"use_local" form:"use_local"`
	URL      string `json:"url" form:"url"`
}

// Load acquires a dataset from one of the three sources. Multipart uploads
// carry the CSV in a "file" part; use_local and url come from the form or a
// JSON body. Priority: local flag, then upload, then URL.
func (h *Handler) Load(c echo.Context) error {
	var req loadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read load request"})
	}

	src := engine.Source{UseLocal: req.UseLocal, URL: req.URL}
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read upload: " + err.Error()})
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "could not read upload: " + err.Error()})
		}
		src.Upload = data
	}

	ds, source, err := h.loader.Load(c.Request().Context(), src)
	if err != nil {
		if err == engine.ErrNoSource {
			return c.JSON(http.StatusBadRequest, echo.Map{"warning": err.Error()})
		}
		h.log.Warn("load failed", zap.String("source", source), zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Could not load data: " + err.Error()})
	}

	id := h.SetDataset(ds, source)
	h.log.Info("snapshot replaced",
		zap.String("dataset_id", id.String()),
		zap.String("source", source),
		zap.Int("rows", ds.NumRows()))

	return c.JSON(http.StatusOK, models.LoadResult{
		DatasetID: id.String(),
		Source:    source,
		Rows:      ds.NumRows(),
		Columns:   ds.NumColumns(),
	})
}

// GetPage renders one dashboard page as a view model.
func (h *Handler) GetPage(c echo.Context) error {
	kind, ok := ParsePageKind(c.Param("page"))
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "unknown page"})
	}

	snap := h.current()
	if snap == nil && kind.NeedsData() {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Load the dataset from the sidebar first."})
	}

	p := pageParams{topN: h.defaultTopN, previewRows: h.previewRows}
	if raw := c.QueryParam("top_n"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			p.topN = n
		}
	}
	return c.JSON(http.StatusOK, renderPage(kind, snap, p))
}

// Export streams the full current dataset back out as CSV.
func (h *Handler) Export(c echo.Context) error {
	snap := h.current()
	if snap == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "Load the dataset from the sidebar first."})
	}
	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="dataset_export.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return snap.Data.WriteCSV(c.Response())
}

func (h *Handler) Health(c echo.Context) error {
	snap := h.current()
	resp := echo.Map{"status": "ok", "loaded": snap != nil}
	if snap != nil {
		resp["dataset_id"] = snap.ID.String()
		resp["loaded_at"] = snap.LoadedAt
	}
	return c.JSON(http.StatusOK, resp)
}
