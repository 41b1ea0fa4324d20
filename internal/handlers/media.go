package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/caronelabs/mediad/internal/media"
)

// MediaHandler serves the media asset API and the file serving routes.
type MediaHandler struct {
	logger       *slog.Logger
	store        *media.StoreService
	get          *media.GetService
	del          *media.DeleteService
	cacheMinutes int
}

// NewMediaHandler creates the media handler.
func NewMediaHandler(log *slog.Logger, store *media.StoreService, get *media.GetService, del *media.DeleteService, cacheMinutes int) *MediaHandler {
	return &MediaHandler{
		logger:       log.With(slog.String("handler", "media")),
		store:        store,
		get:          get,
		del:          del,
		cacheMinutes: cacheMinutes,
	}
}

// Register mounts the media API under /api/media and the serving routes
// under /media.
func (h *MediaHandler) Register(e *echo.Echo) {
	api := e.Group("/api/media")
	api.GET("/types", h.Types)
	api.POST("/upload", h.Upload)
	api.POST("/external", h.StoreExternal)
	api.GET("/:id", h.Get)
	api.DELETE("/:id", h.Delete)
	api.DELETE("", h.DeleteMany)
	api.DELETE("/kind/:kind", h.DeleteByKind)
	api.POST("/sweep/:kind", h.Sweep)

	e.GET("/media/:kind/:file", h.Serve)
	e.GET("/media/:kind/thumbnails/:file", h.ServeThumbnail)
}

// kindInfo describes one enabled media kind.
type kindInfo struct {
	Kind       media.Kind `json:"kind"`
	Extensions []string   `json:"extensions"`
	Thumbnails bool       `json:"thumbnails"`
}

// Types godoc
// @Summary List enabled media kinds
// @Description Returns the kinds accepted for upload with their allowed extensions.
// @Tags media
// @Produce json
// @Success 200 {array} kindInfo
// @Router /api/media/types [get]
func (h *MediaHandler) Types(c echo.Context) error {
	kinds := h.get.EnabledKinds()
	out := make([]kindInfo, 0, len(kinds))
	for _, k := range kinds {
		out = append(out, kindInfo{
			Kind:       k,
			Extensions: h.get.SupportedExtensions(k),
			Thumbnails: k.SupportsThumbnail(),
		})
	}
	return c.JSON(http.StatusOK, out)
}

// Upload godoc
// @Summary Upload a media file
// @Description Stores a multipart upload. When "kind" is omitted it is detected
// @Description from the file extension. "file_name" requests an exact name and
// @Description fails with 409 when taken; otherwise names are sanitized and
// @Description suffixed on collision.
// @Tags media
// @Accept mpfd
// @Produce json
// @Param file formData file true "Payload"
// @Param kind formData string false "image|video|audio|document"
// @Param file_name formData string false "Explicit base name (no extension)"
// @Param directory formData string false "Target sub-directory"
// @Param disk formData string false "Target disk name"
// @Param display_name formData string false "Display name"
// @Param description formData string false "Description"
// @Param date formData string false "RFC 3339 or YYYY-MM-DD"
// @Param meta formData string false "Extra metadata as a JSON object"
// @Param generate_thumbnail formData bool false "Derive a thumbnail (default true)"
// @Success 201 {object} media.Asset
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/media/upload [post]
func (h *MediaHandler) Upload(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart field \"file\" is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	defer src.Close()

	req := media.StoreLocalRequest{
		Payload:           src,
		OriginalName:      fileHeader.Filename,
		FileName:          strings.TrimSpace(c.FormValue("file_name")),
		Directory:         strings.TrimSpace(c.FormValue("directory")),
		Disk:              strings.TrimSpace(c.FormValue("disk")),
		DisplayName:       strings.TrimSpace(c.FormValue("display_name")),
		Description:       c.FormValue("description"),
		DeclaredMime:      fileHeader.Header.Get("Content-Type"),
		Size:              fileHeader.Size,
		GenerateThumbnail: true,
	}
	if raw := c.FormValue("kind"); raw != "" {
		kind, err := media.ParseKind(raw)
		if err != nil {
			return mapMediaError(err)
		}
		req.Kind = kind
	}
	if raw := c.FormValue("date"); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		req.Date = date
	}
	if raw := c.FormValue("meta"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &req.Meta); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "meta must be a JSON object")
		}
	}
	if raw := c.FormValue("generate_thumbnail"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "generate_thumbnail must be a boolean")
		}
		req.GenerateThumbnail = enabled
	}

	asset, err := h.store.StoreLocal(c.Request().Context(), req)
	if err != nil {
		return mapMediaError(err)
	}
	return c.JSON(http.StatusCreated, asset)
}

// externalRequest is the JSON body for registering external media.
type externalRequest struct {
	Kind        string         `json:"kind"`
	URL         string         `json:"url"`
	DisplayName string         `json:"display_name"`
	Description string         `json:"description"`
	Date        string         `json:"date"`
	Meta        map[string]any `json:"meta"`
}

// StoreExternal godoc
// @Summary Register externally hosted media
// @Description Records a media reference by URL without storing any bytes.
// @Tags media
// @Accept json
// @Produce json
// @Param payload body externalRequest true "External media reference"
// @Success 201 {object} media.Asset
// @Failure 400 {object} ErrorResponse
// @Router /api/media/external [post]
func (h *MediaHandler) StoreExternal(c echo.Context) error {
	var body externalRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req := media.StoreExternalRequest{
		Kind:        media.Kind(strings.ToLower(strings.TrimSpace(body.Kind))),
		URL:         strings.TrimSpace(body.URL),
		DisplayName: body.DisplayName,
		Description: body.Description,
		Meta:        body.Meta,
	}
	if body.Date != "" {
		date, err := parseDate(body.Date)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		req.Date = date
	}

	asset, err := h.store.StoreExternal(c.Request().Context(), req)
	if err != nil {
		return mapMediaError(err)
	}
	return c.JSON(http.StatusCreated, asset)
}

// Get godoc
// @Summary Get a media record
// @Tags media
// @Produce json
// @Param id path int true "Asset ID"
// @Success 200 {object} media.Asset
// @Failure 404 {object} ErrorResponse
// @Router /api/media/{id} [get]
func (h *MediaHandler) Get(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	asset, err := h.get.GetByID(c.Request().Context(), id)
	if err != nil {
		return mapMediaError(err)
	}
	return c.JSON(http.StatusOK, asset)
}

// Delete godoc
// @Summary Delete a media asset
// @Description Removes the asset's files and its record. Safe to repeat on
// @Description records whose files already vanished.
// @Tags media
// @Param id path int true "Asset ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /api/media/{id} [delete]
func (h *MediaHandler) Delete(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}
	if err := h.del.DeleteOne(c.Request().Context(), id); err != nil {
		return mapMediaError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// deleteManyRequest is the JSON body for bulk deletion.
type deleteManyRequest struct {
	IDs []int64 `json:"ids"`
}

// DeleteMany godoc
// @Summary Delete multiple media assets
// @Description Deletes each id independently; failures are reported per id
// @Description and never abort the batch.
// @Tags media
// @Accept json
// @Produce json
// @Param payload body deleteManyRequest true "Asset IDs"
// @Success 200 {object} media.BatchResult
// @Failure 400 {object} ErrorResponse
// @Router /api/media [delete]
func (h *MediaHandler) DeleteMany(c echo.Context) error {
	var body deleteManyRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(body.IDs) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "ids is required")
	}
	result := h.del.DeleteMany(c.Request().Context(), body.IDs)
	return c.JSON(http.StatusOK, result)
}

// DeleteByKind godoc
// @Summary Delete media assets by kind
// @Description Deletes every asset of the kind, optionally narrowed by
// @Description "source" and "disk" query filters.
// @Tags media
// @Produce json
// @Param kind path string true "image|video|audio|document"
// @Param source query string false "local|external"
// @Param disk query string false "Disk name"
// @Success 200 {object} media.BatchResult
// @Failure 400 {object} ErrorResponse
// @Router /api/media/kind/{kind} [delete]
func (h *MediaHandler) DeleteByKind(c echo.Context) error {
	kind, err := media.ParseKind(c.Param("kind"))
	if err != nil {
		return mapMediaError(err)
	}
	filters := map[string]string{}
	if v := c.QueryParam("source"); v != "" {
		filters["source"] = v
	}
	if v := c.QueryParam("disk"); v != "" {
		filters["disk"] = v
	}
	result, err := h.del.DeleteByKind(c.Request().Context(), kind, filters)
	if err != nil {
		return mapMediaError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Sweep godoc
// @Summary Sweep orphaned files for a kind
// @Description Deletes files in the kind's storage directory that no record
// @Description references. Per-file failures are reported without aborting.
// @Tags media
// @Produce json
// @Param kind path string true "image|video|audio|document"
// @Success 200 {object} media.SweepResult
// @Failure 400 {object} ErrorResponse
// @Router /api/media/sweep/{kind} [post]
func (h *MediaHandler) Sweep(c echo.Context) error {
	kind, err := media.ParseKind(c.Param("kind"))
	if err != nil {
		return mapMediaError(err)
	}
	result, err := h.del.SweepOrphans(c.Request().Context(), kind)
	if err != nil {
		return mapMediaError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// Serve godoc
// @Summary Serve a stored media file
// @Tags media
// @Param kind path string true "image|video|audio|document"
// @Param file path string true "File name"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /media/{kind}/{file} [get]
func (h *MediaHandler) Serve(c echo.Context) error {
	kind, err := media.ParseKind(c.Param("kind"))
	if err != nil {
		return mapMediaError(err)
	}
	f, err := h.get.ServeByName(c.Request().Context(), kind, c.Param("file"))
	if err != nil {
		return mapMediaError(err)
	}
	defer f.Close()
	h.setCacheHeader(c)
	return c.Stream(http.StatusOK, f.ContentType, f.Reader)
}

// ServeThumbnail godoc
// @Summary Serve a stored thumbnail
// @Tags media
// @Param kind path string true "image|video|audio|document"
// @Param file path string true "File name"
// @Success 200 {file} binary
// @Failure 404 {object} ErrorResponse
// @Router /media/{kind}/thumbnails/{file} [get]
func (h *MediaHandler) ServeThumbnail(c echo.Context) error {
	kind, err := media.ParseKind(c.Param("kind"))
	if err != nil {
		return mapMediaError(err)
	}
	f, err := h.get.ServeThumbnailByName(c.Request().Context(), kind, c.Param("file"))
	if err != nil {
		return mapMediaError(err)
	}
	defer f.Close()
	h.setCacheHeader(c)
	return c.Stream(http.StatusOK, f.ContentType, f.Reader)
}

func (h *MediaHandler) setCacheHeader(c echo.Context) {
	if h.cacheMinutes <= 0 {
		return
	}
	c.Response().Header().Set("Cache-Control",
		fmt.Sprintf("public, max-age=%d", h.cacheMinutes*60))
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid asset id")
	}
	return id, nil
}

func parseDate(raw string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (use RFC 3339 or YYYY-MM-DD)", raw)
}

// mapMediaError translates the media error taxonomy to HTTP statuses.
func mapMediaError(err error) error {
	switch {
	case media.IsValidation(err):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case media.IsNameConflict(err):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, media.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
