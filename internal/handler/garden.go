package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/garden-directory/internal/model"
	"github.com/iliyamo/garden-directory/internal/repository"
)

// GardenHandler bundles dependencies for the garden CRUD endpoints.
type GardenHandler struct {
	Gardens *repository.GardenRepo
	Tags    *repository.TagRepo
}

func NewGardenHandler(g *repository.GardenRepo, t *repository.TagRepo) *GardenHandler {
	return &GardenHandler{Gardens: g, Tags: t}
}

// ----- DTOs -----

// createGardenReq accepts tags as plain names; they are resolved to
// tag rows on write. Latitude/longitude and the boolean flags use
// pointers so "absent" is distinguishable from zero values.
type createGardenReq struct {
	Name        string   `json:"name"`
	Description *string  `json:"description"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
	StreetName  *string  `json:"street_name"`
	Photo       *string  `json:"photo"`
	IsPublic    *bool    `json:"is_public"`
	Joinable    *bool    `json:"joinable"`
	OwnerID     uint64   `json:"owner_id"`
	Tags        []string `json:"tags"`
}

type tagResp struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// gardenResp is the wire view of a garden; tags come back expanded to
// objects even though they are accepted as names on write.
type gardenResp struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	StreetName  *string   `json:"street_name,omitempty"`
	Photo       *string   `json:"photo,omitempty"`
	IsPublic    bool      `json:"is_public"`
	Joinable    bool      `json:"joinable"`
	OwnerID     uint64    `json:"owner_id"`
	Tags        []tagResp `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
}

func toGardenResp(g *model.Garden) gardenResp {
	tags := make([]tagResp, 0, len(g.Tags))
	for _, t := range g.Tags {
		tags = append(tags, tagResp{ID: t.ID, Name: t.Name})
	}
	return gardenResp{
		ID:          g.ID,
		Name:        g.Name,
		Description: g.Description,
		Latitude:    g.Latitude,
		Longitude:   g.Longitude,
		StreetName:  g.StreetName,
		Photo:       g.Photo,
		IsPublic:    g.IsPublic,
		Joinable:    g.Joinable,
		OwnerID:     g.OwnerID,
		Tags:        tags,
		CreatedAt:   g.CreatedAt,
	}
}

// Create validates the request, normalizes tag names and persists the
// garden together with its tag associations in one unit of work.
func (h *GardenHandler) Create(c echo.Context) error {
	var req createGardenReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.OwnerID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner_id required"})
	}
	if req.Latitude == nil || req.Longitude == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "latitude/longitude required"})
	}
	// Blank tag names are rejected at the boundary, before any write.
	tagNames := make([]string, 0, len(req.Tags))
	for _, name := range req.Tags {
		name = strings.TrimSpace(name)
		if name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "tag names must not be blank"})
		}
		tagNames = append(tagNames, name)
	}

	g := model.Garden{
		OwnerID:     req.OwnerID,
		Name:        req.Name,
		Description: req.Description,
		Latitude:    *req.Latitude,
		Longitude:   *req.Longitude,
		StreetName:  req.StreetName,
		Photo:       req.Photo,
		IsPublic:    true,
		Joinable:    true,
	}
	if req.IsPublic != nil {
		g.IsPublic = *req.IsPublic
	}
	if req.Joinable != nil {
		g.Joinable = *req.Joinable
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	if err := h.Gardens.Create(ctx, &g, tagNames); err != nil {
		if errors.Is(err, repository.ErrInvalidOwner) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "owner with this ID does not exist"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create garden failed"})
	}
	return c.JSON(http.StatusOK, toGardenResp(&g))
}

// List returns a page of gardens with their tags.
func (h *GardenHandler) List(c echo.Context) error {
	skip, limit := pageParams(c)

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	gardens, err := h.Gardens.List(ctx, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]gardenResp, 0, len(gardens))
	for _, g := range gardens {
		out = append(out, toGardenResp(g))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetByID returns one garden with tags, or 404.
func (h *GardenHandler) GetByID(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	g, err := h.Gardens.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrGardenNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "garden not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, toGardenResp(g))
}

// ListTags returns the tags attached to a garden.
func (h *GardenHandler) ListTags(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	ok, err := h.Gardens.Exists(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "garden not found"})
	}
	tags, err := h.Tags.ListByGarden(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	out := make([]tagResp, 0, len(tags))
	for _, t := range tags {
		out = append(out, tagResp{ID: t.ID, Name: t.Name})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
