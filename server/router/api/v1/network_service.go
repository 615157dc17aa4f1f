package v1

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apierr "github.com/omar251/CinemaTec-sub001/internal/errors"
	"github.com/omar251/CinemaTec-sub001/server/service/network"
	"github.com/omar251/CinemaTec-sub001/store"
)

type createNetworkRequest struct {
	SeedID      string `json:"seedId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MaxDepth    int    `json:"maxDepth"`
	MaxBreadth  int    `json:"maxBreadth"`
}

// CreateNetwork crawls outward from a seed movie and persists the resulting
// network. Builds are bounded by a semaphore; excess requests wait.
func (s *APIV1Service) CreateNetwork(c echo.Context) error {
	request := &createNetworkRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierr.InvalidArgument("malformed request body"))
	}
	if request.SeedID == "" {
		return replyError(c, apierr.InvalidArgument("seedId is required"))
	}

	ctx := c.Request().Context()
	if err := s.crawlSemaphore.Acquire(ctx, 1); err != nil {
		return replyError(c, apierr.Timeout("request canceled while waiting for a crawl slot"))
	}
	defer s.crawlSemaphore.Release(1)

	built, err := s.Crawler.Build(ctx, request.SeedID, network.Options{
		MaxDepth:    request.MaxDepth,
		MaxBreadth:  request.MaxBreadth,
		Name:        request.Name,
		Description: request.Description,
	})
	if err != nil {
		return replyError(c, err)
	}

	saved, err := s.Store.SaveNetwork(ctx, built)
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusCreated, saved)
}

// ListNetworks returns summaries of all persisted networks, newest first.
func (s *APIV1Service) ListNetworks(c echo.Context) error {
	summaries, err := s.Store.ListNetworks(c.Request().Context())
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, summaries)
}

// GetNetwork returns a full persisted network.
func (s *APIV1Service) GetNetwork(c echo.Context) error {
	network, err := s.Store.GetNetwork(c.Request().Context(), c.Param("id"))
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, network)
}

type updateNetworkRequest struct {
	Name        *string              `json:"name"`
	Description *string              `json:"description"`
	Nodes       []*store.NetworkNode `json:"nodes"`
	Links       []*store.NetworkLink `json:"links"`
	Settings    map[string]string    `json:"settings"`
}

// UpdateNetwork applies a partial update to a persisted network.
func (s *APIV1Service) UpdateNetwork(c echo.Context) error {
	request := &updateNetworkRequest{}
	if err := c.Bind(request); err != nil {
		return replyError(c, apierr.InvalidArgument("malformed request body"))
	}

	updated, err := s.Store.UpdateNetwork(c.Request().Context(), c.Param("id"), &store.UpdateNetwork{
		Name:        request.Name,
		Description: request.Description,
		Nodes:       request.Nodes,
		Links:       request.Links,
		Settings:    request.Settings,
	})
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteNetwork removes a persisted network.
func (s *APIV1Service) DeleteNetwork(c echo.Context) error {
	if err := s.Store.DeleteNetwork(c.Request().Context(), c.Param("id")); err != nil {
		return replyError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ExportNetwork renders a network as JSON, CSV or GraphML and returns it as a
// file attachment.
func (s *APIV1Service) ExportNetwork(c echo.Context) error {
	format := store.ExportFormat(c.QueryParam("format"))
	if format == "" {
		format = store.ExportFormatJSON
	}

	export, err := s.Store.ExportNetwork(c.Request().Context(), c.Param("id"), format)
	if err != nil {
		return replyError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.Filename))
	return c.Blob(http.StatusOK, export.ContentType, export.Payload)
}

// GetNetworkStats aggregates over all persisted networks.
func (s *APIV1Service) GetNetworkStats(c echo.Context) error {
	stats, err := s.Store.GetNetworkStats(c.Request().Context())
	if err != nil {
		return replyError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
