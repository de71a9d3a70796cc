package handler

import (
	"github.com/gin-gonic/gin"
	platformapp "github.com/socialsync/backend/internal/application/platform"
	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/interfaces/http/middleware"
	"go.uber.org/zap"
)

// PlatformConnectHandler handles the authenticated platform link endpoints
type PlatformConnectHandler struct {
	BaseHandler
	connectService *platformapp.ConnectService
	logger         *zap.Logger
}

// NewPlatformConnectHandler creates a new PlatformConnectHandler
func NewPlatformConnectHandler(connectService *platformapp.ConnectService, logger *zap.Logger) *PlatformConnectHandler {
	return &PlatformConnectHandler{
		connectService: connectService,
		logger:         logger,
	}
}

// RegisterRoutes registers the platform link routes. Every route is behind
// the company guard: the companyId query parameter must match the JWT claim.
func (h *PlatformConnectHandler) RegisterRoutes(rg *gin.RouterGroup) {
	guard := middleware.CompanyGuard(h.logger)

	pages := rg.Group("/platform/pages", guard)
	{
		pages.GET("/authorize", h.AuthorizePages)
		pages.GET("/status", h.PagesStatus)
		pages.DELETE("/disconnect", h.DisconnectPages)
	}

	pixels := rg.Group("/platform/pixels", guard)
	{
		pixels.GET("/authorize", h.AuthorizePixels)
		pixels.GET("/status", h.PixelsStatus)
		pixels.DELETE("/disconnect", h.DisconnectPixels)
	}

	skipped := rg.Group("/platform/skipped-resources", guard)
	{
		skipped.GET("", h.ListSkipped)
		skipped.POST("/resolve", h.ResolveSkipped)
	}
}

// DisconnectRequest lists the resources to disconnect
// @Description Request body for disconnecting linked resources. An empty list disconnects everything connected of that kind.
type DisconnectRequest struct {
	ResourceIDs []string `json:"resource_ids" example:"102934857261830"`
}

// ResolveSkippedRequest lists the skip records to resolve
// @Description Request body for resolving skip records. An empty list resolves all unresolved records for the company.
type ResolveSkippedRequest struct {
	ResourceIDs []string `json:"resource_ids" example:"102934857261830"`
}

// AuthorizePages godoc
// @Summary      Start the page authorization flow
// @Description  Returns the platform OAuth dialog URL with page scopes and a signed state token.
// @Tags         platform
// @Produce      json
// @Param        companyId query string true "Company ID" format(uuid)
// @Success      200 {object} dto.Response{data=platformapp.AuthorizeResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/pages/authorize [get]
func (h *PlatformConnectHandler) AuthorizePages(c *gin.Context) {
	h.authorize(c, platform.ResourceKindPage)
}

// AuthorizePixels godoc
// @Summary      Start the pixel authorization flow
// @Description  Returns the platform OAuth dialog URL with ad pixel scopes and a signed state token.
// @Tags         platform
// @Produce      json
// @Param        companyId query string true "Company ID" format(uuid)
// @Success      200 {object} dto.Response{data=platformapp.AuthorizeResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/pixels/authorize [get]
func (h *PlatformConnectHandler) AuthorizePixels(c *gin.Context) {
	h.authorize(c, platform.ResourceKindPixel)
}

func (h *PlatformConnectHandler) authorize(c *gin.Context, kind platform.ResourceKind) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.connectService.Authorize(c.Request.Context(), companyID, userID, kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// PagesStatus godoc
// @Summary      List connected pages
// @Description  Returns whether a page token is stored and every page currently connected to the company, with best-effort webhook subscription state.
// @Tags         platform
// @Produce      json
// @Param        companyId query string true "Company ID" format(uuid)
// @Success      200 {object} dto.Response{data=platformapp.ConnectionStatusResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/pages/status [get]
func (h *PlatformConnectHandler) PagesStatus(c *gin.Context) {
	h.status(c, platform.ResourceKindPage)
}

// PixelsStatus godoc
// @Summary      List connected pixels
// @Description  Returns whether a pixel token is stored and every ad pixel currently connected to the company.
// @Tags         platform
// @Produce      json
// @Param        companyId query string true "Company ID" format(uuid)
// @Success      200 {object} dto.Response{data=platformapp.ConnectionStatusResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/pixels/status [get]
func (h *PlatformConnectHandler) PixelsStatus(c *gin.Context) {
	h.status(c, platform.ResourceKindPixel)
}

func (h *PlatformConnectHandler) status(c *gin.Context, kind platform.ResourceKind) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.connectService.Status(c.Request.Context(), companyID, kind)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// DisconnectPages godoc
// @Summary      Disconnect linked pages
// @Description  Marks the given pages as disconnected. An empty resource_ids list disconnects every connected page of the company.
// @Tags         platform
// @Accept       json
// @Produce      json
// @Param        companyId query string true "Company ID" format(uuid)
// @Param        request body DisconnectRequest true "Resources to disconnect"
// @Success      200 {object} dto.Response{data=platformapp.DisconnectResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/pages/disconnect [delete]
func (h *PlatformConnectHandler) DisconnectPages(c *gin.Context) {
	h.disconnect(c, platform.ResourceKindPage)
}

// DisconnectPixels godoc
// @Summary      Disconnect linked pixels
// @Description  Marks the given ad pixels as disconnected. An empty resource_ids list disconnects every connected pixel of the company.
// @Tags         platform
// @Accept       json
// @Produce      json
// @Param        companyId query string true "Company ID" format(uuid)
// @Param        request body DisconnectRequest true "Resources to disconnect"
// @Success      200 {object} dto.Response{data=platformapp.DisconnectResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/pixels/disconnect [delete]
func (h *PlatformConnectHandler) DisconnectPixels(c *gin.Context) {
	h.disconnect(c, platform.ResourceKindPixel)
}

func (h *PlatformConnectHandler) disconnect(c *gin.Context, kind platform.ResourceKind) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req DisconnectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.connectService.Disconnect(c.Request.Context(), companyID, kind, req.ResourceIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}

// ListSkipped godoc
// @Summary      List unresolved skip records
// @Description  Returns resources that could not be linked because another company already owns them.
// @Tags         platform
// @Produce      json
// @Param        companyId query string true "Company ID" format(uuid)
// @Success      200 {object} dto.Response{data=[]platformapp.SkippedResourceResponse}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/skipped-resources [get]
func (h *PlatformConnectHandler) ListSkipped(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	skipped, err := h.connectService.ListSkipped(c.Request.Context(), companyID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, skipped)
}

// ResolveSkipped godoc
// @Summary      Resolve skip records
// @Description  Marks skip records as acknowledged. An empty resource_ids list resolves all unresolved records for the company.
// @Tags         platform
// @Accept       json
// @Produce      json
// @Param        companyId query string true "Company ID" format(uuid)
// @Param        request body ResolveSkippedRequest true "Skip records to resolve"
// @Success      200 {object} dto.Response{data=platformapp.ResolveSkippedResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /platform/skipped-resources/resolve [post]
func (h *PlatformConnectHandler) ResolveSkipped(c *gin.Context) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req ResolveSkippedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := h.connectService.ResolveSkipped(c.Request.Context(), companyID, req.ResourceIDs)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, resp)
}
