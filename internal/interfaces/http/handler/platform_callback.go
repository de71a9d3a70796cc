package handler

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	platformapp "github.com/socialsync/backend/internal/application/platform"
	"github.com/socialsync/backend/internal/domain/identity"
	"github.com/socialsync/backend/internal/domain/platform"
	"github.com/socialsync/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Redirect error codes surfaced to the UI after a failed callback
const (
	redirectErrMissingCodeOrState = "missing_code_or_state"
	redirectErrInvalidState       = "invalid_state"
	redirectErrStateExpired       = "state_expired"
	redirectErrCompanyNotFound    = "company_not_found"
	redirectErrExchangeFailed     = "exchange_failed"
	redirectErrMissingCaps        = "missing_capabilities"
	redirectErrReauthRequired     = "reauthorization_required"
	redirectErrUnavailable        = "platform_unavailable"
	redirectErrRateLimited        = "rate_limited"
	redirectErrSyncFailed         = "sync_failed"
)

// PlatformCallbackHandler handles the unauthenticated OAuth redirect targets.
// The platform sends the user's browser here, so every outcome is a 302 back
// to the UI rather than a JSON body.
type PlatformCallbackHandler struct {
	BaseHandler
	connectService *platformapp.ConnectService
	meta           config.MetaConfig
	logger         *zap.Logger
}

// NewPlatformCallbackHandler creates a new PlatformCallbackHandler
func NewPlatformCallbackHandler(connectService *platformapp.ConnectService, meta config.MetaConfig, logger *zap.Logger) *PlatformCallbackHandler {
	return &PlatformCallbackHandler{
		connectService: connectService,
		meta:           meta,
		logger:         logger,
	}
}

// RegisterRoutes registers the OAuth callback routes
func (h *PlatformCallbackHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/platform/pages/callback", h.PagesCallback)
	rg.GET("/platform/pixels/callback", h.PixelsCallback)
}

// PagesCallback godoc
// @Summary      Page OAuth callback
// @Description  Redirect target for the platform's OAuth dialog. Exchanges the code, syncs pages and redirects the browser back to the UI.
// @Tags         platform
// @Param        code query string true "Authorization code"
// @Param        state query string true "Signed state token"
// @Success      302
// @Router       /platform/pages/callback [get]
func (h *PlatformCallbackHandler) PagesCallback(c *gin.Context) {
	h.callback(c, platform.ResourceKindPage)
}

// PixelsCallback godoc
// @Summary      Pixel OAuth callback
// @Description  Redirect target for the platform's OAuth dialog. Exchanges the code, syncs ad pixels and redirects the browser back to the UI.
// @Tags         platform
// @Param        code query string true "Authorization code"
// @Param        state query string true "Signed state token"
// @Success      302
// @Router       /platform/pixels/callback [get]
func (h *PlatformCallbackHandler) PixelsCallback(c *gin.Context) {
	h.callback(c, platform.ResourceKindPixel)
}

func (h *PlatformCallbackHandler) callback(c *gin.Context, kind platform.ResourceKind) {
	code := c.Query("code")
	state := c.Query("state")
	if code == "" || state == "" {
		h.redirectError(c, redirectErrMissingCodeOrState)
		return
	}

	result, err := h.connectService.Callback(c.Request.Context(), kind, code, state)
	if err != nil {
		h.logger.Warn("platform callback failed",
			zap.String("kind", kind.String()),
			zap.Error(err),
		)
		h.redirectError(c, redirectErrorCode(err))
		return
	}

	h.redirectSuccess(c, result)
}

// redirectErrorCode maps a callback error to the code the UI shows
func redirectErrorCode(err error) string {
	switch {
	case errors.Is(err, platform.ErrStateExpired):
		return redirectErrStateExpired
	case errors.Is(err, platform.ErrStateInvalid):
		return redirectErrInvalidState
	case errors.Is(err, identity.ErrCompanyNotFound):
		return redirectErrCompanyNotFound
	case errors.Is(err, platform.ErrExchangeFailed):
		return redirectErrExchangeFailed
	case errors.Is(err, platform.ErrMissingCapabilities):
		return redirectErrMissingCaps
	case errors.Is(err, platform.ErrReauthorizationRequired):
		return redirectErrReauthRequired
	case errors.Is(err, platform.ErrPlatformRateLimited):
		return redirectErrRateLimited
	case errors.Is(err, platform.ErrPlatformUnavailable):
		return redirectErrUnavailable
	default:
		return redirectErrSyncFailed
	}
}

func (h *PlatformCallbackHandler) redirectSuccess(c *gin.Context, result *platformapp.CallbackResult) {
	params := url.Values{}
	params.Set("success", "true")
	params.Set("pages", strconv.Itoa(len(result.Synced)))
	params.Set("skipped", strconv.Itoa(len(result.Skipped)))

	if len(result.Skipped) > 0 {
		detail, err := json.Marshal(result.Skipped)
		if err == nil {
			params.Set("skipped_detail", base64.URLEncoding.EncodeToString(detail))
		} else {
			h.logger.Error("failed to encode skipped detail", zap.Error(err))
		}
	}

	c.Redirect(http.StatusFound, h.uiRedirectURL(params))
}

func (h *PlatformCallbackHandler) redirectError(c *gin.Context, code string) {
	params := url.Values{}
	params.Set("success", "false")
	params.Set("error", code)
	c.Redirect(http.StatusFound, h.uiRedirectURL(params))
}

func (h *PlatformCallbackHandler) uiRedirectURL(params url.Values) string {
	return h.meta.UIRedirectBase + "/settings/integrations?" + params.Encode()
}
