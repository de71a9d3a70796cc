package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/socialsync/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// CompanyIDQueryParam is the query parameter carrying the target company
const CompanyIDQueryParam = "companyId"

// CompanyGuard rejects requests whose companyId query parameter does not
// match the authenticated company from the JWT. A token for company A can
// never read or mutate company B's platform connections.
func CompanyGuard(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimed := GetJWTCompanyID(c)
		if claimed == "" {
			// No claims means the route was registered outside the JWT
			// group by mistake. Refuse rather than trust the query param.
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeUnauthorized, "Authentication required", c.GetString("request_id")))
			return
		}

		requested := c.Query(CompanyIDQueryParam)
		if requested == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "companyId query parameter is required", c.GetString("request_id")))
			return
		}

		if requested != claimed {
			if log != nil {
				log.Warn("company guard rejected cross-company request",
					zap.String("claimed_company_id", claimed),
					zap.String("requested_company_id", requested),
					zap.String("path", c.Request.URL.Path),
				)
			}
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeForbidden, "Access to this company is not allowed", c.GetString("request_id")))
			return
		}

		c.Next()
	}
}
