package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func newGuardedRouter(t *testing.T, companyID string) *gin.Engine {
	t.Helper()
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if companyID != "" {
			c.Set(JWTCompanyIDKey, companyID)
		}
		c.Next()
	})
	router.Use(CompanyGuard(zaptest.NewLogger(t)))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestCompanyGuard_MatchingCompany(t *testing.T) {
	companyID := uuid.New().String()
	router := newGuardedRouter(t, companyID)

	req := httptest.NewRequest(http.MethodGet, "/test?companyId="+companyID, nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCompanyGuard_CrossCompanyRejected(t *testing.T) {
	router := newGuardedRouter(t, uuid.New().String())

	req := httptest.NewRequest(http.MethodGet, "/test?companyId="+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "ERR_FORBIDDEN")
}

func TestCompanyGuard_MissingQueryParam(t *testing.T) {
	router := newGuardedRouter(t, uuid.New().String())

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyGuard_NoClaims(t *testing.T) {
	router := newGuardedRouter(t, "")

	req := httptest.NewRequest(http.MethodGet, "/test?companyId="+uuid.New().String(), nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
