package httpapi

import (
	"net/http"

	"myforum/internal/adapters/httpapi/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type StatsController struct {
	sc     StatsUseCase
	logger *zap.Logger
}

func NewStatsController(sc StatsUseCase, logger *zap.Logger) *StatsController {
	return &StatsController{sc: sc, logger: logger}
}

func (ctl *StatsController) UserLikeStats(c *gin.Context) {
	res, err := ctl.sc.UserLikeStats(c.Request.Context(), middleware.ViewerFrom(c))
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (ctl *StatsController) WeeklyLikes(c *gin.Context) {
	res, err := ctl.sc.WeeklyLikes(c.Request.Context())
	if err != nil {
		respondError(c, ctl.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"weeks": res})
}
