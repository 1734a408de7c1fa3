package common

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/treklog/treklog/database/repo/base"
)

// PageParams reads skip/take query parameters. Values are normalized by the
// service layer; garbage input falls back to zero.
func PageParams(c *gin.Context) base.Params {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	take, _ := strconv.Atoi(c.DefaultQuery("take", "0"))
	return base.Params{Skip: skip, Take: take}
}
