package main

import (
	"cbs/src/cinema"
	"cbs/src/db"
	"cbs/src/middlewares"
	"cbs/src/models"
	"cbs/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func treasuryHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/treasury", middlewares.AdminRequired, func(ctx *gin.Context) {
			gdb := db.GetDb()
			treasury, err := models.GetTreasury(gdb)
			if err != nil {
				log.Printf("Error retrieving Treasury: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": treasury})
		}).
		POST("/treasury/withdraw", middlewares.AdminRequired, func(ctx *gin.Context) {
			var body types.WithdrawRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			admin, err := middlewares.CurrentUser(ctx)
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			if err := cinema.Withdraw(admin, body.Amount); err != nil {
				log.Printf("Error on withdrawal of %d: %s\n", body.Amount, err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		GET("/trail", middlewares.AdminRequired, func(ctx *gin.Context) {
			var entries []models.TrailLog
			gdb := db.GetDb()
			if err := gdb.Order("created_at desc").Limit(100).Find(&entries).Error; err != nil {
				log.Printf("Error retrieving trail: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": entries, "count": len(entries)})
		})
	return g
}
