package main

import (
	"cbs/src/cinema"
	"cbs/src/middlewares"
	"cbs/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func walletHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/wallet", func(ctx *gin.Context) {
			user, err := middlewares.CurrentUser(ctx)
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"address": user.Address, "balance": user.Balance})
		}).
		POST("/wallet/deposit", func(ctx *gin.Context) {
			var body types.DepositRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user, err := middlewares.CurrentUser(ctx)
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			if err := cinema.Deposit(user, body.Amount); err != nil {
				log.Printf("Error on deposit for %s: %s\n", user.Address, err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
