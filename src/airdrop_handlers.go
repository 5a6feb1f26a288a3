package main

import (
	"cbs/src/airdrop"
	"cbs/src/config"
	"cbs/src/db"
	"cbs/src/middlewares"
	"cbs/src/models"
	"cbs/src/types"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func airdropHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/airdrops/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var window models.Airdrop
			gdb := db.GetDb()
			if err := gdb.Preload("Movie").First(&window, params.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": window})
		}).
		POST("/airdrops", middlewares.AdminRequired, func(ctx *gin.Context) {
			var body types.CreateAirdropRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			startAt, err := time.Parse(config.TIME_PARSE_FORMAT, body.StartAt)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			endAt, err := time.Parse(config.TIME_PARSE_FORMAT, body.EndAt)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := airdrop.DelegateNewAirdropForMovie(ctx.GetString("address"), body.MovieID, body.MerkleRoot, startAt, endAt)
			if err != nil {
				log.Printf("Error creating airdrop for movie [%d]: %s\n", body.MovieID, err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		}).
		POST("/airdrops/claim", func(ctx *gin.Context) {
			var body types.ClaimRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user, err := middlewares.CurrentUser(ctx)
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			tokenID, err := airdrop.Claim(user, body.MovieID, body.Proof)
			if err != nil {
				log.Printf("Error on claim by %s for movie [%d]: %s\n", user.Address, body.MovieID, err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"token_id": tokenID})
		})
	return g
}
