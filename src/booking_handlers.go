package main

import (
	"cbs/src/cinema"
	"cbs/src/middlewares"
	"cbs/src/types"
	"cbs/src/utils"
	"encoding/hex"
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/bookings", func(ctx *gin.Context) {
			var body types.BookTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user, err := middlewares.CurrentUser(ctx)
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			tokenID, err := cinema.BookTicket(user, body.MovieID, body.Value)
			if err != nil {
				log.Printf("Error booking ticket for movie [%d]: %s\n", body.MovieID, err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"token_id": tokenID})
		}).
		PUT("/bookings/:id/cancel", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user, err := middlewares.CurrentUser(ctx)
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			refund, err := cinema.CancelTicket(user, params.ID)
			if err != nil {
				log.Printf("Error canceling ticket [%d]: %s\n", params.ID, err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"refund": refund})
		}).
		PUT("/tickets/:id/checkin", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := cinema.CheckInTicket(ctx.GetString("address"), params.ID); err != nil {
				log.Printf("Error on ticket check-in [%d]: %s\n", params.ID, err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		}).
		POST("/admission", func(ctx *gin.Context) {
			var body types.CheckInRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			keyEnv := os.Getenv("API_QRC_SECRET")
			key, err := hex.DecodeString(keyEnv)
			if err != nil {
				log.Printf("Could not read entry pass key: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			message, err := utils.DecryptMessage(key, body.Code)
			if err != nil {
				log.Printf("Error decrypting entry pass: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var rawData map[string]any
			if err := json.Unmarshal([]byte(*message), &rawData); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			tokenKey, ok := rawData["tokenId"].(float64)
			if !ok {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "entry pass has no token id"})
				return
			}
			tokenID := uint(tokenKey)
			if err := cinema.CheckInTicket(ctx.GetString("address"), tokenID); err != nil {
				log.Printf("Error on entry-pass admission [%d]: %s\n", tokenID, err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.Status(http.StatusOK)
		})
	return g
}
