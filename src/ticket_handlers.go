package main

import (
	"cbs/src/cinema"
	"cbs/src/db"
	"cbs/src/lib"
	"cbs/src/middlewares"
	"cbs/src/models"
	"cbs/src/registry"
	"cbs/src/types"
	"cbs/src/utils"
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/yeqown/go-qrcode"
)

func ticketHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/tickets", func(ctx *gin.Context) {
			var tickets []models.Ticket
			gdb := db.GetDb()
			if err := gdb.
				Where(&models.Ticket{OwnerID: ctx.GetUint("id")}).
				Order("created_at desc").
				Find(&tickets).Error; err != nil {
				log.Printf("Error retrieving Tickets: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": tickets, "count": len(tickets)})
		}).
		GET("/tickets/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			ticket, err := registry.GetTokenMetadata(gdb, params.ID)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": ticket})
		}).
		POST("/tickets/:id/transfer", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var body types.TransferTicketRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			user, err := middlewares.CurrentUser(ctx)
			if err != nil {
				ctx.Status(http.StatusUnauthorized)
				return
			}
			if err := cinema.TransferTicket(user, params.ID, body.To); err != nil {
				log.Printf("Error transferring ticket [%d]: %s\n", params.ID, err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.Status(http.StatusNoContent)
		}).
		GET("/tickets/:id/code", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			gdb := db.GetDb()
			ticket, err := registry.GetTokenMetadata(gdb, params.ID)
			if err != nil {
				abortWithError(ctx, err)
				return
			}
			if ticket.OwnerID != ctx.GetUint("id") {
				ctx.Status(http.StatusForbidden)
				return
			}

			cacheKey := fmt.Sprintf("entrypass_%s", ticket.Slug)
			if rd := lib.GetRedisClient(); rd != nil {
				cached, err := rd.Get(context.Background(), cacheKey).Result()
				if err == nil {
					ctx.JSON(http.StatusOK, gin.H{"code": cached})
					return
				}
				if !errors.Is(err, redis.Nil) {
					log.Printf("Error reading entry pass from cache: %s\n", err.Error())
				}
			}

			keyEnv := os.Getenv("API_QRC_SECRET")
			key, err := hex.DecodeString(keyEnv)
			if err != nil {
				log.Printf("Could not read entry pass key: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			payload, _ := json.Marshal(map[string]any{
				"tokenId": ticket.ID,
				"movieId": ticket.MovieID,
				"owner":   ticket.Owner,
			})
			code, err := utils.EncryptMessage(key, string(payload))
			if err != nil {
				log.Printf("Error encrypting entry pass: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			qrc, err := qrcode.New(code)
			if err != nil {
				log.Printf("Error rendering entry pass code: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			wd, err := os.Getwd()
			if err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			filepath := path.Join(wd, "assets", fmt.Sprintf("%s.jpeg", ticket.Slug))
			if err := os.MkdirAll(path.Dir(filepath), 0o755); err != nil {
				ctx.Status(http.StatusBadRequest)
				return
			}
			if err := qrc.Save(filepath); err != nil {
				log.Printf("Could not save entry pass to file [%s]: %s\n", filepath, err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}

			if rd := lib.GetRedisClient(); rd != nil {
				rd.SetEx(context.Background(), cacheKey, code, 2*time.Hour)
			}
			ctx.JSON(http.StatusOK, gin.H{"code": code, "image": filepath})
		})
	return g
}
