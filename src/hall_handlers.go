package main

import (
	"cbs/src/cinema"
	"cbs/src/db"
	"cbs/src/middlewares"
	"cbs/src/models"
	"cbs/src/types"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func hallHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/halls", func(ctx *gin.Context) {
			var halls []models.Hall
			gdb := db.GetDb()
			if err := gdb.Order("id asc").Find(&halls).Error; err != nil {
				log.Printf("Error retrieving Halls: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": halls, "count": len(halls)})
		}).
		GET("/halls/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var hall models.Hall
			gdb := db.GetDb()
			if err := gdb.Preload("Movies").First(&hall, params.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": hall})
		}).
		POST("/halls", middlewares.AdminRequired, func(ctx *gin.Context) {
			var body types.CreateHallRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := cinema.AddNewHall(ctx.GetString("address"), body.Name, body.TotalSeats)
			if err != nil {
				log.Printf("Error creating Hall: %s\n", err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		})
	return g
}
