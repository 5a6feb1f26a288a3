package main

import (
	"cbs/src/cinema"
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

func movieHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/movies", func(ctx *gin.Context) {
			var movies []models.Movie
			gdb := db.GetDb()
			if err := gdb.Order("start_time asc").Find(&movies).Error; err != nil {
				log.Printf("Error retrieving Movies: %s\n", err.Error())
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": movies, "count": len(movies)})
		}).
		GET("/movies/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			var movie models.Movie
			gdb := db.GetDb()
			if err := gdb.Preload("Hall").First(&movie, params.ID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.Status(http.StatusNotFound)
					return
				}
				ctx.Status(http.StatusBadRequest)
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": movie})
		}).
		POST("/movies", middlewares.AdminRequired, func(ctx *gin.Context) {
			var body types.CreateMovieRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			startTime, err := time.Parse(config.TIME_PARSE_FORMAT, body.StartTime)
			if err != nil {
				log.Printf("Error parsing start_time: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			id, err := cinema.AddNewMovie(ctx.GetString("address"), body.HallID, body.Title, startTime, body.TicketPrice)
			if err != nil {
				log.Printf("Error creating Movie: %s\n", err.Error())
				abortWithError(ctx, err)
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"id": id})
		})
	return g
}
