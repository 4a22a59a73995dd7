package main

import (
	"errors"
	"huletfish/src/db"
	"huletfish/src/lib"
	"huletfish/src/middlewares"
	"huletfish/src/models"
	"huletfish/src/models/scopes"
	"huletfish/src/types"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/bookings", func(ctx *gin.Context) {
			userId := ctx.GetUint("id")
			db := db.GetDb()
			var bookings []models.Booking
			err := db.WithContext(ctx.Request.Context()).
				Model(&models.Booking{}).
				Scopes(scopes.WithUser(userId)).
				Order("starts_at desc").
				Find(&bookings).
				Error
			if err != nil {
				log.Printf("[Bookings] Error listing bookings of user %d: %s\n", userId, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": bookings, "count": len(bookings)})
		}).
		GET("/bookings/:id", func(ctx *gin.Context) {
			var params types.SimpleRequestParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				badRequest(ctx, err)
				return
			}
			db := db.GetDb()
			q := db.WithContext(ctx.Request.Context()).Scopes(scopes.WithID(params.ID))
			if !middlewares.IsAdmin(ctx) {
				q = q.Scopes(scopes.WithUser(ctx.GetUint("id")))
			}
			var booking models.Booking
			if err := q.First(&booking).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					ctx.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Booking not found"})
					return
				}
				log.Printf("[Bookings] Error retrieving booking %d: %s\n", params.ID, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"success": true, "data": booking})
		})
	return g
}

func deviceHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.POST("/devices", func(ctx *gin.Context) {
		var body types.RegisterDeviceRequestBody
		if err := ctx.ShouldBindJSON(&body); err != nil {
			log.Printf("[FCM] error: %v\n", err)
			badRequest(ctx, err)
			return
		}
		rd := lib.GetRedisClient()
		if rd == nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Push notifications are unavailable"})
			return
		}
		if err := lib.SaveDeviceToken(ctx.Request.Context(), rd, ctx.GetUint("id"), body.Token); err != nil {
			log.Printf("[FCM] Error saving device token: %s\n", err.Error())
			ctx.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Internal server error"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"success": true})
	})
	return g
}
