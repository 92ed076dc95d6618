package api

import (
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/artin59/3311-Project-sub001/config"
	"github.com/artin59/3311-Project-sub001/internal/mw"
	"github.com/artin59/3311-Project-sub001/internal/store"
)

// NewRouter creates and configures a new Gin router. cacheStore backs the
// room listing cache; the caller also subscribes an invalidator for it to
// the booking observers so background changes flush it.
func NewRouter(cfg *config.ServerConfig, b Bookings, subs store.SubscriptionStore, webpushOptions *webpush.Options, cacheStore *cache.Cache) *gin.Engine {
	r := gin.Default()

	handler := NewHandler(b, subs, webpushOptions)

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst, cfg.RequestIPHeader)
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	caching := mw.Cache(cacheStore, ttl)

	api := r.Group("/api")
	api.Use(rateLimiter, mw.Invalidate(cacheStore))
	{
		api.GET("/rooms", caching, handler.GetRooms)
		api.POST("/rooms", handler.PostRoom)
		api.GET("/rooms/:number", caching, handler.GetRoom)
		api.PUT("/rooms/:number/status", handler.PutRoomStatus)
		api.POST("/rooms/:number/maintenance", handler.PostMaintenance)
		api.DELETE("/rooms/:number/maintenance", handler.DeleteMaintenance)

		api.GET("/users/:user_id/bookings", handler.GetUserBookings)
		api.POST("/bookings", handler.PostBooking)
		api.GET("/bookings/:id", handler.GetBooking)
		api.PATCH("/bookings/:id", handler.PatchBooking)
		api.DELETE("/bookings/:id", handler.DeleteBooking)
		api.POST("/bookings/:id/extend", handler.PostExtend)
		api.POST("/bookings/:id/checkin", handler.PostCheckIn)
		api.POST("/bookings/:id/checkout", handler.PostCheckOut)
		api.POST("/undo", handler.PostUndo)

		api.GET("/subscriptions", handler.GetSubscription)
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)
	}

	return r
}
