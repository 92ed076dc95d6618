package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artin59/3311-Project-sub001/internal/booking"
	"github.com/artin59/3311-Project-sub001/internal/model"
)

// GetRooms handles GET /api/rooms.
func (h *Handler) GetRooms(c *gin.Context) {
	rooms, err := h.bookings.Rooms(c.Request.Context())
	if err != nil {
		abortWithError(c, err)
		return
	}
	if rooms == nil {
		rooms = []model.Room{}
	}
	c.JSON(http.StatusOK, rooms)
}

// GetRoom handles GET /api/rooms/:number.
func (h *Handler) GetRoom(c *gin.Context) {
	room, err := h.bookings.Room(c.Request.Context(), c.Param("number"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// PostRoom handles POST /api/rooms.
func (h *Handler) PostRoom(c *gin.Context) {
	var req booking.NewRoom
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	room, err := h.bookings.AddRoom(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

type putRoomStatusRequest struct {
	Status model.AdminStatus `json:"status" binding:"required"`
}

// PutRoomStatus handles PUT /api/rooms/:number/status.
func (h *Handler) PutRoomStatus(c *gin.Context) {
	var req putRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	room, err := h.bookings.SetRoomStatus(c.Request.Context(), c.Param("number"), req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, room)
}

// PostMaintenance handles POST /api/rooms/:number/maintenance. Any
// booking holding the room is cancelled and refunded.
func (h *Handler) PostMaintenance(c *gin.Context) {
	out, err := h.bookings.SetMaintenance(c.Request.Context(), c.Param("number"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DeleteMaintenance handles DELETE /api/rooms/:number/maintenance.
func (h *Handler) DeleteMaintenance(c *gin.Context) {
	out, err := h.bookings.ClearMaintenance(c.Request.Context(), c.Param("number"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
