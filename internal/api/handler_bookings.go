package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artin59/3311-Project-sub001/internal/booking"
	"github.com/artin59/3311-Project-sub001/internal/model"
)

// GetUserBookings handles GET /api/users/:user_id/bookings.
func (h *Handler) GetUserBookings(c *gin.Context) {
	bookings, err := h.bookings.BookingsForUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	c.JSON(http.StatusOK, bookings)
}

// GetBooking handles GET /api/bookings/:id.
func (h *Handler) GetBooking(c *gin.Context) {
	b, err := h.bookings.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// PostBooking handles POST /api/bookings.
func (h *Handler) PostBooking(c *gin.Context) {
	var req booking.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	out, err := h.bookings.CreateBooking(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// PatchBooking handles PATCH /api/bookings/:id.
func (h *Handler) PatchBooking(c *gin.Context) {
	var req booking.EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	req.BookingID = c.Param("id")
	out, err := h.bookings.EditBooking(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// DeleteBooking handles DELETE /api/bookings/:id and refunds the booking.
func (h *Handler) DeleteBooking(c *gin.Context) {
	h.byID(c, h.bookings.CancelBooking)
}

type extendRequest struct {
	Hours int `json:"hours" binding:"required"`
}

// PostExtend handles POST /api/bookings/:id/extend.
func (h *Handler) PostExtend(c *gin.Context) {
	var req extendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	out, err := h.bookings.ExtendBooking(c.Request.Context(), c.Param("id"), req.Hours)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PostCheckIn handles POST /api/bookings/:id/checkin.
func (h *Handler) PostCheckIn(c *gin.Context) {
	h.byID(c, h.bookings.CheckIn)
}

// PostCheckOut handles POST /api/bookings/:id/checkout.
func (h *Handler) PostCheckOut(c *gin.Context) {
	h.byID(c, h.bookings.CheckOut)
}

type undoRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

// PostUndo handles POST /api/undo. Only the caller's own latest change
// can be reverted.
func (h *Handler) PostUndo(c *gin.Context) {
	var req undoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}
	out, err := h.bookings.UndoFor(c.Request.Context(), req.UserID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) byID(c *gin.Context, op func(context.Context, string) (*booking.Outcome, error)) {
	out, err := op(c.Request.Context(), c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}
