package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

type reserveRequest struct {
	BookID string `json:"bookId" validate:"required"`
	UserID string `json:"userId"`
}

func (h *Handler) ReserveBook(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req reserveRequest
	if err := c.Bind(&req); err != nil {
		return bindErr(err)
	}
	if err := c.Validate(req); err != nil {
		return bindErr(err)
	}
	r, err := h.librarySvc.ReserveBook(c.Request().Context(), a, req.BookID, req.UserID)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *Handler) CancelReservation(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	r, err := h.librarySvc.CancelReservation(c.Request().Context(), a, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) GetReservation(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	r, err := h.librarySvc.GetReservation(c.Request().Context(), a, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}

func (h *Handler) ListReservations(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	active, err := queryBool(c, "active")
	if err != nil {
		return err
	}
	f := model.ReservationFilter{
		UserID:     c.QueryParam("userId"),
		BookID:     c.QueryParam("bookId"),
		ActiveOnly: active,
	}
	res, err := h.librarySvc.ListReservations(c.Request().Context(), a, f)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
