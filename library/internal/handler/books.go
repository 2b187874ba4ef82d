package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

func (h *Handler) ListBooks(c echo.Context) error {
	page, err := queryInt(c, "page")
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size")
	if err != nil {
		return err
	}
	books, err := h.librarySvc.ListBooks(c.Request().Context(), page, size)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, books)
}

func (h *Handler) GetBook(c echo.Context) error {
	book, err := h.librarySvc.GetBook(c.Request().Context(), c.Param("bookId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, book)
}

func (h *Handler) ImportBook(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req model.BookDescriptor
	if err := c.Bind(&req); err != nil {
		return bindErr(err)
	}
	if err := c.Validate(req); err != nil {
		return bindErr(err)
	}
	book, err := h.librarySvc.ImportBook(c.Request().Context(), a, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, book)
}

func (h *Handler) Queue(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	queue, err := h.librarySvc.Queue(c.Request().Context(), a, c.Param("bookId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, queue)
}
