package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

type borrowRequest struct {
	BookID string `json:"bookId" validate:"required"`
	UserID string `json:"userId"`
	Days   int    `json:"days" validate:"gte=0"`
}

type extendRequest struct {
	Days int `json:"days" validate:"gte=0"`
}

func (h *Handler) BorrowBook(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req borrowRequest
	if err := c.Bind(&req); err != nil {
		return bindErr(err)
	}
	if err := c.Validate(req); err != nil {
		return bindErr(err)
	}
	loan, err := h.librarySvc.BorrowBook(c.Request().Context(), a, req.BookID, req.UserID, req.Days)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, loan)
}

func (h *Handler) ReturnBook(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	res, err := h.librarySvc.ReturnBook(c.Request().Context(), a, c.Param("loanId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *Handler) ExtendLoan(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req extendRequest
	if err := c.Bind(&req); err != nil {
		return bindErr(err)
	}
	if err := c.Validate(req); err != nil {
		return bindErr(err)
	}
	loan, err := h.librarySvc.ExtendLoan(c.Request().Context(), a, c.Param("loanId"), req.Days)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) GetLoan(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	loan, err := h.librarySvc.GetLoan(c.Request().Context(), a, c.Param("loanId"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, loan)
}

func (h *Handler) ListLoans(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	active, err := queryBool(c, "active")
	if err != nil {
		return err
	}
	f := model.LoanFilter{
		UserID:     c.QueryParam("userId"),
		BookID:     c.QueryParam("bookId"),
		ActiveOnly: active,
	}
	loans, err := h.librarySvc.ListLoans(c.Request().Context(), a, f)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}

func (h *Handler) ListOverdue(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	loans, err := h.librarySvc.ListOverdue(c.Request().Context(), a)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, loans)
}
