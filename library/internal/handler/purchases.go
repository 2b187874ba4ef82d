package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/library-circulation/library/internal/model"
)

type decisionRequest struct {
	Approve *bool  `json:"approve" validate:"required"`
	Comment string `json:"comment" validate:"max=2000"`
}

type commentRequest struct {
	Comment string `json:"comment" validate:"max=2000"`
}

func (h *Handler) SubmitPurchaseRequest(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req model.PurchaseDescriptor
	if err := c.Bind(&req); err != nil {
		return bindErr(err)
	}
	pr, err := h.librarySvc.SubmitPurchaseRequest(c.Request().Context(), a, req)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusCreated, pr)
}

func (h *Handler) DecidePurchaseRequest(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req decisionRequest
	if err := c.Bind(&req); err != nil {
		return bindErr(err)
	}
	if err := c.Validate(req); err != nil {
		return bindErr(err)
	}
	pr, err := h.librarySvc.DecidePurchaseRequest(c.Request().Context(), a, c.Param("id"), *req.Approve, req.Comment)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, pr)
}

type transitionFunc func(ctx context.Context, actor model.Actor, id, comment string) (model.PurchaseRequest, error)

// transition serves the comment-only workflow steps.
func (h *Handler) transition(c echo.Context, fn transitionFunc) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return bindErr(err)
	}
	if err := c.Validate(req); err != nil {
		return bindErr(err)
	}
	pr, err := fn(c.Request().Context(), a, c.Param("id"), req.Comment)
	if err != nil {
		if pr.ID != "" {
			// admission failed after receipt was stored; report the stored state too
			c.Response().Header().Set("X-Request-Status", string(pr.Status))
		}
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, pr)
}

func (h *Handler) MarkOrdered(c echo.Context) error {
	return h.transition(c, h.librarySvc.MarkOrdered)
}

func (h *Handler) MarkReceived(c echo.Context) error {
	return h.transition(c, h.librarySvc.MarkReceived)
}

func (h *Handler) AdmitToLibrary(c echo.Context) error {
	return h.transition(c, h.librarySvc.AdmitToLibrary)
}

func (h *Handler) GetPurchaseRequest(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	pr, err := h.librarySvc.GetPurchaseRequest(c.Request().Context(), a, c.Param("id"))
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, pr)
}

func (h *Handler) ListPurchaseRequests(c echo.Context) error {
	a, err := actor(c)
	if err != nil {
		return err
	}
	f := model.PurchaseFilter{
		RequesterID: c.QueryParam("requesterId"),
		Status:      model.PurchaseStatus(strings.ToUpper(c.QueryParam("status"))),
	}
	res, err := h.librarySvc.ListPurchaseRequests(c.Request().Context(), a, f)
	if err != nil {
		return httpError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
