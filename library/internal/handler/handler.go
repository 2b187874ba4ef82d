package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Astemirdum/library-circulation/library/internal/errs"
	"github.com/Astemirdum/library-circulation/library/internal/model"
	"github.com/Astemirdum/library-circulation/pkg/auth"
	md "github.com/Astemirdum/library-circulation/pkg/middleware"
	"github.com/Astemirdum/library-circulation/pkg/validate"
)

const XErrorKindHeader = "X-Error-Kind"

type Handler struct {
	librarySvc LibraryService
	log        *zap.Logger
}

func New(librarySvc LibraryService, log *zap.Logger) *Handler {
	return &Handler{
		librarySvc: librarySvc,
		log:        log.Named("handler"),
	}
}

func (h *Handler) NewRouter(apiRPS int) *echo.Echo {
	e := echo.New()
	const baseRPS = 10
	e.HideBanner = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = validate.NewCustomValidator()

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", md.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)

	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(md.RequestLoggerConfig(h.log)),
		middleware.RequestID(),
		md.NewRateLimiter(rate.Limit(apiRPS)),
		md.AuthContext,
	)

	api.GET("/books", h.ListBooks)
	api.POST("/books", h.ImportBook)
	api.GET("/books/:bookId", h.GetBook)
	api.GET("/books/:bookId/queue", h.Queue)

	api.POST("/loans", h.BorrowBook)
	api.GET("/loans", h.ListLoans)
	api.GET("/loans/overdue", h.ListOverdue)
	api.GET("/loans/:loanId", h.GetLoan)
	api.POST("/loans/:loanId/return", h.ReturnBook)
	api.POST("/loans/:loanId/extend", h.ExtendLoan)

	api.POST("/reservations", h.ReserveBook)
	api.GET("/reservations", h.ListReservations)
	api.GET("/reservations/:id", h.GetReservation)
	api.DELETE("/reservations/:id", h.CancelReservation)

	api.POST("/purchase-requests", h.SubmitPurchaseRequest)
	api.GET("/purchase-requests", h.ListPurchaseRequests)
	api.GET("/purchase-requests/:id", h.GetPurchaseRequest)
	api.POST("/purchase-requests/:id/decision", h.DecidePurchaseRequest)
	api.POST("/purchase-requests/:id/ordered", h.MarkOrdered)
	api.POST("/purchase-requests/:id/received", h.MarkReceived)
	api.POST("/purchase-requests/:id/admit", h.AdmitToLibrary)

	return e
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// actor reads the identity AuthContext put into the request context.
func actor(c echo.Context) (model.Actor, error) {
	ctx := c.Request().Context()
	userName, err := auth.GetUserName(ctx)
	if err != nil {
		return model.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	roleName, err := auth.GetUserRole(ctx)
	if err != nil {
		return model.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, err.Error())
	}
	role, ok := model.ParseRole(roleName)
	if !ok {
		return model.Actor{}, echo.NewHTTPError(http.StatusForbidden, "unknown role "+roleName)
	}
	return model.Actor{UserID: userName, Role: role}, nil
}

var statusByKind = map[string]int{
	"not_found":             http.StatusNotFound,
	"forbidden":             http.StatusForbidden,
	"validation":            http.StatusBadRequest,
	"busy":                  http.StatusServiceUnavailable,
	"conflict":              http.StatusConflict,
	"invalid_transition":    http.StatusConflict,
	"book_unavailable":      http.StatusConflict,
	"book_available":        http.StatusConflict,
	"already_borrowing":     http.StatusConflict,
	"already_returned":      http.StatusConflict,
	"already_terminal":      http.StatusConflict,
	"duplicate_reservation": http.StatusConflict,
	"duplicate_request":     http.StatusConflict,
	"loan_overdue":          http.StatusUnprocessableEntity,
	"loan_limit":            http.StatusUnprocessableEntity,
	"reservation_limit":     http.StatusUnprocessableEntity,
	"request_limit":         http.StatusUnprocessableEntity,
	"has_overdue":           http.StatusUnprocessableEntity,
	"queue_waiting":         http.StatusUnprocessableEntity,
	"extension_limit":       http.StatusUnprocessableEntity,
	"admission_failed":      http.StatusUnprocessableEntity,
}

// httpError maps a service error onto a status and exposes its kind in X-Error-Kind.
func httpError(c echo.Context, err error) error {
	kind := errs.Kind(err)
	c.Response().Header().Set(XErrorKindHeader, kind)
	status, ok := statusByKind[kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	return echo.NewHTTPError(status, err.Error()).SetInternal(err)
}

func bindErr(err error) error {
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he
	}
	if fields := validate.Fields(err); fields != nil {
		return echo.NewHTTPError(http.StatusBadRequest, errs.NewValidationError(fields))
	}
	return echo.NewHTTPError(http.StatusBadRequest, err.Error())
}

func queryInt(c echo.Context, name string) (int, error) {
	param := c.QueryParam(name)
	if param == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(param)
	if err != nil || v < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, errors.New(name+" is invalid"))
	}
	return v, nil
}

func queryBool(c echo.Context, name string) (bool, error) {
	param := c.QueryParam(name)
	if param == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(param)
	if err != nil {
		return false, echo.NewHTTPError(http.StatusBadRequest, errors.New(name+" is invalid"))
	}
	return v, nil
}
