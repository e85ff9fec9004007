package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Priyansh-9021/Bike-Rental-System/internal/api/metrics"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/domain"
	"github.com/Priyansh-9021/Bike-Rental-System/internal/core/ports"
)

// BikeHandler handles the rental write path and the read endpoints backing
// the initial fetch and reconnect reconciliation.
type BikeHandler struct {
	service ports.RentalService
}

func NewBikeHandler(service ports.RentalService) *BikeHandler {
	return &BikeHandler{service: service}
}

// Bikes handles GET /api/bikes — the full inventory.
//
// @Summary      List all bikes
// @Tags         bikes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Bike
// @Failure      401  {object}  errorResponse
// @Router       /api/bikes [get]
func (h *BikeHandler) Bikes(c echo.Context) error {
	snap, err := h.service.Bikes(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap.Bikes)
}

// MyBikes handles GET /api/my-bikes — bikes owned by the caller.
//
// @Summary      List the caller's bikes
// @Tags         bikes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Bike
// @Failure      401  {object}  errorResponse
// @Router       /api/my-bikes [get]
func (h *BikeHandler) MyBikes(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	bikes, err := h.service.MyBikes(c.Request().Context(), username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, bikes)
}

// ListBike handles POST /api/list-bike — adds a bike to the inventory.
//
// @Summary      List a bike for rent
// @Tags         bikes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      listBikeRequest  true  "Bike details"
// @Success      201   {object}  domain.Bike
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/list-bike [post]
func (h *BikeHandler) ListBike(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	var req listBikeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bike, err := h.service.ListBike(c.Request().Context(), username, ports.ListBikeInput{
		Model:         req.Model,
		Location:      req.Location,
		ModelYear:     req.ModelYear,
		RentRate:      req.RentRate,
		ContactNumber: req.ContactNumber,
		PhotoURL:      req.PhotoURL,
	})
	if err != nil {
		return err
	}

	metrics.BikesListedTotal.Inc()
	return c.JSON(http.StatusCreated, bike)
}

// Book handles POST /api/book.
//
// @Summary      Book a bike
// @Tags         bikes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        Idempotency-Key  header    string         false  "Replay guard for retried submissions"
// @Param        body             body      bikeIDRequest  true   "Bike to book"
// @Success      200              {object}  ackResponse
// @Failure      401              {object}  errorResponse
// @Failure      404              {object}  errorResponse
// @Failure      409              {object}  errorResponse
// @Router       /api/book [post]
func (h *BikeHandler) Book(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	var req bikeIDRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	err = h.service.Book(c.Request().Context(), ports.BookInput{
		BikeID:         req.BikeID,
		Requester:      username,
		IdempotencyKey: c.Request().Header.Get("Idempotency-Key"),
	})
	if err != nil {
		countConflict("book", err)
		return err
	}

	metrics.BookingsTotal.Inc()
	return c.JSON(http.StatusOK, ackResponse{Success: true, Message: "bike booked successfully"})
}

// Return handles POST /api/return.
//
// @Summary      Return a booked bike
// @Tags         bikes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bikeIDRequest  true  "Bike to return"
// @Success      200   {object}  ackResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/return [post]
func (h *BikeHandler) Return(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	var req bikeIDRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Return(c.Request().Context(), req.BikeID, username); err != nil {
		countConflict("return", err)
		return err
	}

	metrics.ReturnsTotal.Inc()
	return c.JSON(http.StatusOK, ackResponse{Success: true, Message: "bike returned successfully"})
}

// Remove handles POST /api/remove-bike.
//
// @Summary      Remove one of the caller's bikes
// @Tags         bikes
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      bikeIDRequest  true  "Bike to remove"
// @Success      200   {object}  ackResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /api/remove-bike [post]
func (h *BikeHandler) Remove(c echo.Context) error {
	username, err := ctxUsername(c)
	if err != nil {
		return err
	}

	var req bikeIDRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.Remove(c.Request().Context(), req.BikeID, username); err != nil {
		countConflict("remove", err)
		return err
	}

	return c.JSON(http.StatusOK, ackResponse{Success: true, Message: "bike removed successfully"})
}

func countConflict(operation string, err error) {
	switch err {
	case domain.ErrBikeUnavailable, domain.ErrBikeBooked, domain.ErrBikeNotBooked:
		metrics.WriteConflictsTotal.WithLabelValues(operation).Inc()
	}
}
