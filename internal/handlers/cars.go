package handlers

import (
	"net/http"

	"task-manager/api/internal/services"

	"github.com/gin-gonic/gin"
)

type CarHandler struct {
	carService services.CarService
}

func NewCarHandler(carService services.CarService) *CarHandler {
	return &CarHandler{carService: carService}
}

func (h *CarHandler) ListCars(c *gin.Context) {
	cars, err := h.carService.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(cars), "data": cars})
}

func (h *CarHandler) GetCar(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	car, err := h.carService.Get(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": car})
}

func (h *CarHandler) CreateCar(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req carRequest
	if !bind(c, &req) {
		return
	}
	car, err := h.carService.Create(c.Request.Context(), p, req.model())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "data": car})
}

func (h *CarHandler) UpdateCar(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req carRequest
	if !bind(c, &req) {
		return
	}
	car, err := h.carService.Update(c.Request.Context(), p, id, req.model())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": car})
}

func (h *CarHandler) DeleteCar(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, ok := paramID(c)
	if !ok {
		return
	}
	if err := h.carService.Delete(c.Request.Context(), p, id); err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
}
