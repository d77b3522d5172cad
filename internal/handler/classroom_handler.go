package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/attendify/attendify-api/internal/service"
	"github.com/attendify/attendify-api/pkg/response"
)

// ClassroomHandler exposes classroom endpoints.
type ClassroomHandler struct {
	classrooms *service.ClassroomService
}

// NewClassroomHandler constructs ClassroomHandler.
func NewClassroomHandler(classrooms *service.ClassroomService) *ClassroomHandler {
	return &ClassroomHandler{classrooms: classrooms}
}

// List godoc
// @Summary List active classrooms
// @Tags Classrooms
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classrooms [get]
func (h *ClassroomHandler) List(c *gin.Context) {
	classrooms, err := h.classrooms.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classrooms, nil)
}

// Get godoc
// @Summary Get classroom detail
// @Tags Classrooms
// @Produce json
// @Param code path string true "Class code"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{code} [get]
func (h *ClassroomHandler) Get(c *gin.Context) {
	classroom, err := h.classrooms.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classroom, nil)
}

// Students godoc
// @Summary List students of a classroom
// @Tags Classrooms
// @Produce json
// @Param code path string true "Class code"
// @Success 200 {object} response.Envelope
// @Router /classrooms/{code}/students [get]
func (h *ClassroomHandler) Students(c *gin.Context) {
	students, err := h.classrooms.Students(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}
