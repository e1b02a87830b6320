package handlers

import (
	"net/http"

	"github.com/rohits-web03/studentvault/internal/api/services"
	"github.com/rohits-web03/studentvault/internal/utils"
)

// GET /api/students
// GetStudents godoc
// @Summary List students
// @Description PII fields come back client-encrypted.
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Payload
// @Failure 401 {object} utils.Payload
// @Router /api/students [get]
func (h *Handler) GetStudents(w http.ResponseWriter, r *http.Request) {
	students, err := h.students.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Students retrieved successfully",
		Data:    students,
	})
}

// GET /api/student/{id}
// GetStudentByID godoc
// @Summary Get one student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student id"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/student/{id} [get]
func (h *Handler) GetStudentByID(w http.ResponseWriter, r *http.Request) {
	student, err := h.students.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Student retrieved successfully",
		Data:    student,
	})
}

// PUT /api/student/{id}
// UpdateStudent godoc
// @Summary Update some fields of a student
// @Description Omitted or empty fields are left unchanged.
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student id"
// @Param body body services.UpdateInput true "Fields to change"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Failure 409 {object} utils.Payload
// @Router /api/student/{id} [put]
func (h *Handler) UpdateStudent(w http.ResponseWriter, r *http.Request) {
	var input services.UpdateInput
	if !decode(w, r, &input) {
		return
	}

	if err := h.students.Update(r.Context(), r.PathValue("id"), input); err != nil {
		writeError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Student updated successfully",
	})
}

// DELETE /api/student/{id}
// DeleteStudent godoc
// @Summary Delete a student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student id"
// @Success 200 {object} utils.Payload
// @Failure 404 {object} utils.Payload
// @Router /api/student/{id} [delete]
func (h *Handler) DeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := h.students.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Student deleted successfully",
	})
}

// POST /api/students/export
// ExportStudents godoc
// @Summary Export a ciphertext snapshot to object storage
// @Description Returns a presigned download URL valid for 15 minutes.
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} utils.Payload
// @Failure 503 {object} utils.Payload
// @Router /api/students/export [post]
func (h *Handler) ExportStudents(w http.ResponseWriter, r *http.Request) {
	res, err := h.students.Export(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	utils.JSONResponse(w, http.StatusOK, utils.Payload{
		Success: true,
		Message: "Snapshot exported",
		Data:    res,
	})
}
