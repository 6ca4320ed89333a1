package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/tourcat/tourism-api/internal/domain"
	"github.com/tourcat/tourism-api/internal/service"
	"github.com/tourcat/tourism-api/internal/util"
)

const maxMultipartMemory = 32 << 20

type TourismHandler struct {
	tourism *service.TourismService
}

func RegisterTourism(e *echo.Echo, auth *service.AuthService, tourism *service.TourismService) {
	handler := &TourismHandler{tourism: tourism}

	public := e.Group("/tourism")
	public.GET("", handler.list)
	public.GET("/:id", handler.get)

	admin := e.Group("/tourism", RequireAuth(auth))
	admin.POST("", handler.create)
	admin.PUT("/:id", handler.update)
	admin.DELETE("/:id", handler.remove)
}

func (h *TourismHandler) list(c echo.Context) error {
	filter := domain.TourismListFilter{
		Search: strings.TrimSpace(c.QueryParam("query")),
	}
	if raw := c.QueryParam("category"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				filter.Categories = append(filter.Categories, trimmed)
			}
		}
	}
	if v := strings.TrimSpace(c.QueryParam("limit")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			filter.Limit = parsed
		}
	}
	if v := strings.TrimSpace(c.QueryParam("offset")); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			filter.Offset = parsed
		}
	}

	records, err := h.tourism.List(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, util.Error("unable to list tourism data"))
	}
	return c.JSON(http.StatusOK, records)
}

func (h *TourismHandler) get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid tourism id"))
	}
	record, err := h.tourism.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrTourismNotFound) {
			return c.JSON(http.StatusNotFound, util.Error("Cannot find tourism"))
		}
		return c.JSON(http.StatusInternalServerError, util.Error("unable to load tourism data"))
	}
	return c.JSON(http.StatusOK, record)
}

func (h *TourismHandler) create(c echo.Context) error {
	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	image, err := readImageFile(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	record, err := h.tourism.Create(c.Request().Context(), service.TourismCreateInput{
		Name:        c.FormValue("name"),
		Category:    c.FormValue("category"),
		Address:     c.FormValue("address"),
		Description: c.FormValue("description"),
	}, image)
	if err != nil {
		return writeTourismError(c, err)
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"success": "Tourism data created successfully",
		"data":    record,
	})
}

func (h *TourismHandler) update(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid tourism id"))
	}
	if err := c.Request().ParseMultipartForm(maxMultipartMemory); err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid multipart payload"))
	}

	image, err := readImageFile(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	}

	fields := domain.TourismFields{
		Name:        formPtr(c, "name"),
		Category:    formPtr(c, "category"),
		Address:     formPtr(c, "address"),
		Description: formPtr(c, "description"),
	}

	record, err := h.tourism.Update(c.Request().Context(), id, fields, image)
	if err != nil {
		return writeTourismError(c, err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": "Tourism data updated successfully",
		"data":    record,
	})
}

func (h *TourismHandler) remove(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, util.Error("invalid tourism id"))
	}

	if err := h.tourism.Delete(c.Request().Context(), id); err != nil {
		return writeTourismError(c, err)
	}
	return c.JSON(http.StatusOK, util.Success("Tourism data deleted successfully"))
}

// readImageFile buffers the uploaded image, if any. The whole file is held
// in memory before upload; size limits are enforced by the service.
func readImageFile(c echo.Context) (*service.BlobUpload, error) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, errors.New("unable to read upload")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("unable to read upload")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.New("unable to read upload")
	}

	return &service.BlobUpload{
		Data:        data,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
	}, nil
}

// formPtr treats an absent or blank form value as "no change".
func formPtr(c echo.Context, name string) *string {
	value := c.FormValue(name)
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return &value
}

func writeTourismError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrTourismValidation),
		errors.Is(err, service.ErrImageTooLarge):
		return c.JSON(http.StatusBadRequest, util.Error(err.Error()))
	case errors.Is(err, service.ErrTourismNotFound):
		return c.JSON(http.StatusNotFound, util.Error("Cannot find tourism"))
	case errors.Is(err, service.ErrStorageWrite):
		return c.JSON(http.StatusInternalServerError, util.Error("unable to store image"))
	default:
		return c.JSON(http.StatusInternalServerError, util.Error("internal error"))
	}
}
