package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tulamba/mafunzo/core/employee"
)

// accessApi serves the learner portal. Routes are reached through the
// employee's emailed access link and carry no JWT; the token in the path is
// the only credential.
type accessApi struct {
	svc *employee.Service
}

func registerAccessAPI(g *echo.Group, svc *employee.Service) {
	api := accessApi{svc: svc}

	ag := g.Group("/access/:token")
	ag.GET("", api.retrieve)
	ag.PUT("/progress", api.updateProgress)
}

// Handlers

type accessResponse struct {
	Employee employee.Employee             `json:"employee"`
	Courses  []employee.CourseWithProgress `json:"courses"`
}

func (api *accessApi) retrieve(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	emp, err := api.svc.GetByAccessToken(rctx, ctx.Param("token"))
	if err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "resolving access token")
	}

	courses, err := api.svc.CoursesWithProgress(rctx, emp.ID)
	if err != nil {
		return errors.Wrap(err, "listing courses with progress")
	}
	return ctx.JSON(http.StatusOK, accessResponse{Employee: emp, Courses: courses})
}

func (api *accessApi) updateProgress(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	emp, err := api.svc.GetByAccessToken(rctx, ctx.Param("token"))
	if err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "resolving access token")
	}

	var data employee.ProgressUpdate
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ProgressUpdate")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.UpdateModuleProgress(rctx, emp.ID, data); err != nil {
		return errors.Wrap(err, "updating module progress")
	}

	emp, err = api.svc.GetByID(rctx, emp.ID)
	if err != nil {
		return errors.Wrap(err, "reloading employee")
	}
	return ctx.JSON(http.StatusOK, emp)
}
