package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tulamba/mafunzo/core/employee"
)

// topPerformersDefault caps the dashboard leaderboard size.
const topPerformersDefault = 5

type employeeApi struct {
	svc *employee.Service
}

func registerEmployeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *employee.Service) {
	api := employeeApi{svc: svc}

	eg := g.Group("/employees", jwt, adminMiddleware())
	eg.GET("", api.query)

	dg := eg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.GET("/courses", api.coursesWithProgress)
	dg.POST("/access-link", api.generateAccessLink)
	dg.POST("/access-link/send", api.sendAccessLink)

	g.GET("/dashboard", api.dashboard, jwt, adminMiddleware())
}

// Handlers

func (api *employeeApi) query(ctx echo.Context) error {
	emps, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying employees")
	}
	if emps == nil {
		emps = []employee.Employee{}
	}
	return ctx.JSON(http.StatusOK, emps)
}

type employeeDetail struct {
	employee.Employee
	OverallProgress int                           `json:"overall_progress"`
	Courses         []employee.CourseWithProgress `json:"courses"`
}

func (api *employeeApi) retrieve(ctx echo.Context) error {
	rctx := ctx.Request().Context()

	emp, err := api.svc.GetByID(rctx, ctx.Param("id"))
	if err != nil {
		return err
	}
	courses, err := api.svc.CoursesWithProgress(rctx, emp.ID)
	if err != nil {
		return errors.Wrap(err, "listing courses with progress")
	}

	return ctx.JSON(http.StatusOK, employeeDetail{
		Employee:        emp,
		OverallProgress: emp.OverallProgress(),
		Courses:         courses,
	})
}

func (api *employeeApi) coursesWithProgress(ctx echo.Context) error {
	courses, err := api.svc.CoursesWithProgress(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *employeeApi) generateAccessLink(ctx echo.Context) error {
	emp, err := api.svc.GenerateAccessLink(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"access_link": emp.AccessLink.String})
}

func (api *employeeApi) sendAccessLink(ctx echo.Context) error {
	if err := api.svc.SendAccessLink(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"success": "access link sent"})
}

func (api *employeeApi) dashboard(ctx echo.Context) error {
	topN := topPerformersDefault
	if raw := ctx.QueryParam("top"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			topN = n
		}
	}

	stats, err := api.svc.Dashboard(ctx.Request().Context(), topN)
	if err != nil {
		return errors.Wrap(err, "computing dashboard stats")
	}
	return ctx.JSON(http.StatusOK, stats)
}
