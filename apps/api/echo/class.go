package echoapi

import (
	"net/http"
	"net/url"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/tmusoni/darasa/core/class"
	"github.com/tmusoni/darasa/core/student"
)

type classApi struct {
	svc        class.ServiceInterface
	studentSvc student.ServiceInterface
}

func registerClassAPI(g *echo.Group, deps ServerDeps) {
	api := classApi{
		svc:        deps.ClassSvc,
		studentSvc: deps.StudentSvc,
	}

	cg := g.Group("/classes")
	cg.GET("", api.summaries)
	cg.GET("/meta", api.meta)
	cg.GET("/:className/students", api.students)
}

// Handlers

func (api *classApi) summaries(ctx echo.Context) error {
	summaries, err := api.studentSvc.Summaries(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "summarizing classes")
	}
	return ctx.JSON(http.StatusOK, summaries)
}

func (api *classApi) meta(ctx echo.Context) error {
	meta, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying class meta")
	}
	return ctx.JSON(http.StatusOK, meta)
}

func (api *classApi) students(ctx echo.Context) error {
	name, err := url.PathUnescape(ctx.Param("className"))
	if err != nil {
		name = ctx.Param("className")
	}
	students, err := api.studentSvc.FilterByClass(ctx.Request().Context(), name)
	if err != nil {
		return errors.Wrap(err, "filtering students by class")
	}
	return ctx.JSON(http.StatusOK, students)
}
