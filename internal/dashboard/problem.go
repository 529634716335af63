package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/moogar0880/problems"
)

const problemContentType = problems.ProblemMediaType

func writeProblem(c *gin.Context, problem *problems.Problem) {
	c.Header("Content-Type", problemContentType)
	c.AbortWithStatusJSON(problem.Status, problem)
}

func badRequest(c *gin.Context, detail string) {
	writeProblem(c, problems.NewStatusProblem(http.StatusBadRequest).
		WithInstance(c.Request.URL.Path).
		WithType("validation_error").
		WithDetail(detail))
}

func forbidden(c *gin.Context, detail string) {
	writeProblem(c, problems.NewStatusProblem(http.StatusForbidden).
		WithInstance(c.Request.URL.Path).
		WithType("forbidden").
		WithDetail(detail))
}

func notFound(c *gin.Context, detail string) {
	writeProblem(c, problems.NewStatusProblem(http.StatusNotFound).
		WithInstance(c.Request.URL.Path).
		WithType("not_found").
		WithDetail(detail))
}

func internalError(c *gin.Context, err error) {
	_ = c.Error(err)
	writeProblem(c, problems.NewStatusProblem(http.StatusInternalServerError).
		WithInstance(c.Request.URL.Path).
		WithType("internal_error").
		WithError(err))
}
