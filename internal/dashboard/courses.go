package dashboard

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/client"
)

// showCourses lists the instructor's courses, filtered by the search prefix.
func (s *Server) showCourses(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	data := map[string]any{"search": search}
	status := http.StatusOK

	courses, err := s.backend.Courses(c.Request.Context())
	if err != nil {
		s.logger.Warn("courses fetch failed", zap.Error(err))
		data["error"] = "Could not load your courses. Please try again."
		status = http.StatusBadGateway
	}
	items := make([]map[string]any, 0, len(courses))
	for _, course := range client.FilterCourses(courses, search) {
		items = append(items, map[string]any{
			"id":          course.ID,
			"title":       course.Title,
			"description": course.Description,
		})
	}
	data["courses"] = items

	body, err := s.pages.RenderTemplate(coursesTemplate, data)
	if err != nil {
		internalError(c, err)
		return
	}
	s.renderPage(c, status, "My Courses", body, c.Query("notice"))
}
