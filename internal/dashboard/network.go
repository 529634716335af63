package dashboard

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/client"
	"github.com/goliatone/go-tutordash/pkg/listing"
	"github.com/goliatone/go-tutordash/pkg/render"
	"github.com/goliatone/go-tutordash/pkg/renderers/vanilla"
)

type filterTab struct {
	key   string
	label string
	stat  string
}

var networkFilters = []filterTab{
	{key: listing.FilterAll, label: "All", stat: client.StatAllContacts},
	{key: listing.FilterPlatform, label: "Platform", stat: client.StatPlatformConnections},
	{key: listing.FilterManual, label: "Manual", stat: client.StatManualContacts},
}

// showNetwork renders one page of contacts. The query string carries the
// committed page, filter and search, so every control is a plain link or GET
// form.
func (s *Server) showNetwork(c *gin.Context) {
	filter := c.DefaultQuery("filter", listing.FilterAll)
	if !knownFilter(filter) {
		filter = listing.FilterAll
	}
	search := strings.TrimSpace(c.Query("search"))
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))

	controller, err := listing.New[client.Contact](
		listing.DataSourceFunc[client.Contact](s.backend.Contacts),
		listing.WithPageSize(s.pageSize),
		listing.WithSort(s.sort),
		listing.WithFilter(filter),
		listing.WithSearch(search),
		listing.WithTotalKey(client.StatAllContacts),
		listing.WithLogger(s.logger),
	)
	if err != nil {
		internalError(c, err)
		return
	}
	defer controller.Close()

	ctx := c.Request.Context()
	var state listing.State[client.Contact]
	if page > 1 {
		state = controller.SetPage(ctx, page)
	} else {
		state = controller.Refetch(ctx)
	}

	data := map[string]any{
		"filter":  filter,
		"search":  search,
		"filters": filterData(filter, search, state.Result),
	}
	status := http.StatusOK
	if state.Err != nil {
		s.logger.Warn("network page fetch failed", zap.Error(state.Err))
		data["error"] = "Could not load your network. Please try again."
		status = http.StatusBadGateway
	}
	if state.Result != nil {
		data["contacts"] = contactData(state.Result.Items)
		pagination, err := s.html.RenderPagination(ctx, listing.Pagination{
			CurrentPage: state.Result.CurrentPage,
			TotalPages:  state.Result.TotalPages,
			HasNext:     state.Result.HasNext,
			HasPrevious: state.Result.HasPrevious,
			TotalItems:  state.Result.TotalItems,
		}, vanilla.PaginationOptions{
			Action:       "/network",
			Loading:      state.Busy(),
			HiddenInputs: render.HiddenFields(render.Hidden("filter", filter), render.Hidden("search", search)),
		})
		if err != nil {
			internalError(c, err)
			return
		}
		data["pagination_html"] = string(pagination)
	}

	body, err := s.pages.RenderTemplate(networkTemplate, data)
	if err != nil {
		internalError(c, err)
		return
	}
	s.renderPage(c, status, "My Network", body, c.Query("notice"))
}

func knownFilter(filter string) bool {
	for _, tab := range networkFilters {
		if tab.key == filter {
			return true
		}
	}
	return false
}

func filterData(active, search string, result *listing.Result[client.Contact]) []map[string]any {
	out := make([]map[string]any, 0, len(networkFilters))
	for _, tab := range networkFilters {
		count := 0
		if result != nil {
			count = result.Stats[tab.stat]
		}
		query := url.Values{"filter": {tab.key}}
		if search != "" {
			query.Set("search", search)
		}
		classes := "network__filter"
		if tab.key == active {
			classes += " network__filter--active"
		}
		out = append(out, map[string]any{
			"label":   tab.label,
			"count":   count,
			"href":    "/network?" + query.Encode(),
			"classes": classes,
		})
	}
	return out
}

func contactData(contacts []client.Contact) []map[string]any {
	out := make([]map[string]any, 0, len(contacts))
	for _, contact := range contacts {
		out = append(out, map[string]any{
			"id":         contact.ID,
			"initials":   contact.Initials(),
			"name":       contact.DisplayName(),
			"email":      contact.DisplayEmail(),
			"phone":      contact.PhoneNumber,
			"status":     contact.StatusLabel(),
			"status_key": strings.ReplaceAll(contact.ConnectionStatus, "_", "-"),
		})
	}
	return out
}

