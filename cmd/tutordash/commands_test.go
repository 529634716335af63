package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/goliatone/go-tutordash/pkg/client"
	"github.com/goliatone/go-tutordash/pkg/formspec"
	"github.com/goliatone/go-tutordash/pkg/listing"
	"github.com/goliatone/go-tutordash/pkg/model"
)

func testCommand(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	app = &application{logger: zap.NewNop(), forms: formspec.Builtin()}
	t.Cleanup(func() { app = nil })

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestParseValues(t *testing.T) {
	values, err := parseValues([]string{"title=Intro", "roles=student", "roles=tutor", "roles=admin", "empty="})
	require.NoError(t, err)
	assert.Equal(t, model.Values{
		"title": "Intro",
		"roles": []string{"student", "tutor", "admin"},
		"empty": "",
	}, values)

	_, err = parseValues([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseValues([]string{"=x"})
	assert.Error(t, err)
}

func TestListForms_PrintsBuiltinIDs(t *testing.T) {
	cmd, out := testCommand(t)
	require.NoError(t, listForms(cmd, app.forms))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 8)
	assert.True(t, strings.HasPrefix(lines[0], "ID"))
	assert.True(t, strings.HasPrefix(lines[1], formspec.ContactManualForm))
}

func TestResolveSpec(t *testing.T) {
	testCommand(t)
	ctx := context.Background()

	material, err := resolveSpec(ctx, app.forms, nil, app.logger, formTarget{id: formspec.MaterialForm, resourceType: "pdf"})
	require.NoError(t, err)
	file, ok := material.Field("file")
	require.True(t, ok)
	assert.Equal(t, formspec.AcceptFor("pdf"), file.Accept)

	course, err := resolveSpec(ctx, app.forms, nil, app.logger, formTarget{id: formspec.CourseCreateForm})
	require.NoError(t, err)
	assert.Equal(t, app.forms.MustGet(formspec.CourseCreateForm).ID, course.ID)

	_, err = resolveSpec(ctx, app.forms, nil, app.logger, formTarget{id: "nope"})
	assert.ErrorIs(t, err, formspec.ErrFormNotFound)
}

func TestNewEngine_SeedsMaterialType(t *testing.T) {
	testCommand(t)
	target := formTarget{id: formspec.MaterialForm, resourceType: "video_link", values: model.Values{"title": "Week 1"}}
	engine, err := newEngine(formspec.MaterialFormFor("video_link"), target, app.logger, nil)
	require.NoError(t, err)

	values := engine.Values()
	assert.Equal(t, "video_link", values.String("resource_type"))
	assert.Equal(t, "Week 1", values.String("title"))
	assert.Nil(t, target.values["resource_type"], "target values must not be modified")
}

func TestListContacts_SendsQueryAndPrintsPage(t *testing.T) {
	cmd, out := testCommand(t)
	contactsFlags.filter, contactsFlags.search, contactsFlags.page, contactsFlags.json = listing.FilterManual, "ad", 2, false
	t.Cleanup(func() { contactsFlags.filter, contactsFlags.search, contactsFlags.page = listing.FilterAll, "", 1 })

	var got listing.Request
	source := listing.DataSourceFunc[client.Contact](func(_ context.Context, req listing.Request) (listing.Response[client.Contact], error) {
		got = req
		return listing.Response[client.Contact]{
			Items: []client.Contact{{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com"}},
			Stats: map[string]int{
				client.StatAllContacts:         3,
				client.StatPlatformConnections: 1,
				client.StatManualContacts:      2,
			},
			Pagination: listing.Pagination{CurrentPage: 2, TotalPages: 3, HasPrevious: true, HasNext: true, TotalItems: 3},
		}, nil
	})

	require.NoError(t, listContacts(cmd, source, 5, listing.SortAlphabetical))
	assert.Equal(t, listing.Request{Page: 2, PageSize: 5, Sort: listing.SortAlphabetical, FilterType: listing.FilterManual, Search: "ad"}, got)
	assert.Contains(t, out.String(), "All 3  Platform 1  Manual 2")
	assert.Contains(t, out.String(), "Ada Lovelace")
	assert.Contains(t, out.String(), "ada@example.com")
	assert.Contains(t, out.String(), "Page 2 of 3")
}

func TestListContacts_RejectsUnknownFilter(t *testing.T) {
	cmd, _ := testCommand(t)
	contactsFlags.filter = "friends"
	t.Cleanup(func() { contactsFlags.filter = listing.FilterAll })

	source := listing.DataSourceFunc[client.Contact](func(context.Context, listing.Request) (listing.Response[client.Contact], error) {
		t.Fatal("source must not be called")
		return listing.Response[client.Contact]{}, nil
	})
	assert.Error(t, listContacts(cmd, source, 5, listing.SortAlphabetical))
}

func TestPrintCourses(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printCourses(&out, nil, false))
	assert.Equal(t, "No courses found\n", out.String())

	out.Reset()
	require.NoError(t, printCourses(&out, []client.Course{{ID: 4, Title: "Go basics", Status: "published", Students: 12}}, true))
	assert.Contains(t, out.String(), `"title": "Go basics"`)
}

const lintOpenAPI = `
openapi: 3.0.3
info:
  title: Tutor API
  version: "1.0"
paths:
  /api/goals/:
    post:
      operationId: createGoal
      requestBody:
        content:
          application/json:
            schema:
              type: object
              properties:
                title:
                  type: string
                  x-order: first
      responses:
        "201":
          description: created
`

func TestLint_ReportsSortedViolations(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
		return path
	}
	good := write("topic.json", `{"forms":[{"id":"topic","fields":[{"name":"topic","type":"text"}]}]}`)
	bad := write("bad.json", `{"forms":[{"id":"x","fields":[{"name":"a","type":"text","colour":"red"}]}]}`)
	api := write("api.yaml", lintOpenAPI)

	ctx := context.Background()
	var all []violation
	for _, path := range []string{good, bad, api} {
		found, err := lintPath(ctx, path)
		require.NoError(t, err)
		all = append(all, found...)
	}

	var out bytes.Buffer
	err := report(&out, all)
	require.EqualError(t, err, "lint: 2 problem(s)")

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], api+": operation > createGoal > requestBody > properties.title -> x-order must be a number"))
	assert.True(t, strings.HasPrefix(lines[1], bad+": forms -> "))

	_, err = lintPath(ctx, filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
	assert.NoError(t, report(&out, nil))
}

func TestLint_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.json"), []byte(`{"forms":[{"id":"dup","fields":[{"name":"a","type":"text"}]}]}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.json"), []byte(`{"forms":[{"id":"dup","fields":[{"name":"b","type":"text"}]}]}`), 0o644))

	found, err := lintPath(context.Background(), dir)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Contains(t, found[0].message, "duplicate form id")
}
