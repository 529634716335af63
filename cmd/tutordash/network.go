package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/goliatone/go-tutordash/pkg/client"
	"github.com/goliatone/go-tutordash/pkg/listing"
	"github.com/goliatone/go-tutordash/pkg/renderers/tui"
)

var contactsFlags struct {
	filter      string
	search      string
	page        int
	json        bool
	interactive bool
}

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "List network contacts",
	Long: `Contacts prints one page of the network: platform connections and manual
contacts, with the per filter counts.

With --interactive the page stays open: move between pages, change the
filter or search, and add manual contacts from a menu.

Example:
  tutordash contacts
  tutordash contacts --filter manual --search ada --page 2
  tutordash contacts --interactive`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		source := client.ContactsSource{Client: app.api}
		if contactsFlags.interactive {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errNotInteractive
			}
			controller, err := newContactsController(cmd, source, app.cfg.Network.PageSize, app.cfg.Network.Sort)
			if err != nil {
				return err
			}
			defer controller.Close()
			driver := tui.NewSurveyDriver(cmd.ErrOrStderr())
			return browseContacts(cmd.Context(), cmd.OutOrStdout(), driver, controller, promptContact(cmd))
		}
		return listContacts(cmd, source, app.cfg.Network.PageSize, app.cfg.Network.Sort)
	},
}

var coursesFlags struct {
	search string
	json   bool
}

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "List your courses",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		courses, err := app.api.Courses(cmd.Context())
		if err != nil {
			return err
		}
		return printCourses(cmd.OutOrStdout(), client.FilterCourses(courses, coursesFlags.search), coursesFlags.json)
	},
}

func init() {
	flags := contactsCmd.Flags()
	flags.StringVar(&contactsFlags.filter, "filter", listing.FilterAll, "filter: all, platform or manual")
	flags.StringVar(&contactsFlags.search, "search", "", "search text")
	flags.IntVar(&contactsFlags.page, "page", 1, "page number")
	flags.BoolVar(&contactsFlags.json, "json", false, "print the page as JSON")
	flags.BoolVar(&contactsFlags.interactive, "interactive", false, "browse and add contacts from a menu")

	coursesCmd.Flags().StringVar(&coursesFlags.search, "search", "", "title prefix")
	coursesCmd.Flags().BoolVar(&coursesFlags.json, "json", false, "print as JSON")
}

func newContactsController(cmd *cobra.Command, source listing.DataSource[client.Contact], pageSize int, sort string) (*listing.Controller[client.Contact], error) {
	switch contactsFlags.filter {
	case listing.FilterAll, listing.FilterPlatform, listing.FilterManual:
	default:
		return nil, fmt.Errorf("unknown filter %q (valid: all, platform, manual)", contactsFlags.filter)
	}
	return listing.New(source,
		listing.WithPageSize(pageSize),
		listing.WithSort(sort),
		listing.WithFilter(contactsFlags.filter),
		listing.WithSearch(contactsFlags.search),
		listing.WithDebounce(app.cfg.Network.Debounce),
		listing.WithTotalKey(client.StatAllContacts),
		listing.WithLogger(app.logger),
		listing.WithContext(cmd.Context()),
	)
}

func listContacts(cmd *cobra.Command, source listing.DataSource[client.Contact], pageSize int, sort string) error {
	controller, err := newContactsController(cmd, source, pageSize, sort)
	if err != nil {
		return err
	}
	defer controller.Close()

	var state listing.State[client.Contact]
	if contactsFlags.page > 1 {
		state = controller.SetPage(cmd.Context(), contactsFlags.page)
	} else {
		state = controller.Refetch(cmd.Context())
	}
	if state.Err != nil {
		return state.Err
	}
	return printContacts(cmd.OutOrStdout(), state.Result, contactsFlags.json)
}

func printContacts(out io.Writer, result *listing.Result[client.Contact], asJSON bool) error {
	if result == nil {
		result = &listing.Result[client.Contact]{}
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	fmt.Fprintf(out, "All %d  Platform %d  Manual %d\n\n",
		result.Stats[client.StatAllContacts],
		result.Stats[client.StatPlatformConnections],
		result.Stats[client.StatManualContacts],
	)
	if len(result.Items) == 0 {
		_, err := fmt.Fprintln(out, "No contacts found")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tEMAIL\tPHONE\tSTATUS")
	for _, contact := range result.Items {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", contact.DisplayName(), contact.DisplayEmail(), contact.PhoneNumber, contact.StatusLabel())
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if result.TotalPages > 1 {
		_, err := fmt.Fprintf(out, "\nPage %d of %d\n", result.CurrentPage, result.TotalPages)
		return err
	}
	return nil
}

func printCourses(out io.Writer, courses []client.Course, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(courses)
	}
	if len(courses) == 0 {
		_, err := fmt.Fprintln(out, "No courses found")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tSTUDENTS")
	for _, course := range courses {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\n", course.ID, course.Title, course.Status, course.Students)
	}
	return w.Flush()
}
