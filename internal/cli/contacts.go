package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

// contactFlags are the optional contact values that add and edit accept as flags.
type contactFlags struct {
	email, birthday, dateMet, howMet, color string
}

func (f *contactFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.email, "email", "", "email address")
	cmd.Flags().StringVar(&f.birthday, "birthday", "", "birthday (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.dateMet, "date-met", "", "date you met (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.howMet, "how-met", "", "how you met")
	cmd.Flags().StringVar(&f.color, "color", "", "favorite color")
}

// apply copies the flags that were given on the command line into the document.
func (f *contactFlags) apply(cmd *cobra.Command, input *api.Contact) {
	set := func(flag string, value string, dst **string) {
		if cmd.Flags().Changed(flag) {
			v := value
			*dst = &v
		}
	}
	set("email", f.email, &input.Email)
	set("birthday", f.birthday, &input.Birthday)
	set("date-met", f.dateMet, &input.DateMet)
	set("how-met", f.howMet, &input.HowMet)
	set("color", f.color, &input.FavoriteColor)
}

func (a *App) addCommand() *cobra.Command {
	var flags contactFlags
	cmd := &cobra.Command{
		Use:   "add NAME...",
		Short: "Add a contact",
		Long: `Add a contact. The first word of the name is the first name, the rest is the
last name.`,
		Example: `  pcrm add Jane Doe --email jane@example.com --birthday 1990-05-17`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			first, last := splitName(strings.Join(args, " "))
			input := api.Contact{FirstName: &first, LastName: last}
			flags.apply(cmd, &input)
			return a.addContact(cmd.Context(), input)
		},
	}
	flags.register(cmd)
	return cmd
}

func (a *App) addContact(ctx context.Context, input api.Contact) error {
	contact, err := a.svc.AddContact(ctx, input)
	if err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Successfully added %s.\n", contact.FullName())
	return nil
}

func (a *App) listCommand() *cobra.Command {
	var tag string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List all contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listContacts(cmd.Context(), tag)
		},
	}
	cmd.Flags().StringVar(&tag, "tag", "", "only list contacts with this tag")
	return cmd
}

func (a *App) listContacts(ctx context.Context, tag string) error {
	contacts, err := a.svc.ListContacts(ctx, tag)
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		if tag != "" {
			fmt.Fprintf(a.out, "No contacts found with the tag '%s'.\n", tag)
		} else {
			fmt.Fprintln(a.out, "No contacts found. Add one with the 'add' command.")
		}
		return nil
	}
	if tag != "" {
		a.view.heading(fmt.Sprintf("Contacts tagged with '%s'", tag))
	} else {
		a.view.heading("All Contacts")
	}
	a.view.contacts(contacts)
	return nil
}

func (a *App) searchCommand() *cobra.Command {
	var fields map[string]string
	var filter store.Filter
	cmd := &cobra.Command{
		Use:   "search [TEXT]",
		Short: "Search contacts",
		Long: `Search contacts by a text contained in the name or email, by the start of the
first or last name, by tag, or by specific fields.

Field names for --field are: ` + strings.Join(store.SearchableFields, ", ") + `.`,
		Example: `  pcrm search doe
  pcrm search --first Ja --tag family
  pcrm search --field how_met=conference --field favorite_color=blue`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if len(fields) > 0 {
				contacts, err := a.svc.AdvancedSearch(ctx, fields)
				if err != nil {
					return a.explain(err)
				}
				return a.printFound(contacts)
			}
			if len(args) == 1 {
				filter.Query = args[0]
			}
			contacts, err := a.svc.FindContacts(ctx, filter)
			if err != nil {
				return a.explain(err)
			}
			return a.printFound(contacts)
		},
	}
	cmd.Flags().StringToStringVar(&fields, "field", nil, "FIELD=TEXT to search in a specific field")
	cmd.Flags().StringVar(&filter.FirstName, "first", "", "start of the first name")
	cmd.Flags().StringVar(&filter.LastName, "last", "", "start of the last name")
	cmd.Flags().StringVar(&filter.Tag, "tag", "", "tag")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of results")
	return cmd
}

func (a *App) printFound(contacts []model.Contact) error {
	if len(contacts) == 0 {
		fmt.Fprintln(a.out, "No contacts found.")
		return nil
	}
	a.view.contacts(contacts)
	return nil
}

func (a *App) viewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view NAME",
		Short: "Show everything about a contact",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.viewContact(cmd.Context(), strings.Join(args, " "))
		},
	}
}

func (a *App) viewContact(ctx context.Context, name string) error {
	id, ok, err := a.resolve(ctx, name)
	if !ok {
		return err
	}
	details, err := a.svc.ViewContact(ctx, id)
	if err != nil {
		return a.explain(err)
	}
	a.view.details(details)
	return nil
}

func changedAny(cmd *cobra.Command, names ...string) bool {
	for _, name := range names {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

func (a *App) editCommand() *cobra.Command {
	var flags contactFlags
	var first, last string
	cmd := &cobra.Command{
		Use:   "edit NAME",
		Short: "Change a contact",
		Long: `Change the values given as flags. An empty value removes an optional value.
Without flags, the new first and last name are asked for.`,
		Example: `  pcrm edit "Jane Doe" --email jane.doe@example.com
  pcrm edit Jane --last ""`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok, err := a.resolve(ctx, strings.Join(args, " "))
			if !ok {
				return err
			}
			if !changedAny(cmd, "first", "last", "email", "birthday", "date-met", "how-met", "color") {
				return a.editName(ctx, id)
			}
			var input api.Contact
			if cmd.Flags().Changed("first") {
				input.FirstName = &first
			}
			if cmd.Flags().Changed("last") {
				input.LastName = &last
			}
			flags.apply(cmd, &input)
			contact, err := a.svc.EditContact(ctx, id, input)
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "Successfully updated contact '%s'.\n", contact.FullName())
			return nil
		},
	}
	cmd.Flags().StringVar(&first, "first", "", "new first name")
	cmd.Flags().StringVar(&last, "last", "", "new last name")
	flags.register(cmd)
	return cmd
}

// editName asks for a new first and last name. An empty last name removes it.
func (a *App) editName(ctx context.Context, id int64) error {
	contact, err := a.svc.Contact(ctx, id)
	if err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Editing contact: %s\n", contact.FullName())
	first, err := a.ask(fmt.Sprintf("Enter new first name (current: %s): ", contact.FirstName))
	if err != nil {
		return ignoreEOF(err)
	}
	last, err := a.ask(fmt.Sprintf("Enter new last name (current: %s): ", value(contact.LastName)))
	if err != nil {
		return ignoreEOF(err)
	}
	if first == "" {
		fmt.Fprintln(a.out, "First name cannot be empty. Edit cancelled.")
		return nil
	}
	updated, err := a.svc.EditContact(ctx, id, api.Contact{FirstName: &first, LastName: &last})
	if err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Successfully updated contact to '%s'.\n", updated.FullName())
	return nil
}

func (a *App) deleteCommand() *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete a contact with everything that belongs to it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.deleteContact(cmd.Context(), strings.Join(args, " "), yes)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")
	return cmd
}

func (a *App) deleteContact(ctx context.Context, name string, yes bool) error {
	id, ok, err := a.resolve(ctx, name)
	if !ok {
		return err
	}
	contact, err := a.svc.Contact(ctx, id)
	if err != nil {
		return a.explain(err)
	}
	if !yes {
		confirmed, err := a.confirm(fmt.Sprintf("Are you sure you want to delete %s? This cannot be undone.", contact.FullName()))
		if err != nil {
			return err
		}
		if !confirmed {
			fmt.Fprintln(a.out, "Deletion cancelled.")
			return nil
		}
	}
	if err := a.svc.DeleteContact(ctx, id); err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Contact %s has been deleted.\n", contact.FullName())
	return nil
}
