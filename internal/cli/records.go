package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"gitlab.com/dirk.krummacker/pcrm/internal/calendar"
	"gitlab.com/dirk.krummacker/pcrm/internal/crm"
	"gitlab.com/dirk.krummacker/pcrm/internal/model"
	"gitlab.com/dirk.krummacker/pcrm/internal/transfer"
	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

func (a *App) noteCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "note NAME TEXT...",
		Short:   "Add a note to a contact",
		Example: `  pcrm note "Jane Doe" Talked about her new job`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.addNote(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}
}

func (a *App) addNote(ctx context.Context, name, text string) error {
	id, ok, err := a.resolve(ctx, name)
	if !ok {
		return err
	}
	if _, err := a.svc.AddNote(ctx, id, text); err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Note added for %s.\n", a.name(ctx, id))
	return nil
}

func (a *App) logCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "log NAME TEXT...",
		Short:   "Log a call, meeting or message with a contact",
		Example: `  pcrm log Jane Coffee at the station`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.logInteraction(cmd.Context(), args[0], strings.Join(args[1:], " "))
		},
	}
}

func (a *App) logInteraction(ctx context.Context, name, text string) error {
	id, ok, err := a.resolve(ctx, name)
	if !ok {
		return err
	}
	if _, err := a.svc.LogInteraction(ctx, id, text); err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Logged interaction for %s.\n", a.name(ctx, id))
	return nil
}

// name returns the full name of a contact for messages, falling back to the id.
func (a *App) name(ctx context.Context, id int64) string {
	contact, err := a.svc.Contact(ctx, id)
	if err != nil {
		return fmt.Sprintf("contact %d", id)
	}
	return contact.FullName()
}

func (a *App) reminderCommand() *cobra.Command {
	var sync bool
	cmd := &cobra.Command{
		Use:     "reminder NAME DATE MESSAGE...",
		Short:   "Set a reminder for a contact",
		Example: `  pcrm reminder Jane 2026-12-24 Send a card --sync`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.addReminder(cmd.Context(), args[0], api.Reminder{
				Date:    args[1],
				Message: strings.Join(args[2:], " "),
				Sync:    sync,
			})
		},
	}
	cmd.Flags().BoolVar(&sync, "sync", false, "also put the reminder into the calendar")
	return cmd
}

func (a *App) addReminder(ctx context.Context, name string, input api.Reminder) error {
	id, ok, err := a.resolve(ctx, name)
	if !ok {
		return err
	}
	reminder, err := a.svc.AddReminder(ctx, id, input)
	if err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Reminder set for %s on %s.\n", a.name(ctx, id), reminder.ReminderDate)
	return nil
}

func (a *App) remindersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "List upcoming reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.listReminders(cmd.Context())
		},
	}
}

func (a *App) listReminders(ctx context.Context) error {
	reminders, err := a.svc.ListReminders(ctx)
	if err != nil {
		return err
	}
	if len(reminders) == 0 {
		fmt.Fprintln(a.out, "No upcoming reminders.")
		return nil
	}
	a.view.heading("Upcoming Reminders")
	a.view.reminderLines(reminders)
	return nil
}

func (a *App) tagCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "tag NAME TAG",
		Short:   "Tag a contact",
		Example: `  pcrm tag "Jane Doe" family`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.tag(cmd.Context(), args[0], args[1])
		},
	}
}

func (a *App) tag(ctx context.Context, name, tag string) error {
	id, ok, err := a.resolve(ctx, name)
	if !ok {
		return err
	}
	tag = strings.TrimSpace(tag)
	err = a.svc.TagContact(ctx, id, tag)
	if errors.Is(err, crm.ErrAlreadyTagged) {
		fmt.Fprintf(a.out, "'%s' is already tagged with '%s'.\n", a.name(ctx, id), tag)
		return nil
	}
	if err != nil {
		return a.explain(err)
	}
	fmt.Fprintf(a.out, "Tagged '%s' with '%s'.\n", a.name(ctx, id), tag)
	return nil
}

func (a *App) untagCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "untag NAME TAG",
		Short: "Remove a tag from a contact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.untag(cmd.Context(), args[0], args[1])
		},
	}
}

func (a *App) untag(ctx context.Context, name, tag string) error {
	id, ok, err := a.resolve(ctx, name)
	if !ok {
		return err
	}
	tag = strings.TrimSpace(tag)
	switch err := a.svc.UntagContact(ctx, id, tag); {
	case errors.Is(err, crm.ErrUnknownTag):
		fmt.Fprintf(a.out, "Tag '%s' does not exist.\n", tag)
	case errors.Is(err, crm.ErrNotTagged):
		fmt.Fprintf(a.out, "'%s' is not tagged with '%s'.\n", a.name(ctx, id), tag)
	case err != nil:
		return a.explain(err)
	default:
		fmt.Fprintf(a.out, "Removed tag '%s' from '%s'.\n", tag, a.name(ctx, id))
	}
	return nil
}

func (a *App) tagsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List all tags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tags, err := a.svc.ListTags(cmd.Context())
			if err != nil {
				return err
			}
			if len(tags) == 0 {
				fmt.Fprintln(a.out, "No tags yet.")
				return nil
			}
			a.view.heading("Tags")
			for _, t := range tags {
				fmt.Fprintln(a.out, t.Name)
			}
			return nil
		},
	}
}

func (a *App) suggestCommand() *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "suggest",
		Short: "Suggest contacts you have not talked to for a while",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("days") {
				days = a.svc.SuggestionDays()
			}
			return a.suggest(cmd.Context(), days)
		},
	}
	cmd.Flags().IntVar(&days, "days", crm.DefaultSuggestionDays, "days without contact")
	return cmd
}

func (a *App) suggest(ctx context.Context, days int) error {
	suggestions, err := a.svc.Suggest(ctx, days)
	if err != nil {
		return a.explain(err)
	}
	a.view.suggestions(suggestions, days)
	return nil
}

func (a *App) dashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show overdue and upcoming reminders and suggestions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.dashboard(cmd.Context())
		},
	}
}

func (a *App) dashboard(ctx context.Context) error {
	d, err := a.svc.Dashboard(ctx)
	if err != nil {
		return err
	}
	a.view.dashboard(d, a.svc.SuggestionDays())
	return nil
}

func (a *App) phoneCommand() *cobra.Command {
	var phoneType string
	cmd := &cobra.Command{
		Use:     "phone NAME NUMBER",
		Short:   "Add a phone number to a contact",
		Example: `  pcrm phone Jane 555-0100 --type mobile`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok, err := a.resolve(ctx, args[0])
			if !ok {
				return err
			}
			phone, err := a.svc.AddPhone(ctx, id, api.Phone{Number: args[1], Type: phoneType})
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "Added phone %s for %s.\n", phone.Number, a.name(ctx, id))
			return nil
		},
	}
	cmd.Flags().StringVar(&phoneType, "type", "", "kind of number, for example mobile or work")
	return cmd
}

func (a *App) petCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "pet NAME PET",
		Short: "Add a pet to a contact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok, err := a.resolve(ctx, args[0])
			if !ok {
				return err
			}
			pet, err := a.svc.AddPet(ctx, id, args[1])
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "Added pet %s for %s.\n", pet.Name, a.name(ctx, id))
			return nil
		},
	}
}

func (a *App) partnerCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "partner NAME PARTNER",
		Short: "Add a partner to a contact",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok, err := a.resolve(ctx, args[0])
			if !ok {
				return err
			}
			partner, err := a.svc.AddPartner(ctx, id, args[1])
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "Added partner %s for %s.\n", partner.Name, a.name(ctx, id))
			return nil
		},
	}
}

// resolvePair resolves two names, stopping after the first one that cannot be resolved.
func (a *App) resolvePair(ctx context.Context, name, other string) (int64, int64, bool, error) {
	id, ok, err := a.resolve(ctx, name)
	if !ok {
		return 0, 0, false, err
	}
	otherID, ok, err := a.resolve(ctx, other)
	if !ok {
		return 0, 0, false, err
	}
	return id, otherID, true, nil
}

func (a *App) relateCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "relate NAME OTHER TYPE",
		Short:   "Relate two contacts",
		Example: `  pcrm relate "Jane Doe" "John Doe" sibling`,
		Args:    cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, otherID, ok, err := a.resolvePair(ctx, args[0], args[1])
			if !ok {
				return err
			}
			r, err := a.svc.AddRelationship(ctx, id, api.Relationship{OtherId: otherID, Type: args[2]})
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "%s and %s are now related as '%s'.\n", a.name(ctx, id), a.name(ctx, otherID), r.Type)
			return nil
		},
	}
}

func (a *App) unrelateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "unrelate NAME OTHER",
		Short: "Remove the relationship between two contacts",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, otherID, ok, err := a.resolvePair(ctx, args[0], args[1])
			if !ok {
				return err
			}
			err = a.svc.RemoveRelationship(ctx, id, otherID)
			if errors.Is(err, crm.ErrRelationshipUnset) {
				fmt.Fprintf(a.out, "%s and %s are not related.\n", a.name(ctx, id), a.name(ctx, otherID))
				return nil
			}
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "Removed the relationship between %s and %s.\n", a.name(ctx, id), a.name(ctx, otherID))
			return nil
		},
	}
}

func (a *App) relationshipsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "relationships NAME",
		Short: "List the contacts related to a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok, err := a.resolve(ctx, args[0])
			if !ok {
				return err
			}
			related, err := a.svc.Relationships(ctx, id)
			if err != nil {
				return a.explain(err)
			}
			if len(related) == 0 {
				fmt.Fprintf(a.out, "%s has no relationships.\n", a.name(ctx, id))
				return nil
			}
			a.view.heading("Relationships of " + a.name(ctx, id))
			for _, r := range related {
				fmt.Fprintf(a.out, "%s: %s\n", r.Type, r.FullName())
			}
			return nil
		},
	}
}

func (a *App) graphCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "graph",
		Short: "Print all relationships between contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			graph, err := a.svc.RelationshipGraph(cmd.Context())
			if err != nil {
				return err
			}
			if len(graph.Edges) == 0 {
				fmt.Fprintln(a.out, "No relationships yet.")
				return nil
			}
			names := make(map[int64]string, len(graph.Nodes))
			for _, n := range graph.Nodes {
				names[n.Id] = n.Name
			}
			rows := make([][]string, 0, len(graph.Edges))
			for _, e := range graph.Edges {
				rows = append(rows, []string{names[e.From], e.Type, names[e.To]})
			}
			a.view.heading("Relationship Graph")
			a.view.table([]string{"Contact", "Relationship", "Contact"}, rows)
			return nil
		},
	}
}

func (a *App) occasionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "occasion",
		Short: "Manage special occasions such as anniversaries",
	}
	var sync bool
	add := &cobra.Command{
		Use:     "add NAME DATE OCCASION...",
		Short:   "Add a special occasion to a contact",
		Example: `  pcrm occasion add Jane 2015-06-20 Wedding anniversary --sync`,
		Args:    cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok, err := a.resolve(ctx, args[0])
			if !ok {
				return err
			}
			occasion, err := a.svc.AddOccasion(ctx, id, api.Occasion{
				Date: args[1],
				Name: strings.Join(args[2:], " "),
				Sync: sync,
			})
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "Added occasion '%s' for %s on %s (ID: %d).\n",
				occasion.Name, a.name(ctx, id), occasion.Date, occasion.Id)
			return nil
		},
	}
	add.Flags().BoolVar(&sync, "sync", false, "also put the occasion into the calendar")
	list := &cobra.Command{
		Use:   "list NAME",
		Short: "List the special occasions of a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok, err := a.resolve(ctx, args[0])
			if !ok {
				return err
			}
			occasions, err := a.svc.ListOccasions(ctx, id)
			if err != nil {
				return a.explain(err)
			}
			if len(occasions) == 0 {
				fmt.Fprintf(a.out, "No occasions for %s.\n", a.name(ctx, id))
				return nil
			}
			a.view.heading("Occasions of " + a.name(ctx, id))
			a.view.occasionLines(occasions)
			return nil
		},
	}
	cmd.AddCommand(add, list)
	return cmd
}

func (a *App) giftCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gift",
		Short: "Manage gifts given to and received from contacts",
	}
	var input api.Gift
	var occasion int64
	add := &cobra.Command{
		Use:     "add NAME DESCRIPTION...",
		Short:   "Record a gift",
		Example: `  pcrm gift add Jane A scarf --direction given --date 2025-12-24 --occasion 3`,
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok, err := a.resolve(ctx, args[0])
			if !ok {
				return err
			}
			input.Description = strings.Join(args[1:], " ")
			if cmd.Flags().Changed("occasion") {
				input.OccasionId = &occasion
			}
			gift, err := a.svc.AddGift(ctx, id, input)
			if err != nil {
				return a.explain(err)
			}
			fmt.Fprintf(a.out, "Recorded gift '%s' (%s) for %s.\n", gift.Description, gift.Direction, a.name(ctx, id))
			return nil
		},
	}
	add.Flags().StringVar(&input.Direction, "direction", model.GiftGiven, "given or received")
	add.Flags().StringVar(&input.Date, "date", "", "date of the gift (YYYY-MM-DD)")
	add.Flags().Int64Var(&occasion, "occasion", 0, "id of the occasion the gift was for")
	list := &cobra.Command{
		Use:   "list NAME",
		Short: "List the gifts of a contact",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			id, ok, err := a.resolve(ctx, args[0])
			if !ok {
				return err
			}
			gifts, err := a.svc.ListGifts(ctx, id)
			if err != nil {
				return a.explain(err)
			}
			if len(gifts) == 0 {
				fmt.Fprintf(a.out, "No gifts for %s.\n", a.name(ctx, id))
				return nil
			}
			a.view.heading("Gifts of " + a.name(ctx, id))
			a.view.giftLines(gifts)
			return nil
		},
	}
	cmd.AddCommand(add, list)
	return cmd
}

// fileFormat returns the explicit format, or the one implied by the file extension.
func fileFormat(format, path string) string {
	if format != "" {
		return strings.ToLower(format)
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}

func (a *App) importCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import contacts from a CSV or JSON file",
		Long: `Import contacts from a CSV or JSON file. CSV files need a first_name column and
may have last_name, email, birthday, date_met, how_met, favorite_color, phones
and pets columns. Phones are separated by "|" and may carry a type in
parentheses, for example "555-0100(mobile)|555-0199".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			report, err := transfer.Import(cmd.Context(), fileFormat(format, args[0]), f, a.svc)
			if err != nil {
				if errors.Is(err, transfer.ErrFormat) || errors.Is(err, transfer.ErrMissingColumn) || crm.IsValidation(err) {
					fmt.Fprintf(a.out, "Error: %v.\n", err)
					fmt.Fprintf(a.out, "Imported %d contacts before the error.\n", report.Imported)
					return nil
				}
				return err
			}
			fmt.Fprintf(a.out, "Imported %d contacts, skipped %d rows.\n", report.Imported, report.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv or json (default from the file extension)")
	return cmd
}

func (a *App) exportCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "export FILE",
		Short: "Export all contacts to a CSV or JSON file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format := fileFormat(format, args[0])
			if format != transfer.CSV && format != transfer.JSON {
				fmt.Fprintf(a.out, "Error: %v.\n", transfer.ErrFormat)
				return nil
			}
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			count, err := transfer.Export(cmd.Context(), format, f, a.svc)
			if err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Exported %d contacts to %s.\n", count, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "", "csv or json (default from the file extension)")
	return cmd
}

func (a *App) syncCalendarCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync-calendar",
		Short: "Put all upcoming reminders and occasions into the calendar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := a.svc.SyncCalendar(cmd.Context())
			if errors.Is(err, calendar.ErrDisabled) {
				fmt.Fprintln(a.out, "Calendar sync is not configured. Set calendar.enabled and calendar.credentials_file in the config file.")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Calendar synchronised: %d events created, %d already present.\n", result.Created, result.Existing)
			return nil
		},
	}
}
