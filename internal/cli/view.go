package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"gitlab.com/dirk.krummacker/pcrm/internal/crm"
	"gitlab.com/dirk.krummacker/pcrm/internal/model"
)

// view renders records for the terminal. Colors are only used when out is a terminal.
type view struct {
	out     io.Writer
	title   lipgloss.Style
	label   lipgloss.Style
	warning lipgloss.Style
	muted   lipgloss.Style
	border  lipgloss.Style
}

func newView(out io.Writer) *view {
	r := lipgloss.NewRenderer(out)
	return &view{
		out:     out,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		label:   r.NewStyle().Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("196")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("241")),
		border:  r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

func (v *view) heading(text string) {
	fmt.Fprintln(v.out, v.title.Render("--- "+text+" ---"))
}

// table prints rows below a header line.
func (v *view) table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(v.border).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(v.out, t.String())
}

// lastContacted formats the timestamp as a date, or "Never".
func lastContacted(at *time.Time) string {
	if at == nil {
		return "Never"
	}
	return at.UTC().Format(model.DateLayout)
}

func value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (v *view) contacts(contacts []model.Contact) {
	rows := make([][]string, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, []string{
			strconv.FormatInt(c.Id, 10),
			c.FullName(),
			value(c.Email),
			value(c.Birthday),
			lastContacted(c.LastContactedAt),
		})
	}
	v.table([]string{"ID", "Name", "Email", "Birthday", "Last Contacted"}, rows)
}

// details prints everything known about a contact, sections without entries are left out apart
// from notes and reminders.
func (v *view) details(d model.ContactDetails) {
	c := d.Contact
	fmt.Fprintln(v.out)
	v.heading("Details for " + c.FullName())
	field := func(name, value string) {
		if value != "" {
			fmt.Fprintf(v.out, "%s %s\n", v.label.Render(name+":"), value)
		}
	}
	field("Last Contacted", lastContacted(c.LastContactedAt))
	field("Added on", c.CreatedAt.UTC().Format(model.DateLayout))
	field("Email", value(c.Email))
	field("Birthday", value(c.Birthday))
	field("Date Met", value(c.DateMet))
	field("How Met", value(c.HowMet))
	field("Favorite Color", value(c.FavoriteColor))
	if len(d.Tags) > 0 {
		field("Tags", strings.Join(d.Tags, ", "))
	}

	if len(d.Phones) > 0 {
		fmt.Fprintln(v.out, "\n"+v.label.Render("Phones:"))
		for _, p := range d.Phones {
			if p.Type != nil {
				fmt.Fprintf(v.out, "  %s (%s)\n", p.Number, *p.Type)
			} else {
				fmt.Fprintf(v.out, "  %s\n", p.Number)
			}
		}
	}
	names := func(title string, values []string) {
		if len(values) > 0 {
			fmt.Fprintln(v.out)
			field(title, strings.Join(values, ", "))
		}
	}
	pets := make([]string, 0, len(d.Pets))
	for _, p := range d.Pets {
		pets = append(pets, p.Name)
	}
	names("Pets", pets)
	partners := make([]string, 0, len(d.Partners))
	for _, p := range d.Partners {
		partners = append(partners, p.Name)
	}
	names("Partners", partners)
	if len(d.Relationships) > 0 {
		fmt.Fprintln(v.out, "\n"+v.label.Render("Relationships:"))
		for _, r := range d.Relationships {
			fmt.Fprintf(v.out, "  %s: %s\n", r.Type, r.FullName())
		}
	}

	if len(d.Notes) > 0 {
		fmt.Fprintln(v.out, "\n"+v.label.Render("Notes:"))
		for _, n := range d.Notes {
			fmt.Fprintf(v.out, "  [%s] %s\n", n.CreatedAt.UTC().Format("2006-01-02 15:04"), n.Text)
		}
	} else {
		fmt.Fprintln(v.out, "\n"+v.muted.Render("No notes for this contact yet."))
	}
	if len(d.Reminders) > 0 {
		fmt.Fprintln(v.out, "\n"+v.label.Render("Reminders:"))
		for _, r := range d.Reminders {
			fmt.Fprintf(v.out, "  [%s] %s\n", r.ReminderDate, r.Message)
		}
	} else {
		fmt.Fprintln(v.out, "\n"+v.muted.Render("No reminders for this contact yet."))
	}
	if len(d.Occasions) > 0 {
		fmt.Fprintln(v.out, "\n"+v.label.Render("Occasions:"))
		v.occasionLines(d.Occasions)
	}
	if len(d.Gifts) > 0 {
		fmt.Fprintln(v.out, "\n"+v.label.Render("Gifts:"))
		v.giftLines(d.Gifts)
	}
}

func (v *view) occasionLines(occasions []model.Occasion) {
	for _, o := range occasions {
		fmt.Fprintf(v.out, "  [%s] %s (ID: %d)\n", o.Date, o.Name, o.Id)
	}
}

func (v *view) giftLines(gifts []model.Gift) {
	for _, g := range gifts {
		line := fmt.Sprintf("  %s: %s", g.Direction, g.Description)
		if g.Date != nil {
			line += " on " + *g.Date
		}
		if g.OccasionName != nil {
			line += " for " + *g.OccasionName
		}
		fmt.Fprintln(v.out, line)
	}
}

func (v *view) reminderLines(reminders []model.ReminderEntry) {
	for _, r := range reminders {
		fmt.Fprintf(v.out, "[%s] For %s: %s\n", r.ReminderDate, r.FullName(), r.Message)
	}
}

func (v *view) suggestions(suggestions []model.Suggestion, days int) {
	if len(suggestions) == 0 {
		fmt.Fprintf(v.out, "No suggestions. Everyone has been contacted within the last %d days.\n", days)
		return
	}
	v.heading(fmt.Sprintf("Suggestions (not contacted in over %d days)", days))
	for _, s := range suggestions {
		if s.LastContactedAt == nil {
			fmt.Fprintf(v.out, "- %s (never contacted)\n", s.FullName())
		} else {
			fmt.Fprintf(v.out, "- %s (last contacted %s)\n", s.FullName(), lastContacted(s.LastContactedAt))
		}
	}
}

func (v *view) dashboard(d model.Dashboard, days int) {
	v.heading("pCRM Status Dashboard")
	if len(d.Overdue) > 0 {
		fmt.Fprintln(v.out, "\n"+v.warning.Render("--- Overdue Reminders (!) ---"))
		v.reminderLines(d.Overdue)
	} else {
		fmt.Fprintln(v.out, "\n"+v.muted.Render("--- No Overdue Reminders ---"))
	}
	if len(d.Upcoming) > 0 {
		fmt.Fprintln(v.out, "\n"+v.title.Render(fmt.Sprintf("--- Reminders (Next %d Days) ---", crm.UpcomingDays)))
		v.reminderLines(d.Upcoming)
	} else {
		fmt.Fprintln(v.out, "\n"+v.muted.Render(fmt.Sprintf("--- No Upcoming Reminders in the Next %d Days ---", crm.UpcomingDays)))
	}
	fmt.Fprintln(v.out)
	v.suggestions(d.Suggestions, days)
}
