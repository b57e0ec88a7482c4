package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	api "gitlab.com/dirk.krummacker/pcrm/pkg/model"
)

var menuItems = []string{
	"(A)dd Contact",
	"(L)ist Contacts",
	"(V)iew Contact",
	"(E)dit Contact",
	"(D)elete Contact",
	"Add (N)ote to Contact",
	"Add (R)eminder for Contact",
	"(T)ag Contact",
	"(U)ntag Contact",
	"Lo(g) Interaction",
	"(S)uggest Contacts",
	"List Re(m)inders",
	"View Das(h)board",
	"E(x)it",
}

// menu runs the interactive menu until the user exits or the input ends. Errors of single
// actions are printed and the menu continues.
func (a *App) menu(ctx context.Context) error {
	for {
		fmt.Fprintln(a.out)
		a.view.heading("pCRM Main Menu")
		for _, item := range menuItems {
			fmt.Fprintln(a.out, item)
		}
		choice, err := a.ask("Enter your choice: ")
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		choice = strings.ToLower(choice)
		if choice == "x" {
			fmt.Fprintln(a.out, "Exiting pCRM. Goodbye!")
			return nil
		}
		action, ok := a.menuActions()[choice]
		if !ok {
			fmt.Fprintln(a.out, "Invalid choice. Please try again.")
			continue
		}
		err = action(ctx)
		if err == io.EOF {
			return nil
		}
		if err != nil {
			a.log.Sugar().Errorw("menu action failed", "choice", choice, "error", err)
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
	}
}

func (a *App) menuActions() map[string]func(ctx context.Context) error {
	return map[string]func(ctx context.Context) error{
		"a": func(ctx context.Context) error {
			name, err := a.ask("Enter contact's full name: ")
			if err != nil {
				return err
			}
			first, last := splitName(name)
			return a.addContact(ctx, api.Contact{FirstName: &first, LastName: last})
		},
		"l": func(ctx context.Context) error {
			tag, err := a.ask("Enter tag to filter by (or press Enter for all): ")
			if err != nil {
				return err
			}
			return a.listContacts(ctx, tag)
		},
		"v": func(ctx context.Context) error {
			name, err := a.ask("Enter contact's full name to view: ")
			if err != nil {
				return err
			}
			return a.viewContact(ctx, name)
		},
		"e": func(ctx context.Context) error {
			name, err := a.ask("Enter contact's full name to edit: ")
			if err != nil {
				return err
			}
			id, ok, err := a.resolve(ctx, name)
			if !ok {
				return err
			}
			return a.editName(ctx, id)
		},
		"d": func(ctx context.Context) error {
			name, err := a.ask("Enter contact's full name to delete: ")
			if err != nil {
				return err
			}
			return a.deleteContact(ctx, name, false)
		},
		"n": func(ctx context.Context) error {
			answers, err := a.askAll("Enter contact's full name for the note: ", "Enter the note: ")
			if err != nil {
				return err
			}
			return a.addNote(ctx, answers[0], answers[1])
		},
		"r": func(ctx context.Context) error {
			answers, err := a.askAll(
				"Enter contact's full name for the reminder: ",
				"Enter the reminder message: ",
				"Enter the reminder date (YYYY-MM-DD): ")
			if err != nil {
				return err
			}
			return a.addReminder(ctx, answers[0], api.Reminder{Message: answers[1], Date: answers[2]})
		},
		"t": func(ctx context.Context) error {
			answers, err := a.askAll("Enter contact's full name to tag: ", "Enter the tag: ")
			if err != nil {
				return err
			}
			return a.tag(ctx, answers[0], answers[1])
		},
		"u": func(ctx context.Context) error {
			answers, err := a.askAll("Enter contact's full name to untag: ", "Enter the tag: ")
			if err != nil {
				return err
			}
			return a.untag(ctx, answers[0], answers[1])
		},
		"g": func(ctx context.Context) error {
			answers, err := a.askAll("Enter contact's full name to log interaction: ", "Enter the interaction details: ")
			if err != nil {
				return err
			}
			return a.logInteraction(ctx, answers[0], answers[1])
		},
		"s": func(ctx context.Context) error {
			return a.suggest(ctx, a.svc.SuggestionDays())
		},
		"m": a.listReminders,
		"h": a.dashboard,
	}
}

// askAll asks the questions one after the other.
func (a *App) askAll(questions ...string) ([]string, error) {
	answers := make([]string, 0, len(questions))
	for _, q := range questions {
		answer, err := a.ask(q)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}
	return answers, nil
}
