// Package cli is the command line interface of pcrm. Every command addresses contacts by name;
// when a name is shared by several contacts the user picks one from a numbered list.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/pcrm/internal/calendar"
	"gitlab.com/dirk.krummacker/pcrm/internal/config"
	"gitlab.com/dirk.krummacker/pcrm/internal/crm"
	"gitlab.com/dirk.krummacker/pcrm/internal/logger"
	"gitlab.com/dirk.krummacker/pcrm/internal/resolver"
	"gitlab.com/dirk.krummacker/pcrm/internal/store"
)

// App holds what the commands share: the crm service, the input the prompts read from and the
// output everything is written to.
type App struct {
	in  *bufio.Reader
	out io.Writer

	svc   *crm.Service
	store *store.Store
	log   *zap.Logger
	view  *view

	configPath string
	logLevel   string
	// interactive decides whether the root command without arguments starts the menu.
	interactive func() bool
}

// NewApp creates the application reading answers from in and writing to out.
func NewApp(in io.Reader, out io.Writer) *App {
	return &App{
		in:   bufio.NewReader(in),
		out:  out,
		log:  zap.NewNop(),
		view: newView(out),
		interactive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}
}

// WithService makes the application use an existing service instead of opening the configured
// database.
func (a *App) WithService(svc *crm.Service) *App {
	a.svc = svc
	return a
}

// Close releases the database.
func (a *App) Close() error {
	if a.store == nil {
		return nil
	}
	a.log.Sync()
	return a.store.Close()
}

// Command builds the root command with all subcommands.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "pcrm",
		Short: "Personal CRM: remember the people you know and when you last talked",
		Long: `pcrm keeps contacts with notes, reminders, tags and personal details in a local
database and tells you whom you have not contacted for a while.

Contacts are addressed by name, for example "Jane" or "Jane Doe". If several
contacts share the name, you choose one from a numbered list.

Without a command, pcrm starts the interactive menu when run in a terminal.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.interactive() {
				return cmd.Help()
			}
			return a.menu(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ~/.pcrm/pcrm.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	root.SetOut(a.out)
	root.SetErr(a.out)
	root.SetIn(a.in)

	root.AddCommand(
		a.addCommand(),
		a.listCommand(),
		a.searchCommand(),
		a.viewCommand(),
		a.editCommand(),
		a.deleteCommand(),
		a.noteCommand(),
		a.logCommand(),
		a.reminderCommand(),
		a.remindersCommand(),
		a.tagCommand(),
		a.untagCommand(),
		a.tagsCommand(),
		a.suggestCommand(),
		a.dashboardCommand(),
		a.phoneCommand(),
		a.petCommand(),
		a.partnerCommand(),
		a.relateCommand(),
		a.unrelateCommand(),
		a.relationshipsCommand(),
		a.graphCommand(),
		a.occasionCommand(),
		a.giftCommand(),
		a.importCommand(),
		a.exportCommand(),
		a.syncCalendarCommand(),
		&cobra.Command{
			Use:   "menu",
			Short: "Start the interactive menu",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return a.menu(cmd.Context())
			},
		},
	)
	return root
}

// open loads the configuration and connects to the database, unless a service was injected.
func (a *App) open(cmd *cobra.Command, args []string) error {
	if a.svc != nil {
		return nil
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	path := a.configPath
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return err
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	if a.log, err = logger.New(level, cfg.Log.Format); err != nil {
		return err
	}
	if a.store, err = store.Open(ctx, cfg.Database, a.log); err != nil {
		return err
	}

	var opts []crm.Option
	if cfg.Suggestions.Days > 0 {
		opts = append(opts, crm.WithSuggestionDays(cfg.Suggestions.Days))
	}
	scheduler, err := calendar.New(ctx, cfg.Calendar, a.log)
	switch {
	case err == nil:
		opts = append(opts, crm.WithCalendar(scheduler))
	case !errors.Is(err, calendar.ErrDisabled):
		a.log.Warn("calendar sync unavailable", zap.Error(err))
	}
	a.svc = crm.New(a.store, a.log, opts...)
	return nil
}

// resolve turns a name into a contact id, asking the user to choose if the name is ambiguous. It
// returns false if there is no such contact or the user cancelled; the user has been told then.
func (a *App) resolve(ctx context.Context, name string) (int64, bool, error) {
	id, err := a.svc.Resolve(ctx, name, resolver.NewPrompt(a.in, a.out))
	switch {
	case err == nil:
		return id, true, nil
	case errors.Is(err, resolver.ErrNotFound):
		fmt.Fprintf(a.out, "Contact '%s' not found.\n", strings.TrimSpace(name))
		return 0, false, nil
	case errors.Is(err, resolver.ErrCancelled):
		return 0, false, nil
	}
	return 0, false, err
}

// ask prints a question and reads the answer line. The end of the input is returned as io.EOF.
func (a *App) ask(question string) (string, error) {
	fmt.Fprint(a.out, question)
	line, err := a.in.ReadString('\n')
	if err != nil && line == "" {
		if err == io.EOF {
			fmt.Fprintln(a.out)
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ignoreEOF treats the end of the input as the user walking away.
func ignoreEOF(err error) error {
	if err == io.EOF {
		return nil
	}
	return err
}

// confirm asks a yes/no question. Only "y" and "yes" count as yes.
func (a *App) confirm(question string) (bool, error) {
	answer, err := a.ask(question + " (y/n): ")
	if err == io.EOF {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

// explain turns the errors users can fix into messages. Everything else is returned as error.
func (a *App) explain(err error) error {
	switch {
	case err == nil:
		return nil
	case crm.IsValidation(err),
		errors.Is(err, crm.ErrSelfRelationship),
		errors.Is(err, crm.ErrUnknownOccasion),
		errors.Is(err, resolver.ErrEmptyName):
		fmt.Fprintf(a.out, "Error: %v.\n", err)
		return nil
	case errors.Is(err, store.ErrNotFound):
		fmt.Fprintln(a.out, "Contact not found.")
		return nil
	}
	return err
}

// splitName splits a full name into the first word and the rest, which becomes the last name.
func splitName(name string) (string, *string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", nil
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	last := strings.Join(parts[1:], " ")
	return parts[0], &last
}
