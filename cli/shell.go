package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"sales-dashboard/models"
	"sales-dashboard/services"
)

const shellHelp = `Commands:
  login <user> <secret>             start a session
  logout                            end the session
  categories                        list categories
  filter <category|all>             restrict the dashboard to one category
  report                            print the dashboard
  details                           print detailed rows (if permitted)
  export <file.csv>                 write detailed rows to CSV (if permitted)
  users                             list employees (managers)
  provision <user> <secret> <confirm> [details] [inactive]
                                    create an employee (managers)
  set <user> <active|can_view_details> <true|false>
                                    change an employee flag (managers)
  help                              show this help
  quit                              leave the shell
`

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive dashboard session",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := bootstrap(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			_, _ = a.ensureImported(ctx, "")

			sh := newShell(a.newSession(), cmd.OutOrStdout(), a.cfg.TopN)
			return sh.run(ctx, cmd.InOrStdin())
		},
	}
}

type shell struct {
	session *services.Session
	printer *services.ReportPrinter
	out     io.Writer
	topN    int
}

func newShell(session *services.Session, out io.Writer, topN int) *shell {
	return &shell{
		session: session,
		printer: services.NewReportPrinter(out),
		out:     out,
		topN:    topN,
	}
}

func (sh *shell) run(ctx context.Context, in io.Reader) error {
	fmt.Fprint(sh.out, "Sales dashboard shell. Type 'help' for commands.\n")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(sh.out, sh.prompt())
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		if ctx.Err() != nil {
			return nil
		}
		if quit := sh.exec(ctx, scanner.Text()); quit {
			return nil
		}
	}
}

func (sh *shell) prompt() string {
	if u, err := sh.session.User(); err == nil {
		return fmt.Sprintf("%s [%s]> ", u.Username, sh.session.Filter())
	}
	return "> "
}

// exec runs one command line and reports whether the shell should exit.
func (sh *shell) exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch name {
	case "quit", "exit":
		return true
	case "help":
		fmt.Fprint(sh.out, shellHelp)
	case "login":
		err = sh.login(ctx, args)
	case "logout":
		sh.session.Logout()
		fmt.Fprintln(sh.out, "Logged out.")
	case "categories":
		err = sh.categories()
	case "filter":
		err = sh.filter(strings.Join(args, " "))
	case "report":
		err = sh.report()
	case "details":
		err = sh.details()
	case "export":
		err = sh.export(args)
	case "users":
		err = sh.users()
	case "provision":
		err = sh.provision(args)
	case "set":
		err = sh.set(args)
	default:
		err = fmt.Errorf("unknown command %q (try 'help')", name)
	}

	if err != nil {
		fmt.Fprintf(sh.out, "error: %v\n", err)
	}
	return false
}

func (sh *shell) login(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("usage: login <user> <secret>")
	}
	err := sh.session.Login(ctx, args[0], args[1])
	if errors.Is(err, services.ErrAuthFailure) {
		return err
	}
	u, uerr := sh.session.User()
	if uerr != nil {
		return uerr
	}
	fmt.Fprintf(sh.out, "Welcome, %s (%s). %d records loaded.\n", u.Username, u.Role, len(sh.session.Records()))
	return err
}

func (sh *shell) categories() error {
	if _, err := sh.session.User(); err != nil {
		return err
	}
	records := sh.session.Records()
	counts := services.CountByCategory(records)
	sentiments := services.SentimentByCategory(records)
	fmt.Fprintf(sh.out, "  %-40s %6s %5s %5s %5s\n", "Category", "Items", "Pos", "Neu", "Neg")
	for _, c := range services.Categories(records) {
		s := sentiments[c]
		fmt.Fprintf(sh.out, "  %-40s %6d %5d %5d %5d\n", c, counts[c],
			s[models.SentimentPositive], s[models.SentimentNeutral], s[models.SentimentNegative])
	}
	return nil
}

func (sh *shell) filter(query string) error {
	if _, err := sh.session.User(); err != nil {
		return err
	}
	if query == "" {
		return errors.New("usage: filter <category|all>")
	}
	f, suggestions, ok := resolveCategory(query, services.Categories(sh.session.Records()))
	if !ok {
		return unknownCategoryError(query, suggestions)
	}
	sh.session.SetFilter(f)
	fmt.Fprintf(sh.out, "Filter: %s\n", f)
	return nil
}

func (sh *shell) report() error {
	if _, err := sh.session.User(); err != nil {
		return err
	}
	sh.printer.Print(services.BuildReport(sh.session.Records(), sh.session.Filter(), sh.topN))
	return nil
}

func (sh *shell) details() error {
	rows, err := sh.session.DetailedRecords()
	if err != nil {
		return err
	}
	if f := sh.session.Filter(); !f.All() {
		rows = services.RecordsInCategory(rows, f.Category())
	}
	sh.printer.PrintRecords(rows)
	return nil
}

func (sh *shell) export(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: export <file.csv>")
	}
	rows, err := sh.session.DetailedRecords()
	if err != nil {
		return err
	}
	if err := exportRecords(args[0], rows); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Exported %d records to %s\n", len(rows), args[0])
	return nil
}

func (sh *shell) users() error {
	employees, err := sh.session.Employees()
	if err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "  %-20s %-8s %s\n", "Username", "Active", "Details")
	for _, u := range employees {
		fmt.Fprintf(sh.out, "  %-20s %-8t %t\n", u.Username, u.Active, u.CanViewDetails)
	}
	return nil
}

func (sh *shell) provision(args []string) error {
	if len(args) < 3 {
		return errors.New("usage: provision <user> <secret> <confirm> [details] [inactive]")
	}
	req := services.ProvisionRequest{
		Username:      args[0],
		Secret:        args[1],
		ConfirmSecret: args[2],
		Active:        true,
	}
	for _, opt := range args[3:] {
		switch strings.ToLower(opt) {
		case "details":
			req.CanViewDetails = true
		case "inactive":
			req.Active = false
		default:
			return fmt.Errorf("unknown option %q", opt)
		}
	}

	if err := sh.session.ProvisionEmployee(req); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "Employee %s created.\n", req.Username)
	return nil
}

func (sh *shell) set(args []string) error {
	if len(args) != 3 {
		return errors.New("usage: set <user> <active|can_view_details> <true|false>")
	}
	value, err := strconv.ParseBool(args[2])
	if err != nil {
		return fmt.Errorf("invalid value %q: %w", args[2], err)
	}
	flag := services.EmployeeFlag(strings.ToLower(args[1]))
	if flag != services.FlagActive && flag != services.FlagCanViewDetails {
		return fmt.Errorf("unknown flag %q", args[1])
	}

	if err := sh.session.SetEmployeeFlag(args[0], flag, value); err != nil {
		return err
	}
	fmt.Fprintf(sh.out, "%s: %s=%t\n", args[0], flag, value)
	return nil
}
