package commands

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"rewecart/internal/exitcode"
	"rewecart/internal/output"
	"rewecart/internal/transfer"
)

func init() {
	Register(&TransferCmd{})
}

// TransferCmd implements the interactive transfer loop.
type TransferCmd struct {
	sel    taskSelection
	resume bool
}

// SetResume sets the resume flag (for testing).
func (c *TransferCmd) SetResume(resume bool) {
	c.resume = resume
}

// SetSelection sets the project, section and tag filters (for testing).
func (c *TransferCmd) SetSelection(project, section, tag string) {
	c.sel = taskSelection{project: project, section: section, tag: tag}
}

func (c *TransferCmd) Name() string      { return "transfer" }
func (c *TransferCmd) Aliases() []string { return []string{"run"} }
func (c *TransferCmd) Synopsis() string  { return "Walk through the tasks interactively" }
func (c *TransferCmd) Usage() string {
	return "rewecart transfer [--resume] [--project <name>] [--section <name>] [--tag <tag>]"
}
func (c *TransferCmd) NeedsAuth() bool { return true }

func (c *TransferCmd) RegisterFlags(fs *flag.FlagSet) {
	c.sel.register(fs)
	fs.BoolVar(&c.resume, "resume", false, "")
}

func (c *TransferCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	var sess *transfer.Session
	if c.resume {
		sess, err = st.sessions.Load(ctx)
	} else {
		sess, err = startSession(ctx, env, st, c.sel)
	}
	if err != nil {
		return report(errOut, err)
	}
	if !env.Cfg.Quiet {
		fmt.Fprintf(out, "transfer: %d of %d tasks left\n", sess.Total()-sess.CurrentIndex, sess.Total())
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	answers := newPrompter(ctx, env.In)

	for {
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(errOut, "error: cancelled")
			return exitcode.UserError
		}

		cur, err := sess.Current()
		if errors.Is(err, transfer.ErrExhausted) {
			break
		}
		if err != nil {
			return report(errOut, err)
		}

		res, err := resolveCurrent(ctx, env, st, sess, cur)
		if err != nil {
			return report(errOut, err)
		}

		output.FormatCurrent(out, cur)
		output.FormatResolution(out, res)
		mappingHint(out, cur, res)

		// Saved mappings are applied without asking
		if res.Source == transfer.SourceMapping && res.Auto != nil {
			if err := choose(ctx, env, st, sess, cur, *res.Auto); err != nil {
				return report(errOut, err)
			}
			output.FormatChosen(out, *res.Auto)
			continue
		}

		fmt.Fprintf(out, "choice [1-%d, s, r <term>, q]: ", len(res.Candidates))
		line, ok := answers.next(ctx)
		if !ok {
			fmt.Fprintln(out)
			return stopped(out, env)
		}

		choice, err := ParseChoice(line)
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
			continue
		}

		switch choice.Kind {
		case ChoiceQuit:
			return stopped(out, env)
		case ChoiceSkip:
			if err := sess.Skip(); err != nil {
				return report(errOut, err)
			}
		case ChoiceRefine:
			if err := sess.Refine(cur.Name, choice.Term); err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
				continue
			}
		case ChoiceAuto, ChoicePick:
			product, err := selectCandidate(res, choice.Number)
			if err != nil {
				fmt.Fprintf(errOut, "error: %v\n", err)
				continue
			}
			if err := choose(ctx, env, st, sess, cur, product); err != nil {
				return report(errOut, err)
			}
			output.FormatChosen(out, product)
			continue
		}

		if err := st.sessions.Save(ctx, sess); err != nil {
			return report(errOut, err)
		}
	}

	finish(out, env, st, sess)

	if len(sess.Completed) == 0 {
		return exitcode.Success
	}
	fmt.Fprintf(out, "close %d completed tasks in Todoist? [y/N]: ", len(sess.Completed))
	if answer, ok := answers.next(ctx); !ok || !isYes(answer) {
		fmt.Fprintln(out)
		return exitcode.Success
	}
	return closeTasks(ctx, env, st, sess, sess.Completed, out, errOut)
}

// prompter reads answer lines in the background so that a cancelled
// context interrupts a pending prompt.
type prompter struct {
	lines chan string
}

func newPrompter(ctx context.Context, in io.Reader) *prompter {
	p := &prompter{lines: make(chan string)}
	if in == nil {
		close(p.lines)
		return p
	}

	go func() {
		defer close(p.lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case p.lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return p
}

// next returns the next answer. It reports false at end of input or when
// ctx is cancelled.
func (p *prompter) next(ctx context.Context) (string, bool) {
	select {
	case line, ok := <-p.lines:
		return line, ok
	case <-ctx.Done():
		return "", false
	}
}

func stopped(out io.Writer, env *Env) int {
	if !env.Cfg.Quiet {
		fmt.Fprintln(out, "stopped; resume with: rewecart transfer --resume")
	}
	return exitcode.Success
}

func isYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes", "j", "ja":
		return true
	}
	return false
}
