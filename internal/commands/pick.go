package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"rewecart/internal/exitcode"
	"rewecart/internal/matching"
	"rewecart/internal/output"
	"rewecart/internal/transfer"
)

func init() {
	Register(&PickCmd{})
}

// PickCmd implements the pick command.
type PickCmd struct{}

func (c *PickCmd) Name() string      { return "pick" }
func (c *PickCmd) Aliases() []string { return []string{"add"} }
func (c *PickCmd) Synopsis() string  { return "Choose a product for the current task" }
func (c *PickCmd) Usage() string     { return "rewecart pick [common flags] [<n>]" }
func (c *PickCmd) NeedsAuth() bool   { return false }

func (c *PickCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PickCmd) Run(ctx context.Context, env *Env, args []string, out, errOut io.Writer) int {
	num, err := parseCandidateNumber(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	st, err := loadState(ctx, env)
	if err != nil {
		return report(errOut, err)
	}

	sess, err := st.sessions.Load(ctx)
	if err != nil {
		return report(errOut, err)
	}
	cur, err := sess.Current()
	if err != nil {
		return report(errOut, err)
	}

	res, err := resolveCurrent(ctx, env, st, sess, cur)
	if err != nil {
		return report(errOut, err)
	}

	product, err := selectCandidate(res, num)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	if err := choose(ctx, env, st, sess, cur, product); err != nil {
		return report(errOut, err)
	}

	if !env.Cfg.Quiet {
		output.FormatChosen(out, product)
	}
	showNext(out, env, st, sess)
	return exitcode.Success
}

// selectCandidate returns candidate num (1-based), or the automatic
// candidate when num is 0.
func selectCandidate(res transfer.Resolution, num int) (matching.Candidate, error) {
	if num == 0 {
		if res.Auto == nil {
			return matching.Candidate{}, fmt.Errorf("no automatic match, choose a product number (1-%d)", len(res.Candidates))
		}
		return *res.Auto, nil
	}
	if num > len(res.Candidates) {
		return matching.Candidate{}, fmt.Errorf("product number out of range: %d", num)
	}
	return res.Candidates[num-1], nil
}

// choose records product for the current task, remembers the mapping for
// real products and advances the session.
func choose(ctx context.Context, env *Env, st *state, sess *transfer.Session, cur transfer.CurrentTask, product matching.Candidate) error {
	if !product.Fallback {
		if err := st.mappings.Put(ctx, cur.Name, product); err != nil {
			return err
		}
	}
	if err := sess.Advance(); err != nil {
		return err
	}
	if err := st.sessions.Save(ctx, sess); err != nil {
		return err
	}

	env.Log.Debug().Str("task", cur.Name).Str("product", product.Name).Bool("fallback", product.Fallback).Msg("product chosen")
	return nil
}

// showNext prints the next task header, or the final report once the
// session is exhausted.
func showNext(out io.Writer, env *Env, st *state, sess *transfer.Session) {
	next, err := sess.Current()
	if err != nil {
		finish(out, env, st, sess)
		return
	}
	if !env.Cfg.Quiet {
		fmt.Fprint(out, "next: ")
		output.FormatCurrent(out, next)
	}
}
