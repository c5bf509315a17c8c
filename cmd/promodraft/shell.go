package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"promodraft/internal"
	"promodraft/internal/display"
	"promodraft/internal/pipeline"
)

const shellHelp = `commands:
  load [source]      load the catalog (default CATALOG_SOURCE)
  list               show the loaded catalog
  pick [name]        pick a random product, or one by name
  gen                write a promo post for the picked product
  show               show the last post again
  drafts             list saved drafts
  publish [provider] save the last post as a mail draft (gmail|imap)
  help               this text
  quit               leave`

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Interactive session: load, pick, generate, show",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), llmOptional)
		if err != nil {
			return err
		}
		defer a.Close()
		return a.shell(cmd, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

// shell runs one Session until quit or end of input. Command errors are
// printed and the loop continues.
func (a *app) shell(cmd *cobra.Command, in io.Reader, out io.Writer) error {
	sess := a.svc.NewSession()
	if err := a.svc.Restore(cmd.Context(), sess); err == nil {
		fmt.Fprintf(out, "restored %d items from %s\n", len(sess.Items), sess.Source)
	} else if !errors.Is(err, pipeline.ErrNoCatalog) {
		fmt.Fprintln(out, display.Error(err))
	}
	fmt.Fprintln(out, `type "help" for commands`)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "promodraft> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		verb, arg, _ := strings.Cut(strings.TrimSpace(scanner.Text()), " ")
		arg = strings.TrimSpace(arg)

		if cmd.Context().Err() != nil {
			return nil
		}

		var err error
		switch strings.ToLower(verb) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprintln(out, shellHelp)
		case "load":
			if err = a.svc.LoadCatalog(cmd.Context(), sess, arg); err == nil {
				fmt.Fprintf(out, "loaded %d items from %s\n", len(sess.Items), sess.Source)
			}
		case "list":
			fmt.Fprintln(out, a.render.Catalog(sess.Items, a.svc.Pricing(), a.currency))
		case "pick":
			if arg != "" {
				_, err = a.svc.PickByName(sess, arg)
			} else {
				_, err = a.svc.Pick(sess)
			}
			if err == nil {
				fmt.Fprintln(out, a.render.Selection(*sess.Picked, a.currency))
			}
		case "gen", "generate":
			var draft internal.Draft
			if draft, err = a.svc.Generate(cmd.Context(), sess); err == nil {
				fmt.Fprintln(out, a.render.Panel(draft, a.currency))
			}
		case "show":
			if sess.Draft == nil {
				err = errors.New("nothing generated yet")
			} else {
				fmt.Fprintln(out, a.render.Panel(*sess.Draft, a.currency))
			}
		case "drafts":
			drafts, listErr := a.svc.Drafts(10)
			if err = listErr; err == nil {
				fmt.Fprintln(out, a.render.Drafts(drafts, a.currency))
			}
		case "publish":
			if sess.Draft == nil {
				err = errors.New("nothing generated yet")
				break
			}
			provider := arg
			if provider == "" {
				provider = "imap"
			}
			res, pubErr := a.publish(cmd, sess.Draft.ID, provider)
			if err = pubErr; err == nil {
				fmt.Fprintf(out, "draft saved provider=%s remoteId=%s\n", res.Provider, res.RemoteID)
			}
		default:
			err = fmt.Errorf("unknown command %q", verb)
		}
		if err != nil {
			fmt.Fprintln(out, display.Error(err))
		}
	}
}
