package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"promodraft/internal/connectors"
	"promodraft/internal/pipeline"
)

var (
	loadSource   string
	pickName     string
	draftName    string
	runSource    string
	draftsLimit  int
	showDraftID  string
	exportWhat   string
	exportOut    string
	publishDraft string
	publishVia   string
)

var catalogLoadCmd = &cobra.Command{
	Use:   "catalog:load",
	Short: "Load the catalog and remember it for later commands",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), llmNone)
		if err != nil {
			return err
		}
		defer a.Close()

		sess := a.svc.NewSession()
		if err := a.svc.LoadCatalog(cmd.Context(), sess, loadSource); err != nil {
			return err
		}
		fmt.Printf("catalog loaded source=%s items=%d\n", sess.Source, len(sess.Items))
		return nil
	},
}

var catalogListCmd = &cobra.Command{
	Use:   "catalog:list",
	Short: "Show the last loaded catalog with promo prices",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), llmNone)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println(a.render.Catalog(sess.Items, a.svc.Pricing(), a.currency))
		return nil
	},
}

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Pick a product at random, or by --name",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), llmNone)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		if strings.TrimSpace(pickName) != "" {
			_, err = a.svc.PickByName(sess, pickName)
		} else {
			_, err = a.svc.Pick(sess)
		}
		if err != nil {
			return err
		}
		fmt.Println(a.render.Selection(*sess.Picked, a.currency))
		return nil
	},
}

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Write a promo post for the picked product",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), llmRequired)
		if err != nil {
			return err
		}
		defer a.Close()

		sess, err := a.session(cmd.Context())
		if err != nil {
			return err
		}
		switch {
		case strings.TrimSpace(draftName) != "":
			_, err = a.svc.PickByName(sess, draftName)
		case sess.Picked == nil:
			_, err = a.svc.Pick(sess)
		}
		if err != nil {
			return err
		}
		draft, err := a.svc.Generate(cmd.Context(), sess)
		if err != nil {
			return err
		}
		fmt.Println(a.render.Panel(draft, a.currency))
		fmt.Printf("draft id=%s\n", draft.ID)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Load the catalog, pick a product and draft a post in one go",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), llmRequired)
		if err != nil {
			return err
		}
		defer a.Close()

		sess := a.svc.NewSession()
		if err := a.svc.LoadCatalog(cmd.Context(), sess, runSource); err != nil {
			return err
		}
		if _, err := a.svc.Pick(sess); err != nil {
			return err
		}
		draft, err := a.svc.Generate(cmd.Context(), sess)
		if err != nil {
			return err
		}
		fmt.Println(a.render.Panel(draft, a.currency))
		fmt.Printf("draft id=%s\n", draft.ID)
		return nil
	},
}

var draftsListCmd = &cobra.Command{
	Use:   "drafts:list",
	Short: "List saved drafts, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), llmNone)
		if err != nil {
			return err
		}
		defer a.Close()

		drafts, err := a.svc.Drafts(draftsLimit)
		if err != nil {
			return err
		}
		fmt.Println(a.render.Drafts(drafts, a.currency))
		return nil
	},
}

var draftsShowCmd = &cobra.Command{
	Use:   "drafts:show",
	Short: "Show one saved draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(showDraftID) == "" {
			return fmt.Errorf("--id is required")
		}
		a, err := newApp(cmd.Context(), llmNone)
		if err != nil {
			return err
		}
		defer a.Close()

		draft, err := a.svc.Draft(showDraftID)
		if err != nil {
			return err
		}
		fmt.Println(a.render.Panel(draft, a.currency))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export:xlsx",
	Short: "Export the catalog or the saved drafts to xlsx",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), llmNone)
		if err != nil {
			return err
		}
		defer a.Close()

		out := strings.TrimSpace(exportOut)
		if out == "" {
			out = filepath.Join(a.cfg.OutputDir, fmt.Sprintf("%s_%s.xlsx", exportWhat, time.Now().Format("20060102_150405")))
		}

		switch exportWhat {
		case "catalog":
			sess, err := a.session(cmd.Context())
			if err != nil {
				return err
			}
			if err := pipeline.ExportCatalogXLSX(sess.Items, a.svc.Pricing(), out); err != nil {
				return err
			}
			fmt.Printf("exported %d items to %s\n", len(sess.Items), out)
		case "drafts":
			drafts, err := a.svc.Drafts(0)
			if err != nil {
				return err
			}
			if len(drafts) == 0 {
				return fmt.Errorf("no drafts to export")
			}
			if err := pipeline.ExportDraftsXLSX(drafts, out); err != nil {
				return err
			}
			fmt.Printf("exported %d drafts to %s\n", len(drafts), out)
		default:
			return fmt.Errorf("--what must be catalog or drafts, got %q", exportWhat)
		}
		return nil
	},
}

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Save a draft into a mailbox (gmail or imap) without sending it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if strings.TrimSpace(publishDraft) == "" {
			return fmt.Errorf("--draft is required")
		}
		a, err := newApp(cmd.Context(), llmNone)
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := a.publish(cmd, publishDraft, publishVia)
		if err != nil {
			return err
		}
		fmt.Printf("draft saved provider=%s remoteId=%s copy=%s\n", res.Provider, res.RemoteID, res.RawPath)
		return nil
	},
}

func (a *app) publish(cmd *cobra.Command, draftID, provider string) (connectors.PublishResult, error) {
	if err := a.cfg.Require("MAIL_FROM", a.cfg.MailFrom); err != nil {
		return connectors.PublishResult{}, err
	}
	publisher, err := connectors.NewPublisher(cmd.Context(), a.cfg, provider)
	if err != nil {
		return connectors.PublishResult{}, err
	}
	svc := connectors.NewPublishService(a.db, publisher, filepath.Join(a.cfg.OutputDir, "outbox"), a.cfg.MailFrom, a.cfg.MailTo, a.log)
	return svc.Publish(cmd.Context(), draftID)
}

func init() {
	catalogLoadCmd.Flags().StringVar(&loadSource, "source", "", "catalog source (path, URL or sheets:<id>[/range]); defaults to CATALOG_SOURCE")
	pickCmd.Flags().StringVar(&pickName, "name", "", "pick this product instead of a random one")
	draftCmd.Flags().StringVar(&draftName, "name", "", "draft for this product instead of the current pick")
	runCmd.Flags().StringVar(&runSource, "source", "", "catalog source; defaults to CATALOG_SOURCE")
	draftsListCmd.Flags().IntVar(&draftsLimit, "limit", 20, "max drafts to list (0 for all)")
	draftsShowCmd.Flags().StringVar(&showDraftID, "id", "", "draft id")
	exportCmd.Flags().StringVar(&exportWhat, "what", "drafts", "catalog|drafts")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output xlsx path (default OUTPUT_DIR/<what>_<time>.xlsx)")
	publishCmd.Flags().StringVar(&publishDraft, "draft", "", "draft id")
	publishCmd.Flags().StringVar(&publishVia, "provider", "imap", "gmail|imap")
}
