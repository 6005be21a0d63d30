package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bunkbed-tech/fushigi-sub000/internal/config"
	"github.com/bunkbed-tech/fushigi-sub000/internal/domain"
	"github.com/bunkbed-tech/fushigi-sub000/internal/schedule"
	"github.com/bunkbed-tech/fushigi-sub000/internal/search"
	"github.com/bunkbed-tech/fushigi-sub000/internal/study"
)

func newSyncCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Fetch every collection from the record service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, a *app) error {
				a.study.SyncAll(ctx)
				printStatus(cmd.OutOrStdout(), a.study.Status())
				return nil
			})
		},
	}
}

func newStatusCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the state of the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(_ context.Context, a *app) error {
				printStatus(cmd.OutOrStdout(), a.study.Status())
				return nil
			})
		},
	}
}

func printStatus(w io.Writer, s study.Status) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "concepts\t%s\n", s.Concepts)
	fmt.Fprintf(tw, "journal\t%s\n", s.Journal)
	fmt.Fprintf(tw, "sentences\t%s\n", s.Sentences)
	fmt.Fprintf(tw, "schedule\t%s\n", s.Schedule)
	fmt.Fprintf(tw, "review\t%s\n", s.Review)
	_ = tw.Flush()
}

func newStudyCmd(flags *config.Flags) *cobra.Command {
	var (
		due   bool
		force bool
		sync  bool
	)

	cmd := &cobra.Command{
		Use:   "study",
		Short: "Show today's study set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			strategy := schedule.Random
			if due {
				strategy = schedule.Due
			}
			return run(cmd, flags, func(ctx context.Context, a *app) error {
				if sync {
					a.study.SyncAll(ctx)
				}
				d := a.study.Dashboard(ctx, strategy, force)
				printDashboard(cmd.OutOrStdout(), a.study, d)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&due, "due", false, "Pick concepts that are due for review instead of at random")
	cmd.Flags().BoolVar(&force, "force", false, "Recompute today's set")
	cmd.Flags().BoolVar(&sync, "sync", false, "Sync before selecting")

	return cmd
}

func printDashboard(w io.Writer, svc *study.Service, d study.Dashboard) {
	fmt.Fprintf(w, "review: %s\n", d.Review.State)
	if len(d.Today) == 0 {
		fmt.Fprintln(w, "nothing to study today")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USAGE\tMEANING\tDUE\tEASE\t")
	for _, rec := range d.Today {
		usage, meaning := rec.ConceptID, ""
		if c, ok := svc.Concept(rec.ConceptID); ok {
			usage, meaning = c.Usage, c.Meaning
		}
		marker := ""
		if rec.IsNew() {
			marker = "new"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%s\n", usage, meaning, rec.DueDate.Format(time.DateOnly), rec.EaseFactor, marker)
	}
	_ = tw.Flush()
}

func newSearchCmd(flags *config.Flags) *cobra.Command {
	var (
		tags       []string
		systemOnly bool
		limit      int
	)

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search grammar concepts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := search.DefaultParams(strings.Join(args, " "))
			params.Tags = tags
			params.SystemOnly = systemOnly
			if limit > 0 {
				params.Limit = limit
			}
			return run(cmd, flags, func(ctx context.Context, a *app) error {
				res, err := a.study.Search(ctx, params)
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "%d matches\n", res.Total)
				tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
				for _, hit := range res.Hits {
					fmt.Fprintf(tw, "%s\t%s\t%s\n", hit.ID, hit.Usage, hit.Meaning)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringSliceVar(&tags, "tag", nil, "Only concepts carrying one of these tags")
	cmd.Flags().BoolVar(&systemOnly, "system", false, "Only system-provided concepts")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newEnrollCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "enroll <concept-id>",
		Short: "Add a concept to your review schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, func(ctx context.Context, a *app) error {
				rec, err := a.study.Enroll(ctx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "enrolled %s, first review %s\n", rec.ConceptID, rec.DueDate.Format(time.DateOnly))
				return nil
			})
		},
	}
}

func newJournalCmd(flags *config.Flags) *cobra.Command {
	var (
		title   string
		body    string
		private bool
		tags    []string
	)

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Write a journal entry and tag the sentences that use a concept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, a *app) error {
				for _, tag := range tags {
					conceptID, text, ok := strings.Cut(tag, "=")
					if !ok {
						return fmt.Errorf("invalid tag %q (want concept-id=sentence)", tag)
					}
					if err := a.study.TagConcept(strings.TrimSpace(conceptID), text); err != nil {
						return err
					}
				}

				res, err := a.study.SubmitEntry(ctx, domain.JournalEntryDraft{
					Title:   title,
					Content: body,
					Private: private,
				})
				w := cmd.OutOrStdout()
				if res.Entry.ID != "" {
					fmt.Fprintf(w, "created entry %s with %d tagged sentences\n", res.Entry.ID, len(res.Tags.Created))
				}
				for _, lost := range res.Tags.Failed {
					fmt.Fprintf(w, "not saved: %s (%s)\n", lost.Text, lost.ConceptID)
				}
				return err
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Entry title")
	cmd.Flags().StringVar(&body, "body", "", "Entry text")
	cmd.Flags().BoolVar(&private, "private", false, "Keep the entry private")
	cmd.Flags().StringArrayVar(&tags, "tag", nil, "Tag a sentence as concept-id=sentence (repeatable)")

	return cmd
}

func newLoginCmd(flags *config.Flags) *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store the bearer token for the record service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(_ context.Context, a *app) error {
				return a.session.Login(token)
			})
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "Bearer token")
	_ = cmd.MarkFlagRequired("token")

	return cmd
}

func newLogoutCmd(flags *config.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored token and wipe the local cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, flags, func(ctx context.Context, a *app) error {
				return a.session.Logout(ctx, a.cfg.Study.UserID)
			})
		},
	}
}
