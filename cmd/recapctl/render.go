package main

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sirdesai22/recap-service/internal/render"
)

func newRenderCmd() *cobra.Command {
	var lang string

	cmd := &cobra.Command{
		Use:   "render <recap-id>",
		Short: "Write a recap page as HTML to stdout",
		Long:  "Render a stored recap the way the public page shows it. Unpublished recaps render too.",
		Example: `  recapctl render 0b8f7c9e-3a7d-4c1e-9f55-2d6f0e1b9a10 > recap.html
  recapctl render 0b8f7c9e-3a7d-4c1e-9f55-2d6f0e1b9a10 --lang de`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, args[0], lang)
		},
	}

	cmd.Flags().StringVar(&lang, "lang", "", "Locale for number formatting (BCP 47, default en)")
	return cmd
}

func runRender(cmd *cobra.Command, rawID, lang string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid recap id: %w", err)
	}
	ctx := cmd.Context()
	e, err := setup()
	if err != nil {
		return err
	}
	recap, err := e.svc.GetRecap(ctx, id)
	if err != nil {
		return err
	}
	page, err := render.RecapPage(recap)
	if err != nil {
		return err
	}
	r, err := render.New()
	if err != nil {
		return err
	}
	rc := render.ContextFromQuery("/events/"+recap.EventID.String()+"/recap", url.Values{"lang": {lang}})
	return r.WritePage(cmd.OutOrStdout(), rc, page)
}
