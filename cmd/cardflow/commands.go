package main

import (
	"errors"
	"fmt"

	"github.com/hylla/cardflow/internal/adapters/console"
	"github.com/hylla/cardflow/internal/app"
	"github.com/spf13/cobra"
)

// errMissingID reports a required id flag left unset.
var errMissingID = errors.New("a positive id is required")

func (c *cli) pathsCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "paths",
		Short:       "Show resolved config, data, and database paths",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipRuntimeAnnotation: "true"},
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(out, "app: %s\n", c.flags.appName)
			_, _ = fmt.Fprintf(out, "dev_mode: %t\n", c.flags.devMode)
			_, _ = fmt.Fprintf(out, "config: %s\n", c.paths.ConfigPath)
			_, _ = fmt.Fprintf(out, "data_dir: %s\n", c.paths.DataDir)
			_, _ = fmt.Fprintf(out, "db: %s\n", c.paths.DBPath)
			return nil
		},
	}
}

func (c *cli) boardsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "boards",
		Short: "List boards",
		Args:  cobra.NoArgs,
		RunE: c.logged("boards", func(cmd *cobra.Command) error {
			boards, err := c.svc.ListBoards(cmd.Context())
			if err != nil {
				return err
			}
			c.render.Boards(boards)
			return nil
		}),
	}
}

func (c *cli) boardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Inspect a board",
	}

	var boardID int64
	show := &cobra.Command{
		Use:   "show",
		Short: "Show each column of a board with its card count",
		Args:  cobra.NoArgs,
		RunE: c.logged("board show", func(cmd *cobra.Command) error {
			if boardID <= 0 {
				return fmt.Errorf("--board: %w", errMissingID)
			}
			summary, found, err := c.svc.BoardSummary(cmd.Context(), boardID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("board %d: %w", boardID, app.ErrNotFound)
			}
			c.render.BoardSummary(summary)
			return nil
		}),
	}
	show.Flags().Int64Var(&boardID, "board", 0, "board id")
	cmd.AddCommand(show)
	return cmd
}

func (c *cli) columnCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "column",
		Short: "Inspect a column",
	}

	var columnID int64
	show := &cobra.Command{
		Use:   "show",
		Short: "Show a column with its cards",
		Args:  cobra.NoArgs,
		RunE: c.logged("column show", func(cmd *cobra.Command) error {
			if columnID <= 0 {
				return fmt.Errorf("--column: %w", errMissingID)
			}
			detail, found, err := c.svc.ColumnDetail(cmd.Context(), columnID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("column %d: %w", columnID, app.ErrNotFound)
			}
			c.render.ColumnDetail(detail)
			return nil
		}),
	}
	show.Flags().Int64Var(&columnID, "column", 0, "column id")
	cmd.AddCommand(show)
	return cmd
}

func (c *cli) cardCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Create, move, block, unblock, cancel, and inspect cards",
	}
	cmd.AddCommand(
		c.cardCreateCommand(),
		c.cardMoveCommand(),
		c.cardBlockCommand(),
		c.cardUnblockCommand(),
		c.cardCancelCommand(),
		c.cardShowCommand(),
		c.cardHistoryCommand(),
	)
	return cmd
}

func (c *cli) cardCreateCommand() *cobra.Command {
	var (
		boardID     int64
		title       string
		description string
	)
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a card in the board's initial column",
		Args:  cobra.NoArgs,
		RunE: c.logged("card create", func(cmd *cobra.Command) error {
			if boardID <= 0 {
				return fmt.Errorf("--board: %w", errMissingID)
			}
			card, err := c.svc.CreateCard(cmd.Context(), boardID, title, description)
			if err != nil {
				return err
			}
			c.render.Card("created", card)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&boardID, "board", 0, "board id")
	cmd.Flags().StringVar(&title, "title", "", "card title")
	cmd.Flags().StringVar(&description, "description", "", "card description (markdown)")
	return cmd
}

func (c *cli) cardMoveCommand() *cobra.Command {
	var cardID int64
	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a card to the next column",
		Args:  cobra.NoArgs,
		RunE: c.logged("card move", func(cmd *cobra.Command) error {
			if cardID <= 0 {
				return fmt.Errorf("--card: %w", errMissingID)
			}
			layout, err := c.svc.LayoutForCard(cmd.Context(), cardID)
			if err != nil {
				return err
			}
			card, err := c.svc.MoveCardToNextColumn(cmd.Context(), cardID, layout)
			if err != nil {
				return err
			}
			c.render.Card("moved", card)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&cardID, "card", 0, "card id")
	return cmd
}

func (c *cli) cardBlockCommand() *cobra.Command {
	var (
		cardID int64
		reason string
	)
	cmd := &cobra.Command{
		Use:   "block",
		Short: "Block a card with a reason",
		Args:  cobra.NoArgs,
		RunE: c.logged("card block", func(cmd *cobra.Command) error {
			if cardID <= 0 {
				return fmt.Errorf("--card: %w", errMissingID)
			}
			layout, err := c.svc.LayoutForCard(cmd.Context(), cardID)
			if err != nil {
				return err
			}
			card, err := c.svc.BlockCard(cmd.Context(), cardID, reason, layout)
			if err != nil {
				return err
			}
			c.render.Card("blocked", card)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&cardID, "card", 0, "card id")
	cmd.Flags().StringVar(&reason, "reason", "", "block reason")
	return cmd
}

func (c *cli) cardUnblockCommand() *cobra.Command {
	var (
		cardID int64
		reason string
	)
	cmd := &cobra.Command{
		Use:   "unblock",
		Short: "Unblock a card with a reason",
		Args:  cobra.NoArgs,
		RunE: c.logged("card unblock", func(cmd *cobra.Command) error {
			if cardID <= 0 {
				return fmt.Errorf("--card: %w", errMissingID)
			}
			card, err := c.svc.UnblockCard(cmd.Context(), cardID, reason)
			if err != nil {
				return err
			}
			c.render.Card("unblocked", card)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&cardID, "card", 0, "card id")
	cmd.Flags().StringVar(&reason, "reason", "", "unblock reason")
	return cmd
}

func (c *cli) cardCancelCommand() *cobra.Command {
	var cardID int64
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Move a card straight to the board's cancel column",
		Args:  cobra.NoArgs,
		RunE: c.logged("card cancel", func(cmd *cobra.Command) error {
			if cardID <= 0 {
				return fmt.Errorf("--card: %w", errMissingID)
			}
			layout, err := c.svc.LayoutForCard(cmd.Context(), cardID)
			if err != nil {
				return err
			}
			card, err := c.svc.CancelCard(cmd.Context(), cardID, layout.Cancel().ID, layout)
			if err != nil {
				return err
			}
			c.render.Card("cancelled", card)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&cardID, "card", 0, "card id")
	return cmd
}

func (c *cli) cardShowCommand() *cobra.Command {
	var cardID int64
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a card",
		Args:  cobra.NoArgs,
		RunE: c.logged("card show", func(cmd *cobra.Command) error {
			if cardID <= 0 {
				return fmt.Errorf("--card: %w", errMissingID)
			}
			detail, found, err := c.svc.CardDetail(cmd.Context(), cardID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("card %d: %w", cardID, app.ErrNotFound)
			}
			c.render.CardDetail(detail)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&cardID, "card", 0, "card id")
	return cmd
}

func (c *cli) cardHistoryCommand() *cobra.Command {
	var cardID int64
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a card's block history",
		Args:  cobra.NoArgs,
		RunE: c.logged("card history", func(cmd *cobra.Command) error {
			if cardID <= 0 {
				return fmt.Errorf("--card: %w", errMissingID)
			}
			events, found, err := c.svc.CardBlockHistory(cmd.Context(), cardID)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("card %d: %w", cardID, app.ErrNotFound)
			}
			c.render.BlockHistory(cardID, events)
			return nil
		}),
	}
	cmd.Flags().Int64Var(&cardID, "card", 0, "card id")
	return cmd
}

func (c *cli) menuCommand() *cobra.Command {
	var boardID int64
	cmd := &cobra.Command{
		Use:   "menu",
		Short: "Run the interactive board menu",
		Long: `Run the interactive menu.

Without --board the menu starts with the board list; with --board it opens
that board directly and ends when the board menu is left.`,
		Args: cobra.NoArgs,
		RunE: c.logged("menu", func(cmd *cobra.Command) error {
			return c.runMenu(cmd, boardID)
		}),
	}
	cmd.Flags().Int64Var(&boardID, "board", 0, "open this board directly")
	return cmd
}

// runMenu runs the board picker, or one board's menu when boardID is set.
func (c *cli) runMenu(cmd *cobra.Command, boardID int64) error {
	// Runtime logs stay in the dev-file sink while prompts are on screen.
	c.logger.SetConsoleEnabled(false)
	defer c.logger.SetConsoleEnabled(true)

	in, out := cmd.InOrStdin(), cmd.OutOrStdout()
	if boardID <= 0 {
		return console.NewBoardPicker(c.svc, c.svc, in, out, c.render, c.logger).Run(cmd.Context())
	}
	_, err := console.NewBoardMenu(c.svc, boardID, in, out, c.render, c.logger).Run(cmd.Context())
	return err
}
