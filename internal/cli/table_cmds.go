package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/workbench/internal/sqlite"
)

const tableHelp = "Valid table names: CraftTypes, Items, Recipes, ItemWithAmount"

func newGetCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Get a record by Id",
		Long: "Get prints the record with the given Id as JSON.\n\n" + tableHelp + `

Example:
  workbench get Items 100`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, store *sqlite.Backend) error {
				ops, err := lookupTable(store, args[0])
				if err != nil {
					return err
				}
				rec, err := ops.get(ctx, id)
				if err != nil {
					return err
				}
				return printJSON(cmd, rec)
			})
		},
	}
}

func newCreateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "create <table> <json>",
		Short: "Create a record",
		Long: "Create inserts a record given as JSON and prints the stored record.\n" +
			"An Id of 0 or no Id lets the store assign one. Use - to read the JSON\n" +
			"from standard input.\n\n" + tableHelp + `

Example:
  workbench create Items '{"Name":"Iron Ore"}'
  workbench create ItemWithAmount '{"IngredientId":100,"Amount":3,"RecipeId":10}'`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readPayload(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, store *sqlite.Backend) error {
				ops, err := lookupTable(store, args[0])
				if err != nil {
					return err
				}
				rec, err := ops.create(ctx, data)
				if err != nil {
					return err
				}
				return printJSON(cmd, rec)
			})
		},
	}
}

func newUpdateCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "update <table> <id> <json>",
		Short: "Replace a record",
		Long: "Update replaces every column of the record with the given Id.\n" +
			"The Id in the JSON, if any, is ignored.\n\n" + tableHelp + `

Example:
  workbench update Recipes 10 '{"CraftTypeId":1,"Name":"Iron Ingot"}'`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			data, err := readPayload(args[2], cmd.InOrStdin())
			if err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, store *sqlite.Backend) error {
				ops, err := lookupTable(store, args[0])
				if err != nil {
					return err
				}
				rec, err := ops.update(ctx, id, data)
				if err != nil {
					return err
				}
				return printJSON(cmd, rec)
			})
		},
	}
}

func newDeleteCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> <id>",
		Short: "Delete a record",
		Long: `Delete removes the record with the given Id.

Deleting an Item also deletes the ItemWithAmount rows that consume it.
Deleting a Recipe leaves its ItemWithAmount rows in place.
Deleting a CraftType fails while a Recipe belongs to it.

` + tableHelp,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[1])
			if err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, store *sqlite.Backend) error {
				ops, err := lookupTable(store, args[0])
				if err != nil {
					return err
				}
				if err := ops.remove(ctx, id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s %d\n", args[0], id)
				return nil
			})
		},
	}
}

func newListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list <table> [Column=value ...]",
		Short: "List records with optional filter",
		Long: `List prints the records of a table in Id order.

Filters are Column=value pairs and are ANDed together. The value null
matches a missing reference. limit=N and offset=N page the result.

` + tableHelp + `

Example:
  workbench list Recipes CraftTypeId=1
  workbench list ItemWithAmount RecipeId=null
  workbench list Items limit=10 offset=20`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := parseFilter(args[1:])
			if err != nil {
				return err
			}
			return withStore(cmd, opts, func(ctx context.Context, store *sqlite.Backend) error {
				ops, err := lookupTable(store, args[0])
				if err != nil {
					return err
				}
				recs, err := ops.list(ctx, filter)
				if err != nil {
					return err
				}
				return printJSON(cmd, recs)
			})
		},
	}
}
