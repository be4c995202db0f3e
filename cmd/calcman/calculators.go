package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/calcman/internal/cli"
	"github.com/Veraticus/calcman/internal/common"
	"github.com/Veraticus/calcman/internal/model"
)

func calculatorsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "calculators",
		Aliases: []string{"calc", "c"},
		Short:   "Manage calculator definitions",
	}

	cmd.AddCommand(calculatorsListCmd())
	cmd.AddCommand(calculatorsShowCmd())
	cmd.AddCommand(calculatorsAddCmd())
	cmd.AddCommand(calculatorsUpdateCmd())
	cmd.AddCommand(calculatorsDeleteCmd())

	return cmd
}

func calculatorsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all calculators in catalog order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatTitle(fmt.Sprintf("Calculators (%d)", store.Len())))
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCalculators(store.List()))
			return nil
		},
	}
}

func calculatorsShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one calculator with its rendered SEO text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			year, _ := cmd.Flags().GetInt("year")

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			def, err := store.Get(args[0])
			if err != nil {
				return err
			}
			rendered, err := store.RenderSEO(def.ID, year)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDefinition(def, rendered))
			return nil
		},
	}

	cmd.Flags().Int("year", time.Now().Year(), "year substituted into {year}")

	return cmd
}

func calculatorsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add --file <definition.yaml>",
		Short: "Add a calculator from a YAML or JSON file",
		Long: `Add a calculator described by a YAML or JSON file.

The slug may be left out; it is then derived from the name.

Example:
  id: auto
  name: Автокредит
  category: Автокредит
  variables:
    minAmount: 100000
    maxAmount: 5000000
    defaultAmount: 1000000
    minRate: 5
    maxRate: 25
    defaultRate: 12`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			file, _ := cmd.Flags().GetString("file")

			def, err := readDefinitionFile(file)
			if err != nil {
				return err
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			added, err := store.Add(cmd.Context(), def)
			if err != nil {
				return describeValidation(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Added %s (%s) as /%s", added.Name, added.ID, added.Slug)))
			return nil
		},
	}

	cmd.Flags().StringP("file", "f", "", "definition file (.yaml, .yml or .json)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

func calculatorsUpdateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a calculator",
		Long: `Change fields of a calculator. Only the flags that are given are applied;
the result is validated exactly like a new calculator.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			patch, err := patchFromFlags(cmd)
			if err != nil {
				return err
			}
			if patch.IsEmpty() {
				return common.NewUserError("nothing to update: pass at least one field flag", nil)
			}

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			updated, err := store.Update(cmd.Context(), args[0], patch)
			if err != nil {
				return describeValidation(err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Updated %s (%s)", updated.Name, updated.ID)))
			return nil
		},
	}

	flags := cmd.Flags()
	for _, f := range stringPatchFlags {
		flags.String(f.name, "", f.usage)
	}
	for _, f := range floatPatchFlags {
		flags.Float64(f.name, 0, f.usage)
	}
	flags.String("changefreq", "", "sitemap change frequency override (empty removes it)")
	flags.Float64("priority", 0, "sitemap priority override (0.0-1.0)")
	flags.Bool("clear-sitemap", false, "drop the sitemap overrides before applying --changefreq/--priority")

	return cmd
}

type stringPatchFlag struct {
	field func(*model.DefinitionPatch) **string
	name  string
	usage string
}

var stringPatchFlags = []stringPatchFlag{
	{name: "name", usage: "display name", field: func(p *model.DefinitionPatch) **string { return &p.Name }},
	{name: "slug", usage: "URL slug", field: func(p *model.DefinitionPatch) **string { return &p.Slug }},
	{name: "category", usage: "category substituted into {category}", field: func(p *model.DefinitionPatch) **string { return &p.Category }},
	{name: "description", usage: "description", field: func(p *model.DefinitionPatch) **string { return &p.Description }},
	{name: "icon", usage: "icon", field: func(p *model.DefinitionPatch) **string { return &p.Icon }},
	{name: "color", usage: "accent color", field: func(p *model.DefinitionPatch) **string { return &p.Color }},
	{name: "seo-title", usage: "SEO title template", field: func(p *model.DefinitionPatch) **string { return &seoPatch(p).Title }},
	{name: "seo-description", usage: "SEO description template", field: func(p *model.DefinitionPatch) **string { return &seoPatch(p).Description }},
	{name: "seo-h1", usage: "SEO h1 template", field: func(p *model.DefinitionPatch) **string { return &seoPatch(p).H1 }},
	{name: "seo-keywords", usage: "SEO keywords", field: func(p *model.DefinitionPatch) **string { return &seoPatch(p).Keywords }},
}

type floatPatchFlag struct {
	field func(*model.VariablesPatch) **float64
	name  string
	usage string
}

var floatPatchFlags = []floatPatchFlag{
	{name: "min-amount", usage: "minimum amount", field: func(v *model.VariablesPatch) **float64 { return &v.MinAmount }},
	{name: "max-amount", usage: "maximum amount", field: func(v *model.VariablesPatch) **float64 { return &v.MaxAmount }},
	{name: "default-amount", usage: "default amount", field: func(v *model.VariablesPatch) **float64 { return &v.DefaultAmount }},
	{name: "min-rate", usage: "minimum rate", field: func(v *model.VariablesPatch) **float64 { return &v.MinRate }},
	{name: "max-rate", usage: "maximum rate", field: func(v *model.VariablesPatch) **float64 { return &v.MaxRate }},
	{name: "default-rate", usage: "default rate", field: func(v *model.VariablesPatch) **float64 { return &v.DefaultRate }},
}

func seoPatch(p *model.DefinitionPatch) *model.SEOPatch {
	if p.SEO == nil {
		p.SEO = &model.SEOPatch{}
	}
	return p.SEO
}

// patchFromFlags builds a patch from the flags that were explicitly set.
func patchFromFlags(cmd *cobra.Command) (model.DefinitionPatch, error) {
	var patch model.DefinitionPatch
	flags := cmd.Flags()

	for _, f := range stringPatchFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetString(f.name)
		if err != nil {
			return patch, err
		}
		*f.field(&patch) = &v
	}

	for _, f := range floatPatchFlags {
		if !flags.Changed(f.name) {
			continue
		}
		v, err := flags.GetFloat64(f.name)
		if err != nil {
			return patch, err
		}
		if patch.Variables == nil {
			patch.Variables = &model.VariablesPatch{}
		}
		*f.field(patch.Variables) = &v
	}

	if flags.Changed("changefreq") || flags.Changed("priority") || flags.Changed("clear-sitemap") {
		sp := &model.SitemapPatch{}
		sp.Reset, _ = flags.GetBool("clear-sitemap")
		if flags.Changed("changefreq") {
			v, _ := flags.GetString("changefreq")
			v = strings.ToLower(strings.TrimSpace(v))
			sp.ChangeFreq = &v
		}
		if flags.Changed("priority") {
			v, _ := flags.GetFloat64("priority")
			sp.Priority = &v
		}
		patch.Sitemap = sp
	}

	return patch, nil
}

func calculatorsDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a calculator",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force")
			id := args[0]

			settings, err := loadSettings()
			if err != nil {
				return err
			}
			store, closeStore, err := openStore(cmd.Context(), settings)
			if err != nil {
				return err
			}
			defer closeStore()

			def, err := store.Get(id)
			if err != nil {
				return err
			}

			if !force {
				ok, err := cli.Confirm(cmd.Context(), cli.NewNonBlockingReader(cmd.InOrStdin()), cmd.OutOrStdout(),
					fmt.Sprintf("Delete calculator %s (%s)?", def.Name, def.ID))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Nothing deleted"))
					return nil
				}
			}

			if err := store.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %s (%s)", def.Name, def.ID)))
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "delete without asking for confirmation")

	return cmd
}

// describeValidation turns a validation failure into a message naming the
// offending field.
func describeValidation(err error) error {
	var vErr *common.ValidationError
	if errors.As(err, &vErr) {
		return common.NewUserError(fmt.Sprintf("invalid %s: %s", vErr.Field, vErr.Reason), err)
	}
	return err
}
