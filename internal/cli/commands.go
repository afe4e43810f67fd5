package cli

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contactsync/internal/mapping"
	"contactsync/internal/platform/restclient"
	"contactsync/internal/sync/models"
	"contactsync/internal/sync/resync"
)

func (o *RootOptions) printer(cmd *cobra.Command) printer {
	return printer{format: o.Format, out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr()}
}

func parseKind(s string) (models.EntityKind, error) {
	kind, err := models.ParseEntityKind(s)
	if err != nil {
		return "", fmt.Errorf("%w (known kinds: %v)", err, models.AllKinds)
	}
	return kind, nil
}

// NewRepairCommand creates the repair command.
func NewRepairCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "repair <kind> <owner-key>",
		Short: "Rebuild the mappings of one owner from a fresh legacy snapshot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			p := opts.printer(cmd)

			var result resync.RepairResult
			path := restclient.Path("repair", string(kind), args[1])
			if err := client.Do(cmd.Context(), http.MethodPost, path, nil, &result); err != nil {
				return p.failure("repair", err)
			}
			return p.result(result, func(w io.Writer) {
				fmt.Fprintf(w, "%s repaired %s %s: %s created, %s updated, %s removed\n",
					okMark(), result.Kind, result.OwnerKey,
					count(result.Created), count(result.Updated), count(result.Removed))
			})
		},
	}
}

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "migrate <kind> <owner-key>",
		Short: "Copy an unmapped owner into the target system",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			p := opts.printer(cmd)

			path := restclient.Path("migrate", string(kind), args[1])
			if label != "" {
				path += "?" + url.Values{"label": {label}}.Encode()
			}
			var result resync.MigrateResult
			if err := client.Do(cmd.Context(), http.MethodPost, path, nil, &result); err != nil {
				return p.failure("migrate", err)
			}
			return p.result(result, func(w io.Writer) {
				fmt.Fprintf(w, "%s migrated %s %s under label %s: %s migrated, %s skipped\n",
					okMark(), result.Kind, result.OwnerKey, result.Label,
					count(result.Migrated), count(result.Skipped))
			})
		},
	}
	cmd.Flags().StringVar(&label, "label", "", "migration label (generated when empty)")
	return cmd
}

type mergeRequest struct {
	Retained string `json:"retained"`
	Removed  string `json:"removed"`
}

type mergeResponse struct {
	Retained string `json:"retained"`
	Removed  string `json:"removed"`
	Moved    int    `json:"moved"`
}

// NewMergeCommand creates the merge command.
func NewMergeCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <retained-owner-key> <removed-owner-key>",
		Short: "Re-point mappings of a merged-away owner to the retained one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := opts.client()
			if err != nil {
				return err
			}
			p := opts.printer(cmd)

			var result mergeResponse
			req := mergeRequest{Retained: args[0], Removed: args[1]}
			if err := client.Do(cmd.Context(), http.MethodPost, "/merge", req, &result); err != nil {
				return p.failure("merge", err)
			}
			return p.result(result, func(w io.Writer) {
				fmt.Fprintf(w, "%s merged %s into %s: %s mappings moved\n",
					okMark(), result.Removed, result.Retained, count(result.Moved))
			})
		},
	}
}

// NewMappingCommand groups direct mapping maintenance.
func NewMappingCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Inspect and maintain individual mappings",
	}
	cmd.AddCommand(newMappingGetCommand(opts))
	cmd.AddCommand(newMappingCreateCommand(opts))
	cmd.AddCommand(newMappingDeleteCommand(opts))
	return cmd
}

func mappingArgs(args []string) (models.EntityKind, int64, error) {
	kind, err := parseKind(args[0])
	if err != nil {
		return "", 0, err
	}
	legacyID, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || legacyID <= 0 {
		return "", 0, fmt.Errorf("legacy id %q must be a positive integer", args[1])
	}
	return kind, legacyID, nil
}

func mappingPath(kind models.EntityKind, legacyID int64) string {
	return restclient.Path("mappings", string(kind), "legacy", strconv.FormatInt(legacyID, 10))
}

func newMappingGetCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <legacy-id>",
		Short: "Show the mapping for a legacy id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, legacyID, err := mappingArgs(args)
			if err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			p := opts.printer(cmd)

			var m mapping.Mapping
			if err := client.Do(cmd.Context(), http.MethodGet, mappingPath(kind, legacyID), nil, &m); err != nil {
				return p.failure("mapping get", err)
			}
			return p.result(m, func(w io.Writer) { printMapping(w, m) })
		},
	}
}

func newMappingCreateCommand(opts *RootOptions) *cobra.Command {
	var req struct {
		Kind        string `json:"kind"`
		LegacyID    int64  `json:"legacyId"`
		TargetID    string `json:"targetId"`
		OwnerKey    string `json:"ownerKey"`
		MappingType string `json:"mappingType,omitempty"`
		Label       string `json:"label,omitempty"`
	}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Record a mapping written outside the sync service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := parseKind(req.Kind); err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			p := opts.printer(cmd)

			var m mapping.Mapping
			if err := client.Do(cmd.Context(), http.MethodPost, "/mappings", req, &m); err != nil {
				return p.failure("mapping create", err)
			}
			return p.result(m, func(w io.Writer) {
				fmt.Fprintf(w, "%s mapping created\n", okMark())
				printMapping(w, m)
			})
		},
	}
	cmd.Flags().StringVar(&req.Kind, "kind", "", "entity kind")
	cmd.Flags().Int64Var(&req.LegacyID, "legacy-id", 0, "legacy record id")
	cmd.Flags().StringVar(&req.TargetID, "target-id", "", "target record id")
	cmd.Flags().StringVar(&req.OwnerKey, "owner", "", "owner key")
	cmd.Flags().StringVar(&req.MappingType, "type", "", "mapping type (MIGRATED|NOMIS_CREATED|DPS_CREATED)")
	cmd.Flags().StringVar(&req.Label, "label", "", "migration label")
	for _, f := range []string{"kind", "legacy-id", "target-id", "owner"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func newMappingDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <legacy-id>",
		Short: "Remove the mapping for a legacy id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, legacyID, err := mappingArgs(args)
			if err != nil {
				return err
			}
			client, err := opts.client()
			if err != nil {
				return err
			}
			p := opts.printer(cmd)

			if err := client.Do(cmd.Context(), http.MethodDelete, mappingPath(kind, legacyID), nil, nil); err != nil {
				return p.failure("mapping delete", err)
			}
			deleted := map[string]any{"kind": kind, "legacyId": legacyID, "deleted": true}
			return p.result(deleted, func(w io.Writer) {
				fmt.Fprintf(w, "%s mapping %s/%d deleted\n", okMark(), kind, legacyID)
			})
		},
	}
}

func printMapping(w io.Writer, m mapping.Mapping) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(w, "%s %s/%d -> %s\n", bold("mapping"), m.Kind, m.LegacyID, m.TargetID)
	fmt.Fprintf(w, "  owner: %s\n", m.OwnerKey)
	fmt.Fprintf(w, "  type:  %s\n", m.MappingType)
	if m.Label != "" {
		fmt.Fprintf(w, "  label: %s\n", m.Label)
	}
	if !m.WhenCreated.IsZero() {
		fmt.Fprintf(w, "  created: %s\n", m.WhenCreated.UTC().Format("2006-01-02T15:04:05Z"))
	}
}

func count(n int) string {
	if n == 0 {
		return "0"
	}
	return color.New(color.FgCyan).Sprint(n)
}
