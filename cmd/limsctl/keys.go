package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zatekoja/limsgateway/internal/application/services"
	"github.com/zatekoja/limsgateway/internal/domain/entities"
	"github.com/zatekoja/limsgateway/internal/query/keys"
)

type keyView struct {
	Key     string   `json:"key" yaml:"key"`
	Tokens  []string `json:"tokens" yaml:"tokens"`
	Pattern string   `json:"pattern" yaml:"pattern"`
}

func newKeyView(k keys.Key) keyView {
	return keyView{Key: k.String(), Tokens: []string(k), Pattern: k.Pattern()}
}

type planView struct {
	Entity     entities.Entity `json:"entity" yaml:"entity"`
	Action     string          `json:"action" yaml:"action"`
	RecordID   string          `json:"recordId,omitempty" yaml:"recordId,omitempty"`
	Roots      []keyView       `json:"roots" yaml:"roots"`
	Incomplete string          `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`
}

func parseEntity(raw string) (entities.Entity, error) {
	e := entities.Entity(raw)
	if !e.Valid() {
		names := make([]string, len(entities.AllEntities))
		for i, known := range entities.AllEntities {
			names[i] = string(known)
		}
		return "", fmt.Errorf("unknown entity %q (known: %s)", raw, strings.Join(names, ", "))
	}
	return e, nil
}

func newKeyCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "key <entity> <all|lists|detail|for-edit|by-parent> [id]",
		Short: "Print the query key of an entity scope",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			var id string
			if len(args) == 3 {
				id = args[2]
			}

			var k keys.Key
			switch args[1] {
			case "all":
				k = keys.All(e)
			case "lists":
				k = keys.Lists(e)
			case "detail":
				k, err = keys.Detail(e, id)
			case "for-edit":
				k, err = keys.ForEdit(e, id)
			case "by-parent":
				k, err = keys.ByParent(e, id)
			default:
				return fmt.Errorf("unknown scope %q", args[1])
			}
			if err != nil {
				return err
			}
			return opts.print(newKeyView(k))
		},
	}
}

func newPlanCmd(opts *options) *cobra.Command {
	var (
		recordID string
		parents  []string
	)
	cmd := &cobra.Command{
		Use:   "plan <entity> <create|update|delete|status-change>",
		Short: "Show the keys a successful mutation would invalidate",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := parseEntity(args[0])
			if err != nil {
				return err
			}
			action := entities.MutationAction(args[1])
			switch action {
			case entities.MutationActionCreate, entities.MutationActionUpdate,
				entities.MutationActionDelete, entities.MutationActionStatusChange:
			default:
				return fmt.Errorf("unknown action %q", args[1])
			}

			m := services.Mutation{Entity: e, Action: action, Operation: "limsctl-plan", RecordID: recordID}
			for _, raw := range parents {
				ref, err := parseParent(raw)
				if err != nil {
					return err
				}
				m.Parents = append(m.Parents, ref)
			}

			roots, planErr := services.Plan(m)
			view := planView{Entity: e, Action: string(action), RecordID: recordID, Roots: make([]keyView, len(roots))}
			for i, r := range roots {
				view.Roots[i] = newKeyView(r)
			}
			if planErr != nil {
				view.Incomplete = planErr.Error()
			}
			return opts.print(view)
		},
	}
	cmd.Flags().StringVar(&recordID, "id", "", "Id of the mutated record")
	cmd.Flags().StringArrayVar(&parents, "parent", nil, "Parent record as entity:id (repeatable)")
	return cmd
}

func parseParent(raw string) (services.ParentRef, error) {
	name, id, ok := strings.Cut(raw, ":")
	if !ok || id == "" {
		return services.ParentRef{}, fmt.Errorf("parent %q must be entity:id", raw)
	}
	e, err := parseEntity(name)
	if err != nil {
		return services.ParentRef{}, err
	}
	return services.ParentRef{Entity: e, ID: id}, nil
}
