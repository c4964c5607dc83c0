package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// call sends one request to the gateway admin API and decodes the JSON reply
func (o *options) call(ctx context.Context, method, path string, query url.Values, body interface{}) (interface{}, error) {
	endpoint := strings.TrimSuffix(o.gateway, "/") + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway unreachable: %w", err)
	}
	defer resp.Body.Close()

	var out interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode gateway response: %w", err)
	}
	if resp.StatusCode >= 400 {
		if m, ok := out.(map[string]interface{}); ok {
			if msg, ok := m["error"].(string); ok {
				return nil, fmt.Errorf("gateway returned %d: %s", resp.StatusCode, msg)
			}
		}
		return nil, fmt.Errorf("gateway returned %d", resp.StatusCode)
	}
	return out, nil
}

func newInvalidateCmd(opts *options) *cobra.Command {
	var (
		entity string
		key    string
	)
	cmd := &cobra.Command{
		Use:   "invalidate",
		Short: "Mark cached queries stale on a running gateway",
		Long: `Invalidate an entity namespace or an explicit key prefix. Peer
gateways are told through the event bus.

  limsctl invalidate --entity accession
  limsctl invalidate --key accession:detail:A1`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (entity == "") == (key == "") {
				return fmt.Errorf("exactly one of --entity or --key is required")
			}
			body := map[string]interface{}{}
			if entity != "" {
				if _, err := parseEntity(entity); err != nil {
					return err
				}
				body["entity"] = entity
			} else {
				body["key"] = strings.Split(strings.TrimSuffix(key, ":"), ":")
			}
			out, err := opts.call(cmd.Context(), http.MethodPost, "/api/admin/invalidate", nil, body)
			if err != nil {
				return err
			}
			return opts.print(out)
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "Entity whose whole namespace is invalidated")
	cmd.Flags().StringVar(&key, "key", "", "Colon-separated key prefix, e.g. accession:detail:A1")
	return cmd
}

func newCacheCmd(opts *options) *cobra.Command {
	var entity string
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "List cached query entries on a running gateway",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if entity != "" {
				if _, err := parseEntity(entity); err != nil {
					return err
				}
				query.Set("entity", entity)
			}
			out, err := opts.call(cmd.Context(), http.MethodGet, "/api/admin/cache", query, nil)
			if err != nil {
				return err
			}
			return opts.print(out)
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "Only list entries of this entity")
	return cmd
}

func newMutationsCmd(opts *options) *cobra.Command {
	var (
		entity   string
		recordID string
		limit    int
		since    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mutations",
		Short: "Show the gateway's mutation journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			query := url.Values{}
			if entity != "" {
				query.Set("entity", entity)
			}
			if recordID != "" {
				query.Set("recordId", recordID)
			}
			if limit > 0 {
				query.Set("limit", strconv.Itoa(limit))
			}
			if since > 0 {
				query.Set("since", time.Now().Add(-since).UTC().Format(time.RFC3339))
			}
			out, err := opts.call(cmd.Context(), http.MethodGet, "/api/admin/mutations", query, nil)
			if err != nil {
				return err
			}
			return opts.print(out)
		},
	}
	cmd.Flags().StringVar(&entity, "entity", "", "Filter by entity")
	cmd.Flags().StringVar(&recordID, "record-id", "", "Filter by record id")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records to show")
	cmd.Flags().DurationVar(&since, "since", 0, "Only show mutations newer than this, e.g. 1h")
	return cmd
}
