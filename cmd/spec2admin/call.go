package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/mdwit/spec2admin/internal/resource"
)

func newCallCmd() *cobra.Command {
	var (
		params map[string]string
		query  map[string]string
		body   string
		ids    []string
		source string
	)

	cmd := &cobra.Command{
		Use:   "call <group> <action>",
		Short: "Call the API operation behind a resource",
		Long: `call builds the API path of a resource descriptor and performs the request
against the base URL. With --id the call is repeated for every identifier
concurrently; the command fails if any of the calls fails.`,
		Example: `  spec2admin call -c spec2admin.toml posts read --param id=5
  spec2admin call -s openapi.yaml posts list --query author=3
  spec2admin call posts delete --id 1 --id 2 --id 3`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			action, err := resource.ParseActionType(args[1])
			if err != nil {
				return err
			}

			var sourceArgs []string
			if source != "" {
				sourceArgs = []string{source}
			}
			env, err := setup(sourceArgs)
			if err != nil {
				return err
			}

			transport := resource.NewHTTPTransport(env.cfg.BaseURL)
			res, err := env.compile(cmd.Context(), transport)
			if err != nil {
				return err
			}
			if transport.BaseURL == "" {
				transport.BaseURL = res.BaseURL
			}

			d, err := res.Registry.Resource(args[0], action)
			if err != nil {
				return err
			}

			base := resource.CallParams{
				Params: toValues(params),
				Query:  toValues(query),
			}
			if body != "" {
				if err := json.Unmarshal([]byte(body), &base.Body); err != nil {
					return fmt.Errorf("invalid --body: %w", err)
				}
			}

			calls := []resource.Invocation{{Descriptor: d, Params: base}}
			if len(ids) > 0 {
				calls = calls[:0]
				for _, id := range ids {
					p := base
					p.Params = make(resource.Values, len(base.Params)+1)
					for k, v := range base.Params {
						p.Params[k] = v
					}
					p.Params[d.IDProperty()] = id
					calls = append(calls, resource.Invocation{Descriptor: d, Params: p})
				}
			}

			responses, err := resource.CallAll(cmd.Context(), calls...)
			return errors.Join(err, writeResponses(cmd.OutOrStdout(), responses))
		},
	}

	cmd.Flags().StringToStringVar(&params, "param", nil, "path parameter name=value")
	cmd.Flags().StringToStringVar(&query, "query", nil, "query parameter name=value")
	cmd.Flags().StringVar(&body, "body", "", "JSON request body")
	cmd.Flags().StringVarP(&source, "source", "s", "", "OpenAPI document file or URL")
	cmd.Flags().StringSliceVar(&ids, "id", nil, "identifier; repeat to call for several items")
	return cmd
}

// writeResponses печатает статус и тело каждого ответа. Тело, которое не
// удалось сериализовать, дает ошибку; остальные ответы все равно печатаются.
func writeResponses(w io.Writer, responses []*resource.Response) error {
	var errs []error
	for i, resp := range responses {
		if resp == nil {
			continue
		}
		data, err := json.MarshalIndent(resp.Data, "", "  ")
		if err != nil {
			errs = append(errs, fmt.Errorf("response %d: failed to encode body: %w", i, err))
			fmt.Fprintf(w, "%d <unencodable body>\n", resp.Status)
			continue
		}
		fmt.Fprintf(w, "%d %s\n", resp.Status, data)
	}
	return errors.Join(errs...)
}

func toValues(m map[string]string) resource.Values {
	if len(m) == 0 {
		return nil
	}
	v := make(resource.Values, len(m))
	for k, s := range m {
		v[k] = s
	}
	return v
}
