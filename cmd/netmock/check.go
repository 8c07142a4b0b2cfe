package main

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jingkaihe/netmock/internal/errx"
	"github.com/jingkaihe/netmock/pkg/api"
	"github.com/jingkaihe/netmock/pkg/engine"
	"github.com/jingkaihe/netmock/pkg/intercept"
	"github.com/jingkaihe/netmock/pkg/netmock"
	"github.com/jingkaihe/netmock/pkg/policy"
)

type checkOptions struct {
	method      string
	allow       []string
	mockOrigins []string
	mockStatus  int
}

func newCheckCmd() *cobra.Command {
	opts := &checkOptions{}
	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Show whether a request would be mocked, passed through or blocked",
		Example: `  netmock check --disable-net-connect https://api.example.test/users
  netmock check --allow localhost,/\.internal$/ http://db.internal:5432/
  netmock check --disable-net-connect --mock-origin https://api.example.test https://api.example.test/users`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.method, "method", "X", http.MethodGet, "HTTP method of the request.")
	cmd.Flags().Bool("disable-net-connect", false, "Block every request no interceptor answers.")
	cmd.Flags().StringArrayVar(&opts.allow, "allow", nil, "Allow-list entry: host substring, /regexp/ or all (repeatable, comma-separated).")
	cmd.Flags().StringArrayVar(&opts.mockOrigins, "mock-origin", nil, "Register a persistent interceptor answering every path on this origin (repeatable).")
	cmd.Flags().IntVar(&opts.mockStatus, "mock-status", http.StatusOK, "Status code returned by --mock-origin interceptors.")

	_ = viper.BindPFlag("net_connect.disabled", cmd.Flags().Lookup("disable-net-connect"))
	return cmd
}

func runCheck(cmd *cobra.Command, rawURL string, opts *checkOptions) error {
	cfg, err := configFromViper()
	if err != nil {
		return err
	}

	allow, err := parseAllowEntries(opts.allow)
	if err != nil {
		return err
	}
	if len(allow) > 0 {
		if cfg.NetConnect == nil {
			cfg.NetConnect = &api.NetConnectConfig{}
		}
		cfg.NetConnect.Allow = append(cfg.NetConnect.Allow, allow...)
	}

	logger, err := newLogger(cfg.Logging, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	emitter := newEventEmitter(cfg.Logging, "netmock check")
	if emitter != nil {
		defer emitter.Close()
	}

	nm, err := netmock.NewInstanceFromConfig(cfg, netmock.WithLogger(logger), netmock.WithEmitter(emitter))
	if err != nil {
		return errx.Wrap(ErrLoadConfig, err)
	}
	if err := registerMockOrigins(nm, opts); err != nil {
		return err
	}

	req, err := buildRequest(opts.method, rawURL)
	if err != nil {
		return err
	}

	v := nm.Decide(req)
	return printVerdict(cmd.OutOrStdout(), nm, v)
}

func registerMockOrigins(nm *netmock.Instance, opts *checkOptions) error {
	for _, origin := range opts.mockOrigins {
		scope, err := nm.New(origin)
		if err != nil {
			return errx.Wrap(ErrInvalidMockHost, err)
		}
		_, err = scope.Intercept(opts.method, intercept.AnyPath()).AnyQuery().Persist().Reply(opts.mockStatus, "", nil)
		if err != nil {
			return errx.Wrap(ErrInvalidMockHost, err)
		}
	}
	return nil
}

func buildRequest(method, rawURL string) (*api.Request, error) {
	httpReq, err := http.NewRequest(method, rawURL, nil)
	if err != nil {
		return nil, errx.Wrap(ErrInvalidURL, err)
	}
	req, err := api.FromHTTPRequest(httpReq)
	if err != nil {
		return nil, errx.Wrap(ErrInvalidURL, err)
	}
	return req, nil
}

func printVerdict(w io.Writer, nm *netmock.Instance, v engine.Verdict) error {
	switch v.Action {
	case engine.ActionMocked:
		status := 0
		if v.Response != nil {
			status = v.Response.StatusCode
		}
		_, _ = fmt.Fprintf(w, "mocked: %s -> %d (interceptor %s)\n", v.Request, status, v.Interceptor.ID())
	case engine.ActionPassthrough:
		reason := "net connect enabled"
		if entry, ok := nm.Policy().Match(v.Request.Host()); ok && entry.IsValid() {
			reason = "allowed by " + entry.String()
		}
		_, _ = fmt.Fprintf(w, "passthrough: %s (%s)\n", v.Request, reason)
	default:
		_, _ = fmt.Fprintf(w, "blocked: %v\n", v.Err)
		return errx.Wrap(ErrRequestBlocked, v.Err)
	}
	return nil
}

// parseAllowEntries splits comma-separated flag values, drops blanks and
// duplicates, and checks each entry parses. A value wrapped in slashes is a
// single regular expression and is not split.
func parseAllowEntries(parts []string) ([]string, error) {
	entries := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, part := range parts {
		tokens := strings.Split(part, ",")
		if p := strings.TrimSpace(part); len(p) >= 2 && strings.HasPrefix(p, "/") && strings.HasSuffix(p, "/") {
			tokens = []string{p}
		}
		for _, token := range tokens {
			entry := strings.TrimSpace(token)
			if entry == "" {
				continue
			}
			if _, ok := seen[entry]; ok {
				continue
			}
			if _, err := policy.ParseEntry(entry); err != nil {
				return nil, errx.Wrap(ErrInvalidAllowHost, err)
			}
			entries = append(entries, entry)
			seen[entry] = struct{}{}
		}
	}
	return entries, nil
}
