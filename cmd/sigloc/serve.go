package main

import (
	"fmt"
	"net"
	"path/filepath"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"

	"github.com/phyten/sigloc/internal/config"
	"github.com/phyten/sigloc/internal/server"
)

func (a *app) newServeCommand() *cobra.Command {
	var (
		ef      engineFlags
		port    int
		host    string
		open    bool
		maxBody int64
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classify API, repository scans and the web UI",
		Args:  args(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if port < 0 || port > 65535 {
				return usageErrorf("invalid port: %d", port)
			}
			s, err := a.loadSettings(ef.repo, ef.layer(cmd.Flags()), config.UIConfig{})
			if err != nil {
				return err
			}
			defaults, err := a.engineOptions(s)
			if err != nil {
				return err
			}
			srv := server.New(server.Config{
				Defaults:     defaults,
				Registry:     s.Registry,
				Logger:       a.log,
				MaxBodyBytes: maxBody,
			})

			repoAbs, _ := filepath.Abs(defaults.RepoDir)
			ready := make(chan string, 1)
			go func() {
				addr, ok := <-ready
				if !ok {
					return
				}
				url := "http://" + browsableAddr(addr) + "/"
				fmt.Fprintf(a.stderr, "sigloc serve listening on %s (repo=%s, config=%s)\n", url, repoAbs, describeConfig(s))
				if open {
					browser.Stdout = a.stderr
					if err := browser.OpenURL(url); err != nil {
						a.log.Warn("failed to open browser", "url", url, "err", err)
					}
				}
			}()
			err = srv.ListenAndServe(cmd.Context(), net.JoinHostPort(host, fmt.Sprint(port)), ready)
			close(ready)
			return err
		},
	}
	fs := cmd.Flags()
	ef.register(fs)
	fs.IntVarP(&port, "port", "p", 8080, "port")
	fs.StringVar(&host, "host", "", "listen address (default: all interfaces)")
	fs.BoolVar(&open, "open", false, "open the web UI in a browser")
	fs.Int64Var(&maxBody, "max-body-bytes", server.DefaultMaxBodyBytes, "reject /api/classify bodies larger than this")
	return cmd
}

// browsableAddr はワイルドカードの待ち受けアドレスを localhost に置き換えます。
func browsableAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	switch host {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}
