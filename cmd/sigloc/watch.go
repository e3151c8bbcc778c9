package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/phyten/sigloc/internal/config"
	"github.com/phyten/sigloc/internal/engine"
	"github.com/phyten/sigloc/internal/watch"
)

func (a *app) newWatchCommand() *cobra.Command {
	var (
		ef       engineFlags
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch [dir]",
		Short: "Re-classify files as they change and print one JSON line per change",
		Args:  args(cobra.MaximumNArgs(1)),
		RunE: func(cmd *cobra.Command, argv []string) error {
			if debounce <= 0 {
				return usageErrorf("--debounce must be positive")
			}
			layer := ef.layer(cmd.Flags())
			repo := ef.repo
			if len(argv) == 1 {
				repo = argv[0]
				layer.Repo = &repo
			}
			s, err := a.loadSettings(repo, layer, config.UIConfig{})
			if err != nil {
				return err
			}
			opts, err := a.engineOptions(s)
			if err != nil {
				return err
			}
			opts.Progress = false
			eng, err := engine.New(opts)
			if err != nil {
				return err
			}
			w, err := watch.New(eng, a.stdout, watch.Options{Debounce: debounce, Logger: a.log})
			if err != nil {
				return err
			}
			return w.Run(cmd.Context())
		},
	}
	ef.register(cmd.Flags())
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a changed file is re-classified")
	return cmd
}
