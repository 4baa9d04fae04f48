package main

import (
	"context"

	"github.com/spf13/cobra"

	"storyreel/internal/pipeline"
)

type stageSpec struct {
	use   string
	short string
	run   func(*pipeline.Runner, context.Context) error
}

func newStageCommands(ctx *commandContext) []*cobra.Command {
	specs := []stageSpec{
		{"analyze", "Extract and normalize scenes from the project script",
			(*pipeline.Runner).Analyze},
		{"enrich", "Add narration, duration estimates, and voice styles to scenes",
			(*pipeline.Runner).Enrich},
		{"audio", "Synthesize narration audio and measure real durations",
			(*pipeline.Runner).Audio},
		{"images", "Generate key art for scenes that do not have one yet",
			(*pipeline.Runner).Images},
		{"subtitles", "Build the SRT cue timeline from measured durations",
			(*pipeline.Runner).Subtitles},
		{"render", "Render per-scene clips with animated effects",
			(*pipeline.Runner).Render},
		{"stitch", "Concatenate scene clips into the final subtitled video",
			(*pipeline.Runner).Stitch},
	}

	commands := make([]*cobra.Command, 0, len(specs))
	for _, spec := range specs {
		commands = append(commands, newStageCommand(ctx, spec))
	}
	return commands
}

func newStageCommand(cmdCtx *commandContext, spec stageSpec) *cobra.Command {
	return &cobra.Command{
		Use:   spec.use,
		Short: spec.short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			runner, err := newRunner(cmdCtx)
			if err != nil {
				return err
			}
			return spec.run(runner, cmd.Context())
		},
	}
}

func newRunner(cmdCtx *commandContext) (*pipeline.Runner, error) {
	cfg, err := cmdCtx.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := cmdCtx.ensureLogger()
	if err != nil {
		return nil, err
	}
	return pipeline.New(cfg, logger), nil
}
