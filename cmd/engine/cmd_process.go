package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"unifold/internal/config"
	"unifold/internal/pipeline"
	"unifold/internal/vfile"
)

var processCmd = &cobra.Command{
	Use:   "process [file ...]",
	Short: "Process files (or stdin) through the preset processor and print the result",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.PresetYml == "" {
			return fmt.Errorf("--preset is required")
		}
		spec, _, err := config.LoadPresetSpec(cfg.PresetYml)
		if err != nil {
			return err
		}
		p, err := pipeline.NewProcessor(cfg.PresetYml, spec)
		if err != nil {
			return err
		}

		files, err := readInputs(cmd.InOrStdin(), args)
		if err != nil {
			return err
		}
		out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
		failed := 0
		for _, f := range files {
			res, err := p.Process(cmd.Context(), f)
			if err != nil {
				failed++
				fmt.Fprintf(errOut, "%s: %v\n", f.Path, err)
				continue
			}
			fmt.Fprint(errOut, res.Report())
			if res.Result != nil && len(res.Value) == 0 {
				fmt.Fprintln(out, res.Result)
				continue
			}
			fmt.Fprintln(out, res.String())
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed", failed, len(files))
		}
		return nil
	},
}

func readInputs(stdin io.Reader, paths []string) ([]*vfile.File, error) {
	if len(paths) == 0 {
		b, err := io.ReadAll(stdin)
		if err != nil {
			return nil, err
		}
		f, err := vfile.New(vfile.Options{Path: "<stdin>", Value: b})
		return []*vfile.File{f}, err
	}
	out := make([]*vfile.File, 0, len(paths))
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		f, err := vfile.New(vfile.Options{Path: path, Value: b})
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
