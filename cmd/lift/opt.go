package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"lift/internal/bitcode"
	"lift/internal/diag"
	"lift/internal/ir"
	"lift/internal/irparse"
	"lift/internal/licm"
	"lift/internal/observ"
)

var optCmd = &cobra.Command{
	Use:   "opt [flags] <input> <output>",
	Short: "Optimize a program",
	Long:  "Read a program, run loop-invariant code motion, and write the result plus a <output>.stats counter file.",
	Args:  cobra.ExactArgs(2),
	RunE:  optExecution,
}

func init() {
	optCmd.Flags().Bool("no-licm", false, "do not perform the LICM optimization")
	optCmd.Flags().Bool("no-verify", false, "do not check the optimized program for validity")
	optCmd.Flags().Bool("no-stats", false, "do not write the .stats counter file")
	optCmd.Flags().Bool("emit-ir", false, "write textual IR instead of binary")
	optCmd.Flags().BoolP("verbose", "v", false, "print the counter table")
}

// optOptions is the merged view of lift.toml defaults and flags;
// explicitly set flags win.
type optOptions struct {
	noLICM   bool
	noVerify bool
	noStats  bool
	emitIR   bool
	verbose  bool
}

func readOptOptions(cmd *cobra.Command) (optOptions, error) {
	var opts optOptions
	if manifest, found, err := loadToolManifest("."); err != nil {
		return opts, err
	} else if found {
		opts.noLICM = manifest.Config.Opt.NoLICM
		opts.noVerify = manifest.Config.Opt.NoVerify
		opts.noStats = manifest.Config.Opt.NoStats
		opts.emitIR = manifest.Config.Opt.EmitIR
	}
	for flag, dst := range map[string]*bool{
		"no-licm":   &opts.noLICM,
		"no-verify": &opts.noVerify,
		"no-stats":  &opts.noStats,
		"emit-ir":   &opts.emitIR,
		"verbose":   &opts.verbose,
	} {
		value, err := cmd.Flags().GetBool(flag)
		if err != nil {
			return opts, err
		}
		if cmd.Flags().Changed(flag) {
			*dst = value
		}
	}
	return opts, nil
}

func optExecution(cmd *cobra.Command, args []string) error {
	opts, err := readOptOptions(cmd)
	if err != nil {
		return err
	}
	colorValue, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	mode, err := readColorMode(colorValue)
	if err != nil {
		return err
	}
	timings, err := cmd.Flags().GetBool("timings")
	if err != nil {
		return err
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max-diagnostics")
	if err != nil {
		return err
	}

	input, output := args[0], args[1]
	timer := observ.NewTimer()

	phase := timer.Begin("parse")
	m, err := readProgram(input, maxDiagnostics, mode)
	if err != nil {
		return err
	}
	timer.End(phase, input)

	pass := licm.New()
	if !opts.noLICM {
		phase = timer.Begin("licm")
		pass.Run(m)
		timer.End(phase, "")
	}

	pass.Summarize(m)

	if !opts.noStats {
		if err := writeStatsFile(output+".stats", pass); err != nil {
			return err
		}
	}
	if opts.verbose {
		printStatsTable(cmd.ErrOrStderr(), pass)
	}

	if !opts.noVerify {
		phase = timer.Begin("verify")
		if err := ir.Verify(m); err != nil {
			return fmt.Errorf("optimized program failed verification: %w", err)
		}
		timer.End(phase, "")
	}

	phase = timer.Begin("emit")
	if err := writeProgram(output, m, opts.emitIR); err != nil {
		return err
	}
	timer.End(phase, output)

	if timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	return nil
}

// readProgram loads either a binary artifact (.lbc) or textual IR.
func readProgram(path string, maxDiagnostics int, mode colorMode) (*ir.Module, error) {
	if strings.HasSuffix(path, ".lbc") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return bitcode.Decode(f)
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	bag := diag.NewBag(maxDiagnostics)
	m, ok := irparse.ParseModule(path, string(src), bag)
	if !ok {
		diag.Print(os.Stderr, bag, shouldColorize(mode))
		return nil, fmt.Errorf("%s: %d parse error(s)", path, bag.Len())
	}
	return m, nil
}

// writeProgram writes the module atomically: a temp file in the
// target directory, then rename.
func writeProgram(path string, m *ir.Module, emitIR bool) error {
	dir := filepath.Dir(path)
	f, err := os.CreateTemp(dir, "lift-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if emitIR {
		err = ir.DumpModule(f, m)
	} else {
		err = bitcode.Encode(f, m)
	}
	if err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

func writeStatsFile(path string, pass *licm.Pass) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := pass.Stats.WriteCSV(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
