package main

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"lift/internal/diag"
	"lift/internal/ir"
	"lift/internal/irparse"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <dir>",
	Short: "Parse and verify every .lir file under a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  checkExecution,
}

func init() {
	checkCmd.Flags().Int("jobs", 0, "max parallel files (0 = number of CPUs)")
}

type checkResult struct {
	path string
	bag  *diag.Bag
	err  error
}

func checkExecution(cmd *cobra.Command, args []string) error {
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return err
	}
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}
	maxDiagnostics, err := cmd.Flags().GetInt("max-diagnostics")
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

	files, err := listIRFiles(args[0])
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no .lir files under %s", args[0])
	}

	var (
		g       errgroup.Group
		mu      sync.Mutex
		results []checkResult
	)
	g.SetLimit(jobs)
	for _, path := range files {
		path := path
		g.Go(func() error {
			res := checkFile(path, maxDiagnostics)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	sort.Slice(results, func(i, j int) bool { return results[i].path < results[j].path })

	bad := 0
	for _, res := range results {
		if res.bag != nil && res.bag.Len() > 0 {
			diag.Print(os.Stderr, res.bag, shouldColorize(mode))
		}
		if res.err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", res.path, res.err)
		}
		if res.err != nil || (res.bag != nil && res.bag.HasErrors()) {
			bad++
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "checked %d file(s), %d with errors\n", len(results), bad)
	if bad > 0 {
		return fmt.Errorf("%d file(s) failed", bad)
	}
	return nil
}

// listIRFiles returns the sorted list of .lir files under dir.
func listIRFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ".lir") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func checkFile(path string, maxDiagnostics int) checkResult {
	res := checkResult{path: path, bag: diag.NewBag(maxDiagnostics)}
	src, err := os.ReadFile(path)
	if err != nil {
		res.err = err
		return res
	}
	m, ok := irparse.ParseModule(path, string(src), res.bag)
	if !ok {
		return res
	}
	res.err = ir.Verify(m)
	return res
}
