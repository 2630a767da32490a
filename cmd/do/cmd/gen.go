package cmd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// A generator turns sources under the repo into build outputs.
// fresh reports whether the outputs are newer than every source.
type generator struct {
	name  string
	argv  []string
	fresh func() bool
}

func GenCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate templ components and the tailwind stylesheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGen(cmd.Context(), force)
		},
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "regenerate even when outputs look current")
	return cmd
}

func generators() []generator {
	return []generator{
		{
			// templ is pinned as a go.mod tool, so it never needs a separate install.
			name:  "templ",
			argv:  []string{"go", "tool", "templ", "generate", "-path", "internal/ui"},
			fresh: templFresh,
		},
		{
			name:  "tailwindcss",
			argv:  []string{"tailwindcss", "-i", "assets/css/input.css", "-o", "assets/css/output.css", "--minify"},
			fresh: tailwindFresh,
		},
	}
}

func runGen(ctx context.Context, force bool) error {
	if _, err := exec.LookPath("tailwindcss"); err != nil {
		fmt.Println("tailwindcss not found; get the standalone CLI from https://tailwindcss.com/blog/standalone-cli")
		return fmt.Errorf("tailwindcss: %w", err)
	}

	start := time.Now()
	g, ctx := errgroup.WithContext(ctx)
	for _, gen := range generators() {
		g.Go(func() error {
			if !force && gen.fresh() {
				fmt.Printf("[%s] up to date\n", gen.name)
				return nil
			}

			t := time.Now()
			c := exec.CommandContext(ctx, gen.argv[0], gen.argv[1:]...)
			c.Stdout = os.Stdout
			c.Stderr = os.Stderr
			if err := c.Run(); err != nil {
				return fmt.Errorf("%s: %w", gen.name, err)
			}
			fmt.Printf("[%s] %s\n", gen.name, time.Since(t).Round(time.Millisecond))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("generated in %s\n", time.Since(start).Round(time.Millisecond))
	return nil
}

// templFresh holds when every .templ file has a newer _templ.go beside it.
func templFresh() bool {
	for _, src := range sources("internal/ui", ".templ") {
		out := strings.TrimSuffix(src, ".templ") + "_templ.go"
		if !newerThan(out, src) {
			return false
		}
	}
	return true
}

// tailwindFresh compares output.css with everything tailwind scans for class names.
func tailwindFresh() bool {
	inputs := append([]string{"assets/css/input.css"}, sources("internal/ui", ".templ", ".go")...)
	inputs = append(inputs, sources("assets/js", ".js")...)
	return newerThan("assets/css/output.css", inputs...)
}

func sources(root string, exts ...string) []string {
	var files []string
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || strings.HasSuffix(path, "_templ.go") {
			return nil
		}
		for _, ext := range exts {
			if strings.HasSuffix(path, ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})
	return files
}

// newerThan reports whether output exists and was modified after all inputs.
// Missing inputs are ignored.
func newerThan(output string, inputs ...string) bool {
	out, err := os.Stat(output)
	if err != nil {
		return false
	}
	for _, in := range inputs {
		info, err := os.Stat(in)
		if err == nil && info.ModTime().After(out.ModTime()) {
			return false
		}
	}
	return true
}
