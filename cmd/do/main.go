// Command do bundles the developer and operator tasks: live reload,
// code generation, migrations and admin management.
package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/voceapacientilor/vocea/cmd/do/cmd"
)

func main() {
	if err := rebuildIfStale(); err != nil {
		fmt.Fprintln(os.Stderr, "do: stale binary kept:", err)
	}

	root := &cobra.Command{
		Use:          "do",
		Short:        "Development and operator tools for Vocea Pacienților",
		SilenceUsage: true,
	}
	root.AddCommand(cmd.DevCmd(), cmd.GenCmd(), cmd.MigrateCmd(), cmd.AdminCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// rebuildIfStale recompiles bin/do when its own sources changed since the
// binary was built, then replaces the running process with the new build.
// Binaries outside bin/ (go run, installed copies) are left alone.
func rebuildIfStale() error {
	exe, err := os.Executable()
	if err != nil || filepath.Base(filepath.Dir(exe)) != "bin" || filepath.Base(exe) != "do" {
		return nil
	}
	info, err := os.Stat(exe)
	if err != nil {
		return nil
	}
	if !newestGoFile("cmd/do").After(info.ModTime()) {
		return nil
	}

	fmt.Println("bin/do is older than cmd/do, rebuilding")
	build := exec.Command("go", "build", "-o", exe, "./cmd/do")
	build.Stdout, build.Stderr = os.Stdout, os.Stderr
	if err := build.Run(); err != nil {
		return err
	}
	return syscall.Exec(exe, os.Args, os.Environ())
}

func newestGoFile(dir string) time.Time {
	var newest time.Time
	_ = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		if info, err := d.Info(); err == nil && info.ModTime().After(newest) {
			newest = info.ModTime()
		}
		return nil
	})
	return newest
}
