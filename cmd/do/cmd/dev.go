package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

func DevCmd() *cobra.Command {
	var proxyPort, appPort int
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Serve with live reload through air",
		Long: "Regenerates templ components and css, rebuilds the server and restarts it on every change.\n" +
			"The browser talks to the air proxy, which reloads the page after each restart.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDev(proxyPort, appPort)
		},
	}
	cmd.Flags().IntVar(&proxyPort, "port", 8080, "port of the live-reload proxy")
	cmd.Flags().IntVar(&appPort, "app-port", 8090, "port the server listens on behind the proxy")
	return cmd
}

// watch lists what air rebuilds on. Generated and test files are left out so
// a `do gen` inside the build does not trigger another build.
var watch = struct {
	ext, skipDirs, skipFiles []string
}{
	ext:       []string{"go", "templ", "css", "js", "md", "sql"},
	skipDirs:  []string{"bin", "tmp", "data", "node_modules", "_examples"},
	skipFiles: []string{`_templ\.go$`, `_test\.go$`, `output\.css$`},
}

func runDev(proxyPort, appPort int) error {
	air, err := exec.LookPath("air")
	if err != nil {
		return errors.New("air not found: go install github.com/air-verse/air@latest")
	}

	// air runs `bin/do gen` before each server build.
	fmt.Println("building bin/do")
	build := exec.Command("go", "build", "-o", "bin/do", "./cmd/do")
	build.Stdout, build.Stderr = os.Stdout, os.Stderr
	if err := build.Run(); err != nil {
		return fmt.Errorf("build bin/do: %w", err)
	}

	args := []string{
		"air", "-c", "/dev/null", "-root", ".",
		"-build.cmd", "./bin/do gen && go build -o ./tmp/server ./cmd/server",
		"-build.bin", "./tmp/server",
		"-build.delay", "100",
		"-build.include_ext", strings.Join(watch.ext, ","),
		"-build.exclude_dir", strings.Join(watch.skipDirs, ","),
		"-build.exclude_regex", strings.Join(watch.skipFiles, "|"),
		"-build.send_interrupt", "true",
		"-build.kill_delay", "500ms",
		"-proxy.enabled", "true",
		"-proxy.proxy_port", strconv.Itoa(proxyPort),
		"-proxy.app_port", strconv.Itoa(appPort),
	}
	env := append(os.Environ(), "PORT="+strconv.Itoa(appPort))
	return syscall.Exec(air, args, env)
}
