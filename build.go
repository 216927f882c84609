//go:build ignore

// build.go - descstats build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: all, purestats, framestats, columnarstats, plots, statsweb, test, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

const module = "descstats"

var (
	distDir = "dist"

	// binaries lists every command under cmd/
	binaries = []string{"purestats", "framestats", "columnarstats", "plots", "statsweb"}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func main() {
	target := flag.String("target", "all", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	if runtime.GOOS == "windows" {
		colorReset, colorRed, colorGreen, colorYellow, colorCyan = "", "", "", "", ""
	}

	printHeader()
	startTime := time.Now()

	switch *target {
	case "all":
		for _, name := range binaries {
			buildBinary(name, *verbose)
		}
	case "test":
		runTests(*verbose)
	case "clean":
		clean()
	default:
		if !isBinary(*target) {
			showHelp()
			os.Exit(1)
		}
		buildBinary(*target, *verbose)
	}

	printSuccess(fmt.Sprintf("Build completed in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Printf("%s==> %s build (%s/%s)%s\n", colorCyan, module, runtime.GOOS, runtime.GOARCH, colorReset)
}

func printInfo(msg string)    { fmt.Printf("%s[INFO]%s %s\n", colorCyan, colorReset, msg) }
func printSuccess(msg string) { fmt.Printf("%s[OK]%s %s\n", colorGreen, colorReset, msg) }
func printError(msg string)   { fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg) }
func printWarning(msg string) { fmt.Printf("%s[WARN]%s %s\n", colorYellow, colorReset, msg) }

func isBinary(name string) bool {
	for _, b := range binaries {
		if b == name {
			return true
		}
	}
	return false
}

// buildBinary stamps the build time and commit into pkg/contracts.
func buildBinary(name string, verbose bool) {
	printInfo(fmt.Sprintf("Building %s...", name))

	if err := os.MkdirAll(distDir, 0755); err != nil {
		printError(fmt.Sprintf("Failed to create %s: %v", distDir, err))
		os.Exit(1)
	}

	exe := name
	if runtime.GOOS == "windows" {
		exe += ".exe"
	}
	outputPath := filepath.Join(distDir, exe)

	ldflags := fmt.Sprintf("-s -w -X %s/pkg/contracts.BuildTime=%s -X %s/pkg/contracts.GitCommit=%s",
		module, time.Now().UTC().Format(time.RFC3339), module, gitCommit())

	args := []string{"build"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "-ldflags", ldflags, "-o", outputPath, "./cmd/"+name)

	cmd := exec.Command("go", args...)
	cmd.Stderr = os.Stderr
	if verbose {
		fmt.Printf("go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", exe, float64(info.Size())/1024/1024))
	}
}

func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		printWarning("git commit unavailable, stamping 'unknown'")
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func runTests(verbose bool) {
	printInfo("Running Go tests...")
	args := []string{"test", "-race"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "./...")

	cmd := exec.Command("go", args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean() {
	printInfo(fmt.Sprintf("Removing %s/", distDir))
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean: %v", err))
		os.Exit(1)
	}
}

func showHelp() {
	targets := append([]string{"all", "test", "clean"}, binaries...)
	sort.Strings(targets[3:])
	fmt.Println("Usage: go run build.go -target=TARGET [-v]")
	fmt.Printf("Targets: %s\n", strings.Join(targets, ", "))
}
