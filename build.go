//go:build ignore

// build.go - BhavCopy Parser build script
// Usage: go run build.go [-target=TARGET] [-v]
// Targets: build, test, release, clean

package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

const (
	module  = "github.com/BasioMeusPuga/BhavCopyParser"
	command = "bhavcopy"
)

var (
	rootDir string
	distDir string

	// Release platforms as GOOS/GOARCH
	releaseTargets = []string{"linux/amd64", "linux/arm64", "darwin/arm64", "windows/amd64"}

	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

func init() {
	cwd, err := os.Getwd()
	if err != nil {
		panic(fmt.Sprintf("Failed to get current directory: %v", err))
	}
	if _, err := os.Stat(filepath.Join(cwd, "go.mod")); err != nil {
		panic(fmt.Sprintf("go.mod not found in %s, run the build from the repository root", cwd))
	}
	rootDir = cwd
	distDir = filepath.Join(rootDir, "dist")
}

func main() {
	target := flag.String("target", "build", "Build target")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	printHeader()
	startTime := time.Now()

	switch *target {
	case "build":
		build(runtime.GOOS, runtime.GOARCH, *verbose)
	case "test":
		runTests(*verbose)
	case "release":
		for _, t := range releaseTargets {
			goos, goarch, _ := strings.Cut(t, "/")
			build(goos, goarch, *verbose)
		}
	case "clean":
		clean()
	default:
		showHelp()
		os.Exit(1)
	}

	printSuccess(fmt.Sprintf("Done in %s", time.Since(startTime).Round(time.Millisecond)))
}

func printHeader() {
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println(colorCyan + "     BhavCopy Parser - Build System        " + colorReset)
	fmt.Println(colorCyan + "===========================================" + colorReset)
	fmt.Println()
}

func printInfo(msg string) {
	fmt.Printf("%s[INFO]%s %s\n", colorBlue, colorReset, msg)
}

func printSuccess(msg string) {
	fmt.Printf("%s[SUCCESS]%s %s\n", colorGreen, colorReset, msg)
}

func printError(msg string) {
	fmt.Printf("%s[ERROR]%s %s\n", colorRed, colorReset, msg)
}

// build compiles cmd/bhavcopy for one platform into dist/.
func build(goos, goarch string, verbose bool) {
	name := command
	if goos == "windows" {
		name += ".exe"
	}
	if goos != runtime.GOOS || goarch != runtime.GOARCH {
		name = fmt.Sprintf("%s-%s-%s", command, goos, goarch)
		if goos == "windows" {
			name += ".exe"
		}
	}
	outputPath := filepath.Join(distDir, name)
	printInfo(fmt.Sprintf("Building %s...", name))

	ldflags := fmt.Sprintf("-s -w -X %[1]s/pkg/contracts.BuildTime=%[2]s -X %[1]s/pkg/contracts.GitCommit=%[3]s",
		module, time.Now().UTC().Format(time.RFC3339), gitCommit())

	args := []string{"build"}
	if verbose {
		args = append(args, "-v")
	}
	args = append(args, "-ldflags", ldflags, "-o", outputPath, "./cmd/"+command)

	cmd := exec.Command("go", args...)
	cmd.Dir = rootDir
	cmd.Env = append(os.Environ(), "GOOS="+goos, "GOARCH="+goarch, "CGO_ENABLED=0")
	cmd.Stderr = os.Stderr
	if verbose {
		fmt.Printf("Running: go %s\n", strings.Join(args, " "))
		cmd.Stdout = os.Stdout
	}

	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Failed to build %s: %v", name, err))
		os.Exit(1)
	}

	if info, err := os.Stat(outputPath); err == nil {
		printSuccess(fmt.Sprintf("Built %s (%.1f MB)", name, float64(info.Size())/1024/1024))
	}
}

// gitCommit returns the short HEAD hash, or "unknown" outside a checkout.
func gitCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
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
	cmd.Dir = rootDir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		printError(fmt.Sprintf("Go tests failed: %v", err))
		os.Exit(1)
	}
	printSuccess("All tests passed")
}

func clean() {
	printInfo("Cleaning build artifacts...")
	if err := os.RemoveAll(distDir); err != nil {
		printError(fmt.Sprintf("Failed to clean dist directory: %v", err))
		os.Exit(1)
	}
	printSuccess("Build artifacts cleaned")
}

func showHelp() {
	fmt.Println("Usage: go run build.go [-target=TARGET] [-v]")
	fmt.Println()
	fmt.Println("Targets:")
	fmt.Println("  build    Build bhavcopy for the current platform (default)")
	fmt.Println("  test     Run all Go tests with the race detector")
	fmt.Println("  release  Cross-compile bhavcopy for every release platform")
	fmt.Println("  clean    Remove dist/")
}
