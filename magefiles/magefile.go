//go:build mage

package main

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
	"github.com/rayforce-db/rayforce-go/internal/styles"
)

// Info displays the available mage commands and their descriptions
func Info() {
	fmt.Println(styles.Header("Mage build script for rayforce-go"))
	fmt.Println()
	fmt.Println(styles.Info("Quality commands:"))
	fmt.Println(styles.Example("ci", "Run full CI pipeline (format, test, backends, lint)"))
	fmt.Println(styles.Example("test", "Run all tests against the pure Go backend"))
	fmt.Println(styles.Example("backends", "Compile-check the cgo and purego backends"))
	fmt.Println(styles.Example("lint", "Run golangci-lint on project code"))
	fmt.Println(styles.Example("format", "Format Go code using gofmt"))
	fmt.Println()
	fmt.Println(styles.Info("Version & release:"))
	fmt.Println(styles.Example("version", "Display current version from VERSION file"))
	fmt.Println(styles.Example("release", "Create and push annotated release tag"))
	fmt.Println()
	fmt.Printf("%s %s\n", styles.Info("Usage:"), "mage <command>")
}

// CI runs the full CI pipeline: format, test, backend builds, lint
func CI() error {
	fmt.Println(styles.Header("Running CI pipeline..."))

	if err := Format(); err != nil {
		return err
	}
	if err := Test(); err != nil {
		return err
	}
	if err := Backends(); err != nil {
		return err
	}
	if err := Lint(); err != nil {
		return err
	}

	fmt.Println(styles.Success("CI pipeline completed successfully"))
	return nil
}

// Test runs all tests against the default pure Go backend
func Test() error {
	fmt.Println(styles.Info("Running tests..."))

	if err := sh.RunV("go", "test", "./...", "-count=1"); err != nil {
		return fmt.Errorf("%s tests failed: %v", styles.Error("Error:"), err)
	}

	fmt.Println(styles.Success("All tests passed"))
	return nil
}

// Backends compile-checks the native backends. The cgo backend needs a
// librayforce build in pkg/cgocore/rayforcelib; the purego backend only
// needs to compile, since it binds symbols at runtime.
func Backends() error {
	fmt.Println(styles.Info("Building purego backend..."))
	if err := sh.RunV("go", "build", "-tags", "rayforcepurego", "./..."); err != nil {
		return fmt.Errorf("%s purego build failed: %v", styles.Error("Error:"), err)
	}

	if _, err := os.Stat("pkg/cgocore/rayforcelib/librayforce.so"); err != nil {
		fmt.Println(styles.Warning("librayforce.so not present, skipping cgo build"))
		return nil
	}
	fmt.Println(styles.Info("Building cgo backend..."))
	if err := sh.RunV("go", "build", "-tags", "rayforcecgo", "./..."); err != nil {
		return fmt.Errorf("%s cgo build failed: %v", styles.Error("Error:"), err)
	}

	fmt.Println(styles.Success("Backend builds completed"))
	return nil
}

// Lint runs golangci-lint on the project (excludes magefiles)
func Lint() error {
	fmt.Println(styles.Info("Running golangci-lint..."))

	if err := sh.RunV("golangci-lint", "run"); err != nil {
		return fmt.Errorf("%s linting failed: %v", styles.Error("Error:"), err)
	}

	fmt.Println(styles.Success("Linting completed successfully"))
	return nil
}

// Format runs gofmt on all Go files in the project
func Format() error {
	fmt.Println(styles.Info("Formatting Go code with gofmt..."))

	if err := sh.RunV("gofmt", "-s", "-w", "."); err != nil {
		return fmt.Errorf("%s formatting failed: %v", styles.Error("Error:"), err)
	}

	fmt.Println(styles.Success("Code formatting completed"))
	return nil
}

// GetVersion reads the version from the VERSION file
func GetVersion() (string, error) {
	data, err := os.ReadFile("VERSION")
	if err != nil {
		return "", fmt.Errorf("failed to read VERSION file: %w", err)
	}

	version := strings.TrimSpace(string(data))
	if version == "" {
		return "", fmt.Errorf("VERSION file is empty")
	}

	if matched, _ := regexp.MatchString(`^v?\d+\.\d+\.\d+(-[a-zA-Z0-9]+)?$`, version); !matched {
		return "", fmt.Errorf("invalid version format: %s (expected format: x.y.z or vx.y.z)", version)
	}

	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	return version, nil
}

// Version displays the current version
func Version() error {
	version, err := GetVersion()
	if err != nil {
		return err
	}

	fmt.Printf("%s Current version: %s\n", styles.Info("Version:"), styles.Success(version))
	return nil
}

// CheckGitStatus ensures the git repository is in a clean state
func CheckGitStatus() error {
	output, err := sh.Output("git", "status", "--porcelain")
	if err != nil {
		return fmt.Errorf("failed to check git status: %w", err)
	}
	if strings.TrimSpace(output) != "" {
		return fmt.Errorf("%s repository has uncommitted changes", styles.Error("Error:"))
	}
	return nil
}

// CheckVersionBump ensures the version has been bumped since the last tag
func CheckVersionBump(version string) error {
	latestTag, err := sh.Output("git", "describe", "--tags", "--abbrev=0")
	if err != nil {
		fmt.Println(styles.Info("No existing tags found - this will be the first release"))
		return nil
	}

	latestTag = strings.TrimSpace(latestTag)
	if latestTag == version {
		return fmt.Errorf("%s version %s already exists as a git tag", styles.Error("Error:"), version)
	}

	fmt.Printf("%s Version bump detected: %s → %s\n", styles.Info("Release:"), styles.Dim(latestTag), styles.Success(version))
	return nil
}

// Release creates and pushes a new release tag
func Release() error {
	fmt.Println(styles.Header("Creating release..."))

	version, err := GetVersion()
	if err != nil {
		return err
	}
	if err := CheckGitStatus(); err != nil {
		return err
	}
	if err := CheckVersionBump(version); err != nil {
		return err
	}

	mg.SerialDeps(CI)

	fmt.Printf("%s Creating annotated tag %s...\n", styles.Info("Tag:"), styles.Success(version))
	if err := sh.Run("git", "tag", "-a", version, "-m", fmt.Sprintf("Release %s", version)); err != nil {
		return fmt.Errorf("%s failed to create tag: %w", styles.Error("Error:"), err)
	}

	fmt.Printf("%s Pushing tag %s...\n", styles.Info("Push:"), styles.Success(version))
	if err := sh.Run("git", "push", "origin", version); err != nil {
		return fmt.Errorf("%s failed to push tag: %w", styles.Error("Error:"), err)
	}

	fmt.Printf("%s Release %s created and pushed\n", styles.Success("Done:"), styles.Success(version))
	return nil
}
