package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/go-rod/rod/lib/launcher"
	flag "github.com/spf13/pflag"

	"github.com/Abdul-Razack/docpreview"
	"github.com/Abdul-Razack/docpreview/internal/assets"
	"github.com/Abdul-Razack/docpreview/internal/config"
	"github.com/Abdul-Razack/docpreview/internal/fileutil"
)

// Doctor statuses.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// Line markers in the human report.
const (
	markOK    = "[OK]"
	markWarn  = "[WARN]"
	markError = "[ERROR]"
)

// doctorResult is the machine-readable report. Warnings and Errors repeat
// every problem found by the individual checks.
type doctorResult struct {
	Status   string     `json:"status"`
	Chrome   chromeInfo `json:"chrome"`
	Env      envInfo    `json:"environment"`
	System   systemInfo `json:"system"`
	Config   configInfo `json:"config"`
	Assets   assetInfo  `json:"assets"`
	Warnings []string   `json:"warnings,omitempty"`
	Errors   []string   `json:"errors,omitempty"`
}

type chromeInfo struct {
	Found   bool   `json:"found"`
	Path    string `json:"path,omitempty"`
	Version string `json:"version,omitempty"`
	Sandbox bool   `json:"sandbox"`
}

type envInfo struct {
	OS            string `json:"os"`
	Arch          string `json:"arch"`
	Container     bool   `json:"container"`
	ContainerHint string `json:"container_hint,omitempty"`
	CI            bool   `json:"ci"`
	NoSandbox     string `json:"rod_no_sandbox"`
	BrowserBin    string `json:"rod_browser_bin"`
}

type systemInfo struct {
	TempWritable bool `json:"temp_writable"`
	GOMAXPROCS   int  `json:"gomaxprocs"`
}

// configInfo describes the configuration an export would run with.
type configInfo struct {
	Source         string `json:"source"`
	Valid          bool   `json:"valid"`
	OutputDir      string `json:"output_dir"`
	OutputWritable bool   `json:"output_writable"`
	Workers        int    `json:"workers"`
	Timeout        string `json:"timeout,omitempty"`
}

type assetInfo struct {
	TemplateSets []string `json:"template_sets"`
	Styles       []string `json:"styles"`
}

// reportLine is one marked line of a human report section.
type reportLine struct {
	mark string
	text string
}

// report collects lines per section while the checks run, so the human
// output follows check order without re-deriving it from the result.
type report struct {
	result   *doctorResult
	sections []string
	lines    map[string][]reportLine
}

func newReport() *report {
	return &report{
		result: &doctorResult{Status: statusReady},
		lines:  make(map[string][]reportLine),
	}
}

func (r *report) add(section, mark, format string, args ...any) {
	if _, ok := r.lines[section]; !ok {
		r.sections = append(r.sections, section)
	}
	text := fmt.Sprintf(format, args...)
	r.lines[section] = append(r.lines[section], reportLine{mark, text})

	switch mark {
	case markWarn:
		r.result.Warnings = append(r.result.Warnings, text)
	case markError:
		r.result.Errors = append(r.result.Errors, text)
	}
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Warnings still exit 0; only errors fail.
func runDoctorCmd(args []string, env *Environment) int {
	flags, err := parseDoctorFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		return ExitUsage
	}

	rep := runDoctor(flags.config)
	if flags.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(rep.result)
	} else {
		rep.print(env.Stdout)
	}

	if rep.result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

func runDoctor(configPath string) *report {
	rep := newReport()
	checks := []func(*report){
		checkChrome,
		checkEnvironment,
		checkSystem,
		func(r *report) { checkConfig(r, configPath) },
		checkAssets,
	}
	for _, check := range checks {
		check(rep)
	}

	switch {
	case len(rep.result.Errors) > 0:
		rep.result.Status = statusErrors
	case len(rep.result.Warnings) > 0:
		rep.result.Status = statusWarnings
	}
	return rep
}

const sectionChrome = "Chrome/Chromium"

// checkChrome locates the binary rod would launch and asks it for its version.
func checkChrome(r *report) {
	info := &r.result.Chrome
	r.result.Env.NoSandbox = os.Getenv("ROD_NO_SANDBOX")
	r.result.Env.BrowserBin = os.Getenv("ROD_BROWSER_BIN")

	bin := r.result.Env.BrowserBin
	if bin == "" {
		var found bool
		if bin, found = launcher.LookPath(); !found {
			r.add(sectionChrome, markError, "Chrome/Chromium not found. Install Chrome or set ROD_BROWSER_BIN")
			return
		}
	}
	if !fileutil.FileExists(bin) {
		r.add(sectionChrome, markError, "Chrome not found at %s", bin)
		return
	}

	info.Found, info.Path = true, bin
	r.add(sectionChrome, markOK, "Found at %s", bin)

	out, err := exec.Command(bin, "--version").Output() // #nosec G204 -- detected browser path
	if err != nil {
		r.add(sectionChrome, markWarn, "Could not get Chrome version: %v", err)
	} else {
		info.Version = strings.TrimSpace(string(out))
		r.add(sectionChrome, markOK, "Version: %s", info.Version)
	}

	info.Sandbox = r.result.Env.NoSandbox != "1"
	if info.Sandbox {
		r.add(sectionChrome, markOK, "Sandbox: enabled")
	} else {
		r.add(sectionChrome, markOK, "Sandbox: disabled (ROD_NO_SANDBOX=1)")
	}
}

const sectionEnv = "Environment"

var ciVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"}

// checkEnvironment flags container and CI runs where Chrome needs --no-sandbox.
func checkEnvironment(r *report) {
	info := &r.result.Env
	info.OS, info.Arch = runtime.GOOS, runtime.GOARCH
	r.add(sectionEnv, markOK, "Platform: %s/%s", info.OS, info.Arch)

	info.Container, info.ContainerHint = isContainer()
	if info.Container {
		r.add(sectionEnv, markOK, "Container: detected (%s)", info.ContainerHint)
	}
	for _, v := range ciVars {
		if os.Getenv(v) != "" {
			info.CI = true
			r.add(sectionEnv, markOK, "CI: detected (%s)", v)
			break
		}
	}

	if (info.Container || info.CI) && os.Getenv("ROD_NO_SANDBOX") != "1" {
		r.add(sectionEnv, markWarn, "Container/CI detected but ROD_NO_SANDBOX not set. Set ROD_NO_SANDBOX=1")
	}
}

// isContainer reports whether we run in a container and which signal said so.
func isContainer() (bool, string) {
	if os.Getenv("DOCPREVIEW_CONTAINER") == "1" {
		return true, "DOCPREVIEW_CONTAINER=1"
	}
	if fileutil.FileExists("/.dockerenv") {
		return true, "/.dockerenv"
	}
	// podman, systemd-nspawn
	if v := os.Getenv("container"); v != "" {
		return true, "container=" + v
	}
	if os.Getenv("KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

const sectionSystem = "System"

// checkSystem verifies the temp directory accepts the surface files the
// browser loads.
func checkSystem(r *report) {
	r.result.System.GOMAXPROCS = runtime.GOMAXPROCS(0)

	_, cleanup, err := fileutil.WriteTempFile("<!doctype html>", "html")
	if err != nil {
		r.add(sectionSystem, markError, "Temp directory not writable: %s", os.TempDir())
	} else {
		cleanup()
		r.result.System.TempWritable = true
		r.add(sectionSystem, markOK, "Temp directory: writable")
	}
	r.add(sectionSystem, markOK, "GOMAXPROCS: %d", r.result.System.GOMAXPROCS)
}

const sectionConfig = "Config"

// checkConfig resolves the configuration the export command would use and
// checks that its output directory can take artifacts.
func checkConfig(r *report, flagConfig string) {
	info := &r.result.Config
	envCfg := loadEnvConfig()

	info.Source = "defaults"
	switch {
	case flagConfig != "":
		info.Source = flagConfig
	case envCfg.ConfigPath != "":
		info.Source = envCfg.ConfigPath + " (DOCPREVIEW_CONFIG)"
	}

	cfg, err := resolveConfig(flagConfig, envCfg)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		r.add(sectionConfig, markError, "Config %s: %v", info.Source, err)
		return
	}
	info.Valid = true
	r.add(sectionConfig, markOK, "Source: %s", info.Source)

	info.Workers = docpreview.ResolvePoolSize(cfg.Workers)
	info.Timeout = cfg.Timeout
	r.add(sectionConfig, markOK, "Workers: %d", info.Workers)
	if info.Timeout != "" {
		r.add(sectionConfig, markOK, "Timeout: %s", info.Timeout)
	}

	checkOutputDir(r, cfg)
}

func checkOutputDir(r *report, cfg *config.Config) {
	info := &r.result.Config
	dir := cfg.Output.Dir
	if dir == "" {
		dir = "."
	}
	info.OutputDir = dir

	st, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Exports create it; the nearest existing parent must be writable.
		r.add(sectionConfig, markWarn, "Output directory %s does not exist yet (created on export)", dir)
		info.OutputWritable = dirWritable(nearestDir(dir))
	case err != nil:
		r.add(sectionConfig, markError, "Output directory %s: %v", dir, err)
		return
	case !st.IsDir():
		r.add(sectionConfig, markError, "Output path %s is not a directory", dir)
		return
	default:
		info.OutputWritable = dirWritable(dir)
	}

	if info.OutputWritable {
		r.add(sectionConfig, markOK, "Output directory: %s (writable)", dir)
	} else {
		r.add(sectionConfig, markError, "Output directory not writable: %s", dir)
	}
}

func nearestDir(dir string) string {
	for {
		if st, err := os.Stat(dir); err == nil && st.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}

func dirWritable(dir string) bool {
	f, err := os.CreateTemp(dir, ".docpreview-doctor-*")
	if err != nil {
		return false
	}
	name := f.Name()
	_ = f.Close()
	_ = os.Remove(name)
	return true
}

const sectionAssets = "Assets"

func checkAssets(r *report) {
	loader := assets.NewEmbeddedLoader()
	info := &r.result.Assets
	info.TemplateSets = loader.TemplateSets()
	info.Styles = loader.Styles()

	if len(info.TemplateSets) == 0 {
		r.add(sectionAssets, markError, "No embedded template set found")
		return
	}
	r.add(sectionAssets, markOK, "Template sets: %s", strings.Join(info.TemplateSets, ", "))
	r.add(sectionAssets, markOK, "Styles: %s", strings.Join(info.Styles, ", "))
}

func (r *report) print(w io.Writer) {
	fmt.Fprintln(w, "docpreview doctor")
	fmt.Fprintln(w)

	for _, name := range r.sections {
		fmt.Fprintln(w, name)
		for _, l := range r.lines[name] {
			fmt.Fprintf(w, "  %s %s\n", l.mark, l.text)
		}
		fmt.Fprintln(w)
	}

	switch r.result.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to export")
	case statusWarnings:
		fmt.Fprintf(w, "Status: Ready with %d warning(s)\n", len(r.result.Warnings))
	case statusErrors:
		fmt.Fprintf(w, "Status: Not ready (%d error(s) above)\n", len(r.result.Errors))
	}
}
