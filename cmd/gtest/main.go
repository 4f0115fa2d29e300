// gtest runs the compiler over a directory of programs and checks stdout,
// stderr and exit status against golden files, or against a second compiler.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

type Execution struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exitCode"`
	Duration time.Duration `json:"duration"`
	TimedOut bool          `json:"timed_out"`
}

// Golden is what a .<name>.json file holds.
type Golden struct {
	SourceHash string    `json:"source_hash"`
	Args       []string  `json:"args,omitempty"`
	Result     Execution `json:"result"`
}

type FileTestResult struct {
	File      string     `json:"file"`
	Status    string     `json:"status"` // PASS, FAIL, SKIP, ERROR
	Message   string     `json:"message,omitempty"`
	Diff      string     `json:"diff,omitempty"`
	Reference *Execution `json:"reference,omitempty"`
	Target    *Execution `json:"target,omitempty"`
}

type Report struct {
	RunID    string                     `json:"run_id"`
	Started  time.Time                  `json:"started"`
	Compiler string                     `json:"compiler"`
	Results  map[string]*FileTestResult `json:"results"`
}

var (
	refCompiler    = flag.String("ref-compiler", "", "Path to a reference compiler. Golden files are used when empty.")
	refArgs        = flag.String("ref-args", "", "Arguments for the reference compiler (space-separated).")
	targetCompiler = flag.String("target-compiler", "./tacc", "Path to the compiler to test.")
	targetArgs     = flag.String("target-args", "-q", "Arguments for the compiler under test (space-separated).")
	generateGolden = flag.Bool("generate-golden", false, "Write golden files for the matched sources instead of testing.")
	testFiles      = flag.String("test-files", "tests/*.t", "Glob pattern(s) for files to test (space-separated).")
	skipFiles      = flag.String("skip-files", "", "Files to skip (space-separated).")
	outputJSON     = flag.String("output", ".test_results.json", "Output file for the JSON test report.")
	timeout        = flag.Duration("timeout", 5*time.Second, "Timeout for each compiler run.")
	jobs           = flag.Int("j", 4, "Number of parallel test jobs.")
	verbose        = flag.Bool("v", false, "Enable verbose logging.")
	jsonDir        = flag.String("dir", "", "Directory to store/read golden JSON files (defaults to source file dir).")
	ignoreLines    = flag.String("ignore-lines", "", "Comma-separated substrings to ignore during output comparison.")
)

const (
	cRed    = "\x1b[91m"
	cYellow = "\x1b[93m"
	cGreen  = "\x1b[92m"
	cCyan   = "\x1b[96m"
	cBold   = "\x1b[1m"
	cNone   = "\x1b[0m"
)

func main() {
	flag.Parse()
	log.SetFlags(0)

	files, err := expandGlobPatterns(*testFiles)
	if err != nil {
		log.Fatalf("%s[ERROR]%s Invalid glob pattern(s): %v\n", cRed, cNone, err)
	}
	if len(files) == 0 {
		log.Println("No test files found matching the pattern(s).")
		return
	}

	if *generateGolden {
		for _, file := range files {
			if err := writeGolden(file); err != nil {
				log.Fatalf("%s[ERROR]%s %v\n", cRed, cNone, err)
			}
			log.Printf("%s[SUCCESS]%s Golden file created at %s\n", cGreen, cNone, getJSONPath(file))
		}
		return
	}

	report := Report{RunID: uuid.NewString(), Started: time.Now(), Compiler: *targetCompiler}
	if *verbose {
		log.Printf("Run %s: %d file(s), %d job(s)", report.RunID, len(files), *jobs)
	}
	results := runSuite(files)
	printSummary(results)
	report.Results = writeJSONReport(report, results)

	if hasFailures(report.Results) {
		os.Exit(1)
	}
}

func getJSONPath(sourceFile string) string {
	jsonFileName := "." + filepath.Base(sourceFile) + ".json"
	if *jsonDir != "" {
		return filepath.Join(*jsonDir, jsonFileName)
	}
	return filepath.Join(filepath.Dir(sourceFile), jsonFileName)
}

// hashFile computes the xxhash of a file's content
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return fmt.Sprintf("%x", h.Sum64()), nil
}

func writeGolden(sourceFile string) error {
	fileHash, err := hashFile(sourceFile)
	if err != nil {
		return fmt.Errorf("could not hash %s: %w", sourceFile, err)
	}
	args := strings.Fields(*targetArgs)
	golden := Golden{SourceHash: fileHash, Args: args, Result: compile(*targetCompiler, args, sourceFile)}
	if golden.Result.TimedOut {
		return fmt.Errorf("%s timed out on %s", *targetCompiler, sourceFile)
	}

	jsonData, err := json.MarshalIndent(golden, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal golden data: %w", err)
	}
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", *jsonDir, err)
		}
	}
	return os.WriteFile(getJSONPath(sourceFile), jsonData, 0644)
}

// runSuite feeds every distinct source to a pool of workers. Files whose
// content hashes equal an earlier file are skipped.
func runSuite(files []string) []*FileTestResult {
	skipList := make(map[string]bool)
	for _, f := range strings.Fields(*skipFiles) {
		skipList[f] = true
	}

	type task struct{ file, hash string }
	tasks := make(chan task, len(files))
	resultsChan := make(chan *FileTestResult, len(files))
	var wg sync.WaitGroup

	for i := 0; i < max(*jobs, 1); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for t := range tasks {
				resultsChan <- testFile(t.file, t.hash)
			}
		}()
	}

	seenHashes := make(map[string]string)
	for _, file := range files {
		if skipList[file] || skipList[filepath.Base(file)] {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: "Explicitly skipped"}
			continue
		}
		fileHash, err := hashFile(file)
		if err != nil {
			resultsChan <- &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Failed to read file for hashing: %v", err)}
			continue
		}
		if originalFile, seen := seenHashes[fileHash]; seen {
			resultsChan <- &FileTestResult{File: file, Status: "SKIP", Message: fmt.Sprintf("Content is identical to %s", originalFile)}
			continue
		}
		seenHashes[fileHash] = file
		tasks <- task{file, fileHash}
	}
	close(tasks)

	wg.Wait()
	close(resultsChan)

	var allResults []*FileTestResult
	for result := range resultsChan {
		allResults = append(allResults, result)
	}
	sort.Slice(allResults, func(i, j int) bool { return allResults[i].File < allResults[j].File })
	return allResults
}

func testFile(file, fileHash string) *FileTestResult {
	target := compile(*targetCompiler, strings.Fields(*targetArgs), file)

	if *refCompiler != "" {
		ref := compile(*refCompiler, strings.Fields(*refArgs), file)
		return compareExecutions(file, &ref, &target, splitIgnored(*ignoreLines))
	}

	goldenFile := getJSONPath(file)
	goldenData, err := os.ReadFile(goldenFile)
	if os.IsNotExist(err) {
		return &FileTestResult{File: file, Status: "SKIP", Message: "No golden file; run with --generate-golden first", Target: &target}
	}
	if err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not read golden file %s: %v", goldenFile, err)}
	}
	var golden Golden
	if err := json.Unmarshal(goldenData, &golden); err != nil {
		return &FileTestResult{File: file, Status: "ERROR", Message: fmt.Sprintf("Could not parse golden file %s: %v", goldenFile, err)}
	}

	result := compareExecutions(file, &golden.Result, &target, splitIgnored(*ignoreLines))
	if golden.SourceHash != "" && golden.SourceHash != fileHash && result.Status == "FAIL" {
		result.Message += " (source changed since the golden file was written)"
	}
	return result
}

// compareExecutions checks exit status and both output streams. Diffs are
// taken on the unfiltered text.
func compareExecutions(file string, ref, target *Execution, ignored []string) *FileTestResult {
	var diffs strings.Builder
	failed := false

	if target.TimedOut {
		return &FileTestResult{File: file, Status: "FAIL", Message: "Compiler timed out", Reference: ref, Target: target}
	}
	if ref.ExitCode != target.ExitCode {
		failed = true
		fmt.Fprintf(&diffs, "Exit Code mismatch:\n  - Ref:    %d\n  - Target: %d\n", ref.ExitCode, target.ExitCode)
	}
	if filterOutput(ref.Stdout, ignored) != filterOutput(target.Stdout, ignored) {
		failed = true
		fmt.Fprintf(&diffs, "STDOUT mismatch:\n%s", cmp.Diff(ref.Stdout, target.Stdout))
	}
	if filterOutput(ref.Stderr, ignored) != filterOutput(target.Stderr, ignored) {
		failed = true
		fmt.Fprintf(&diffs, "STDERR mismatch:\n%s", cmp.Diff(ref.Stderr, target.Stderr))
	}

	if failed {
		return &FileTestResult{File: file, Status: "FAIL", Message: "Output or exit code mismatch", Diff: diffs.String(), Reference: ref, Target: target}
	}
	return &FileTestResult{File: file, Status: "PASS", Message: "Output matches", Reference: ref, Target: target}
}

func compile(compiler string, args []string, sourceFile string) Execution {
	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()
	return executeCommand(ctx, compiler, append(append([]string{}, args...), sourceFile)...)
}

// executeCommand runs a command with a timeout and captures its output
func executeCommand(ctx context.Context, command string, args ...string) Execution {
	startTime := time.Now()
	cmd := exec.CommandContext(ctx, command, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Execution{Stdout: stdout.String(), Stderr: stderr.String(), Duration: time.Since(startTime)}

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		res.TimedOut = true
		res.ExitCode = -1
	case err != nil:
		if exitErr, ok := err.(*exec.ExitError); ok {
			res.ExitCode = exitErr.ExitCode()
		} else {
			res.ExitCode = -2
			res.Stderr += "\nExecution error: " + err.Error()
		}
	}
	return res
}

func splitIgnored(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// filterOutput removes lines containing any of the given substrings
func filterOutput(output string, ignoredSubstrings []string) string {
	if len(ignoredSubstrings) == 0 || output == "" {
		return output
	}
	lines := strings.Split(output, "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		ignore := false
		for _, sub := range ignoredSubstrings {
			if sub != "" && strings.Contains(line, sub) {
				ignore = true
				break
			}
		}
		if !ignore {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func printSummary(results []*FileTestResult) {
	var passed, failed, skipped, errored int
	var total time.Duration

	for _, result := range results {
		fmt.Println("----------------------------------------------------------------------")
		fmt.Printf("Testing %s%s%s...\n", cCyan, result.File, cNone)

		switch result.Status {
		case "PASS":
			passed++
			fmt.Printf("  [%sPASS%s] %s\n", cGreen, cNone, result.Message)
		case "FAIL":
			failed++
			fmt.Printf("  [%sFAIL%s] %s\n", cRed, cNone, result.Message)
			fmt.Println(formatDiff(result.Diff))
		case "SKIP":
			skipped++
			fmt.Printf("  [%sSKIP%s] %s\n", cYellow, cNone, result.Message)
		case "ERROR":
			errored++
			fmt.Printf("  [%sERROR%s] %s\n", cRed, cNone, result.Message)
		}
		if result.Target != nil {
			total += result.Target.Duration
			if *verbose {
				fmt.Printf("  compiled in %s\n", result.Target.Duration)
			}
		}
	}

	fmt.Println("----------------------------------------------------------------------")
	fmt.Printf("%sTest Summary:%s %s%d Passed%s, %s%d Failed%s, %s%d Skipped%s, %s%d Errored%s, %d Total (%s)\n",
		cBold, cNone, cGreen, passed, cNone, cRed, failed, cNone, cYellow, skipped, cNone, cRed, errored, cNone, len(results), total)
}

func formatDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var builder strings.Builder
	builder.WriteString("    --- Diff ---\n")
	for _, line := range strings.Split(diff, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "-"):
			builder.WriteString(cRed)
		case strings.HasPrefix(trimmed, "+"):
			builder.WriteString(cGreen)
		}
		builder.WriteString("    " + line + cNone + "\n")
	}
	return builder.String()
}

func writeJSONReport(report Report, results []*FileTestResult) map[string]*FileTestResult {
	report.Results = make(map[string]*FileTestResult, len(results))
	for _, r := range results {
		report.Results[r.File] = r
	}

	jsonData, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		log.Printf("%s[ERROR]%s Failed to marshal results to JSON: %v\n", cRed, cNone, err)
		return report.Results
	}

	outputFile := *outputJSON
	if *jsonDir != "" {
		if err := os.MkdirAll(*jsonDir, 0755); err != nil {
			log.Printf("%s[ERROR]%s Failed to create dir %s: %v\n", cRed, cNone, *jsonDir, err)
		}
		outputFile = filepath.Join(*jsonDir, *outputJSON)
	}

	if err := os.WriteFile(outputFile, jsonData, 0644); err != nil {
		log.Printf("%s[ERROR]%s Failed to write JSON report to %s: %v\n", cRed, cNone, outputFile, err)
	} else {
		fmt.Printf("Full test report saved to %s\n", outputFile)
	}
	return report.Results
}

func hasFailures(results map[string]*FileTestResult) bool {
	for _, result := range results {
		if result.Status == "FAIL" || result.Status == "ERROR" {
			return true
		}
	}
	return false
}

func expandGlobPatterns(patterns string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]bool)
	for _, pattern := range strings.Fields(patterns) {
		files, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("bad pattern %s: %w", pattern, err)
		}
		for _, file := range files {
			if seen[file] {
				continue
			}
			if info, err := os.Stat(file); err == nil && info.Mode().IsRegular() {
				allFiles = append(allFiles, file)
				seen[file] = true
			}
		}
	}
	return allFiles, nil
}
