package capture

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"sync"

	"github.com/sirupsen/logrus"
)

// Writer runs a test command and streams its merged output into a log file:
// stdout lines verbatim, stderr lines with a "STDERR: " prefix, and a final
// "[System] Finished: exit code: N" line once the process exits. The file is
// exactly what the parsing session expects to tail, so a run that dies
// mid-suite still resolves to a terminal status.
type Writer struct {
	outputPath string
	output     *os.File
	cmd        *exec.Cmd
	log        *logrus.Logger

	mu   sync.Mutex
	wg   sync.WaitGroup
	done chan struct{}
}

// Start spawns the command and begins streaming into outputPath
func Start(command, outputPath string, log *logrus.Logger) (*Writer, error) {
	output, err := os.OpenFile(outputPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", "/C", command)
	} else {
		cmd = exec.Command("sh", "-c", command)
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		output.Close()
		return nil, fmt.Errorf("failed to open stdout: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		output.Close()
		return nil, fmt.Errorf("failed to open stderr: %w", err)
	}

	if err := cmd.Start(); err != nil {
		output.Close()
		return nil, fmt.Errorf("failed to spawn runner: %w", err)
	}

	w := &Writer{
		outputPath: outputPath,
		output:     output,
		cmd:        cmd,
		log:        log,
		done:       make(chan struct{}),
	}
	log.WithFields(logrus.Fields{
		"command": command,
		"pid":     cmd.Process.Pid,
		"output":  outputPath,
	}).Info("runner started")

	w.wg.Add(2)
	go w.stream(stdout, "")
	go w.stream(stderr, "STDERR: ")
	go w.wait()

	return w, nil
}

// OutputPath returns the path of the capture file
func (w *Writer) OutputPath() string {
	return w.outputPath
}

// Done is closed once the process has exited and the final status line has
// been written
func (w *Writer) Done() <-chan struct{} {
	return w.done
}

// Stop kills the runner process. The exit line is still written, so the
// session sees the stop as a failed termination.
func (w *Writer) Stop() error {
	if w.cmd.Process == nil {
		return nil
	}
	return w.cmd.Process.Kill()
}

// stream copies one pipe into the output file, line by line
func (w *Writer) stream(r io.Reader, prefix string) {
	defer w.wg.Done()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		w.writeLine(prefix + scanner.Text())
	}
}

// wait blocks until both pipes are drained and the process has exited, then
// appends the terminal status line. The pipes must be drained first: Wait
// closes them.
func (w *Writer) wait() {
	w.wg.Wait()
	err := w.cmd.Wait()
	exitCode := exitCodeFrom(err, w.cmd.ProcessState)

	w.writeLine(fmt.Sprintf("[System] Finished: exit code: %d", exitCode))
	w.output.Close()
	w.log.WithField("exit_code", exitCode).Info("runner finished")
	close(w.done)
}

// exitCodeFrom resolves the code for the terminal line. Wait can fail
// without a process state (an I/O error rather than a non-zero exit); any
// failure without a usable code reports 1.
func exitCodeFrom(err error, state *os.ProcessState) int {
	if err == nil {
		return 0
	}
	if state != nil && state.ExitCode() != 0 {
		return state.ExitCode()
	}
	return 1
}

func (w *Writer) writeLine(line string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := w.output.WriteString(line + "\n"); err != nil {
		w.log.WithError(err).Warn("failed to write captured line")
	}
}
