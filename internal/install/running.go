package install

import (
	"context"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// appProcessNames are the lowercase executable names of the application.
var appProcessNames = map[string]bool{
	"cursor":     true,
	"cursor.exe": true,
}

// RunningProcess is a live process of the application.
type RunningProcess struct {
	PID  int32
	Name string
}

// RunningProcesses lists application processes. A running application keeps
// the old script loaded, so a patch only takes effect after a restart.
func RunningProcesses(ctx context.Context) ([]RunningProcess, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	self := int32(os.Getpid())
	var running []RunningProcess
	for _, p := range procs {
		if p.Pid == self {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil || name == "" {
			continue
		}
		if appProcessNames[strings.ToLower(name)] {
			running = append(running, RunningProcess{PID: p.Pid, Name: name})
		}
	}
	return running, nil
}
