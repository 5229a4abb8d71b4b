package dispatch

import (
	"fmt"
	"os"
	"os/exec"
)

// Handle controls a spawned child process.
type Handle interface {
	// Kill terminates the child. Safe to call after the child has exited.
	Kill() error
}

// Spawner starts a resolved invocation. It exists as an interface so the
// engine can be exercised in tests without launching real processes.
type Spawner interface {
	Start(inv Invocation) (Handle, error)
}

// ExecSpawner launches detached child processes via os/exec. Children are
// not waited on before the tool exits; a reaping goroutine prevents zombies
// while the parent is still running.
type ExecSpawner struct{}

func (ExecSpawner) Start(inv Invocation) (Handle, error) {
	cmd := exec.Command(inv.Program, inv.Args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if len(inv.Env) > 0 {
		env := os.Environ()
		for k, v := range inv.Env {
			env = append(env, k+"="+v)
		}
		cmd.Env = env
	}

	if err := cmd.Start(); err != nil {
		return nil, err
	}
	go func() {
		_ = cmd.Wait()
	}()
	return &execHandle{cmd: cmd}, nil
}

type execHandle struct {
	cmd *exec.Cmd
}

func (h *execHandle) Kill() error {
	if h.cmd.Process == nil {
		return fmt.Errorf("process not started")
	}
	return h.cmd.Process.Kill()
}
