// Package nvim reloads edited files in a running Neovim instance so the
// editor picks up changes written behind its back.
package nvim

import (
	"fmt"
	"os"

	"github.com/neovim/go-client/nvim"
)

// Reloader holds a connection to a running Neovim instance.
type Reloader struct {
	nvim *nvim.Nvim
}

// Connect dials the Neovim instance advertised in the environment. Returns
// an error when no instance is reachable; callers treat that as "nothing to
// reload".
func Connect() (*Reloader, error) {
	addr := os.Getenv("NVIM")
	if addr == "" {
		addr = os.Getenv("NVIM_LISTEN_ADDRESS")
	}
	if addr == "" {
		return nil, fmt.Errorf("no running nvim instance found")
	}
	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to nvim at %s: %w", addr, err)
	}
	return &Reloader{nvim: v}, nil
}

// ReloadFiles runs checktime on every buffer holding one of the given paths,
// returning how many buffers were reloaded.
func (r *Reloader) ReloadFiles(paths []string) int {
	edited := make(map[string]bool, len(paths))
	for _, p := range paths {
		edited[p] = true
	}

	buffers, err := r.nvim.Buffers()
	if err != nil {
		return 0
	}

	reloaded := 0
	for _, buf := range buffers {
		name, err := r.nvim.BufferName(buf)
		if err != nil || !edited[name] {
			continue
		}
		if err := r.nvim.Command(fmt.Sprintf("checktime %d", int(buf))); err == nil {
			reloaded++
		}
	}
	return reloaded
}

// Close shuts down the connection.
func (r *Reloader) Close() {
	if r.nvim != nil {
		r.nvim.Close()
	}
}
