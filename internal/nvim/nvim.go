package nvim

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neovim/go-client/nvim"
)

// AddressEnv names the environment variable holding a Neovim server address.
const AddressEnv = "NVIM_LISTEN_ADDRESS"

// ErrNoInstance is returned when no Neovim address is known.
var ErrNoInstance = errors.New("no running neovim instance")

// Manager is a connection to a running Neovim instance.
type Manager struct {
	nvim *nvim.Nvim
}

// Dial connects to the instance at addr, or at $NVIM_LISTEN_ADDRESS when
// addr is empty. Unlike an editor session, no headless instance is started:
// reloading only matters for a Neovim the user is looking at.
func Dial(addr string) (*Manager, error) {
	if addr == "" {
		addr = os.Getenv(AddressEnv)
	}
	if addr == "" {
		return nil, ErrNoInstance
	}
	v, err := nvim.Dial(addr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to neovim at %s: %w", addr, err)
	}
	return &Manager{nvim: v}, nil
}

// Close disconnects from Neovim.
func (m *Manager) Close() {
	if m.nvim != nil {
		m.nvim.Close()
	}
}

// Reload re-reads every buffer showing filePath from disk.
func (m *Manager) Reload(filePath string) (int, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return 0, err
	}

	buffers, err := m.nvim.Buffers()
	if err != nil {
		return 0, fmt.Errorf("failed to list buffers: %w", err)
	}

	b := m.nvim.NewBatch()
	reloaded := 0
	for _, buf := range buffers {
		name, err := m.nvim.BufferName(buf)
		if err != nil || name != absPath {
			continue
		}
		b.Command(fmt.Sprintf("checktime %d", int(buf)))
		reloaded++
	}
	if reloaded == 0 {
		return 0, nil
	}
	if err := b.Execute(); err != nil {
		return 0, fmt.Errorf("failed to reload %s: %w", filePath, err)
	}
	return reloaded, nil
}

// Reloader reloads files in a Neovim instance, connecting per call.
type Reloader struct {
	Addr string
}

// Reload implements repair.Reloader.
func (r Reloader) Reload(path string) error {
	m, err := Dial(r.Addr)
	if err != nil {
		return err
	}
	defer m.Close()
	_, err = m.Reload(path)
	return err
}
