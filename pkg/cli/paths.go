package cli

import (
	"os"
	"path/filepath"
)

// Paths locates the vidgen directories under a home directory.
type Paths struct {
	HomeDir string
}

// NewPaths returns Paths for the current user.
func NewPaths() (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return &Paths{HomeDir: home}, nil
}

// BaseDir returns ~/.vidgen.
func (p *Paths) BaseDir() string {
	return filepath.Join(p.HomeDir, DefaultBaseDir)
}

// ConfigFile returns ~/.vidgen/config.yaml.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.BaseDir(), DefaultConfigFile)
}

// DataDir holds the video library index.
func (p *Paths) DataDir() string {
	return filepath.Join(p.BaseDir(), "data")
}

// VideosDir holds the library's video files.
func (p *Paths) VideosDir() string {
	return filepath.Join(p.BaseDir(), "videos")
}

// EnsureDirs creates the data and videos directories.
func (p *Paths) EnsureDirs() error {
	for _, dir := range []string{p.DataDir(), p.VideosDir()} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}
