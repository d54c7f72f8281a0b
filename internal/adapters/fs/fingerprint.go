package fs

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/affected/internal/core/domain"
	"go.trai.ch/affected/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Fingerprinter = (*Fingerprinter)(nil)

// Fingerprinter hashes a workspace's module layout with XXHash.
type Fingerprinter struct{}

// NewFingerprinter creates a new Fingerprinter.
func NewFingerprinter() *Fingerprinter {
	return &Fingerprinter{}
}

// Fingerprint hashes every module's id, directory, dependencies and tasks,
// followed by the raw workfile and module files. Two workspaces with the same
// fingerprint map changed files to the same affected modules.
func (f *Fingerprinter) Fingerprint(ws *domain.Workspace) (string, error) {
	hasher := xxhash.New()

	for m := range ws.Registry.Walk() {
		hashModule(m, hasher)
	}
	_, _ = hasher.Write([]byte{0})

	if err := hashFile(filepath.Join(ws.Root, domain.WorkFileName), hasher); err != nil {
		return "", err
	}
	for m := range ws.Registry.Walk() {
		path := filepath.Join(ws.Root, filepath.FromSlash(m.Dir), domain.ModuleFileName)
		if err := hashFile(path, hasher); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%016x", hasher.Sum64()), nil
}

func hashModule(m domain.Module, hasher *xxhash.Digest) {
	_, _ = hasher.WriteString(m.ID.String())
	_, _ = hasher.Write([]byte{0})
	_, _ = hasher.WriteString(m.Dir)
	_, _ = hasher.Write([]byte{0})

	for _, dep := range m.Dependencies {
		_, _ = hasher.WriteString(dep.String())
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})

	names := make([]string, 0, len(m.Tasks))
	for name := range m.Tasks {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		_, _ = hasher.WriteString(name)
		_, _ = hasher.Write([]byte{'='})
		for _, arg := range m.Tasks[name].Command {
			_, _ = hasher.WriteString(arg)
			_, _ = hasher.Write([]byte{0})
		}
		_, _ = hasher.Write([]byte{0})
	}
	_, _ = hasher.Write([]byte{0})
}

// hashFile writes the file's path and content hash to mainHasher.
// A missing file contributes only its path.
func hashFile(path string, mainHasher *xxhash.Digest) error {
	_, _ = mainHasher.WriteString(filepath.Base(path))
	_, _ = mainHasher.Write([]byte{0})

	file, err := os.Open(path) //nolint:gosec // Path is built from the workspace root
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "path", path)
	}
	defer file.Close() //nolint:errcheck // Best effort close in defer

	content := xxhash.New()
	if _, err := io.Copy(content, file); err != nil {
		return zerr.With(zerr.Wrap(err, domain.ErrFingerprintFailed.Error()), "path", path)
	}

	if err := binary.Write(mainHasher, binary.LittleEndian, content.Sum64()); err != nil {
		return zerr.Wrap(err, "failed to write hash to digest")
	}
	return nil
}
